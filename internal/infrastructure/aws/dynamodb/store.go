package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"assessment-games-go/internal/game"
	"assessment-games-go/internal/library"
)

type store struct {
	client API
	table  string
}

// NewStore returns a library.Store backed by a DynamoDB table.
func NewStore(client API, table string) library.Store {
	if table == "" {
		table = DefaultTable
	}
	return &store{client: client, table: table}
}

func (s *store) Create(ctx context.Context, rec *library.Record) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                toItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return library.ErrConflict
		}
		return fmt.Errorf("put assessment: %w", err)
	}
	return nil
}

func (s *store) Get(ctx context.Context, id string) (*library.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, library.ErrNotFound
	}
	return fromItem(out.Item)
}

func (s *store) List(ctx context.Context, filter library.Filter) ([]*library.Record, error) {
	var items []map[string]types.AttributeValue
	var next map[string]types.AttributeValue

	for {
		var page []map[string]types.AttributeValue
		var err error
		if filter.Type != nil {
			var out *dynamodb.QueryOutput
			out, err = s.client.Query(ctx, &dynamodb.QueryInput{
				TableName:                 aws.String(s.table),
				IndexName:                 aws.String(typeIndex),
				KeyConditionExpression:    aws.String("#type = :type"),
				ExpressionAttributeNames:  map[string]string{"#type": "type"},
				ExpressionAttributeValues: map[string]types.AttributeValue{":type": str(string(*filter.Type))},
				ExclusiveStartKey:         next,
			})
			if out != nil {
				page, next = out.Items, out.LastEvaluatedKey
			}
		} else {
			var out *dynamodb.ScanOutput
			out, err = s.client.Scan(ctx, &dynamodb.ScanInput{
				TableName:         aws.String(s.table),
				ExclusiveStartKey: next,
			})
			if out != nil {
				page, next = out.Items, out.LastEvaluatedKey
			}
		}
		if err != nil {
			return nil, fmt.Errorf("list assessments: %w", err)
		}
		items = append(items, page...)
		if len(next) == 0 {
			break
		}
	}

	records := make([]*library.Record, 0, len(items))
	for _, item := range items {
		rec, err := fromItem(item)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})

	if filter.Offset >= len(records) {
		return []*library.Record{}, nil
	}
	records = records[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (s *store) Update(ctx context.Context, rec *library.Record) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.table),
		Key:                      key(rec.ID),
		UpdateExpression:         aws.String("SET title = :title, #type = :type, payload = :payload, updated_at = :updated"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#type": "type"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":title":   str(rec.Title),
			":type":    str(string(rec.Type)),
			":payload": str(rec.Payload),
			":updated": str(formatTime(rec.UpdatedAt)),
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return library.ErrNotFound
		}
		return fmt.Errorf("update assessment: %w", err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return library.ErrNotFound
		}
		return fmt.Errorf("delete assessment: %w", err)
	}
	return nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": str(id)}
}

func str(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toItem(rec *library.Record) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":         str(rec.ID),
		"title":      str(rec.Title),
		"type":       str(string(rec.Type)),
		"payload":    str(rec.Payload),
		"created_at": str(formatTime(rec.CreatedAt)),
		"updated_at": str(formatTime(rec.UpdatedAt)),
	}
}

func fromItem(item map[string]types.AttributeValue) (*library.Record, error) {
	get := func(name string) (string, error) {
		v, ok := item[name].(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("assessment item is missing %q", name)
		}
		return v.Value, nil
	}

	rec := &library.Record{}
	var err error
	if rec.ID, err = get("id"); err != nil {
		return nil, err
	}
	if rec.Title, err = get("title"); err != nil {
		return nil, err
	}
	typ, err := get("type")
	if err != nil {
		return nil, err
	}
	rec.Type = game.AssessmentType(typ)
	if rec.Payload, err = get("payload"); err != nil {
		return nil, err
	}

	for name, dst := range map[string]*time.Time{"created_at": &rec.CreatedAt, "updated_at": &rec.UpdatedAt} {
		raw, err := get(name)
		if err != nil {
			return nil, err
		}
		if *dst, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, fmt.Errorf("assessment item has bad %s: %w", name, err)
		}
	}
	return rec, nil
}

func conditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
