package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"assessment-games-go/internal/bundle"
)

// BundleTable names the bundles table that sits beside an assessments table
func BundleTable(table string) string {
	if table == "" {
		table = DefaultTable
	}
	return table + "-bundles"
}

// CreateBundleTable creates the bundles table. An existing table is not an error.
func CreateBundleTable(ctx context.Context, client API, table string) error {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

type bundleStore struct {
	client API
	table  string
}

// NewBundleStore returns a bundle.Store backed by a DynamoDB table.
func NewBundleStore(client API, table string) bundle.Store {
	return &bundleStore{client: client, table: table}
}

func (s *bundleStore) Create(ctx context.Context, rec *bundle.Record) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                bundleItem(rec),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return bundle.ErrConflict
		}
		return fmt.Errorf("put bundle: %w", err)
	}
	return nil
}

func (s *bundleStore) Get(ctx context.Context, id string) (*bundle.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get bundle: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, bundle.ErrNotFound
	}
	return bundleFromItem(out.Item)
}

func (s *bundleStore) List(ctx context.Context) ([]*bundle.Record, error) {
	var records []*bundle.Record
	var next map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: next,
		})
		if err != nil {
			return nil, fmt.Errorf("list bundles: %w", err)
		}
		for _, item := range out.Items {
			rec, err := bundleFromItem(item)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if next = out.LastEvaluatedKey; len(next) == 0 {
			return records, nil
		}
	}
}

func (s *bundleStore) Update(ctx context.Context, rec *bundle.Record) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.table),
		Key:                      key(rec.ID),
		UpdateExpression:         aws.String("SET title = :title, #status = :status, payload = :payload, updated_at = :updated"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#status": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":title":   str(rec.Title),
			":status":  str(string(rec.Status)),
			":payload": str(rec.Payload),
			":updated": str(formatTime(rec.UpdatedAt)),
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return bundle.ErrNotFound
		}
		return fmt.Errorf("update bundle: %w", err)
	}
	return nil
}

func (s *bundleStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 key(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		if conditionFailed(err) {
			return bundle.ErrNotFound
		}
		return fmt.Errorf("delete bundle: %w", err)
	}
	return nil
}

func bundleItem(rec *bundle.Record) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id":         str(rec.ID),
		"title":      str(rec.Title),
		"status":     str(string(rec.Status)),
		"payload":    str(rec.Payload),
		"created_at": str(formatTime(rec.CreatedAt)),
		"updated_at": str(formatTime(rec.UpdatedAt)),
	}
}

func bundleFromItem(item map[string]types.AttributeValue) (*bundle.Record, error) {
	values := map[string]string{}
	for _, name := range []string{"id", "title", "status", "payload", "created_at", "updated_at"} {
		v, ok := item[name].(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("bundle item is missing %q", name)
		}
		values[name] = v.Value
	}

	rec := &bundle.Record{
		ID:      values["id"],
		Title:   values["title"],
		Status:  bundle.Status(values["status"]),
		Payload: values["payload"],
	}
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, values["created_at"]); err != nil {
		return nil, fmt.Errorf("bundle item has bad created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, values["updated_at"]); err != nil {
		return nil, fmt.Errorf("bundle item has bad updated_at: %w", err)
	}
	return rec, nil
}
