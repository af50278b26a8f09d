package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// AWSConfig holds the clients the games use: S3 for puzzle images and
// DynamoDB as an optional assessment library backend.
type AWSConfig struct {
	Region   string
	S3       *s3.Client
	DynamoDB *dynamodb.Client
}

func NewAWSConfig(ctx context.Context, region string) (*AWSConfig, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &AWSConfig{
		Region:   region,
		S3:       s3.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
	}, nil
}
