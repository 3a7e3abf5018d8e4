package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/reviewseed/internal/models"
)

// DynamoAPI is the slice of the DynamoDB client the product store needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type DynamoProductStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductStore(client DynamoAPI, table string) *DynamoProductStore {
	return &DynamoProductStore{client: client, table: table}
}

func (s *DynamoProductStore) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		slog.Error("[DynamoDB] Failed to get product",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("[DynamoDB] failed to get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("[DynamoDB] %w: %s", ErrProductNotFound, productID)
	}

	var p models.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("[DynamoDB] failed to unmarshal product: %w", err)
	}

	return &p, nil
}
