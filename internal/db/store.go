package db

import (
	"context"
	"fmt"

	"github.com/spacesedan/reviewseed/config"
	"github.com/spacesedan/reviewseed/internal/clients"
)

// OpenProductStore connects the configured backend. The returned func releases it.
func OpenProductStore(ctx context.Context, s config.Settings) (ProductStore, func(), error) {
	switch s.ProductStore {
	case config.StorePostgres:
		pg, err := clients.NewPostgresClient(ctx, s.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresProductStore(pg.DB), pg.Close, nil
	case config.StoreDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, clients.AWSConfig{
			Region:   s.AWSRegion,
			Endpoint: s.AWSEndpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		return NewDynamoProductStore(client, s.ProductsTable), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("[DB] unknown product store %q", s.ProductStore)
	}
}
