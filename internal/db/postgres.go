package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spacesedan/reviewseed/internal/models"
)

type PostgresProductStore struct {
	DB *pgxpool.Pool
}

func NewPostgresProductStore(pool *pgxpool.Pool) *PostgresProductStore {
	return &PostgresProductStore{DB: pool}
}

func (s *PostgresProductStore) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `
        SELECT id, name, COALESCE(description, ''), COALESCE(short_description, '')
        FROM products
        WHERE id = $1
    `

	var p models.Product
	err := s.DB.QueryRow(ctx, query, productID).Scan(&p.ID, &p.Name, &p.Description, &p.ShortDescription)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("[DB] %w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		slog.Error("[DB] Failed to load product",
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("[DB] failed to load product: %w", err)
	}

	return &p, nil
}
