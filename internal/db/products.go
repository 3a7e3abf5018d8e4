package db

import (
	"context"
	"errors"

	"github.com/spacesedan/reviewseed/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStore resolves the product a generation request refers to.
type ProductStore interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}
