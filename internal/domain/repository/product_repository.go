package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves the owner's products in one query
	GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// ListActive returns the owner's active products ordered by name
	ListActive(ctx context.Context, ownerID uuid.UUID, params *ProductFilterParams) ([]entity.Product, error)
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Search       string
	Category     string
	FavoriteOnly bool
}

// ProductCategoryRepository defines the interface for product category operations
type ProductCategoryRepository interface {
	Create(ctx context.Context, category *entity.ProductCategory) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.ProductCategory, error)
	GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*entity.ProductCategory, error)
	ListActive(ctx context.Context, ownerID uuid.UUID) ([]entity.ProductCategory, error)
	Update(ctx context.Context, category *entity.ProductCategory) error
	// Rename updates the category and every owner product filed under oldName in one transaction
	Rename(ctx context.Context, category *entity.ProductCategory, oldName string) error
}
