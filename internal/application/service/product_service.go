package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// ProductInput represents the create and update product input
type ProductInput struct {
	UserID     uuid.UUID
	Name       string
	Price      decimal.Decimal
	Category   string
	IsFavorite bool
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewBadRequestError("Product name is required")
	}
	if in.Price.IsNegative() {
		return apperror.NewBadRequestError("Price cannot be negative")
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &entity.Product{
		UserID:     input.UserID,
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
		Category:   strings.TrimSpace(input.Category),
		IsFavorite: input.IsFavorite,
		IsActive:   true,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves an active product by ID
func (s *ProductService) GetProduct(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists the owner's active products
func (s *ProductService) ListProducts(ctx context.Context, ownerID uuid.UUID, params *repository.ProductFilterParams) ([]entity.Product, error) {
	products, err := s.productRepo.ListActive(ctx, ownerID, params)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []entity.Product{}
	}
	return products, nil
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, input.UserID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Price = input.Price
	product.Category = strings.TrimSpace(input.Category)
	product.IsFavorite = input.IsFavorite

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deactivates a product. Past bills keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if product == nil {
		return apperror.NewNotFoundError("Product")
	}

	product.IsActive = false
	return s.productRepo.Update(ctx, product)
}
