package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
)

// ProductCategoryService handles product category operations
type ProductCategoryService struct {
	categoryRepo repository.ProductCategoryRepository
}

// NewProductCategoryService creates a new product category service
func NewProductCategoryService(categoryRepo repository.ProductCategoryRepository) *ProductCategoryService {
	return &ProductCategoryService{categoryRepo: categoryRepo}
}

// CreateCategory creates a new category
func (s *ProductCategoryService) CreateCategory(ctx context.Context, ownerID uuid.UUID, name string) (*entity.ProductCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}

	existing, err := s.categoryRepo.GetByName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category already exists")
	}

	category := &entity.ProductCategory{
		UserID:   ownerID,
		Name:     name,
		IsActive: true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists the owner's active categories
func (s *ProductCategoryService) ListCategories(ctx context.Context, ownerID uuid.UUID) ([]entity.ProductCategory, error) {
	categories, err := s.categoryRepo.ListActive(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []entity.ProductCategory{}
	}
	return categories, nil
}

// RenameCategory renames a category and moves its products along
func (s *ProductCategoryService) RenameCategory(ctx context.Context, ownerID, id uuid.UUID, name string) (*entity.ProductCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}

	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	if category.Name == name {
		return category, nil
	}

	oldName := category.Name
	category.Name = name
	if err := s.categoryRepo.Rename(ctx, category, oldName); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deactivates a category. Products keep the name.
func (s *ProductCategoryService) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}

	category.IsActive = false
	return s.categoryRepo.Update(ctx, category)
}
