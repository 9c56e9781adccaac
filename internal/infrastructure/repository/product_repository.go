package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) GetByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) ListActive(ctx context.Context, ownerID uuid.UUID, params *domainRepo.ProductFilterParams) ([]entity.Product, error) {
	query := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ?", true)

	if params != nil {
		if params.Search != "" {
			query = query.Where("name ILIKE ?", "%"+params.Search+"%")
		}
		if params.Category != "" {
			query = query.Where("category = ?", params.Category)
		}
		if params.FavoriteOnly {
			query = query.Where("is_favorite = ?", true)
		}
	}

	var products []entity.Product
	err := query.Order("name ASC").Find(&products).Error
	return products, err
}

type productCategoryRepository struct {
	db *gorm.DB
}

// NewProductCategoryRepository creates a new product category repository
func NewProductCategoryRepository(db *gorm.DB) domainRepo.ProductCategoryRepository {
	return &productCategoryRepository{db: db}
}

func (r *productCategoryRepository) Create(ctx context.Context, category *entity.ProductCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *productCategoryRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.ProductCategory, error) {
	var category entity.ProductCategory
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *productCategoryRepository) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*entity.ProductCategory, error) {
	var category entity.ProductCategory
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ?", true).
		First(&category, "LOWER(name) = LOWER(?)", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *productCategoryRepository) ListActive(ctx context.Context, ownerID uuid.UUID) ([]entity.ProductCategory, error) {
	var categories []entity.ProductCategory
	err := r.db.WithContext(ctx).
		Scopes(OwnerScope(ownerID)).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *productCategoryRepository) Update(ctx context.Context, category *entity.ProductCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *productCategoryRepository) Rename(ctx context.Context, category *entity.ProductCategory, oldName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(category).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Product{}).
			Scopes(OwnerScope(category.UserID)).
			Where("category = ?", oldName).
			Update("category", category.Name).Error
	})
}
