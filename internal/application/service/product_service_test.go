package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
)

func TestProductLifecycle(t *testing.T) {
	owner := uuid.New()
	products := &fakeProductRepo{}
	svc := NewProductService(products)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, &ProductInput{UserID: owner, Name: "  Idli ", Price: money("30"), Category: "Breakfast"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.Name != "Idli" || !product.IsActive {
		t.Fatalf("product = %+v", product)
	}

	updated, err := svc.UpdateProduct(ctx, product.ID, &ProductInput{UserID: owner, Name: "Idli", Price: money("35"), Category: "Breakfast", IsFavorite: true})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if !updated.Price.Equal(money("35")) || !updated.IsFavorite {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := svc.GetProduct(ctx, uuid.New(), product.ID); appCode(t, err) != http.StatusNotFound {
		t.Fatalf("foreign owner: %v", err)
	}

	if err := svc.DeleteProduct(ctx, owner, product.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if len(products.products) != 1 || products.products[0].IsActive {
		t.Fatalf("delete must only deactivate: %+v", products.products)
	}
	if _, err := svc.GetProduct(ctx, owner, product.ID); appCode(t, err) != http.StatusNotFound {
		t.Fatalf("deleted product: %v", err)
	}
	list, err := svc.ListProducts(ctx, owner, nil)
	if err != nil || list == nil || len(list) != 0 {
		t.Fatalf("ListProducts = %+v, %v", list, err)
	}
}

func TestProductInputValidation(t *testing.T) {
	svc := NewProductService(&fakeProductRepo{})
	owner := uuid.New()

	tests := []struct {
		name  string
		input ProductInput
	}{
		{"blank name", ProductInput{UserID: owner, Name: "  ", Price: money("10")}},
		{"negative price", ProductInput{UserID: owner, Name: "Vada", Price: money("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProduct(context.Background(), &tt.input); appCode(t, err) != http.StatusBadRequest {
				t.Fatalf("err = %v", err)
			}
		})
	}
	if _, err := svc.UpdateProduct(context.Background(), uuid.New(), &ProductInput{UserID: owner, Name: "Vada"}); appCode(t, err) != http.StatusNotFound {
		t.Fatalf("unknown product: %v", err)
	}
}

func newCategoryFixture(owner uuid.UUID) (*ProductCategoryService, *fakeCategoryRepo, *fakeProductRepo) {
	products := &fakeProductRepo{products: []entity.Product{
		{ID: uuid.New(), UserID: owner, Name: "Filter Coffee", Category: "Drinks", IsActive: true},
		{ID: uuid.New(), UserID: owner, Name: "Idli", Category: "Breakfast", IsActive: true},
		{ID: uuid.New(), UserID: uuid.New(), Name: "Tea", Category: "Drinks", IsActive: true},
	}}
	categories := &fakeCategoryRepo{products: products}
	return NewProductCategoryService(categories), categories, products
}

func TestRenameCategoryMovesProducts(t *testing.T) {
	owner := uuid.New()
	svc, _, products := newCategoryFixture(owner)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, owner, "Drinks")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	renamed, err := svc.RenameCategory(ctx, owner, category.ID, " Beverages ")
	if err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	if renamed.Name != "Beverages" {
		t.Fatalf("name = %q", renamed.Name)
	}

	want := []string{"Beverages", "Breakfast", "Drinks"}
	for i, p := range products.products {
		if p.Category != want[i] {
			t.Fatalf("product %s category = %q, want %q", p.Name, p.Category, want[i])
		}
	}
}

func TestCategoryErrors(t *testing.T) {
	owner := uuid.New()
	svc, _, _ := newCategoryFixture(owner)
	ctx := context.Background()
	if _, err := svc.CreateCategory(ctx, owner, "Drinks"); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		code int
	}{
		{"duplicate name", func() error { _, err := svc.CreateCategory(ctx, owner, "drinks"); return err }, http.StatusConflict},
		{"blank name", func() error { _, err := svc.CreateCategory(ctx, owner, " "); return err }, http.StatusBadRequest},
		{"rename unknown", func() error { _, err := svc.RenameCategory(ctx, owner, uuid.New(), "Snacks"); return err }, http.StatusNotFound},
		{"delete unknown", func() error { return svc.DeleteCategory(ctx, owner, uuid.New()) }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := appCode(t, tt.run()); code != tt.code {
				t.Fatalf("code = %d, want %d", code, tt.code)
			}
		})
	}
}

func TestDeleteCategoryIsSoft(t *testing.T) {
	owner := uuid.New()
	svc, categories, products := newCategoryFixture(owner)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, owner, "Drinks")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := svc.DeleteCategory(ctx, owner, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	if len(categories.categories) != 1 || categories.categories[0].IsActive {
		t.Fatalf("categories = %+v", categories.categories)
	}
	if products.products[0].Category != "Drinks" {
		t.Fatal("products keep the category name")
	}
	list, err := svc.ListCategories(ctx, owner)
	if err != nil || len(list) != 0 {
		t.Fatalf("ListCategories = %+v, %v", list, err)
	}
	// the name is free again
	if _, err := svc.CreateCategory(ctx, owner, "Drinks"); err != nil {
		t.Fatalf("recreate: %v", err)
	}
}
