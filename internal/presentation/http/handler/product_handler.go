package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
)

// ProductHandler handles product and product category HTTP requests
type ProductHandler struct {
	productService  *service.ProductService
	categoryService *service.ProductCategoryService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, categoryService *service.ProductCategoryService) *ProductHandler {
	return &ProductHandler{productService: productService, categoryService: categoryService}
}

// List handles listing the menu
func (h *ProductHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), userID, &repository.ProductFilterParams{
		Search:       filter.Search,
		Category:     filter.Category,
		FavoriteOnly: filter.Favorites,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products retrieved successfully", products)
}

// Get handles fetching a single product
func (h *ProductHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), productInput(userID, &req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, productInput(userID, &req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles removing a product from the menu
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

func productInput(userID uuid.UUID, req *request.ProductRequest) *service.ProductInput {
	return &service.ProductInput{
		UserID:     userID,
		Name:       req.Name,
		Price:      req.Price,
		Category:   req.Category,
		IsFavorite: req.IsFavorite,
	}
}

// ListCategories handles listing product categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}

// CreateCategory handles creating a product category
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), userID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// RenameCategory handles renaming a product category
func (h *ProductHandler) RenameCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}

	var req request.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.categoryService.RenameCategory(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// DeleteCategory handles deactivating a product category
func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category deleted successfully", nil)
}
