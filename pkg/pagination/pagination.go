package pagination

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params are the page-based query parameters accepted by list endpoints
type Params struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize clamps the parameters into valid ranges
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset calculates the offset for SQL queries
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Pagination describes the page that was returned
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPagination creates a new Pagination response
func NewPagination(p Params, total int64) *Pagination {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PageSize)))
	}
	return &Pagination{
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}

// PaginatedResult represents a paginated result with items and pagination info
type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// NewPaginatedResult creates a new paginated result
func NewPaginatedResult[T any](items []T, p Params, total int64) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:      items,
		Pagination: NewPagination(p, total),
	}
}
