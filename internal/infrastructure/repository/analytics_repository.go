package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type salesAnalyticsRepository struct {
	db *gorm.DB
}

// NewSalesAnalyticsRepository creates a new sales analytics repository
func NewSalesAnalyticsRepository(db *gorm.DB) domainRepo.SalesAnalyticsRepository {
	return &salesAnalyticsRepository{db: db}
}

func (r *salesAnalyticsRepository) BestSellers(ctx context.Context, ownerID uuid.UUID, start, end time.Time, limit int) ([]domainRepo.ItemSales, error) {
	var results []domainRepo.ItemSales

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			bi.product_name AS product_name,
			COALESCE(SUM(bi.quantity), 0) AS quantity,
			COALESCE(SUM(bi.total), 0) AS revenue
		FROM bill_items bi
		JOIN bills b ON b.id = bi.bill_id
		WHERE b.user_id = ? AND b.created_at >= ? AND b.created_at < ?
		GROUP BY bi.product_name
		ORDER BY quantity DESC, revenue DESC
		LIMIT ?
	`, ownerID, start, end, limit).Scan(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}
