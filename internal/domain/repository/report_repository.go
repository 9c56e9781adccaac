package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
)

// ReportScheduleRepository defines the interface for report schedule persistence
type ReportScheduleRepository interface {
	List(ctx context.Context) ([]entity.ReportSchedule, error)
	ListActive(ctx context.Context) ([]entity.ReportSchedule, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReportSchedule, error)
	Update(ctx context.Context, schedule *entity.ReportSchedule) error
	// MarkRun re-reads the row and updates only last_run
	MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error
}

// GlobalSettingRepository defines the interface for restaurant-wide settings
type GlobalSettingRepository interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Upsert(ctx context.Context, key, value string) error
	UpsertMany(ctx context.Context, values map[string]string) error
}
