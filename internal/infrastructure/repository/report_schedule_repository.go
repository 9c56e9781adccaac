package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type reportScheduleRepository struct {
	db *gorm.DB
}

// NewReportScheduleRepository creates a new report schedule repository
func NewReportScheduleRepository(db *gorm.DB) domainRepo.ReportScheduleRepository {
	return &reportScheduleRepository{db: db}
}

func (r *reportScheduleRepository) List(ctx context.Context) ([]entity.ReportSchedule, error) {
	var schedules []entity.ReportSchedule
	err := r.db.WithContext(ctx).Order("cadence ASC, category ASC").Find(&schedules).Error
	return schedules, err
}

func (r *reportScheduleRepository) ListActive(ctx context.Context) ([]entity.ReportSchedule, error) {
	var schedules []entity.ReportSchedule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("cadence ASC, category ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *reportScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReportSchedule, error) {
	var schedule entity.ReportSchedule
	err := r.db.WithContext(ctx).First(&schedule, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &schedule, err
}

func (r *reportScheduleRepository) Update(ctx context.Context, schedule *entity.ReportSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// MarkRun writes only last_run so a concurrent edit of the other columns survives
func (r *reportScheduleRepository) MarkRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.ReportSchedule
		if err := tx.First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&current).UpdateColumn("last_run", at.UTC()).Error
	})
}
