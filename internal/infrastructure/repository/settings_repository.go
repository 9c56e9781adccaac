package repository

import (
	"context"
	"errors"

	"github.com/sangkips/restopos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/restopos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type globalSettingRepository struct {
	db *gorm.DB
}

// NewGlobalSettingRepository creates a new settings repository
func NewGlobalSettingRepository(db *gorm.DB) domainRepo.GlobalSettingRepository {
	return &globalSettingRepository{db: db}
}

func (r *globalSettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var setting entity.GlobalSetting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

func (r *globalSettingRepository) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	var settings []entity.GlobalSetting
	if err := r.db.WithContext(ctx).Where("key IN ?", keys).Find(&settings).Error; err != nil {
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}
	return values, nil
}

func (r *globalSettingRepository) Upsert(ctx context.Context, key, value string) error {
	return r.UpsertMany(ctx, map[string]string{key: value})
}

func (r *globalSettingRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]entity.GlobalSetting, 0, len(values))
	for k, v := range values {
		rows = append(rows, entity.GlobalSetting{Key: k, Value: v})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
}
