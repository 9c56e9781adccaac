package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/restopos-api/internal/config"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/enum"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, log *logrus.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	err := db.AutoMigrate(
		// Accounts
		&entity.User{},
		&entity.RefreshToken{},

		// Catalog
		&entity.ProductCategory{},
		&entity.Product{},

		// Sales
		&entity.Bill{},
		&entity.BillItem{},

		// Expenses
		&entity.ExpenseCategory{},
		&entity.Expense{},

		// Reporting and system
		&entity.ReportSchedule{},
		&entity.GlobalSetting{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}

// DefaultSchedules returns the six schedule rows that must always exist
func DefaultSchedules() []entity.ReportSchedule {
	sunday := time.Sunday
	firstOfMonth := 1

	var schedules []entity.ReportSchedule
	for _, cadence := range enum.Cadences {
		for _, category := range enum.ScheduledCategories {
			s := entity.ReportSchedule{
				Cadence:       cadence,
				Category:      category,
				IsActive:      cadence == enum.CadenceDaily,
				ScheduledTime: entity.TimeOfDay{Hour: 22, Minute: 0},
			}
			switch cadence {
			case enum.CadenceWeekly:
				d := sunday
				s.DayOfWeek = &d
			case enum.CadenceMonthly:
				d := firstOfMonth
				s.DayOfMonth = &d
			}
			schedules = append(schedules, s)
		}
	}
	return schedules
}

// SeedReportSchedules inserts any missing (cadence, category) schedule. Existing rows are untouched.
func SeedReportSchedules(ctx context.Context, db *gorm.DB, log *logrus.Logger) error {
	schedules := DefaultSchedules()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cadence"}, {Name: "category"}},
			DoNothing: true,
		}).
		Create(&schedules)
	if res.Error != nil {
		return fmt.Errorf("failed to seed report schedules: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.WithField("created", res.RowsAffected).Info("Seeded report schedules")
	}
	return nil
}

// SeedGeneralSettings inserts default restaurant settings that are missing
func SeedGeneralSettings(ctx context.Context, db *gorm.DB, log *logrus.Logger) error {
	rows := make([]entity.GlobalSetting, 0, len(entity.DefaultGeneralSettings))
	for k, v := range entity.DefaultGeneralSettings {
		rows = append(rows, entity.GlobalSetting{Key: k, Value: v})
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return fmt.Errorf("failed to seed general settings: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.WithField("created", res.RowsAffected).Info("Seeded general settings")
	}
	return nil
}

// SeedDefaultData runs every idempotent startup seed
func SeedDefaultData(ctx context.Context, db *gorm.DB, log *logrus.Logger) error {
	log.Info("Seeding default data...")
	if err := SeedReportSchedules(ctx, db, log); err != nil {
		return err
	}
	if err := SeedGeneralSettings(ctx, db, log); err != nil {
		return err
	}
	log.Info("Default data seeding completed")
	return nil
}
