package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerScope restricts a query to rows owned by ownerID
func OwnerScope(ownerID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", ownerID)
	}
}

// OptionalOwnerScope restricts to ownerID when it is set and leaves the query
// restaurant-wide otherwise
func OptionalOwnerScope(ownerID *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ownerID == nil {
			return db
		}
		return db.Where("user_id = ?", *ownerID)
	}
}

// HalfOpen filters column to [start, end). Nil bounds are open.
func HalfOpen(column string, start, end *time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where(column+" >= ?", *start)
		}
		if end != nil {
			db = db.Where(column+" < ?", *end)
		}
		return db
	}
}
