package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is a server-side rotating refresh token. Rotation revokes the
// old token and records its replacement so a chain can be traced.
type RefreshToken struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Token           string     `gorm:"size:255;uniqueIndex;not null" json:"-"`
	ExpiresAt       time.Time  `gorm:"not null;index" json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedByIP     string     `gorm:"size:64" json:"created_by_ip"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	RevokedByIP     *string    `gorm:"size:64" json:"revoked_by_ip,omitempty"`
	ReplacedByToken *string    `gorm:"size:255" json:"-"`
}

// BeforeCreate generates a UUID before creating a new refresh token
func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired reports whether the token is past its expiry at now
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive reports whether the token can still be used at now
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && !t.IsExpired(now)
}
