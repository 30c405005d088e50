package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the canonical tenant model. OwnerID is set at creation and never
// reassigned; ownership privilege derives from this column, not from the membership table.
type Organization struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	LogoURL   string    `gorm:"column:logo_url;not null"`
	OwnerID   uuid.UUID `gorm:"column:owner;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
