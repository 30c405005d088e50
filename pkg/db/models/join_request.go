package models

import (
	"time"

	"github.com/google/uuid"
)

// JoinRequest is a pending application by a non-member to join an organization.
// A row's existence is the pending state; acceptance or decline deletes the row.
// The (org_id, user_id) unique index collapses duplicate submissions.
type JoinRequest struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID `gorm:"column:org_id;type:uuid;not null;uniqueIndex:idx_join_requests_org_user"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_join_requests_org_user"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
