package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

// OrgMembership links a user with an organization and captures their role.
// The (org_id, user_id) pair is unique: one membership row per member per org.
type OrgMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID        `gorm:"column:org_id;type:uuid;not null;uniqueIndex:idx_org_memberships_org_user"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_org_memberships_org_user"`
	Role      enums.MemberRole `gorm:"column:role;type:member_role;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
