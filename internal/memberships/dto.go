package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID        uuid.UUID        `json:"id"`
	OrgID     uuid.UUID        `json:"org_id"`
	UserID    uuid.UUID        `json:"user_id"`
	Role      enums.MemberRole `json:"role"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// MembershipWithOrg includes basic organization metadata + membership info.
type MembershipWithOrg struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	OrgID        uuid.UUID        `json:"org_id"`
	UserID       uuid.UUID        `json:"user_id"`
	OrgName      string           `json:"org_name"`
	OrgLogoURL   string           `json:"org_logo_url"`
	Role         enums.MemberRole `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
}

// OrgMemberDTO mixes membership metadata with the associated user profile for admins.
type OrgMemberDTO struct {
	MembershipID uuid.UUID        `json:"membership_id"`
	OrgID        uuid.UUID        `json:"org_id"`
	UserID       uuid.UUID        `json:"user_id"`
	Email        string           `json:"email"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	Role         enums.MemberRole `json:"role"`
	CreatedAt    time.Time        `json:"created_at"`
	LastLoginAt  *time.Time       `json:"last_login_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.OrgMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:        m.ID,
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type membershipWithOrgRow struct {
	models.OrgMembership
	OrgName    string `gorm:"column:org_name"`
	OrgLogoURL string `gorm:"column:org_logo_url"`
}

func membershipsWithOrgFromRows(rows []membershipWithOrgRow) []MembershipWithOrg {
	out := make([]MembershipWithOrg, 0, len(rows))
	for _, row := range rows {
		out = append(out, MembershipWithOrg{
			MembershipID: row.ID,
			OrgID:        row.OrgID,
			UserID:       row.UserID,
			OrgName:      row.OrgName,
			OrgLogoURL:   row.OrgLogoURL,
			Role:         row.Role,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}

type orgMemberRow struct {
	models.OrgMembership
	Email       string     `gorm:"column:email"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func orgMembersFromRows(rows []orgMemberRow) []OrgMemberDTO {
	out := make([]OrgMemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrgMemberDTO{
			MembershipID: row.ID,
			OrgID:        row.OrgID,
			UserID:       row.UserID,
			Email:        row.Email,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Role:         row.Role,
			CreatedAt:    row.CreatedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
