package memberships

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetMembership retrieves a membership by organization and user.
func (r *Repository) GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error) {
	var membership models.OrgMembership
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole) (*models.OrgMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.OrgMembership{
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UpdateRole rewrites the role on the membership row for (org, user).
// Returns gorm.ErrRecordNotFound when no such membership exists.
func (r *Repository) UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid member role %q", role)
	}

	res := r.db.WithContext(ctx).
		Model(&models.OrgMembership{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMembership removes the membership row for (org, user). Deleting a row
// that is already gone is not an error.
func (r *Repository) DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.OrgMembership{}).Error
}

// ListUserOrgs returns the organizations a user belongs to along with membership metadata.
func (r *Repository) ListUserOrgs(ctx context.Context, userID uuid.UUID) ([]MembershipWithOrg, error) {
	var rows []membershipWithOrgRow

	err := r.db.WithContext(ctx).
		Model(&models.OrgMembership{}).
		Select("org_memberships.*, organizations.name AS org_name, organizations.logo_url AS org_logo_url").
		Joins("JOIN organizations ON organizations.id = org_memberships.org_id").
		Where("org_memberships.user_id = ?", userID).
		Order("organizations.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipsWithOrgFromRows(rows), nil
}

// ListOrgMembers returns memberships for the organization along with user metadata.
func (r *Repository) ListOrgMembers(ctx context.Context, orgID uuid.UUID) ([]OrgMemberDTO, error) {
	var rows []orgMemberRow
	err := r.db.WithContext(ctx).
		Model(&models.OrgMembership{}).
		Select("org_memberships.*, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = org_memberships.user_id").
		Where("org_memberships.org_id = ?", orgID).
		Order("org_memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return orgMembersFromRows(rows), nil
}
