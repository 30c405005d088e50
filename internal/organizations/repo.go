package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

// Repository exposes organization persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads an organization by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateWithOwner inserts the organization row and the owner's admin membership
// row in one transaction. No reader ever observes the organization without its
// owner membership.
func (r *Repository) CreateWithOwner(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		membership := &models.OrgMembership{
			OrgID:  org.ID,
			UserID: org.OwnerID,
			Role:   enums.MemberRoleAdmin,
		}
		return tx.Create(membership).Error
	})
}

// UpdateName rewrites only the organization's name.
func (r *Repository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLogoURL rewrites only the organization's image reference.
func (r *Repository) UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", id).
		Update("logo_url", logoURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the organization and cascades to its memberships and join
// requests inside one transaction.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", id).Delete(&models.JoinRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("org_id = ?", id).Delete(&models.OrgMembership{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Organization{}).Error
	})
}
