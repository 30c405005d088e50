package joinrequests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

// Repository exposes join request persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a join request by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error) {
	var request models.JoinRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindPending loads the outstanding request for (org, user), if any.
func (r *Repository) FindPending(ctx context.Context, orgID, userID uuid.UUID) (*models.JoinRequest, error) {
	var request models.JoinRequest
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a pending request. The unique (org_id, user_id) index rejects
// a second outstanding request for the same pair.
func (r *Repository) Create(ctx context.Context, orgID, userID uuid.UUID) (*models.JoinRequest, error) {
	request := &models.JoinRequest{
		OrgID:  orgID,
		UserID: userID,
	}
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// Consume accepts the request: it creates the applicant's membership row and
// deletes the request in one transaction, so the request is never consumed
// without producing a membership or vice versa.
func (r *Repository) Consume(ctx context.Context, request *models.JoinRequest) (*models.OrgMembership, error) {
	membership := &models.OrgMembership{
		OrgID:  request.OrgID,
		UserID: request.UserID,
		Role:   enums.MemberRoleMember,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(membership).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", request.ID).Delete(&models.JoinRequest{}).Error
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// DeleteByID discards the request. Deleting an id that no longer exists is a
// silent no-op, unlike Consume which needs the row's applicant.
func (r *Repository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.JoinRequest{}).Error
}

// ListForOrg returns the organization's pending requests with applicant metadata.
func (r *Repository) ListForOrg(ctx context.Context, orgID uuid.UUID) ([]PendingRequestDTO, error) {
	var rows []pendingRequestRow
	err := r.db.WithContext(ctx).
		Model(&models.JoinRequest{}).
		Select("join_requests.*, users.email, users.first_name, users.last_name").
		Joins("JOIN users ON users.id = join_requests.user_id").
		Where("join_requests.org_id = ?", orgID).
		Order("join_requests.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return pendingRequestsFromRows(rows), nil
}
