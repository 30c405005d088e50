package joinrequests

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/pkg/db"
	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
)

type requestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.JoinRequest, error)
	FindPending(ctx context.Context, orgID, userID uuid.UUID) (*models.JoinRequest, error)
	Create(ctx context.Context, orgID, userID uuid.UUID) (*models.JoinRequest, error)
	Consume(ctx context.Context, request *models.JoinRequest) (*models.OrgMembership, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ListForOrg(ctx context.Context, orgID uuid.UUID) ([]PendingRequestDTO, error)
}

type accessResolver interface {
	Resolve(ctx context.Context, orgID, userID uuid.UUID) (memberships.Access, error)
}

// Service exposes the join request workflow: submit, accept, decline.
type Service interface {
	Submit(ctx context.Context, applicantID, orgID uuid.UUID) error
	Accept(ctx context.Context, actorID, orgID, requestID uuid.UUID) error
	Decline(ctx context.Context, actorID, orgID, requestID uuid.UUID) error
	ListPending(ctx context.Context, actorID, orgID uuid.UUID) ([]PendingRequestDTO, error)
}

type service struct {
	repo   requestRepository
	access accessResolver
}

// NewService builds a join request service over the request repository.
func NewService(repo requestRepository, access accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("join request repository required")
	}
	if access == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, access: access}, nil
}

// Submit files a pending request for the applicant. Submitting twice for the
// same organization collapses to a no-op; concurrent duplicates resolve through
// the unique (org_id, user_id) constraint rather than application locking.
func (s *service) Submit(ctx context.Context, applicantID, orgID uuid.UUID) error {
	if orgID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if applicantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "applicant id is required")
	}

	_, err := s.repo.FindPending(ctx, orgID, applicantID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending request")
	}

	if _, err := s.repo.Create(ctx, orgID, applicantID); err != nil {
		if db.IsUniqueViolation(err, "idx_join_requests_org_user") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create join request")
	}
	return nil
}

// Accept consumes the request into a membership with the default member role.
// The request must exist: its row carries the applicant id the membership needs.
func (s *service) Accept(ctx context.Context, actorID, orgID, requestID uuid.UUID) error {
	if requestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}

	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !access.Privileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "join request not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load join request")
	}

	if _, err := s.repo.Consume(ctx, request); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept join request")
	}
	return nil
}

// Decline discards the request without creating a membership. A request that is
// already gone declines successfully; only Accept checks existence first.
func (s *service) Decline(ctx context.Context, actorID, orgID, requestID uuid.UUID) error {
	if requestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}

	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !access.Privileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	if err := s.repo.DeleteByID(ctx, requestID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline join request")
	}
	return nil
}

func (s *service) ListPending(ctx context.Context, actorID, orgID uuid.UUID) ([]PendingRequestDTO, error) {
	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !access.Privileged() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	pending, err := s.repo.ListForOrg(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list join requests")
	}
	return pending, nil
}
