package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/pkg/enums"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
)

type accessResolver interface {
	Resolve(ctx context.Context, orgID, userID uuid.UUID) (Access, error)
}

type rosterRepository interface {
	UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole) error
	DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error
	ListOrgMembers(ctx context.Context, orgID uuid.UUID) ([]OrgMemberDTO, error)
}

// Service exposes roster operations on an organization's membership table.
type Service interface {
	ChangeRole(ctx context.Context, actorID, orgID, targetUserID uuid.UUID, role enums.MemberRole) error
	RemoveMember(ctx context.Context, actorID, orgID, targetUserID uuid.UUID) error
	ListMembers(ctx context.Context, actorID, orgID uuid.UUID) ([]OrgMemberDTO, error)
}

type service struct {
	repo   rosterRepository
	access accessResolver
}

// NewService builds a roster service over the membership repository.
func NewService(repo rosterRepository, access accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("membership repository required")
	}
	if access == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, access: access}, nil
}

// ChangeRole rewrites a member's role. Granting admin is reserved to the owner;
// demoting to member only needs a privileged caller. There is deliberately no
// guard against demoting the last admin or the owner's own row.
func (s *service) ChangeRole(ctx context.Context, actorID, orgID, targetUserID uuid.UUID, role enums.MemberRole) error {
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid member role %q", role))
	}

	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if role == enums.MemberRoleAdmin {
		if !access.IsOwner {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can grant admin")
		}
	} else if !access.Privileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	if err := s.repo.UpdateRole(ctx, orgID, targetUserID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member role")
	}
	return nil
}

// RemoveMember deletes the membership row for the target user. Removing a user
// who is not a member succeeds without effect.
func (s *service) RemoveMember(ctx context.Context, actorID, orgID, targetUserID uuid.UUID) error {
	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !access.Privileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	if err := s.repo.DeleteMembership(ctx, orgID, targetUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}
	return nil
}

func (s *service) ListMembers(ctx context.Context, actorID, orgID uuid.UUID) ([]OrgMemberDTO, error) {
	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !access.Privileged() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	members, err := s.repo.ListOrgMembers(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list organization members")
	}
	return members, nil
}
