package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
)

// Access is the effective permission set a caller holds on one organization.
// IsOwner derives from the organization's owner column; IsAdmin from the
// caller's membership row. Both are read fresh on every Resolve call so a
// revoked role takes effect immediately.
type Access struct {
	IsOwner bool
	IsAdmin bool
}

// Privileged reports whether the caller may perform admin-level mutations.
func (a Access) Privileged() bool {
	return a.IsOwner || a.IsAdmin
}

type organizationFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

type membershipGetter interface {
	GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error)
}

// Resolver computes a caller's effective access on an organization. It is the
// single authorization decision point shared by every mutating service.
type Resolver struct {
	orgs        organizationFinder
	memberships membershipGetter
}

// NewResolver builds an access resolver over the provided repositories.
func NewResolver(orgs organizationFinder, memberships membershipGetter) (*Resolver, error) {
	if orgs == nil {
		return nil, fmt.Errorf("organization finder required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership getter required")
	}
	return &Resolver{orgs: orgs, memberships: memberships}, nil
}

// Resolve returns the caller's current access on the organization.
func (r *Resolver) Resolve(ctx context.Context, orgID, userID uuid.UUID) (Access, error) {
	org, err := r.orgs.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return Access{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}

	access := Access{IsOwner: org.OwnerID == userID}

	membership, err := r.memberships.GetMembership(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access, nil
		}
		return Access{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	access.IsAdmin = membership.Role == enums.MemberRoleAdmin
	return access, nil
}
