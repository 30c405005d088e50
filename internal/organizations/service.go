package organizations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
)

const (
	nameMinLen = 3
	nameMaxLen = 50
)

type orgRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	CreateWithOwner(ctx context.Context, org *models.Organization) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type accessResolver interface {
	Resolve(ctx context.Context, orgID, userID uuid.UUID) (memberships.Access, error)
}

// Service exposes organization lifecycle operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateOrganizationInput) (*OrganizationDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrganizationDTO, error)
	Rename(ctx context.Context, actorID, orgID uuid.UUID, name string) error
	Reimage(ctx context.Context, actorID, orgID uuid.UUID, logoURL string) error
	Delete(ctx context.Context, actorID, orgID uuid.UUID) error
}

type service struct {
	repo   orgRepository
	access accessResolver
}

// NewService builds an organization service with the provided collaborators.
func NewService(repo orgRepository, access accessResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("organization repository required")
	}
	if access == nil {
		return nil, fmt.Errorf("access resolver required")
	}
	return &service{repo: repo, access: access}, nil
}

// CreateOrganizationInput captures the data required to create an organization.
type CreateOrganizationInput struct {
	Name    string
	LogoURL string
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateOrganizationInput) (*OrganizationDTO, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateLogoURL(input.LogoURL); err != nil {
		return nil, err
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner is required")
	}

	org := &models.Organization{
		Name:    name,
		LogoURL: input.LogoURL,
		OwnerID: ownerID,
	}
	if err := s.repo.CreateWithOwner(ctx, org); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create organization")
	}
	return FromModel(org), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationDTO, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return FromModel(org), nil
}

func (s *service) Rename(ctx context.Context, actorID, orgID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.requirePrivileged(ctx, orgID, actorID); err != nil {
		return err
	}

	if err := s.repo.UpdateName(ctx, orgID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename organization")
	}
	return nil
}

func (s *service) Reimage(ctx context.Context, actorID, orgID uuid.UUID, logoURL string) error {
	if err := validateLogoURL(logoURL); err != nil {
		return err
	}
	if err := s.requirePrivileged(ctx, orgID, actorID); err != nil {
		return err
	}

	if err := s.repo.UpdateLogoURL(ctx, orgID, logoURL); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update organization image")
	}
	return nil
}

// Delete removes the organization and everything hanging off it. Ownership is
// required strictly; admins cannot delete.
func (s *service) Delete(ctx context.Context, actorID, orgID uuid.UUID) error {
	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !access.IsOwner {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can delete the organization")
	}

	if err := s.repo.Delete(ctx, orgID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete organization")
	}
	return nil
}

func (s *service) requirePrivileged(ctx context.Context, orgID, actorID uuid.UUID) error {
	access, err := s.access.Resolve(ctx, orgID, actorID)
	if err != nil {
		return err
	}
	if !access.Privileged() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}
	return nil
}

func validateName(name string) error {
	// The bounds count characters, not bytes, so multibyte names measure the
	// same as ASCII ones.
	if length := utf8.RuneCountInString(name); length < nameMinLen || length > nameMaxLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"name": fmt.Sprintf("must be between %d and %d characters", nameMinLen, nameMaxLen)})
	}
	return nil
}

func validateLogoURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"logo_url": "must be a valid URL"})
	}
	return nil
}
