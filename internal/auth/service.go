package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/internal/users"
	pkgauth "github.com/mcastellanos/orghub-backend/pkg/auth"
	"github.com/mcastellanos/orghub-backend/pkg/auth/session"
	"github.com/mcastellanos/orghub-backend/pkg/config"
	"github.com/mcastellanos/orghub-backend/pkg/db"
	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
	"github.com/mcastellanos/orghub-backend/pkg/security"
)

// Credential failures share one message so responses do not reveal whether the
// email exists.
const invalidCredentialsMessage = "invalid email or password"

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type membershipsRepository interface {
	GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error)
	ListUserOrgs(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithOrg, error)
}

type organizationFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service exposes account and session operations.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, accessID string) error
	SwitchOrg(ctx context.Context, userID uuid.UUID, accessID string, orgID uuid.UUID) (*LoginResponse, error)
}

// ServiceParams bundles the dependencies NewService needs.
type ServiceParams struct {
	Users       userRepository
	Memberships membershipsRepository
	Orgs        organizationFinder
	Sessions    sessionManager
	JWT         config.JWTConfig
	Password    config.PasswordConfig
}

type service struct {
	users       userRepository
	memberships membershipsRepository
	orgs        organizationFinder
	sessions    sessionManager
	jwt         config.JWTConfig
	password    config.PasswordConfig
	now         func() time.Time
}

// NewService validates the params and builds the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if params.Orgs == nil {
		return nil, fmt.Errorf("organization finder required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}

	return &service{
		users:       params.Users,
		memberships: params.Memberships,
		orgs:        params.Orgs,
		sessions:    params.Sessions,
		jwt:         params.JWT,
		password:    params.Password,
		now:         time.Now,
	}, nil
}

// Register creates an account with a hashed password. The email must be unused.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return users.FromModel(user), nil
}

// Login verifies credentials and opens a session. The minted token has no
// active organization until the caller switches into one.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update last login")
	}
	user.LastLoginAt = &now

	orgs, err := s.memberships.ListUserOrgs(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list organizations")
	}

	access, refresh, err := s.issueTokens(ctx, user.ID, nil)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         users.FromModel(user),
		Orgs:         orgs,
	}, nil
}

// Refresh rotates the refresh token and reissues the access token with the
// same user and active organization under a new jti.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	access, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:      claims.UserID,
		ActiveOrgID: claims.ActiveOrgID,
		JTI:         newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &RefreshResponse{AccessToken: access, RefreshToken: newRefresh}, nil
}

// Logout revokes the refresh session tied to the access token's jti.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// SwitchOrg reissues the token pair with the target organization as the active
// one. The caller must own the organization or hold a membership in it; the
// token still carries no role, so privilege stays a per-request lookup.
func (s *service) SwitchOrg(ctx context.Context, userID uuid.UUID, accessID string, orgID uuid.UUID) (*LoginResponse, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}

	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}

	if org.OwnerID != userID {
		if _, err := s.memberships.GetMembership(ctx, orgID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this organization")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
		}
	}

	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}

	access, refresh, err := s.issueTokens(ctx, userID, &orgID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ActiveOrgID:  &orgID,
	}, nil
}

func (s *service) issueTokens(ctx context.Context, userID uuid.UUID, activeOrgID *uuid.UUID) (string, string, error) {
	accessID := session.NewAccessID()

	access, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:      userID,
		ActiveOrgID: activeOrgID,
		JTI:         accessID,
	})
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return "", "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	return access, refresh, nil
}
