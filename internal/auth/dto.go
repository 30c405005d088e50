package auth

import (
	"github.com/google/uuid"

	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/internal/users"
)

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// LoginRequest carries the credentials for password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login or org switch.
type LoginResponse struct {
	AccessToken  string                          `json:"access_token"`
	RefreshToken string                          `json:"refresh_token"`
	User         *users.UserDTO                  `json:"user,omitempty"`
	Orgs         []memberships.MembershipWithOrg `json:"orgs,omitempty"`
	ActiveOrgID  *uuid.UUID                      `json:"active_org_id,omitempty"`
}

// RefreshRequest rotates a refresh token into a fresh access/refresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse mirrors LoginResponse minus the user payload.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SwitchOrgRequest selects the caller's active organization.
type SwitchOrgRequest struct {
	OrgID uuid.UUID `json:"org_id" validate:"required"`
}
