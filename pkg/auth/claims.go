package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT. Privilege is
// deliberately absent: roles are read fresh from the membership table on every
// request, so a stale token can never grant stale authority.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	ActiveOrgID *uuid.UUID
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID  `json:"user_id"`
	ActiveOrgID *uuid.UUID `json:"active_org_id,omitempty"`
	jwt.RegisteredClaims
}
