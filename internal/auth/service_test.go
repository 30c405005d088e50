package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/internal/users"
	pkgauth "github.com/mcastellanos/orghub-backend/pkg/auth"
	"github.com/mcastellanos/orghub-backend/pkg/config"
	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
	"github.com/mcastellanos/orghub-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "orghub-test",
	ExpirationMinutes: 15,
}

type stubUserRepo struct {
	user      *models.User
	findErr   error
	createErr error
	lastLogin *time.Time
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
	}, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubMembershipsRepo struct {
	membership    *models.OrgMembership
	membershipErr error
	orgs          []memberships.MembershipWithOrg
}

func (s *stubMembershipsRepo) GetMembership(ctx context.Context, orgID, userID uuid.UUID) (*models.OrgMembership, error) {
	if s.membershipErr != nil {
		return nil, s.membershipErr
	}
	return s.membership, nil
}

func (s *stubMembershipsRepo) ListUserOrgs(ctx context.Context, userID uuid.UUID) ([]memberships.MembershipWithOrg, error) {
	return s.orgs, nil
}

type stubOrgFinder struct {
	org *models.Organization
	err error
}

func (s stubOrgFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.org, nil
}

type stubSessions struct {
	revoked   []string
	generated []string
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "rotated-id", "rotated-refresh", nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newTestService(t *testing.T, usersRepo *stubUserRepo, members *stubMembershipsRepo, orgs stubOrgFinder, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:       usersRepo,
		Memberships: members,
		Orgs:        orgs,
		Sessions:    sessions,
		JWT:         testJWT,
		Password:    config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t,
		&stubUserRepo{findErr: gorm.ErrRecordNotFound},
		&stubMembershipsRepo{}, stubOrgFinder{}, &stubSessions{},
	)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("message must not reveal whether the email exists, got %q", typed.Message())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: hashFor(t, "correct-horse")}
	svc := newTestService(t, &stubUserRepo{user: user}, &stubMembershipsRepo{}, stubOrgFinder{}, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrong-horse"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginSuccessIssuesSessionWithoutActiveOrg(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "a@example.com", PasswordHash: hashFor(t, "correct-horse")}
	usersRepo := &stubUserRepo{user: user}
	sessions := &stubSessions{}
	members := &stubMembershipsRepo{orgs: []memberships.MembershipWithOrg{{OrgName: "Acme"}}}
	svc := newTestService(t, usersRepo, members, stubOrgFinder{}, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "A@Example.com ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if usersRepo.lastLogin == nil {
		t.Fatal("expected last login timestamp update")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.generated))
	}
	if len(resp.Orgs) != 1 {
		t.Fatalf("expected org list, got %d", len(resp.Orgs))
	}

	claims, err := pkgauth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user %s in claims, got %s", user.ID, claims.UserID)
	}
	if claims.ActiveOrgID != nil {
		t.Fatal("fresh login must not carry an active org")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	usersRepo := &stubUserRepo{
		createErr: &duplicateEmailError{},
	}
	svc := newTestService(t, usersRepo, &stubMembershipsRepo{}, stubOrgFinder{}, &stubSessions{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "a@example.com",
		Password:  "correct-horse",
		FirstName: "A",
		LastName:  "B",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

type duplicateEmailError struct{}

func (duplicateEmailError) Error() string {
	return `duplicate key value violates unique constraint "idx_users_email"`
}

func TestRegisterNormalizesEmailAndHashes(t *testing.T) {
	usersRepo := &stubUserRepo{}
	svc := newTestService(t, usersRepo, &stubMembershipsRepo{}, stubOrgFinder{}, &stubSessions{})

	dto, err := svc.Register(context.Background(), RegisterRequest{
		Email:     " A@Example.COM ",
		Password:  "correct-horse",
		FirstName: " Ada ",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "a@example.com" {
		t.Fatalf("expected lowercased email, got %q", dto.Email)
	}
	if dto.FirstName != "Ada" {
		t.Fatalf("expected trimmed first name, got %q", dto.FirstName)
	}
}

func TestSwitchOrgRequiresMembershipOrOwnership(t *testing.T) {
	orgID := uuid.New()
	svc := newTestService(t,
		&stubUserRepo{},
		&stubMembershipsRepo{membershipErr: gorm.ErrRecordNotFound},
		stubOrgFinder{org: &models.Organization{ID: orgID, OwnerID: uuid.New()}},
		&stubSessions{},
	)

	_, err := svc.SwitchOrg(context.Background(), uuid.New(), "old-jti", orgID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSwitchOrgMissingOrg(t *testing.T) {
	svc := newTestService(t,
		&stubUserRepo{},
		&stubMembershipsRepo{},
		stubOrgFinder{err: gorm.ErrRecordNotFound},
		&stubSessions{},
	)

	_, err := svc.SwitchOrg(context.Background(), uuid.New(), "old-jti", uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSwitchOrgAsOwnerRotatesSession(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	sessions := &stubSessions{}
	svc := newTestService(t,
		&stubUserRepo{},
		&stubMembershipsRepo{membershipErr: gorm.ErrRecordNotFound},
		stubOrgFinder{org: &models.Organization{ID: orgID, OwnerID: userID}},
		sessions,
	)

	resp, err := svc.SwitchOrg(context.Background(), userID, "old-jti", orgID)
	if err != nil {
		t.Fatalf("switch org: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "old-jti" {
		t.Fatalf("expected old session revoked, got %v", sessions.revoked)
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected new session, got %d", len(sessions.generated))
	}

	claims, err := pkgauth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActiveOrgID == nil || *claims.ActiveOrgID != orgID {
		t.Fatalf("expected active org %s in claims, got %v", orgID, claims.ActiveOrgID)
	}
}

func TestSwitchOrgAsMember(t *testing.T) {
	orgID := uuid.New()
	userID := uuid.New()
	svc := newTestService(t,
		&stubUserRepo{},
		&stubMembershipsRepo{membership: &models.OrgMembership{OrgID: orgID, UserID: userID}},
		stubOrgFinder{org: &models.Organization{ID: orgID, OwnerID: uuid.New()}},
		&stubSessions{},
	)

	if _, err := svc.SwitchOrg(context.Background(), userID, "old-jti", orgID); err != nil {
		t.Fatalf("switch org as member: %v", err)
	}
}
