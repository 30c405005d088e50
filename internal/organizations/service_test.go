package organizations

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/internal/memberships"
	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	pkgerrors "github.com/mcastellanos/orghub-backend/pkg/errors"
)

type stubOrgRepo struct {
	org       *models.Organization
	findErr   error
	createErr error
	updateErr error
	deleteErr error

	created  *models.Organization
	renamed  string
	reimaged string
	deleted  bool
}

func (s *stubOrgRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.org, nil
}

func (s *stubOrgRepo) CreateWithOwner(ctx context.Context, org *models.Organization) error {
	if s.createErr != nil {
		return s.createErr
	}
	org.ID = uuid.New()
	s.created = org
	return nil
}

func (s *stubOrgRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.renamed = name
	return nil
}

func (s *stubOrgRepo) UpdateLogoURL(ctx context.Context, id uuid.UUID, logoURL string) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.reimaged = logoURL
	return nil
}

func (s *stubOrgRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = true
	return nil
}

type stubAccess struct {
	access memberships.Access
	err    error
}

func (s stubAccess) Resolve(ctx context.Context, orgID, userID uuid.UUID) (memberships.Access, error) {
	return s.access, s.err
}

func newOrgService(t *testing.T, repo *stubOrgRepo, access memberships.Access) Service {
	t.Helper()
	svc, err := NewService(repo, stubAccess{access: access})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateValidatesNameLength(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	cases := []struct {
		label string
		name  string
	}{
		{"too short", "ab"},
		{"too long", strings.Repeat("x", 51)},
		{"whitespace only", "   "},
		{"two multibyte characters", "日本"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), uuid.New(), CreateOrganizationInput{
			Name:    tc.name,
			LogoURL: "https://cdn.example.com/logo.png",
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.label, err)
		}
	}
	if repo.created != nil {
		t.Fatal("repo must not be touched on invalid input")
	}
}

func TestCreateCountsNameLengthInRunes(t *testing.T) {
	// 20 CJK characters are 60 bytes; the bound is on characters, so the
	// name must pass.
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	name := strings.Repeat("日", 20)
	dto, err := svc.Create(context.Background(), uuid.New(), CreateOrganizationInput{
		Name:    name,
		LogoURL: "https://cdn.example.com/logo.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != name {
		t.Fatalf("expected name %q, got %q", name, dto.Name)
	}
}

func TestCreateTrimsNameBeforeValidation(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	dto, err := svc.Create(context.Background(), uuid.New(), CreateOrganizationInput{
		Name:    "  Acme Corp  ",
		LogoURL: "https://cdn.example.com/logo.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Acme Corp" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
}

func TestCreateValidatesLogoURL(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	for _, bad := range []string{"", "not-a-url", "ftp://files.example.com/logo.png", "https://"} {
		_, err := svc.Create(context.Background(), uuid.New(), CreateOrganizationInput{
			Name:    "Acme Corp",
			LogoURL: bad,
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("url %q: expected validation error, got %v", bad, err)
		}
	}
}

func TestCreatePersistsOwner(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	ownerID := uuid.New()
	dto, err := svc.Create(context.Background(), ownerID, CreateOrganizationInput{
		Name:    "Acme Corp",
		LogoURL: "https://cdn.example.com/logo.png",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.created == nil || repo.created.OwnerID != ownerID {
		t.Fatalf("expected owner %s on created org, got %+v", ownerID, repo.created)
	}
	if dto.OwnerID != ownerID {
		t.Fatalf("expected owner on dto, got %s", dto.OwnerID)
	}
}

func TestRenameRequiresPrivilege(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	err := svc.Rename(context.Background(), uuid.New(), uuid.New(), "New Name")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.renamed != "" {
		t.Fatal("repo must not be touched")
	}
}

func TestRenameValidatesBeforeAuthorization(t *testing.T) {
	// Short-circuit on bad input so an unprivileged caller still sees 400 over 403.
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{})

	err := svc.Rename(context.Background(), uuid.New(), uuid.New(), "ab")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenameAsAdmin(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{IsAdmin: true})

	if err := svc.Rename(context.Background(), uuid.New(), uuid.New(), "  Renamed Org  "); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if repo.renamed != "Renamed Org" {
		t.Fatalf("expected trimmed rename, got %q", repo.renamed)
	}
}

func TestRenameMissingOrg(t *testing.T) {
	repo := &stubOrgRepo{updateErr: gorm.ErrRecordNotFound}
	svc := newOrgService(t, repo, memberships.Access{IsOwner: true})

	err := svc.Rename(context.Background(), uuid.New(), uuid.New(), "New Name")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReimageAsAdmin(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{IsAdmin: true})

	if err := svc.Reimage(context.Background(), uuid.New(), uuid.New(), "http://cdn.example.com/new.png"); err != nil {
		t.Fatalf("reimage: %v", err)
	}
	if repo.reimaged != "http://cdn.example.com/new.png" {
		t.Fatalf("unexpected logo url %q", repo.reimaged)
	}
}

func TestReimageRejectsInvalidURL(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{IsOwner: true})

	err := svc.Reimage(context.Background(), uuid.New(), uuid.New(), "javascript:alert(1)")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRequiresOwnerNotAdmin(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{IsAdmin: true})

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for admin delete, got %v", err)
	}
	if repo.deleted {
		t.Fatal("repo must not be touched")
	}
}

func TestDeleteAsOwner(t *testing.T) {
	repo := &stubOrgRepo{}
	svc := newOrgService(t, repo, memberships.Access{IsOwner: true})

	if err := svc.Delete(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected delete call")
	}
}

func TestDeleteMissingOrg(t *testing.T) {
	svc, err := NewService(&stubOrgRepo{}, stubAccess{err: pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.Delete(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}
