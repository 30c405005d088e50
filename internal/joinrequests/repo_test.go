package joinrequests

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mcastellanos/orghub-backend/pkg/db"
	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

func setupRequestTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS org_memberships (
  id TEXT PRIMARY KEY,
  org_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (org_id, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS join_requests (
  id TEXT PRIMARY KEY,
  org_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (org_id, user_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedApplicant(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("applicant_%s@example.com", uuid.NewString()),
		FirstName:    "App",
		LastName:     "Licant",
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestCreateAndFindPending(t *testing.T) {
	conn := setupRequestTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	applicant := seedApplicant(t, conn)

	created, err := repo.Create(ctx, orgID, applicant.ID)
	require.NoError(t, err)

	pending, err := repo.FindPending(ctx, orgID, applicant.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, pending.ID)

	_, err = repo.FindPending(ctx, orgID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateDuplicateHitsUniqueIndex(t *testing.T) {
	conn := setupRequestTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	applicant := seedApplicant(t, conn)

	_, err := repo.Create(ctx, orgID, applicant.ID)
	require.NoError(t, err)

	_, err = repo.Create(ctx, orgID, applicant.ID)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "idx_join_requests_org_user"))
}

func TestConsumeCreatesMembershipAndDeletesRequest(t *testing.T) {
	conn := setupRequestTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	applicant := seedApplicant(t, conn)

	request, err := repo.Create(ctx, orgID, applicant.ID)
	require.NoError(t, err)

	membership, err := repo.Consume(ctx, request)
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleMember, membership.Role)
	assert.Equal(t, applicant.ID, membership.UserID)

	_, err = repo.FindByID(ctx, request.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "consumed request must be gone")

	var count int64
	require.NoError(t, conn.Model(&models.OrgMembership{}).
		Where("org_id = ? AND user_id = ?", orgID, applicant.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConsumeRollsBackWhenMembershipExists(t *testing.T) {
	conn := setupRequestTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	applicant := seedApplicant(t, conn)

	request, err := repo.Create(ctx, orgID, applicant.ID)
	require.NoError(t, err)

	existing := &models.OrgMembership{OrgID: orgID, UserID: applicant.ID, Role: enums.MemberRoleMember}
	require.NoError(t, conn.Create(existing).Error)

	_, err = repo.Consume(ctx, request)
	require.Error(t, err)

	// The failed transaction must leave the request row in place.
	fetched, err := repo.FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, fetched.ID)
}

func TestDeleteByIDMissingIsNoOp(t *testing.T) {
	conn := setupRequestTestDB(t)
	repo := NewRepository(conn)

	assert.NoError(t, repo.DeleteByID(context.Background(), uuid.New()))
}

func TestListForOrgIncludesApplicantMetadata(t *testing.T) {
	conn := setupRequestTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	first := seedApplicant(t, conn)
	second := seedApplicant(t, conn)

	_, err := repo.Create(ctx, orgID, first.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, orgID, second.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, uuid.New(), second.ID)
	require.NoError(t, err)

	pending, err := repo.ListForOrg(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.Email, pending[0].Email)
	assert.Equal(t, second.Email, pending[1].Email)
}
