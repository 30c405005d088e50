package memberships

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

	"github.com/mcastellanos/orghub-backend/pkg/db/models"
	"github.com/mcastellanos/orghub-backend/pkg/enums"
)

func setupMembershipTestDB(t *testing.T) *gorm.DB {
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
		`CREATE TABLE IF NOT EXISTS organizations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  logo_url TEXT NOT NULL,
  owner TEXT NOT NULL,
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
	}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func seedMember(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("member_%s@example.com", uuid.NewString()),
		FirstName:    "Test",
		LastName:     "Member",
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestMembershipLifecycle(t *testing.T) {
	conn := setupMembershipTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	user := seedMember(t, conn)

	created, err := repo.CreateMembership(ctx, orgID, user.ID, enums.MemberRoleMember)
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleMember, created.Role)

	fetched, err := repo.GetMembership(ctx, orgID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	require.NoError(t, repo.UpdateRole(ctx, orgID, user.ID, enums.MemberRoleAdmin))
	fetched, err = repo.GetMembership(ctx, orgID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.MemberRoleAdmin, fetched.Role)

	require.NoError(t, repo.DeleteMembership(ctx, orgID, user.ID))
	_, err = repo.GetMembership(ctx, orgID, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Removing a row that is already gone stays silent.
	assert.NoError(t, repo.DeleteMembership(ctx, orgID, user.ID))
}

func TestCreateMembershipRejectsUnknownRole(t *testing.T) {
	conn := setupMembershipTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.CreateMembership(context.Background(), uuid.New(), uuid.New(), enums.MemberRole("owner"))
	assert.Error(t, err)
}

func TestUpdateRoleMissingMembership(t *testing.T) {
	conn := setupMembershipTestDB(t)
	repo := NewRepository(conn)

	err := repo.UpdateRole(context.Background(), uuid.New(), uuid.New(), enums.MemberRoleMember)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListOrgMembersJoinsUsers(t *testing.T) {
	conn := setupMembershipTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	orgID := uuid.New()
	first := seedMember(t, conn)
	second := seedMember(t, conn)

	_, err := repo.CreateMembership(ctx, orgID, first.ID, enums.MemberRoleAdmin)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, orgID, second.ID, enums.MemberRoleMember)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, uuid.New(), second.ID, enums.MemberRoleMember)
	require.NoError(t, err)

	members, err := repo.ListOrgMembers(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, first.Email, members[0].Email)
	assert.Equal(t, enums.MemberRoleAdmin, members[0].Role)
	assert.Equal(t, second.Email, members[1].Email)
}

func TestListUserOrgsJoinsOrganizations(t *testing.T) {
	conn := setupMembershipTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedMember(t, conn)

	orgA := &models.Organization{ID: uuid.New(), Name: "Alpha", LogoURL: "https://cdn.example.com/a.png", OwnerID: uuid.New()}
	orgB := &models.Organization{ID: uuid.New(), Name: "Beta", LogoURL: "https://cdn.example.com/b.png", OwnerID: uuid.New()}
	require.NoError(t, conn.Create(orgA).Error)
	require.NoError(t, conn.Create(orgB).Error)

	_, err := repo.CreateMembership(ctx, orgB.ID, user.ID, enums.MemberRoleMember)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, orgA.ID, user.ID, enums.MemberRoleAdmin)
	require.NoError(t, err)

	orgs, err := repo.ListUserOrgs(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, "Alpha", orgs[0].OrgName)
	assert.Equal(t, enums.MemberRoleAdmin, orgs[0].Role)
	assert.Equal(t, "Beta", orgs[1].OrgName)
}
