package sqldir_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musterio/muster/pkg/directory"
	"github.com/musterio/muster/pkg/directory/sqldir"
	"github.com/musterio/muster/pkg/principal"
)

func testConfig(t *testing.T) *sqldir.Config {
	t.Helper()
	return &sqldir.Config{
		Type:   sqldir.DatabaseTypeSQLite,
		SQLite: sqldir.SQLiteConfig{Path: filepath.Join(t.TempDir(), "directory.db")},
	}
}

func openTestStore(t *testing.T) *sqldir.Store {
	t.Helper()
	store, err := sqldir.New(testConfig(t), "TESTBOX")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestConfigDefaults(t *testing.T) {
	cfg := &sqldir.Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, sqldir.DatabaseTypeSQLite, cfg.Type)
	assert.NotEmpty(t, cfg.SQLite.Path)

	pg := &sqldir.Config{Type: sqldir.DatabaseTypePostgres}
	pg.ApplyDefaults()
	assert.Equal(t, 5432, pg.Postgres.Port)
	assert.Equal(t, "disable", pg.Postgres.SSLMode)
	assert.Equal(t, 25, pg.Postgres.MaxOpenConns)
	assert.Equal(t, 5, pg.Postgres.MaxIdleConns)
}

func TestConfigValidate(t *testing.T) {
	cfg := &sqldir.Config{Type: "oracle"}
	assert.Error(t, cfg.Validate())

	pg := &sqldir.Config{Type: sqldir.DatabaseTypePostgres}
	assert.Error(t, pg.Validate(), "postgres requires host, database and user")

	pg.Postgres.Host = "db.internal"
	pg.Postgres.Database = "muster"
	pg.Postgres.User = "muster"
	assert.NoError(t, pg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	cfg := sqldir.PostgresConfig{
		Host:     "db.internal",
		Port:     5432,
		Database: "muster",
		User:     "svc",
		Password: "secret",
		SSLMode:  "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=muster")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestUserLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, &directory.User{Name: "alice", FullName: "Alice"})
	require.NoError(t, err)
	require.NotNil(t, created.SID)
	assert.Equal(t, "TESTBOX", created.Domain)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetUser(ctx, "ALICE")
	require.NoError(t, err, "lookups are case-insensitive")
	assert.Equal(t, "alice", got.Name)
	assert.True(t, got.SID.Equal(created.SID))

	got.FullName = ""
	got.Description = "ops account"
	got.Disabled = true
	updated, err := store.UpdateUser(ctx, got)
	require.NoError(t, err)
	assert.True(t, updated.Disabled)
	assert.Empty(t, updated.FullName, "zero values must be written through")
	assert.Equal(t, "ops account", updated.Description)
	assert.True(t, updated.SID.Equal(created.SID), "SID never changes on update")

	_, err = store.CreateUser(ctx, &directory.User{Name: "Alice"})
	assert.ErrorIs(t, err, directory.ErrDuplicateUser)

	require.NoError(t, store.DeleteUser(ctx, "alice"))
	_, err = store.GetUser(ctx, "alice")
	assert.ErrorIs(t, err, directory.ErrUserNotFound)
	assert.ErrorIs(t, store.DeleteUser(ctx, "alice"), directory.ErrUserNotFound)
}

func TestSharedAccountNamespace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, &directory.User{Name: "staff"})
	require.NoError(t, err)

	_, err = store.CreateGroup(ctx, &directory.Group{Name: "STAFF"})
	assert.ErrorIs(t, err, directory.ErrDuplicateUser, "group name clashing with a user reports the user")

	_, err = store.CreateGroup(ctx, &directory.Group{Name: "admins"})
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, &directory.User{Name: "Admins"})
	assert.ErrorIs(t, err, directory.ErrDuplicateGroup)
}

func TestListOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zoe", "Bob", "alice"} {
		_, err := store.CreateUser(ctx, &directory.User{Name: name})
		require.NoError(t, err)
	}

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
	assert.Equal(t, "zoe", users[2].Name)
}

func TestGroupMembership(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, &directory.User{Name: "alice"})
	require.NoError(t, err)
	_, err = store.CreateGroup(ctx, &directory.Group{Name: "staff"})
	require.NoError(t, err)

	members, err := store.GroupMembers(ctx, "staff")
	require.NoError(t, err)
	assert.Empty(t, members, "fresh group has no members")

	require.NoError(t, store.AddGroupMember(ctx, "staff", alice.Identity()))

	// Local members must exist in the directory.
	err = store.AddGroupMember(ctx, "staff", principal.NewIdentity("TESTBOX", "ghost"))
	assert.ErrorIs(t, err, directory.ErrPrincipalNotFound)

	// Foreign principals are recorded as supplied.
	foreign := principal.NewIdentity("CORP", "carol")
	require.NoError(t, store.AddGroupMember(ctx, "staff", foreign))

	err = store.AddGroupMember(ctx, "staff", principal.NewIdentity("testbox", "ALICE"))
	assert.ErrorIs(t, err, directory.ErrDuplicateMember)

	members, err = store.GroupMembers(ctx, "staff")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "alice", members[0].Name, "insertion order preserved")
	assert.True(t, members[0].SID.Equal(alice.SID))
	assert.Nil(t, members[1].SID, "foreign member has no SID")
	assert.True(t, members[1].Identity().Equal(foreign))

	require.NoError(t, store.RemoveGroupMember(ctx, "staff", foreign))
	err = store.RemoveGroupMember(ctx, "staff", foreign)
	assert.ErrorIs(t, err, directory.ErrMemberNotFound)

	_, err = store.GroupMembers(ctx, "nosuch")
	assert.ErrorIs(t, err, directory.ErrGroupNotFound)
}

func TestMembershipOrderSurvivesRemovals(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.CreateGroup(ctx, &directory.Group{Name: "staff"})
	require.NoError(t, err)

	names := []string{"alice", "bob", "carol", "dave"}
	for _, name := range names {
		u, err := store.CreateUser(ctx, &directory.User{Name: name})
		require.NoError(t, err)
		require.NoError(t, store.AddGroupMember(ctx, "staff", u.Identity()))
	}

	require.NoError(t, store.RemoveGroupMember(ctx, "staff", principal.NewIdentity("TESTBOX", "bob")))

	eve, err := store.CreateUser(ctx, &directory.User{Name: "eve"})
	require.NoError(t, err)
	require.NoError(t, store.AddGroupMember(ctx, "staff", eve.Identity()))

	members, err := store.GroupMembers(ctx, "staff")
	require.NoError(t, err)
	require.Len(t, members, 4)
	got := make([]string, len(members))
	for i, m := range members {
		got[i] = m.Name
	}
	assert.Equal(t, []string{"alice", "carol", "dave", "eve"}, got)
}

func TestDeleteCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, &directory.User{Name: "alice"})
	require.NoError(t, err)
	staff, err := store.CreateGroup(ctx, &directory.Group{Name: "staff"})
	require.NoError(t, err)
	_, err = store.CreateGroup(ctx, &directory.Group{Name: "everyone"})
	require.NoError(t, err)

	require.NoError(t, store.AddGroupMember(ctx, "staff", alice.Identity()))
	require.NoError(t, store.AddGroupMember(ctx, "everyone", alice.Identity()))
	require.NoError(t, store.AddGroupMember(ctx, "everyone", staff.Identity()))

	require.NoError(t, store.DeleteUser(ctx, "alice"))
	members, err := store.GroupMembers(ctx, "everyone")
	require.NoError(t, err)
	require.Len(t, members, 1, "alice dropped from every group")
	assert.Equal(t, "staff", members[0].Name)

	// Deleting a group removes it from groups it is a member of.
	require.NoError(t, store.DeleteGroup(ctx, "staff"))
	members, err = store.GroupMembers(ctx, "everyone")
	require.NoError(t, err)
	assert.Empty(t, members)

	_, err = store.GetGroup(ctx, "staff")
	assert.ErrorIs(t, err, directory.ErrGroupNotFound)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	store, err := sqldir.New(cfg, "TESTBOX")
	require.NoError(t, err)

	alice, err := store.CreateUser(ctx, &directory.User{Name: "alice"})
	require.NoError(t, err)
	machineSID := store.MachineSID()
	require.NoError(t, store.Close())

	reopened, err := sqldir.New(cfg, "TESTBOX")
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.MachineSID().Equal(machineSID), "machine SID survives reopen")

	got, err := reopened.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.SID.Equal(alice.SID))

	// The RID allocator continues instead of re-issuing SIDs.
	bob, err := reopened.CreateUser(ctx, &directory.User{Name: "bob"})
	require.NoError(t, err)
	assert.False(t, bob.SID.Equal(alice.SID))
	lastAlice := alice.SID.SubAuthorities[len(alice.SID.SubAuthorities)-1]
	lastBob := bob.SID.SubAuthorities[len(bob.SID.SubAuthorities)-1]
	assert.Equal(t, lastAlice+1, lastBob)
}

func TestMachineRenameKeepsSID(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	store, err := sqldir.New(cfg, "OLDNAME")
	require.NoError(t, err)
	machineSID := store.MachineSID()
	_, err = store.CreateUser(ctx, &directory.User{Name: "alice"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	renamed, err := sqldir.New(cfg, "NEWNAME")
	require.NoError(t, err)
	defer renamed.Close()

	assert.Equal(t, "NEWNAME", renamed.MachineName())
	assert.True(t, renamed.MachineSID().Equal(machineSID))

	got, err := renamed.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "NEWNAME", got.Domain, "accounts follow the machine name")
}
