package contexts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store, err := NewStore()
	require.NoError(t, err)
	return store
}

func TestStoreStartsEmpty(t *testing.T) {
	store := newTestStore(t)

	assert.Empty(t, store.ListContexts())
	assert.Empty(t, store.GetCurrentContextName())

	_, err := store.GetCurrentContext()
	assert.ErrorIs(t, err, ErrNoCurrentContext)
}

func TestFirstContextBecomesCurrent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetContext("prod", &Context{ServerURL: "http://prod:8080"}))
	assert.Equal(t, "prod", store.GetCurrentContextName())

	ctx, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "http://prod:8080", ctx.ServerURL)
}

func TestUseContext(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetContext("prod", &Context{ServerURL: "http://prod:8080"}))
	require.NoError(t, store.SetContext("lab", &Context{ServerURL: "http://lab:8080"}))

	// Adding a second context must not steal the current one.
	assert.Equal(t, "prod", store.GetCurrentContextName())

	require.NoError(t, store.UseContext("lab"))
	assert.Equal(t, "lab", store.GetCurrentContextName())

	err := store.UseContext("nope")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestListContextsSorted(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetContext("zeta", &Context{ServerURL: "http://z"}))
	require.NoError(t, store.SetContext("alpha", &Context{ServerURL: "http://a"}))
	require.NoError(t, store.SetContext("mid", &Context{ServerURL: "http://m"}))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, store.ListContexts())
}

func TestRenameContext(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetContext("prod", &Context{ServerURL: "http://prod:8080"}))
	require.NoError(t, store.RenameContext("prod", "production"))

	assert.Equal(t, "production", store.GetCurrentContextName())

	ctx, err := store.GetContext("production")
	require.NoError(t, err)
	assert.Equal(t, "http://prod:8080", ctx.ServerURL)

	_, err = store.GetContext("prod")
	assert.ErrorIs(t, err, ErrContextNotFound)

	err = store.RenameContext("nope", "whatever")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestDeleteContext(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SetContext("prod", &Context{ServerURL: "http://prod:8080"}))
	require.NoError(t, store.SetContext("lab", &Context{ServerURL: "http://lab:8080"}))

	require.NoError(t, store.DeleteContext("prod"))

	// Deleting the current context clears the selection.
	assert.Empty(t, store.GetCurrentContextName())
	assert.Equal(t, []string{"lab"}, store.ListContexts())

	err := store.DeleteContext("prod")
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestStorePersistsAcrossLoads(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)

	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.SetContext("prod", &Context{ServerURL: "http://prod:8080"}))
	require.NoError(t, store.SetPreferences(Preferences{DefaultOutput: "json"}))

	reloaded, err := NewStore()
	require.NoError(t, err)

	ctx, err := reloaded.GetContext("prod")
	require.NoError(t, err)
	assert.Equal(t, "http://prod:8080", ctx.ServerURL)
	assert.Equal(t, "prod", reloaded.GetCurrentContextName())
	assert.Equal(t, "json", reloaded.GetPreferences().DefaultOutput)

	// Config file must not be world readable.
	info, err := os.Stat(filepath.Join(tmp, DefaultConfigDir, ConfigFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermissions), info.Mode().Perm())
}
