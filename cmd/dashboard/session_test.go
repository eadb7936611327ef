package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/jrsteele09/go-adcampaign-dashboard/sessions/store"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, folder string, values map[string]string) {
	t.Helper()
	repo, err := store.NewSQLiteRepo(store.DefaultDBPath(folder))
	require.NoError(t, err)
	defer repo.Close()
	for k, v := range values {
		require.NoError(t, repo.Set(context.Background(), k, v))
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestSessionShowAndClear(t *testing.T) {
	folder := t.TempDir()
	t.Setenv("ENV", "TEST")
	t.Setenv("FOLDER", folder)
	t.Setenv("STORE_KEY", "")

	seedStore(t, folder, map[string]string{
		store.KeyAccessToken: "opaque-token",
		store.KeyUser:        `{"id":7,"name":"Ada","email":"ada@example.com"}`,
	})

	out := execute(t, "session", "show")
	require.Contains(t, out, "Signed in")
	require.Contains(t, out, "Ada <ada@example.com> (id 7)")
	require.Contains(t, out, "unknown (opaque token)")

	out = execute(t, "session", "clear")
	require.Contains(t, out, "Session cleared")

	out = execute(t, "session", "show")
	require.Contains(t, out, "Signed out")
}

func TestSessionShow_SealedStoreRejectsBadKey(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("FOLDER", t.TempDir())
	t.Setenv("STORE_KEY", "not-hex")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"session", "show"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestSessionShow_LeavesCorruptUserInPlace(t *testing.T) {
	folder := t.TempDir()
	t.Setenv("ENV", "TEST")
	t.Setenv("FOLDER", folder)
	t.Setenv("STORE_KEY", "")

	seedStore(t, folder, map[string]string{
		store.KeyAccessToken: "opaque-token",
		store.KeyUser:        `[object Object]`,
	})

	out := execute(t, "session", "show")
	require.Contains(t, out, "Signed in")
	require.Contains(t, out, "user:    unknown")

	repo, err := store.NewSQLiteRepo(store.DefaultDBPath(folder))
	require.NoError(t, err)
	defer repo.Close()
	raw, err := repo.Get(context.Background(), store.KeyUser)
	require.NoError(t, err)
	require.Equal(t, `[object Object]`, raw)
}
