package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/client"
	"github.com/JaveBychkov/friendly-dollop/cmd/xusersctl/internal/session"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk"
	"github.com/JaveBychkov/friendly-dollop/pkg/sdk/sdktest"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	srv := sdktest.New(t)
	srv.AddAccount("root", "s3cret", true)
	srv.AddUser(sdk.Record{"username": "jdoe", "email": "jdoe@example.com"})

	t.Run("token from environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(TokenEnv, "token-root")

		stdout, _, err := execute(t, "--server", srv.URL, "--session-dir", dir, "users", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "jdoe")

		reqs := srv.RequestsTo("GET", "/api/users/")
		require.NotEmpty(t, reqs)
		assert.Equal(t, "Token token-root", reqs[len(reqs)-1].Authorization)

		// the detected role lands in the session file
		assert.FileExists(t, filepath.Join(dir, session.FileName))
		store, err := session.NewFileStore(dir)
		require.NoError(t, err)
		assert.Equal(t, sdk.RoleAdmin, sdk.CurrentRole(store))
	})

	t.Run("ephemeral store starts logged out", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XUSERS_EPHEMERAL", "true")

		_, _, err := execute(t, "--server", srv.URL, "--session-dir", dir, "auth", "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not logged in")
		assert.NoFileExists(t, filepath.Join(dir, session.FileName))
	})

	t.Run("missing token is rejected by the server", func(t *testing.T) {
		t.Setenv("XUSERS_EPHEMERAL", "true")
		before := len(srv.RequestsTo("GET", "/api/users/"))

		_, _, err := execute(t, "--server", srv.URL, "--session-dir", t.TempDir(), "users", "list")
		require.Error(t, err)
		assert.True(t, sdk.IsUnauthorized(err), "got %v", err)
		assert.Len(t, srv.RequestsTo("GET", "/api/users/"), before+1)
		assert.Contains(t, client.WithLoginHint(err).Error(), "xusersctl auth login")
	})

	t.Run("invalid server", func(t *testing.T) {
		_, _, err := execute(t, "--server", "ftp://nowhere", "--session-dir", t.TempDir(), "auth", "status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server URL")
	})
}
