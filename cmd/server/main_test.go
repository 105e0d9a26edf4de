package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "GophBlog Server")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestRoutesCommand(t *testing.T) {
	out, err := execute(t, "routes")
	require.NoError(t, err)

	assert.Contains(t, out, "GophBlog HTTP routes.")
	for _, route := range []string{"/health", "/articles", "/{id}", "/users", "/token", "/login", "/refresh-token", "/new-article"} {
		assert.Contains(t, out, route)
	}
}

func TestMigrateCommand(t *testing.T) {
	tests := []struct {
		name   string
		driver string
	}{
		{name: "sqlite", driver: "sqlite"},
		{name: "bolt", driver: "bolt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := filepath.Join(t.TempDir(), "blog.db")

			_, err := execute(t, "migrate", "--storage-driver", tt.driver, "--storage-dsn", dsn, "--log-level", "error")
			require.NoError(t, err)

			// Повторный запуск не меняет схему
			_, err = execute(t, "migrate", "--storage-driver", tt.driver, "--storage-dsn", dsn, "--log-level", "error")
			require.NoError(t, err)
		})
	}
}

func TestPruneTokensCommand(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "blog.db")

	out, err := execute(t, "prune-tokens", "--storage-dsn", dsn, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 0 expired refresh tokens")
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("GOPHBLOG_JWT_SECRET", "")

	_, err := execute(t, "serve", "--storage-dsn", filepath.Join(t.TempDir(), "blog.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestUnknownDriver(t *testing.T) {
	_, err := execute(t, "migrate", "--storage-driver", "mongo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}
