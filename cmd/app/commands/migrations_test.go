package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	t.Run("unsupported-driver", func(t *testing.T) {
		err := RunMigrations(discardLogger(), "sqlite", "sqlite://vault.db")
		require.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("invalid-connection-string", func(t *testing.T) {
		err := RunMigrations(discardLogger(), "postgres", "invalid-connection-string")
		require.ErrorContains(t, err, "failed to create migrate instance")
	})
}
