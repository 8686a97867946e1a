package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/allisson/vaultkeys/migrations"
)

// RunMigrations applies every pending embedded migration for driver. No
// pending migration is not an error.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	src, err := migrations.Source(driver)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, connectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	before, _, _ := m.Version()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	after, dirty, _ := m.Version()

	logger.Info("migrations completed successfully",
		slog.Uint64("from_version", uint64(before)),
		slog.Uint64("to_version", uint64(after)),
		slog.Bool("dirty", dirty),
	)
	return nil
}
