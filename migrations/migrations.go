// Package migrations embeds the SQL schema of every supported database driver.
package migrations

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgresql/*.sql mysql/*.sql
var files embed.FS

// Source returns the embedded migrations for driver ("postgres" or "mysql")
// as a golang-migrate source named "iofs".
func Source(driver string) (source.Driver, error) {
	var dir string
	switch driver {
	case "postgres":
		dir = "postgresql"
	case "mysql":
		dir = "mysql"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return iofs.New(files, dir)
}
