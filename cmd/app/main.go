// Package main is the vaultkeys command: the auth request relay server plus
// the key, auth request and vault tooling that talks to it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	apperrors "github.com/allisson/vaultkeys/internal/errors"
)

var version = "dev"

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "vaultkeys",
		Usage:   "Password manager key hierarchy, auth request relay and vault tooling",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "Load settings from this dotenv file before the nearest .env",
				Sources: cli.EnvVars("VAULTKEYS_ENV_FILE"),
			},
		},
		Before:   loadEnvFile,
		Commands: getCommands(version),
	}
}

// loadEnvFile applies --env-file. Variables already set in the environment
// win over the file.
func loadEnvFile(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("env-file")
	if path == "" {
		return ctx, nil
	}
	if err := godotenv.Load(path); err != nil {
		return ctx, fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return ctx, nil
}

// exitCodes lets scripts tell a wrong password from a missing record. Any
// other failure exits 1.
var exitCodes = map[string]int{
	"invalid_input": 2,
	"unauthorized":  3,
	"not_found":     4,
	"conflict":      5,
	"rate_limited":  6,
}

func exitCode(err error) int {
	if code, ok := exitCodes[apperrors.Kind(err)]; ok {
		return code
	}
	return 1
}

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err), slog.String("kind", apperrors.Kind(err)))
		os.Exit(exitCode(err))
	}
}
