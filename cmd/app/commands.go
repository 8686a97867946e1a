package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultkeys/internal/app"
	"github.com/allisson/vaultkeys/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getAuthCommands()...)
	cmds = append(cmds, getVaultCommands()...)
	return cmds
}

// newContainer loads and validates the configuration and builds a container.
func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func userIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user-id",
		Aliases:  []string{"u"},
		Required: true,
		Usage:    "Account user ID (UUID)",
	}
}

// uuidFlag parses a required UUID flag.
func uuidFlag(cmd *cli.Command, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(cmd.String(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s: must be a valid UUID", name)
	}
	return id, nil
}
