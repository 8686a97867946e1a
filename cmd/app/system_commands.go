package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultkeys/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the auth request relay HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply the embedded schema migrations to DB_CONNECTION_STRING",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				cfg := container.Config()
				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "clean-auth-requests",
			Usage: "Delete auth requests that expired more than the given age ago",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:    "older-than",
					Aliases: []string{"o"},
					Value:   24 * time.Hour,
					Usage:   "Delete requests expired for longer than this (e.g. 24h, 30m)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				relay, err := container.RelayUseCase()
				if err != nil {
					return err
				}

				return commands.RunCleanAuthRequests(
					ctx,
					relay,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Duration("older-than"),
					cmd.String("format"),
				)
			},
		},
	}
}
