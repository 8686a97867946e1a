package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultkeys/cmd/app/commands"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register",
			Usage: "Create the key hierarchy of a new account (password read from stdin)",
			Flags: append([]cli.Flag{
				userIDFlag(),
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Account email",
				},
				formatFlag(),
			}, kdfFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				userID, err := uuidFlag(cmd, "user-id")
				if err != nil {
					return err
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}

				io := commands.DefaultIO()
				return commands.RunRegister(
					ctx,
					keyHierarchy,
					container.Logger(),
					io.Reader,
					io.Writer,
					userID,
					cmd.String("email"),
					kdfFromFlags(container.Config(), cmd),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-password",
			Usage: "Check a master password against the local verifier (password read from stdin)",
			Flags: []cli.Flag{userIDFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				userID, err := uuidFlag(cmd, "user-id")
				if err != nil {
					return err
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}

				io := commands.DefaultIO()
				return commands.RunVerifyPassword(ctx, keyHierarchy, io.Reader, io.Writer, userID, cmd.String("format"))
			},
		},
		{
			Name:  "enroll-device",
			Usage: "Seal a device key with KMS_KEY_URI for passwordless unlock (password read from stdin)",
			Flags: []cli.Flag{userIDFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				userID, err := uuidFlag(cmd, "user-id")
				if err != nil {
					return err
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}

				io := commands.DefaultIO()
				return commands.RunEnrollDevice(ctx, keyHierarchy, container.Logger(), io.Reader, io.Writer, userID)
			},
		},
		{
			Name:  "create-org-key",
			Usage: "Create an organization key for the account (password read from stdin)",
			Flags: []cli.Flag{
				userIDFlag(),
				&cli.StringFlag{
					Name:     "org-id",
					Required: true,
					Usage:    "Organization ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				userID, err := uuidFlag(cmd, "user-id")
				if err != nil {
					return err
				}
				orgID, err := uuidFlag(cmd, "org-id")
				if err != nil {
					return err
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}

				io := commands.DefaultIO()
				return commands.RunCreateOrganizationKey(
					ctx,
					keyHierarchy,
					container.Logger(),
					io.Reader,
					io.Writer,
					userID,
					orgID,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-auth-requests",
			Usage: "List pending auth requests for an email on the relay",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Account email",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunListAuthRequests(
					ctx,
					container.RelayClient(),
					commands.DefaultIO().Writer,
					cmd.String("email"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "approve-auth-request",
			Usage: "Approve or deny a pending auth request from this device (password read from stdin)",
			Flags: []cli.Flag{
				userIDFlag(),
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Auth request ID (UUID)",
				},
				&cli.BoolFlag{
					Name:  "deny",
					Usage: "Deny the request instead of approving it",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				userID, err := uuidFlag(cmd, "user-id")
				if err != nil {
					return err
				}
				requestID, err := uuidFlag(cmd, "id")
				if err != nil {
					return err
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}
				service, err := container.AuthRequestService(ctx)
				if err != nil {
					return err
				}

				io := commands.DefaultIO()
				return commands.RunApproveAuthRequest(
					ctx,
					keyHierarchy,
					service,
					container.RelayClient(),
					container.Logger(),
					io.Reader,
					io.Writer,
					userID,
					requestID,
					!cmd.Bool("deny"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "login-with-device",
			Usage: "Request login approval from another device and wait for the answer",
			Flags: []cli.Flag{
				userIDFlag(),
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Account email",
				},
				&cli.DurationFlag{
					Name:  "poll-interval",
					Value: 2 * time.Second,
					Usage: "How often to ask the relay for an answer",
				},
				&cli.DurationFlag{
					Name:  "timeout",
					Value: 5 * time.Minute,
					Usage: "How long to wait for an answer",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				userID, err := uuidFlag(cmd, "user-id")
				if err != nil {
					return err
				}
				service, err := container.AuthRequestService(ctx)
				if err != nil {
					return err
				}

				return commands.RunLoginWithDevice(
					ctx,
					service,
					container.Logger(),
					commands.DefaultIO().Writer,
					userID,
					cmd.String("email"),
					container.Config().DeviceIdentifier,
					cmd.Duration("poll-interval"),
					cmd.Duration("timeout"),
				)
			},
		},
	}
}
