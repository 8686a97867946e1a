package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultkeys/cmd/app/commands"
	cryptoUseCase "github.com/allisson/vaultkeys/internal/crypto/usecase"
	portingUseCase "github.com/allisson/vaultkeys/internal/porting/usecase"
)

// portingFunc is the shape shared by commands.RunSMImport and commands.RunSMExport.
type portingFunc func(
	ctx context.Context,
	keyHierarchy cryptoUseCase.KeyHierarchyUseCase,
	porting portingUseCase.PortingUseCase,
	logger *slog.Logger,
	r io.Reader,
	w io.Writer,
	userID, orgID uuid.UUID,
	path string,
) error

func orgIDFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "org-id",
		Required: required,
		Usage:    "Organization ID (UUID)",
	}
}

func getVaultCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "migrate-ciphers",
			Usage: "Upgrade every stored cipher of an account to the latest data version (password read from stdin)",
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
				migrator, err := container.CipherMigrator()
				if err != nil {
					return err
				}

				stdio := commands.DefaultIO()
				return commands.RunMigrateCiphers(
					ctx,
					keyHierarchy,
					migrator,
					container.Logger(),
					stdio.Reader,
					stdio.Writer,
					userID,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "add-login",
			Usage: "Encrypt and store a login (stdin: master password, then login password)",
			Flags: []cli.Flag{
				userIDFlag(),
				orgIDFlag(false),
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Cipher name",
				},
				&cli.StringFlag{
					Name:  "username",
					Usage: "Login username",
				},
				&cli.StringSliceFlag{
					Name:  "uri",
					Usage: "Login URI (repeatable)",
				},
				&cli.StringFlag{
					Name:  "notes",
					Usage: "Cipher notes",
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
				var orgID *uuid.UUID
				if cmd.IsSet("org-id") {
					id, err := uuidFlag(cmd, "org-id")
					if err != nil {
						return err
					}
					orgID = &id
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}
				encryptor, err := container.CipherEncryptor()
				if err != nil {
					return err
				}
				repo, err := container.CipherRepository()
				if err != nil {
					return err
				}

				stdio := commands.DefaultIO()
				return commands.RunAddLogin(
					ctx,
					keyHierarchy,
					encryptor,
					repo,
					container.Logger(),
					stdio.Reader,
					stdio.Writer,
					userID,
					commands.LoginInput{
						OrganizationID: orgID,
						Name:           cmd.String("name"),
						Notes:          cmd.String("notes"),
						Username:       cmd.String("username"),
						URIs:           cmd.StringSlice("uri"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "show-cipher",
			Usage: "Decrypt and print a stored cipher (password read from stdin)",
			Flags: []cli.Flag{
				userIDFlag(),
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Cipher ID (UUID)",
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
				cipherID, err := uuidFlag(cmd, "id")
				if err != nil {
					return err
				}
				keyHierarchy, err := container.KeyHierarchyUseCase(ctx)
				if err != nil {
					return err
				}
				migrator, err := container.CipherMigrator()
				if err != nil {
					return err
				}
				encryptor, err := container.CipherEncryptor()
				if err != nil {
					return err
				}
				repo, err := container.CipherRepository()
				if err != nil {
					return err
				}

				stdio := commands.DefaultIO()
				return commands.RunShowCipher(
					ctx,
					keyHierarchy,
					migrator,
					encryptor,
					repo,
					stdio.Reader,
					stdio.Writer,
					userID,
					cipherID,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sm-import",
			Usage: "Encrypt a plaintext Secrets Manager export for import (password read from stdin)",
			Flags: []cli.Flag{
				userIDFlag(),
				orgIDFlag(true),
				&cli.StringFlag{
					Name:     "file",
					Required: true,
					Usage:    "Path to the plaintext export JSON",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return runPorting(ctx, cmd, commands.RunSMImport)
			},
		},
		{
			Name:  "sm-export",
			Usage: "Decrypt an encrypted Secrets Manager export response (password read from stdin)",
			Flags: []cli.Flag{
				userIDFlag(),
				orgIDFlag(true),
				&cli.StringFlag{
					Name:     "file",
					Required: true,
					Usage:    "Path to the encrypted export response JSON",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return runPorting(ctx, cmd, commands.RunSMExport)
			},
		},
	}
}

// runPorting resolves the dependencies shared by sm-import and sm-export.
func runPorting(ctx context.Context, cmd *cli.Command, run portingFunc) error {
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
	porting, err := container.PortingUseCase()
	if err != nil {
		return err
	}

	stdio := commands.DefaultIO()
	return run(ctx, keyHierarchy, porting, container.Logger(), stdio.Reader, stdio.Writer, userID, orgID, cmd.String("file"))
}
