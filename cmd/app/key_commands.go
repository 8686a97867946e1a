package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vaultkeys/cmd/app/commands"
	"github.com/allisson/vaultkeys/internal/config"
	cryptoDomain "github.com/allisson/vaultkeys/internal/crypto/domain"
	cryptoService "github.com/allisson/vaultkeys/internal/crypto/service"
)

// kdfFlags let a command override the configured KDF parameters.
func kdfFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "kdf",
			Usage: "KDF type: 0 for PBKDF2-SHA256, 1 for Argon2id (defaults to KDF_TYPE)",
		},
		&cli.IntFlag{
			Name:  "kdf-iterations",
			Usage: "KDF iterations (defaults to KDF_ITERATIONS)",
		},
		&cli.IntFlag{
			Name:  "kdf-memory",
			Usage: "Argon2id memory in MiB (defaults to KDF_MEMORY)",
		},
		&cli.IntFlag{
			Name:  "kdf-parallelism",
			Usage: "Argon2id parallelism (defaults to KDF_PARALLELISM)",
		},
	}
}

// kdfFromFlags starts from the configured KDF and applies any flag overrides.
func kdfFromFlags(cfg *config.Config, cmd *cli.Command) cryptoDomain.KdfConfig {
	if cmd.IsSet("kdf") {
		cfg.KdfType = int(cmd.Int("kdf"))
	}
	if cmd.IsSet("kdf-iterations") {
		cfg.KdfIterations = int(cmd.Int("kdf-iterations"))
	}
	if cmd.IsSet("kdf-memory") {
		cfg.KdfMemory = int(cmd.Int("kdf-memory"))
	}
	if cmd.IsSet("kdf-parallelism") {
		cfg.KdfParallelism = int(cmd.Int("kdf-parallelism"))
	}
	return cfg.Kdf()
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-key",
			Usage: "Generate a random symmetric key",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "bits",
					Aliases: []string{"b"},
					Value:   512,
					Usage:   "Key length: 256 (AES only) or 512 (AES + HMAC)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
				return commands.RunCreateKey(
					cryptoService.NewKeyGenerator(),
					logger,
					commands.DefaultIO().Writer,
					int(cmd.Int("bits")),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "derive-master-key",
			Usage: "Derive a master key and its authorization hashes (password read from stdin)",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Account email, used as the KDF salt",
				},
				&cli.BoolFlag{
					Name:  "show-key",
					Usage: "Also print the derived master key",
				},
				formatFlag(),
			}, kdfFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				io := commands.DefaultIO()
				return commands.RunDeriveMasterKey(
					cryptoService.NewKeyGenerator(),
					io.Reader,
					io.Writer,
					cmd.String("email"),
					kdfFromFlags(cfg, cmd),
					cmd.Bool("show-key"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:      "inspect-enc-string",
			Usage:     "Parse an encrypted string and optionally decrypt it",
			ArgsUsage: "<enc-string>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Base64 symmetric key used to decrypt the value",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunInspectEncString(
					cryptoService.NewEncryptService(cryptoService.NewCipherManager(), cryptoService.NewRSAService()),
					commands.DefaultIO().Writer,
					cmd.Args().First(),
					cmd.String("key"),
					cmd.String("format"),
				)
			},
		},
	}
}
