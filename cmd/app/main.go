// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/caretrail/phicore/cmd/app/commands"
	"github.com/caretrail/phicore/internal/app"
	"github.com/caretrail/phicore/internal/config"
)

const version = "1.0.0"

// shutdownContainer closes all container resources and logs any errors.
func shutdownContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "phicore",
		Usage:   "PHI field encryption and immutable audit ledger service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					return commands.RunMigrations(logger, cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "create-master-key",
				Usage: "Generate a new master key for envelope encryption",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Value:   "",
						Usage:   "Master key ID (e.g., prod-master-key-2026)",
					},
					&cli.StringFlag{
						Name:  "kms-provider",
						Value: "",
						Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
					},
					&cli.StringFlag{
						Name:  "kms-key-uri",
						Value: "",
						Usage: "KMS key URI used to encrypt the master key",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()

					kmsProvider := cmd.String("kms-provider")
					if kmsProvider == "" {
						kmsProvider = cfg.KMSProvider
					}
					kmsKeyURI := cmd.String("kms-key-uri")
					if kmsKeyURI == "" {
						kmsKeyURI = cfg.KMSKeyURI
					}

					io := commands.DefaultIO()
					return commands.RunCreateMasterKey(
						ctx,
						container.KMSService(),
						logger,
						io.Writer,
						cmd.String("id"),
						kmsProvider,
						kmsKeyURI,
					)
				},
			},
			{
				Name:  "rotate-key",
				Usage: "Rotate the active data key for a key context",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "context",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Key context to rotate (e.g., clinical)",
					},
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"alg"},
						Value:   "aes-gcm",
						Usage:   "Encryption algorithm to use (aes-gcm or chacha20-poly1305)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer shutdownContainer(container, logger)

					masterKeyChain, err := container.MasterKeyChain()
					if err != nil {
						return fmt.Errorf("failed to load master key chain: %w", err)
					}

					keyProvider, err := container.KeyProvider()
					if err != nil {
						return fmt.Errorf("failed to initialize key provider: %w", err)
					}

					return commands.RunRotateKey(
						ctx,
						keyProvider,
						masterKeyChain,
						logger,
						cmd.String("context"),
						cmd.String("algorithm"),
					)
				},
			},
			{
				Name:  "verify-ledger",
				Usage: "Verify the hash chain of the audit ledger",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Value:   "0",
						Usage:   "Start position (zero-based, inclusive)",
					},
					&cli.StringFlag{
						Name:     "end",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "End position (exclusive)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer shutdownContainer(container, logger)

					verifier, err := container.Verifier()
					if err != nil {
						return fmt.Errorf("failed to initialize verifier: %w", err)
					}

					io := commands.DefaultIO()
					return commands.RunVerifyLedger(
						ctx,
						verifier,
						logger,
						io.Writer,
						cmd.String("start"),
						cmd.String("end"),
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
