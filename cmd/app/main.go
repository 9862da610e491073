// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hash066/biavault/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "biavault",
		Usage:   "Encrypted per-tenant snapshot and audit service",
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
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-master-secret",
				Usage: "Generate a new master secret for tenant key derivation",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kms-key-uri",
						Aliases: []string{"k"},
						Value:   "",
						Usage:   "KMS keeper URI used to wrap the secret (omit for plain base64 output)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMasterSecret(cmd.String("kms-key-uri"))
				},
			},
			{
				Name:  "rotate-key",
				Usage: "Bump a tenant's current key version",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Tenant ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "actor",
						Aliases: []string{"a"},
						Value:   "cli",
						Usage:   "Actor ID recorded in the audit trail",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateKey(ctx, cmd.String("tenant"), cmd.String("actor"))
				},
			},
			{
				Name:  "reencrypt-snapshot",
				Usage: "Re-save a snapshot version under the tenant's current key version",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Tenant ID (UUID)",
					},
					&cli.UintFlag{
						Name:     "version",
						Aliases:  []string{"v"},
						Required: true,
						Usage:    "Snapshot version to re-encrypt",
					},
					&cli.StringFlag{
						Name:    "actor",
						Aliases: []string{"a"},
						Value:   "cli",
						Usage:   "Actor ID recorded in the audit trail",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunReencryptSnapshot(
						ctx,
						cmd.String("tenant"),
						uint64(cmd.Uint("version")),
						cmd.String("actor"),
					)
				},
			},
			{
				Name:  "verify-audit-logs",
				Usage: "Verify audit entry signatures for tamper detection",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "batch-size",
						Aliases: []string{"b"},
						Value:   500,
						Usage:   "Number of entries verified per batch",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVerifyAuditLogs(ctx, cmd.Int("batch-size"), cmd.String("format"))
				},
			},
			{
				Name:  "clean-audit-logs",
				Usage: "Drop audit partitions older than the retention window",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "months",
						Aliases: []string{"m"},
						Value:   0,
						Usage:   "Retention window in months (0 uses AUDIT_RETENTION_MONTHS)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanAuditLogs(ctx, cmd.Int("months"), cmd.String("format"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
