package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tansive/supporttracker/internal/supportsrv/db/migrations"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the support_cases schema",
	}
	cmd.AddCommand(
		migrateSubCmd(opts, "up", "Apply all pending migrations", migrations.Up),
		migrateSubCmd(opts, "down", "Roll back the most recent migration", migrations.Down),
		&cobra.Command{
			Use:   "status",
			Short: "Show the schema version and the embedded migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(cmd.Context(), opts, func(ctx context.Context, db *sql.DB) error {
					v, err := migrations.Version(ctx, db)
					if err != nil {
						return err
					}
					files, err := migrations.Files()
					if err != nil {
						return err
					}
					if opts.jsonOutput {
						return printJSON(cmd.OutOrStdout(), map[string]any{"version": v, "migrations": files})
					}
					okLabel.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
					for _, f := range files {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func migrateSubCmd(opts *rootOptions, use, short string, fn func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), opts, func(ctx context.Context, db *sql.DB) error {
				if err := fn(ctx, db); err != nil {
					return err
				}
				v, err := migrations.Version(ctx, db)
				if err != nil {
					return err
				}
				okLabel.Fprintf(cmd.OutOrStdout(), "migrate %s done, schema version %d\n", use, v)
				return nil
			})
		},
	}
}

func withDB(ctx context.Context, opts *rootOptions, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := openPool(ctx, opts.cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pool.DB())
}
