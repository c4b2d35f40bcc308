package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tansive/supporttracker/internal/supportsrv/config"
	"github.com/tansive/supporttracker/internal/supportsrv/db/dbmanager"
	"github.com/tansive/supporttracker/internal/supportsrv/db/migrations"
	"github.com/tansive/supporttracker/internal/supportsrv/db/postgresql"
	"github.com/tansive/supporttracker/internal/supportsrv/server"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the support case HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts.cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending schema migrations before serving")
	return cmd
}

func runServer(ctx context.Context, cfg *config.ConfigParam, migrate bool) error {
	slog := log.With().Str("state", "init").Logger()

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if migrate {
		slog.Info().Msg("applying schema migrations")
		if err := migrations.Up(ctx, pool.DB()); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
	}

	store := postgresql.NewCaseStore(pool)
	if err := store.VerifyColumnContract(ctx); err != nil {
		return fmt.Errorf("verifying support_cases columns: %s", err.ErrorAll())
	}

	s, err := server.CreateNewServer(cfg, pool, store)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	if err := s.MountHandlers(); err != nil {
		return fmt.Errorf("mounting handlers: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info().Msg("shutting down")
		// Give outstanding requests time to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			return srv.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info().Msg("server stopped")
	return nil
}

func openPool(ctx context.Context, cfg *config.ConfigParam) (*dbmanager.Pool, error) {
	opts, err := poolOptions(cfg)
	if err != nil {
		return nil, err
	}
	return dbmanager.Open(ctx, opts)
}

func poolOptions(cfg *config.ConfigParam) (dbmanager.Options, error) {
	opts := dbmanager.Options{
		DSN:            cfg.DSN(),
		MaxOpenConns:   cfg.DB.MaxOpenConns,
		MaxIdleConns:   cfg.DB.MaxIdleConns,
		ConnectRetries: cfg.DB.ConnectRetries,
		SessionParams:  map[string]string{},
	}
	if cfg.DB.ConnMaxLifetime != "" {
		d, err := config.ParseDuration(cfg.DB.ConnMaxLifetime)
		if err != nil {
			return opts, fmt.Errorf("invalid db.conn_max_lifetime: %w", err)
		}
		opts.ConnMaxLifetime = d
	}
	for name, v := range map[string]string{
		"statement_timeout": cfg.DB.StatementTimeout,
		"lock_timeout":      cfg.DB.LockTimeout,
	} {
		if v == "" {
			continue
		}
		d, err := config.ParseDuration(v)
		if err != nil {
			return opts, fmt.Errorf("invalid db.%s: %w", name, err)
		}
		opts.SessionParams[name] = fmt.Sprintf("%dms", d.Milliseconds())
	}
	return opts, nil
}
