package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/tinywasm/authform"
	"github.com/tinywasm/authform/internal/config"
	"github.com/tinywasm/authform/internal/janitor"
	"github.com/tinywasm/authform/internal/middleware"
	"github.com/tinywasm/authform/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "authform",
		Short:         "Horizon sign-in and sign-up server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to a .env file (skipped when missing)")

	root.AddCommand(newServeCmd(&flags), newPurgeCmd(&flags))
	return root
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the auth forms over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, flags)
		},
	}
}

func newPurgeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions and OAuth states once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			store, db, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := janitor.New(store, logger).Run(cmd.Context()); err != nil {
				return fmt.Errorf("purge: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "expired records purged")
			return nil
		},
	}
}

func setup(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configFile, flags.envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(ctx context.Context, cfg *config.Config) (*authform.Store, *sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+cfg.DBPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}

	var providers []authform.OAuthProvider
	if cfg.Google.Enabled() {
		providers = append(providers, authform.NewGoogleProvider(
			cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.BaseURL+"/oauth/google/callback"))
	}
	if cfg.Microsoft.Enabled() {
		providers = append(providers, authform.NewMicrosoftProvider(
			cfg.Microsoft.ClientID, cfg.Microsoft.ClientSecret, cfg.BaseURL+"/oauth/microsoft/callback"))
	}

	store, err := authform.Open(ctx, authform.NewDBExecutor(db), authform.Config{
		SessionCookieName: cfg.SessionCookieName,
		SessionTTL:        cfg.SessionTTL,
		OAuthProviders:    providers,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return store, db, nil
}

func serve(ctx context.Context, flags *globalFlags) error {
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(server.Options{
		Store:      store,
		Logger:     logger,
		Production: cfg.IsProduction(),
		TrustProxy: cfg.TrustProxy,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	})

	j := janitor.New(store, logger)
	if err := j.Start(cfg.PurgeSchedule); err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env, "providers", store.Providers())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		j.Stop()
		logger.Info("shutting down")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
