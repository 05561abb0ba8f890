package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/startificial/requireflow/internal/apiclient"
	"github.com/startificial/requireflow/internal/auth"
	"github.com/startificial/requireflow/internal/cache"
	"github.com/startificial/requireflow/internal/config"
	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/generate"
	"github.com/startificial/requireflow/internal/httpapi"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/pid"
	"github.com/startificial/requireflow/internal/store"
)

const (
	shutdownTimeout      = 10 * time.Second
	sessionSweepInterval = time.Hour
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Run the Requireflow HTTP API",
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")

	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	repo, err := store.NewRepository(store.Config{DBPath: cfg.Database}, logger.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	cacheSvc := cache.New(time.Duration(cfg.CacheTTL) * time.Second)
	authSvc := auth.NewService(repo, time.Duration(cfg.SessionTTL)*time.Minute, logger.Default())

	genCfg := generate.Config{
		Enabled:     cfg.GenerationEndpoint != "",
		Model:       cfg.GenerationModel,
		MaxAttempts: cfg.GenerationAttempts,
	}
	var genClient *apiclient.Client
	if genCfg.Enabled {
		genClient = apiclient.New(apiclient.Config{
			BaseURL: cfg.GenerationEndpoint,
			Debug:   cfg.Debug,
			Logger:  logger.Default(),
		})
	} else {
		logger.Warn().Msg("No generation endpoint configured; requirement generation is disabled")
	}
	genSvc := generate.NewService(genClient, repo, cacheSvc, genCfg, logger.Default())

	server := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: httpapi.NewMux(httpapi.Options{
			Repository: repo,
			Cache:      cacheSvc,
			Auth:       authSvc,
			Generator:  genSvc,
			Logger:     logger.Default(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go handleSignals(cancel)
	go sweepSessions(ctx, repo)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Requireflow API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

// sweepSessions periodically removes expired sessions so the table does not
// grow without bound.
func sweepSessions(ctx context.Context, repo store.Repository) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := repo.DeleteExpiredSessions(ctx, time.Now().UTC()); err != nil {
				logger.Warn().Err(err).Msg("Session sweep failed")
			}
		}
	}
}
