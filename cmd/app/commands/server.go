package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/vaultkeys/internal/app"
	authRequestUseCase "github.com/allisson/vaultkeys/internal/authrequest/usecase"
	"github.com/allisson/vaultkeys/internal/config"
)

// RunServer serves the auth request relay, and the metrics endpoint when
// enabled, until ctx is cancelled or SIGINT/SIGTERM arrives. Either server
// failing stops the other. Both get cfg.ShutdownTimeout to drain.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	relay, err := container.RelayUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize relay: %w", err)
	}

	logger.Info("starting relay",
		slog.String("version", version),
		slog.String("db_driver", cfg.DBDriver),
		slog.Duration("auth_request_ttl", cfg.AuthRequestTTL),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})
	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}
	if cfg.AuthRequestPurgeInterval > 0 {
		g.Go(func() error {
			purgeExpiredAuthRequests(gctx, relay, logger, cfg.AuthRequestPurgeInterval, cfg.AuthRequestTTL)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// purgeExpiredAuthRequests deletes, every interval, the requests that expired
// more than retention ago. It returns when ctx is done.
func purgeExpiredAuthRequests(
	ctx context.Context,
	relay authRequestUseCase.RelayUseCase,
	logger *slog.Logger,
	interval, retention time.Duration,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := relay.PurgeExpired(ctx, retention)
			switch {
			case err != nil && ctx.Err() != nil:
				return
			case err != nil:
				logger.Error("failed to purge expired auth requests", slog.Any("error", err))
			case count > 0:
				logger.Info("purged expired auth requests", slog.Int64("count", count))
			}
		}
	}
}
