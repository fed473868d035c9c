package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/timmy/uthos/internal/config"
	"github.com/timmy/uthos/internal/logger"
	"github.com/timmy/uthos/internal/repository"
	"github.com/timmy/uthos/internal/storage"
)

const (
	linkPurgeInterval = 10 * time.Minute
	shutdownTimeout   = 5 * time.Second
)

// Run serves the emulator on cfg.Server.Port until ctx is done, then shuts
// the HTTP server down gracefully.
// Parameters:
//   - ctx: lifetime of the server.
//   - cfg: full configuration; Database and Blob select the backends.
//   - log: logger instance.
//   - ready: optional, receives the bound address once listening.
// Returns:
//   - error: setup failure, listen failure, or forced shutdown.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, ready chan<- string) error {
	db, err := repository.InitDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	blobs, err := storage.NewStorage(cfg.Blob.Storage())
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure blob bucket: %w", err)
	}

	svc, err := NewServices(db, blobs, &cfg.Server, log)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	srv := &http.Server{
		Handler:           SetupRouter(svc, &cfg.Server, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go purgeLinks(ctx, svc, log)

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logger.Fields{
			"addr":       ln.Addr().String(),
			"mode":       cfg.Server.Mode,
			"blob":       cfg.Blob.Backend,
			"database":   cfg.Database.Driver,
			"public_url": cfg.Server.PublicURL,
		}).Info("starting devserver")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("devserver failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down devserver")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("devserver forced to shutdown: %w", err)
	}

	log.Info("devserver exited")
	return nil
}

// purgeLinks drops expired sharable links until ctx ends.
func purgeLinks(ctx context.Context, svc *Services, log *logger.Logger) {
	ticker := time.NewTicker(linkPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.Objects.PurgeExpiredLinks(ctx)
			if err != nil {
				log.WithError(err).Warn("failed to purge expired links")
				continue
			}
			if n > 0 {
				log.WithField("count", n).Debug("purged expired links")
			}
		}
	}
}
