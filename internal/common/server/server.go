package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/AlibekovAA/gym-api/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains:
// keep-alives are disabled, hooks run within the drain window, and the
// server is shut down within the overall shutdown timeout.
func Run(
	ctx context.Context,
	cfg ServerConfig,
	server *http.Server,
	log *logger.Logger,
	hooks []ShutdownHook,
) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("gym api listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("failed to start gym api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down gym api...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	drainCtx, drainCancel := context.WithTimeout(shutdownCtx, cfg.DrainTimeout)
	defer drainCancel()

	log.Infof("gym api: stopping accepting new connections (drain period: %v)", cfg.DrainTimeout)
	server.SetKeepAlivesEnabled(false)

	if len(hooks) > 0 {
		log.Info("gym api: executing shutdown hooks")
		for i, hook := range hooks {
			if err := hook(drainCtx); err != nil {
				log.Errorf("gym api: shutdown hook %d failed: %v", i, err)
			}
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("gym api forced to shutdown: %v", err)
		return err
	}
	log.Info("gym api stopped gracefully")
	return nil
}
