package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/spf13/cobra"

	"github.com/Vovarama1992/videodl/internal/delivery"
	"github.com/Vovarama1992/videodl/internal/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, zl)
	if err != nil {
		zl.Log(logger.LogEntry{Level: "error", Message: "startup failed", Error: err})
		return err
	}
	defer a.Close()

	// eager login; the lazy path retries on first use
	go a.session.Start(ctx)

	h := delivery.Handlers{
		Health:   delivery.NewHealthHandler(a.session, a.svc.Platforms(), a.pool != nil),
		Download: delivery.NewDownloadHandler(a.svc),
		Lookup:   delivery.NewLookupHandler(a.lookup, zl),
		History:  delivery.NewHistoryHandler(a.svc, zl),
	}

	router := delivery.NewRouter(h, delivery.RouterOptions{
		Auth:           domain.NewAuthService(cfg.APIToken),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server started",
		Fields: map[string]any{
			"port":          cfg.Port,
			"instagram":     cfg.InstagramConfigured(),
			"aggregator":    cfg.AggregatorURL != "",
			"history":       a.pool != nil,
			"block_youtube": cfg.BlockYouTube,
		},
	})

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			zl.Log(logger.LogEntry{Level: "error", Message: "server crashed", Error: err})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	zl.Log(logger.LogEntry{Level: "info", Message: "shutting down"})
	return srv.Shutdown(shutdownCtx)
}
