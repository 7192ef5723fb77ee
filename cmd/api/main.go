package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finnyai/internal/app"
	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/config"
	finnyHttp "github.com/MrJamesThe3rd/finnyai/internal/http"
	chatHandler "github.com/MrJamesThe3rd/finnyai/internal/http/chat"
	extractionHandler "github.com/MrJamesThe3rd/finnyai/internal/http/extraction"
	contextHandler "github.com/MrJamesThe3rd/finnyai/internal/http/fincontext"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	sessions := chat.NewManager(a.NewSession,
		chat.WithIdleTTL(cfg.Server.SessionTTL),
		chat.WithMaxPerOwner(cfg.Server.SessionsPerOwner),
	)

	if cfg.Server.SessionTTL > 0 {
		go sweepSessions(ctx, sessions, cfg.Server.SessionTTL)
	}

	var (
		chatH       = chatHandler.NewHandler(sessions)
		extractionH = extractionHandler.NewHandler(a.Extraction, media.NewLoader(media.WithPublicDestinationsOnly()))
		contextH    = contextHandler.NewHandler(a.Aggregator)
	)

	router := finnyHttp.New(finnyHttp.Options{
		JWTSecret:      cfg.Auth.Secret,
		AllowedOrigins: cfg.Auth.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}, chatH, extractionH, contextH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "source", cfg.Source.Driver, "model", cfg.Gemini.Model)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func sweepSessions(ctx context.Context, sessions *chat.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}
