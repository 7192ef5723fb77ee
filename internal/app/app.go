// Package app wires the assistant's components from configuration. Both the
// API server and the terminal client start from here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/finnyai/internal/backend"
	"github.com/MrJamesThe3rd/finnyai/internal/chat"
	"github.com/MrJamesThe3rd/finnyai/internal/config"
	"github.com/MrJamesThe3rd/finnyai/internal/database"
	"github.com/MrJamesThe3rd/finnyai/internal/extraction"
	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	financeStore "github.com/MrJamesThe3rd/finnyai/internal/finance/store"
	"github.com/MrJamesThe3rd/finnyai/internal/fincontext"
	"github.com/MrJamesThe3rd/finnyai/internal/gemini"
	"github.com/MrJamesThe3rd/finnyai/internal/media"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

type App struct {
	Config     *config.Config
	Source     finance.Source
	Resolver   *normalize.Resolver
	Aggregator *fincontext.Aggregator
	Gemini     *gemini.Client
	Extraction *extraction.Service
	Loader     *media.Loader

	db *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	switch cfg.Source.Driver {
	case config.SourcePostgres:
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		a.db = db
		a.Source = financeStore.New(db, cfg.Source.UserID)
	default:
		a.Source = backend.New(cfg.Source.BaseURL, cfg.Source.Token, backend.WithTimeout(cfg.Source.Timeout))
	}

	if cfg.Gemini.APIKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, assistant calls will fail until it is configured")
	}

	a.Resolver = normalize.New(cfg.App.Locale, cfg.App.Currency)
	a.Aggregator = fincontext.New(a.Source, a.Resolver,
		fincontext.WithTransactionWindow(cfg.Source.TransactionWindow),
		fincontext.WithFetchTimeout(cfg.Source.Timeout),
	)
	a.Gemini = gemini.New(cfg.Gemini.APIKey,
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithHTTPClient(&http.Client{Timeout: cfg.Gemini.Timeout}),
		gemini.WithRetry(cfg.Gemini.MaxRetries, cfg.Gemini.Backoff),
	)
	a.Extraction = extraction.NewService(a.Gemini)
	a.Loader = media.NewLoader()

	return a, nil
}

// NewSession returns a conversation wired to this app's gateway and sources.
func (a *App) NewSession() *chat.Session {
	return chat.NewSession(a.Gemini, a.Aggregator,
		chat.WithExtractor(a.Extraction),
		chat.WithLoader(a.Loader),
	)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
