// Package fincontext assembles the textual financial context handed to the
// assistant from the four backend reads.
package fincontext

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
	"github.com/MrJamesThe3rd/finnyai/internal/normalize"
)

const DefaultTransactionWindow = 30

// Aggregator builds a finance.Context. It holds no cache; every Build call
// hits the source again.
type Aggregator struct {
	source   finance.Source
	resolver *normalize.Resolver
	window   int
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Aggregator)

// WithTransactionWindow caps how many recent transactions are requested and
// rendered.
func WithTransactionWindow(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.window = n
		}
	}
}

// WithFetchTimeout bounds each source read individually. Zero means the
// caller's context is the only deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

func New(source finance.Source, resolver *normalize.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		source:   source,
		resolver: resolver,
		window:   DefaultTransactionWindow,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// fetched holds the outcome of the four reads. Each goroutine writes only its
// own fields.
type fetched struct {
	profile         finance.RawRecord
	profileErr      error
	balance         finance.RawRecord
	balanceErr      error
	transactions    []finance.RawRecord
	transactionsErr error
	categories      []finance.RawRecord
	categoriesErr   error
}

// Build reads all sources concurrently and renders whatever succeeded. A
// failing source only drops its sections. Build returns nil when every source
// failed.
func (a *Aggregator) Build(ctx context.Context) *finance.Context {
	var (
		f  fetched
		wg sync.WaitGroup
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		f.profile, f.profileErr = fetch(ctx, a.timeout, a.source.Profile)
	}()

	go func() {
		defer wg.Done()
		f.balance, f.balanceErr = fetch(ctx, a.timeout, a.source.Balance)
	}()

	go func() {
		defer wg.Done()
		f.transactions, f.transactionsErr = fetch(ctx, a.timeout, func(ctx context.Context) ([]finance.RawRecord, error) {
			return a.source.RecentTransactions(ctx, a.window)
		})
	}()

	go func() {
		defer wg.Done()
		f.categories, f.categoriesErr = fetch(ctx, a.timeout, a.source.Categories)
	}()

	wg.Wait()

	return a.render(f)
}

func (a *Aggregator) render(f fetched) *finance.Context {
	fctx := &finance.Context{GeneratedAt: a.now()}

	results := []struct {
		name finance.SourceName
		err  error
	}{
		{finance.SourceProfile, f.profileErr},
		{finance.SourceBalance, f.balanceErr},
		{finance.SourceTransactions, f.transactionsErr},
		{finance.SourceCategories, f.categoriesErr},
	}

	for _, r := range results {
		if r.err != nil {
			slog.Warn("financial source unavailable", "source", r.name, "error", r.err)
			fctx.Missing = append(fctx.Missing, r.name)
		}
	}

	if len(fctx.Missing) == len(results) {
		slog.Error("no financial source answered, context unavailable")
		return nil
	}

	var cats []finance.CategoryAggregate
	if f.categoriesErr == nil {
		cats = make([]finance.CategoryAggregate, 0, len(f.categories))
		for _, rec := range f.categories {
			cats = append(cats, a.resolver.CategoryAggregate(rec))
		}
	}

	if f.profileErr == nil {
		fctx.Sections = append(fctx.Sections, a.profileSection(f.profile))
	}

	if f.balanceErr == nil {
		fctx.Sections = append(fctx.Sections, a.balanceSection(f.balance))
	}

	if f.transactionsErr == nil {
		// Sources may ignore the limit they were given.
		if len(f.transactions) > a.window {
			f.transactions = f.transactions[:a.window]
		}

		fctx.Sections = append(fctx.Sections, a.transactionsSection(f.transactions, cats))
	}

	if f.categoriesErr == nil {
		fctx.Sections = append(fctx.Sections, a.categorySections(cats)...)
	}

	return fctx
}

// fetch runs one read under its own deadline when timeout is set.
func fetch[T any](ctx context.Context, timeout time.Duration, read func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return read(ctx)
}
