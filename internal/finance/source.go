package finance

import (
	"context"
	"errors"
)

// ErrUnsuccessful is returned when the backend answers with success=false.
var ErrUnsuccessful = errors.New("backend reported an unsuccessful response")

// Source is the backend data collaborator. Every method returns records as
// the backend shaped them.
//
//go:generate mockgen -source=source.go -destination=source_mock.go -package=finance
type Source interface {
	Balance(ctx context.Context) (RawRecord, error)
	RecentTransactions(ctx context.Context, limit int) ([]RawRecord, error)
	Categories(ctx context.Context) ([]RawRecord, error)
	Profile(ctx context.Context) (RawRecord, error)
}
