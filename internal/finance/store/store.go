package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/finnyai/internal/finance"
)

// Store reads financial data straight from the finny Postgres schema. Rows
// are emitted as raw records so they go through the same normalization as the
// REST backend's payloads.
type Store struct {
	db     *sql.DB
	userID string
}

func New(db *sql.DB, userID string) *Store {
	return &Store{db: db, userID: userID}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) Balance(ctx context.Context) (finance.RawRecord, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'income' AND date >= date_trunc('month', NOW()) THEN amount
				WHEN type = 'expense' AND date >= date_trunc('month', NOW()) THEN -amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'income' AND date < date_trunc('month', NOW()) THEN amount
				WHEN type = 'expense' AND date < date_trunc('month', NOW()) THEN -amount ELSE 0 END), 0)
		FROM transactions
		WHERE deleted_at IS NULL`

	var income, expenses, monthNet, previous int64

	err := s.db.QueryRowContext(ctx, query).Scan(&income, &expenses, &monthNet, &previous)
	if err != nil {
		return nil, fmt.Errorf("querying balance: %w", err)
	}

	rec := finance.RawRecord{
		"total":    cents(income - expenses),
		"income":   cents(income),
		"expenses": cents(expenses),
		"change":   cents(monthNet),
	}

	if previous != 0 {
		rec["changePercentage"] = float64(monthNet) / float64(abs(previous)) * 100
	}

	return rec, nil
}

func (s *Store) RecentTransactions(ctx context.Context, limit int) ([]finance.RawRecord, error) {
	query := `
		SELECT t.id, t.description, t.raw_description, t.amount, t.type, t.date, t.category_id, c.name
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.deleted_at IS NULL
		ORDER BY t.date DESC, t.created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var records []finance.RawRecord

	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return records, nil
}

// scanTransaction expects: id, description, raw_description, amount, type, date, category_id, category_name
func scanTransaction(sc scanner) (finance.RawRecord, error) {
	var (
		id           string
		description  string
		rawDesc      sql.NullString
		amount       int64
		typ          string
		date         time.Time
		categoryID   sql.NullInt64
		categoryName sql.NullString
	)

	if err := sc.Scan(&id, &description, &rawDesc, &amount, &typ, &date, &categoryID, &categoryName); err != nil {
		return nil, err
	}

	rec := finance.RawRecord{
		"id":          id,
		"description": description,
		"amount":      cents(amount),
		"type":        typ,
		"date":        date,
	}

	if rawDesc.Valid {
		rec["transaction_description"] = rawDesc.String
	}

	if categoryID.Valid {
		rec["categoryId"] = categoryID.Int64
	}

	if categoryName.Valid {
		rec["category"] = categoryName.String
	}

	return rec, nil
}

func (s *Store) Categories(ctx context.Context) ([]finance.RawRecord, error) {
	query := `
		SELECT c.id, c.name, c.type_id, COALESCE(SUM(t.amount), 0), COUNT(t.id)
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id AND t.deleted_at IS NULL
		GROUP BY c.id, c.name, c.type_id
		ORDER BY c.name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var records []finance.RawRecord

	for rows.Next() {
		var (
			id, typeID   int64
			name         string
			total, count int64
		)

		if err := rows.Scan(&id, &name, &typeID, &total, &count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		records = append(records, finance.RawRecord{
			"id":               id,
			"name":             name,
			"typeId":           typeID,
			"totalSpent":       cents(total),
			"transactionCount": count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return records, nil
}

func (s *Store) Profile(ctx context.Context) (finance.RawRecord, error) {
	query := `SELECT name, email FROM profiles WHERE id = $1`

	var name, email sql.NullString

	err := s.db.QueryRowContext(ctx, query, s.userID).Scan(&name, &email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile %s: %w", s.userID, finance.ErrUnsuccessful)
		}

		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return finance.RawRecord{"name": name.String, "email": email.String}, nil
}

// cents converts the schema's integer cents into currency units.
func cents(v int64) float64 {
	return float64(v) / 100.0
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
