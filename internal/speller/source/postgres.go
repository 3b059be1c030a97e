package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/resilience"
)

// Postgres reads words from one text column of a table. The table is
// expected to look like:
//
//	CREATE TABLE dictionary_words (
//	    word       TEXT PRIMARY KEY,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type Postgres struct {
	db     *postgres.Client
	table  string
	column string
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func NewPostgres(db *postgres.Client, table, column string) *Postgres {
	return &Postgres{
		db:     db,
		table:  table,
		column: column,
		retry:  resilience.RetryConfig{MaxAttempts: 4},
		logger: slog.Default().With("component", "postgres-source", "table", table),
	}
}

func (p *Postgres) Name() string {
	return "postgres:" + p.table
}

// Words reads the whole column, retrying transient failures.
func (p *Postgres) Words(ctx context.Context) ([]string, error) {
	var words []string
	err := resilience.Retry(ctx, "load dictionary words", p.retry, func() error {
		var err error
		words, err = p.query(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("words read", "count", len(words))
	return words, nil
}

func (p *Postgres) query(ctx context.Context) ([]string, error) {
	rows, err := p.db.DB.QueryContext(ctx, selectQuery(p.table, p.column))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", p.table, err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word sql.NullString
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scanning word: %w", err)
		}
		if word.Valid && word.String != "" {
			words = append(words, word.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", p.table, err)
	}
	return words, nil
}

// Store inserts words in one transaction, ignoring those already present.
func (p *Postgres) Store(ctx context.Context, words []string) error {
	if len(words) == 0 {
		return nil
	}
	return p.db.InTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertQuery(p.table, p.column))
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, w := range words {
			if _, err := stmt.ExecContext(ctx, w); err != nil {
				return fmt.Errorf("inserting %q: %w", w, err)
			}
		}
		return nil
	})
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// EnsureTable creates the word table when it does not exist yet.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	return p.db.Migrate(ctx, createQuery(p.table, p.column))
}

func selectQuery(table, column string) string {
	return fmt.Sprintf("SELECT %s FROM %s", pq.QuoteIdentifier(column), pq.QuoteIdentifier(table))
}

func createQuery(table, column string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, created_at TIMESTAMPTZ NOT NULL DEFAULT NOW())",
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(column))
}

func insertQuery(table, column string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1) ON CONFLICT DO NOTHING",
		pq.QuoteIdentifier(table), pq.QuoteIdentifier(column))
}
