package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"purchase-explorer/models"
	"purchase-explorer/utils"
)

const insertBatchSize = 200

// PostgresStore keeps the cleaned dataset in a purchases table. It is both a
// PurchaseWriter (import command) and a PurchaseSource (DATA_SOURCE=postgres).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection, waits for the server with retry and
// runs the schema migration.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	err = retry.Do(ctx, "postgres-ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS purchases (
			id        SERIAL PRIMARY KEY,
			location  TEXT          NOT NULL,
			gender    TEXT          NOT NULL,
			age       INTEGER       NOT NULL,
			amount    NUMERIC(12,2) NOT NULL,
			loaded_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_purchases_location ON purchases(location);
		CREATE INDEX IF NOT EXISTS idx_purchases_age      ON purchases(age);
	`)
	return err
}

// Clear deletes all stored purchases.
func (ps *PostgresStore) Clear(ctx context.Context) error {
	if _, err := ps.db.ExecContext(ctx, "DELETE FROM purchases"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the table contents with purchases inside one transaction.
func (ps *PostgresStore) Write(ctx context.Context, purchases []models.Purchase) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM purchases"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(purchases); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(purchases) {
			end = len(purchases)
		}
		query, args := buildInsert(purchases[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func buildInsert(batch []models.Purchase) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*4)

	for idx, p := range batch {
		base := idx * 4
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, p.Region, p.Category, p.Age, p.Amount)
	}

	query := "INSERT INTO purchases (location, gender, age, amount) VALUES " +
		strings.Join(valueStrings, ",")
	return query, valueArgs
}

// Load returns stored rows in insertion order, formatted back into raw
// strings so they pass through the same cleaner as file input.
func (ps *PostgresStore) Load(ctx context.Context) ([]*models.RawPurchase, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT location, gender, age, amount
		FROM purchases
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []*models.RawPurchase
	for rows.Next() {
		var (
			location, gender string
			age              int
			amount           float64
		)
		if err := rows.Scan(&location, &gender, &age, &amount); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		out = append(out, &models.RawPurchase{
			Location: location,
			Gender:   gender,
			Age:      strconv.Itoa(age),
			Amount:   strconv.FormatFloat(amount, 'f', -1, 64),
		})
	}
	return out, rows.Err()
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
