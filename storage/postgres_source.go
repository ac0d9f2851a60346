package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"vehicle-storefront/models"
	"vehicle-storefront/utils"
)

// PostgresSource serves listing pages from, and seeds listings into,
// PostgreSQL.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection to PostgreSQL, waits for it to
// accept connections, runs schema migrations and returns a ready source.
func NewPostgresSource(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	err = retry.Do(ctx, "postgres-ping", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresSource{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresSource) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vehicles (
			id                TEXT         PRIMARY KEY,
			vehicle_type      VARCHAR(16)  NOT NULL,
			brand             TEXT,
			model             TEXT,
			variant           TEXT,
			year              INTEGER,
			sell_price        BIGINT,
			kilometers_driven INTEGER,
			color             TEXT,
			number_of_owners  TEXT,
			city              TEXT,
			seller_type       VARCHAR(16)  NOT NULL DEFAULT '',
			is_recommended    BOOLEAN      NOT NULL DEFAULT FALSE,
			is_discounted     BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_vehicles_type_created ON vehicles(vehicle_type, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_vehicles_city         ON vehicles(city);
		CREATE INDEX IF NOT EXISTS idx_vehicles_recommended  ON vehicles(is_recommended);
		CREATE INDEX IF NOT EXISTS idx_vehicles_discounted   ON vehicles(is_discounted);
	`)
	return err
}

// Query runs one page query and returns every row as a loosely typed
// record. NULL columns are left out of the record.
func (ps *PostgresSource) Query(ctx context.Context, q Query) ([]models.Record, error) {
	stmt, args, err := q.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := ps.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("postgres: columns: %w", err)
	}

	var records []models.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		rec := make(models.Record, len(cols))
		for i, c := range cols {
			if values[i] != nil {
				rec[c] = values[i]
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all existing listings from the table.
func (ps *PostgresSource) Clear(ctx context.Context) error {
	if _, err := ps.db.ExecContext(ctx, "DELETE FROM vehicles"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-upserts listings. Existing IDs are left unchanged.
func (ps *PostgresSource) Write(ctx context.Context, listings []*models.Listing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := ps.insertBatch(ctx, listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

const listingColumns = 15

func (ps *PostgresSource) insertBatch(ctx context.Context, batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*listingColumns)

	for idx, l := range batch {
		base := idx * listingColumns
		ph := make([]string, listingColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		createdAt := l.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		valueArgs = append(valueArgs,
			l.ID, string(l.VehicleType), nullString(l.Brand), nullString(l.Model), nullString(l.Variant),
			l.Year, l.SellPrice, l.KilometersDriven, nullString(l.Color), nullString(l.NumberOfOwners),
			nullString(l.City), string(l.SellerType), l.IsRecommended, l.IsDiscounted, createdAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO vehicles (id, vehicle_type, brand, model, variant, year, sell_price,
			kilometers_driven, color, number_of_owners, city, seller_type,
			is_recommended, is_discounted, created_at)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := ps.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// Empty strings are stored as NULL so incomplete fixtures stay incomplete.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (ps *PostgresSource) Close() error {
	return ps.db.Close()
}
