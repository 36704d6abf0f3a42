package pricedata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wonny/frontier/internal/contracts"
)

// Querier is the subset of *pgxpool.Pool the repository needs.
// pgxmock.PgxPoolIface satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Schema creates the price store tables
const Schema = `
CREATE SCHEMA IF NOT EXISTS data;

CREATE TABLE IF NOT EXISTS data.daily_closes (
	ticker      TEXT             NOT NULL,
	trade_date  DATE             NOT NULL,
	close_price DOUBLE PRECISION NOT NULL,
	fetched_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (ticker, trade_date)
);

CREATE TABLE IF NOT EXISTS data.price_windows (
	ticker     TEXT        PRIMARY KEY,
	from_date  DATE        NOT NULL,
	to_date    DATE        NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Repository stores daily closes fetched from the upstream source
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type Repository struct {
	db Querier
}

// NewRepository creates a new price repository
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure price schema: %w", err)
	}
	return nil
}

// Window returns the date range already fetched for ticker.
// ok is false when the ticker has never been stored.
func (r *Repository) Window(ctx context.Context, ticker string) (from, to time.Time, ok bool, err error) {
	query := `
		SELECT from_date, to_date
		FROM data.price_windows
		WHERE ticker = $1
	`

	err = r.db.QueryRow(ctx, query, ticker).Scan(&from, &to)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("price window %s: %w", ticker, err)
	}
	return from, to, true, nil
}

// History retrieves stored closes for ticker within [from, to], oldest first
func (r *Repository) History(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, close_price
		FROM data.daily_closes
		WHERE ticker = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	series := contracts.PriceSeries{Ticker: ticker}

	rows, err := r.db.Query(ctx, query, ticker, from, to)
	if err != nil {
		return series, fmt.Errorf("query closes %s: %w", ticker, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return series, fmt.Errorf("scan close %s: %w", ticker, err)
		}
		p.Date = contracts.TruncateDay(p.Date)
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

// Save upserts the series and records [from, to] as fetched.
// Overlapping windows are merged; a disjoint window replaces the old one.
func (r *Repository) Save(ctx context.Context, series contracts.PriceSeries, from, to time.Time) error {
	upsertCloses := `
		INSERT INTO data.daily_closes (ticker, trade_date, close_price)
		SELECT $1, d, c FROM unnest($2::date[], $3::float8[]) AS t(d, c)
		ON CONFLICT (ticker, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			fetched_at = now()
	`
	upsertWindow := `
		INSERT INTO data.price_windows (ticker, from_date, to_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			from_date = CASE
				WHEN EXCLUDED.from_date <= data.price_windows.to_date AND EXCLUDED.to_date >= data.price_windows.from_date
				THEN LEAST(data.price_windows.from_date, EXCLUDED.from_date)
				ELSE EXCLUDED.from_date END,
			to_date = CASE
				WHEN EXCLUDED.from_date <= data.price_windows.to_date AND EXCLUDED.to_date >= data.price_windows.from_date
				THEN GREATEST(data.price_windows.to_date, EXCLUDED.to_date)
				ELSE EXCLUDED.to_date END,
			fetched_at = now()
	`

	if series.IsEmpty() {
		return nil
	}

	dates := make([]time.Time, len(series.Points))
	closes := make([]float64, len(series.Points))
	for i, p := range series.Points {
		dates[i] = p.Date
		closes[i] = p.Close
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", series.Ticker, err)
	}

	if _, err := tx.Exec(ctx, upsertCloses, series.Ticker, dates, closes); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("save closes %s: %w", series.Ticker, err)
	}

	if _, err := tx.Exec(ctx, upsertWindow, series.Ticker, contracts.TruncateDay(from), contracts.TruncateDay(to)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("save window %s: %w", series.Ticker, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save %s: %w", series.Ticker, err)
	}
	return nil
}
