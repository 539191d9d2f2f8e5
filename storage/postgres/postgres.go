// Package postgres implements the record store on PostgreSQL.
//
// The unique index on the identity tuple plus the window bucket turns the
// check-then-act race between concurrent identical submissions into a
// unique-violation error, which is reported as errs.ErrDuplicateRecord.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tokenpay/metrics-service/internal/errs"
	"github.com/tokenpay/metrics-service/internal/utils"
	"github.com/tokenpay/metrics-service/model"
)

const createSchemaQuery = `
CREATE TABLE IF NOT EXISTS metric_records (
	id               UUID PRIMARY KEY,
	fingerprint      TEXT NOT NULL,
	name             TEXT NOT NULL,
	page_path        TEXT,
	type             TEXT NOT NULL,
	value            DOUBLE PRECISION NOT NULL,
	tags             JSONB NOT NULL,
	forwarded        BOOLEAN NOT NULL DEFAULT FALSE,
	forward_response TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	window_bucket    BIGINT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS metric_records_identity_bucket
	ON metric_records (fingerprint, name, COALESCE(page_path, ''), type, value, window_bucket);`

const findRecentQuery = `
SELECT 1 FROM metric_records
WHERE fingerprint = $1
  AND name = $2
  AND page_path IS NOT DISTINCT FROM $3
  AND type = $4
  AND value = $5
  AND created_at >= now() - make_interval(secs => $6)
LIMIT 1`

const insertQuery = `
INSERT INTO metric_records (id, fingerprint, name, page_path, type, value, tags, forwarded, window_bucket)
VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8)`

const markForwardedQuery = `
UPDATE metric_records
SET forwarded = TRUE, forward_response = $1
WHERE fingerprint = $2
  AND name = $3
  AND page_path IS NOT DISTINCT FROM $4
  AND type = $5
  AND value = $6
  AND forwarded = FALSE`

type PostgresStorage struct {
	db     *pgxpool.Pool
	window time.Duration
}

func NewPostgresStorage(ctx context.Context, databaseDsn string, window time.Duration) (*PostgresStorage, error) {
	db, err := pgxpool.New(ctx, databaseDsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store := &PostgresStorage{db: db, window: window}
	if err := utils.WithRetry(ctx, func() error {
		_, execErr := db.Exec(ctx, createSchemaQuery)
		return execErr
	}); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return store, nil
}

func (store *PostgresStorage) FindRecent(ctx context.Context, fingerprint string, m *model.Metric) (bool, error) {
	var found bool
	err := utils.WithRetry(ctx, func() error {
		var one int
		scanErr := store.db.QueryRow(ctx, findRecentQuery,
			fingerprint, m.Name, m.PagePath, m.Type, m.Value, store.window.Seconds(),
		).Scan(&one)
		switch {
		case scanErr == nil:
			found = true
			return nil
		case errors.Is(scanErr, pgx.ErrNoRows):
			found = false
			return nil
		default:
			return scanErr
		}
	})
	return found, err
}

// Insert writes the record within the current window bucket. A replayed
// insert is never retried: retrying after an ambiguous failure could turn
// a freshly stored metric into a false duplicate.
func (store *PostgresStorage) Insert(ctx context.Context, rec *model.Record) error {
	m := &rec.Metric
	_, err := store.db.Exec(ctx, insertQuery,
		rec.ID, rec.Fingerprint, m.Name, m.PagePath, m.Type, m.Value, m.Tags, store.windowBucket())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errs.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (store *PostgresStorage) MarkForwarded(ctx context.Context, recs []*model.Record, response string) error {
	return utils.WithRetry(ctx, func() error {
		for _, rec := range recs {
			m := &rec.Metric
			_, err := store.db.Exec(ctx, markForwardedQuery,
				response, rec.Fingerprint, m.Name, m.PagePath, m.Type, m.Value)
			if err != nil {
				return err
			}
			rec.Forwarded = true
		}
		return nil
	})
}

func (store *PostgresStorage) Ping(ctx context.Context) error {
	return store.db.Ping(ctx)
}

func (store *PostgresStorage) Close() {
	store.db.Close()
}

func (store *PostgresStorage) windowBucket() int64 {
	secs := int64(store.window / time.Second)
	if secs <= 0 {
		secs = 1
	}
	return time.Now().Unix() / secs
}
