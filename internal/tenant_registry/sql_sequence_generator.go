package tenant_registry

import (
	"context"
	"database/sql"
	"errors"

	"github.com/femtoworks/femto-gateway/internal/config"
	"github.com/femtoworks/femto-gateway/internal/platform/logger"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
)

// NewSqlNextSequenceValue builds the monotonic counter incrementer.  The
// increment runs in a single transaction with the counter row locked, so
// concurrent callers each observe a distinct value.
func NewSqlNextSequenceValue(cfg *config.Config, database *sql.DB) (NextSequenceValue, error) {

	return func(ctx context.Context, name string) (int64, error) {

		callDurationTimer := prometheus.NewTimer(metrics.sqlNextSequenceValueDuration)
		defer callDurationTimer.ObserveDuration()

		ctx, cancel := context.WithTimeout(ctx, cfg.RegistryQueryTimeout)
		defer cancel()

		value, err := incrementSequence(ctx, database, name)

		if isUniqueViolation(err) {
			// Lost the race to create the counter row.  The row exists
			// now, so a second attempt locks it and increments normally.
			value, err = incrementSequence(ctx, database, name)
		}

		return value, err
	}, nil
}

func incrementSequence(ctx context.Context, database *sql.DB, name string) (int64, error) {

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		logger.LogError("Unable to begin sequence transaction", err)
		return 0, err
	}
	defer tx.Rollback()

	var value int64
	err = tx.QueryRowContext(ctx, "SELECT value FROM sequences WHERE name = $1 FOR UPDATE", name).Scan(&value)

	if err == sql.ErrNoRows {
		_, err = tx.ExecContext(ctx, "INSERT INTO sequences (name, value) VALUES ($1, 1)", name)
		if err != nil {
			return 0, err
		}

		if err = tx.Commit(); err != nil {
			return 0, err
		}

		return 1, nil
	}

	if err != nil {
		logger.LogError("SQL query failed", err)
		return 0, err
	}

	value++

	_, err = tx.ExecContext(ctx, "UPDATE sequences SET value = $1 WHERE name = $2", value, name)
	if err != nil {
		logger.LogError("Unable to increment sequence counter", err)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return value, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgerrcode.UniqueViolation
	}
	return false
}
