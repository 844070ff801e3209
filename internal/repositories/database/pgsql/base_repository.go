package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// WithTx executes fn inside an atomic transaction: commit on nil, rollback on
// any error. Start, commit and rollback are all logged with duration so every
// financial write has an audit trail in the logs.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	start := time.Now()

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	logger.Debug("Transaction started")

	if err := fn(tx); err != nil {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil {
			logger.Error("Transaction rollback failed", slog.String("error", rbErr.Error()))
		}
		logger.Warn("Transaction rolled back",
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}
	logger.Debug("Transaction committed", slog.Duration("duration", time.Since(start)))
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). Idempotent writers map this to ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
