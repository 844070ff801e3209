package pgsql

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxWalletRepository struct {
	BaseRepository
}

// NewWalletRepository creates a new repository for user wallets.
func NewWalletRepository(pool *pgxpool.Pool) *PgxWalletRepository {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WalletRepository = (*PgxWalletRepository)(nil)

// CreditWalletInTx atomically increments the user's balance inside the
// caller's transaction. The increment happens in SQL so concurrent credits
// never lose updates.
func (r *PgxWalletRepository) CreditWalletInTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, updatedAt time.Time) error {
	if amount.IsNegative() {
		return apperrors.NewAppError(400, "credit amount must not be negative", apperrors.ErrValidation)
	}

	query := `UPDATE wallets SET balance = balance + $2, last_updated_at = $3 WHERE user_id = $1;`

	tag, err := tx.Exec(ctx, query, userID, amount, updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to credit wallet for user "+userID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DebitWalletInTx atomically decrements the user's balance inside the caller's
// transaction. The balance guard is part of the UPDATE predicate, so an
// insufficient balance simply matches zero rows.
func (r *PgxWalletRepository) DebitWalletInTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, updatedAt time.Time) error {
	if amount.IsNegative() {
		return apperrors.NewAppError(400, "debit amount must not be negative", apperrors.ErrValidation)
	}

	query := `
		UPDATE wallets SET balance = balance - $2, last_updated_at = $3
		WHERE user_id = $1 AND balance >= $2;
	`

	tag, err := tx.Exec(ctx, query, userID, amount, updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to debit wallet for user "+userID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE user_id = $1);`, userID).Scan(&exists); err != nil {
			return apperrors.NewAppError(500, "failed to check wallet for user "+userID, err)
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(422, "insufficient wallet balance for user "+userID, apperrors.ErrValidation)
	}
	return nil
}
