package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/clearvest/payout_engine/internal/models"
	"github.com/clearvest/payout_engine/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxHoldingRepository struct {
	BaseRepository
}

// NewHoldingRepository creates a new repository for shareholder positions.
func NewHoldingRepository(pool *pgxpool.Pool) *PgxHoldingRepository {
	return &PgxHoldingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.HoldingRepository = (*PgxHoldingRepository)(nil)

const holdingColumns = `
	holding_id, user_id, company_id, shares_owned, total_dividends_earned,
	created_at, last_updated_at`

func scanHolding(row pgx.Row) (*models.StockHolding, error) {
	var m models.StockHolding
	err := row.Scan(
		&m.HoldingID,
		&m.UserID,
		&m.CompanyID,
		&m.SharesOwned,
		&m.TotalDividendsEarned,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListActiveHoldingsByCompany retrieves holdings with shares, ordered by
// creation time. The deterministic order matters for audit and for resuming
// partial batches.
func (r *PgxHoldingRepository) ListActiveHoldingsByCompany(ctx context.Context, companyID string) ([]domain.StockHolding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM stock_holdings
		WHERE company_id = $1 AND shares_owned > 0
		ORDER BY created_at, holding_id;
	`

	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list holdings for company "+companyID, err)
	}
	defer rows.Close()

	var holdings []models.StockHolding
	for rows.Next() {
		m, err := scanHolding(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan holding row", err)
		}
		holdings = append(holdings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate holding rows", err)
	}
	return mapping.ToDomainStockHoldingSlice(holdings), nil
}

// FindHoldingInTx retrieves one (user, company) holding with a row lock.
func (r *PgxHoldingRepository) FindHoldingInTx(ctx context.Context, tx pgx.Tx, userID, companyID string) (*domain.StockHolding, error) {
	query := `SELECT ` + holdingColumns + ` FROM stock_holdings WHERE user_id = $1 AND company_id = $2 FOR UPDATE;`

	m, err := scanHolding(tx.QueryRow(ctx, query, userID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find holding for user "+userID, err)
	}

	holding := mapping.ToDomainStockHolding(*m)
	return &holding, nil
}

// IncrementDividendsEarnedInTx adds amount to the holding's cumulative total.
// Additive only: the increment happens in SQL, never as a read-modify-write.
func (r *PgxHoldingRepository) IncrementDividendsEarnedInTx(ctx context.Context, tx pgx.Tx, holdingID string, amount decimal.Decimal, updatedAt time.Time) error {
	query := `
		UPDATE stock_holdings
		SET total_dividends_earned = total_dividends_earned + $2, last_updated_at = $3
		WHERE holding_id = $1;
	`

	tag, err := tx.Exec(ctx, query, holdingID, amount, updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to increment dividends earned for holding "+holdingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AdjustSharesInTx adds delta to the (user, company) holding, creating it when
// absent. A negative delta that would take shares below zero matches no rows
// and returns ErrValidation.
func (r *PgxHoldingRepository) AdjustSharesInTx(ctx context.Context, tx pgx.Tx, userID, companyID string, delta decimal.Decimal, updatedAt time.Time) error {
	if delta.IsNegative() {
		query := `
			UPDATE stock_holdings
			SET shares_owned = shares_owned + $3, last_updated_at = $4
			WHERE user_id = $1 AND company_id = $2 AND shares_owned >= -$3;
		`
		tag, err := tx.Exec(ctx, query, userID, companyID, delta, updatedAt)
		if err != nil {
			return apperrors.NewAppError(500, "failed to reduce holding for user "+userID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewAppError(422, "insufficient shares for user "+userID, apperrors.ErrValidation)
		}
		return nil
	}

	query := `
		INSERT INTO stock_holdings (holding_id, user_id, company_id, shares_owned, total_dividends_earned, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $5)
		ON CONFLICT (user_id, company_id) DO UPDATE
		SET shares_owned = stock_holdings.shares_owned + EXCLUDED.shares_owned, last_updated_at = EXCLUDED.last_updated_at;
	`
	if _, err := tx.Exec(ctx, query, uuid.NewString(), userID, companyID, delta, updatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to add holding for user "+userID, err)
	}
	return nil
}
