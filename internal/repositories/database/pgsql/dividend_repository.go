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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDividendRepository struct {
	BaseRepository
}

// NewDividendRepository creates a new repository for dividends and payouts.
func NewDividendRepository(pool *pgxpool.Pool) *PgxDividendRepository {
	return &PgxDividendRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DividendRepositoryFacade = (*PgxDividendRepository)(nil)

const dividendColumns = `
	dividend_id, revenue_report_id, company_id, total_pool, eligible_shares,
	amount_per_share, status, created_at, last_updated_at`

func scanDividend(row pgx.Row) (*models.Dividend, error) {
	var m models.Dividend
	err := row.Scan(
		&m.DividendID,
		&m.RevenueReportID,
		&m.CompanyID,
		&m.TotalPool,
		&m.EligibleShares,
		&m.AmountPerShare,
		&m.Status,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindDividendByID retrieves a dividend by its unique identifier.
func (r *PgxDividendRepository) FindDividendByID(ctx context.Context, dividendID string) (*domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE dividend_id = $1;`

	m, err := scanDividend(r.Pool.QueryRow(ctx, query, dividendID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find dividend "+dividendID, err)
	}

	dividend := mapping.ToDomainDividend(*m)
	return &dividend, nil
}

// FindDividendByReportID retrieves the dividend for a revenue report, if any.
func (r *PgxDividendRepository) FindDividendByReportID(ctx context.Context, revenueReportID string) (*domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE revenue_report_id = $1;`

	m, err := scanDividend(r.Pool.QueryRow(ctx, query, revenueReportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find dividend for report "+revenueReportID, err)
	}

	dividend := mapping.ToDomainDividend(*m)
	return &dividend, nil
}

// DividendExistsForReport is the fast-path idempotency pre-check.
func (r *PgxDividendRepository) DividendExistsForReport(ctx context.Context, revenueReportID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM dividends WHERE revenue_report_id = $1);`

	var exists bool
	err := r.Pool.QueryRow(ctx, query, revenueReportID).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check dividend existence", err)
	}
	return exists, nil
}

// ListPayoutsByDividend retrieves all payouts recorded for a dividend.
func (r *PgxDividendRepository) ListPayoutsByDividend(ctx context.Context, dividendID string) ([]domain.DividendPayout, error) {
	query := `
		SELECT payout_id, dividend_id, user_id, shares_owned, amount, created_at, last_updated_at
		FROM dividend_payouts
		WHERE dividend_id = $1
		ORDER BY created_at;
	`

	rows, err := r.Pool.Query(ctx, query, dividendID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payouts for dividend "+dividendID, err)
	}
	defer rows.Close()

	var payouts []domain.DividendPayout
	for rows.Next() {
		var m models.DividendPayout
		err := rows.Scan(
			&m.PayoutID,
			&m.DividendID,
			&m.UserID,
			&m.SharesOwned,
			&m.Amount,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payout row", err)
		}
		payouts = append(payouts, mapping.ToDomainDividendPayout(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate payout rows", err)
	}
	return payouts, nil
}

// CreateDividendInTx inserts the dividend row inside the caller's transaction.
// The revenue_report_id unique constraint is the authoritative idempotency
// guard; violations come back as apperrors.ErrDuplicate.
func (r *PgxDividendRepository) CreateDividendInTx(ctx context.Context, tx pgx.Tx, dividend domain.Dividend) error {
	m := mapping.ToModelDividend(dividend)
	query := `
		INSERT INTO dividends (` + dividendColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	_, err := tx.Exec(ctx, query,
		m.DividendID,
		m.RevenueReportID,
		m.CompanyID,
		m.TotalPool,
		m.EligibleShares,
		m.AmountPerShare,
		m.Status,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert dividend for report "+m.RevenueReportID, err)
	}
	return nil
}

// CreatePayoutInTx inserts one payout row inside the caller's transaction.
// The (dividend_id, user_id) unique constraint makes replays ErrDuplicate.
func (r *PgxDividendRepository) CreatePayoutInTx(ctx context.Context, tx pgx.Tx, payout domain.DividendPayout) error {
	m := mapping.ToModelDividendPayout(payout)
	query := `
		INSERT INTO dividend_payouts (payout_id, dividend_id, user_id, shares_owned, amount, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	_, err := tx.Exec(ctx, query,
		m.PayoutID,
		m.DividendID,
		m.UserID,
		m.SharesOwned,
		m.Amount,
		m.CreatedAt,
		m.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert payout for dividend "+m.DividendID, err)
	}
	return nil
}

// UpdateDividendStatusInTx moves the dividend through its lifecycle.
func (r *PgxDividendRepository) UpdateDividendStatusInTx(ctx context.Context, tx pgx.Tx, dividendID string, status domain.DividendStatus, updatedAt time.Time) error {
	query := `UPDATE dividends SET status = $2, last_updated_at = $3 WHERE dividend_id = $1;`

	tag, err := tx.Exec(ctx, query, dividendID, string(status), updatedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update dividend status "+dividendID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
