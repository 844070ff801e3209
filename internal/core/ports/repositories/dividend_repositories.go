package repositories

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DividendReader defines read operations for dividend data.
type DividendReader interface {
	// FindDividendByID retrieves a dividend by its unique identifier.
	FindDividendByID(ctx context.Context, dividendID string) (*domain.Dividend, error)

	// FindDividendByReportID retrieves the dividend for a revenue report, if any.
	FindDividendByReportID(ctx context.Context, revenueReportID string) (*domain.Dividend, error)

	// DividendExistsForReport is the fast-path idempotency pre-check.
	DividendExistsForReport(ctx context.Context, revenueReportID string) (bool, error)

	// ListPayoutsByDividend retrieves all payouts recorded for a dividend.
	ListPayoutsByDividend(ctx context.Context, dividendID string) ([]domain.DividendPayout, error)
}

// DividendWriter defines the transactional write operations of a distribution.
// All writes take an open transaction; the service owns the transaction scope.
type DividendWriter interface {
	// CreateDividendInTx inserts the dividend row. The revenue_report_id unique
	// constraint is the authoritative idempotency guard; a violation is
	// returned as apperrors.ErrDuplicate.
	CreateDividendInTx(ctx context.Context, tx pgx.Tx, dividend domain.Dividend) error

	// CreatePayoutInTx inserts one payout row. The (dividend_id, user_id)
	// unique constraint makes replays return apperrors.ErrDuplicate.
	CreatePayoutInTx(ctx context.Context, tx pgx.Tx, payout domain.DividendPayout) error

	// UpdateDividendStatusInTx moves the dividend through its lifecycle.
	UpdateDividendStatusInTx(ctx context.Context, tx pgx.Tx, dividendID string, status domain.DividendStatus, updatedAt time.Time) error
}

// DividendRepositoryFacade combines dividend read and write operations.
type DividendRepositoryFacade interface {
	DividendReader
	DividendWriter
}

// HoldingRepository defines access to shareholder positions.
type HoldingRepository interface {
	// ListActiveHoldingsByCompany retrieves holdings with shares_owned > 0,
	// ordered by creation time for deterministic, resumable batching.
	ListActiveHoldingsByCompany(ctx context.Context, companyID string) ([]domain.StockHolding, error)

	// FindHoldingInTx retrieves one (user, company) holding with a row lock.
	FindHoldingInTx(ctx context.Context, tx pgx.Tx, userID, companyID string) (*domain.StockHolding, error)

	// IncrementDividendsEarnedInTx adds amount to the holding's cumulative
	// total_dividends_earned. Additive only, never overwritten.
	IncrementDividendsEarnedInTx(ctx context.Context, tx pgx.Tx, holdingID string, amount decimal.Decimal, updatedAt time.Time) error

	// AdjustSharesInTx adds delta (which may be negative) to the (user,
	// company) holding, creating the holding when absent.
	AdjustSharesInTx(ctx context.Context, tx pgx.Tx, userID, companyID string, delta decimal.Decimal, updatedAt time.Time) error
}

// WalletRepository is the wallet balance capability, callable only within an
// active storage transaction.
type WalletRepository interface {
	// CreditWalletInTx atomically increments the user's balance.
	CreditWalletInTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, updatedAt time.Time) error

	// DebitWalletInTx atomically decrements the user's balance. Returns
	// apperrors.ErrValidation when the balance would go negative.
	DebitWalletInTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, updatedAt time.Time) error
}
