package repositories

import (
	"context"

	"github.com/clearvest/payout_engine/internal/core/domain"
)

// RevenueReportRepository defines persistence for monthly revenue reports.
type RevenueReportRepository interface {
	// CreateRevenueReport inserts a new report. The (company, month, year)
	// unique constraint is the authoritative idempotency guard: a violation is
	// returned as apperrors.ErrDuplicate, which callers treat as a benign skip.
	CreateRevenueReport(ctx context.Context, report domain.RevenueReport) error

	// RevenueReportExists is the fast-path idempotency pre-check.
	RevenueReportExists(ctx context.Context, companyID string, period domain.Period) (bool, error)

	// FindReportByID retrieves a report by its unique identifier.
	FindReportByID(ctx context.Context, reportID string) (*domain.RevenueReport, error)

	// FindReportByCompanyPeriod retrieves the report for a company-month, if any.
	FindReportByCompanyPeriod(ctx context.Context, companyID string, period domain.Period) (*domain.RevenueReport, error)

	// ListDistributableReports retrieves all reports for the period that are
	// AUTO_VERIFIED or VERIFIED with a positive dividend pool.
	ListDistributableReports(ctx context.Context, period domain.Period) ([]domain.RevenueReport, error)
}

// BankTransactionRepository defines persistence for raw bank ledger lines.
type BankTransactionRepository interface {
	// SaveBankTransactions persists fetched transactions idempotently:
	// duplicate bank references are ignored. Returns the number actually inserted.
	SaveBankTransactions(ctx context.Context, txns []domain.BankTransaction) (int, error)

	// ListBankTransactions retrieves a company's transactions dated within
	// [from, to), ordered by date.
	ListBankTransactions(ctx context.Context, companyID string, period domain.Period) ([]domain.BankTransaction, error)
}
