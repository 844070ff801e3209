package pgsql

import (
	"context"
	"errors"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/clearvest/payout_engine/internal/models"
	"github.com/clearvest/payout_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRevenueReportRepository struct {
	BaseRepository
}

// NewRevenueReportRepository creates a new repository for monthly revenue reports.
func NewRevenueReportRepository(pool *pgxpool.Pool) *PgxRevenueReportRepository {
	return &PgxRevenueReportRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RevenueReportRepository = (*PgxRevenueReportRepository)(nil)

const revenueReportColumns = `
	report_id, company_id, month, year, total_credits, total_debits,
	net_revenue, platform_fee, net_profit, dividend_pool, reinvestment,
	verification_status, created_at, last_updated_at`

func scanRevenueReport(row pgx.Row) (*models.RevenueReport, error) {
	var m models.RevenueReport
	err := row.Scan(
		&m.ReportID,
		&m.CompanyID,
		&m.Month,
		&m.Year,
		&m.TotalCredits,
		&m.TotalDebits,
		&m.NetRevenue,
		&m.PlatformFee,
		&m.NetProfit,
		&m.DividendPool,
		&m.Reinvestment,
		&m.VerificationStatus,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateRevenueReport inserts a new report inside its own transaction. The
// UNIQUE (company_id, month, year) constraint is the authoritative idempotency
// guard; violations come back as apperrors.ErrDuplicate.
func (r *PgxRevenueReportRepository) CreateRevenueReport(ctx context.Context, report domain.RevenueReport) error {
	m := mapping.ToModelRevenueReport(report)
	query := `
		INSERT INTO revenue_reports (` + revenueReportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`

	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			m.ReportID,
			m.CompanyID,
			m.Month,
			m.Year,
			m.TotalCredits,
			m.TotalDebits,
			m.NetRevenue,
			m.PlatformFee,
			m.NetProfit,
			m.DividendPool,
			m.Reinvestment,
			m.VerificationStatus,
			m.CreatedAt,
			m.LastUpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.ErrDuplicate
			}
			return apperrors.NewAppError(500, "failed to insert revenue report for company "+m.CompanyID, err)
		}
		return nil
	})
}

// RevenueReportExists is the fast-path idempotency pre-check.
func (r *PgxRevenueReportRepository) RevenueReportExists(ctx context.Context, companyID string, period domain.Period) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM revenue_reports WHERE company_id = $1 AND month = $2 AND year = $3);`

	var exists bool
	err := r.Pool.QueryRow(ctx, query, companyID, int(period.Month), period.Year).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check revenue report existence", err)
	}
	return exists, nil
}

// FindReportByID retrieves a report by its unique identifier.
func (r *PgxRevenueReportRepository) FindReportByID(ctx context.Context, reportID string) (*domain.RevenueReport, error) {
	query := `SELECT ` + revenueReportColumns + ` FROM revenue_reports WHERE report_id = $1;`

	m, err := scanRevenueReport(r.Pool.QueryRow(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find revenue report "+reportID, err)
	}

	report := mapping.ToDomainRevenueReport(*m)
	return &report, nil
}

// FindReportByCompanyPeriod retrieves the report for a company-month, if any.
func (r *PgxRevenueReportRepository) FindReportByCompanyPeriod(ctx context.Context, companyID string, period domain.Period) (*domain.RevenueReport, error) {
	query := `SELECT ` + revenueReportColumns + ` FROM revenue_reports WHERE company_id = $1 AND month = $2 AND year = $3;`

	m, err := scanRevenueReport(r.Pool.QueryRow(ctx, query, companyID, int(period.Month), period.Year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find revenue report for company "+companyID, err)
	}

	report := mapping.ToDomainRevenueReport(*m)
	return &report, nil
}

// ListDistributableReports retrieves AUTO_VERIFIED or VERIFIED reports with a
// positive dividend pool for the period, ordered by creation time.
func (r *PgxRevenueReportRepository) ListDistributableReports(ctx context.Context, period domain.Period) ([]domain.RevenueReport, error) {
	query := `
		SELECT ` + revenueReportColumns + `
		FROM revenue_reports
		WHERE month = $1 AND year = $2
		  AND verification_status IN ($3, $4)
		  AND dividend_pool > 0
		ORDER BY created_at;
	`

	rows, err := r.Pool.Query(ctx, query,
		int(period.Month), period.Year,
		string(domain.ReportAutoVerified), string(domain.ReportVerified),
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list distributable reports", err)
	}
	defer rows.Close()

	var reports []domain.RevenueReport
	for rows.Next() {
		m, err := scanRevenueReport(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan revenue report row", err)
		}
		reports = append(reports, mapping.ToDomainRevenueReport(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate revenue report rows", err)
	}
	return reports, nil
}
