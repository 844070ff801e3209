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

type PgxCompanyRepository struct {
	BaseRepository
}

// NewCompanyRepository creates a new repository for company data.
func NewCompanyRepository(pool *pgxpool.Pool) *PgxCompanyRepository {
	return &PgxCompanyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CompanyReader = (*PgxCompanyRepository)(nil)

const companyColumns = `
	company_id, name, total_shares, bank_account_id,
	verification_status, listing_status, created_at, last_updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var m models.Company
	err := row.Scan(
		&m.CompanyID,
		&m.Name,
		&m.TotalShares,
		&m.BankAccountID,
		&m.VerificationStatus,
		&m.ListingStatus,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindCompanyByID retrieves a company by its unique identifier.
func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`

	m, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find company "+companyID, err)
	}

	company := mapping.ToDomainCompany(*m)
	return &company, nil
}

// ListEligibleCompanies retrieves companies included in a monthly revenue run.
func (r *PgxCompanyRepository) ListEligibleCompanies(ctx context.Context) ([]domain.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE listing_status = $1 AND verification_status = $2
		ORDER BY created_at;
	`

	rows, err := r.Pool.Query(ctx, query, string(domain.ListingActive), string(domain.CompanyApproved))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list eligible companies", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		m, err := scanCompany(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan company row", err)
		}
		companies = append(companies, mapping.ToDomainCompany(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate company rows", err)
	}
	return companies, nil
}
