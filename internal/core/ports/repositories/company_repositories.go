package repositories

import (
	"context"

	"github.com/clearvest/payout_engine/internal/core/domain"
)

// CompanyReader defines read operations for company data.
type CompanyReader interface {
	// FindCompanyByID retrieves a company by its unique identifier.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListEligibleCompanies retrieves all companies included in a monthly
	// revenue run: listing status ACTIVE and verification status APPROVED.
	ListEligibleCompanies(ctx context.Context) ([]domain.Company, error)
}
