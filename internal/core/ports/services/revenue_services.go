package services

import (
	"context"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/dto"
)

// RevenueCalculationSvc computes monthly revenue reports from bank transactions.
type RevenueCalculationSvc interface {
	// Calculate runs the full monthly calculation over every eligible company.
	// Per-company failures are recorded in the result, not propagated; only
	// run-level failures (e.g. the company list cannot be fetched) return an error.
	Calculate(ctx context.Context, period domain.Period) (*dto.RevenueRunResult, error)

	// CalculateForCompany re-runs a single company for correction or testing.
	// It bypasses the scheduler but still honors idempotency.
	CalculateForCompany(ctx context.Context, companyID string, period domain.Period) (*dto.CompanyRunResult, error)

	// GetReport retrieves the stored report for a company-month.
	GetReport(ctx context.Context, companyID string, period domain.Period) (*domain.RevenueReport, error)
}
