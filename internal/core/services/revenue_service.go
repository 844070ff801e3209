package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/utils/money"
	"github.com/clearvest/payout_engine/internal/utils/retry"
	"github.com/shopspring/decimal"
)

var (
	platformFeeRate  = decimal.RequireFromString("0.05")
	dividendPoolRate = decimal.RequireFromString("0.60")
)

// revenueCalculationService derives monthly revenue reports from raw bank
// transactions, one company at a time.
type revenueCalculationService struct {
	BaseService
	companyRepo portsrepo.CompanyReader
	revenueRepo portsrepo.RevenueReportRepository
	bankTxnRepo portsrepo.BankTransactionRepository
	fetcher     portssvc.BankTransactionFetcher
	fetchPolicy retry.Policy
}

// NewRevenueCalculationService creates a new revenue calculation engine.
func NewRevenueCalculationService(
	companyRepo portsrepo.CompanyReader,
	revenueRepo portsrepo.RevenueReportRepository,
	bankTxnRepo portsrepo.BankTransactionRepository,
	fetcher portssvc.BankTransactionFetcher,
) portssvc.RevenueCalculationSvc {
	return &revenueCalculationService{
		companyRepo: companyRepo,
		revenueRepo: revenueRepo,
		bankTxnRepo: bankTxnRepo,
		fetcher:     fetcher,
		fetchPolicy: retry.BankFetchPolicy,
	}
}

var _ portssvc.RevenueCalculationSvc = (*revenueCalculationService)(nil)

// Calculate runs the full monthly calculation over every eligible company.
// Failing to list the companies aborts the run; everything below that is a
// per-company outcome that never blocks siblings.
func (s *revenueCalculationService) Calculate(ctx context.Context, period domain.Period) (*dto.RevenueRunResult, error) {
	companies, err := s.companyRepo.ListEligibleCompanies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list eligible companies", slog.String("period", period.String()))
		return nil, err
	}

	result := &dto.RevenueRunResult{Period: period.String()}
	for _, company := range companies {
		result.Add(s.calculateCompany(ctx, company, period))
	}

	s.LogInfo(ctx, "Revenue calculation run finished",
		slog.String("period", period.String()),
		slog.Int("processed", result.Processed),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// CalculateForCompany re-runs a single company for correction or testing.
func (s *revenueCalculationService) CalculateForCompany(ctx context.Context, companyID string, period domain.Period) (*dto.CompanyRunResult, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(404, "Company not found", err)
		}
		return nil, err
	}

	result := s.calculateCompany(ctx, *company, period)
	if result.Status == dto.CompanyRunFailed {
		return &result, apperrors.NewAppError(500, result.Reason, nil)
	}
	return &result, nil
}

// GetReport retrieves the stored report for a company-month.
func (s *revenueCalculationService) GetReport(ctx context.Context, companyID string, period domain.Period) (*domain.RevenueReport, error) {
	report, err := s.revenueRepo.FindReportByCompanyPeriod(ctx, companyID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(404, "Revenue report not found", err)
		}
		return nil, err
	}
	return report, nil
}

// calculateCompany produces exactly one outcome for one company. Skips are
// successes with a note; only unexpected errors yield a FAILED outcome.
func (s *revenueCalculationService) calculateCompany(ctx context.Context, company domain.Company, period domain.Period) dto.CompanyRunResult {
	result := dto.CompanyRunResult{CompanyID: company.CompanyID, CompanyName: company.Name}
	logger := s.GetLogger(ctx).With(
		slog.String("company_id", company.CompanyID),
		slog.String("period", period.String()),
	)

	// Fast-path idempotency check; the unique constraint at insert time is the
	// authoritative guard.
	exists, err := s.revenueRepo.RevenueReportExists(ctx, company.CompanyID, period)
	if err != nil {
		logger.Error("Failed idempotency pre-check", slog.String("error", err.Error()))
		result.Status = dto.CompanyRunFailed
		result.Reason = "idempotency pre-check failed: " + err.Error()
		return result
	}
	if exists {
		result.Status = dto.CompanyRunSkipped
		result.Reason = "revenue report already exists"
		return result
	}

	if !company.HasBankConnection() {
		result.Status = dto.CompanyRunSkipped
		result.Reason = "company has no bank connection"
		return result
	}

	from, to := period.Bounds()
	var fetched []domain.BankTransaction
	retryRes, err := retry.Do(ctx, s.fetchPolicy, func(ctx context.Context) error {
		var fetchErr error
		fetched, fetchErr = s.fetcher.FetchTransactions(ctx, *company.BankAccountID, from, to)
		return fetchErr
	})
	result.FetchAttempts = retryRes.Attempts
	if err != nil {
		logger.Error("Bank transaction fetch failed",
			slog.Int("attempts", retryRes.Attempts),
			slog.String("error", err.Error()),
		)
		result.Status = dto.CompanyRunFailed
		result.Reason = "bank transaction fetch failed: " + err.Error()
		return result
	}

	now := time.Now().UTC()
	for i := range fetched {
		fetched[i].CompanyID = company.CompanyID
		if fetched[i].TransactionID == "" {
			fetched[i].TransactionID = newID()
		}
		if fetched[i].CreatedAt.IsZero() {
			fetched[i].CreatedAt = now
			fetched[i].LastUpdatedAt = now
		}
	}
	inserted, err := s.bankTxnRepo.SaveBankTransactions(ctx, fetched)
	if err != nil {
		logger.Error("Failed to persist bank transactions", slog.String("error", err.Error()))
		result.Status = dto.CompanyRunFailed
		result.Reason = "failed to persist bank transactions: " + err.Error()
		return result
	}
	logger.Debug("Bank transactions persisted",
		slog.Int("fetched", len(fetched)),
		slog.Int("inserted", inserted),
	)

	// Aggregate from storage rather than the fetch response so partially
	// persisted earlier runs are still counted.
	txns, err := s.bankTxnRepo.ListBankTransactions(ctx, company.CompanyID, period)
	if err != nil {
		logger.Error("Failed to load bank transactions", slog.String("error", err.Error()))
		result.Status = dto.CompanyRunFailed
		result.Reason = "failed to load bank transactions: " + err.Error()
		return result
	}

	report := buildRevenueReport(company, period, txns, now)
	if err := s.revenueRepo.CreateRevenueReport(ctx, report); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent run; the report exists, which is
			// exactly what this run wanted.
			result.Status = dto.CompanyRunSkipped
			result.Reason = "revenue report already exists"
			return result
		}
		logger.Error("Failed to create revenue report", slog.String("error", err.Error()))
		result.Status = dto.CompanyRunFailed
		result.Reason = "failed to create revenue report: " + err.Error()
		return result
	}

	logger.Info("Revenue report created",
		slog.String("report_id", report.ReportID),
		slog.String("net_revenue", report.NetRevenue.String()),
		slog.String("dividend_pool", report.DividendPool.String()),
	)
	result.Status = dto.CompanyRunSucceeded
	result.ReportID = report.ReportID
	net := report.NetRevenue
	result.NetRevenue = &net
	return result
}

// buildRevenueReport aggregates a month of transactions into a report.
// Sums are rounded to cents before the derived splits are taken.
func buildRevenueReport(company domain.Company, period domain.Period, txns []domain.BankTransaction, now time.Time) domain.RevenueReport {
	totalCredits := decimal.Zero
	totalDebits := decimal.Zero
	for _, txn := range txns {
		switch txn.Type {
		case domain.BankCredit:
			totalCredits = totalCredits.Add(txn.Amount)
		case domain.BankDebit:
			totalDebits = totalDebits.Add(txn.Amount)
		}
	}
	totalCredits = money.RoundAmount(totalCredits)
	totalDebits = money.RoundAmount(totalDebits)

	netRevenue := totalCredits.Sub(totalDebits)
	platformFee := money.RoundAmount(netRevenue.Mul(platformFeeRate))
	netProfit := netRevenue.Sub(platformFee)
	dividendPool := money.RoundAmount(netProfit.Mul(dividendPoolRate))
	// The reinvestment share is the remainder so fee + pool + reinvestment
	// always reconciles exactly against net revenue.
	reinvestment := netProfit.Sub(dividendPool)

	return domain.RevenueReport{
		ReportID:           newID(),
		CompanyID:          company.CompanyID,
		Month:              period.Month,
		Year:               period.Year,
		TotalCredits:       totalCredits,
		TotalDebits:        totalDebits,
		NetRevenue:         netRevenue,
		PlatformFee:        platformFee,
		NetProfit:          netProfit,
		DividendPool:       dividendPool,
		Reinvestment:       reinvestment,
		VerificationStatus: domain.ReportAutoVerified,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
}
