package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/core/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type RevenueServiceTestSuite struct {
	suite.Suite
	mockCompanyRepo *MockCompanyRepository
	mockRevenueRepo *MockRevenueReportRepository
	mockBankTxnRepo *MockBankTransactionRepository
	mockFetcher     *MockBankTransactionFetcher
	service         portssvc.RevenueCalculationSvc
	period          domain.Period
}

func (suite *RevenueServiceTestSuite) SetupTest() {
	suite.mockCompanyRepo = new(MockCompanyRepository)
	suite.mockRevenueRepo = new(MockRevenueReportRepository)
	suite.mockBankTxnRepo = new(MockBankTransactionRepository)
	suite.mockFetcher = new(MockBankTransactionFetcher)
	suite.service = services.NewRevenueCalculationService(
		suite.mockCompanyRepo,
		suite.mockRevenueRepo,
		suite.mockBankTxnRepo,
		suite.mockFetcher,
	)
	suite.period = domain.Period{Month: time.January, Year: 2026}
}

func (suite *RevenueServiceTestSuite) newCompany() domain.Company {
	bankAccount := "acct-" + uuid.NewString()
	return domain.Company{
		CompanyID:          uuid.NewString(),
		Name:               "Acme Industries",
		TotalShares:        mustDecimal("10000"),
		BankAccountID:      &bankAccount,
		VerificationStatus: domain.CompanyApproved,
		ListingStatus:      domain.ListingActive,
	}
}

func (suite *RevenueServiceTestSuite) TestCalculateForCompany_Derivations() {
	ctx := context.Background()
	company := suite.newCompany()

	// 50000 credits, 20000 debits:
	// net revenue 30000, fee 1500, net profit 28500, pool 17100, reinvestment 11400
	txns := []domain.BankTransaction{
		{BankReference: "ref-1", Type: domain.BankCredit, Amount: mustDecimal("50000")},
		{BankReference: "ref-2", Type: domain.BankDebit, Amount: mustDecimal("20000")},
	}

	suite.mockCompanyRepo.On("FindCompanyByID", ctx, company.CompanyID).Return(&company, nil).Once()
	suite.mockRevenueRepo.On("RevenueReportExists", ctx, company.CompanyID, suite.period).Return(false, nil).Once()
	suite.mockFetcher.On("FetchTransactions", ctx, *company.BankAccountID, mock.Anything, mock.Anything).Return(txns, nil).Once()
	suite.mockBankTxnRepo.On("SaveBankTransactions", ctx, mock.Anything).Return(2, nil).Once()
	suite.mockBankTxnRepo.On("ListBankTransactions", ctx, company.CompanyID, suite.period).Return(txns, nil).Once()

	var created domain.RevenueReport
	suite.mockRevenueRepo.On("CreateRevenueReport", ctx, mock.MatchedBy(func(r domain.RevenueReport) bool {
		created = r
		return r.CompanyID == company.CompanyID
	})).Return(nil).Once()

	result, err := suite.service.CalculateForCompany(ctx, company.CompanyID, suite.period)

	suite.Require().NoError(err)
	suite.Equal(dto.CompanyRunSucceeded, result.Status)
	suite.True(created.TotalCredits.Equal(mustDecimal("50000")))
	suite.True(created.TotalDebits.Equal(mustDecimal("20000")))
	suite.True(created.NetRevenue.Equal(mustDecimal("30000")))
	suite.True(created.PlatformFee.Equal(mustDecimal("1500")))
	suite.True(created.NetProfit.Equal(mustDecimal("28500")))
	suite.True(created.DividendPool.Equal(mustDecimal("17100")))
	suite.True(created.Reinvestment.Equal(mustDecimal("11400")))
	// fee + pool + reinvestment reconciles exactly against net revenue
	suite.True(created.PlatformFee.Add(created.DividendPool).Add(created.Reinvestment).Equal(created.NetRevenue))
	suite.Equal(domain.ReportAutoVerified, created.VerificationStatus)

	suite.mockRevenueRepo.AssertExpectations(suite.T())
	suite.mockFetcher.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestCalculateForCompany_NotFound() {
	ctx := context.Background()
	companyID := uuid.NewString()

	suite.mockCompanyRepo.On("FindCompanyByID", ctx, companyID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CalculateForCompany(ctx, companyID, suite.period)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *RevenueServiceTestSuite) TestCalculate_SkipsExistingReports() {
	ctx := context.Background()
	company := suite.newCompany()

	suite.mockCompanyRepo.On("ListEligibleCompanies", ctx).Return([]domain.Company{company}, nil).Once()
	suite.mockRevenueRepo.On("RevenueReportExists", ctx, company.CompanyID, suite.period).Return(true, nil).Once()

	result, err := suite.service.Calculate(ctx, suite.period)

	suite.Require().NoError(err)
	suite.Equal(1, result.Processed)
	suite.Equal(1, result.Skipped)
	suite.Zero(result.Failed)
	suite.Equal(dto.CompanyRunSkipped, result.Companies[0].Status)
	// No fetch happens for a skipped company.
	suite.mockFetcher.AssertNotCalled(suite.T(), "FetchTransactions")
}

func (suite *RevenueServiceTestSuite) TestCalculate_SkipsCompaniesWithoutBank() {
	ctx := context.Background()
	company := suite.newCompany()
	company.BankAccountID = nil

	suite.mockCompanyRepo.On("ListEligibleCompanies", ctx).Return([]domain.Company{company}, nil).Once()
	suite.mockRevenueRepo.On("RevenueReportExists", ctx, company.CompanyID, suite.period).Return(false, nil).Once()

	result, err := suite.service.Calculate(ctx, suite.period)

	suite.Require().NoError(err)
	suite.Equal(1, result.Skipped)
	suite.Equal("company has no bank connection", result.Companies[0].Reason)
}

func (suite *RevenueServiceTestSuite) TestCalculate_DuplicateInsertTreatedAsSkip() {
	ctx := context.Background()
	company := suite.newCompany()

	suite.mockCompanyRepo.On("ListEligibleCompanies", ctx).Return([]domain.Company{company}, nil).Once()
	suite.mockRevenueRepo.On("RevenueReportExists", ctx, company.CompanyID, suite.period).Return(false, nil).Once()
	suite.mockFetcher.On("FetchTransactions", ctx, *company.BankAccountID, mock.Anything, mock.Anything).
		Return([]domain.BankTransaction{}, nil).Once()
	suite.mockBankTxnRepo.On("SaveBankTransactions", ctx, mock.Anything).Return(0, nil).Once()
	suite.mockBankTxnRepo.On("ListBankTransactions", ctx, company.CompanyID, suite.period).
		Return([]domain.BankTransaction{}, nil).Once()
	// A concurrent run won the insert race.
	suite.mockRevenueRepo.On("CreateRevenueReport", ctx, mock.Anything).
		Return(apperrors.NewAppError(409, "report exists", apperrors.ErrDuplicate)).Once()

	result, err := suite.service.Calculate(ctx, suite.period)

	suite.Require().NoError(err)
	suite.Equal(1, result.Skipped)
	suite.Zero(result.Failed)
}

func (suite *RevenueServiceTestSuite) TestCalculate_FetchFailureIsolatedPerCompany() {
	ctx := context.Background()
	failing := suite.newCompany()
	healthy := suite.newCompany()

	suite.mockCompanyRepo.On("ListEligibleCompanies", ctx).Return([]domain.Company{failing, healthy}, nil).Once()
	suite.mockRevenueRepo.On("RevenueReportExists", ctx, mock.Anything, suite.period).Return(false, nil).Twice()

	// Permanent failure for the first company; no retries expected.
	suite.mockFetcher.On("FetchTransactions", ctx, *failing.BankAccountID, mock.Anything, mock.Anything).
		Return(nil, apperrors.NewAppError(401, "bank API authentication failed", nil)).Once()

	suite.mockFetcher.On("FetchTransactions", ctx, *healthy.BankAccountID, mock.Anything, mock.Anything).
		Return([]domain.BankTransaction{}, nil).Once()
	suite.mockBankTxnRepo.On("SaveBankTransactions", ctx, mock.Anything).Return(0, nil).Once()
	suite.mockBankTxnRepo.On("ListBankTransactions", ctx, healthy.CompanyID, suite.period).
		Return([]domain.BankTransaction{}, nil).Once()
	suite.mockRevenueRepo.On("CreateRevenueReport", ctx, mock.Anything).Return(nil).Once()

	result, err := suite.service.Calculate(ctx, suite.period)

	suite.Require().NoError(err)
	suite.Equal(2, result.Processed)
	suite.Equal(1, result.Failed)
	suite.Equal(1, result.Succeeded)
	suite.Equal(1, result.Companies[0].FetchAttempts)
	suite.mockFetcher.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestCalculate_TransientFetchRetried() {
	ctx := context.Background()
	company := suite.newCompany()
	transient := apperrors.NewAppError(503, "bank API unreachable", apperrors.ErrTransient)

	suite.mockCompanyRepo.On("ListEligibleCompanies", ctx).Return([]domain.Company{company}, nil).Once()
	suite.mockRevenueRepo.On("RevenueReportExists", ctx, company.CompanyID, suite.period).Return(false, nil).Once()

	suite.mockFetcher.On("FetchTransactions", ctx, *company.BankAccountID, mock.Anything, mock.Anything).
		Return(nil, transient).Twice()
	suite.mockFetcher.On("FetchTransactions", ctx, *company.BankAccountID, mock.Anything, mock.Anything).
		Return([]domain.BankTransaction{}, nil).Once()

	suite.mockBankTxnRepo.On("SaveBankTransactions", ctx, mock.Anything).Return(0, nil).Once()
	suite.mockBankTxnRepo.On("ListBankTransactions", ctx, company.CompanyID, suite.period).
		Return([]domain.BankTransaction{}, nil).Once()
	suite.mockRevenueRepo.On("CreateRevenueReport", ctx, mock.Anything).Return(nil).Once()

	result, err := suite.service.Calculate(ctx, suite.period)

	suite.Require().NoError(err)
	suite.Equal(1, result.Succeeded)
	suite.Equal(3, result.Companies[0].FetchAttempts)
	suite.mockFetcher.AssertExpectations(suite.T())
}

func (suite *RevenueServiceTestSuite) TestGetReport() {
	ctx := context.Background()
	company := suite.newCompany()
	report := &domain.RevenueReport{
		ReportID:     uuid.NewString(),
		CompanyID:    company.CompanyID,
		Month:        suite.period.Month,
		Year:         suite.period.Year,
		NetRevenue:   mustDecimal("30000"),
		DividendPool: mustDecimal("17100"),
	}

	suite.mockRevenueRepo.On("FindReportByCompanyPeriod", ctx, company.CompanyID, suite.period).Return(report, nil).Once()

	got, err := suite.service.GetReport(ctx, company.CompanyID, suite.period)

	suite.Require().NoError(err)
	suite.Equal(report.ReportID, got.ReportID)
	suite.True(got.DividendPool.Equal(mustDecimal("17100")))
}

func (suite *RevenueServiceTestSuite) TestGetReport_NotFound() {
	ctx := context.Background()
	companyID := uuid.NewString()

	suite.mockRevenueRepo.On("FindReportByCompanyPeriod", ctx, companyID, suite.period).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetReport(ctx, companyID, suite.period)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestRevenueServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RevenueServiceTestSuite))
}
