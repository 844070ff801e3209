package services_test

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CompanyReader ---
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListEligibleCompanies(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

// --- Mock RevenueReportRepository ---
type MockRevenueReportRepository struct {
	mock.Mock
}

func (m *MockRevenueReportRepository) CreateRevenueReport(ctx context.Context, report domain.RevenueReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRevenueReportRepository) RevenueReportExists(ctx context.Context, companyID string, period domain.Period) (bool, error) {
	args := m.Called(ctx, companyID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevenueReportRepository) FindReportByID(ctx context.Context, reportID string) (*domain.RevenueReport, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueReport), args.Error(1)
}

func (m *MockRevenueReportRepository) FindReportByCompanyPeriod(ctx context.Context, companyID string, period domain.Period) (*domain.RevenueReport, error) {
	args := m.Called(ctx, companyID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueReport), args.Error(1)
}

func (m *MockRevenueReportRepository) ListDistributableReports(ctx context.Context, period domain.Period) ([]domain.RevenueReport, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RevenueReport), args.Error(1)
}

// --- Mock BankTransactionRepository ---
type MockBankTransactionRepository struct {
	mock.Mock
}

func (m *MockBankTransactionRepository) SaveBankTransactions(ctx context.Context, txns []domain.BankTransaction) (int, error) {
	args := m.Called(ctx, txns)
	return args.Int(0), args.Error(1)
}

func (m *MockBankTransactionRepository) ListBankTransactions(ctx context.Context, companyID string, period domain.Period) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, companyID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

// --- Mock BankTransactionFetcher ---
type MockBankTransactionFetcher struct {
	mock.Mock
}

func (m *MockBankTransactionFetcher) FetchTransactions(ctx context.Context, bankAccountID string, from, to time.Time) ([]domain.BankTransaction, error) {
	args := m.Called(ctx, bankAccountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankTransaction), args.Error(1)
}

// --- Mock DividendRepositoryFacade ---
type MockDividendRepository struct {
	mock.Mock
}

func (m *MockDividendRepository) FindDividendByID(ctx context.Context, dividendID string) (*domain.Dividend, error) {
	args := m.Called(ctx, dividendID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dividend), args.Error(1)
}

func (m *MockDividendRepository) FindDividendByReportID(ctx context.Context, revenueReportID string) (*domain.Dividend, error) {
	args := m.Called(ctx, revenueReportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dividend), args.Error(1)
}

func (m *MockDividendRepository) DividendExistsForReport(ctx context.Context, revenueReportID string) (bool, error) {
	args := m.Called(ctx, revenueReportID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDividendRepository) ListPayoutsByDividend(ctx context.Context, dividendID string) ([]domain.DividendPayout, error) {
	args := m.Called(ctx, dividendID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DividendPayout), args.Error(1)
}

func (m *MockDividendRepository) CreateDividendInTx(ctx context.Context, tx pgx.Tx, dividend domain.Dividend) error {
	args := m.Called(ctx, tx, dividend)
	return args.Error(0)
}

func (m *MockDividendRepository) CreatePayoutInTx(ctx context.Context, tx pgx.Tx, payout domain.DividendPayout) error {
	args := m.Called(ctx, tx, payout)
	return args.Error(0)
}

func (m *MockDividendRepository) UpdateDividendStatusInTx(ctx context.Context, tx pgx.Tx, dividendID string, status domain.DividendStatus, updatedAt time.Time) error {
	args := m.Called(ctx, tx, dividendID, status, updatedAt)
	return args.Error(0)
}

// --- Mock HoldingRepository ---
type MockHoldingRepository struct {
	mock.Mock
}

func (m *MockHoldingRepository) ListActiveHoldingsByCompany(ctx context.Context, companyID string) ([]domain.StockHolding, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockHolding), args.Error(1)
}

func (m *MockHoldingRepository) FindHoldingInTx(ctx context.Context, tx pgx.Tx, userID, companyID string) (*domain.StockHolding, error) {
	args := m.Called(ctx, tx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockHolding), args.Error(1)
}

func (m *MockHoldingRepository) IncrementDividendsEarnedInTx(ctx context.Context, tx pgx.Tx, holdingID string, amount decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, tx, holdingID, amount, updatedAt)
	return args.Error(0)
}

func (m *MockHoldingRepository) AdjustSharesInTx(ctx context.Context, tx pgx.Tx, userID, companyID string, delta decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, tx, userID, companyID, delta, updatedAt)
	return args.Error(0)
}

// --- Mock WalletRepository ---
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreditWalletInTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, tx, userID, amount, updatedAt)
	return args.Error(0)
}

func (m *MockWalletRepository) DebitWalletInTx(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, tx, userID, amount, updatedAt)
	return args.Error(0)
}

// --- Fake TransactionManager ---
// Runs the unit of work directly with a nil tx; the mocked repositories ignore
// the tx handle. Records how many transactions were begun.
type FakeTxManager struct {
	Began int
}

func (f *FakeTxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.Began++
	return fn(nil)
}

// --- Mock QueueSvc ---
type MockQueueSvc struct {
	mock.Mock
}

func (m *MockQueueSvc) Enqueue(ctx context.Context, payload domain.JobPayload, opts portssvc.EnqueueOptions) (string, error) {
	args := m.Called(ctx, payload, opts)
	return args.String(0), args.Error(1)
}

func (m *MockQueueSvc) EnqueueBulkInTx(ctx context.Context, tx pgx.Tx, payloads []domain.JobPayload, opts portssvc.EnqueueOptions) ([]string, error) {
	args := m.Called(ctx, tx, payloads, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQueueSvc) Pause()  { m.Called() }
func (m *MockQueueSvc) Resume() { m.Called() }

func (m *MockQueueSvc) Metrics(ctx context.Context) (*dto.QueueMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QueueMetrics), args.Error(1)
}

func (m *MockQueueSvc) ListFailed(ctx context.Context, limit int) ([]domain.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockQueueSvc) RetryFailed(ctx context.Context, jobIDs []string) (int, error) {
	args := m.Called(ctx, jobIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockQueueSvc) Progress(ctx context.Context, distributionID string) (*domain.DistributionProgress, error) {
	args := m.Called(ctx, distributionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionProgress), args.Error(1)
}

// --- Mock DividendNotifier ---
type MockDividendNotifier struct {
	mock.Mock
}

func (m *MockDividendNotifier) SendDividendNotification(ctx context.Context, userID, companyName string, amount, sharesOwned decimal.Decimal) error {
	args := m.Called(ctx, userID, companyName, amount, sharesOwned)
	return args.Error(0)
}
