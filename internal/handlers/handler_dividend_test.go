package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/handlers"
	"github.com/clearvest/payout_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RevenueCalculationSvc ---
type MockRevenueService struct {
	mock.Mock
}

func (m *MockRevenueService) Calculate(ctx context.Context, period domain.Period) (*dto.RevenueRunResult, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RevenueRunResult), args.Error(1)
}

func (m *MockRevenueService) CalculateForCompany(ctx context.Context, companyID string, period domain.Period) (*dto.CompanyRunResult, error) {
	args := m.Called(ctx, companyID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CompanyRunResult), args.Error(1)
}

func (m *MockRevenueService) GetReport(ctx context.Context, companyID string, period domain.Period) (*domain.RevenueReport, error) {
	args := m.Called(ctx, companyID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RevenueReport), args.Error(1)
}

var _ portssvc.RevenueCalculationSvc = (*MockRevenueService)(nil)

// --- Mock DividendDistributionSvc ---
type MockDividendService struct {
	mock.Mock
}

func (m *MockDividendService) Distribute(ctx context.Context, period domain.Period) (*dto.DistributionRunResult, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DistributionRunResult), args.Error(1)
}

func (m *MockDividendService) DistributeForReport(ctx context.Context, revenueReportID string) (*dto.ReportDistributionResult, error) {
	args := m.Called(ctx, revenueReportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReportDistributionResult), args.Error(1)
}

func (m *MockDividendService) PayShareholder(ctx context.Context, p domain.PayoutPayload) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockDividendService) FinalizeDistribution(ctx context.Context, dividendID string) error {
	args := m.Called(ctx, dividendID)
	return args.Error(0)
}

func (m *MockDividendService) GetReportDistribution(ctx context.Context, revenueReportID string) (*dto.DividendDetails, error) {
	args := m.Called(ctx, revenueReportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DividendDetails), args.Error(1)
}

var _ portssvc.DividendDistributionSvc = (*MockDividendService)(nil)

func testRouterConfig() *config.Config {
	return &config.Config{TriggerRateLimit: "1000-S"}
}

// --- Test Suite ---
type DividendHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockRevenueService  *MockRevenueService
	mockDividendService *MockDividendService
}

func (suite *DividendHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockRevenueService = new(MockRevenueService)
	suite.mockDividendService = new(MockDividendService)

	services := &portssvc.ServiceContainer{
		Revenue:  suite.mockRevenueService,
		Dividend: suite.mockDividendService,
		Queue:    new(MockQueueService),
	}
	handlers.RegisterRoutes(suite.router, testRouterConfig(), services)
}

func (suite *DividendHandlerTestSuite) TestDistributeForReport_Success() {
	reportID := uuid.NewString()
	expected := &dto.ReportDistributionResult{
		RevenueReportID: reportID,
		Status:          dto.ReportDistributed,
		ShareholderCnt:  12,
	}
	suite.mockDividendService.On("DistributeForReport", mock.Anything, reportID).Return(expected, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dividends/reports/"+reportID+"/distribute", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	var got dto.ReportDistributionResult
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Equal(dto.ReportDistributed, got.Status)
	suite.Equal(12, got.ShareholderCnt)
	suite.mockDividendService.AssertExpectations(suite.T())
}

func (suite *DividendHandlerTestSuite) TestDistributeForReport_NotFound() {
	reportID := uuid.NewString()
	suite.mockDividendService.On("DistributeForReport", mock.Anything, reportID).
		Return(nil, apperrors.NewAppError(404, "Revenue report not found", apperrors.ErrNotFound)).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dividends/reports/"+reportID+"/distribute", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Contains(rec.Body.String(), "Revenue report not found")
}

func (suite *DividendHandlerTestSuite) TestDistributeForReport_NotVerified() {
	reportID := uuid.NewString()
	suite.mockDividendService.On("DistributeForReport", mock.Anything, reportID).
		Return(nil, apperrors.NewAppError(422, "Revenue report not verified", apperrors.ErrValidation)).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dividends/reports/"+reportID+"/distribute", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusUnprocessableEntity, rec.Code)
	suite.Contains(rec.Body.String(), "Revenue report not verified")
}

func (suite *DividendHandlerTestSuite) TestDistribute_ExplicitPeriod() {
	expectedPeriod, err := domain.NewPeriod(1, 2026)
	suite.Require().NoError(err)
	suite.mockDividendService.On("Distribute", mock.Anything, expectedPeriod).
		Return(&dto.DistributionRunResult{Period: "2026-01", Succeeded: 2}, nil).Once()

	body := bytes.NewBufferString(`{"month": 1, "year": 2026}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dividends/distribute", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.mockDividendService.AssertExpectations(suite.T())
}

func (suite *DividendHandlerTestSuite) TestDistribute_EmptyBodyDefaultsToPreviousMonth() {
	suite.mockDividendService.On("Distribute", mock.Anything, mock.Anything).
		Return(&dto.DistributionRunResult{}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dividends/distribute", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.mockDividendService.AssertExpectations(suite.T())
}

func (suite *DividendHandlerTestSuite) TestDistribute_InvalidMonthRejected() {
	body := bytes.NewBufferString(`{"month": 13, "year": 2026}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dividends/distribute", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.mockDividendService.AssertNotCalled(suite.T(), "Distribute", mock.Anything, mock.Anything)
}

func (suite *DividendHandlerTestSuite) TestCalculateForCompany_NotFound() {
	companyID := uuid.NewString()
	suite.mockRevenueService.On("CalculateForCompany", mock.Anything, companyID, mock.Anything).
		Return(nil, apperrors.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/revenue/companies/"+companyID+"/calculate", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Contains(rec.Body.String(), "Company not found")
}

func (suite *DividendHandlerTestSuite) TestCalculate_Success() {
	suite.mockRevenueService.On("Calculate", mock.Anything, mock.Anything).
		Return(&dto.RevenueRunResult{Period: "2026-07", Succeeded: 5}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/revenue/calculate", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	var got dto.RevenueRunResult
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Equal(5, got.Succeeded)
}

func (suite *DividendHandlerTestSuite) TestGetReportDistribution() {
	reportID := uuid.NewString()
	details := &dto.DividendDetails{
		Dividend: domain.Dividend{DividendID: uuid.NewString(), RevenueReportID: reportID, Status: domain.DividendCompleted},
		Payouts:  []domain.DividendPayout{{PayoutID: uuid.NewString()}},
	}
	suite.mockDividendService.On("GetReportDistribution", mock.Anything, reportID).Return(details, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dividends/reports/"+reportID, nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	var got dto.DividendDetails
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Equal(reportID, got.Dividend.RevenueReportID)
	suite.Len(got.Payouts, 1)
}

func (suite *DividendHandlerTestSuite) TestGetReportDistribution_NotFound() {
	reportID := uuid.NewString()
	suite.mockDividendService.On("GetReportDistribution", mock.Anything, reportID).
		Return(nil, apperrors.NewAppError(404, "No dividend recorded for report", apperrors.ErrNotFound)).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dividends/reports/"+reportID, nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *DividendHandlerTestSuite) TestGetReport() {
	companyID := uuid.NewString()
	expectedPeriod, err := domain.NewPeriod(7, 2026)
	suite.Require().NoError(err)
	suite.mockRevenueService.On("GetReport", mock.Anything, companyID, expectedPeriod).
		Return(&domain.RevenueReport{ReportID: uuid.NewString(), CompanyID: companyID}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/revenue/companies/"+companyID+"/report?month=7&year=2026", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.mockRevenueService.AssertExpectations(suite.T())
}

func (suite *DividendHandlerTestSuite) TestGetReport_MissingPeriod() {
	companyID := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/revenue/companies/"+companyID+"/report", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.mockRevenueService.AssertNotCalled(suite.T(), "GetReport", mock.Anything, mock.Anything, mock.Anything)
}

func TestDividendHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(DividendHandlerTestSuite))
}
