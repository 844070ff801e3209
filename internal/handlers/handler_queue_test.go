package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearvest/payout_engine/internal/core/domain"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/handlers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock QueueSvc ---
type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) Enqueue(ctx context.Context, payload domain.JobPayload, opts portssvc.EnqueueOptions) (string, error) {
	args := m.Called(ctx, payload, opts)
	return args.String(0), args.Error(1)
}

func (m *MockQueueService) EnqueueBulkInTx(ctx context.Context, tx pgx.Tx, payloads []domain.JobPayload, opts portssvc.EnqueueOptions) ([]string, error) {
	args := m.Called(ctx, tx, payloads, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQueueService) Pause()  { m.Called() }
func (m *MockQueueService) Resume() { m.Called() }

func (m *MockQueueService) Metrics(ctx context.Context) (*dto.QueueMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.QueueMetrics), args.Error(1)
}

func (m *MockQueueService) ListFailed(ctx context.Context, limit int) ([]domain.Job, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockQueueService) RetryFailed(ctx context.Context, jobIDs []string) (int, error) {
	args := m.Called(ctx, jobIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockQueueService) Progress(ctx context.Context, distributionID string) (*domain.DistributionProgress, error) {
	args := m.Called(ctx, distributionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DistributionProgress), args.Error(1)
}

var _ portssvc.QueueSvc = (*MockQueueService)(nil)

// --- Test Suite ---
type QueueHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockQueueService *MockQueueService
}

func (suite *QueueHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockQueueService = new(MockQueueService)
	services := &portssvc.ServiceContainer{
		Revenue:  new(MockRevenueService),
		Dividend: new(MockDividendService),
		Queue:    suite.mockQueueService,
	}
	handlers.RegisterRoutes(suite.router, testRouterConfig(), services)
}

func (suite *QueueHandlerTestSuite) TestMetrics() {
	suite.mockQueueService.On("Metrics", mock.Anything).Return(&dto.QueueMetrics{
		Paused: false,
		Counts: map[string]map[string]int{"PAYOUT": {"WAITING": 3}},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/metrics", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	var got dto.QueueMetrics
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Equal(3, got.Counts["PAYOUT"]["WAITING"])
}

func (suite *QueueHandlerTestSuite) TestListFailed_CustomLimit() {
	suite.mockQueueService.On("ListFailed", mock.Anything, 5).Return([]domain.Job{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/failed?limit=5", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.mockQueueService.AssertExpectations(suite.T())
}

func (suite *QueueHandlerTestSuite) TestListFailed_InvalidLimit() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/failed?limit=abc", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.mockQueueService.AssertNotCalled(suite.T(), "ListFailed", mock.Anything, mock.Anything)
}

func (suite *QueueHandlerTestSuite) TestRetryFailed_SpecificJobs() {
	suite.mockQueueService.On("RetryFailed", mock.Anything, []string{"job-1", "job-2"}).Return(2, nil).Once()

	body := bytes.NewBufferString(`{"jobIDs": ["job-1", "job-2"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/failed/retry", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	var got dto.RetryFailedResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Equal(2, got.Retried)
}

func (suite *QueueHandlerTestSuite) TestRetryFailed_EmptyBodyRetriesAll() {
	suite.mockQueueService.On("RetryFailed", mock.Anything, []string(nil)).Return(9, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/failed/retry", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.mockQueueService.AssertExpectations(suite.T())
}

func (suite *QueueHandlerTestSuite) TestPauseAndResume() {
	suite.mockQueueService.On("Pause").Return().Once()
	suite.mockQueueService.On("Resume").Return().Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/pause", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"paused":true`)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/queue/resume", nil)
	rec = httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"paused":false`)

	suite.mockQueueService.AssertExpectations(suite.T())
}

func (suite *QueueHandlerTestSuite) TestDistributionProgress() {
	distributionID := uuid.NewString()
	suite.mockQueueService.On("Progress", mock.Anything, distributionID).
		Return(&domain.DistributionProgress{DistributionID: distributionID, Completed: 7, Failed: 1, Pending: 2}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/distributions/"+distributionID+"/progress", nil)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	var got domain.DistributionProgress
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Equal(7, got.Completed)
}

func TestQueueHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(QueueHandlerTestSuite))
}
