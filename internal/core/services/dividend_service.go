package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/clearvest/payout_engine/internal/utils/batch"
	"github.com/clearvest/payout_engine/internal/utils/money"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// pendingNotification is queued up inside the payout transaction and delivered
// only after the transaction commits.
type pendingNotification struct {
	userID      string
	companyName string
	amount      decimal.Decimal
	shares      decimal.Decimal
}

// dividendDistributionService pays revenue report pools out to shareholders.
type dividendDistributionService struct {
	BaseService
	revenueRepo  portsrepo.RevenueReportRepository
	dividendRepo portsrepo.DividendRepositoryFacade
	holdingRepo  portsrepo.HoldingRepository
	walletRepo   portsrepo.WalletRepository
	companyRepo  portsrepo.CompanyReader
	txManager    portsrepo.TransactionManager
	notifier     portssvc.DividendNotifier
	queue        portssvc.QueueSvc

	batchSize          int
	decomposeThreshold int
}

// NewDividendDistributionService creates a new dividend distribution engine.
// queue may be nil, in which case every distribution runs inline.
func NewDividendDistributionService(
	repos *portsrepo.RepositoryProvider,
	notifier portssvc.DividendNotifier,
	queue portssvc.QueueSvc,
	batchSize int,
	decomposeThreshold int,
) portssvc.DividendDistributionSvc {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &dividendDistributionService{
		revenueRepo:        repos.RevenueRepo,
		dividendRepo:       repos.DividendRepo,
		holdingRepo:        repos.HoldingRepo,
		walletRepo:         repos.WalletRepo,
		companyRepo:        repos.CompanyRepo,
		txManager:          repos.TxManager,
		notifier:           notifier,
		queue:              queue,
		batchSize:          batchSize,
		decomposeThreshold: decomposeThreshold,
	}
}

var _ portssvc.DividendDistributionSvc = (*dividendDistributionService)(nil)

// Distribute runs the full monthly distribution over every distributable
// report of the period.
func (s *dividendDistributionService) Distribute(ctx context.Context, period domain.Period) (*dto.DistributionRunResult, error) {
	reports, err := s.revenueRepo.ListDistributableReports(ctx, period)
	if err != nil {
		s.LogError(ctx, err, "Failed to list distributable reports", slog.String("period", period.String()))
		return nil, err
	}

	result := &dto.DistributionRunResult{Period: period.String()}
	for _, report := range reports {
		result.Add(s.distributeReport(ctx, report))
	}

	s.LogInfo(ctx, "Dividend distribution run finished",
		slog.String("period", period.String()),
		slog.Int("processed", result.Processed),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// DistributeForReport distributes one report's pool. Manual path.
func (s *dividendDistributionService) DistributeForReport(ctx context.Context, revenueReportID string) (*dto.ReportDistributionResult, error) {
	report, err := s.revenueRepo.FindReportByID(ctx, revenueReportID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(404, "Revenue report not found", err)
		}
		return nil, err
	}
	if !report.Distributable() {
		if report.DividendPool.IsPositive() {
			return nil, apperrors.NewAppError(422, "Revenue report not verified", apperrors.ErrValidation)
		}
		return nil, apperrors.NewAppError(422, "Revenue report has no dividend pool", apperrors.ErrValidation)
	}

	result := s.distributeReport(ctx, *report)
	if result.Status == dto.ReportFailed {
		return &result, apperrors.NewAppError(500, result.Reason, nil)
	}
	return &result, nil
}

// distributeReport produces exactly one outcome for one report.
func (s *dividendDistributionService) distributeReport(ctx context.Context, report domain.RevenueReport) dto.ReportDistributionResult {
	result := dto.ReportDistributionResult{
		RevenueReportID: report.ReportID,
		CompanyID:       report.CompanyID,
		TotalPaid:       decimal.Zero,
	}
	logger := s.GetLogger(ctx).With(
		slog.String("report_id", report.ReportID),
		slog.String("company_id", report.CompanyID),
	)

	exists, err := s.dividendRepo.DividendExistsForReport(ctx, report.ReportID)
	if err != nil {
		result.Status = dto.ReportFailed
		result.Reason = "idempotency pre-check failed: " + err.Error()
		return result
	}
	if exists {
		result.Status = dto.ReportSkipped
		result.Reason = "dividend already distributed"
		return result
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, report.CompanyID)
	if err != nil {
		result.Status = dto.ReportFailed
		result.Reason = "failed to load company: " + err.Error()
		return result
	}

	amountPerShare := money.PerShare(report.DividendPool, company.TotalShares)
	result.AmountPerShare = amountPerShare

	// A pool too small to yield even the minimum payout per share still gets a
	// Dividend row, permanently arming the idempotency guard for this report.
	if amountPerShare.LessThan(money.MinPayout) {
		dividendID, err := s.createEmptyDividend(ctx, *company, report, amountPerShare, "amount per share below minimum payout")
		if err != nil {
			result.Status = dto.ReportFailed
			result.Reason = err.Error()
			return result
		}
		result.DividendID = dividendID
		result.Status = dto.ReportDistributed
		result.Reason = "amount per share below minimum payout"
		return result
	}

	holdings, err := s.holdingRepo.ListActiveHoldingsByCompany(ctx, report.CompanyID)
	if err != nil {
		result.Status = dto.ReportFailed
		result.Reason = "failed to load holdings: " + err.Error()
		return result
	}

	// Zero shareholders is a success: the Dividend row exists, nothing is owed.
	if len(holdings) == 0 {
		dividendID, err := s.createEmptyDividend(ctx, *company, report, amountPerShare, "no shareholders")
		if err != nil {
			result.Status = dto.ReportFailed
			result.Reason = err.Error()
			return result
		}
		result.DividendID = dividendID
		result.Status = dto.ReportDistributed
		result.Reason = "no shareholders"
		return result
	}

	if s.queue != nil && len(holdings) > s.decomposeThreshold {
		return s.enqueueDistribution(ctx, *company, report, amountPerShare, holdings)
	}

	return s.distributeInline(ctx, logger, *company, report, amountPerShare, holdings)
}

// distributeInline runs the whole distribution in one atomic transaction:
// dividend row, then payout + wallet credit + holding increment per
// shareholder in fixed-size sequential batches, then the COMPLETED flip.
// A crash anywhere rolls the whole report back.
func (s *dividendDistributionService) distributeInline(
	ctx context.Context,
	logger *slog.Logger,
	company domain.Company,
	report domain.RevenueReport,
	amountPerShare decimal.Decimal,
	holdings []domain.StockHolding,
) dto.ReportDistributionResult {
	result := dto.ReportDistributionResult{
		RevenueReportID: report.ReportID,
		CompanyID:       report.CompanyID,
		AmountPerShare:  amountPerShare,
		TotalPaid:       decimal.Zero,
	}
	now := time.Now().UTC()
	dividend := s.newDividend(company, report, amountPerShare, now)

	var notifications []pendingNotification
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.dividendRepo.CreateDividendInTx(ctx, tx, dividend); err != nil {
			return err
		}

		_, err := batch.Process(ctx, holdings, s.batchSize, func(ctx context.Context, chunk []domain.StockHolding) ([]struct{}, error) {
			for _, holding := range chunk {
				payout := money.Payout(holding.SharesOwned, amountPerShare)
				if !money.MeetsMinimum(payout) {
					continue
				}
				if err := s.payHoldingInTx(ctx, tx, dividend.DividendID, holding, payout, now); err != nil {
					return nil, fmt.Errorf("payout for user %s: %w", holding.UserID, err)
				}
				result.ShareholderCnt++
				result.TotalPaid = result.TotalPaid.Add(payout)
				notifications = append(notifications, pendingNotification{
					userID:      holding.UserID,
					companyName: company.Name,
					amount:      payout,
					shares:      holding.SharesOwned,
				})
			}
			return nil, nil
		})
		if err != nil {
			return err
		}

		return s.dividendRepo.UpdateDividendStatusInTx(ctx, tx, dividend.DividendID, domain.DividendCompleted, now)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race with a concurrent distribution of the same report.
			result.Status = dto.ReportSkipped
			result.Reason = "dividend already distributed"
			return result
		}
		logger.Error("Dividend distribution rolled back", slog.String("error", err.Error()))
		result.Status = dto.ReportFailed
		result.Reason = "distribution failed: " + err.Error()
		return result
	}

	logger.Info("Dividend distributed",
		slog.String("dividend_id", dividend.DividendID),
		slog.Int("shareholders", result.ShareholderCnt),
		slog.String("total_paid", result.TotalPaid.String()),
	)

	// Notifications happen strictly after commit; failures are logged per user
	// and never touch financial state.
	s.sendNotifications(ctx, notifications)

	result.DividendID = dividend.DividendID
	result.Status = dto.ReportDistributed
	return result
}

// enqueueDistribution creates the dividend row and hands each qualifying
// shareholder to the queue as an idempotent unit payout job, all inside one
// transaction: a failed enqueue rolls the dividend back too, so a retry of the
// report starts clean instead of hitting the idempotency guard with no jobs in
// flight. Crash recovery and throughput come from the queue's retry and
// concurrency machinery.
func (s *dividendDistributionService) enqueueDistribution(
	ctx context.Context,
	company domain.Company,
	report domain.RevenueReport,
	amountPerShare decimal.Decimal,
	holdings []domain.StockHolding,
) dto.ReportDistributionResult {
	result := dto.ReportDistributionResult{
		RevenueReportID: report.ReportID,
		CompanyID:       report.CompanyID,
		AmountPerShare:  amountPerShare,
		TotalPaid:       decimal.Zero,
	}
	now := time.Now().UTC()
	dividend := s.newDividend(company, report, amountPerShare, now)

	var payloads []domain.JobPayload
	for _, holding := range holdings {
		payout := money.Payout(holding.SharesOwned, amountPerShare)
		if !money.MeetsMinimum(payout) {
			continue
		}
		payloads = append(payloads, domain.PayoutPayload{
			DistributionID: dividend.DividendID,
			DividendID:     dividend.DividendID,
			HoldingID:      holding.HoldingID,
			UserID:         holding.UserID,
			CompanyName:    company.Name,
			SharesOwned:    holding.SharesOwned,
			Amount:         payout,
		})
		result.ShareholderCnt++
		result.TotalPaid = result.TotalPaid.Add(payout)
	}

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.dividendRepo.CreateDividendInTx(ctx, tx, dividend); err != nil {
			return err
		}
		if len(payloads) == 0 {
			// Everyone fell below the threshold; nothing to drain.
			return s.dividendRepo.UpdateDividendStatusInTx(ctx, tx, dividend.DividendID, domain.DividendCompleted, now)
		}
		_, err := s.queue.EnqueueBulkInTx(ctx, tx, payloads, portssvc.EnqueueOptions{DistributionID: dividend.DividendID})
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			result.Status = dto.ReportSkipped
			result.Reason = "dividend already distributed"
			return result
		}
		result.Status = dto.ReportFailed
		result.Reason = "distribution enqueue rolled back: " + err.Error()
		return result
	}

	if len(payloads) == 0 {
		result.DividendID = dividend.DividendID
		result.Status = dto.ReportDistributed
		result.Reason = "all payouts below minimum"
		return result
	}

	s.LogInfo(ctx, "Distribution decomposed into payout jobs",
		slog.String("dividend_id", dividend.DividendID),
		slog.Int("jobs", len(payloads)),
	)
	result.DividendID = dividend.DividendID
	result.DistributionID = dividend.DividendID
	result.Status = dto.ReportEnqueued
	return result
}

// PayShareholder performs one idempotent unit payout in its own transaction.
// A replay of an already-paid (dividend, user) pair is a successful no-op: the
// payout row's unique constraint fires before any wallet credit happens.
func (s *dividendDistributionService) PayShareholder(ctx context.Context, p domain.PayoutPayload) error {
	now := time.Now().UTC()
	alreadyPaid := false

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		payout := domain.DividendPayout{
			PayoutID:    newID(),
			DividendID:  p.DividendID,
			UserID:      p.UserID,
			SharesOwned: p.SharesOwned,
			Amount:      p.Amount,
			AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := s.dividendRepo.CreatePayoutInTx(ctx, tx, payout); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				alreadyPaid = true
				return nil
			}
			return err
		}
		if err := s.walletRepo.CreditWalletInTx(ctx, tx, p.UserID, p.Amount, now); err != nil {
			return err
		}
		return s.holdingRepo.IncrementDividendsEarnedInTx(ctx, tx, p.HoldingID, p.Amount, now)
	})
	if err != nil {
		return err
	}

	if alreadyPaid {
		s.LogDebug(ctx, "Payout replay ignored",
			slog.String("dividend_id", p.DividendID),
			slog.String("user_id", p.UserID),
		)
		return nil
	}

	s.sendNotifications(ctx, []pendingNotification{{
		userID:      p.UserID,
		companyName: p.CompanyName,
		amount:      p.Amount,
		shares:      p.SharesOwned,
	}})
	return nil
}

// FinalizeDistribution flips a decomposed dividend to its terminal status once
// the queue reports its payout jobs fully drained.
func (s *dividendDistributionService) FinalizeDistribution(ctx context.Context, dividendID string) error {
	if s.queue == nil {
		return nil
	}

	dividend, err := s.dividendRepo.FindDividendByID(ctx, dividendID)
	if err != nil {
		return err
	}
	if dividend.Status != domain.DividendProcessing {
		// Another payout worker already finalized it.
		return nil
	}

	progress, err := s.queue.Progress(ctx, dividendID)
	if err != nil {
		return err
	}
	if !progress.Drained() {
		return nil
	}

	status := domain.DividendCompleted
	if progress.Failed > 0 {
		status = domain.DividendFailed
	}
	now := time.Now().UTC()
	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		return s.dividendRepo.UpdateDividendStatusInTx(ctx, tx, dividendID, status, now)
	})
	if err != nil {
		return err
	}

	s.LogInfo(ctx, "Distribution finalized",
		slog.String("dividend_id", dividendID),
		slog.String("status", string(status)),
		slog.Int("completed", progress.Completed),
		slog.Int("failed", progress.Failed),
	)
	return nil
}

// GetReportDistribution retrieves the dividend recorded for a revenue report
// together with its payouts.
func (s *dividendDistributionService) GetReportDistribution(ctx context.Context, revenueReportID string) (*dto.DividendDetails, error) {
	dividend, err := s.dividendRepo.FindDividendByReportID(ctx, revenueReportID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewAppError(404, "No dividend recorded for report", err)
		}
		return nil, err
	}
	payouts, err := s.dividendRepo.ListPayoutsByDividend(ctx, dividend.DividendID)
	if err != nil {
		return nil, err
	}
	return &dto.DividendDetails{Dividend: *dividend, Payouts: payouts}, nil
}

// payHoldingInTx writes the three financial effects of one payout inside the
// caller's transaction: the payout record, the wallet credit, and the holding's
// cumulative dividend increment.
func (s *dividendDistributionService) payHoldingInTx(ctx context.Context, tx pgx.Tx, dividendID string, holding domain.StockHolding, amount decimal.Decimal, now time.Time) error {
	payout := domain.DividendPayout{
		PayoutID:    newID(),
		DividendID:  dividendID,
		UserID:      holding.UserID,
		SharesOwned: holding.SharesOwned,
		Amount:      amount,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.dividendRepo.CreatePayoutInTx(ctx, tx, payout); err != nil {
		return err
	}
	if err := s.walletRepo.CreditWalletInTx(ctx, tx, holding.UserID, amount, now); err != nil {
		return err
	}
	return s.holdingRepo.IncrementDividendsEarnedInTx(ctx, tx, holding.HoldingID, amount, now)
}

// newDividend builds the PROCESSING dividend row for a report.
func (s *dividendDistributionService) newDividend(company domain.Company, report domain.RevenueReport, amountPerShare decimal.Decimal, now time.Time) domain.Dividend {
	return domain.Dividend{
		DividendID:      newID(),
		RevenueReportID: report.ReportID,
		CompanyID:       company.CompanyID,
		TotalPool:       report.DividendPool,
		EligibleShares:  company.TotalShares,
		AmountPerShare:  amountPerShare,
		Status:          domain.DividendProcessing,
		AuditFields:     domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
}

// createEmptyDividend persists a zero-payout dividend in COMPLETED state.
func (s *dividendDistributionService) createEmptyDividend(ctx context.Context, company domain.Company, report domain.RevenueReport, amountPerShare decimal.Decimal, reason string) (string, error) {
	now := time.Now().UTC()
	dividend := s.newDividend(company, report, amountPerShare, now)

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.dividendRepo.CreateDividendInTx(ctx, tx, dividend); err != nil {
			return err
		}
		return s.dividendRepo.UpdateDividendStatusInTx(ctx, tx, dividend.DividendID, domain.DividendCompleted, now)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return "", nil
		}
		return "", fmt.Errorf("failed to create dividend: %w", err)
	}

	s.LogInfo(ctx, "Empty dividend recorded",
		slog.String("dividend_id", dividend.DividendID),
		slog.String("report_id", report.ReportID),
		slog.String("reason", reason),
	)
	return dividend.DividendID, nil
}

// sendNotifications delivers best-effort shareholder notifications, through
// the queue when available.
func (s *dividendDistributionService) sendNotifications(ctx context.Context, notifications []pendingNotification) {
	for _, n := range notifications {
		if s.queue != nil {
			payload := domain.NotificationPayload{
				UserID:      n.userID,
				CompanyName: n.companyName,
				Amount:      n.amount,
				SharesOwned: n.shares,
			}
			if _, err := s.queue.Enqueue(ctx, payload, portssvc.EnqueueOptions{}); err != nil {
				s.LogWarn(ctx, "Failed to enqueue dividend notification",
					slog.String("user_id", n.userID),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.SendDividendNotification(ctx, n.userID, n.companyName, n.amount, n.shares); err != nil {
			s.LogWarn(ctx, "Failed to send dividend notification",
				slog.String("user_id", n.userID),
				slog.String("error", err.Error()),
			)
		}
	}
}
