package services

import (
	"context"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/dto"
)

// DividendDistributionSvc pays revenue report pools out to shareholders.
type DividendDistributionSvc interface {
	// Distribute runs the full monthly distribution over every distributable
	// report of the period. Per-report failures are recorded, not propagated.
	Distribute(ctx context.Context, period domain.Period) (*dto.DistributionRunResult, error)

	// DistributeForReport distributes one report's pool. Manual path; returns
	// an error when the report does not exist or is not verified.
	DistributeForReport(ctx context.Context, revenueReportID string) (*dto.ReportDistributionResult, error)

	// PayShareholder performs one idempotent unit payout. Queue payout workers
	// call this; replays of an already-paid (dividend, user) pair are no-ops.
	PayShareholder(ctx context.Context, p domain.PayoutPayload) error

	// FinalizeDistribution marks a decomposed dividend COMPLETED (or FAILED)
	// once its payout jobs have fully drained from the queue. Safe to call
	// repeatedly; it is a no-op while jobs remain or once the dividend is
	// already terminal.
	FinalizeDistribution(ctx context.Context, dividendID string) error

	// GetReportDistribution retrieves the dividend recorded for a revenue
	// report together with its payouts.
	GetReportDistribution(ctx context.Context, revenueReportID string) (*dto.DividendDetails, error)
}
