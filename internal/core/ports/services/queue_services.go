package services

import (
	"context"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/jackc/pgx/v5"
)

// EnqueueOptions tune a single enqueue beyond its type defaults.
type EnqueueOptions struct {
	// Priority overrides the type's default priority; lower runs first.
	Priority *int
	// DelaySeconds schedules the job for future execution.
	DelaySeconds int
	// DistributionID tags the job for progress reporting.
	DistributionID string
}

// QueueSvc is the producer/operator surface of the durable job queue.
// Lifecycle (Start/Close) belongs to the concrete client, not this port.
type QueueSvc interface {
	// Enqueue persists one job for its payload's type. Returns the job id.
	Enqueue(ctx context.Context, payload domain.JobPayload, opts EnqueueOptions) (string, error)

	// EnqueueBulkInTx persists many jobs in one round trip inside the caller's
	// transaction, so the jobs commit or roll back together with the caller's
	// other writes.
	EnqueueBulkInTx(ctx context.Context, tx pgx.Tx, payloads []domain.JobPayload, opts EnqueueOptions) ([]string, error)

	// Pause stops workers from pulling new jobs; in-flight jobs finish.
	Pause()

	// Resume lets workers pull jobs again.
	Resume()

	// Metrics reports per-type, per-state job counts.
	Metrics(ctx context.Context) (*dto.QueueMetrics, error)

	// ListFailed retrieves failed jobs for introspection.
	ListFailed(ctx context.Context, limit int) ([]domain.Job, error)

	// RetryFailed requeues the given failed jobs; empty means all.
	RetryFailed(ctx context.Context, jobIDs []string) (int, error)

	// Progress reports how far a distribution's jobs have drained.
	Progress(ctx context.Context, distributionID string) (*domain.DistributionProgress, error)
}
