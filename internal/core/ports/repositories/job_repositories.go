package repositories

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JobRepository is the durable store behind the job queue. The queue client
// owns all state transitions; nothing else writes to the jobs table.
type JobRepository interface {
	// EnqueueJob persists a new job in WAITING (or DELAYED when RunAt is in the
	// future).
	EnqueueJob(ctx context.Context, job domain.Job) error

	// EnqueueJobs persists a batch of jobs in one round trip.
	EnqueueJobs(ctx context.Context, jobs []domain.Job) error

	// EnqueueJobsInTx persists a batch of jobs inside the caller's transaction,
	// so the jobs commit or roll back together with the caller's other writes.
	EnqueueJobsInTx(ctx context.Context, tx pgx.Tx, jobs []domain.Job) error

	// DequeueJob atomically claims the highest-priority runnable job of the
	// given type, moving it to ACTIVE with a lease of the given duration.
	// Returns (nil, nil) when no job is runnable.
	DequeueJob(ctx context.Context, jobType domain.JobType, lease time.Duration) (*domain.Job, error)

	// ExtendJobLease pushes out the liveness deadline of an ACTIVE job.
	ExtendJobLease(ctx context.Context, jobID string, until time.Time) error

	// MarkJobCompleted finalizes a job as COMPLETED.
	MarkJobCompleted(ctx context.Context, jobID string) error

	// MarkJobFailed finalizes a job as FAILED with its last error.
	MarkJobFailed(ctx context.Context, jobID string, lastError string) error

	// RescheduleJob returns a job to DELAYED for a retry at runAt.
	RescheduleJob(ctx context.Context, jobID string, runAt time.Time, lastError string) error

	// ReclaimStalledJobs finds ACTIVE jobs whose lease expired and increments
	// their stall count. Jobs under maxStalls move to STALLED, where workers
	// re-claim them; jobs at the limit are failed. Returns how many were
	// released for re-claim and the jobs that were failed.
	ReclaimStalledJobs(ctx context.Context, maxStalls int) (stalled int, failed []domain.Job, err error)

	// CountJobsByState returns per-type, per-state job counts.
	CountJobsByState(ctx context.Context) (map[domain.JobType]map[domain.JobState]int, error)

	// ListFailedJobs retrieves failed jobs for introspection, newest first.
	ListFailedJobs(ctx context.Context, limit int) ([]domain.Job, error)

	// RetryJobs requeues the given failed jobs, resetting attempts. Returns
	// how many were actually requeued.
	RetryJobs(ctx context.Context, jobIDs []string) (int, error)

	// RetryAllFailedJobs requeues every failed job.
	RetryAllFailedJobs(ctx context.Context) (int, error)

	// DistributionCounts aggregates job counts for one distribution id.
	DistributionCounts(ctx context.Context, distributionID string) (domain.DistributionProgress, error)
}
