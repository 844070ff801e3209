package queue

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TypePolicy tunes how one job type is executed.
type TypePolicy struct {
	// Concurrency is the number of jobs of this type processed at once.
	Concurrency int
	// MaxAttempts caps retries before the job is failed permanently.
	MaxAttempts int
	// BaseBackoff is the first retry delay; it doubles per attempt.
	BaseBackoff time.Duration
	// Priority is the default priority for enqueued jobs; lower runs first.
	Priority int
}

// DefaultPolicies returns the per-type execution policies. Money-movement jobs
// retry harder than best-effort ones.
func DefaultPolicies() map[domain.JobType]TypePolicy {
	policies := make(map[domain.JobType]TypePolicy, len(domain.JobTypes))
	for _, t := range domain.JobTypes {
		policies[t] = TypePolicy{Concurrency: 2, MaxAttempts: 3, BaseBackoff: time.Second, Priority: 10}
	}
	policies[domain.JobDistribution] = TypePolicy{Concurrency: 1, MaxAttempts: 5, BaseBackoff: 2 * time.Second, Priority: 5}
	policies[domain.JobPayout] = TypePolicy{Concurrency: 8, MaxAttempts: 5, BaseBackoff: 2 * time.Second, Priority: 5}
	policies[domain.JobNotification] = TypePolicy{Concurrency: 4, MaxAttempts: 3, BaseBackoff: time.Second, Priority: 20}
	return policies
}

// Options configure the queue client's timing behaviour.
type Options struct {
	PollInterval   time.Duration
	StallTimeout   time.Duration
	StallMax       int
	ReclaimEvery   time.Duration
	HeartbeatEvery time.Duration
}

func (o *Options) applyDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.StallTimeout <= 0 {
		o.StallTimeout = time.Minute
	}
	if o.StallMax <= 0 {
		o.StallMax = 3
	}
	if o.ReclaimEvery <= 0 {
		o.ReclaimEvery = 30 * time.Second
	}
	if o.HeartbeatEvery <= 0 {
		o.HeartbeatEvery = 15 * time.Second
	}
}

// Client is the durable job queue: producers enqueue through it, its worker
// pools pull jobs back out and hand them to the dispatcher. All job state lives
// in storage, so any number of processes can run a Client against the same
// database.
type Client struct {
	jobs     portsrepo.JobRepository
	policies map[domain.JobType]TypePolicy
	opts     Options
	logger   *slog.Logger

	dispatcher Dispatcher
	paused     atomic.Bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewClient creates a queue client over the given job store. The dispatcher is
// attached later via SetDispatcher because the services it carries depend on
// the client for enqueueing.
func NewClient(jobs portsrepo.JobRepository, policies map[domain.JobType]TypePolicy, opts Options, logger *slog.Logger) *Client {
	if policies == nil {
		policies = DefaultPolicies()
	}
	opts.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		jobs:     jobs,
		policies: policies,
		opts:     opts,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

var _ portssvc.QueueSvc = (*Client)(nil)

// SetDispatcher attaches the handler dispatch table. Must be called before Start.
func (c *Client) SetDispatcher(d Dispatcher) {
	c.dispatcher = d
}

// policy returns the execution policy for a type, falling back to a sane default.
func (c *Client) policy(t domain.JobType) TypePolicy {
	if p, ok := c.policies[t]; ok {
		return p
	}
	return TypePolicy{Concurrency: 1, MaxAttempts: 3, BaseBackoff: time.Second, Priority: 10}
}

// Enqueue persists one job for its payload's type.
func (c *Client) Enqueue(ctx context.Context, payload domain.JobPayload, opts portssvc.EnqueueOptions) (string, error) {
	job, err := c.buildJob(payload, opts)
	if err != nil {
		return "", err
	}
	if err := c.jobs.EnqueueJob(ctx, job); err != nil {
		return "", err
	}
	return job.JobID, nil
}

// EnqueueBulkInTx persists many jobs in one round trip inside the caller's
// transaction. The jobs become visible to workers only when that transaction
// commits; a rollback discards them together with the caller's other writes.
func (c *Client) EnqueueBulkInTx(ctx context.Context, tx pgx.Tx, payloads []domain.JobPayload, opts portssvc.EnqueueOptions) ([]string, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	jobs := make([]domain.Job, 0, len(payloads))
	ids := make([]string, 0, len(payloads))
	for _, payload := range payloads {
		job, err := c.buildJob(payload, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
		ids = append(ids, job.JobID)
	}
	if err := c.jobs.EnqueueJobsInTx(ctx, tx, jobs); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) buildJob(payload domain.JobPayload, opts portssvc.EnqueueOptions) (domain.Job, error) {
	raw, err := domain.EncodeJobPayload(payload)
	if err != nil {
		return domain.Job{}, err
	}

	policy := c.policy(payload.JobType())
	priority := policy.Priority
	if opts.Priority != nil {
		priority = *opts.Priority
	}

	now := time.Now().UTC()
	runAt := now
	state := domain.JobWaiting
	if opts.DelaySeconds > 0 {
		runAt = now.Add(time.Duration(opts.DelaySeconds) * time.Second)
		state = domain.JobDelayed
	}

	job := domain.Job{
		JobID:       uuid.NewString(),
		Type:        payload.JobType(),
		Payload:     raw,
		State:       state,
		Priority:    priority,
		MaxAttempts: policy.MaxAttempts,
		RunAt:       runAt,
		AuditFields: domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if opts.DistributionID != "" {
		id := opts.DistributionID
		job.DistributionID = &id
	}
	return job, nil
}

// Pause stops workers from pulling new jobs; in-flight jobs finish.
func (c *Client) Pause() {
	c.paused.Store(true)
	c.logger.Info("Queue paused")
}

// Resume lets workers pull jobs again.
func (c *Client) Resume() {
	c.paused.Store(false)
	c.logger.Info("Queue resumed")
}

// Metrics reports per-type, per-state job counts and refreshes the exported
// gauges along the way.
func (c *Client) Metrics(ctx context.Context) (*dto.QueueMetrics, error) {
	counts, err := c.jobs.CountJobsByState(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.QueueMetrics{
		Paused: c.paused.Load(),
		Counts: make(map[string]map[string]int, len(domain.JobTypes)),
	}
	for _, t := range domain.JobTypes {
		byState := make(map[string]int, len(domain.JobStates))
		for _, s := range domain.JobStates {
			n := counts[t][s]
			byState[string(s)] = n
			jobsByState.WithLabelValues(string(t), string(s)).Set(float64(n))
		}
		out.Counts[string(t)] = byState
	}
	return out, nil
}

// ListFailed retrieves failed jobs for introspection.
func (c *Client) ListFailed(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	return c.jobs.ListFailedJobs(ctx, limit)
}

// RetryFailed requeues the given failed jobs; an empty list means all of them.
func (c *Client) RetryFailed(ctx context.Context, jobIDs []string) (int, error) {
	if len(jobIDs) == 0 {
		return c.jobs.RetryAllFailedJobs(ctx)
	}
	return c.jobs.RetryJobs(ctx, jobIDs)
}

// Progress reports how far a distribution's jobs have drained.
func (c *Client) Progress(ctx context.Context, distributionID string) (*domain.DistributionProgress, error) {
	progress, err := c.jobs.DistributionCounts(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
