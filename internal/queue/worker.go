package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Start launches the worker pools and the stall reclaimer. It returns once the
// loops are running; Close (or cancelling ctx) shuts them down after in-flight
// jobs finish.
func (c *Client) Start(ctx context.Context) error {
	if c.dispatcher == nil {
		return fmt.Errorf("queue: Start called without a dispatcher")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	g, gctx := errgroup.WithContext(runCtx)
	for _, jobType := range domain.JobTypes {
		policy := c.policy(jobType)
		for i := 0; i < policy.Concurrency; i++ {
			jt := jobType
			g.Go(func() error {
				c.workLoop(gctx, jt)
				return nil
			})
		}
	}
	g.Go(func() error {
		c.reclaimLoop(gctx)
		return nil
	})

	go func() {
		_ = g.Wait()
		close(c.done)
	}()

	c.logger.Info("Queue workers started", slog.Int("types", len(domain.JobTypes)))
	return nil
}

// Close stops the workers and waits for in-flight jobs to finish.
func (c *Client) Close() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.logger.Info("Queue workers stopped")
}

// workLoop is one worker: it polls for runnable jobs of a single type and
// processes them one at a time until the context is cancelled.
func (c *Client) workLoop(ctx context.Context, jobType domain.JobType) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if c.paused.Load() {
			continue
		}

		// Drain the backlog before going back to sleep on the ticker.
		for {
			job, err := c.jobs.DequeueJob(ctx, jobType, c.opts.StallTimeout)
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Error("Failed to dequeue job",
						slog.String("type", string(jobType)),
						slog.String("error", err.Error()),
					)
				}
				break
			}
			if job == nil {
				break
			}
			c.process(ctx, job)

			if ctx.Err() != nil || c.paused.Load() {
				break
			}
		}
	}
}

// process runs one claimed job to a terminal or retryable outcome. A heartbeat
// extends the lease for as long as the handler runs, so only a crashed or
// partitioned worker ever lets the lease lapse.
func (c *Client) process(ctx context.Context, job *domain.Job) {
	logger := c.logger.With(
		slog.String("job_id", job.JobID),
		slog.String("type", string(job.Type)),
		slog.Int("attempt", job.Attempts),
	)

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	go c.heartbeat(hbCtx, job.JobID)

	start := time.Now()
	err := c.dispatch(ctx, job)
	stopHeartbeat()
	jobDuration.WithLabelValues(string(job.Type)).Observe(time.Since(start).Seconds())

	if err == nil {
		if markErr := c.jobs.MarkJobCompleted(ctx, job.JobID); markErr != nil {
			logger.Error("Failed to mark job completed", slog.String("error", markErr.Error()))
			return
		}
		jobsProcessed.WithLabelValues(string(job.Type), "completed").Inc()
		logger.Debug("Job completed", slog.Duration("took", time.Since(start)))
		c.settleDistribution(ctx, job)
		return
	}

	if job.Attempts >= job.MaxAttempts {
		if markErr := c.jobs.MarkJobFailed(ctx, job.JobID, err.Error()); markErr != nil {
			logger.Error("Failed to mark job failed", slog.String("error", markErr.Error()))
			return
		}
		jobsProcessed.WithLabelValues(string(job.Type), "failed").Inc()
		logger.Error("Job failed permanently",
			slog.Int("max_attempts", job.MaxAttempts),
			slog.String("error", err.Error()),
		)
		c.settleDistribution(ctx, job)
		return
	}

	delay := c.backoff(job.Type, job.Attempts)
	if reschedErr := c.jobs.RescheduleJob(ctx, job.JobID, time.Now().UTC().Add(delay), err.Error()); reschedErr != nil {
		logger.Error("Failed to reschedule job", slog.String("error", reschedErr.Error()))
		return
	}
	jobsProcessed.WithLabelValues(string(job.Type), "retried").Inc()
	logger.Warn("Job rescheduled",
		slog.Duration("delay", delay),
		slog.String("error", err.Error()),
	)
}

// settleDistribution runs the finalizer for a distribution-tagged job that
// just reached a terminal state. The job's own row is already COMPLETED or
// FAILED at this point, so when it was the last one the drain check sees zero
// pending jobs and the distribution settles. The finalizer is idempotent: every
// terminal job of the distribution triggers it and only the last one acts.
func (c *Client) settleDistribution(ctx context.Context, job *domain.Job) {
	if job.DistributionID == nil {
		return
	}
	finalizer, ok := c.dispatcher.(DistributionFinalizer)
	if !ok {
		return
	}
	if err := finalizer.FinalizeDistribution(ctx, *job.DistributionID); err != nil {
		c.logger.Error("Failed to finalize distribution",
			slog.String("distribution_id", *job.DistributionID),
			slog.String("job_id", job.JobID),
			slog.String("error", err.Error()),
		)
	}
}

// dispatch decodes the payload and hands it to the dispatcher.
func (c *Client) dispatch(ctx context.Context, job *domain.Job) error {
	payload, err := domain.DecodeJobPayload(job.Type, job.Payload)
	if err != nil {
		return err
	}
	return c.dispatcher.Handle(ctx, payload)
}

// backoff is exponential per attempt: base, 2*base, 4*base, ...
func (c *Client) backoff(jobType domain.JobType, attempts int) time.Duration {
	delay := c.policy(jobType).BaseBackoff
	for i := 1; i < attempts; i++ {
		delay *= 2
	}
	return delay
}

// heartbeat extends the job's lease until the surrounding process call stops it.
func (c *Client) heartbeat(ctx context.Context, jobID string) {
	ticker := time.NewTicker(c.opts.HeartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			until := time.Now().UTC().Add(c.opts.StallTimeout)
			if err := c.jobs.ExtendJobLease(ctx, jobID, until); err != nil && ctx.Err() == nil {
				c.logger.Warn("Failed to extend job lease",
					slog.String("job_id", jobID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// reclaimLoop periodically sweeps for jobs whose workers died mid-flight.
func (c *Client) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.ReclaimEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		c.reclaimOnce(ctx)
	}
}

// reclaimOnce runs one stall sweep. Lease-expired jobs move to STALLED for
// re-claim; jobs past the stall limit are failed, and any distribution they
// belonged to gets a finalize pass so it cannot hang on a dead last job.
func (c *Client) reclaimOnce(ctx context.Context) {
	stalled, failed, err := c.jobs.ReclaimStalledJobs(ctx, c.opts.StallMax)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Stall reclaim failed", slog.String("error", err.Error()))
		}
		return
	}
	if stalled == 0 && len(failed) == 0 {
		return
	}

	jobsReclaimed.WithLabelValues("stalled").Add(float64(stalled))
	jobsReclaimed.WithLabelValues("failed").Add(float64(len(failed)))
	c.logger.Warn("Reclaimed stalled jobs",
		slog.Int("stalled", stalled),
		slog.Int("failed", len(failed)),
	)
	for i := range failed {
		c.settleDistribution(ctx, &failed[i])
	}
}
