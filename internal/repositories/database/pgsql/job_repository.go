package pgsql

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/clearvest/payout_engine/internal/models"
	"github.com/clearvest/payout_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJobRepository struct {
	BaseRepository
}

// NewJobRepository creates the durable store behind the job queue.
func NewJobRepository(pool *pgxpool.Pool) *PgxJobRepository {
	return &PgxJobRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JobRepository = (*PgxJobRepository)(nil)

const jobColumns = `
	job_id, job_type, payload, state, priority, attempts, max_attempts,
	stall_count, run_at, locked_until, last_error, distribution_id,
	created_at, last_updated_at`

const enqueueJobQuery = `
	INSERT INTO jobs (` + jobColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`

func scanJob(row pgx.Row) (*models.Job, error) {
	var m models.Job
	err := row.Scan(
		&m.JobID,
		&m.Type,
		&m.Payload,
		&m.State,
		&m.Priority,
		&m.Attempts,
		&m.MaxAttempts,
		&m.StallCount,
		&m.RunAt,
		&m.LockedUntil,
		&m.LastError,
		&m.DistributionID,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func enqueueArgs(m models.Job) []any {
	return []any{
		m.JobID,
		m.Type,
		m.Payload,
		m.State,
		m.Priority,
		m.Attempts,
		m.MaxAttempts,
		m.StallCount,
		m.RunAt,
		m.LockedUntil,
		m.LastError,
		m.DistributionID,
		m.CreatedAt,
		m.LastUpdatedAt,
	}
}

// EnqueueJob persists a single new job.
func (r *PgxJobRepository) EnqueueJob(ctx context.Context, job domain.Job) error {
	m := mapping.ToModelJob(job)
	if _, err := r.Pool.Exec(ctx, enqueueJobQuery, enqueueArgs(m)...); err != nil {
		return apperrors.NewAppError(500, "failed to enqueue job "+m.JobID, err)
	}
	return nil
}

func enqueueBatch(jobs []domain.Job) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, job := range jobs {
		batch.Queue(enqueueJobQuery, enqueueArgs(mapping.ToModelJob(job))...)
	}
	return batch
}

// EnqueueJobs persists a batch of jobs in one round trip.
func (r *PgxJobRepository) EnqueueJobs(ctx context.Context, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	br := r.Pool.SendBatch(ctx, enqueueBatch(jobs))
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to enqueue job batch", err)
	}
	return nil
}

// EnqueueJobsInTx persists a batch of jobs inside the caller's transaction.
func (r *PgxJobRepository) EnqueueJobsInTx(ctx context.Context, tx pgx.Tx, jobs []domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, enqueueBatch(jobs))
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to enqueue job batch", err)
	}
	return nil
}

// DequeueJob atomically claims the highest-priority runnable job of the type.
// Runnable means WAITING, STALLED, or DELAYED with its run time due. FOR UPDATE
// SKIP LOCKED lets concurrent workers pull without contention. Returns
// (nil, nil) when no job is runnable.
func (r *PgxJobRepository) DequeueJob(ctx context.Context, jobType domain.JobType, lease time.Duration) (*domain.Job, error) {
	now := time.Now().UTC()
	query := `
		UPDATE jobs
		SET state = $3, attempts = attempts + 1, locked_until = $4, last_updated_at = $5
		WHERE job_id = (
			SELECT job_id FROM jobs
			WHERE job_type = $1
			  AND (state = $2 OR state = $7 OR (state = $6 AND run_at <= $5))
			ORDER BY priority, created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING ` + jobColumns + `;
	`

	m, err := scanJob(r.Pool.QueryRow(ctx, query,
		string(jobType),
		string(domain.JobWaiting),
		string(domain.JobActive),
		now.Add(lease),
		now,
		string(domain.JobDelayed),
		string(domain.JobStalled),
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to dequeue job of type "+string(jobType), err)
	}

	job := mapping.ToDomainJob(*m)
	return &job, nil
}

// ExtendJobLease pushes out the liveness deadline of an ACTIVE job.
func (r *PgxJobRepository) ExtendJobLease(ctx context.Context, jobID string, until time.Time) error {
	query := `UPDATE jobs SET locked_until = $2, last_updated_at = $3 WHERE job_id = $1 AND state = $4;`

	_, err := r.Pool.Exec(ctx, query, jobID, until, time.Now().UTC(), string(domain.JobActive))
	if err != nil {
		return apperrors.NewAppError(500, "failed to extend lease for job "+jobID, err)
	}
	return nil
}

// MarkJobCompleted finalizes a job as COMPLETED.
func (r *PgxJobRepository) MarkJobCompleted(ctx context.Context, jobID string) error {
	query := `UPDATE jobs SET state = $2, locked_until = NULL, last_updated_at = $3 WHERE job_id = $1;`

	tag, err := r.Pool.Exec(ctx, query, jobID, string(domain.JobCompleted), time.Now().UTC())
	if err != nil {
		return apperrors.NewAppError(500, "failed to complete job "+jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkJobFailed finalizes a job as FAILED with its last error.
func (r *PgxJobRepository) MarkJobFailed(ctx context.Context, jobID string, lastError string) error {
	query := `UPDATE jobs SET state = $2, locked_until = NULL, last_error = $3, last_updated_at = $4 WHERE job_id = $1;`

	tag, err := r.Pool.Exec(ctx, query, jobID, string(domain.JobFailed), lastError, time.Now().UTC())
	if err != nil {
		return apperrors.NewAppError(500, "failed to fail job "+jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RescheduleJob returns a job to DELAYED for a retry at runAt.
func (r *PgxJobRepository) RescheduleJob(ctx context.Context, jobID string, runAt time.Time, lastError string) error {
	query := `
		UPDATE jobs
		SET state = $2, run_at = $3, locked_until = NULL, last_error = $4, last_updated_at = $5
		WHERE job_id = $1;
	`

	tag, err := r.Pool.Exec(ctx, query, jobID, string(domain.JobDelayed), runAt, lastError, time.Now().UTC())
	if err != nil {
		return apperrors.NewAppError(500, "failed to reschedule job "+jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReclaimStalledJobs moves ACTIVE jobs whose lease expired to STALLED, where
// DequeueJob picks them back up; jobs past maxStalls are marked FAILED instead
// and returned to the caller. Both transitions happen in one transaction so a
// crash mid-reclaim cannot double-count a stall.
func (r *PgxJobRepository) ReclaimStalledJobs(ctx context.Context, maxStalls int) (int, []domain.Job, error) {
	now := time.Now().UTC()
	var (
		stalled int
		failed  []models.Job
	)

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		stallQuery := `
			UPDATE jobs
			SET state = $1, stall_count = stall_count + 1, locked_until = NULL,
			    last_error = 'worker liveness check failed', last_updated_at = $2
			WHERE state = $3 AND locked_until < $2 AND stall_count < $4;
		`
		tag, err := tx.Exec(ctx, stallQuery,
			string(domain.JobStalled), now, string(domain.JobActive), maxStalls)
		if err != nil {
			return apperrors.NewAppError(500, "failed to stall expired jobs", err)
		}
		stalled = int(tag.RowsAffected())

		failQuery := `
			UPDATE jobs
			SET state = $1, stall_count = stall_count + 1, locked_until = NULL,
			    last_error = 'stall limit exceeded', last_updated_at = $2
			WHERE state = $3 AND locked_until < $2 AND stall_count >= $4
			RETURNING ` + jobColumns + `;
		`
		rows, err := tx.Query(ctx, failQuery,
			string(domain.JobFailed), now, string(domain.JobActive), maxStalls)
		if err != nil {
			return apperrors.NewAppError(500, "failed to fail stalled jobs", err)
		}
		defer rows.Close()

		failed = failed[:0]
		for rows.Next() {
			m, err := scanJob(rows)
			if err != nil {
				return apperrors.NewAppError(500, "failed to scan failed job row", err)
			}
			failed = append(failed, *m)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, nil, err
	}
	return stalled, mapping.ToDomainJobSlice(failed), nil
}

// CountJobsByState returns per-type, per-state job counts.
func (r *PgxJobRepository) CountJobsByState(ctx context.Context) (map[domain.JobType]map[domain.JobState]int, error) {
	query := `SELECT job_type, state, COUNT(*) FROM jobs GROUP BY job_type, state;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to count jobs by state", err)
	}
	defer rows.Close()

	counts := make(map[domain.JobType]map[domain.JobState]int)
	for rows.Next() {
		var (
			jobType string
			state   string
			count   int
		)
		if err := rows.Scan(&jobType, &state, &count); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan job count row", err)
		}
		t := domain.JobType(jobType)
		if counts[t] == nil {
			counts[t] = make(map[domain.JobState]int)
		}
		counts[t][domain.JobState(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate job count rows", err)
	}
	return counts, nil
}

// ListFailedJobs retrieves failed jobs for introspection, newest first.
func (r *PgxJobRepository) ListFailedJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE state = $1 ORDER BY last_updated_at DESC LIMIT $2;`

	rows, err := r.Pool.Query(ctx, query, string(domain.JobFailed), limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list failed jobs", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		m, err := scanJob(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan job row", err)
		}
		jobs = append(jobs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate job rows", err)
	}
	return mapping.ToDomainJobSlice(jobs), nil
}

// RetryJobs requeues the given failed jobs, resetting attempt and stall counters.
func (r *PgxJobRepository) RetryJobs(ctx context.Context, jobIDs []string) (int, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}
	query := `
		UPDATE jobs
		SET state = $1, attempts = 0, stall_count = 0, run_at = $2, last_error = '', last_updated_at = $2
		WHERE job_id = ANY($3) AND state = $4;
	`

	tag, err := r.Pool.Exec(ctx, query,
		string(domain.JobWaiting), time.Now().UTC(), jobIDs, string(domain.JobFailed))
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to retry jobs", err)
	}
	return int(tag.RowsAffected()), nil
}

// RetryAllFailedJobs requeues every failed job.
func (r *PgxJobRepository) RetryAllFailedJobs(ctx context.Context) (int, error) {
	query := `
		UPDATE jobs
		SET state = $1, attempts = 0, stall_count = 0, run_at = $2, last_error = '', last_updated_at = $2
		WHERE state = $3;
	`

	tag, err := r.Pool.Exec(ctx, query, string(domain.JobWaiting), time.Now().UTC(), string(domain.JobFailed))
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to retry all failed jobs", err)
	}
	return int(tag.RowsAffected()), nil
}

// DistributionCounts aggregates job counts for one distribution id.
func (r *PgxJobRepository) DistributionCounts(ctx context.Context, distributionID string) (domain.DistributionProgress, error) {
	query := `SELECT state, COUNT(*) FROM jobs WHERE distribution_id = $1 GROUP BY state;`

	rows, err := r.Pool.Query(ctx, query, distributionID)
	if err != nil {
		return domain.DistributionProgress{}, apperrors.NewAppError(500, "failed to count distribution jobs", err)
	}
	defer rows.Close()

	progress := domain.DistributionProgress{DistributionID: distributionID}
	total := 0
	for rows.Next() {
		var (
			state string
			count int
		)
		if err := rows.Scan(&state, &count); err != nil {
			return domain.DistributionProgress{}, apperrors.NewAppError(500, "failed to scan distribution count row", err)
		}
		total += count
		switch domain.JobState(state) {
		case domain.JobCompleted:
			progress.Completed += count
		case domain.JobFailed:
			progress.Failed += count
		default:
			// waiting, active, delayed and stalled all count as pending work
			progress.Pending += count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.DistributionProgress{}, apperrors.NewAppError(500, "failed to iterate distribution count rows", err)
	}

	if total > 0 {
		progress.Percent = float64(progress.Completed+progress.Failed) / float64(total) * 100
	}
	return progress, nil
}
