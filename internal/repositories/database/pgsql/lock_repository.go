package pgsql

import (
	"context"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLockRepository struct {
	BaseRepository
	ownerID string
}

// NewLockRepository creates a distributed lock backed by the scheduler_locks
// table. Each repository instance has its own owner id so a process only
// releases locks it holds.
func NewLockRepository(pool *pgxpool.Pool) *PgxLockRepository {
	return &PgxLockRepository{
		BaseRepository: BaseRepository{Pool: pool},
		ownerID:        uuid.NewString(),
	}
}

var _ portsrepo.LockRepository = (*PgxLockRepository)(nil)

// AcquireLock attempts to take the named lock for ttl. The upsert only
// succeeds when the row is absent or its TTL has lapsed, so two processes
// racing for the same key see exactly one winner.
func (r *PgxLockRepository) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO scheduler_locks (lock_key, owner_id, locked_until)
		VALUES ($1, $2, $3)
		ON CONFLICT (lock_key) DO UPDATE
		SET owner_id = EXCLUDED.owner_id, locked_until = EXCLUDED.locked_until
		WHERE scheduler_locks.locked_until < $4;
	`

	tag, err := r.Pool.Exec(ctx, query, key, r.ownerID, now.Add(ttl), now)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to acquire lock "+key, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseLock frees the named lock if this process still owns it.
func (r *PgxLockRepository) ReleaseLock(ctx context.Context, key string) error {
	query := `DELETE FROM scheduler_locks WHERE lock_key = $1 AND owner_id = $2;`

	if _, err := r.Pool.Exec(ctx, query, key, r.ownerID); err != nil {
		return apperrors.NewAppError(500, "failed to release lock "+key, err)
	}
	return nil
}
