package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clearvest/payout_engine/internal/apperrors"
	"github.com/clearvest/payout_engine/internal/utils/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = retry.Policy{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	res, err := retry.Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.NoError(t, res.LastErr)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	transient := apperrors.NewAppError(503, "bank API unreachable", apperrors.ErrTransient)
	calls := 0

	res, err := retry.Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, res.Attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	transient := apperrors.NewAppError(503, "bank API unreachable", apperrors.ErrTransient)

	res, err := retry.Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		return transient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	assert.Equal(t, 3, res.Attempts)
	assert.ErrorIs(t, res.LastErr, apperrors.ErrTransient)
}

func TestDoDoesNotRetryPermanentErrors(t *testing.T) {
	permanent := errors.New("bad credentials")
	calls := 0

	res, err := retry.Do(context.Background(), fastPolicy, func(ctx context.Context) error {
		calls++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, res.Attempts)
}
