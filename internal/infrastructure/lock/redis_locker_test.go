package lock

import (
	"context"
	"testing"
	"time"

	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/oilmill/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	client := testutil.NewRedisClient(t)
	locker := NewRedisLocker(client, WithRetry(10*time.Millisecond, 3))
	ctx := context.Background()

	unlock, err := locker.Obtain(ctx, "byproduct-sale:CAKE", time.Minute)
	require.NoError(t, err)

	_, err = locker.Obtain(ctx, "byproduct-sale:CAKE", time.Minute)
	require.Error(t, err)
	assert.True(t, shared.IsConcurrencyConflict(err))

	other, err := locker.Obtain(ctx, "byproduct-sale:SLUDGE", time.Minute)
	require.NoError(t, err, "keys are independent")
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx), "releasing twice is harmless")

	again, err := locker.Obtain(ctx, "byproduct-sale:CAKE", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}
