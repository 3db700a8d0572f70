package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewRedisClient(RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, time.Minute, zap.NewNop())

	release, err := locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyPrefix+"inv-1"))

	_, err = locker.Acquire(ctx, "inv-1")
	assert.ErrorIs(t, err, port.ErrLockHeld)

	// Other invoices are independent
	releaseOther, err := locker.Acquire(ctx, "inv-2")
	require.NoError(t, err)
	releaseOther()

	release()
	assert.False(t, mr.Exists(keyPrefix+"inv-1"))

	release, err = locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)
	release()
}

func TestRedisLocker_Expires(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, 30*time.Second, zap.NewNop())

	_, err := locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	release, err := locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)
	release()
}

func TestRedisLocker_StaleReleaseKeepsNewHolder(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	locker := NewRedisLocker(client, 30*time.Second, zap.NewNop())

	staleRelease, err := locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)
	_, err = locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)

	staleRelease()
	assert.True(t, mr.Exists(keyPrefix+"inv-1"), "expired holder must not release the new holder's lock")
}

func TestRedisLocker_ConnectionError(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	_, err := NewRedisLocker(client, time.Minute, zap.NewNop()).Acquire(context.Background(), "inv-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrLockHeld)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	release, err := locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "inv-1")
	assert.ErrorIs(t, err, port.ErrLockHeld)

	release()
	release() // idempotent

	release, err = locker.Acquire(ctx, "inv-1")
	require.NoError(t, err)
	release()
}

func TestLocalLocker_SingleWinner(t *testing.T) {
	locker := NewLocalLocker()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := locker.Acquire(context.Background(), "inv-1"); err == nil {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
