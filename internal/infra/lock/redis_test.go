package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, opts RedisOptions) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisLocker(rdb, opts, nil), mr
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{RetryInterval: 5 * time.Millisecond})

	unlock, err := locker.Lock(context.Background(), "1|2025-06-10|09:00")
	require.NoError(t, err)
	assert.True(t, mr.Exists(defaultKeyPrefix+":1|2025-06-10|09:00"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "1|2025-06-10|09:00")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	assert.False(t, mr.Exists(defaultKeyPrefix+":1|2025-06-10|09:00"))

	unlock, err = locker.Lock(context.Background(), "1|2025-06-10|09:00")
	require.NoError(t, err)
	unlock()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{TTL: time.Second, KeyPrefix: "test"})

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	// Блокировка истекла и перехвачена другим владельцем
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:k", "other-owner"))

	unlock()

	value, err := mr.Get("test:k")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", value)
}

func TestRedisLocker_SetsTTL(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{TTL: 3 * time.Second, KeyPrefix: "test"})

	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	assert.Equal(t, 3*time.Second, mr.TTL("test:k"))
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	locker, _ := newTestRedisLocker(t, RedisOptions{RetryInterval: time.Millisecond})

	const workers = 10
	var (
		wg      sync.WaitGroup
		inside  int32
		overlap int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "slot")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), overlap)
}

func TestRedisLocker_BackendDown(t *testing.T) {
	locker, mr := newTestRedisLocker(t, RedisOptions{})
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockBackend)
}
