package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu   sync.Mutex
	keys map[string]interface{}
	ttls map[string]time.Duration
	err  error
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		cmd := redis.NewBoolCmd(ctx)
		cmd.SetErr(f.err)
		return cmd
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = value
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func TestRedisGuard_Acquire(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{keys: make(map[string]interface{}), ttls: make(map[string]time.Duration)}
	g := &RedisGuard{client: fake, owner: "host-a"}

	ok, err := g.Acquire(ctx, "2024-03-01", 36*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "host-a", fake.keys["dailyphrase:slot:2024-03-01"])
	assert.Equal(t, 36*time.Hour, fake.ttls["dailyphrase:slot:2024-03-01"])

	ok, err = (&RedisGuard{client: fake, owner: "host-b"}).Acquire(ctx, "2024-03-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Acquire(ctx, "2024-03-02", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGuard_Error(t *testing.T) {
	fake := &fakeRedis{err: errors.New("connection refused")}
	g := &RedisGuard{client: fake, owner: "host-a"}

	ok, err := g.Acquire(context.Background(), "2024-03-01", time.Hour)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMemoryGuard(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	g := NewMemoryGuard()
	g.now = func() time.Time { return now }

	ok, err := g.Acquire(ctx, "2024-03-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "2024-03-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(61 * time.Minute)
	ok, err = g.Acquire(ctx, "2024-03-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "slot is free again after its ttl")
}

func TestMemoryGuard_Concurrent(t *testing.T) {
	g := NewMemoryGuard()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := g.Acquire(context.Background(), "slot", time.Hour)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
