// Package lock guards scheduled slots against double firing.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/dailyphrase/internal/model"
)

const keyPrefix = "dailyphrase:slot:"

// setNX is the subset of redis.Cmdable the guard uses.
type setNX interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

var _ model.SlotGuard = (*RedisGuard)(nil)

// RedisGuard owns a slot for as long as its key lives, across processes.
type RedisGuard struct {
	client setNX
	owner  string
}

// NewRedisGuard marks acquired slots with owner, usually the hostname.
func NewRedisGuard(client *redis.Client, owner string) *RedisGuard {
	return &RedisGuard{client: client, owner: owner}
}

func (g *RedisGuard) Acquire(ctx context.Context, slot string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, keyPrefix+slot, g.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire slot %s: %w", slot, err)
	}
	return ok, nil
}

// Dial connects to Redis and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}
