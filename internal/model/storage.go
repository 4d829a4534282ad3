package model

import (
	"context"
	"io"
	"time"
)

// Storage keeps archived objects such as run summaries.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// SlotGuard suppresses double firing of a scheduled slot.
type SlotGuard interface {
	// Acquire returns true when the caller owns slot.
	Acquire(ctx context.Context, slot string, ttl time.Duration) (bool, error)
}
