package lock

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/dailyphrase/internal/model"
)

var _ model.SlotGuard = (*MemoryGuard)(nil)

// MemoryGuard guards slots within a single process.
type MemoryGuard struct {
	mu    sync.Mutex
	slots map[string]time.Time
	now   func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{slots: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, slot string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if until, held := g.slots[slot]; held && now.Before(until) {
		return false, nil
	}
	g.slots[slot] = now.Add(ttl)
	return true, nil
}
