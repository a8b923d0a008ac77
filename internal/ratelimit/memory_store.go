package ratelimit

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

const memoryShards = 32

// memorySweepInterval bounds how often a Hit pays for the full eviction
// scan across shards.
const memorySweepInterval = 30 * time.Second

type memoryWindow struct {
	count       int64
	windowStart time.Time
	window      time.Duration
}

type memoryShard struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// MemoryStore is an in-process CounterStore. Keys are sharded so concurrent
// hits on unrelated keys never contend; the read-modify-write for one key is
// a critical section under its shard lock.
type MemoryStore struct {
	shards    [memoryShards]*memoryShard
	now       func() time.Time
	lastSweep atomic.Int64
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &memoryShard{windows: make(map[string]*memoryWindow)}
	}
	s.lastSweep.Store(s.now().UnixNano())
	return s
}

func (s *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%memoryShards]
}

// Hit implements CounterStore.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (Hit, error) {
	shard := s.shard(key)
	now := s.now()
	s.maybeSweep(now)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	w, ok := shard.windows[key]
	if !ok || now.Sub(w.windowStart) >= window {
		// New window: no partial carry-over from the previous one.
		shard.windows[key] = &memoryWindow{count: 1, windowStart: now, window: window}
		return Hit{Allowed: true, Count: 1}, nil
	}

	if w.count < int64(limit) {
		w.count++
		return Hit{Allowed: true, Count: w.count}, nil
	}

	// Saturated: deny without growing the count.
	return Hit{
		Allowed:    false,
		Count:      w.count + 1,
		RetryAfter: window - now.Sub(w.windowStart),
	}, nil
}

// maybeSweep evicts windows whose time-to-live has elapsed. The key space
// grows with every distinct client identity, so abandoned windows cannot be
// left for their own key to come around again; at most one caller per
// interval pays for the scan.
func (s *MemoryStore) maybeSweep(now time.Time) {
	last := s.lastSweep.Load()
	if now.Sub(time.Unix(0, last)) < memorySweepInterval {
		return
	}
	if !s.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	for _, shard := range s.shards {
		shard.mu.Lock()
		for key, w := range shard.windows {
			if now.Sub(w.windowStart) >= w.window {
				delete(shard.windows, key)
			}
		}
		shard.mu.Unlock()
	}
}

func (s *MemoryStore) size() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		total += len(shard.windows)
		shard.mu.Unlock()
	}
	return total
}
