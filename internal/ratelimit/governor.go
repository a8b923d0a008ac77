package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Hit is the outcome of one fixed-window transition in the counter store.
type Hit struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// CounterStore applies the fixed-window transition for a key atomically:
// create {count:1} when the window is absent or expired, otherwise increment
// with a ceiling. The count saturates at limit; denied requests never grow it
// further. Implementations must not let two concurrent hits on the same key
// both pass when exactly one increment would exceed the limit.
type CounterStore interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Hit, error)
}

// Governor decides whether a request from a client identity may proceed.
type Governor struct {
	classifier *Classifier
	store      CounterStore
	logger     *zap.Logger
}

// Result is the caller-visible rate decision.
type Result struct {
	Allowed    bool
	Class      Class
	Count      int64
	Remaining  int64
	RetryAfter time.Duration
}

// NewGovernor constructs a Governor.
func NewGovernor(classifier *Classifier, store CounterStore, logger *zap.Logger) *Governor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Governor{classifier: classifier, store: store, logger: logger}
}

// Allow records one request for (identity, path) and reports whether it is
// within the window budget. A counter-store outage fails open: throttling
// protects capacity, it must not become its own outage.
func (g *Governor) Allow(ctx context.Context, identity, path string) Result {
	class := g.classifier.Classify(path)
	key := fmt.Sprintf("ratelimit:%s:%s", identity, class.Name)

	hit, err := g.store.Hit(ctx, key, class.Limit, class.Window)
	if err != nil {
		g.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("identity", identity),
			zap.String("path", path),
			zap.Error(err),
		)
		return Result{Allowed: true, Class: class}
	}

	remaining := int64(class.Limit) - hit.Count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:    hit.Allowed,
		Class:      class,
		Count:      hit.Count,
		Remaining:  remaining,
		RetryAfter: hit.RetryAfter,
	}
}
