package audit

import (
	"context"
	"sync"
)

const DefaultMemoryCapacity = 10000

// MemoryRepository keeps the most recent decisions in a fixed-size ring.
type MemoryRepository struct {
	mu   sync.RWMutex
	logs []DecisionLog
	next int
	full bool
}

func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryRepository{logs: make([]DecisionLog, capacity)}
}

func (r *MemoryRepository) LogDecision(_ context.Context, log DecisionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs[r.next] = log
	r.next = (r.next + 1) % len(r.logs)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// QueryDecisions returns matching entries newest first.
func (r *MemoryRepository) QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.logs)
	}
	limit := q.EffectiveLimit()
	out := make([]DecisionLog, 0, min(limit, size))
	for i := 1; i <= size && len(out) < limit; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := r.logs[(r.next-i+len(r.logs))%len(r.logs)]
		if q.Matches(log) {
			out = append(out, log)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return len(r.logs)
	}
	return r.next
}
