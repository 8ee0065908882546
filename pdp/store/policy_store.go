// Package store holds the authoritative in-memory policy set.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
)

// Persister mirrors store mutations into durable storage.
type Persister interface {
	CreatePolicy(ctx context.Context, policy model.Policy) error
	DeletePolicy(ctx context.Context, name string) (bool, error)
	ListPolicies(ctx context.Context) ([]model.Policy, error)
}

// snapshot is immutable once published.
type snapshot struct {
	policies []*model.Policy
	byName   map[string]*model.Policy
}

func newSnapshot(policies []*model.Policy) *snapshot {
	byName := make(map[string]*model.Policy, len(policies))
	for _, p := range policies {
		byName[p.Name] = p
	}
	return &snapshot{policies: policies, byName: byName}
}

// PolicyStore serves lock-free reads from an atomically swapped snapshot.
// Writers serialize on mu and publish a fresh copy. Policies handed out by
// the store must not be modified.
type PolicyStore struct {
	mu        sync.Mutex
	current   atomic.Pointer[snapshot]
	persister Persister
}

// NewPolicyStore creates an empty store. persister may be nil.
func NewPolicyStore(persister Persister) *PolicyStore {
	s := &PolicyStore{persister: persister}
	s.current.Store(newSnapshot(nil))
	return s
}

// Load replaces the in-memory set with the persisted policies.
func (s *PolicyStore) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.persister.ListPolicies(ctx)
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}
	policies := make([]*model.Policy, 0, len(stored))
	for i := range stored {
		p := stored[i]
		if err := p.Normalize(); err != nil {
			logger.Warn("Skipping invalid persisted policy", zap.String("policy", p.Name), zap.Error(err))
			continue
		}
		policies = append(policies, &p)
	}
	s.current.Store(newSnapshot(policies))
	logger.Info("Policies loaded", zap.Int("count", len(policies)))
	return nil
}

// Add normalizes and inserts policy. A name already present is
// ErrPolicyConflict.
func (s *PolicyStore) Add(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	p := policy.Clone()
	if err := p.Normalize(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if _, exists := cur.byName[p.Name]; exists {
		return nil, fmt.Errorf("%w: %s", themis_errors.ErrPolicyConflict, p.Name)
	}
	if s.persister != nil {
		if err := s.persister.CreatePolicy(ctx, *p); err != nil {
			return nil, err
		}
	}

	next := make([]*model.Policy, 0, len(cur.policies)+1)
	next = append(next, cur.policies...)
	next = append(next, p)
	s.current.Store(newSnapshot(next))
	return p, nil
}

// Remove deletes the named policy and reports whether it existed.
func (s *PolicyStore) Remove(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if _, exists := cur.byName[name]; !exists {
		return false, nil
	}
	if s.persister != nil {
		if _, err := s.persister.DeletePolicy(ctx, name); err != nil {
			return false, err
		}
	}

	next := make([]*model.Policy, 0, len(cur.policies))
	for _, p := range cur.policies {
		if p.Name != name {
			next = append(next, p)
		}
	}
	s.current.Store(newSnapshot(next))
	return true, nil
}

func (s *PolicyStore) Get(name string) (*model.Policy, bool) {
	p, ok := s.current.Load().byName[name]
	return p, ok
}

// List returns the policies sorted by name.
func (s *PolicyStore) List() []*model.Policy {
	out := append([]*model.Policy{}, s.current.Load().policies...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Snapshot returns the policies in insertion order as one consistent view.
func (s *PolicyStore) Snapshot() []*model.Policy {
	return s.current.Load().policies
}

func (s *PolicyStore) Len() int {
	return len(s.current.Load().policies)
}
