package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/pdp/store"
)

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) CreatePolicy(ctx context.Context, policy model.Policy) error {
	return m.Called(ctx, policy).Error(0)
}

func (m *mockPersister) DeletePolicy(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockPersister) ListPolicies(ctx context.Context) ([]model.Policy, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Policy), args.Error(1)
}

func policy(name string) model.Policy {
	return model.Policy{
		Name: name,
		Rules: []model.Rule{{
			Name:    "allow",
			Effect:  model.EffectAllow,
			Actions: []string{"read"},
		}},
	}
}

func TestAddGetRemove(t *testing.T) {
	ctx := context.Background()
	s := store.NewPolicyStore(nil)

	added, err := s.Add(ctx, policy("Team Docs"))
	require.NoError(t, err)
	assert.Equal(t, "team-docs", added.Name)

	got, ok := s.Get("team-docs")
	require.True(t, ok)
	assert.Equal(t, added, got)

	_, err = s.Add(ctx, policy("team docs"))
	assert.ErrorIs(t, err, themis_errors.ErrPolicyConflict)
	assert.Equal(t, 1, s.Len())

	removed, err := s.Remove(ctx, "team-docs")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "team-docs")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok = s.Get("team-docs")
	assert.False(t, ok)
}

func TestAddRejectsInvalidPolicy(t *testing.T) {
	s := store.NewPolicyStore(nil)
	_, err := s.Add(context.Background(), model.Policy{Name: "***"})
	assert.ErrorIs(t, err, themis_errors.ErrSchemaViolation)
	assert.Equal(t, 0, s.Len())
}

func TestListSortedByName(t *testing.T) {
	ctx := context.Background()
	s := store.NewPolicyStore(nil)
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		_, err := s.Add(ctx, policy(name))
		require.NoError(t, err)
	}

	var names []string
	for _, p := range s.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, names)
	assert.Equal(t, "charlie", s.Snapshot()[0].Name)
}

func TestSnapshotIsStableAcrossWrites(t *testing.T) {
	ctx := context.Background()
	s := store.NewPolicyStore(nil)
	_, err := s.Add(ctx, policy("first"))
	require.NoError(t, err)

	before := s.Snapshot()
	_, err = s.Add(ctx, policy("second"))
	require.NoError(t, err)

	assert.Len(t, before, 1)
	assert.Len(t, s.Snapshot(), 2)
}

func TestConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	ctx := context.Background()
	s := store.NewPolicyStore(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = s.Add(ctx, policy(fmt.Sprintf("p-%d", i)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, p := range s.Snapshot() {
				assert.NotEmpty(t, p.Name)
				assert.Len(t, p.Rules, 1)
			}
		}
	}()
	wg.Wait()
	assert.Equal(t, 200, s.Len())
}

func TestPersisterIsWrittenThroughAndLoaded(t *testing.T) {
	ctx := context.Background()
	persister := new(mockPersister)
	persister.On("CreatePolicy", ctx, mock.MatchedBy(func(p model.Policy) bool { return p.Name == "docs" })).Return(nil)
	persister.On("DeletePolicy", ctx, "docs").Return(true, nil)

	s := store.NewPolicyStore(persister)
	_, err := s.Add(ctx, policy("docs"))
	require.NoError(t, err)
	_, err = s.Remove(ctx, "docs")
	require.NoError(t, err)
	persister.AssertExpectations(t)

	reloaded := new(mockPersister)
	reloaded.On("ListPolicies", ctx).Return([]model.Policy{policy("restored"), {Name: ""}}, nil)
	s = store.NewPolicyStore(reloaded)
	require.NoError(t, s.Load(ctx))
	_, ok := s.Get("restored")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestPersisterFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	persister := new(mockPersister)
	persister.On("CreatePolicy", ctx, mock.Anything).Return(themis_errors.ErrDatabaseOperation)

	s := store.NewPolicyStore(persister)
	_, err := s.Add(ctx, policy("docs"))
	assert.True(t, errors.Is(err, themis_errors.ErrDatabaseOperation))
	assert.Equal(t, 0, s.Len())
}
