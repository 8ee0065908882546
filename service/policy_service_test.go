package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/util"
)

func TestPolicyServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, DecisionOptions{})

	var created, deleted atomic.Int32
	f.bus.Subscribe(util.EventPolicyCreated, func(context.Context, util.Event) error { created.Add(1); return nil })
	f.bus.Subscribe(util.EventPolicyDeleted, func(context.Context, util.Event) error { deleted.Add(1); return nil })

	p, err := f.policies.CreatePolicy(ctx, readOnlyPolicy())
	require.NoError(t, err)
	assert.Equal(t, "read-only", p.Name)

	_, err = f.policies.CreatePolicy(ctx, readOnlyPolicy())
	assert.ErrorIs(t, err, themis_errors.ErrPolicyConflict)

	got, err := f.policies.GetPolicy(ctx, "read-only")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = f.policies.GetPolicy(ctx, "missing")
	assert.ErrorIs(t, err, themis_errors.ErrPolicyNotFound)

	list, err := f.policies.ListPolicies(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	removed, err := f.policies.DeletePolicy(ctx, "read-only")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.policies.DeletePolicy(ctx, "read-only")
	require.NoError(t, err)
	assert.False(t, removed)

	f.bus.Wait()
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(1), deleted.Load())
}

func TestCreatePolicyRejectsInvalidSchema(t *testing.T) {
	f := newFixture(t, nil, DecisionOptions{})
	_, err := f.policies.CreatePolicy(context.Background(), model.Policy{
		Name:  "bad",
		Rules: []model.Rule{{Name: "r", Effect: "maybe", Actions: []string{"read"}}},
	})
	assert.ErrorIs(t, err, themis_errors.ErrSchemaViolation)
}

func TestCreateSimplePolicy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, DecisionOptions{})

	p, err := f.policies.CreateSimplePolicy(ctx, "Engineers Read", model.CheckRequest{
		Principal: model.EntityRef{Attributes: model.Attributes{"role": str("engineer"), "level": model.IntValue(2)}},
		Resource:  model.EntityRef{Attributes: model.Attributes{"kind": str("doc")}},
		Action:    "read",
	})
	require.NoError(t, err)
	assert.Equal(t, "engineers-read", p.Name)
	require.Len(t, p.Rules, 1)
	rule := p.Rules[0]
	assert.Equal(t, model.EffectAllow, rule.Effect)
	assert.Equal(t, []string{"read"}, rule.Actions)
	assert.Equal(t, []model.Condition{
		{Path: "attributes.level", Operator: model.OpEquals, Value: model.IntValue(2)},
		{Path: "attributes.role", Operator: model.OpEquals, Value: str("engineer")},
	}, rule.PrincipalConditions)
	assert.Equal(t, model.EffectDeny, p.DefaultEffect)

	resp, err := f.decider.Check(ctx, model.CheckRequest{
		Principal: model.EntityRef{Attributes: model.Attributes{"role": str("engineer"), "level": model.IntValue(2)}},
		Resource:  model.EntityRef{Attributes: model.Attributes{"kind": str("doc")}},
		Action:    "read",
	})
	require.NoError(t, err)
	assert.Equal(t, "engineers-read:engineers-read", resp.Reason)

	_, err = f.policies.CreateSimplePolicy(ctx, "", model.CheckRequest{})
	assert.ErrorIs(t, err, themis_errors.ErrSchemaViolation)
}
