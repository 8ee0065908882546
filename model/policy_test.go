package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/model"
)

const samplePolicy = `{
	"name": "Admin Access",
	"rules": [{
		"name": "Admin Access",
		"effect": "allow",
		"principal_conditions": [{"path": "attributes.role", "operator": "equals", "value": "admin"}],
		"actions": ["read"]
	}]
}`

func TestPolicyNormalizeDefaults(t *testing.T) {
	var p model.Policy
	require.NoError(t, json.Unmarshal([]byte(samplePolicy), &p))
	require.NoError(t, p.Normalize())

	assert.Equal(t, "admin-access", p.Name)
	assert.Equal(t, model.DefaultPolicyVersion, p.Version)
	assert.Equal(t, model.EffectDeny, p.DefaultEffect)
	assert.Equal(t, "admin-access", p.Rules[0].Name)
	assert.NotNil(t, p.Rules[0].ResourceConditions)
}

func TestPolicyNormalizeRejects(t *testing.T) {
	cases := map[string]func(p *model.Policy){
		"empty name":         func(p *model.Policy) { p.Name = "!!!" },
		"empty rule name":    func(p *model.Policy) { p.Rules[0].Name = "  " },
		"duplicate rule":     func(p *model.Policy) { p.Rules = append(p.Rules, p.Rules[0]) },
		"bad effect":         func(p *model.Policy) { p.Rules[0].Effect = "maybe" },
		"bad default effect": func(p *model.Policy) { p.DefaultEffect = "permit" },
		"bad operator":       func(p *model.Policy) { p.Rules[0].PrincipalConditions[0].Operator = "like" },
		"bad path":           func(p *model.Policy) { p.Rules[0].PrincipalConditions[0].Path = "attributes..role" },
		"no actions":         func(p *model.Policy) { p.Rules[0].Actions = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			var p model.Policy
			require.NoError(t, json.Unmarshal([]byte(samplePolicy), &p))
			mutate(&p)
			err := p.Normalize()
			require.Error(t, err)
			assert.True(t, errors.Is(err, themis_errors.ErrSchemaViolation))
		})
	}
}

func TestCheckRequestNormalize(t *testing.T) {
	req := model.CheckRequest{
		Principal: model.EntityRef{URI: "user://alice"},
		Resource:  model.EntityRef{Attributes: model.Attributes{"kind": model.StringValue("doc")}},
	}
	require.NoError(t, req.Normalize())
	assert.Equal(t, model.DefaultAction, req.Action)
	assert.Equal(t, model.EntityPrincipal, req.Principal.Type)
	assert.Equal(t, model.EntityResource, req.Resource.Type)

	empty := model.CheckRequest{Resource: model.EntityRef{URI: "doc://1"}}
	assert.ErrorIs(t, empty.Normalize(), themis_errors.ErrSchemaViolation)
}

func TestEntityRefObject(t *testing.T) {
	ref := model.EntityRef{URI: "user://alice", Type: model.EntityPrincipal}
	obj := ref.Object(model.Attributes{"role": model.StringValue("admin")})

	assert.Equal(t, model.StringValue("user://alice"), obj.Get("uri"))
	assert.Equal(t, model.StringValue("principal"), obj.Get("type"))
	assert.Equal(t, model.StringValue("admin"), obj.Get("attributes.role"))
}
