package engine

import (
	"fmt"

	"github.com/dev-mohitbeniwal/themis/model"
	pdp_model "github.com/dev-mohitbeniwal/themis/pdp/model"
)

const (
	AlgorithmExplicitPrecedence = "explicit-precedence"
	AlgorithmDenyOverrides      = "deny-overrides"
)

// CombiningAlgorithm reduces per-policy results to one decision.
type CombiningAlgorithm interface {
	Name() string
	Combine(results []pdp_model.PolicyEvaluationResult) pdp_model.PolicyEvaluationResult
}

// CombiningAlgorithmByName resolves a configured algorithm name. An empty
// name selects explicit precedence.
func CombiningAlgorithmByName(name string) (CombiningAlgorithm, error) {
	switch name {
	case "", AlgorithmExplicitPrecedence:
		return ExplicitPrecedence{}, nil
	case AlgorithmDenyOverrides:
		return DenyOverrides{}, nil
	default:
		return nil, fmt.Errorf("unknown combining algorithm %q", name)
	}
}

// ExplicitPrecedence: explicit deny, then explicit allow, then a default
// deny, then the fallback deny.
type ExplicitPrecedence struct{}

func (ExplicitPrecedence) Name() string { return AlgorithmExplicitPrecedence }

func (ExplicitPrecedence) Combine(results []pdp_model.PolicyEvaluationResult) pdp_model.PolicyEvaluationResult {
	if r, ok := first(results, func(r pdp_model.PolicyEvaluationResult) bool {
		return r.MatchedRule != nil && r.Effect == model.EffectDeny
	}); ok {
		return r
	}
	if r, ok := first(results, func(r pdp_model.PolicyEvaluationResult) bool {
		return r.MatchedRule != nil && r.Effect == model.EffectAllow
	}); ok {
		return r
	}
	if r, ok := first(results, func(r pdp_model.PolicyEvaluationResult) bool {
		return r.Effect == model.EffectDeny
	}); ok {
		return r
	}
	return pdp_model.FallbackDeny()
}

// DenyOverrides: any deny wins whether explicit or default, then any
// explicit allow, then the fallback deny.
type DenyOverrides struct{}

func (DenyOverrides) Name() string { return AlgorithmDenyOverrides }

func (DenyOverrides) Combine(results []pdp_model.PolicyEvaluationResult) pdp_model.PolicyEvaluationResult {
	if r, ok := first(results, func(r pdp_model.PolicyEvaluationResult) bool {
		return r.MatchedRule != nil && r.Effect == model.EffectDeny
	}); ok {
		return r
	}
	if r, ok := first(results, func(r pdp_model.PolicyEvaluationResult) bool {
		return r.Effect == model.EffectDeny
	}); ok {
		return r
	}
	if r, ok := first(results, func(r pdp_model.PolicyEvaluationResult) bool {
		return r.MatchedRule != nil && r.Effect == model.EffectAllow
	}); ok {
		return r
	}
	return pdp_model.FallbackDeny()
}

func first(results []pdp_model.PolicyEvaluationResult, pred func(pdp_model.PolicyEvaluationResult) bool) (pdp_model.PolicyEvaluationResult, bool) {
	for _, r := range results {
		if pred(r) {
			return r, true
		}
	}
	return pdp_model.PolicyEvaluationResult{}, false
}
