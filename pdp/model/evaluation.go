package model

import (
	"github.com/dev-mohitbeniwal/themis/model"
)

// SyntheticPolicyName labels the deny produced when no policy decided.
const SyntheticPolicyName = "default"

type PolicyEvaluationResult struct {
	Effect      model.Effect
	MatchedRule *model.Rule
	PolicyName  string
	// Fallback marks the synthetic deny returned when nothing decided.
	Fallback bool
}

// FallbackDeny is the result used when no policy produced a deny and no
// rule allowed.
func FallbackDeny() PolicyEvaluationResult {
	return PolicyEvaluationResult{Effect: model.EffectDeny, PolicyName: SyntheticPolicyName, Fallback: true}
}

// Reason renders "<policy>:<rule>", "<policy>:default" or, for the fallback,
// "default:no-policies".
func (r PolicyEvaluationResult) Reason() string {
	switch {
	case r.MatchedRule != nil:
		return r.PolicyName + ":" + r.MatchedRule.Name
	case r.Fallback:
		return SyntheticPolicyName + ":no-policies"
	default:
		return r.PolicyName + ":default"
	}
}
