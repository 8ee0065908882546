package engine

import (
	"github.com/dev-mohitbeniwal/themis/model"
	pdp_model "github.com/dev-mohitbeniwal/themis/pdp/model"
)

// PolicyEvaluator is pure: it holds no state besides the combining
// algorithm and is safe for concurrent use.
type PolicyEvaluator struct {
	combiner CombiningAlgorithm
}

func NewPolicyEvaluator(combiner CombiningAlgorithm) *PolicyEvaluator {
	if combiner == nil {
		combiner = ExplicitPrecedence{}
	}
	return &PolicyEvaluator{combiner: combiner}
}

func (pe *PolicyEvaluator) Algorithm() string {
	return pe.combiner.Name()
}

// EvaluateRule matches the action, then every principal condition, then
// every resource condition.
func (pe *PolicyEvaluator) EvaluateRule(rule *model.Rule, req *pdp_model.EvaluationRequest) bool {
	if !containsAction(rule.Actions, req.Action) {
		return false
	}
	if !pe.evaluateConditions(rule.PrincipalConditions, req.Principal) {
		return false
	}
	return pe.evaluateConditions(rule.ResourceConditions, req.Resource)
}

// EvaluatePolicy returns the effect of the first matching rule, or the
// policy default with no matched rule.
func (pe *PolicyEvaluator) EvaluatePolicy(policy *model.Policy, req *pdp_model.EvaluationRequest) pdp_model.PolicyEvaluationResult {
	for i := range policy.Rules {
		rule := &policy.Rules[i]
		if pe.EvaluateRule(rule, req) {
			return pdp_model.PolicyEvaluationResult{
				Effect:      rule.Effect,
				MatchedRule: rule,
				PolicyName:  policy.Name,
			}
		}
	}
	return pdp_model.PolicyEvaluationResult{
		Effect:     policy.DefaultEffect,
		PolicyName: policy.Name,
	}
}

func (pe *PolicyEvaluator) EvaluateAll(policies []*model.Policy, req *pdp_model.EvaluationRequest) pdp_model.PolicyEvaluationResult {
	results := make([]pdp_model.PolicyEvaluationResult, 0, len(policies))
	for _, policy := range policies {
		results = append(results, pe.EvaluatePolicy(policy, req))
	}
	return pe.combiner.Combine(results)
}

func (pe *PolicyEvaluator) evaluateConditions(conditions []model.Condition, entity model.Value) bool {
	for _, condition := range conditions {
		if !Apply(condition.Operator, condition.Value, entity.Get(condition.Path)) {
			return false
		}
	}
	return true
}

func containsAction(actions []string, action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
