// service/services.go
package service

import (
	"github.com/dev-mohitbeniwal/themis/fetcher"
	"github.com/dev-mohitbeniwal/themis/pdp/engine"
	"github.com/dev-mohitbeniwal/themis/pdp/store"
	"github.com/dev-mohitbeniwal/themis/telemetry"
	"github.com/dev-mohitbeniwal/themis/util"
)

type Services struct {
	Policy   IPolicyService
	Decision IDecisionService
	Resolver IAttributeResolver
}

func InitializeServices(
	policyStore *store.PolicyStore,
	factory *fetcher.Factory,
	evaluator *engine.PolicyEvaluator,
	eventBus *util.EventBus,
	metrics *telemetry.Metrics,
	opts DecisionOptions,
) *Services {
	resolver := NewAttributeResolver(factory)
	return &Services{
		Policy:   NewPolicyService(policyStore, eventBus),
		Decision: NewDecisionService(policyStore, evaluator, resolver, eventBus, metrics, opts),
		Resolver: resolver,
	}
}
