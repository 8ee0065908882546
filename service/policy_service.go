// service/policy_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/pdp/store"
	"github.com/dev-mohitbeniwal/themis/util"
)

// PolicyService handles business logic for policy operations
type PolicyService struct {
	store    *store.PolicyStore
	eventBus *util.EventBus
}

func NewPolicyService(policyStore *store.PolicyStore, eventBus *util.EventBus) *PolicyService {
	return &PolicyService{store: policyStore, eventBus: eventBus}
}

func (s *PolicyService) CreatePolicy(ctx context.Context, policy model.Policy) (*model.Policy, error) {
	created, err := s.store.Add(ctx, policy)
	if err != nil {
		logger.Error("Error creating policy", zap.Error(err), zap.String("policyName", policy.Name))
		return nil, err
	}

	s.publish(ctx, util.EventPolicyCreated, created.Name)
	logger.Info("Policy created successfully",
		zap.String("policyName", created.Name),
		zap.Int("rules", len(created.Rules)))
	return created, nil
}

// CreateSimplePolicy builds a one-rule allow policy whose conditions require
// every attribute supplied on the request's principal and resource.
func (s *PolicyService) CreateSimplePolicy(ctx context.Context, name string, req model.CheckRequest) (*model.Policy, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", themis_errors.ErrSchemaViolation)
	}
	action := req.Action
	if action == "" {
		action = model.DefaultAction
	}

	rule := model.Rule{
		Name:                name,
		Description:         "Automatically generated rule for " + name,
		Effect:              model.EffectAllow,
		PrincipalConditions: equalityConditions(req.Principal.Attributes),
		ResourceConditions:  equalityConditions(req.Resource.Attributes),
		Actions:             []string{action},
	}
	return s.CreatePolicy(ctx, model.Policy{
		Name:          name,
		Rules:         []model.Rule{rule},
		DefaultEffect: model.EffectDeny,
	})
}

func equalityConditions(attrs model.Attributes) []model.Condition {
	conditions := make([]model.Condition, 0, len(attrs))
	for _, key := range attrs.Keys() {
		conditions = append(conditions, model.Condition{
			Path:     "attributes." + key,
			Operator: model.OpEquals,
			Value:    attrs[key],
		})
	}
	return conditions
}

func (s *PolicyService) GetPolicy(ctx context.Context, name string) (*model.Policy, error) {
	policy, ok := s.store.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", themis_errors.ErrPolicyNotFound, name)
	}
	return policy, nil
}

func (s *PolicyService) ListPolicies(ctx context.Context) ([]*model.Policy, error) {
	return s.store.List(), nil
}

func (s *PolicyService) DeletePolicy(ctx context.Context, name string) (bool, error) {
	removed, err := s.store.Remove(ctx, name)
	if err != nil {
		logger.Error("Error deleting policy", zap.Error(err), zap.String("policyName", name))
		return false, err
	}
	if removed {
		s.publish(ctx, util.EventPolicyDeleted, name)
		logger.Info("Policy deleted successfully", zap.String("policyName", name))
	}
	return removed, nil
}

func (s *PolicyService) publish(ctx context.Context, eventType, name string) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, eventType, name)
	}
}
