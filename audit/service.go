// audit/service.go
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/util"
)

type Service interface {
	LogDecision(ctx context.Context, log DecisionLog) error
	QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogDecision(ctx context.Context, log DecisionLog) error {
	return s.repo.LogDecision(ctx, log)
}

func (s *service) QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error) {
	return s.repo.QueryDecisions(ctx, q)
}

// Subscribe records every decision event published on bus.
func Subscribe(bus *util.EventBus, svc Service) {
	bus.Subscribe(util.EventDecisionEvaluated, func(ctx context.Context, event util.Event) error {
		log, ok := event.Payload.(DecisionLog)
		if !ok {
			return fmt.Errorf("unexpected decision payload %T", event.Payload)
		}
		if err := svc.LogDecision(ctx, log); err != nil {
			logger.Warn("Failed to record decision", zap.String("decisionID", log.ID), zap.Error(err))
			return err
		}
		return nil
	})
}
