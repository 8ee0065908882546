// service/decision_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/themis/audit"
	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/pdp/engine"
	pdp_model "github.com/dev-mohitbeniwal/themis/pdp/model"
	"github.com/dev-mohitbeniwal/themis/pdp/store"
	"github.com/dev-mohitbeniwal/themis/telemetry"
	"github.com/dev-mohitbeniwal/themis/util"
)

const (
	DefaultBulkMaxRequests = 100
	DefaultBulkBatchSize   = 10
)

type DecisionOptions struct {
	BulkMaxRequests int
	BulkBatchSize   int
}

// DecisionService answers check requests against the current policy
// snapshot.
type DecisionService struct {
	store     *store.PolicyStore
	evaluator *engine.PolicyEvaluator
	resolver  IAttributeResolver
	eventBus  *util.EventBus
	metrics   *telemetry.Metrics
	opts      DecisionOptions
	now       func() time.Time
}

func NewDecisionService(
	policyStore *store.PolicyStore,
	evaluator *engine.PolicyEvaluator,
	resolver IAttributeResolver,
	eventBus *util.EventBus,
	metrics *telemetry.Metrics,
	opts DecisionOptions,
) *DecisionService {
	if opts.BulkMaxRequests <= 0 {
		opts.BulkMaxRequests = DefaultBulkMaxRequests
	}
	if opts.BulkBatchSize <= 0 {
		opts.BulkBatchSize = DefaultBulkBatchSize
	}
	return &DecisionService{
		store:     policyStore,
		evaluator: evaluator,
		resolver:  resolver,
		eventBus:  eventBus,
		metrics:   metrics,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *DecisionService) Check(ctx context.Context, req model.CheckRequest) (*model.CheckResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "DecisionService.Check")
	defer span.End()

	resp, err := s.decide(ctx, req, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, themis_errors.Kind(err))
		return nil, err
	}
	span.SetAttributes(attribute.Bool("themis.allowed", resp.Allowed), attribute.String("themis.reason", resp.Reason))
	return resp, nil
}

// BulkCheck decides every request independently. A failed item becomes
// {allowed: false, reason: <kind>} at its own index.
func (s *DecisionService) BulkCheck(ctx context.Context, reqs []model.CheckRequest) ([]model.CheckResponse, error) {
	if len(reqs) > s.opts.BulkMaxRequests {
		return nil, fmt.Errorf("%w: %d requests, limit is %d",
			themis_errors.ErrTooManyRequests, len(reqs), s.opts.BulkMaxRequests)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "DecisionService.BulkCheck")
	span.SetAttributes(attribute.Int("themis.bulk.size", len(reqs)))
	defer span.End()

	start := s.now()
	responses := util.ProcessBatch(ctx, reqs, s.opts.BulkBatchSize,
		func(ctx context.Context, req model.CheckRequest) model.CheckResponse {
			done := s.metrics.TrackBulkItem()
			defer done()

			resp, err := s.decide(ctx, req, true)
			if err != nil {
				return model.CheckResponse{Allowed: false, Reason: themis_errors.Kind(err)}
			}
			return *resp
		},
		func(err error) model.CheckResponse {
			s.metrics.ObserveDecisionError(themis_errors.KindCancelled)
			return model.CheckResponse{Allowed: false, Reason: themis_errors.KindCancelled}
		},
	)

	logger.Debug("Bulk check completed",
		zap.Int("count", len(reqs)),
		zap.Duration("duration", s.now().Sub(start)))
	return responses, nil
}

func (s *DecisionService) decide(ctx context.Context, req model.CheckRequest, bulk bool) (*model.CheckResponse, error) {
	start := s.now()
	resp, principalURI, resourceURI, err := s.evaluate(ctx, &req)
	if err != nil {
		s.metrics.ObserveDecisionError(themis_errors.Kind(err))
		logger.Debug("Decision failed", zap.String("kind", themis_errors.Kind(err)), zap.Error(err))
		return nil, err
	}

	s.metrics.ObserveDecision(resp.Allowed)
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, util.EventDecisionEvaluated, audit.DecisionLog{
			ID:             uuid.NewString(),
			Timestamp:      start.UTC(),
			PrincipalURI:   principalURI,
			ResourceURI:    resourceURI,
			Action:         req.Action,
			Allowed:        resp.Allowed,
			Reason:         resp.Reason,
			DurationMicros: s.now().Sub(start).Microseconds(),
			Bulk:           bulk,
		})
	}
	return resp, nil
}

func (s *DecisionService) evaluate(ctx context.Context, req *model.CheckRequest) (*model.CheckResponse, string, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", "", err
	}
	if err := req.Normalize(); err != nil {
		return nil, "", "", err
	}

	principal, err := s.resolver.Resolve(ctx, &req.Principal)
	if err != nil {
		return nil, "", "", err
	}
	resource, err := s.resolver.Resolve(ctx, &req.Resource)
	if err != nil {
		return nil, "", "", err
	}

	evalReq := pdp_model.EvaluationRequest{
		Principal: req.Principal.Object(principal),
		Resource:  req.Resource.Object(resource),
		Action:    req.Action,
	}
	result := s.evaluator.EvaluateAll(s.store.Snapshot(), &evalReq)

	resp := &model.CheckResponse{
		Allowed: result.Effect == model.EffectAllow,
		Reason:  result.Reason(),
	}
	return resp, auditURI(&req.Principal, principal), auditURI(&req.Resource, resource), nil
}

// auditURI prefers the uri a fetcher resolved, so bearer tokens passed as
// uris never reach the audit trail.
func auditURI(ref *model.EntityRef, resolved model.Attributes) string {
	if v, ok := resolved["uri"]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ref.URI
}
