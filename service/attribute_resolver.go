// service/attribute_resolver.go
package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	"github.com/dev-mohitbeniwal/themis/fetcher"
	"github.com/dev-mohitbeniwal/themis/fetcher/registry"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/model"
	"github.com/dev-mohitbeniwal/themis/telemetry"
)

// AttributeResolver merges fetched and supplied attributes for one entity
// reference. It keeps no state between calls.
type AttributeResolver struct {
	factory        *fetcher.Factory
	defaultFetcher string
}

func NewAttributeResolver(factory *fetcher.Factory) *AttributeResolver {
	return &AttributeResolver{factory: factory, defaultFetcher: registry.ID}
}

// fetcherFor picks the first fetcher, by id, whose MatchURI accepts uri and
// falls back to the registry when none does.
func (r *AttributeResolver) fetcherFor(uri string) (string, fetcher.Fetcher) {
	if r.factory == nil {
		return "", nil
	}
	all := r.factory.All()
	for _, id := range r.factory.IDs() {
		if m, ok := all[id].(fetcher.URIMatcher); ok && m.MatchURI(uri) {
			return id, all[id]
		}
	}
	if f, ok := all[r.defaultFetcher]; ok {
		return r.defaultFetcher, f
	}
	return "", nil
}

func (r *AttributeResolver) Resolve(ctx context.Context, ref *model.EntityRef) (model.Attributes, error) {
	effective := model.Attributes{}

	if ref.URI != "" {
		if id, f := r.fetcherFor(ref.URI); f != nil {
			fetched, err := r.fetch(ctx, id, f, ref.URI)
			if err != nil {
				return nil, err
			}
			for k, v := range fetched {
				effective[k] = v
			}
		}
	}

	for _, key := range ref.Attributes.Keys() {
		supplied := ref.Attributes[key]
		if existing, ok := effective[key]; ok && !existing.Equal(supplied) {
			logger.Debug("Attribute collision", zap.String("key", key))
			return nil, &themis_errors.AttributeCollisionError{Key: key}
		}
		effective[key] = supplied
	}
	return effective, nil
}

func (r *AttributeResolver) fetch(ctx context.Context, id string, f fetcher.Fetcher, uri string) (model.Attributes, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "AttributeResolver.Fetch")
	span.SetAttributes(attribute.String("themis.fetcher", id))
	defer span.End()

	fetched, err := f.FetchAttributes(ctx, uri)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() != nil {
			return nil, themis_errors.ErrCancelled
		}
		return nil, err
	}
	return fetched, nil
}
