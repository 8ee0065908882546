// Package fetcher defines attribute sources and the factory that builds
// them from configuration.
package fetcher

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/themis/model"
)

// Fetcher returns the attributes known for uri. An unknown uri yields an
// empty map, not an error.
type Fetcher interface {
	FetchAttributes(ctx context.Context, uri string) (model.Attributes, error)
}

// PostIniter runs after every configured fetcher has been built.
type PostIniter interface {
	PostInit(ctx context.Context, factory *Factory) error
}

// URIMatcher lets a fetcher claim the uris it serves during resolution.
type URIMatcher interface {
	MatchURI(uri string) bool
}

// RouteRegistrar mounts a fetcher's admin routes.
type RouteRegistrar func(r *gin.RouterGroup)

// Registration describes how to build one kind of fetcher.
type Registration struct {
	NewConfig func() any
	Build     func(ctx context.Context, cfg any) (Fetcher, error)
	Routes    func(f Fetcher) RouteRegistrar
}

// Define builds a Registration around a typed config. newConfig returns the
// config pre-filled with defaults.
func Define[C any](
	newConfig func() *C,
	build func(ctx context.Context, cfg *C) (Fetcher, error),
	routes func(f Fetcher) RouteRegistrar,
) Registration {
	return Registration{
		NewConfig: func() any { return newConfig() },
		Build: func(ctx context.Context, cfg any) (Fetcher, error) {
			return build(ctx, cfg.(*C))
		},
		Routes: routes,
	}
}
