// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dev-mohitbeniwal/themis/controller"
	"github.com/dev-mohitbeniwal/themis/fetcher"
	"github.com/dev-mohitbeniwal/themis/middleware"
	"github.com/dev-mohitbeniwal/themis/telemetry"
)

type Options struct {
	ServiceName         string
	AdminAPIKey         string
	PublicAuthnRequired bool
	Tracing             bool
	Metrics             *telemetry.Metrics

	// Limiter is skipped when nil.
	Limiter           middleware.Limiter
	RateLimitRequests int
	RateLimitWindow   time.Duration

	FetcherRoutes map[string]fetcher.RouteRegistrar
}

func SetupRouter(controllers *controller.Controllers, opts Options) *gin.Engine {
	router := gin.New()
	// entity uris travel percent-encoded in path segments
	router.UseRawPath = true
	router.UnescapePathValues = true

	router.Use(gin.Recovery())
	if opts.Tracing {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(opts.Metrics))
	if opts.Limiter != nil {
		router.Use(middleware.RateLimiter(opts.Limiter, opts.RateLimitRequests, opts.RateLimitWindow))
	}

	controllers.Health.RegisterRoutes(router.Group(""))
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	public := router.Group("")
	if opts.PublicAuthnRequired {
		public.Use(middleware.RequireAPIKey(opts.AdminAPIKey))
	}
	controllers.Decision.RegisterRoutes(public)

	admin := router.Group("/admin", middleware.RequireAPIKey(opts.AdminAPIKey))
	controllers.Policy.RegisterRoutes(admin)
	controllers.Audit.RegisterRoutes(admin)

	fetchers := admin.Group("/fetchers")
	for id, register := range opts.FetcherRoutes {
		register(fetchers.Group("/" + id))
	}

	return router
}
