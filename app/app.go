// Package app assembles the decision service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/themis/audit"
	"github.com/dev-mohitbeniwal/themis/config"
	"github.com/dev-mohitbeniwal/themis/controller"
	"github.com/dev-mohitbeniwal/themis/dao"
	"github.com/dev-mohitbeniwal/themis/db"
	"github.com/dev-mohitbeniwal/themis/fetcher"
	"github.com/dev-mohitbeniwal/themis/fetcher/graph"
	"github.com/dev-mohitbeniwal/themis/fetcher/passport"
	"github.com/dev-mohitbeniwal/themis/fetcher/registry"
	logger "github.com/dev-mohitbeniwal/themis/logging"
	"github.com/dev-mohitbeniwal/themis/middleware"
	"github.com/dev-mohitbeniwal/themis/pdp/engine"
	"github.com/dev-mohitbeniwal/themis/pdp/store"
	"github.com/dev-mohitbeniwal/themis/router"
	"github.com/dev-mohitbeniwal/themis/service"
	"github.com/dev-mohitbeniwal/themis/telemetry"
	"github.com/dev-mohitbeniwal/themis/util"
)

// App owns every long-lived component. Close releases them in reverse
// order of construction.
type App struct {
	Config   *config.Configuration
	Router   *gin.Engine
	Factory  *fetcher.Factory
	Store    *store.PolicyStore
	Services *service.Services
	Audit    audit.Service
	EventBus *util.EventBus
	Metrics  *telemetry.Metrics

	closers []func(context.Context) error
}

// Registrations lists the fetcher kinds FETCHERS may configure.
func Registrations() map[string]fetcher.Registration {
	return map[string]fetcher.Registration{
		registry.ID: registry.Registration(),
		passport.ID: passport.Registration(),
		graph.ID:    graph.Registration(),
	}
}

func New(ctx context.Context, cfg *config.Configuration) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	util.DebugErrors = cfg.Debug

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.SetupTraceProvider(ctx, cfg.Tracing.Endpoint, cfg.ProjectName, config.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		a.onClose(shutdown)
		logger.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	a.Metrics = telemetry.NewMetrics()

	busCtx, stopBus := context.WithCancel(context.Background())
	a.EventBus = util.NewEventBus()
	a.EventBus.Start(busCtx)
	util.NewNotificationService().Subscribe(a.EventBus)
	a.onClose(func(context.Context) error {
		a.EventBus.Wait()
		stopBus()
		return nil
	})

	if err := a.initPolicyStore(ctx); err != nil {
		return nil, err
	}

	a.Factory = fetcher.NewFactory()
	for id, reg := range Registrations() {
		a.Factory.Register(id, reg)
	}
	if err := a.Factory.Initialize(ctx, cfg.Fetchers); err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return a.Factory.Close() })

	combiner, err := engine.CombiningAlgorithmByName(cfg.Engine.CombiningAlgorithm)
	if err != nil {
		return nil, err
	}
	evaluator := engine.NewPolicyEvaluator(combiner)

	if err := a.initAudit(); err != nil {
		return nil, err
	}

	limiter, err := a.initLimiter(ctx)
	if err != nil {
		return nil, err
	}

	a.Services = service.InitializeServices(a.Store, a.Factory, evaluator, a.EventBus, a.Metrics, service.DecisionOptions{
		BulkMaxRequests: cfg.Bulk.MaxRequests,
		BulkBatchSize:   cfg.Bulk.BatchSize,
	})
	controllers := controller.InitializeControllers(a.Services, a.Audit)

	a.Router = router.SetupRouter(controllers, router.Options{
		ServiceName:         cfg.ProjectName,
		AdminAPIKey:         cfg.Auth.AdminAPIKey,
		PublicAuthnRequired: cfg.Auth.PublicAuthnRequired,
		Tracing:             cfg.Tracing.Enabled,
		Metrics:             a.Metrics,
		Limiter:             limiter,
		RateLimitRequests:   cfg.RateLimit.Requests,
		RateLimitWindow:     cfg.RateLimit.Window,
		FetcherRoutes:       a.Factory.Routers(),
	})

	logger.Info("Themis initialized",
		zap.Strings("fetchers", a.Factory.IDs()),
		zap.String("combiningAlgorithm", evaluator.Algorithm()),
		zap.Int("policies", a.Store.Len()))
	return a, nil
}

func (a *App) initPolicyStore(ctx context.Context) error {
	if !a.Config.Engine.SQLDatabase {
		a.Store = store.NewPolicyStore(nil)
		return nil
	}

	gdb, err := db.OpenSQL(a.Config.Engine.SQLDatabaseURL, db.SQLOptions{Tracing: a.Config.Tracing.Enabled})
	if err != nil {
		return fmt.Errorf("failed to open policy database: %w", err)
	}
	a.onClose(func(context.Context) error {
		db.CloseSQL(gdb)
		return nil
	})

	policyDAO, err := dao.NewPolicyDAO(gdb)
	if err != nil {
		return err
	}
	a.Store = store.NewPolicyStore(policyDAO)
	if err := a.Store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	return nil
}

func (a *App) initAudit() error {
	var repo audit.Repository
	if a.Config.Elasticsearch.URL != "" {
		esRepo, err := audit.NewElasticsearchRepository(a.Config.Elasticsearch.URL, a.Config.Elasticsearch.Index)
		if err != nil {
			return fmt.Errorf("failed to create audit repository: %w", err)
		}
		repo = esRepo
	} else {
		repo = audit.NewMemoryRepository(audit.DefaultMemoryCapacity)
	}
	a.Audit = audit.NewService(repo)
	audit.Subscribe(a.EventBus, a.Audit)
	return nil
}

// initLimiter returns nil when rate limiting is disabled.
func (a *App) initLimiter(ctx context.Context) (middleware.Limiter, error) {
	rl := a.Config.RateLimit
	if rl.Requests <= 0 {
		return nil, nil
	}
	if a.Config.Redis.Addr == "" {
		return middleware.NewLocalLimiter(rl.Requests, rl.Window), nil
	}

	client, err := db.NewRedisClient(ctx, db.RedisOptions{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error {
		db.CloseRedis(client)
		return nil
	})
	if a.Config.Tracing.Enabled {
		if err := instrumentRedis(client); err != nil {
			return nil, err
		}
	}
	return middleware.NewRedisLimiter(client, rl.Requests, rl.Window), nil
}

func instrumentRedis(client *redis.Client) error {
	err := redisotel.InstrumentTracing(
		client,
		redisotel.WithAttributes(
			attribute.KeyValue{
				Key:   "db.name",
				Value: attribute.StringValue("redis"),
			},
		),
	)
	if err != nil {
		return fmt.Errorf("failed to set up redis tracing: %w", err)
	}
	return nil
}

// Server wraps the router in an http.Server listening on the configured
// port.
func (a *App) Server() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", a.Config.Server.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
