package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	themis_errors "github.com/dev-mohitbeniwal/themis/errors"
	logger "github.com/dev-mohitbeniwal/themis/logging"
)

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Factory keeps the registration table, the built fetchers and their
// routers.
type Factory struct {
	mu            sync.RWMutex
	registrations map[string]Registration
	fetchers      map[string]Fetcher
	routers       map[string]RouteRegistrar
}

func NewFactory() *Factory {
	return &Factory{
		registrations: make(map[string]Registration),
		fetchers:      make(map[string]Fetcher),
		routers:       make(map[string]RouteRegistrar),
	}
}

// Register adds a fetcher kind under id, replacing any earlier entry.
func (f *Factory) Register(id string, reg Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registrations[id] = reg
}

// Initialize builds every configured fetcher, then runs PostInit hooks in id
// order. On failure every fetcher built so far is closed.
func (f *Factory) Initialize(ctx context.Context, configs map[string]map[string]any) error {
	f.mu.Lock()
	ids := sortedKeys(configs)
	for _, id := range ids {
		reg, ok := f.registrations[id]
		if !ok {
			f.mu.Unlock()
			f.Close()
			return fmt.Errorf("%w: %s", themis_errors.ErrUnknownFetcher, id)
		}

		cfg := reg.NewConfig()
		if err := DecodeConfig(configs[id], cfg); err != nil {
			f.mu.Unlock()
			f.Close()
			return fmt.Errorf("fetcher %s: %w", id, err)
		}

		built, err := reg.Build(ctx, cfg)
		if err != nil {
			f.mu.Unlock()
			f.Close()
			return fmt.Errorf("fetcher %s: %w", id, err)
		}
		f.fetchers[id] = built
		if reg.Routes != nil {
			f.routers[id] = reg.Routes(built)
		}
		logger.Info("Fetcher initialized", zap.String("fetcher", id))
	}
	f.mu.Unlock()

	for _, id := range ids {
		hook, ok := f.fetchers[id].(PostIniter)
		if !ok {
			continue
		}
		if err := hook.PostInit(ctx, f); err != nil {
			f.Close()
			return fmt.Errorf("fetcher %s post init: %w", id, err)
		}
	}
	return nil
}

// DecodeConfig decodes raw into cfg, rejecting unknown keys, and validates
// the result.
func DecodeConfig(raw map[string]any, cfg any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", themis_errors.ErrInvalidFetcherConfig, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", themis_errors.ErrInvalidFetcherConfig, err)
	}
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", themis_errors.ErrInvalidFetcherConfig, err)
	}
	return nil
}

func (f *Factory) Get(id string) (Fetcher, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	built, ok := f.fetchers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", themis_errors.ErrFetcherNotInitialized, id)
	}
	return built, nil
}

// All returns a copy of the initialized fetchers keyed by id.
func (f *Factory) All() map[string]Fetcher {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]Fetcher, len(f.fetchers))
	for id, built := range f.fetchers {
		out[id] = built
	}
	return out
}

// IDs lists the initialized fetchers in sorted order.
func (f *Factory) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sortedKeys(f.fetchers)
}

// Routers returns the admin route registrars keyed by fetcher id.
func (f *Factory) Routers() map[string]RouteRegistrar {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]RouteRegistrar, len(f.routers))
	for id, r := range f.routers {
		out[id] = r
	}
	return out
}

// Close releases every fetcher that holds resources.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for id, built := range f.fetchers {
		closer, ok := built.(io.Closer)
		if !ok {
			continue
		}
		start := time.Now()
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close fetcher", zap.String("fetcher", id), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		logger.Debug("Fetcher closed", zap.String("fetcher", id), zap.Duration("duration", time.Since(start)))
	}
	f.fetchers = make(map[string]Fetcher)
	f.routers = make(map[string]RouteRegistrar)
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
