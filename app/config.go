// Package app provides application services that orchestrate the
// configuration registry, permission checks and plugins.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/agencms/core/registry"
	"github.com/artpar/agencms/core/schema"
	"github.com/artpar/agencms/ports"
	"github.com/rs/zerolog"
)

// ErrUnknownPlugin is returned by Validate when a plugin name was registered
// without an implementation.
var ErrUnknownPlugin = errors.New("plugin has no implementation")

// ConfigService is the process-wide entry point to the configuration
// registry. Routes registered during bootstrap are shared by every request;
// plugins contribute actor-specific routes to a per-request copy.
type ConfigService struct {
	base    *registry.Registry
	auth    ports.Authorizer
	metrics ports.Metrics
	logger  zerolog.Logger

	mu      sync.RWMutex
	aliases map[string]ports.Plugin
}

// NewConfigService creates a config service. A nil metrics discards events.
func NewConfigService(auth ports.Authorizer, metrics ports.Metrics, logger zerolog.Logger) *ConfigService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &ConfigService{
		base:    registry.New(),
		auth:    auth,
		metrics: metrics,
		logger:  logger.With().Str("service", "config").Logger(),
		aliases: make(map[string]ports.Plugin),
	}
}

// RegisterRoute adds or replaces a route in the shared registry.
func (s *ConfigService) RegisterRoute(route schema.Route) error {
	if err := s.base.RegisterRoute(route); err != nil {
		return err
	}
	s.updateGauges()
	return nil
}

// AppendRoute merges the route's groups onto the registered route with the
// same slug. A missing slug is logged and returned as a
// *registry.RouteNotFoundError; nothing is changed.
func (s *ConfigService) AppendRoute(route schema.Route) ([]schema.GroupSpec, error) {
	return appendLogged(s.base, route, s.metrics, s.logger)
}

// Use registers a plugin implementation under its name and adds the name to
// the registry's plugin set.
func (s *ConfigService) Use(p ports.Plugin) error {
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return fmt.Errorf("%w: plugin name is required", schema.ErrInvalidArgument)
	}

	s.mu.Lock()
	s.aliases[name] = p
	s.mu.Unlock()

	s.base.RegisterPlugin(name)
	s.updateGauges()
	s.logger.Debug().Str("plugin", name).Msg("plugin registered")
	return nil
}

// RegisterPlugin adds name to the plugin set. The implementation is supplied
// separately with Use; Validate reports names that never got one.
func (s *ConfigService) RegisterPlugin(name string) bool {
	added := s.base.RegisterPlugin(name)
	s.updateGauges()
	return added
}

// Plugins returns the registered plugin names sorted.
func (s *ConfigService) Plugins() []string {
	return s.base.Plugins()
}

// Routes returns the routes registered during bootstrap.
func (s *ConfigService) Routes() []schema.RouteSpec {
	return s.base.Routes().Values()
}

// Route returns a route registered during bootstrap.
func (s *ConfigService) Route(slug string) (schema.RouteSpec, bool) {
	return s.base.Route(slug)
}

// All returns the shared document without plugin contributions.
func (s *ConfigService) All() registry.Snapshot {
	return s.base.All()
}

// Validate checks that every registered plugin name has an implementation.
func (s *ConfigService) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []string
	for _, name := range s.base.Plugins() {
		if _, ok := s.aliases[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, strings.Join(missing, ", "))
	}
	return nil
}

// Build returns the document served to actor: the shared routes plus the
// contribution of every plugin, applied in sorted name order. A failing
// plugin is logged and its partial contribution discarded.
func (s *ConfigService) Build(ctx context.Context, actor ports.Actor) (registry.Snapshot, error) {
	start := time.Now()

	scope := s.base.Clone()
	check := s.Checker(ctx, actor)

	for _, name := range scope.Plugins() {
		if err := ctx.Err(); err != nil {
			s.metrics.ConfigServed("canceled", time.Since(start))
			return registry.Snapshot{}, err
		}

		s.mu.RLock()
		plugin, ok := s.aliases[name]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		trial := scope.Clone()
		reg := &scopedRegistrar{reg: trial, metrics: s.metrics, logger: s.logger.With().Str("plugin", name).Logger()}
		if err := plugin.Contribute(ctx, reg, check); err != nil {
			s.metrics.PluginFailed(name)
			s.logger.Warn().Err(err).Str("plugin", name).Str("actor", actor.ID).Msg("plugin contribution failed")
			continue
		}
		scope = trial
	}

	s.metrics.ConfigServed("ok", time.Since(start))
	return scope.All(), nil
}

// Checker returns a permission checker bound to actor. Answers are cached for
// the lifetime of the checker; a failed lookup denies.
func (s *ConfigService) Checker(ctx context.Context, actor ports.Actor) schema.Checker {
	if s.auth == nil {
		return schema.DenyAll
	}

	var mu sync.Mutex
	cache := make(map[string]bool)

	return schema.CheckerFunc(func(permission string) bool {
		mu.Lock()
		defer mu.Unlock()

		if allowed, ok := cache[permission]; ok {
			return allowed
		}
		allowed, err := s.auth.Allows(ctx, actor, permission)
		if err != nil {
			s.logger.Warn().Err(err).Str("permission", permission).Str("actor", actor.ID).Msg("permission check failed")
			allowed = false
		}
		cache[permission] = allowed
		return allowed
	})
}

func (s *ConfigService) updateGauges() {
	s.metrics.SetRegistered(s.base.RouteCount(), s.base.PluginCount())
}

// scopedRegistrar is the registry handed to a plugin during Build.
type scopedRegistrar struct {
	reg     *registry.Registry
	metrics ports.Metrics
	logger  zerolog.Logger
}

func (r *scopedRegistrar) RegisterRoute(route schema.Route) error {
	return r.reg.RegisterRoute(route)
}

func (r *scopedRegistrar) AppendRoute(route schema.Route) ([]schema.GroupSpec, error) {
	return appendLogged(r.reg, route, r.metrics, r.logger)
}

func (r *scopedRegistrar) HasRoute(slug string) bool {
	return r.reg.HasRoute(slug)
}

func appendLogged(reg *registry.Registry, route schema.Route, metrics ports.Metrics, logger zerolog.Logger) ([]schema.GroupSpec, error) {
	groups, err := reg.AppendRoute(route)
	if err != nil {
		metrics.AppendFailed(route.Slug())
		logger.Warn().Str("slug", route.Slug()).Msg(err.Error())
		return nil, err
	}
	return groups, nil
}

var _ ports.RouteRegistrar = (*scopedRegistrar)(nil)
