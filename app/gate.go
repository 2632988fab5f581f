package app

import (
	"context"

	"github.com/artpar/agencms/ports"
	"github.com/rs/zerolog"
)

// PermissionAdminAccess gates every admin contribution.
const PermissionAdminAccess = "admin_access"

// PermissionSettingsRead gates the settings route.
const PermissionSettingsRead = "settings_read"

// Gate answers permission checks from role assignments.
//
// Open permissions are allowed for every actor until some role grants them.
// Once a role holds an open permission, only actors with that role pass.
type Gate struct {
	store   ports.PermissionStore
	open    map[string]bool
	metrics ports.Metrics
	logger  zerolog.Logger
}

// NewGate creates a gate. A nil metrics discards events.
func NewGate(store ports.PermissionStore, open []string, metrics ports.Metrics, logger zerolog.Logger) *Gate {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	g := &Gate{
		store:   store,
		open:    make(map[string]bool, len(open)),
		metrics: metrics,
		logger:  logger.With().Str("service", "gate").Logger(),
	}
	for _, p := range open {
		g.open[p] = true
	}
	return g
}

// Allows implements ports.Authorizer. An anonymous actor holds nothing.
func (g *Gate) Allows(ctx context.Context, actor ports.Actor, permission string) (bool, error) {
	if actor.IsZero() {
		g.metrics.PermissionChecked(permission, false)
		return false, nil
	}

	allowed, err := g.store.HasPermission(ctx, actor.ID, permission)
	if err != nil {
		return false, err
	}

	if !allowed && g.open[permission] {
		granted, err := g.store.IsGranted(ctx, permission)
		if err != nil {
			return false, err
		}
		allowed = !granted
	}

	g.metrics.PermissionChecked(permission, allowed)
	g.logger.Debug().
		Str("actor", actor.ID).
		Str("permission", permission).
		Bool("allowed", allowed).
		Msg("permission checked")
	return allowed, nil
}

var _ ports.Authorizer = (*Gate)(nil)
