package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/agencms/core/registry"
	"github.com/artpar/agencms/core/schema"
	"github.com/artpar/agencms/ports"
)

// Plugin names.
const (
	CorePluginName        = "agencms.core"
	DefinitionsPluginName = "agencms.definitions"
)

// SettingsSlug is the route the core plugin extends.
const SettingsSlug = "settings"

// CorePlugin contributes the site settings to admins.
type CorePlugin struct{}

// Name implements ports.Plugin.
func (CorePlugin) Name() string { return CorePluginName }

// Contribute registers the settings route if nothing else has, then appends
// the site title and analytics groups to it.
func (CorePlugin) Contribute(_ context.Context, reg ports.RouteRegistrar, check schema.Checker) error {
	if !check.Allows(PermissionAdminAccess) {
		return nil
	}
	if !check.Allows(PermissionSettingsRead) {
		return nil
	}

	if !reg.HasRoute(SettingsSlug) {
		route, err := schema.InitSingleRoute(
			SettingsSlug,
			schema.InSection("Admin", "Settings"),
			schema.GenerateCrudEndpoints(check, SettingsSlug, "agencms/settings"),
		)
		if err != nil {
			return err
		}
		if err := reg.RegisterRoute(route.Icon("settings")); err != nil {
			return err
		}
	}

	_, err := reg.AppendRoute(
		schema.LoadRoute(SettingsSlug).
			AddGroup(
				schema.FullGroup("Site").WithKey("site").AddField(
					schema.StringField("title", "Website Title"),
					schema.StringField("title_prefix", "Title Prefix"),
					schema.StringField("title_suffix", "Title Suffix"),
				),
			).
			AddGroup(
				schema.FullGroup("Analytics").WithKey("analytics").AddField(
					schema.StringField("ga_code", "Google Analytics Id"),
				),
			),
	)
	return err
}

// DefinitionSource supplies the current YAML route definitions.
type DefinitionSource interface {
	Definitions() []schema.Definition
}

// DefinitionsPlugin contributes routes declared in YAML files. Definitions
// that name a permission get endpoints generated for the requesting actor.
type DefinitionsPlugin struct {
	Source DefinitionSource
}

// Name implements ports.Plugin.
func (DefinitionsPlugin) Name() string { return DefinitionsPluginName }

// Contribute registers or appends every definition in order. An append onto
// a route that is not registered is skipped.
func (p DefinitionsPlugin) Contribute(ctx context.Context, reg ports.RouteRegistrar, check schema.Checker) error {
	for _, def := range p.Source.Definitions() {
		if err := ctx.Err(); err != nil {
			return err
		}

		route, err := def.Build(check)
		if err != nil {
			return fmt.Errorf("%s: %w", def.Source, err)
		}

		if route.IsCarrier() {
			if _, err := reg.AppendRoute(route); err != nil && !errors.Is(err, registry.ErrRouteNotFound) {
				return err
			}
			continue
		}
		if err := reg.RegisterRoute(route); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ ports.Plugin = CorePlugin{}
	_ ports.Plugin = DefinitionsPlugin{}
)
