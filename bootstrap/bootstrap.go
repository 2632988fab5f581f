// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/agencms/adapters/auth"
	"github.com/artpar/agencms/adapters/definitions"
	apihttp "github.com/artpar/agencms/adapters/http"
	"github.com/artpar/agencms/adapters/memory"
	"github.com/artpar/agencms/adapters/metrics"
	"github.com/artpar/agencms/adapters/sqlite"
	"github.com/artpar/agencms/app"
	"github.com/artpar/agencms/config"
	"github.com/artpar/agencms/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// App represents the running application.
type App struct {
	Logger      zerolog.Logger
	Config      *config.Config
	DB          *sqlite.DB // nil with an in-memory permission store
	Store       ports.PermissionStore
	Metrics     *metrics.Collector
	Tokens      *auth.TokenService
	Service     *app.ConfigService
	Definitions *definitions.Holder
	HTTPServer  *http.Server

	registry *prometheus.Registry
}

// Options tunes application initialization.
type Options struct {
	// Memory keeps roles in process memory instead of the database.
	Memory bool

	// Version is reported by /version.
	Version string

	// Plugins are registered after the built-in ones.
	Plugins []ports.Plugin
}

// New creates and initializes the application.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	logger.Info().Msg("initializing agencms")

	a := &App{
		Logger: logger,
		Config: cfg,
	}

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.Metrics = metrics.NewWithRegistry(a.registry)
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initStore(opts.Memory); err != nil {
		return nil, fmt.Errorf("init permission store: %w", err)
	}

	if err := a.initService(opts.Plugins); err != nil {
		a.close()
		return nil, fmt.Errorf("init config service: %w", err)
	}

	a.Tokens = auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if cfg.Auth.JWTSecret == "" {
		logger.Warn().Msg("auth.jwt_secret not set, tokens will not survive a restart")
	}

	a.initHTTPServer(opts.Version)
	return a, nil
}

// portsMetrics returns the collector as ports.Metrics, or nil when metrics
// are disabled.
func (a *App) portsMetrics() ports.Metrics {
	if a.Metrics == nil {
		return nil
	}
	return a.Metrics
}

func (a *App) initStore(inMemory bool) error {
	if inMemory {
		a.Store = memory.NewPermissionStore()
		a.Logger.Info().Msg("using in-memory permission store")
		return nil
	}

	db, store, err := OpenStore(context.Background(), a.Config.Database.DSN)
	if err != nil {
		return err
	}
	a.DB = db
	a.Store = store
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")
	return nil
}

// OpenStore opens and migrates the permission database.
func OpenStore(ctx context.Context, dsn string) (*sqlite.DB, *sqlite.PermissionStore, error) {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	return db, sqlite.NewPermissionStore(db), nil
}

func (a *App) initService(extra []ports.Plugin) error {
	gate := app.NewGate(a.Store, a.Config.Permissions.Open, a.portsMetrics(), a.Logger)
	a.Service = app.NewConfigService(gate, a.portsMetrics(), a.Logger)

	plugins := []ports.Plugin{app.CorePlugin{}}

	if dir := a.Config.Definitions.Dir; dir != "" {
		holder, err := definitions.NewHolder(dir, a.portsMetrics(), a.Logger)
		if err != nil {
			return err
		}
		a.Definitions = holder
		plugins = append(plugins, app.DefinitionsPlugin{Source: holder})

		if a.Config.Definitions.Watch {
			if err := holder.Watch(); err != nil {
				return err
			}
			holder.WatchSignals()
		}
	}

	plugins = append(plugins, extra...)
	for _, p := range plugins {
		if err := a.Service.Use(p); err != nil {
			return err
		}
	}

	return a.Service.Validate()
}

func (a *App) initHTTPServer(version string) {
	cfg := apihttp.RouterConfig{
		Config:      a.Service,
		Tokens:      a.Tokens,
		Version:     version,
		MetricsPath: a.Config.Metrics.Path,
	}
	if a.Metrics != nil {
		cfg.Metrics = a.Metrics
		cfg.Gatherer = a.registry
	}

	a.HTTPServer = &http.Server{
		Addr:         a.Config.Server.Addr(),
		Handler:      apihttp.NewRouter(cfg, a.Logger),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Strs("plugins", a.Service.Plugins()).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.close()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	a.close()
	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func (a *App) close() {
	if a.Definitions != nil {
		a.Definitions.Stop()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}
}

// SetupLogger builds the process logger and sets the global level.
func SetupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
