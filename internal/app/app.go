package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/bootgraph/internal/config"
	"github.com/vk/bootgraph/internal/ctxlog"
	"github.com/vk/bootgraph/internal/plan"
	"github.com/vk/bootgraph/internal/registry"
	"github.com/vk/bootgraph/internal/runtime"
	"github.com/vk/bootgraph/internal/val"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	loader   config.Loader
	config   *Config

	image  *plan.Image
	engine *runtime.Engine
	scope  *val.Scope
}

// NewApp is the constructor for the main application. The listing goes to
// outW unless the config names a file; logs go to logW. With no modules
// given, the core modules are registered.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All native modules registered.", "count", len(modules))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		loader:   loader,
		config:   appConfig,
	}
}

// Context returns ctx carrying the app's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Image returns the image built by the last Run.
func (a *App) Image() *plan.Image { return a.image }

// Engine returns the engine of the last replay, or nil.
func (a *App) Engine() *runtime.Engine { return a.engine }

// Scope returns the globals installed by the last replay, or nil.
func (a *App) Scope() *val.Scope { return a.scope }
