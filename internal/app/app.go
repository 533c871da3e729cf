package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/scenegrid/internal/action"
	"github.com/specialistvlad/scenegrid/internal/ctxlog"
	"github.com/specialistvlad/scenegrid/internal/name"
	"github.com/specialistvlad/scenegrid/internal/plugin"
	"github.com/specialistvlad/scenegrid/internal/rtype"
	"github.com/specialistvlad/scenegrid/internal/scene"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	types   *scene.Types
	classes *action.Classes
	plugins []rtype.Type
}

// NewApp is the constructor for the main application. It registers the node
// classes, runs the plugins and sets up the action kinds. Setup failures
// panic; the entrypoint recovers them.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := cfg.Registry
	if reg == nil {
		reg = rtype.New(rtype.WithNames(name.NewTable()), rtype.WithLogger(logger))
	}

	types, err := scene.InitClasses(reg)
	if err != nil {
		panic(fmt.Errorf("failed to register node classes: %w", err))
	}
	logger.Debug("Node classes registered.", "types", reg.NumTypes())

	var opts []plugin.Option
	if cfg.PluginTimeout > 0 {
		opts = append(opts, plugin.WithTimeout(cfg.PluginTimeout))
	}
	loader := plugin.NewLoader(types, opts...)
	var plugins []rtype.Type
	for _, p := range cfg.PluginPaths {
		got, err := loader.LoadPath(ctx, p)
		if err != nil {
			panic(fmt.Errorf("failed to load plugins: %w", err))
		}
		plugins = append(plugins, got...)
	}

	classes, err := action.InitClasses(types, action.WithLogger(logger))
	if err != nil {
		panic(fmt.Errorf("failed to register action classes: %w", err))
	}
	logger.Debug("Action classes registered.", "kinds", len(classes.Kinds()))

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		types:   types,
		classes: classes,
		plugins: plugins,
	}
}

// Types returns the node types of the app. This is primarily for testing.
func (a *App) Types() *scene.Types {
	return a.types
}

// Plugins returns the node types registered by plugins.
func (a *App) Plugins() []rtype.Type {
	return a.plugins
}
