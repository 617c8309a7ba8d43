// Package app wires the sandbox together: logger, failure log, compiler,
// registry, render boundary, websocket gateway, and the optional authoring
// feed, each with an isolated lifecycle per App instance.
package app

import (
	"io"
	"log/slog"

	"github.com/vk/hotpanel/internal/boundary"
	"github.com/vk/hotpanel/internal/compiler"
	"github.com/vk/hotpanel/internal/registry"
	"github.com/vk/hotpanel/internal/reporter"
)

// App encapsulates the sandbox's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	compiler *compiler.Compiler
	reporter *reporter.Reporter
	registry *registry.Registry
	boundary *boundary.Boundary
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	rep := reporter.New(logger, config.OnError)
	comp := compiler.New(config.ImportTimeout)
	reg := registry.New(comp, rep)
	bnd := boundary.New(reg, rep)
	logger.Debug("Sandbox components wired.", "import_timeout", comp.Timeout())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		compiler: comp,
		reporter: rep,
		registry: reg,
		boundary: bnd,
	}
}

// Registry returns the application's panel registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Reporter returns the application's failure log. This is primarily for
// testing.
func (a *App) Reporter() *reporter.Reporter {
	return a.reporter
}
