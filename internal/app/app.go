package app

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/gridflow/internal/graph"
	"github.com/vk/gridflow/internal/registry"
)

// App encapsulates one plan execution: configuration, an isolated logger,
// and the registry the graph validates against.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry

	graph      *graph.Graph
	httpServer *http.Server
}

// NewApp constructs the application. Results are written to outW; logs go
// to logW through the app's own logger.
func NewApp(outW, logW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		registry: registry.Default(),
	}
}

// Graph returns the graph built by the most recent Run. Primarily for
// testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}
