package app

import (
	"context"
	"fmt"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/graph"
	"github.com/vk/gridflow/internal/plan"
)

// Run loads the configured plan, builds the graph, executes it, and writes
// the result document to the out writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx)
		defer a.closeHealthcheckServer(ctx)
	}

	p, err := plan.LoadFile(ctx, a.config.PlanPath)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	a.graph = graph.New(a.registry)
	if err := p.Apply(ctx, a.graph); err != nil {
		return fmt.Errorf("failed to build graph from plan: %w", err)
	}
	a.logger.Debug("Graph built from plan.", "node_count", len(a.graph.Nodes))

	if len(a.graph.Nodes) == 0 {
		a.logger.Warn("No nodes found in plan, execution not required.")
		return a.writeResult()
	}

	a.logger.Info("Starting concurrent execution...", "workers", a.config.WorkerCount)
	exec := dag.NewExecutor(a.graph, a.config.WorkerCount)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Execution finished.")

	return a.writeResult()
}
