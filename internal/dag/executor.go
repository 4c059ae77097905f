package dag

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/graph"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/value"
)

// Executor runs a committed graph: one task per node, wired by the data-edge
// precedences, executed by a pool of workers. The first failure wins and
// cooperatively cancels the tasks that have not started computing yet.
type Executor struct {
	graph      *graph.Graph
	numWorkers int
}

// NewExecutor creates an executor for g. workers <= 0 selects one worker per
// CPU.
func NewExecutor(g *graph.Graph, workers int) *Executor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Executor{graph: g, numWorkers: workers}
}

// runNode is the per-run execution record for one node.
type runNode struct {
	node  *graph.Node
	state atomic.Int32

	// depCount counts unmet incoming data edges; a node is enqueued when it
	// reaches zero.
	depCount   atomic.Int32
	dependents []int

	inputs []srcRef

	// Gating, resolved from the input map before workers start: a node is
	// gated iff some input slot is fed by a conditional node's output. The
	// first such slot in input-slot order decides the polarity.
	gated    bool
	ifNode   int
	required bool
}

func (rn *runNode) setState(s graph.ExecState) { rn.state.Store(int32(s)) }
func (rn *runNode) getState() graph.ExecState  { return graph.ExecState(rn.state.Load()) }

// Run executes the whole graph and returns the first failure, if any. After
// Run returns, the graph's state snapshot reflects every node's final
// execution state and the output pins of Completed producers are readable.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	g := e.graph

	// Per-run reset: pre-seed inputs with type zeros, drop stale outputs,
	// and clear the previous state snapshot so no partial outputs stay
	// observable if scheduling fails.
	for id, n := range g.Nodes {
		for i, t := range n.Type.Inputs {
			n.InputValues[i] = value.Zero(t)
		}
		n.OutputValues = nil
		g.States[id] = graph.Pending
	}

	sched, err := buildSchedule(ctx, g)
	if err != nil {
		return err
	}

	nodes := make(map[int]*runNode, len(g.Nodes))
	for id, n := range g.Nodes {
		rn := &runNode{node: n, inputs: sched.inputs[id], ifNode: -1}
		rn.depCount.Store(int32(sched.indegree[id]))
		for _, src := range rn.inputs {
			if src.node < 0 {
				continue
			}
			if g.Nodes[src.node].Type.Name == registry.ConditionalTypeName {
				rn.gated = true
				rn.ifNode = src.node
				rn.required = src.out == 0
				break
			}
		}
		nodes[id] = rn
	}
	for _, edges := range sched.fanout {
		for _, edge := range edges {
			nodes[edge.FromNode].dependents = append(nodes[edge.FromNode].dependents, edge.ToNode)
		}
	}

	readyChan := make(chan int, len(nodes))
	rootCount := 0
	for id, rn := range nodes {
		if rn.depCount.Load() == 0 {
			readyChan <- id
			rootCount++
		}
	}
	logger.Debug("Executor initialized.", "roots", rootCount, "workers", e.numWorkers)

	var (
		wg     sync.WaitGroup
		failed atomic.Bool
		errMu  sync.Mutex
		runErr error
	)
	fail := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if !failed.Load() {
			runErr = err
			failed.Store(true)
		}
	}

	wg.Add(len(nodes))
	for i := 0; i < e.numWorkers; i++ {
		go func(workerID int) {
			for id := range readyChan {
				rn := nodes[id]
				e.execute(ctx, rn, nodes, &failed, fail)

				// A finished node releases its dependents whether it
				// completed, skipped, or bailed out: the pool always drains
				// to quiescence.
				for _, dep := range rn.dependents {
					if nodes[dep].depCount.Add(-1) == 0 {
						readyChan <- dep
					}
				}
				wg.Done()
			}
		}(i)
	}

	wg.Wait()
	close(readyChan)

	for id, rn := range nodes {
		g.States[id] = rn.getState()
	}

	if runErr != nil {
		logger.Debug("Run failed.", "error", runErr)
		return runErr
	}
	logger.Debug("Run completed.", "nodes", len(nodes))
	return nil
}

// execute is the task body for a single node.
func (e *Executor) execute(ctx context.Context, rn *runNode, nodes map[int]*runNode, failed *atomic.Bool, fail func(error)) {
	logger := ctxlog.FromContext(ctx)

	if failed.Load() {
		return
	}

	if rn.gated {
		ifOuts := nodes[rn.ifNode].node.OutputValues
		if len(ifOuts) == 0 {
			// The conditional did not run or failed; the gated node cannot
			// decide its branch and is skipped.
			rn.setState(graph.Skipped)
			return
		}
		thenValue, err := ifOuts[0].AsBool()
		if err != nil {
			rn.setState(graph.Skipped)
			return
		}
		if rn.required != thenValue {
			logger.Debug("Node skipped: inactive branch.", "nodeID", rn.node.ID)
			rn.setState(graph.Skipped)
			return
		}
	}

	rn.setState(graph.Active)

	for i, src := range rn.inputs {
		if src.node < 0 {
			continue // unbound slot keeps its pre-seeded zero
		}
		srcNode := nodes[src.node]
		if srcNode.getState() == graph.Skipped {
			// Skipping is transitive by reading: the whole inactive
			// sub-DAG drains without a second pass.
			logger.Debug("Node skipped: upstream source skipped.",
				"nodeID", rn.node.ID, "sourceID", src.node)
			rn.setState(graph.Skipped)
			return
		}
		outs := srcNode.node.OutputValues
		if src.out < 0 || src.out >= len(outs) {
			fail(fmt.Errorf("node %d input %d: %w", rn.node.ID, i, graph.ErrDanglingEdge))
			return
		}
		rn.node.InputValues[i] = outs[src.out]
	}

	outs, err := invokeCompute(rn.node)
	if err != nil {
		fail(fmt.Errorf("%s compute failed: %v", rn.node.Type.Name, err))
		return
	}
	rn.node.OutputValues = outs

	rn.setState(graph.Completed)
	logger.Debug("Node executed.", "nodeID", rn.node.ID, "type", rn.node.Type.Name)
}

// invokeCompute calls the node type's compute function, translating a panic
// into an ordinary compute failure rather than letting it tear down a
// worker.
func invokeCompute(n *graph.Node) (outs []value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			outs = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return n.Type.Compute(&registry.Call{Inputs: n.InputValues, Params: n.Params})
}
