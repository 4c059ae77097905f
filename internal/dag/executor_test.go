package dag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridflow/internal/graph"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/value"
)

func run(t *testing.T, g *graph.Graph) error {
	t.Helper()
	return NewExecutor(g, 4).Run(context.Background())
}

func outputNumber(t *testing.T, g *graph.Graph, index int) float64 {
	t.Helper()
	v, err := g.OutputValue(index)
	require.NoError(t, err)
	n, err := v.AsNumber()
	require.NoError(t, err)
	return n
}

// S1: two constants feeding an adder.
func TestArithmetic(t *testing.T) {
	g := graph.New(registry.Default())
	require.NoError(t, g.AddNode(1, "Number", ""))
	require.NoError(t, g.AddNode(2, "Number", ""))
	require.NoError(t, g.AddNode(3, "AddNumber", ""))
	require.NoError(t, g.SetParamNumber(1, "value", 2))
	require.NoError(t, g.SetParamNumber(2, "value", 3))
	require.NoError(t, g.Connect(1, 0, 3, 0))
	require.NoError(t, g.Connect(2, 0, 3, 1))
	require.NoError(t, g.AddOutput(3, 0))

	require.NoError(t, run(t, g))
	assert.Equal(t, 5.0, outputNumber(t, g, 0))
}

func TestIsolatedNodeComputesOnPreSeededZeros(t *testing.T) {
	g := graph.New(registry.Default())
	require.NoError(t, g.AddNode(1, "AddNumber", ""))
	require.NoError(t, g.AddOutput(1, 0))

	require.NoError(t, run(t, g))
	assert.Equal(t, 0.0, outputNumber(t, g, 0))
	assert.Equal(t, graph.Completed, g.States[1])
}

// Without conditional nodes every node runs exactly once and ends Completed.
func TestAllNodesCompleteWithoutConditionals(t *testing.T) {
	g := graph.New(registry.Default())
	require.NoError(t, g.AddNode(1, "Number", ""))
	require.NoError(t, g.AddNode(2, "ToString", ""))
	require.NoError(t, g.AddNode(3, "String", ""))
	require.NoError(t, g.AddNode(4, "Concat", ""))
	require.NoError(t, g.Connect(1, 0, 2, 0))
	require.NoError(t, g.Connect(3, 0, 4, 0))
	require.NoError(t, g.Connect(2, 0, 4, 1))

	require.NoError(t, run(t, g))
	for id, state := range g.States {
		assert.Equal(t, graph.Completed, state, "node %d", id)
	}
}

// S4: a two-node cycle refuses to run before any compute.
func TestCycleDetected(t *testing.T) {
	g := graph.New(registry.Default())
	require.NoError(t, g.AddNode(1, "AddNumber", ""))
	require.NoError(t, g.AddNode(2, "AddNumber", ""))
	require.NoError(t, g.Connect(1, 0, 2, 0))
	require.NoError(t, g.Connect(2, 0, 1, 0))
	require.NoError(t, g.AddOutput(1, 0))

	err := run(t, g)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrCycle)
	assert.Contains(t, err.Error(), "Cycle")

	// No partial outputs are observable after a refused run.
	_, err = g.OutputValue(0)
	assert.ErrorIs(t, err, graph.ErrNotComputed)
}

// Branch skipping: an If node's outputs gate the two branch heads, the
// inactive branch is skipped, and the skip propagates downstream by reading.
// The gate signal rides a Bool input slot on each branch head, so the heads
// here come from a test registry with Bool-accepting arithmetic types.
func TestBranchSkipping(t *testing.T) {
	build := func(cond bool) *graph.Graph {
		reg := branchTestRegistry()
		g := graph.New(reg)
		require.NoError(t, g.AddNode(1, "Bool", ""))
		require.NoError(t, g.AddNode(2, "If", ""))
		require.NoError(t, g.AddNode(3, "Number", ""))
		require.NoError(t, g.AddNode(4, "Number", ""))
		require.NoError(t, g.AddNode(5, "GateAdd", "then-branch"))
		require.NoError(t, g.AddNode(6, "GateMul", "else-branch"))
		require.NoError(t, g.AddNode(7, "OutputNumber", ""))
		require.NoError(t, g.SetParamBool(1, "value", cond))
		require.NoError(t, g.SetParamNumber(3, "value", 10))
		require.NoError(t, g.SetParamNumber(4, "value", 20))
		require.NoError(t, g.SetParamNumber(5, "base", 10))
		require.NoError(t, g.SetParamNumber(6, "base", 10))
		require.NoError(t, g.Connect(1, 0, 2, 0))
		require.NoError(t, g.Connect(2, 0, 5, 0)) // then gate
		require.NoError(t, g.Connect(3, 0, 5, 1))
		require.NoError(t, g.Connect(2, 1, 6, 0)) // else gate
		require.NoError(t, g.Connect(4, 0, 6, 1))
		require.NoError(t, g.Connect(5, 0, 7, 0))
		require.NoError(t, g.AddOutput(7, 0))
		return g
	}

	t.Run("condition true runs then branch", func(t *testing.T) {
		g := build(true)
		require.NoError(t, run(t, g))
		assert.Equal(t, graph.Skipped, g.States[6], "else branch must be skipped")
		assert.Equal(t, graph.Completed, g.States[5])
		assert.Equal(t, graph.Completed, g.States[7])
		assert.Equal(t, 20.0, outputNumber(t, g, 0)) // base 10 + input 10
	})

	t.Run("condition false skips then branch transitively", func(t *testing.T) {
		g := build(false)
		require.NoError(t, run(t, g))
		assert.Equal(t, graph.Skipped, g.States[5])
		assert.Equal(t, graph.Skipped, g.States[7], "skip propagates by reading")
		assert.Equal(t, graph.Completed, g.States[6])

		_, err := g.OutputValue(0)
		assert.ErrorIs(t, err, graph.ErrNotComputed)
	})
}

// A node with no conditional ancestor is never Skipped.
func TestUngatedNodesNeverSkip(t *testing.T) {
	reg := branchTestRegistry()
	g := graph.New(reg)
	require.NoError(t, g.AddNode(1, "Bool", ""))
	require.NoError(t, g.AddNode(2, "If", ""))
	require.NoError(t, g.AddNode(3, "GateAdd", ""))
	require.NoError(t, g.AddNode(4, "Number", ""))
	require.NoError(t, g.AddNode(5, "AddNumber", ""))
	require.NoError(t, g.SetParamBool(1, "value", false))
	require.NoError(t, g.Connect(1, 0, 2, 0))
	require.NoError(t, g.Connect(2, 0, 3, 0)) // gated, inactive
	require.NoError(t, g.Connect(4, 0, 5, 0)) // independent chain

	require.NoError(t, run(t, g))
	assert.Equal(t, graph.Skipped, g.States[3])
	assert.Equal(t, graph.Completed, g.States[4])
	assert.Equal(t, graph.Completed, g.States[5])
	assert.Equal(t, graph.Completed, g.States[1])
	assert.Equal(t, graph.Completed, g.States[2])
}

// S6: a wide DAG reduces to the same value bit-for-bit on every run.
func TestDeterminismUnderParallelism(t *testing.T) {
	g := graph.New(registry.Default())
	id := 1
	var sums []int
	for i := 0; i < 64; i += 2 {
		a, b := id, id+1
		require.NoError(t, g.AddNode(a, "Number", ""))
		require.NoError(t, g.AddNode(b, "Number", ""))
		require.NoError(t, g.SetParamNumber(a, "value", float64(i)*1.5))
		require.NoError(t, g.SetParamNumber(b, "value", float64(i+1)*0.25))
		sum := id + 2
		require.NoError(t, g.AddNode(sum, "AddNumber", ""))
		require.NoError(t, g.Connect(a, 0, sum, 0))
		require.NoError(t, g.Connect(b, 0, sum, 1))
		sums = append(sums, sum)
		id += 3
	}
	// Reduction tree over the 32 pair sums.
	for len(sums) > 1 {
		var next []int
		for i := 0; i+1 < len(sums); i += 2 {
			require.NoError(t, g.AddNode(id, "AddNumber", ""))
			require.NoError(t, g.Connect(sums[i], 0, id, 0))
			require.NoError(t, g.Connect(sums[i+1], 0, id, 1))
			next = append(next, id)
			id++
		}
		if len(sums)%2 == 1 {
			next = append(next, sums[len(sums)-1])
		}
		sums = next
	}
	require.NoError(t, g.AddNode(id, "OutputNumber", ""))
	require.NoError(t, g.Connect(sums[0], 0, id, 0))
	require.NoError(t, g.AddOutput(id, 0))

	require.NoError(t, run(t, g))
	want := outputNumber(t, g, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, run(t, g))
		got := outputNumber(t, g, 0)
		require.Equal(t, want, got, "run %d diverged", i)
	}
}

func TestComputeFailurePropagates(t *testing.T) {
	reg := branchTestRegistry()
	g := graph.New(reg)
	require.NoError(t, g.AddNode(1, "AlwaysFails", ""))
	require.NoError(t, g.AddNode(2, "Number", ""))
	require.NoError(t, g.AddNode(3, "AddNumber", ""))
	require.NoError(t, g.Connect(1, 0, 3, 0))
	require.NoError(t, g.Connect(2, 0, 3, 1))
	require.NoError(t, g.AddOutput(3, 0))

	err := run(t, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AlwaysFails compute failed: boom")

	_, err = g.OutputValue(0)
	assert.ErrorIs(t, err, graph.ErrNotComputed)
}

func TestComputePanicBecomesComputeError(t *testing.T) {
	reg := branchTestRegistry()
	g := graph.New(reg)
	require.NoError(t, g.AddNode(1, "AlwaysPanics", ""))

	err := run(t, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AlwaysPanics compute failed")
	assert.Contains(t, err.Error(), "panic")
}

func TestDanglingEdgeFailsRun(t *testing.T) {
	reg := branchTestRegistry()
	g := graph.New(reg)
	require.NoError(t, g.AddNode(1, "Underproduces", ""))
	require.NoError(t, g.AddNode(2, "AddNumber", ""))
	require.NoError(t, g.Connect(1, 0, 2, 0)) // slot 0 exists in the signature but is never produced
	require.NoError(t, g.AddOutput(2, 0))

	err := run(t, g)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrDanglingEdge)
}

// branchTestRegistry extends the built-in catalog with gate-accepting
// arithmetic heads and deliberately misbehaving types for the failure paths.
// The production catalog is fixed; only tests construct private registries.
func branchTestRegistry() *registry.Registry {
	r := registry.New()
	registry.Seed(r)

	r.Register(&registry.NodeType{
		Name:        "GateAdd",
		Inputs:      []value.Type{value.Bool, value.Number},
		Outputs:     []value.Type{value.Number},
		Params:      []registry.ParamSpec{{Name: "base", Type: value.Number, Default: value.Num(0), Description: "Added to the numeric input"}},
		Version:     "1.0.0",
		Description: "Adds the base parameter to the numeric input; gate signal on slot 0",
		Compute: func(c *registry.Call) ([]value.Value, error) {
			n, err := c.Inputs[1].AsNumber()
			if err != nil {
				return nil, err
			}
			return []value.Value{value.Num(c.NumberParam("base", 0) + n)}, nil
		},
	})
	r.Register(&registry.NodeType{
		Name:        "GateMul",
		Inputs:      []value.Type{value.Bool, value.Number},
		Outputs:     []value.Type{value.Number},
		Params:      []registry.ParamSpec{{Name: "base", Type: value.Number, Default: value.Num(1), Description: "Multiplied with the numeric input"}},
		Version:     "1.0.0",
		Description: "Multiplies the base parameter with the numeric input; gate signal on slot 0",
		Compute: func(c *registry.Call) ([]value.Value, error) {
			n, err := c.Inputs[1].AsNumber()
			if err != nil {
				return nil, err
			}
			return []value.Value{value.Num(c.NumberParam("base", 1) * n)}, nil
		},
	})
	r.Register(&registry.NodeType{
		Name:        "AlwaysFails",
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Fails on every invocation",
		Compute: func(c *registry.Call) ([]value.Value, error) {
			return nil, errors.New("boom")
		},
	})
	r.Register(&registry.NodeType{
		Name:        "AlwaysPanics",
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Panics on every invocation",
		Compute: func(c *registry.Call) ([]value.Value, error) {
			panic(fmt.Sprintf("unreachable state in %s", "AlwaysPanics"))
		},
	})
	r.Register(&registry.NodeType{
		Name:        "Underproduces",
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Declares one output but produces none",
		Compute: func(c *registry.Call) ([]value.Value, error) {
			return []value.Value{}, nil
		},
	})
	return r
}
