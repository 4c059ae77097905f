// Package engine is the stable boundary of the dataflow engine: an opaque
// graph handle driven by small-integer return codes (0 is success) with a
// textual last-error carrying the detail. Front-ends replay plans against
// this surface; the typed model behind it lives in the internal packages.
package engine

import (
	"context"
	"sync"

	"github.com/vk/gridflow/internal/dag"
	"github.com/vk/gridflow/internal/graph"
	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/value"
)

// Type is the boundary's primitive type tag.
type Type int

const (
	TypeNumber Type = iota
	TypeString
	TypeBool
)

func toBoundaryType(t value.Type) Type {
	switch t {
	case value.String:
		return TypeString
	case value.Bool:
		return TypeBool
	default:
		return TypeNumber
	}
}

// lastError is the process-wide last observed error message. The original C
// surface kept this thread-local; Go has no thread identity, so the slot is
// a single mutex-guarded string. A successful call does not clear it.
var (
	lastErrMu sync.Mutex
	lastErr   string
)

func setLastError(msg string) {
	lastErrMu.Lock()
	lastErr = msg
	lastErrMu.Unlock()
}

// LastError returns the message recorded by the most recent failing
// boundary call.
func LastError() string {
	lastErrMu.Lock()
	defer lastErrMu.Unlock()
	return lastErr
}

// Graph is the opaque handle. A handle must not be mutated or run from
// multiple goroutines at once; distinct handles are independent.
type Graph struct {
	g       *graph.Graph
	workers int
}

// NewGraph creates an empty graph bound to the built-in type catalog.
func NewGraph() *Graph {
	return &Graph{g: graph.New(registry.Default())}
}

// SetWorkerCount overrides the executor's worker pool size for this handle.
// Zero or negative selects the default (one worker per CPU).
func (eg *Graph) SetWorkerCount(n int) {
	eg.workers = n
}

// Destroy releases the handle. It is idempotent and nil-safe; the handle
// must not be used afterwards.
func (eg *Graph) Destroy() {
	if eg == nil {
		return
	}
	eg.g = nil
}

// AddNodeWithID registers a node under the caller-supplied id. The label
// may be empty.
func (eg *Graph) AddNodeWithID(id int, typeName, label string) int {
	if eg == nil || eg.g == nil {
		setLastError("add_node: null graph")
		return 1
	}
	if typeName == "" {
		setLastError("add_node: null args")
		return 1
	}
	if err := eg.g.AddNode(id, typeName, label); err != nil {
		setLastError(err.Error())
		switch {
		case isKind(err, graph.ErrDuplicateID):
			return 2
		default:
			return 3
		}
	}
	return 0
}

// SetParamNumber upserts a Number parameter on node id.
func (eg *Graph) SetParamNumber(id int, key string, v float64) int {
	return eg.setParam(func() error { return eg.g.SetParamNumber(id, key, v) }, "set_param_number", key)
}

// SetParamString upserts a String parameter on node id.
func (eg *Graph) SetParamString(id int, key, v string) int {
	return eg.setParam(func() error { return eg.g.SetParamString(id, key, v) }, "set_param_string", key)
}

// SetParamBool upserts a Bool parameter on node id.
func (eg *Graph) SetParamBool(id int, key string, v bool) int {
	return eg.setParam(func() error { return eg.g.SetParamBool(id, key, v) }, "set_param_bool", key)
}

func (eg *Graph) setParam(op func() error, name, key string) int {
	if eg == nil || eg.g == nil || key == "" {
		setLastError(name + ": null args")
		return 1
	}
	if err := op(); err != nil {
		setLastError(err.Error())
		return 2
	}
	return 0
}

// Connect appends a typed data edge.
func (eg *Graph) Connect(fromID, fromOut, toID, toIn int) int {
	if eg == nil || eg.g == nil {
		setLastError("connect: null graph")
		return 1
	}
	if err := eg.g.Connect(fromID, fromOut, toID, toIn); err != nil {
		setLastError(err.Error())
		switch {
		case isKind(err, graph.ErrUnknownNode):
			return 2
		case isKind(err, graph.ErrPortRange):
			return 3
		default:
			return 5
		}
	}
	return 0
}

// AddOutput appends an external output pin referencing (id, outIdx).
func (eg *Graph) AddOutput(id, outIdx int) int {
	if eg == nil || eg.g == nil {
		setLastError("add_output: null graph")
		return 1
	}
	if err := eg.g.AddOutput(id, outIdx); err != nil {
		setLastError(err.Error())
		if isKind(err, graph.ErrUnknownNode) {
			return 2
		}
		return 3
	}
	return 0
}

// Run executes the graph. On failure the last-error message carries the
// schedule or compute detail; pins whose producer did not complete read as
// not computed, while producers that completed before the failure keep
// their outputs readable.
func (eg *Graph) Run() int {
	return eg.RunContext(context.Background())
}

// RunContext executes the graph with the caller's context, which carries
// the logger the internals report against.
func (eg *Graph) RunContext(ctx context.Context) int {
	if eg == nil || eg.g == nil {
		setLastError("run: null graph")
		return 1
	}
	if err := dag.NewExecutor(eg.g, eg.workers).Run(ctx); err != nil {
		setLastError(err.Error())
		return 2
	}
	return 0
}

// OutputCount reports the number of registered output pins.
func (eg *Graph) OutputCount() int {
	if eg == nil || eg.g == nil {
		return 0
	}
	return len(eg.g.Outputs)
}

// OutputType reports the declared type tag of output pin index. The type
// defaults to TypeNumber when the code is non-zero.
func (eg *Graph) OutputType(index int) (Type, int) {
	if eg == nil || eg.g == nil {
		setLastError("get_output_type: null graph")
		return TypeNumber, 1
	}
	t, err := eg.g.OutputType(index)
	if err != nil {
		setLastError(err.Error())
		return TypeNumber, 2
	}
	return toBoundaryType(t), 0
}

// OutputNumber reads output pin index as a number.
func (eg *Graph) OutputNumber(index int) (float64, int) {
	v, code := eg.output("get_output_number", index)
	if code != 0 {
		return 0, code
	}
	n, err := v.AsNumber()
	if err != nil {
		setLastError("get_output_number: " + err.Error())
		return 0, 5
	}
	return n, 0
}

// OutputBool reads output pin index as a boolean.
func (eg *Graph) OutputBool(index int) (bool, int) {
	v, code := eg.output("get_output_bool", index)
	if code != 0 {
		return false, code
	}
	b, err := v.AsBool()
	if err != nil {
		setLastError("get_output_bool: " + err.Error())
		return false, 5
	}
	return b, 0
}

// OutputString reads output pin index as a string.
func (eg *Graph) OutputString(index int) (string, int) {
	v, code := eg.output("get_output_string", index)
	if code != 0 {
		return "", code
	}
	s, err := v.AsString()
	if err != nil {
		setLastError("get_output_string: " + err.Error())
		return "", 5
	}
	return s, 0
}

func (eg *Graph) output(op string, index int) (value.Value, int) {
	if eg == nil || eg.g == nil {
		setLastError(op + ": null graph")
		return value.Value{}, 1
	}
	v, err := eg.g.OutputValue(index)
	if err != nil {
		setLastError(err.Error())
		switch {
		case isKind(err, graph.ErrIndexRange):
			return value.Value{}, 2
		case isKind(err, graph.ErrNotComputed):
			return value.Value{}, 4
		default:
			return value.Value{}, 3
		}
	}
	return v, 0
}
