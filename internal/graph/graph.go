package graph

import (
	"fmt"

	"github.com/vk/gridflow/internal/registry"
	"github.com/vk/gridflow/internal/value"
)

// Node is one instance of a node type within a graph. InputValues and
// OutputValues are working buffers owned by the executor during a run;
// callers must not mutate a node once a run has begun.
type Node struct {
	ID     int
	Type   *registry.NodeType // borrowed from the registry
	Name   string
	Params map[string]value.Value

	InputValues  []value.Value
	OutputValues []value.Value
}

// Edge is a typed data connection between two ports.
type Edge struct {
	FromNode int
	FromOut  int
	ToNode   int
	ToIn     int
}

// OutputPin designates an externally observable (node, output index) pair.
// The position of a pin in the graph's pin list is the external output index.
type OutputPin struct {
	Node   int
	OutIdx int
}

// ExecState is the per-run execution state of a node.
type ExecState int32

const (
	Pending ExecState = iota
	Active
	Skipped
	Completed
)

// Graph owns the nodes, data edges, and output pins built up by the
// construction operations. It is single-writer before Run and read-mostly
// during it; a single Graph must not be mutated or run concurrently.
type Graph struct {
	registry *registry.Registry

	Nodes   map[int]*Node
	Edges   []Edge
	Outputs []OutputPin

	// States is the snapshot of per-node execution states left behind by the
	// most recent run. It gates the output getters: a pin is only readable
	// once its producer reached Completed.
	States map[int]ExecState
}

// New creates an empty graph validating against reg.
func New(reg *registry.Registry) *Graph {
	return &Graph{
		registry: reg,
		Nodes:    make(map[int]*Node),
		States:   make(map[int]ExecState),
	}
}

// Node returns the node registered under id, or nil.
func (g *Graph) Node(id int) *Node {
	return g.Nodes[id]
}

// Registry returns the catalog this graph validates against.
func (g *Graph) Registry() *registry.Registry {
	return g.registry
}

// AddNode registers a new node under id. The node's input buffer is
// pre-seeded with type-appropriate zero values so an isolated node can still
// be computed.
func (g *Graph) AddNode(id int, typeName, name string) error {
	if typeName == "" {
		return fmt.Errorf("add_node: %w: type name", ErrNullArg)
	}
	if _, exists := g.Nodes[id]; exists {
		return fmt.Errorf("add_node: %w: %d", ErrDuplicateID, id)
	}
	nt, ok := g.registry.Lookup(typeName)
	if !ok {
		return fmt.Errorf("add_node: %w: '%s'", ErrUnknownType, typeName)
	}
	n := &Node{
		ID:          id,
		Type:        nt,
		Name:        name,
		Params:      make(map[string]value.Value),
		InputValues: make([]value.Value, len(nt.Inputs)),
	}
	for i, t := range nt.Inputs {
		n.InputValues[i] = value.Zero(t)
	}
	g.Nodes[id] = n
	return nil
}

// setParam upserts a parameter value. Schema checking is deliberately
// deferred to compute time, and keys unknown to the type are tolerated for
// forward compatibility.
func (g *Graph) setParam(op string, id int, key string, v value.Value) error {
	if key == "" {
		return fmt.Errorf("%s: %w: key", op, ErrNullArg)
	}
	n := g.Nodes[id]
	if n == nil {
		return fmt.Errorf("%s: %w: %d", op, ErrUnknownNode, id)
	}
	n.Params[key] = v
	return nil
}

// SetParamNumber upserts a Number parameter on node id.
func (g *Graph) SetParamNumber(id int, key string, v float64) error {
	return g.setParam("set_param_number", id, key, value.Num(v))
}

// SetParamString upserts a String parameter on node id.
func (g *Graph) SetParamString(id int, key, v string) error {
	return g.setParam("set_param_string", id, key, value.Str(v))
}

// SetParamBool upserts a Bool parameter on node id.
func (g *Graph) SetParamBool(id int, key string, v bool) error {
	return g.setParam("set_param_bool", id, key, value.Boolean(v))
}

// Connect appends a data edge after checking both ports exist and carry the
// same type tag. A later connect on the same target slot overwrites the
// earlier one at schedule time (last-write-wins).
func (g *Graph) Connect(fromID, fromOut, toID, toIn int) error {
	from := g.Nodes[fromID]
	to := g.Nodes[toID]
	if from == nil || to == nil {
		return fmt.Errorf("connect: %w", ErrUnknownNode)
	}
	if fromOut < 0 || fromOut >= len(from.Type.Outputs) {
		return fmt.Errorf("connect: from_out %d: %w", fromOut, ErrPortRange)
	}
	if toIn < 0 || toIn >= len(to.Type.Inputs) {
		return fmt.Errorf("connect: to_in %d: %w", toIn, ErrPortRange)
	}
	if from.Type.Outputs[fromOut] != to.Type.Inputs[toIn] {
		return fmt.Errorf("connect: %w: %s -> %s", ErrTypeMismatch,
			from.Type.Outputs[fromOut], to.Type.Inputs[toIn])
	}
	g.Edges = append(g.Edges, Edge{FromNode: fromID, FromOut: fromOut, ToNode: toID, ToIn: toIn})
	return nil
}

// AddOutput appends an output pin referencing (id, outIdx).
func (g *Graph) AddOutput(id, outIdx int) error {
	n := g.Nodes[id]
	if n == nil {
		return fmt.Errorf("add_output: %w: %d", ErrUnknownNode, id)
	}
	if outIdx < 0 || outIdx >= len(n.Type.Outputs) {
		return fmt.Errorf("add_output: out_index %d: %w", outIdx, ErrPortRange)
	}
	g.Outputs = append(g.Outputs, OutputPin{Node: id, OutIdx: outIdx})
	return nil
}

// OutputValue reads the value behind external output pin index. It fails
// with ErrNotComputed until the pin's producer has Completed a run.
func (g *Graph) OutputValue(index int) (value.Value, error) {
	if index < 0 || index >= len(g.Outputs) {
		return value.Value{}, fmt.Errorf("get_output: index %d: %w", index, ErrIndexRange)
	}
	pin := g.Outputs[index]
	n := g.Nodes[pin.Node]
	if n == nil {
		return value.Value{}, fmt.Errorf("get_output: %w: %d", ErrUnknownNode, pin.Node)
	}
	if g.States[pin.Node] != Completed || pin.OutIdx >= len(n.OutputValues) {
		return value.Value{}, fmt.Errorf("get_output: node %d: %w", pin.Node, ErrNotComputed)
	}
	return n.OutputValues[pin.OutIdx], nil
}

// OutputType reports the declared type tag of external output pin index.
func (g *Graph) OutputType(index int) (value.Type, error) {
	if index < 0 || index >= len(g.Outputs) {
		return value.Number, fmt.Errorf("get_output_type: index %d: %w", index, ErrIndexRange)
	}
	pin := g.Outputs[index]
	n := g.Nodes[pin.Node]
	if n == nil {
		return value.Number, fmt.Errorf("get_output_type: %w: %d", ErrUnknownNode, pin.Node)
	}
	return n.Type.Outputs[pin.OutIdx], nil
}
