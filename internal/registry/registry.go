package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/gridflow/internal/value"
)

// Call is the view of a node instance handed to a compute function: the
// node's current input vector and parameter map. Compute functions must not
// retain or mutate it.
type Call struct {
	Inputs []value.Value
	Params map[string]value.Value
}

// NumberParam returns the named parameter if it is present and carries the
// Number tag, else def. Unknown keys and mismatched tags are ignored so a
// compute function only ever sees the parameter types it consumes.
func (c *Call) NumberParam(key string, def float64) float64 {
	if v, ok := c.Params[key]; ok {
		if n, err := v.AsNumber(); err == nil {
			return n
		}
	}
	return def
}

// StringParam returns the named parameter if it is present and carries the
// String tag, else def.
func (c *Call) StringParam(key string, def string) string {
	if v, ok := c.Params[key]; ok {
		if s, err := v.AsString(); err == nil {
			return s
		}
	}
	return def
}

// BoolParam returns the named parameter if it is present and carries the
// Bool tag, else def.
func (c *Call) BoolParam(key string, def bool) bool {
	if v, ok := c.Params[key]; ok {
		if b, err := v.AsBool(); err == nil {
			return b
		}
	}
	return def
}

// ComputeFn is the pure function behind a node type. It maps the call's
// inputs and parameters to a new output vector whose length and tags match
// the type's declared outputs, or to a failure reason. It must not touch
// graph structure.
type ComputeFn func(c *Call) ([]value.Value, error)

// ParamSpec describes one declared parameter of a node type. When Enum is
// non-empty the parameter is a String and Default is empty or a member.
type ParamSpec struct {
	Name        string
	Type        value.Type
	Default     value.Value
	Enum        []string
	Description string
}

// NodeType is an immutable signature in the catalog: arity and types of the
// input and output ports, declared parameters, and the compute function.
type NodeType struct {
	Name        string
	Inputs      []value.Type
	Outputs     []value.Type
	Params      []ParamSpec
	Version     string
	Description string
	Compute     ComputeFn
}

// Registry is an immutable catalog mapping type name to signature. The
// default instance is built once per process; lookups after construction are
// contention-free reads.
type Registry struct {
	types map[string]*NodeType
}

// New creates an empty Registry. Production code uses Default; tests may
// build private registries with extra types.
func New() *Registry {
	return &Registry{types: make(map[string]*NodeType)}
}

// Register adds a node type to the catalog. Registering the same name twice
// is a programmer error and panics, matching the fixed-catalog contract.
func (r *Registry) Register(nt *NodeType) {
	if _, exists := r.types[nt.Name]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", nt.Name))
	}
	r.types[nt.Name] = nt
}

// RegisterAlias exposes an existing type under a second name.
func (r *Registry) RegisterAlias(alias, name string) {
	nt, ok := r.types[name]
	if !ok {
		panic(fmt.Sprintf("cannot alias unknown node type '%s'", name))
	}
	if _, exists := r.types[alias]; exists {
		panic(fmt.Sprintf("node type '%s' already registered", alias))
	}
	r.types[alias] = nt
}

// Lookup returns the signature registered under name.
func (r *Registry) Lookup(name string) (*NodeType, bool) {
	nt, ok := r.types[name]
	return nt, ok
}

// Names returns all registered type names, sorted. Callers must not depend
// on catalog order, so the listing is made reproducible here.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide built-in catalog, constructing it on
// first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
