package engine

import (
	"encoding/json"
	"errors"

	"github.com/vk/gridflow/internal/registry"
)

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}

// typeSpec is the serialized signature of one node type, in the shape
// consumed by front-ends: typed ports plus parameter specs with defaults
// and optional enums.
type typeSpec struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Inputs      []string    `json:"inputs"`
	Outputs     []string    `json:"outputs"`
	Params      []paramSpec `json:"params"`
}

type paramSpec struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Default     any      `json:"default"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// ListTypes returns the registered type names as a JSON array, sorted so
// the listing is reproducible.
func ListTypes() string {
	data, err := json.Marshal(registry.Default().Names())
	if err != nil {
		setLastError("list_types: " + err.Error())
		return "[]"
	}
	return string(data)
}

// DescribeType returns the JSON signature of the named type, or a non-zero
// code when the name is absent from the catalog.
func DescribeType(name string) (string, int) {
	if name == "" {
		setLastError("describe_type: null type name")
		return "", 1
	}
	nt, ok := registry.Default().Lookup(name)
	if !ok {
		setLastError("describe_type: unknown type '" + name + "'")
		return "", 2
	}

	sig := typeSpec{
		Name:        nt.Name,
		Version:     nt.Version,
		Description: nt.Description,
		Inputs:      make([]string, len(nt.Inputs)),
		Outputs:     make([]string, len(nt.Outputs)),
		Params:      make([]paramSpec, len(nt.Params)),
	}
	for i, t := range nt.Inputs {
		sig.Inputs[i] = t.String()
	}
	for i, t := range nt.Outputs {
		sig.Outputs[i] = t.String()
	}
	for i, p := range nt.Params {
		sig.Params[i] = paramSpec{
			Name:        p.Name,
			Type:        p.Type.String(),
			Default:     p.Default.Interface(),
			Description: p.Description,
			Enum:        p.Enum,
		}
	}

	data, err := json.Marshal(sig)
	if err != nil {
		setLastError("describe_type: " + err.Error())
		return "", 3
	}
	return string(data), 0
}
