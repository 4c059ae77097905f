package plan

import (
	"encoding/json"
	"fmt"

	"github.com/vk/gridflow/internal/value"
)

// jsonPlan mirrors the v1 wire document. Unknown top-level keys are ignored
// by the decoder; edges.control is reserved and never consumed (control is
// derived at run time).
type jsonPlan struct {
	Version int        `json:"version"`
	Nodes   []jsonNode `json:"nodes"`
	Edges   jsonEdges  `json:"edges"`
	Outputs []jsonPin  `json:"outputs"`
}

type jsonNode struct {
	ID     int            `json:"id"`
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

type jsonEdges struct {
	Data    []jsonEdge        `json:"data"`
	Control []json.RawMessage `json:"control"`
}

type jsonEdge struct {
	From       int `json:"from"`
	FromOutput int `json:"fromOutput"`
	To         int `json:"to"`
	ToInput    int `json:"toInput"`
}

type jsonPin struct {
	Node   int `json:"node"`
	Output int `json:"output"`
}

// ParseJSON parses the JSON v1 plan document.
func ParseJSON(data []byte) (*Plan, error) {
	var doc jsonPlan
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan JSON: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported plan version %d (want 1)", doc.Version)
	}

	p := &Plan{}
	for _, n := range doc.Nodes {
		node := Node{ID: n.ID, Type: n.Type, Name: n.Name, Params: make(map[string]value.Value)}
		for key, raw := range n.Params {
			switch v := raw.(type) {
			case float64:
				node.Params[key] = value.Num(v)
			case string:
				node.Params[key] = value.Str(v)
			case bool:
				node.Params[key] = value.Boolean(v)
			default:
				return nil, fmt.Errorf("node %d: parameter '%s' must be a number, string, or bool", n.ID, key)
			}
		}
		p.Nodes = append(p.Nodes, node)
	}
	for _, e := range doc.Edges.Data {
		p.Connections = append(p.Connections, Connection{
			From: e.From, FromOutput: e.FromOutput, To: e.To, ToInput: e.ToInput,
		})
	}
	for _, o := range doc.Outputs {
		p.Outputs = append(p.Outputs, Output{Node: o.Node, Output: o.Output})
	}
	return p, nil
}
