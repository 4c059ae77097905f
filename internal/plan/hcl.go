package plan

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/gridflow/internal/value"
)

// hclPlan is the top-level structure of an HCL plan file:
//
//	node "Number" {
//	  id = 1
//	  params {
//	    value = 2
//	  }
//	}
//	connection {
//	  from        = 1
//	  from_output = 0
//	  to          = 3
//	  to_input    = 0
//	}
//
//	output {
//	  node   = 3
//	  output = 0
//	}
type hclPlan struct {
	Nodes       []*hclNode       `hcl:"node,block"`
	Connections []*hclConnection `hcl:"connection,block"`
	Outputs     []*hclOutput     `hcl:"output,block"`
}

type hclNode struct {
	Type   string     `hcl:"type,label"`
	ID     int        `hcl:"id"`
	Name   string     `hcl:"name,optional"`
	Params *hclParams `hcl:"params,block"`
}

// hclParams keeps the parameter attributes as a raw body so each value can
// be converted by its cty type rather than forced into one element type.
type hclParams struct {
	Body hcl.Body `hcl:",remain"`
}

type hclConnection struct {
	From       int `hcl:"from"`
	FromOutput int `hcl:"from_output"`
	To         int `hcl:"to"`
	ToInput    int `hcl:"to_input"`
}

type hclOutput struct {
	Node   int `hcl:"node"`
	Output int `hcl:"output"`
}

// ParseHCL parses the HCL plan form.
func ParseHCL(filename string, src []byte) (*Plan, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing plan HCL: %w", diags)
	}

	var doc hclPlan
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("decoding plan HCL: %w", diags)
	}

	p := &Plan{}
	for _, n := range doc.Nodes {
		node := Node{ID: n.ID, Type: n.Type, Name: n.Name, Params: make(map[string]value.Value)}
		if n.Params != nil {
			attrs, diags := n.Params.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, fmt.Errorf("node %d params: %w", n.ID, diags)
			}
			for name, attr := range attrs {
				v, diags := attr.Expr.Value(nil)
				if diags.HasErrors() {
					return nil, fmt.Errorf("node %d param '%s': %w", n.ID, name, diags)
				}
				converted, err := fromCty(v)
				if err != nil {
					return nil, fmt.Errorf("node %d param '%s': %w", n.ID, name, err)
				}
				node.Params[name] = converted
			}
		}
		p.Nodes = append(p.Nodes, node)
	}
	for _, c := range doc.Connections {
		p.Connections = append(p.Connections, Connection{
			From: c.From, FromOutput: c.FromOutput, To: c.To, ToInput: c.ToInput,
		})
	}
	for _, o := range doc.Outputs {
		p.Outputs = append(p.Outputs, Output{Node: o.Node, Output: o.Output})
	}
	return p, nil
}

// fromCty converts an HCL-evaluated cty value into an engine value by tag.
func fromCty(v cty.Value) (value.Value, error) {
	switch v.Type() {
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return value.Num(f), nil
	case cty.String:
		return value.Str(v.AsString()), nil
	case cty.Bool:
		return value.Boolean(v.True()), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported parameter type %s", v.Type().FriendlyName())
	}
}
