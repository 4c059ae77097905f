package registry

import (
	"errors"
	"strconv"

	"github.com/vk/gridflow/internal/value"
)

// Seed installs the built-in catalog into r. Tests use it to build private
// registries that extend the fixed set.
func Seed(r *Registry) {
	registerBuiltins(r)
}

// registerBuiltins seeds the fixed catalog of built-in node types. The set
// and the signatures are part of the engine's public contract.
func registerBuiltins(r *Registry) {
	r.Register(&NodeType{
		Name:    "Number",
		Outputs: []value.Type{value.Number},
		Params: []ParamSpec{
			{Name: "value", Type: value.Number, Default: value.Num(0), Description: "The numeric value"},
		},
		Version:     "1.0.0",
		Description: "A constant number node",
		Compute: func(c *Call) ([]value.Value, error) {
			return []value.Value{value.Num(c.NumberParam("value", 0))}, nil
		},
	})

	r.Register(&NodeType{
		Name:    "String",
		Outputs: []value.Type{value.String},
		Params: []ParamSpec{
			{Name: "text", Type: value.String, Default: value.Str(""), Description: "The string value"},
		},
		Version:     "1.0.0",
		Description: "A constant string node",
		Compute: func(c *Call) ([]value.Value, error) {
			return []value.Value{value.Str(c.StringParam("text", ""))}, nil
		},
	})

	r.Register(&NodeType{
		Name:    "Bool",
		Outputs: []value.Type{value.Bool},
		Params: []ParamSpec{
			{Name: "value", Type: value.Bool, Default: value.Boolean(false), Description: "The boolean value"},
		},
		Version:     "1.0.0",
		Description: "A constant boolean node",
		Compute: func(c *Call) ([]value.Value, error) {
			return []value.Value{value.Boolean(c.BoolParam("value", false))}, nil
		},
	})

	r.Register(&NodeType{
		Name:        "AddNumber",
		Inputs:      []value.Type{value.Number, value.Number},
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Adds two numbers together",
		Compute: func(c *Call) ([]value.Value, error) {
			a, b, err := twoNumbers(c)
			if err != nil {
				return nil, err
			}
			return []value.Value{value.Num(a + b)}, nil
		},
	})
	// Legacy name kept for callers that predate the typed node families.
	r.RegisterAlias("Add", "AddNumber")

	r.Register(&NodeType{
		Name:        "Multiply",
		Inputs:      []value.Type{value.Number, value.Number},
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Multiplies two numbers together",
		Compute: func(c *Call) ([]value.Value, error) {
			a, b, err := twoNumbers(c)
			if err != nil {
				return nil, err
			}
			return []value.Value{value.Num(a * b)}, nil
		},
	})

	r.Register(&NodeType{
		Name:        "ClampNumber",
		Inputs:      []value.Type{value.Number, value.Number, value.Number},
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Clamps a value between min and max bounds",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 3 {
				return nil, errors.New("invalid inputs (expects value, min, max)")
			}
			v, err := c.Inputs[0].AsNumber()
			if err != nil {
				return nil, err
			}
			lo, err := c.Inputs[1].AsNumber()
			if err != nil {
				return nil, err
			}
			hi, err := c.Inputs[2].AsNumber()
			if err != nil {
				return nil, err
			}
			return []value.Value{value.Num(min(max(v, lo), hi))}, nil
		},
	})

	r.Register(&NodeType{
		Name:    "ToString",
		Inputs:  []value.Type{value.Number},
		Outputs: []value.Type{value.String},
		Params: []ParamSpec{
			{
				Name:        "format",
				Type:        value.String,
				Default:     value.Str("default"),
				Enum:        []string{"default", "fixed", "scientific", "hex"},
				Description: "Number formatting style",
			},
		},
		Version:     "1.0.0",
		Description: "Converts a number to string with formatting options",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 1 {
				return nil, errors.New("invalid input (expects one number)")
			}
			v, err := c.Inputs[0].AsNumber()
			if err != nil {
				return nil, err
			}
			var s string
			switch c.StringParam("format", "default") {
			case "fixed":
				s = strconv.FormatFloat(v, 'f', 6, 64)
			case "scientific":
				s = strconv.FormatFloat(v, 'e', 6, 64)
			case "hex":
				// Truncate toward zero to a 32-bit signed integer, then
				// render its two's-complement bits in lowercase hex.
				s = strconv.FormatUint(uint64(uint32(int32(v))), 16)
			default:
				s = value.FormatNumber(v)
			}
			return []value.Value{value.Str(s)}, nil
		},
	})

	r.Register(&NodeType{
		Name:        "Concat",
		Inputs:      []value.Type{value.String, value.String},
		Outputs:     []value.Type{value.String},
		Version:     "1.0.0",
		Description: "Concatenates two strings",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 2 {
				return nil, errors.New("invalid inputs (expects two strings)")
			}
			a, err := c.Inputs[0].AsString()
			if err != nil {
				return nil, err
			}
			b, err := c.Inputs[1].AsString()
			if err != nil {
				return nil, err
			}
			return []value.Value{value.Str(a + b)}, nil
		},
	})

	r.Register(&NodeType{
		Name:        "OutputNumber",
		Inputs:      []value.Type{value.Number},
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Outputs a number value",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 1 || c.Inputs[0].Type() != value.Number {
				return nil, errors.New("expects a number input")
			}
			return []value.Value{c.Inputs[0]}, nil
		},
	})

	r.Register(&NodeType{
		Name:        "OutputString",
		Inputs:      []value.Type{value.String},
		Outputs:     []value.Type{value.String},
		Version:     "1.0.0",
		Description: "Outputs a string value",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 1 || c.Inputs[0].Type() != value.String {
				return nil, errors.New("expects a string input")
			}
			return []value.Value{c.Inputs[0]}, nil
		},
	})

	r.Register(&NodeType{
		Name:        ConditionalTypeName,
		Inputs:      []value.Type{value.Bool},
		Outputs:     []value.Type{value.Bool, value.Bool},
		Version:     "1.0.0",
		Description: "Conditional branching node - routes execution based on boolean condition",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 1 {
				return nil, errors.New("expects a bool condition input")
			}
			cond, err := c.Inputs[0].AsBool()
			if err != nil {
				return nil, err
			}
			// Output 0 is the then signal, output 1 the else signal.
			return []value.Value{value.Boolean(cond), value.Boolean(!cond)}, nil
		},
	})

	r.Register(&NodeType{
		Name:        "Merge",
		Inputs:      []value.Type{value.Number, value.Number},
		Outputs:     []value.Type{value.Number},
		Version:     "1.0.0",
		Description: "Merges data from conditional branches - passes through the active input",
		Compute: func(c *Call) ([]value.Value, error) {
			if len(c.Inputs) != 2 {
				return nil, errors.New("expects 2 inputs (then_input, else_input)")
			}
			// Selects the first input when it is non-zero, else the second.
			// Zero is a legitimate result, so this cannot distinguish "branch
			// produced 0" from "branch did not run"; control-aware selection
			// would need an explicit signal from the conditional node.
			thenVal, _ := c.Inputs[0].AsNumber()
			elseVal, _ := c.Inputs[1].AsNumber()
			result := elseVal
			if thenVal != 0 {
				result = thenVal
			}
			return []value.Value{value.Num(result)}, nil
		},
	})
}

// ConditionalTypeName is the registry name of the branching node type. Data
// edges originating from a node of this type double as control edges.
const ConditionalTypeName = "If"

// twoNumbers extracts the two number inputs shared by binary arithmetic
// node types such as AddNumber and Multiply.
func twoNumbers(c *Call) (float64, float64, error) {
	if len(c.Inputs) != 2 {
		return 0, 0, errors.New("invalid inputs (expects two numbers)")
	}
	a, err := c.Inputs[0].AsNumber()
	if err != nil {
		return 0, 0, err
	}
	b, err := c.Inputs[1].AsNumber()
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
