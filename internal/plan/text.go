package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/gridflow/internal/value"
)

// ParseText parses the line-oriented v0 plan format:
//
//	NODES <n>                                  (optional, ignored)
//	NODE <id> <type> [key=value ...]
//	CONNECTION <fromId> <fromOut> <toId> <toIn>
//	OUTPUT <id> <outIdx>
//
// Parameter values that parse as numbers become Number parameters, all
// others become Strings. Lines whose head matches none of the keywords are
// ignored.
func ParseText(src string) (*Plan, error) {
	p := &Plan{}
	for lineNo, line := range strings.Split(src, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "NODE":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: NODE wants <id> <type>", lineNo+1)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: NODE id: %w", lineNo+1, err)
			}
			n := Node{ID: id, Type: fields[2], Params: make(map[string]value.Value)}
			for _, kv := range fields[3:] {
				key, raw, ok := strings.Cut(kv, "=")
				if !ok || key == "" {
					return nil, fmt.Errorf("line %d: malformed parameter '%s'", lineNo+1, kv)
				}
				if num, err := strconv.ParseFloat(raw, 64); err == nil {
					n.Params[key] = value.Num(num)
				} else {
					n.Params[key] = value.Str(raw)
				}
			}
			p.Nodes = append(p.Nodes, n)

		case "CONNECTION":
			nums, err := atoiAll(fields[1:], 4)
			if err != nil {
				return nil, fmt.Errorf("line %d: CONNECTION: %w", lineNo+1, err)
			}
			p.Connections = append(p.Connections, Connection{
				From: nums[0], FromOutput: nums[1], To: nums[2], ToInput: nums[3],
			})

		case "OUTPUT":
			nums, err := atoiAll(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: OUTPUT: %w", lineNo+1, err)
			}
			p.Outputs = append(p.Outputs, Output{Node: nums[0], Output: nums[1]})

		default:
			// NODES headers, comments, and anything else fall through.
		}
	}
	return p, nil
}

func atoiAll(fields []string, want int) ([]int, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("wants %d integers, got %d", want, len(fields))
	}
	nums := make([]int, want)
	for i := 0; i < want; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return nums, nil
}
