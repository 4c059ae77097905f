package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vk/gridflow/internal/graph"
)

// resultDoc is the JSON document written after a run: one entry per output
// pin that was actually computed, in pin order.
type resultDoc struct {
	Outputs []resultPin `json:"outputs"`
}

type resultPin struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// writeResult serializes the readable output pins. Pins whose producer was
// skipped are omitted rather than reported as errors; the caller opted into
// a conditional plan.
func (a *App) writeResult() error {
	doc := resultDoc{Outputs: []resultPin{}}
	for i := range a.graph.Outputs {
		v, err := a.graph.OutputValue(i)
		if err != nil {
			if errors.Is(err, graph.ErrNotComputed) {
				a.logger.Debug("Output pin not computed, omitting from result.", "index", i)
				continue
			}
			return err
		}
		doc.Outputs = append(doc.Outputs, resultPin{
			Index: i,
			Type:  v.Type().String(),
			Value: v.Interface(),
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if _, err := fmt.Fprintln(a.outW, string(data)); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}
