// Package testutil provides shared helpers for integration-style tests that
// run whole plans through the app layer.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gridflow/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements io.Writer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements fmt.Stringer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a plan run.
type HarnessResult struct {
	Stdout    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunPlanTest writes the plan source to a temporary file with the given
// name (the extension selects the format) and runs it through the app.
func RunPlanTest(t *testing.T, filename, source string) *HarnessResult {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	cfg, err := app.NewConfig(app.Config{
		PlanPath:  path,
		LogFormat: "text",
		LogLevel:  "debug",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	var logs SafeBuffer
	a := app.NewApp(&out, &logs, cfg)
	runErr := a.Run(context.Background())

	return &HarnessResult{
		Stdout:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       a,
	}
}
