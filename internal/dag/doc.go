// Package dag is the execution layer of the engine. It analyzes a committed
// graph's edge set (indegrees, port-indexed input map, derived control
// edges, acyclicity via Kahn's algorithm) and runs one task per node on a
// worker pool, honoring data precedence, gating conditionally-controlled
// branches, and propagating the first failure.
package dag
