// Package app wires the engine together for the command-line front-end:
// configuration, an isolated logger, plan loading, graph construction,
// execution, and the JSON result document.
package app
