// Package registry holds the immutable catalog of node types: for each type
// name, the typed input and output ports, the declared parameters, and the
// pure compute function. The built-in catalog is seeded once per process and
// never changes afterwards, so graphs hold plain references into it.
package registry
