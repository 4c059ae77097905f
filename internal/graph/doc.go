// Package graph is the construction layer of the engine. It accepts the
// incremental build operations (add node, set parameter, connect, designate
// output pin), validating each against the node-type registry and prior
// state. Execution of a committed graph lives in the dag package.
package graph
