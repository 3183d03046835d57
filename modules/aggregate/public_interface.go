package aggregate

import "github.com/chebyrash/promise"

// Plugin is one lifecycle unit of the node: configs, the mongo client and
// collections, the treasury engine, the API server and the background
// managers all implement it and are composed into a single Aggregate in
// cmd/treasury-node.
type Plugin interface {
	// Runs initialization in the order the plugins are passed to `Aggregate`
	Init() error
	// Runs startup and should be non blocking; long running plugins resolve
	// their promise when they finish
	Start() *promise.Promise[any]
	// Runs cleanup once the `Aggregate` is finished
	Stop() error
}
