// Package metrics provides metrics collection for the block manager.
package metrics

// Metrics defines the metrics collection interface.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// Pool metrics
	SetPoolSize(size int)
	SetTips(count int)

	// Lifecycle metrics
	IncBlocksPut(count int)
	IncBlocksPersisted(store string)
	IncBlockRefs()
	IncBlockUnrefs()

	// Store metrics
	SetStoresRegistered(count int)

	// Traversal metrics
	IncBlocksYielded(traversal string)
}
