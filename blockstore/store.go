// Package blockstore provides the durable block store interface and
// implementations.
package blockstore

import (
	"github.com/ShouryaAnand/sawtooth-core/types"
)

// BlockStore defines the interface for durable block persistence, keyed by
// block id. Implementations must be safe for concurrent use.
type BlockStore interface {
	// Has checks if a block exists in the store.
	Has(id types.BlockID) (bool, error)

	// Get retrieves a block by id.
	// Returns types.ErrUnknownBlock if the block does not exist.
	Get(id types.BlockID) (*types.Block, error)

	// Put stores a block under its id. Blocks are immutable: storing the
	// same id again is a no-op.
	Put(id types.BlockID, blk *types.Block) error

	// Close closes the store and releases resources.
	Close() error
}
