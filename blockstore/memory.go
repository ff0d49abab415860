package blockstore

import (
	"fmt"
	"sync"

	"github.com/ShouryaAnand/sawtooth-core/types"
)

// MemoryBlockStore implements BlockStore with in-memory storage.
// Primarily used for testing.
type MemoryBlockStore struct {
	blocks map[types.BlockID]*types.Block
	mu     sync.RWMutex
}

// NewMemoryBlockStore creates a new in-memory block store.
func NewMemoryBlockStore() *MemoryBlockStore {
	return &MemoryBlockStore{
		blocks: make(map[types.BlockID]*types.Block),
	}
}

// Has checks if a block exists in the store.
func (m *MemoryBlockStore) Has(id types.BlockID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.blocks[id]
	return ok, nil
}

// Get retrieves a block by id.
func (m *MemoryBlockStore) Get(id types.BlockID) (*types.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blk, ok := m.blocks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownBlock, id.Short())
	}
	return blk, nil
}

// Put stores a block under its id.
func (m *MemoryBlockStore) Put(id types.BlockID, blk *types.Block) error {
	if blk == nil {
		return fmt.Errorf("%w: nil block", types.ErrMissingInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blocks[id]; exists {
		return nil
	}
	m.blocks[id] = blk
	return nil
}

// Len returns the number of blocks in the store.
func (m *MemoryBlockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks)
}

// Close is a no-op for the memory store.
func (m *MemoryBlockStore) Close() error {
	return nil
}
