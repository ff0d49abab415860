// Package journal implements the authoritative index of blocks held by a
// node. The BlockManager tracks which blocks exist, how they chain into
// branches, which are pinned in memory, and which have been committed to
// durable storage. Block validation, fork resolution, and chain commit all
// consult it to answer "does this block exist", "what is its ancestry", and
// "which blocks does one branch have that another lacks".
package journal

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ShouryaAnand/sawtooth-core/blockstore"
	"github.com/ShouryaAnand/sawtooth-core/logging"
	"github.com/ShouryaAnand/sawtooth-core/metrics"
	"github.com/ShouryaAnand/sawtooth-core/types"
)

// namedStore pairs a registered store with its name. Stores are consulted in
// registration order, giving deterministic fallback precedence.
type namedStore struct {
	name  string
	store blockstore.BlockStore
}

// BlockManager is the block-indexing and branch-traversal engine. It owns an
// in-memory pool of not-yet-persisted blocks, the predecessor index, per-id
// reference counts, and a registry of named durable stores. The pool and the
// stores form one logical namespace to readers.
//
// A BlockManager is safe for concurrent use. Mutating operations serialize
// on an internal lock; read operations share it.
type BlockManager struct {
	mu sync.RWMutex

	// pool holds blocks that have not been persisted to any store.
	pool map[types.BlockID]*types.Block

	// refs holds pin counts. A block with no entry has count zero.
	refs map[types.BlockID]uint64

	// prev is the predecessor adjacency for every block seen through Put,
	// including blocks since moved to a store.
	prev map[types.BlockID]types.BlockID

	// successors counts known successors per block id, used to derive tips.
	successors map[types.BlockID]int

	// tips is the set of known blocks that no other known block references
	// as its predecessor.
	tips map[types.BlockID]struct{}

	stores      []namedStore
	storeByName map[string]blockstore.BlockStore

	// cache holds blocks read back from stores. Blocks are immutable, so
	// entries never need invalidation.
	cache *lru.Cache[types.BlockID, *types.Block]

	closed bool

	logger  *logging.Logger
	metrics metrics.Metrics
}

// DefaultCacheSize is the default capacity of the store read cache.
const DefaultCacheSize = 1024

// Option configures a BlockManager.
type Option func(*BlockManager)

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *BlockManager) {
		m.logger = l.WithComponent("journal")
	}
}

// WithMetrics sets the metrics collector. Defaults to nop metrics.
func WithMetrics(mt metrics.Metrics) Option {
	return func(m *BlockManager) {
		m.metrics = mt
	}
}

// WithCacheSize sets the capacity of the store read cache.
// A size of zero disables caching.
func WithCacheSize(size int) Option {
	return func(m *BlockManager) {
		m.cache = nil
		if size > 0 {
			m.cache, _ = lru.New[types.BlockID, *types.Block](size)
		}
	}
}

// NewBlockManager creates an empty block manager with no registered stores.
func NewBlockManager(opts ...Option) *BlockManager {
	m := &BlockManager{
		pool:        make(map[types.BlockID]*types.Block),
		refs:        make(map[types.BlockID]uint64),
		prev:        make(map[types.BlockID]types.BlockID),
		successors:  make(map[types.BlockID]int),
		tips:        make(map[types.BlockID]struct{}),
		storeByName: make(map[string]blockstore.BlockStore),
		logger:      logging.NewNopLogger(),
		metrics:     metrics.NewNopMetrics(),
	}
	m.cache, _ = lru.New[types.BlockID, *types.Block](DefaultCacheSize)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddStore registers a named backing store. Lookups fall back to stores in
// registration order. Returns types.ErrInvalidInputString for a malformed or
// duplicate name.
func (m *BlockManager) AddStore(name string, store blockstore.BlockStore) error {
	if err := types.ValidateStoreName(name); err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: nil store", types.ErrMissingInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpen(); err != nil {
		return err
	}
	if _, exists := m.storeByName[name]; exists {
		return fmt.Errorf("%w: store %q already registered", types.ErrInvalidInputString, name)
	}

	m.stores = append(m.stores, namedStore{name: name, store: store})
	m.storeByName[name] = store
	m.metrics.SetStoresRegistered(len(m.stores))
	m.logger.Info("registered store", logging.Store(name))
	return nil
}

// Put inserts a branch of blocks into the pool. The branch is ordered oldest
// to newest; each block's predecessor must be the block before it, and the
// first block's predecessor must already be known in the pool or some store
// (or be the genesis sentinel). Block numbers must advance by one along the
// chain, anchored at the resolved predecessor; BranchDiff's co-descent
// depends on that. Validation happens before any mutation, so a failed Put
// leaves no trace. Blocks already known are skipped, which makes overlapping
// branches idempotent.
func (m *BlockManager) Put(branch []*types.Block) error {
	if len(branch) == 0 {
		return fmt.Errorf("%w: empty branch", types.ErrMissingInput)
	}
	for _, blk := range branch {
		if err := types.ValidateBlock(blk); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpen(); err != nil {
		return err
	}

	first := branch[0]
	var pred *types.Block
	if !first.PrevID.IsNull() {
		var err error
		pred, err = m.resolveLocked(first.PrevID)
		if err != nil {
			return err
		}
		if pred == nil {
			return fmt.Errorf("%w: block %s references %s", types.ErrMissingPredecessor,
				first.ID.Short(), first.PrevID.Short())
		}
	}
	for i := 1; i < len(branch); i++ {
		if branch[i].PrevID != branch[i-1].ID {
			return fmt.Errorf("%w: block %s references %s, expected %s",
				types.ErrMissingPredecessorInBranch,
				branch[i].ID.Short(), branch[i].PrevID.Short(), branch[i-1].ID.Short())
		}
	}

	if pred == nil {
		if first.Num != 0 {
			return fmt.Errorf("%w: genesis block %s has number %d, expected 0",
				types.ErrMissingInput, first.ID.Short(), first.Num)
		}
	} else if first.Num != pred.Num+1 {
		return fmt.Errorf("%w: block %s has number %d, predecessor %s has %d",
			types.ErrMissingInput, first.ID.Short(), first.Num,
			pred.ID.Short(), pred.Num)
	}
	for i := 1; i < len(branch); i++ {
		if branch[i].Num != branch[i-1].Num+1 {
			return fmt.Errorf("%w: block %s has number %d, expected %d",
				types.ErrMissingInput, branch[i].ID.Short(), branch[i].Num,
				branch[i-1].Num+1)
		}
	}

	inserted := 0
	for _, blk := range branch {
		if _, indexed := m.prev[blk.ID]; indexed {
			continue
		}
		// A block may already live in a store the manager did not index,
		// e.g. a pre-populated store registered after the fact. Index its
		// adjacency but keep it out of the pool.
		if !m.inAnyStoreLocked(blk.ID) {
			m.pool[blk.ID] = blk
			inserted++
		}
		m.indexLocked(blk)
	}

	m.metrics.IncBlocksPut(inserted)
	m.metrics.SetPoolSize(len(m.pool))
	m.metrics.SetTips(len(m.tips))
	m.logger.Debug("put branch",
		logging.Count(len(branch)),
		logging.BlockID(branch[len(branch)-1].ID))
	return nil
}

// indexLocked records a block in the adjacency index and updates the tip set.
func (m *BlockManager) indexLocked(blk *types.Block) {
	m.prev[blk.ID] = blk.PrevID
	if !blk.PrevID.IsNull() {
		m.successors[blk.PrevID]++
		delete(m.tips, blk.PrevID)
	}
	if m.successors[blk.ID] == 0 {
		m.tips[blk.ID] = struct{}{}
	}
}

// Contains reports whether the id resolves in the pool or any registered
// store. It never fails; store read errors count as absence.
func (m *BlockManager) Contains(id types.BlockID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false
	}
	return m.containsLocked(id)
}

// RefBlock increments the pin count for a block, preventing the pool copy
// from being considered evictable. Returns types.ErrUnknownBlock if the id
// does not resolve anywhere.
func (m *BlockManager) RefBlock(id types.BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpen(); err != nil {
		return err
	}
	if !m.containsLocked(id) {
		return fmt.Errorf("%w: %s", types.ErrUnknownBlock, id.Short())
	}

	m.refs[id]++
	m.metrics.IncBlockRefs()
	return nil
}

// UnrefBlock decrements the pin count for a block. Unpinning a block with no
// outstanding pins is an error, not silent saturation: it surfaces caller
// bugs.
func (m *BlockManager) UnrefBlock(id types.BlockID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpen(); err != nil {
		return err
	}
	if !m.containsLocked(id) {
		return fmt.Errorf("%w: %s", types.ErrUnknownBlock, id.Short())
	}

	count := m.refs[id]
	if count == 0 {
		return fmt.Errorf("%w: block %s has no outstanding references", types.ErrUnknownBlock, id.Short())
	}
	if count == 1 {
		delete(m.refs, id)
	} else {
		m.refs[id] = count - 1
	}
	m.metrics.IncBlockUnrefs()
	return nil
}

// Persist moves a block from the pool into the named store. Persistence is a
// placement operation: outstanding pins do not block it, and afterwards the
// id remains resolvable transparently through the store. Returns
// types.ErrUnknownStore for an unregistered name and types.ErrUnknownBlock
// if the block is not pool resident.
func (m *BlockManager) Persist(id types.BlockID, storeName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkOpen(); err != nil {
		return err
	}

	store, ok := m.storeByName[storeName]
	if !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownStore, storeName)
	}
	blk, ok := m.pool[id]
	if !ok {
		return fmt.Errorf("%w: %s is not in the pool", types.ErrUnknownBlock, id.Short())
	}

	if err := store.Put(id, blk); err != nil {
		return fmt.Errorf("persisting block %s to store %q: %w", id.Short(), storeName, err)
	}

	// The durable copy is now authoritative; the pool copy is dropped. The
	// adjacency index keeps the block traversable.
	delete(m.pool, id)
	m.metrics.IncBlocksPersisted(storeName)
	m.metrics.SetPoolSize(len(m.pool))
	m.logger.Debug("persisted block", logging.BlockID(id), logging.Store(storeName))
	return nil
}

// Tips returns the ids of all known blocks that no other known block
// references as a predecessor, sorted for determinism.
func (m *BlockManager) Tips() []types.BlockID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tips := make([]types.BlockID, 0, len(m.tips))
	for id := range m.tips {
		tips = append(tips, id)
	}
	sort.Slice(tips, func(i, j int) bool { return tips[i] < tips[j] })
	return tips
}

// PoolSize returns the number of blocks resident in the pool.
func (m *BlockManager) PoolSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.pool)
}

// Close marks the manager unusable and releases its internal state. It does
// not close the registered stores; their owner does.
func (m *BlockManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.pool = nil
	m.refs = nil
	m.prev = nil
	m.successors = nil
	m.tips = nil
	m.stores = nil
	m.storeByName = nil
	if m.cache != nil {
		m.cache.Purge()
		m.cache = nil
	}
	m.logger.Info("block manager closed")
	return nil
}

// checkOpen returns an error if the manager has been closed.
// Callers must hold the lock.
func (m *BlockManager) checkOpen() error {
	if m.closed {
		return fmt.Errorf("%w: block manager is closed", types.ErrInternal)
	}
	return nil
}

// containsLocked reports whether the id resolves in the pool or any store.
// Callers must hold at least the read lock.
func (m *BlockManager) containsLocked(id types.BlockID) bool {
	if id.IsEmpty() || id.IsNull() {
		return false
	}
	if _, ok := m.pool[id]; ok {
		return true
	}
	if m.cache != nil && m.cache.Contains(id) {
		return true
	}
	return m.inAnyStoreLocked(id)
}

// inAnyStoreLocked reports whether any registered store holds the id.
// Store errors are logged and treated as absence.
func (m *BlockManager) inAnyStoreLocked(id types.BlockID) bool {
	for _, ns := range m.stores {
		ok, err := ns.store.Has(id)
		if err != nil {
			m.logger.Warn("store lookup failed", logging.Store(ns.name), logging.Err(err))
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// resolveLocked fetches a block from the pool or the stores in registration
// order. A nil block with a nil error means the id is not known anywhere.
// Callers must hold at least the read lock.
func (m *BlockManager) resolveLocked(id types.BlockID) (*types.Block, error) {
	if id.IsEmpty() || id.IsNull() {
		return nil, nil
	}
	if blk, ok := m.pool[id]; ok {
		return blk, nil
	}
	if m.cache != nil {
		if blk, ok := m.cache.Get(id); ok {
			return blk, nil
		}
	}
	for _, ns := range m.stores {
		blk, err := ns.store.Get(id)
		if err == nil {
			if m.cache != nil {
				m.cache.Add(id, blk)
			}
			return blk, nil
		}
		if !isUnknownBlock(err) {
			return nil, fmt.Errorf("%w: reading block %s from store %q: %v",
				types.ErrInternal, id.Short(), ns.name, err)
		}
	}
	return nil, nil
}

// isUnknownBlock reports whether a store error means "not found" rather than
// a real failure.
func isUnknownBlock(err error) bool {
	return errors.Is(err, types.ErrUnknownBlock)
}
