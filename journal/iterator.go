package journal

import (
	"fmt"

	"github.com/ShouryaAnand/sawtooth-core/types"
)

// Iterator is a pull-based, single-owner cursor over blocks. Next returns
// the next block, or (nil, nil) when the sequence is exhausted. Any error is
// terminal: a failed iterator stays failed, and callers must re-invoke the
// originating traversal to retry. Iterators hold no lock between calls, so
// a concurrent Persist moving a block from the pool to a store is invisible
// to them.
type Iterator interface {
	Next() (*types.Block, error)
}

// Traversal kind labels for metrics.
const (
	traversalGet        = "get"
	traversalBranch     = "branch"
	traversalBranchDiff = "branch_diff"
)

// Get returns an iterator over the requested ids, in order, each resolved
// through the pool and then the stores in registration order. An id that
// cannot be resolved fails the iterator with types.ErrUnknownBlock; ids are
// never silently skipped. The sequence is single pass and bounded by the
// input length.
func (m *BlockManager) Get(ids []types.BlockID) *GetIterator {
	return &GetIterator{mgr: m, ids: ids}
}

// GetIterator is the cursor returned by Get.
type GetIterator struct {
	mgr *BlockManager
	ids []types.BlockID
	pos int
	err error
}

// Next returns the next requested block.
func (it *GetIterator) Next() (*types.Block, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.pos >= len(it.ids) {
		return nil, nil
	}

	id := it.ids[it.pos]
	it.pos++

	it.mgr.mu.RLock()
	defer it.mgr.mu.RUnlock()

	if err := it.mgr.checkOpen(); err != nil {
		it.err = err
		return nil, it.err
	}
	blk, err := it.mgr.resolveLocked(id)
	if err != nil {
		it.err = err
		return nil, it.err
	}
	if blk == nil {
		it.err = fmt.Errorf("%w: %s", types.ErrUnknownBlock, id.Short())
		return nil, it.err
	}
	it.mgr.metrics.IncBlocksYielded(traversalGet)
	return blk, nil
}

// Branch returns an iterator that walks backward from tip: tip, its
// predecessor, and so on. The sequence ends after yielding a genesis block,
// or when a predecessor id no longer resolves, which marks the edge of
// locally known history and is a normal end, not an error. An unknown tip
// fails the first Next with types.ErrUnknownBlock.
func (m *BlockManager) Branch(tip types.BlockID) *BranchIterator {
	return &BranchIterator{mgr: m, cur: tip}
}

// BranchIterator is the cursor returned by Branch.
type BranchIterator struct {
	mgr     *BlockManager
	cur     types.BlockID
	started bool
	err     error
}

// Next returns the next block on the ancestry walk.
func (it *BranchIterator) Next() (*types.Block, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.cur.IsEmpty() || it.cur.IsNull() {
		return nil, nil
	}

	it.mgr.mu.RLock()
	defer it.mgr.mu.RUnlock()

	if err := it.mgr.checkOpen(); err != nil {
		it.err = err
		return nil, it.err
	}
	blk, err := it.mgr.resolveLocked(it.cur)
	if err != nil {
		it.err = err
		return nil, it.err
	}
	if blk == nil {
		if !it.started {
			it.err = fmt.Errorf("%w: %s", types.ErrUnknownBlock, it.cur.Short())
			return nil, it.err
		}
		// Edge of known history.
		it.cur = ""
		return nil, nil
	}

	it.started = true
	it.cur = blk.PrevID
	it.mgr.metrics.IncBlocksYielded(traversalBranch)
	return blk, nil
}

// BranchDiff returns an iterator over the blocks on tip's ancestry that are
// not also ancestors of exclude, ending just before their most recent common
// ancestor. The walk co-descends both chains by block number (Put guarantees
// numbers advance by one along a chain), so the exclude chain is never
// materialized beyond a single cursor. If the histories never
// converge the whole of tip's chain is yielded. Unknown tip or exclude fails
// the first Next with types.ErrUnknownBlock.
func (m *BlockManager) BranchDiff(tip, exclude types.BlockID) *BranchDiffIterator {
	return &BranchDiffIterator{mgr: m, cur: tip, excl: exclude}
}

// BranchDiffIterator is the cursor returned by BranchDiff.
type BranchDiffIterator struct {
	mgr *BlockManager

	cur     types.BlockID
	started bool

	excl          types.BlockID
	exclNum       uint64
	exclResolved  bool
	exclExhausted bool

	err error
}

// Next returns the next block unique to tip's lineage.
func (it *BranchDiffIterator) Next() (*types.Block, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.cur.IsEmpty() || it.cur.IsNull() {
		return nil, nil
	}

	it.mgr.mu.RLock()
	defer it.mgr.mu.RUnlock()

	if err := it.mgr.checkOpen(); err != nil {
		it.err = err
		return nil, it.err
	}

	if !it.exclResolved {
		if err := it.resolveExcludeLocked(); err != nil {
			it.err = err
			return nil, it.err
		}
	}

	blk, err := it.mgr.resolveLocked(it.cur)
	if err != nil {
		it.err = err
		return nil, it.err
	}
	if blk == nil {
		if !it.started {
			it.err = fmt.Errorf("%w: %s", types.ErrUnknownBlock, it.cur.Short())
			return nil, it.err
		}
		it.cur = ""
		return nil, nil
	}
	it.started = true

	// Advance the exclude cursor until it is no deeper into the future than
	// the current tip-side block.
	if err := it.advanceExcludeLocked(blk.Num); err != nil {
		it.err = err
		return nil, it.err
	}

	if !it.exclExhausted && it.excl == blk.ID {
		// Common ancestor: everything from here down is shared.
		it.cur = ""
		return nil, nil
	}

	it.cur = blk.PrevID
	it.mgr.metrics.IncBlocksYielded(traversalBranchDiff)
	return blk, nil
}

// resolveExcludeLocked establishes the exclude-side cursor. An unknown
// exclude id is an error; an exclude chain is otherwise free to end early.
func (it *BranchDiffIterator) resolveExcludeLocked() error {
	blk, err := it.mgr.resolveLocked(it.excl)
	if err != nil {
		return err
	}
	if blk == nil {
		return fmt.Errorf("%w: %s", types.ErrUnknownBlock, it.excl.Short())
	}
	it.exclNum = blk.Num
	it.exclResolved = true
	return nil
}

// advanceExcludeLocked steps the exclude cursor toward genesis until its
// block number is at most num. Running off the end of the exclude chain,
// at genesis or at the edge of known history, exhausts the exclude side.
func (it *BranchDiffIterator) advanceExcludeLocked(num uint64) error {
	for !it.exclExhausted && it.exclNum > num {
		blk, err := it.mgr.resolveLocked(it.excl)
		if err != nil {
			return err
		}
		if blk == nil || blk.PrevID.IsNull() {
			it.exclExhausted = true
			return nil
		}
		prev, err := it.mgr.resolveLocked(blk.PrevID)
		if err != nil {
			return err
		}
		if prev == nil {
			it.exclExhausted = true
			return nil
		}
		it.excl = prev.ID
		it.exclNum = prev.Num
	}
	return nil
}
