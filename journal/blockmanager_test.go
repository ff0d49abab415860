package journal

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShouryaAnand/sawtooth-core/blockstore"
	"github.com/ShouryaAnand/sawtooth-core/metrics"
	"github.com/ShouryaAnand/sawtooth-core/types"
)

// newBlock creates a block for tests.
func newBlock(id, prev types.BlockID, num uint64) *types.Block {
	return &types.Block{
		ID:      id,
		PrevID:  prev,
		Num:     num,
		Payload: []byte("payload-" + string(id)),
	}
}

// newChain creates a contiguous chain of n blocks rooted at a genesis block,
// with ids <prefix>0 .. <prefix>n-1.
func newChain(prefix string, n int) []*types.Block {
	chain := make([]*types.Block, 0, n)
	prev := types.NullBlockIdentifier
	for i := 0; i < n; i++ {
		id := types.BlockID(fmt.Sprintf("%s%d", prefix, i))
		chain = append(chain, newBlock(id, prev, uint64(i)))
		prev = id
	}
	return chain
}

func TestPut_EmptyBranch(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	err := m.Put(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestPut_NilBlock(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	err := m.Put([]*types.Block{nil})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestPut_GenesisChain(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	chain := newChain("b", 3)
	require.NoError(t, m.Put(chain))

	for _, blk := range chain {
		assert.True(t, m.Contains(blk.ID), "missing %s", blk.ID)
	}
	assert.Equal(t, 3, m.PoolSize())
	assert.Equal(t, []types.BlockID{"b2"}, m.Tips())
}

func TestPut_ExtendsExistingChain(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 3)))
	require.NoError(t, m.Put([]*types.Block{
		newBlock("b3", "b2", 3),
		newBlock("b4", "b3", 4),
	}))

	assert.True(t, m.Contains("b4"))
	assert.Equal(t, []types.BlockID{"b4"}, m.Tips())
}

func TestPut_MissingPredecessor(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	err := m.Put([]*types.Block{newBlock("b5", "nowhere", 5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingPredecessor)
	assert.False(t, m.Contains("b5"))
}

func TestPut_MissingPredecessorInBranch(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 3)))

	// b4 references b2, not b3: internal contiguity broken.
	err := m.Put([]*types.Block{
		newBlock("b3", "b1", 3),
		newBlock("b4", "b2", 4),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingPredecessorInBranch)

	// All or nothing: neither block became visible.
	assert.False(t, m.Contains("b3"))
	assert.False(t, m.Contains("b4"))
}

func TestPut_FlatNumbersRejected(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	// Zero-value numbers break chain-position bookkeeping and must be
	// rejected wholesale, or branch diffs would misjudge ancestor depth.
	branch := []*types.Block{
		newBlock("b0", types.NullBlockIdentifier, 0),
		newBlock("b1", "b0", 0),
		newBlock("b2", "b1", 0),
	}
	err := m.Put(branch)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)

	for _, blk := range branch {
		assert.False(t, m.Contains(blk.ID))
	}
}

func TestPut_GenesisNumberMustBeZero(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	err := m.Put([]*types.Block{newBlock("g", types.NullBlockIdentifier, 3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
	assert.False(t, m.Contains("g"))
}

func TestPut_NumberAnchoredAtPredecessor(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 2)))

	// The first block of an extension must continue its resolved
	// predecessor's numbering, not restart or skip ahead.
	err := m.Put([]*types.Block{newBlock("b2", "b1", 7)})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
	assert.False(t, m.Contains("b2"))

	require.NoError(t, m.Put([]*types.Block{newBlock("b2", "b1", 2)}))
	assert.True(t, m.Contains("b2"))
}

func TestPut_Idempotent(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	chain := newChain("b", 3)
	require.NoError(t, m.Put(chain))

	// Overlapping branch: known prefix plus one new block.
	require.NoError(t, m.Put([]*types.Block{
		chain[1],
		chain[2],
		newBlock("b3", "b2", 3),
	}))

	assert.Equal(t, 4, m.PoolSize())
	assert.Equal(t, []types.BlockID{"b3"}, m.Tips())
}

func TestPut_Fork(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 2)))
	require.NoError(t, m.Put([]*types.Block{newBlock("c1", "b0", 1)}))

	assert.ElementsMatch(t, []types.BlockID{"b1", "c1"}, m.Tips())
}

func TestPut_PredecessorInStore(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	store := blockstore.NewMemoryBlockStore()
	require.NoError(t, store.Put("s1", newBlock("s1", types.NullBlockIdentifier, 0)))
	require.NoError(t, m.AddStore("commit", store))

	// The predecessor lives only in the store; the pool has never seen it.
	require.NoError(t, m.Put([]*types.Block{newBlock("s2", "s1", 1)}))
	assert.True(t, m.Contains("s2"))
}

func TestContains_Unknown(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	assert.False(t, m.Contains("anything"))
	assert.False(t, m.Contains(types.NullBlockIdentifier))
	assert.False(t, m.Contains(""))
}

func TestAddStore(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	store := blockstore.NewMemoryBlockStore()
	require.NoError(t, m.AddStore("commit", store))

	tests := []struct {
		name      string
		storeName string
	}{
		{name: "duplicate", storeName: "commit"},
		{name: "empty", storeName: ""},
		{name: "malformed", storeName: "no spaces allowed"},
		{name: "leading digit", storeName: "1store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.AddStore(tt.storeName, blockstore.NewMemoryBlockStore())
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidInputString)
		})
	}

	err := m.AddStore("valid", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestRefUnref(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 2)))

	// Ref twice, unref twice: restores the prior count.
	require.NoError(t, m.RefBlock("b1"))
	require.NoError(t, m.RefBlock("b1"))
	require.NoError(t, m.UnrefBlock("b1"))
	require.NoError(t, m.UnrefBlock("b1"))

	// A third unref goes below zero and must fail, not clamp.
	err := m.UnrefBlock("b1")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownBlock)
}

func TestRefUnref_UnknownBlock(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	err := m.RefBlock("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownBlock)

	err = m.UnrefBlock("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownBlock)
}

func TestPersist(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	store := blockstore.NewMemoryBlockStore()
	require.NoError(t, m.AddStore("commit", store))
	require.NoError(t, m.Put(newChain("b", 2)))

	require.NoError(t, m.Persist("b0", "commit"))

	// The block left the pool but remains resolvable through the store.
	assert.Equal(t, 1, m.PoolSize())
	assert.True(t, m.Contains("b0"))

	got, err := store.Get("b0")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload-b0"), got.Payload)

	// Get reads through the store transparently.
	it := m.Get([]types.BlockID{"b0"})
	blk, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload-b0"), blk.Payload)
}

func TestPersist_UnknownStore(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 1)))

	err := m.Persist("b0", "nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownStore)
}

func TestPersist_UnknownBlock(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	store := blockstore.NewMemoryBlockStore()
	require.NoError(t, m.AddStore("commit", store))

	err := m.Persist("missing", "commit")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownBlock)

	// Persisting twice fails the same way: the block is no longer pooled.
	require.NoError(t, m.Put(newChain("b", 1)))
	require.NoError(t, m.Persist("b0", "commit"))
	err = m.Persist("b0", "commit")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownBlock)
}

func TestPersist_PinnedBlock(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	store := blockstore.NewMemoryBlockStore()
	require.NoError(t, m.AddStore("commit", store))
	require.NoError(t, m.Put(newChain("b", 1)))

	// Pins do not block persistence: placement, not lifetime.
	require.NoError(t, m.RefBlock("b0"))
	require.NoError(t, m.Persist("b0", "commit"))
	assert.True(t, m.Contains("b0"))

	// The pin is still accounted for after the move.
	require.NoError(t, m.UnrefBlock("b0"))
	err := m.UnrefBlock("b0")
	require.Error(t, err)
}

func TestStoreFallbackOrder(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	first := blockstore.NewMemoryBlockStore()
	second := blockstore.NewMemoryBlockStore()
	require.NoError(t, m.AddStore("first", first))
	require.NoError(t, m.AddStore("second", second))

	// The same id in both stores resolves through the first-registered one.
	require.NoError(t, first.Put("x", newBlock("x", types.NullBlockIdentifier, 0)))
	require.NoError(t, second.Put("x", &types.Block{
		ID: "x", PrevID: types.NullBlockIdentifier, Payload: []byte("shadowed"),
	}))

	it := m.Get([]types.BlockID{"x"})
	blk, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("payload-x"), blk.Payload)
}

func TestClose(t *testing.T) {
	m := NewBlockManager()
	require.NoError(t, m.Put(newChain("b", 1)))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent

	err := m.Put(newChain("c", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInternal)

	assert.False(t, m.Contains("b0"))

	err = m.RefBlock("b0")
	assert.ErrorIs(t, err, types.ErrInternal)
}

func TestConcurrentPutAndRead(t *testing.T) {
	m := NewBlockManager()
	defer m.Close()

	require.NoError(t, m.Put(newChain("b", 1)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prefix := fmt.Sprintf("w%d-", i)
			prev := types.BlockID("b0")
			for j := 0; j < 50; j++ {
				id := types.BlockID(fmt.Sprintf("%s%d", prefix, j))
				err := m.Put([]*types.Block{newBlock(id, prev, uint64(j + 1))})
				assert.NoError(t, err)
				prev = id
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				m.Contains("b0")
				it := m.Branch("b0")
				_, err := it.Next()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// Every writer's full chain must be visible.
	for i := 0; i < 8; i++ {
		last := types.BlockID(fmt.Sprintf("w%d-49", i))
		assert.True(t, m.Contains(last))
	}
}

func TestMetricsInstrumentation(t *testing.T) {
	pm := metrics.NewPrometheusMetrics("journal")
	m := NewBlockManager(WithMetrics(pm))
	defer m.Close()

	require.NoError(t, m.AddStore("commit", blockstore.NewMemoryBlockStore()))

	chain := newChain("b", 3)
	require.NoError(t, m.Put(chain))
	require.NoError(t, m.RefBlock("b2"))
	require.NoError(t, m.Persist("b0", "commit"))

	ids, err := drain(t, m.Branch("b2"))
	require.NoError(t, err)
	require.Len(t, ids, 3)

	rec := httptest.NewRecorder()
	pm.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "journal_blocks_put_total 3")
	assert.Contains(t, body, `journal_blocks_persisted_total{store="commit"} 1`)
	assert.Contains(t, body, "journal_block_refs_total 1")
	assert.Contains(t, body, "journal_pool_size 2")
	assert.Contains(t, body, "journal_stores_registered 1")
	assert.Contains(t, body, `journal_blocks_yielded_total{traversal="branch"} 3`)
}
