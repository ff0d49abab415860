package blockstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/ShouryaAnand/sawtooth-core/codec"
	"github.com/ShouryaAnand/sawtooth-core/types"
)

// Key prefixes for LevelDB storage.
var (
	prefixBlock  = []byte("B:") // BlockID -> serialized block
	keyMetaCount = []byte("M:count")
)

// LevelDBBlockStore implements BlockStore using LevelDB.
type LevelDBBlockStore struct {
	db    *leveldb.DB
	path  string
	count int64
	mu    sync.RWMutex
}

// NewLevelDBBlockStore creates a new LevelDB-backed block store.
func NewLevelDBBlockStore(path string) (*LevelDBBlockStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		NoSync: false, // Ensure durability
	})
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}

	store := &LevelDBBlockStore{
		db:   db,
		path: path,
	}

	if err := store.loadMetadata(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	return store, nil
}

// loadMetadata loads the block count from the database.
func (s *LevelDBBlockStore) loadMetadata() error {
	data, err := s.db.Get(keyMetaCount, nil)
	if err == nil {
		s.count = decodeInt64(data)
	} else if err != leveldb.ErrNotFound {
		return err
	}
	return nil
}

// Has checks if a block exists in the store.
func (s *LevelDBBlockStore) Has(id types.BlockID) (bool, error) {
	ok, err := s.db.Has(blockKey(id), nil)
	if err != nil {
		return false, fmt.Errorf("checking block %s: %w", id.Short(), err)
	}
	return ok, nil
}

// Get retrieves a block by id.
func (s *LevelDBBlockStore) Get(id types.BlockID) (*types.Block, error) {
	data, err := s.db.Get(blockKey(id), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownBlock, id.Short())
	}
	if err != nil {
		return nil, fmt.Errorf("loading block %s: %w", id.Short(), err)
	}

	blk, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding block %s: %w", id.Short(), err)
	}
	return blk, nil
}

// Put stores a block under its id.
func (s *LevelDBBlockStore) Put(id types.BlockID, blk *types.Block) error {
	if blk == nil {
		return fmt.Errorf("%w: nil block", types.ErrMissingInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.db.Has(blockKey(id), nil)
	if err != nil {
		return fmt.Errorf("checking block %s: %w", id.Short(), err)
	}
	if exists {
		return nil
	}

	data, err := codec.Marshal(blk)
	if err != nil {
		return fmt.Errorf("encoding block %s: %w", id.Short(), err)
	}

	batch := new(leveldb.Batch)
	batch.Put(blockKey(id), data)
	batch.Put(keyMetaCount, encodeInt64(s.count+1))

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("writing block %s: %w", id.Short(), err)
	}
	s.count++
	return nil
}

// Count returns the number of blocks stored.
func (s *LevelDBBlockStore) Count() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.count
}

// Close closes the underlying database.
func (s *LevelDBBlockStore) Close() error {
	return s.db.Close()
}

// blockKey returns the database key for a block id.
func blockKey(id types.BlockID) []byte {
	key := make([]byte, 0, len(prefixBlock)+len(id))
	key = append(key, prefixBlock...)
	key = append(key, id...)
	return key
}

// encodeInt64 encodes an int64 as big-endian bytes.
func encodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

// decodeInt64 decodes a big-endian int64.
func decodeInt64(data []byte) int64 {
	if len(data) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(data))
}
