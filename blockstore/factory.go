package blockstore

import (
	"fmt"
)

// Supported storage backends.
const (
	BackendMemory   = "memory"
	BackendLevelDB  = "leveldb"
	BackendBadgerDB = "badgerdb"
)

// New creates a block store for the given backend.
// Path is ignored for the memory backend.
func New(backend, path string) (BlockStore, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryBlockStore(), nil
	case BackendLevelDB:
		return NewLevelDBBlockStore(path)
	case BackendBadgerDB:
		return NewBadgerDBBlockStore(path)
	default:
		return nil, fmt.Errorf("unknown blockstore backend: %q", backend)
	}
}
