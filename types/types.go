// Package types provides common type definitions for the block manager.
package types

import (
	"fmt"
)

// BlockID identifies a block by its content hash, hex-encoded.
// Equality is exact string match.
type BlockID string

// NullBlockIdentifier is the distinguished predecessor id carried by a
// genesis block. It never identifies a real block.
const NullBlockIdentifier BlockID = "0000000000000000"

// Block is an immutable unit of the chain. It carries its own id, the id of
// its single predecessor (or NullBlockIdentifier for a genesis block), its
// position in the chain, and an opaque payload interpreted by the
// application.
type Block struct {
	ID      BlockID
	PrevID  BlockID
	Num     uint64
	Payload []byte
}

// IsNull returns true if the id is the genesis sentinel.
func (id BlockID) IsNull() bool {
	return id == NullBlockIdentifier
}

// IsEmpty returns true if the id is the zero value.
func (id BlockID) IsEmpty() bool {
	return len(id) == 0
}

// Short returns a truncated form of the id suitable for log output.
func (id BlockID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12]) + "..."
}

// String returns the full id.
func (id BlockID) String() string {
	return string(id)
}

// IsGenesis returns true if the block has no predecessor.
func (b *Block) IsGenesis() bool {
	return b.PrevID.IsNull()
}

// String returns a compact description of the block for log output.
func (b *Block) String() string {
	return fmt.Sprintf("Block{num=%d id=%s prev=%s}", b.Num, b.ID.Short(), b.PrevID.Short())
}
