// Package codec maps blocks to and from their serialized wire form using
// Cramberry encoding. Durable stores use it to lay blocks down as bytes, and
// callers moving blocks across a transport use the same encoding.
package codec

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/ShouryaAnand/sawtooth-core/types"
)

// Name is the name of the block codec.
const Name = "cramberry"

// Codec serializes and deserializes blocks with a fixed set of Cramberry
// options.
type Codec struct {
	options cramberry.Options
}

// New creates a new block codec with default options.
func New() *Codec {
	return &Codec{
		options: cramberry.DefaultOptions,
	}
}

// NewWithOptions creates a new block codec with custom options.
func NewWithOptions(opts cramberry.Options) *Codec {
	return &Codec{
		options: opts,
	}
}

// Marshal serializes a block.
func (c *Codec) Marshal(b *types.Block) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil block", types.ErrMissingInput)
	}
	data, err := cramberry.MarshalWithOptions(b, c.options)
	if err != nil {
		return nil, fmt.Errorf("marshaling block %s: %w", b.ID.Short(), err)
	}
	return data, nil
}

// Unmarshal deserializes a block.
func (c *Codec) Unmarshal(data []byte) (*types.Block, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty block data", types.ErrMissingInput)
	}
	var b types.Block
	if err := cramberry.UnmarshalWithOptions(data, &b, c.options); err != nil {
		return nil, fmt.Errorf("unmarshaling block: %w", err)
	}
	return &b, nil
}

// Name returns the name of the codec.
func (c *Codec) Name() string {
	return Name
}

var defaultCodec = New()

// Marshal serializes a block with the default codec.
func Marshal(b *types.Block) ([]byte, error) {
	return defaultCodec.Marshal(b)
}

// Unmarshal deserializes a block with the default codec.
func Unmarshal(data []byte) (*types.Block, error) {
	return defaultCodec.Unmarshal(data)
}
