package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShouryaAnand/sawtooth-core/types"
)

func TestCodec_RoundTrip(t *testing.T) {
	blk := &types.Block{
		ID:      "b1",
		PrevID:  types.NullBlockIdentifier,
		Num:     0,
		Payload: []byte("genesis payload"),
	}

	data, err := Marshal(blk)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, blk, decoded)
}

func TestCodec_NilBlock(t *testing.T) {
	_, err := Marshal(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestCodec_EmptyData(t *testing.T) {
	_, err := Unmarshal(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestCodec_Name(t *testing.T) {
	assert.Equal(t, Name, New().Name())
}
