package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVlqRoundTripBoundaries(t *testing.T) {
	values := []uint32{0x00, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0x0FFFFFFF}
	for _, v := range values {
		encoded, err := encodeVlq(v)
		require.NoError(t, err)
		decoded, consumed, err := decodeVlq(encoded, 0)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), consumed)
		assert.Equal(t, v, decoded)
	}
}

func TestVlqEncodeTooLarge(t *testing.T) {
	_, err := encodeVlq(0x10000000)
	require.Error(t, err)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ErrKindVlqTooLarge, encErr.Kind)
}

func TestVlqDecodeOverflow(t *testing.T) {
	// four bytes, all with the continuation bit set: a 5th byte would be
	// required.
	_, _, err := decodeVlq([]byte{0xFF, 0xFF, 0xFF, 0xFF}, 0)
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindVlqOverflow, decErr.Kind)
}

func TestVlqDecodeUnexpectedEOF(t *testing.T) {
	_, _, err := decodeVlq([]byte{0x81}, 0)
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindUnexpectedEOF, decErr.Kind)
}

func TestVlqEncodeKnownBytes(t *testing.T) {
	cases := []struct {
		value uint32
		want  []byte
	}{
		{0x00, []byte{0x00}},
		{0x40, []byte{0x40}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x81, 0x00}},
		{0x2000, []byte{0xC0, 0x00}},
		{0x3FFF, []byte{0xFF, 0x7F}},
		{0x4000, []byte{0x81, 0x80, 0x00}},
		{0x1FFFFF, []byte{0xFF, 0xFF, 0x7F}},
		{0x200000, []byte{0x81, 0x80, 0x80, 0x00}},
		{0x0FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}
	for _, c := range cases {
		got, err := encodeVlq(c.value)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}
