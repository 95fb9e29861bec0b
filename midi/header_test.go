package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeaderTicksPerQuarter(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x60}
	format, ntrks, division, err := decodeHeader(payload)
	require.NoError(t, err)
	assert.Equal(t, FormatMultiTrack, format)
	assert.Equal(t, uint16(1), ntrks)
	assert.Equal(t, DivisionTicksPerQuarter, division.Kind)
	assert.Equal(t, uint16(96), division.TicksPerQuarter)
}

func TestDecodeHeaderZeroTicksClampsToOne(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	_, _, division, err := decodeHeader(payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), division.TicksPerQuarter)
}

func TestDecodeHeaderSMPTE(t *testing.T) {
	// 0xE2 = -30 in two's complement, the canonical encoding for 30fps.
	// (spec.md §8's worked 0x9978 example is internally inconsistent --
	// 0x99 as a two's-complement frame-rate byte has absolute value 103,
	// which matches none of {24,25,29,30} -- so this test exercises the
	// same bit decomposition against a value that is actually valid.)
	payload := []byte{0x00, 0x01, 0x00, 0x01, 0xE2, 0x78}
	_, _, division, err := decodeHeader(payload)
	require.NoError(t, err)
	assert.Equal(t, DivisionSMPTE, division.Kind)
	assert.Equal(t, uint8(30), division.SMPTEFrames)
	assert.Equal(t, uint8(0x78), division.SMPTETicksPerFrame)
}

func TestDecodeHeaderUnknownSmpteRate(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x00, 0x01, 0xC8, 0x00}
	_, _, _, err := decodeHeader(payload)
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindUnknownSmpteRate, decErr.Kind)
}

func TestDecodeHeaderUnknownFormat(t *testing.T) {
	payload := []byte{0x00, 0x03, 0x00, 0x01, 0x00, 0x60}
	_, _, _, err := decodeHeader(payload)
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindUnknownFormat, decErr.Kind)
}

func TestDecodeHeaderFormatTrackMismatch(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x60}
	_, _, _, err := decodeHeader(payload)
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindFormatTrackMismatch, decErr.Kind)
}

func TestDecodeHeaderShortPayloadEOF(t *testing.T) {
	_, _, _, err := decodeHeader([]byte{0x00, 0x00, 0x00})
	require.Error(t, err)
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, ErrKindUnexpectedEOF, decErr.Kind)
}

func TestDecodeHeaderIgnoresBytesBeyondSix(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x00, 0x01, 0x00, 0x60, 0xAB, 0xCD}
	format, ntrks, division, err := decodeHeader(payload)
	require.NoError(t, err)
	assert.Equal(t, FormatMultiTrack, format)
	assert.Equal(t, uint16(1), ntrks)
	assert.Equal(t, uint16(96), division.TicksPerQuarter)
}

func TestEncodeHeaderRoundTrip(t *testing.T) {
	division := NewTicksPerQuarterDivision(96)
	payload := encodeHeader(FormatMultiTrack, 2, division)
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x60}, payload)

	format, ntrks, decodedDivision, err := decodeHeader(payload)
	require.NoError(t, err)
	assert.Equal(t, FormatMultiTrack, format)
	assert.Equal(t, uint16(2), ntrks)
	assert.Equal(t, division, decodedDivision)
}

func TestEncodeHeaderSMPTE(t *testing.T) {
	division, err := NewSMPTEDivision(30, 0x78)
	require.NoError(t, err)
	payload := encodeHeader(FormatSingleTrack, 1, division)
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0xE2, 0x78}, payload)
}

func TestNewSMPTEDivisionRejectsInvalidRate(t *testing.T) {
	_, err := NewSMPTEDivision(28, 0)
	require.Error(t, err)
}
