package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTrackAppliesRunningStatus(t *testing.T) {
	track := NewTrack()
	require.NoError(t, track.Append(0, Event{Kind: EventChannel, Channel: 0, Message: ChannelMessage{Kind: NoteOn, Note: 60, Velocity: 64}}))
	require.NoError(t, track.Append(48, Event{Kind: EventChannel, Channel: 0, Message: ChannelMessage{Kind: NoteOn, Note: 60, Velocity: 0}}))
	require.NoError(t, track.Close(0))

	payload, err := encodeTrack(track)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x00, 0x90, 0x3C, 0x40,
		0x30, 0x3C, 0x00,
		0x00, 0xFF, 0x2F, 0x00,
	}, payload)
}

func TestEncodeTrackRejectsMissingEndOfTrack(t *testing.T) {
	track := NewTrack()
	require.NoError(t, track.Append(0, Event{Kind: EventChannel, Channel: 0, Message: ChannelMessage{Kind: NoteOn, Note: 1, Velocity: 1}}))
	_, err := encodeTrack(track)
	require.Error(t, err)
	var encErr *EncodeError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, ErrKindInvalidModel, encErr.Kind)
}

func TestEncodePitchBendSplitsLSBMSB(t *testing.T) {
	track := NewTrack()
	require.NoError(t, track.Append(0, Event{Kind: EventChannel, Channel: 3, Message: ChannelMessage{Kind: PitchBend, PitchBendValue: 0x2000}}))
	require.NoError(t, track.Close(0))

	payload, err := encodeTrack(track)
	require.NoError(t, err)
	// 0x2000 = 0b10_0000_0000_0000: lsb = low 7 bits = 0, msb = next 7 bits = 0x40.
	assert.Equal(t, []byte{0x00, 0xE3, 0x00, 0x40, 0x00, 0xFF, 0x2F, 0x00}, payload)
}

func TestPitchBend14BitExhaustiveRoundTrip(t *testing.T) {
	for v := uint16(0); v <= 0x3FFF; v++ {
		track := NewTrack()
		require.NoError(t, track.Append(0, Event{Kind: EventChannel, Channel: 0, Message: ChannelMessage{Kind: PitchBend, PitchBendValue: v}}))
		require.NoError(t, track.Close(0))

		payload, err := encodeTrack(track)
		require.NoError(t, err)

		decoded, err := decodeTrack(payload, DecodeOptions{})
		require.NoError(t, err)
		require.Len(t, decoded.Events, 2)
		assert.Equal(t, v, decoded.Events[0].Event.Message.PitchBendValue)
	}
}

func TestEncodeMetaEventRoundTrip(t *testing.T) {
	track := NewTrack()
	require.NoError(t, track.Append(0, Event{Kind: EventMeta, Meta: DefaultTempo()}))
	require.NoError(t, track.Close(0))

	payload, err := encodeTrack(track)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20, 0x00, 0xFF, 0x2F, 0x00}, payload)
}

func TestEncodeUnknownMetaRoundTrip(t *testing.T) {
	track := NewTrack()
	require.NoError(t, track.Append(0, Event{Kind: EventMeta, Meta: MetaEvent{Kind: MetaUnknown, UnknownTypeByte: 0x33, UnknownData: []byte{0xAB, 0xCD}}}))
	require.NoError(t, track.Close(0))

	payload, err := encodeTrack(track)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xFF, 0x33, 0x02, 0xAB, 0xCD, 0x00, 0xFF, 0x2F, 0x00}, payload)
}

func TestEncodeSysExNormal(t *testing.T) {
	track := NewTrack()
	require.NoError(t, track.Append(0, Event{Kind: EventSysEx, SysEx: SysExEvent{Kind: SysExNormal, Data: []byte{0x43, 0x12, 0x00}}}))
	require.NoError(t, track.Close(0))

	payload, err := encodeTrack(track)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xF0, 0x04, 0x43, 0x12, 0x00, 0xF7, 0x00, 0xFF, 0x2F, 0x00}, payload)
}

func TestAddTrackRejectsFormat0MultipleTracks(t *testing.T) {
	m := NewMidiFile(FormatSingleTrack, NewTicksPerQuarterDivision(96))
	require.NoError(t, m.AddTrack(*trackWithOnlyEndOfTrack()))
	err := m.AddTrack(*trackWithOnlyEndOfTrack())
	require.Error(t, err)
}

func trackWithOnlyEndOfTrack() *Track {
	tr := NewTrack()
	_ = tr.Close(0)
	return tr
}
