package midi

import "bytes"

// Encode serializes a MidiFile into a complete Standard MIDI File byte
// stream: one MThd chunk followed by one MTrk chunk per track, in
// order. The header's track count is taken from len(m.Tracks).
func Encode(m *MidiFile) ([]byte, error) {
	if m.Format == FormatSingleTrack && len(m.Tracks) != 1 {
		return nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "format 0 requires exactly one track"}
	}

	buf := &bytes.Buffer{}
	writeChunk(buf, chunkIDMThd, encodeHeader(m.Format, uint16(len(m.Tracks)), m.Division))

	for i := range m.Tracks {
		payload, err := encodeTrack(&m.Tracks[i])
		if err != nil {
			return nil, err
		}
		writeChunk(buf, chunkIDMTrk, payload)
	}
	return buf.Bytes(), nil
}

// encodeTrack serializes one track's events into an MTrk payload,
// applying running status where consecutive channel messages share a
// status byte.
func encodeTrack(t *Track) ([]byte, error) {
	if !t.hasEndOfTrack() {
		return nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "track does not end with EndOfTrack"}
	}

	buf := &bytes.Buffer{}
	var runningStatus byte

	for i, te := range t.Events {
		if i < len(t.Events)-1 && te.Event.Kind == EventMeta && te.Event.Meta.Kind == MetaEndOfTrack {
			return nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "EndOfTrack appears before the last event"}
		}
		deltaBytes, err := encodeVlq(te.Delta)
		if err != nil {
			return nil, err
		}
		buf.Write(deltaBytes)

		if err := encodeEvent(buf, te.Event, &runningStatus); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// channelMessageStatus reconstructs the status byte (high nibble plus
// channel) for a channel message.
func channelMessageStatus(channel uint8, kind ChannelMessageKind) byte {
	var highNibble byte
	switch kind {
	case NoteOff:
		highNibble = 0x80
	case NoteOn:
		highNibble = 0x90
	case NoteAftertouch:
		highNibble = 0xA0
	case Controller:
		highNibble = 0xB0
	case ProgramChange:
		highNibble = 0xC0
	case ChannelAftertouch:
		highNibble = 0xD0
	case PitchBend:
		highNibble = 0xE0
	}
	return highNibble | (channel & 0x0F)
}

func encodeEvent(buf *bytes.Buffer, event Event, runningStatus *byte) error {
	switch event.Kind {
	case EventChannel:
		return encodeChannelMessage(buf, event.Channel, event.Message, runningStatus)
	case EventMeta:
		*runningStatus = 0
		return encodeMetaEvent(buf, event.Meta)
	case EventSysEx:
		*runningStatus = 0
		return encodeSysExEvent(buf, event.SysEx)
	default:
		return &EncodeError{Kind: ErrKindInvalidModel, Detail: "event has no recognized kind"}
	}
}

func encodeChannelMessage(buf *bytes.Buffer, channel uint8, msg ChannelMessage, runningStatus *byte) error {
	if channel > 15 {
		return &EncodeError{Kind: ErrKindInvalidModel, Detail: "channel must be 0..15"}
	}
	statusByte := channelMessageStatus(channel, msg.Kind)
	if statusByte != *runningStatus {
		buf.WriteByte(statusByte)
		*runningStatus = statusByte
	}

	checkU7 := func(v uint8) error {
		if v > 127 {
			return &EncodeError{Kind: ErrKindInvalidModel, Detail: "channel message data byte exceeds 7 bits"}
		}
		return nil
	}

	switch msg.Kind {
	case NoteOff, NoteOn:
		if err := checkU7(msg.Note); err != nil {
			return err
		}
		if err := checkU7(msg.Velocity); err != nil {
			return err
		}
		buf.WriteByte(msg.Note)
		buf.WriteByte(msg.Velocity)
	case NoteAftertouch:
		if err := checkU7(msg.Note); err != nil {
			return err
		}
		if err := checkU7(msg.Pressure); err != nil {
			return err
		}
		buf.WriteByte(msg.Note)
		buf.WriteByte(msg.Pressure)
	case Controller:
		if err := checkU7(msg.ControllerNumber); err != nil {
			return err
		}
		if err := checkU7(msg.Value); err != nil {
			return err
		}
		buf.WriteByte(msg.ControllerNumber)
		buf.WriteByte(msg.Value)
	case ProgramChange:
		if err := checkU7(msg.Program); err != nil {
			return err
		}
		buf.WriteByte(msg.Program)
	case ChannelAftertouch:
		if err := checkU7(msg.Pressure); err != nil {
			return err
		}
		buf.WriteByte(msg.Pressure)
	case PitchBend:
		if msg.PitchBendValue > 0x3FFF {
			return &EncodeError{Kind: ErrKindInvalidModel, Detail: "pitch bend value exceeds 14 bits"}
		}
		buf.WriteByte(byte(msg.PitchBendValue & 0x7F))
		buf.WriteByte(byte((msg.PitchBendValue >> 7) & 0x7F))
	}
	return nil
}

// encodeMetaPayload builds the raw payload bytes (everything after the
// VLQ length) for a meta event, without the 0xFF type-byte header.
func encodeMetaPayload(meta MetaEvent) (typeByte byte, payload []byte, err error) {
	switch meta.Kind {
	case MetaSequenceNumber:
		return metaTypeByte[MetaSequenceNumber], encodeU16(meta.SequenceNumber), nil
	case MetaText:
		return metaTypeByte[MetaText], meta.Text, nil
	case MetaCopyright:
		return metaTypeByte[MetaCopyright], meta.Text, nil
	case MetaTrackName:
		return metaTypeByte[MetaTrackName], meta.Text, nil
	case MetaInstrumentName:
		return metaTypeByte[MetaInstrumentName], meta.Text, nil
	case MetaLyric:
		return metaTypeByte[MetaLyric], meta.Text, nil
	case MetaMarker:
		return metaTypeByte[MetaMarker], meta.Text, nil
	case MetaCuePoint:
		return metaTypeByte[MetaCuePoint], meta.Text, nil
	case MetaChannelPrefix:
		if meta.ChannelPrefix > 15 {
			return 0, nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "channel prefix must be 0..15"}
		}
		return metaTypeByte[MetaChannelPrefix], []byte{meta.ChannelPrefix}, nil
	case MetaEndOfTrack:
		return metaTypeByte[MetaEndOfTrack], nil, nil
	case MetaSetTempo:
		if meta.Tempo > 0xFFFFFF {
			return 0, nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "tempo exceeds 24 bits"}
		}
		return metaTypeByte[MetaSetTempo], encodeU24(meta.Tempo), nil
	case MetaSmpteOffset:
		payload, err := encodeSmpteOffset(meta.SmpteOffset)
		return metaTypeByte[MetaSmpteOffset], payload, err
	case MetaTimeSignature:
		t := meta.TimeSignature
		return metaTypeByte[MetaTimeSignature], []byte{t.Numerator, t.DenominatorPow2, t.ClocksPerClick, t.ThirtySecondsPerQuarter}, nil
	case MetaKeySignature:
		k := meta.KeySignature
		if k.Sharps < -7 || k.Sharps > 7 {
			return 0, nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "key signature sharps/flats must be -7..7"}
		}
		return metaTypeByte[MetaKeySignature], []byte{byte(k.Sharps), byte(k.Mode)}, nil
	case MetaSequencerSpecific:
		return metaTypeByte[MetaSequencerSpecific], meta.Text, nil
	case MetaUnknown:
		return meta.UnknownTypeByte, meta.UnknownData, nil
	default:
		return 0, nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "meta event has no recognized kind"}
	}
}

func encodeSmpteOffset(s SmpteOffsetValue) ([]byte, error) {
	var rateCode uint8
	switch s.Rate {
	case 24:
		rateCode = 0
	case 25:
		rateCode = 1
	case 29:
		rateCode = 2
	case 30:
		rateCode = 3
	default:
		return nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "smpte offset rate must be 24, 25, 29, or 30"}
	}
	if s.Hour > 23 || s.Minute > 59 || s.Second > 59 || s.Frame > 30 || s.Subframe > 99 {
		return nil, &EncodeError{Kind: ErrKindInvalidModel, Detail: "smpte offset field out of range"}
	}
	return []byte{rateCode<<5 | s.Hour, s.Minute, s.Second, s.Frame, s.Subframe}, nil
}

func encodeMetaEvent(buf *bytes.Buffer, meta MetaEvent) error {
	typeByte, payload, err := encodeMetaPayload(meta)
	if err != nil {
		return err
	}
	lengthBytes, err := encodeVlq(uint32(len(payload)))
	if err != nil {
		return err
	}
	buf.WriteByte(0xFF)
	buf.WriteByte(typeByte)
	buf.Write(lengthBytes)
	buf.Write(payload)
	return nil
}

// encodeSysExEvent always writes a terminated block: Normal and
// Continuation get a trailing 0xF7, Authorization does not. This means
// an unterminated, still-open divided SysEx block (legal mid-stream
// while decoding) cannot be reproduced standalone through the public
// model -- only fully decoded, closed SysEx events round-trip.
func encodeSysExEvent(buf *bytes.Buffer, sysex SysExEvent) error {
	var statusByte byte
	var payload []byte
	switch sysex.Kind {
	case SysExNormal:
		statusByte = 0xF0
		payload = append(append([]byte{}, sysex.Data...), 0xF7)
	case SysExContinuation:
		statusByte = 0xF7
		payload = append(append([]byte{}, sysex.Data...), 0xF7)
	case SysExAuthorization:
		statusByte = 0xF7
		payload = sysex.Data
	default:
		return &EncodeError{Kind: ErrKindInvalidModel, Detail: "sysex event has no recognized kind"}
	}
	lengthBytes, err := encodeVlq(uint32(len(payload)))
	if err != nil {
		return err
	}
	buf.WriteByte(statusByte)
	buf.Write(lengthBytes)
	buf.Write(payload)
	return nil
}
