package midi

// DecodeOptions controls Decode's tolerance for non-conformant input.
// Grounded in spec.md §9's open question about real-world files that
// drop or misuse running status: rather than silently relaxing the
// default strict behavior, resynchronization is opt-in.
type DecodeOptions struct {
	// Lenient, when true, makes a track decoder that hits
	// ErrKindUnexpectedDataByte or ErrKindUnexpectedStatusByte scan
	// forward byte-by-byte looking for the next plausible status byte
	// instead of failing outright. Bytes skipped this way are discarded;
	// no event is produced for them. Default (false) fails immediately,
	// matching strict SMF conformance.
	Lenient bool
}

// Decode parses a complete Standard MIDI File byte stream into a
// MidiFile. The first chunk must be MThd; chunks with an ID other than
// MThd/MTrk are skipped, matching real-world encoders that insert
// vendor-specific chunks. The number of MTrk chunks actually decoded
// must match the header's declared track count.
func Decode(data []byte, opts DecodeOptions) (*MidiFile, error) {
	headerChunk, offset, err := readChunk(data, 0)
	if err != nil {
		return nil, err
	}
	if headerChunk.id != chunkIDMThd {
		return nil, &DecodeError{Kind: ErrKindBadChunkID, Offset: 0, Detail: "expected MThd as the first chunk"}
	}
	format, ntrks, division, err := decodeHeader(headerChunk.payload)
	if err != nil {
		return nil, err
	}

	var tracks []Track
	for offset < len(data) {
		var c chunk
		c, offset, err = readChunk(data, offset)
		if err != nil {
			return nil, err
		}
		if c.id != chunkIDMTrk {
			continue
		}
		trackOffset := offset - len(c.payload)
		track, err := decodeTrack(c.payload, opts)
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Offset += trackOffset
			}
			return nil, err
		}
		tracks = append(tracks, track)
	}
	if len(tracks) != int(ntrks) {
		return nil, &DecodeError{Kind: ErrKindTrackCountMismatch, Offset: offset, Detail: "declared track count does not match the number of MTrk chunks decoded"}
	}

	return &MidiFile{Format: format, Division: division, Tracks: tracks}, nil
}

// trackDecodeState carries the two pieces of state that persist across
// events within a single track: MIDI running status, and whether a
// divided SysEx block is open awaiting its 0xF7 continuation.
type trackDecodeState struct {
	status    byte
	sysexOpen bool
}

// decodeTrack decodes the body of a single MTrk chunk into a Track.
func decodeTrack(payload []byte, opts DecodeOptions) (Track, error) {
	var track Track
	var st trackDecodeState
	pos := 0

	for pos < len(payload) {
		delta, consumed, err := decodeVlq(payload, pos)
		if err != nil {
			return Track{}, err
		}
		pos += consumed

		event, newPos, err := decodeEvent(payload, pos, &st)
		for err != nil && opts.Lenient && isResyncable(err) {
			resyncPos, ok := resync(payload, err.(*DecodeError).Offset)
			if !ok {
				break
			}
			event, newPos, err = decodeEvent(payload, resyncPos, &st)
		}
		if err != nil {
			return Track{}, err
		}
		pos = newPos

		track.Events = append(track.Events, TrackEvent{Delta: delta, Event: event})

		if event.Kind == EventMeta && event.Meta.Kind == MetaEndOfTrack {
			if pos != len(payload) {
				return Track{}, &DecodeError{Kind: ErrKindDataAfterEndOfTrack, Offset: pos, Detail: "bytes remain in the track after EndOfTrack"}
			}
			return track, nil
		}
	}

	if !track.hasEndOfTrack() {
		return Track{}, &DecodeError{Kind: ErrKindMissingEndOfTrack, Offset: pos}
	}
	return track, nil
}

// isResyncable reports whether err is one lenient mode is willing to
// recover from by scanning forward for the next status byte.
func isResyncable(err error) bool {
	de, ok := err.(*DecodeError)
	if !ok {
		return false
	}
	return de.Kind == ErrKindUnexpectedDataByte || de.Kind == ErrKindUnexpectedStatusByte
}

// resync scans forward from pos for the next byte with the high bit set,
// which is the earliest point a status byte (and hence a new event) can
// plausibly begin. It reports false if no such byte remains.
func resync(payload []byte, pos int) (int, bool) {
	for i := pos; i < len(payload); i++ {
		if payload[i]&0x80 != 0 {
			return i, true
		}
	}
	return 0, false
}

// decodeEvent decodes one event (channel message, meta, or SysEx)
// starting at pos, which points just past the event's delta-time. It
// returns the decoded Event and the offset just past it.
func decodeEvent(payload []byte, pos int, st *trackDecodeState) (Event, int, error) {
	if pos >= len(payload) {
		return Event{}, pos, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: pos, Detail: "input ended before an event"}
	}

	b := payload[pos]
	var statusByte byte
	if b&0x80 != 0 {
		statusByte = b
		pos++
	} else {
		if st.status == 0 {
			return Event{}, pos, &DecodeError{Kind: ErrKindUnexpectedDataByte, Offset: pos, Detail: "data byte with no running status in effect"}
		}
		statusByte = st.status
		// pos is not advanced: b itself is the first data byte.
	}

	switch {
	case statusByte == 0xFF:
		if st.sysexOpen {
			return Event{}, pos, &DecodeError{Kind: ErrKindDividedSysexInterleaved, Offset: pos, Detail: "meta event interrupts a divided SysEx block"}
		}
		meta, newPos, err := decodeMetaEvent(payload, pos)
		if err != nil {
			return Event{}, pos, err
		}
		st.status = 0
		return Event{Kind: EventMeta, Meta: meta}, newPos, nil

	case statusByte == 0xF0:
		if st.sysexOpen {
			return Event{}, pos, &DecodeError{Kind: ErrKindDividedSysexInterleaved, Offset: pos, Detail: "0xF0 starts a new SysEx block while one is already open"}
		}
		sysex, newPos, err := decodeSysExBlock(payload, pos, SysExNormal, st)
		if err != nil {
			return Event{}, pos, err
		}
		st.status = 0
		return Event{Kind: EventSysEx, SysEx: sysex}, newPos, nil

	case statusByte == 0xF7:
		kind := SysExAuthorization
		if st.sysexOpen {
			kind = SysExContinuation
		}
		sysex, newPos, err := decodeSysExBlock(payload, pos, kind, st)
		if err != nil {
			return Event{}, pos, err
		}
		st.status = 0
		return Event{Kind: EventSysEx, SysEx: sysex}, newPos, nil

	case statusByte >= 0x80 && statusByte <= 0xEF:
		if st.sysexOpen {
			return Event{}, pos, &DecodeError{Kind: ErrKindDividedSysexInterleaved, Offset: pos, Detail: "channel message interrupts a divided SysEx block"}
		}
		msg, newPos, err := decodeChannelMessage(payload, pos, statusByte)
		if err != nil {
			return Event{}, pos, err
		}
		st.status = statusByte
		return Event{Kind: EventChannel, Channel: statusByte & 0x0F, Message: msg}, newPos, nil

	default:
		return Event{}, pos, &DecodeError{Kind: ErrKindUnexpectedStatusByte, Offset: pos, Detail: "unsupported status byte"}
	}
}

// channelMessageDataLen maps a channel message's high nibble to the
// number of trailing 7-bit data bytes it carries on the wire.
var channelMessageDataLen = map[byte]int{
	0x80: 2, 0x90: 2, 0xA0: 2, 0xB0: 2, 0xC0: 1, 0xD0: 1, 0xE0: 2,
}

func decodeChannelMessage(payload []byte, pos int, statusByte byte) (ChannelMessage, int, error) {
	highNibble := statusByte & 0xF0
	n := channelMessageDataLen[highNibble]
	if pos+n > len(payload) {
		return ChannelMessage{}, pos, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: pos, Detail: "input ended inside a channel message"}
	}
	for i := 0; i < n; i++ {
		if payload[pos+i]&0x80 != 0 {
			return ChannelMessage{}, pos, &DecodeError{Kind: ErrKindUnexpectedStatusByte, Offset: pos + i, Detail: "expected a data byte"}
		}
	}

	var msg ChannelMessage
	switch highNibble {
	case 0x80:
		msg = ChannelMessage{Kind: NoteOff, Note: payload[pos], Velocity: payload[pos+1]}
	case 0x90:
		msg = ChannelMessage{Kind: NoteOn, Note: payload[pos], Velocity: payload[pos+1]}
	case 0xA0:
		msg = ChannelMessage{Kind: NoteAftertouch, Note: payload[pos], Pressure: payload[pos+1]}
	case 0xB0:
		msg = ChannelMessage{Kind: Controller, ControllerNumber: payload[pos], Value: payload[pos+1]}
	case 0xC0:
		msg = ChannelMessage{Kind: ProgramChange, Program: payload[pos]}
	case 0xD0:
		msg = ChannelMessage{Kind: ChannelAftertouch, Pressure: payload[pos]}
	case 0xE0:
		msg = ChannelMessage{Kind: PitchBend, PitchBendValue: uint16(payload[pos]) | uint16(payload[pos+1])<<7}
	}
	return msg, pos + n, nil
}

func decodeMetaEvent(payload []byte, pos int) (MetaEvent, int, error) {
	if pos >= len(payload) {
		return MetaEvent{}, pos, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: pos, Detail: "input ended before a meta event's type byte"}
	}
	typeByte := payload[pos]
	pos++

	length, consumed, err := decodeVlq(payload, pos)
	if err != nil {
		return MetaEvent{}, pos, err
	}
	pos += consumed

	if pos+int(length) > len(payload) {
		return MetaEvent{}, pos, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: pos, Detail: "meta event payload runs past the end of the track"}
	}
	data := payload[pos : pos+int(length)]
	pos += int(length)

	meta, err := decodeMetaPayload(typeByte, data, pos)
	if err != nil {
		return MetaEvent{}, pos, err
	}
	return meta, pos, nil
}

func decodeMetaPayload(typeByte byte, data []byte, offset int) (MetaEvent, error) {
	tooShort := func(want int) error {
		return &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "meta event payload shorter than required"}
	}
	switch typeByte {
	case metaTypeByte[MetaSequenceNumber]:
		if len(data) < 2 {
			return MetaEvent{}, tooShort(2)
		}
		return MetaEvent{Kind: MetaSequenceNumber, SequenceNumber: decodeU16(data)}, nil
	case metaTypeByte[MetaText]:
		return MetaEvent{Kind: MetaText, Text: data}, nil
	case metaTypeByte[MetaCopyright]:
		return MetaEvent{Kind: MetaCopyright, Text: data}, nil
	case metaTypeByte[MetaTrackName]:
		return MetaEvent{Kind: MetaTrackName, Text: data}, nil
	case metaTypeByte[MetaInstrumentName]:
		return MetaEvent{Kind: MetaInstrumentName, Text: data}, nil
	case metaTypeByte[MetaLyric]:
		return MetaEvent{Kind: MetaLyric, Text: data}, nil
	case metaTypeByte[MetaMarker]:
		return MetaEvent{Kind: MetaMarker, Text: data}, nil
	case metaTypeByte[MetaCuePoint]:
		return MetaEvent{Kind: MetaCuePoint, Text: data}, nil
	case metaTypeByte[MetaChannelPrefix]:
		if len(data) < 1 {
			return MetaEvent{}, tooShort(1)
		}
		if data[0] > 15 {
			return MetaEvent{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "channel prefix must be 0..15"}
		}
		return MetaEvent{Kind: MetaChannelPrefix, ChannelPrefix: data[0]}, nil
	case metaTypeByte[MetaEndOfTrack]:
		return MetaEvent{Kind: MetaEndOfTrack}, nil
	case metaTypeByte[MetaSetTempo]:
		if len(data) < 3 {
			return MetaEvent{}, tooShort(3)
		}
		return MetaEvent{Kind: MetaSetTempo, Tempo: decodeU24(data)}, nil
	case metaTypeByte[MetaSmpteOffset]:
		if len(data) < 5 {
			return MetaEvent{}, tooShort(5)
		}
		offsetValue, err := decodeSmpteOffset(data, offset)
		if err != nil {
			return MetaEvent{}, err
		}
		return MetaEvent{Kind: MetaSmpteOffset, SmpteOffset: offsetValue}, nil
	case metaTypeByte[MetaTimeSignature]:
		if len(data) < 4 {
			return MetaEvent{}, tooShort(4)
		}
		if data[1] > 31 {
			return MetaEvent{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "time signature denominator_pow2 must be 0..31"}
		}
		return MetaEvent{Kind: MetaTimeSignature, TimeSignature: TimeSignatureValue{
			Numerator:               data[0],
			DenominatorPow2:         data[1],
			ClocksPerClick:          data[2],
			ThirtySecondsPerQuarter: data[3],
		}}, nil
	case metaTypeByte[MetaKeySignature]:
		if len(data) < 2 {
			return MetaEvent{}, tooShort(2)
		}
		sharps := int8(data[0])
		if sharps < -7 || sharps > 7 {
			return MetaEvent{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "key signature sharps/flats must be -7..7"}
		}
		if data[1] > 1 {
			return MetaEvent{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "key signature mode must be 0 or 1"}
		}
		return MetaEvent{Kind: MetaKeySignature, KeySignature: KeySignatureValue{Sharps: sharps, Mode: KeyMode(data[1])}}, nil
	case metaTypeByte[MetaSequencerSpecific]:
		return MetaEvent{Kind: MetaSequencerSpecific, Text: data}, nil
	default:
		return MetaEvent{Kind: MetaUnknown, UnknownTypeByte: typeByte, UnknownData: data}, nil
	}
}

// smpteRateCodes maps the 2-bit rate code in a SmpteOffset meta event's
// first byte (bits 6-5) to a frame rate, per the convention used by the
// meta event (distinct from the division field's negative-byte
// encoding in header.go).
var smpteRateCodes = map[uint8]uint8{0: 24, 1: 25, 2: 29, 3: 30}

func decodeSmpteOffset(data []byte, offset int) (SmpteOffsetValue, error) {
	rateCode := (data[0] >> 5) & 0x03
	hour := data[0] & 0x1F
	rate, ok := smpteRateCodes[rateCode]
	if !ok {
		return SmpteOffsetValue{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "smpte offset rate code must be 0..3"}
	}
	if hour > 23 {
		return SmpteOffsetValue{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "smpte offset hour must be 0..23"}
	}
	minute, second, frame, subframe := data[1], data[2], data[3], data[4]
	if minute > 59 {
		return SmpteOffsetValue{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "smpte offset minute must be 0..59"}
	}
	if second > 59 {
		return SmpteOffsetValue{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "smpte offset second must be 0..59"}
	}
	if frame > 30 {
		return SmpteOffsetValue{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "smpte offset frame must be 0..30"}
	}
	if subframe > 99 {
		return SmpteOffsetValue{}, &DecodeError{Kind: ErrKindMetaFieldOutOfRange, Offset: offset, Detail: "smpte offset subframe must be 0..99"}
	}
	return SmpteOffsetValue{Rate: rate, Hour: hour, Minute: minute, Second: second, Frame: frame, Subframe: subframe}, nil
}

// decodeSysExBlock decodes one F0/F7-prefixed block: a VLQ length
// followed by that many bytes. kind has already been determined by the
// caller from st.sysexOpen; this function updates st.sysexOpen based on
// whether the block's data ends in a terminating 0xF7 byte.
func decodeSysExBlock(payload []byte, pos int, kind SysExKind, st *trackDecodeState) (SysExEvent, int, error) {
	length, consumed, err := decodeVlq(payload, pos)
	if err != nil {
		return SysExEvent{}, pos, err
	}
	pos += consumed

	if pos+int(length) > len(payload) {
		return SysExEvent{}, pos, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: pos, Detail: "SysEx block runs past the end of the track"}
	}
	data := payload[pos : pos+int(length)]
	pos += int(length)

	terminated := len(data) > 0 && data[len(data)-1] == 0xF7
	switch kind {
	case SysExNormal, SysExContinuation:
		st.sysexOpen = !terminated
		if terminated {
			data = data[:len(data)-1]
		}
	case SysExAuthorization:
		if terminated {
			data = data[:len(data)-1]
		}
	}
	return SysExEvent{Kind: kind, Data: data}, pos, nil
}
