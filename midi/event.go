package midi

// Format is the MThd format field: 0 (single track), 1 (multiple
// simultaneous tracks), or 2 (multiple independent patterns/songs).
type Format uint16

const (
	FormatSingleTrack    Format = 0
	FormatMultiTrack     Format = 1
	FormatMultiSequence  Format = 2
)

// DivisionKind discriminates the two shapes a Division can take.
type DivisionKind int

const (
	DivisionTicksPerQuarter DivisionKind = iota
	DivisionSMPTE
)

// Division specifies the meaning of delta-times in a MidiFile's tracks.
// It is a tagged union: Kind selects which of the remaining fields is
// meaningful.
type Division struct {
	Kind DivisionKind
	// TicksPerQuarter is valid when Kind == DivisionTicksPerQuarter. Range
	// 1..32767.
	TicksPerQuarter uint16
	// SMPTEFrames is valid when Kind == DivisionSMPTE. One of 24, 25, 29,
	// or 30 (29 means 29.97 drop-frame).
	SMPTEFrames uint8
	// SMPTETicksPerFrame is valid when Kind == DivisionSMPTE. Range
	// 0..255.
	SMPTETicksPerFrame uint8
}

// NewTicksPerQuarterDivision builds a Division in PPQ form. ticks is
// clamped into 1..32767 per spec.md §4.3's "clamp to 1" rule.
func NewTicksPerQuarterDivision(ticks uint16) Division {
	if ticks == 0 {
		ticks = 1
	}
	if ticks > 0x7FFF {
		ticks = 0x7FFF
	}
	return Division{Kind: DivisionTicksPerQuarter, TicksPerQuarter: ticks}
}

// NewSMPTEDivision builds a Division in SMPTE form. frames must be one of
// 24, 25, 29, or 30.
func NewSMPTEDivision(frames, ticksPerFrame uint8) (Division, error) {
	if !isValidSmpteRate(frames) {
		return Division{}, &EncodeError{Kind: ErrKindInvalidModel, Detail: "smpte frame rate must be 24, 25, 29, or 30"}
	}
	return Division{Kind: DivisionSMPTE, SMPTEFrames: frames, SMPTETicksPerFrame: ticksPerFrame}, nil
}

func isValidSmpteRate(frames uint8) bool {
	return frames == 24 || frames == 25 || frames == 29 || frames == 30
}

// ChannelMessageKind discriminates the seven channel voice message shapes.
type ChannelMessageKind int

const (
	NoteOff ChannelMessageKind = iota
	NoteOn
	NoteAftertouch
	Controller
	ProgramChange
	ChannelAftertouch
	PitchBend
)

// ChannelMessage is a tagged union over the seven channel voice messages.
// Kind selects which fields are meaningful:
//
//	NoteOff, NoteOn, NoteAftertouch: Note, and Velocity (NoteOff/NoteOn) or
//	  Pressure (NoteAftertouch).
//	Controller: ControllerNumber, Value.
//	ProgramChange: Program.
//	ChannelAftertouch: Pressure.
//	PitchBend: PitchBendValue.
type ChannelMessage struct {
	Kind ChannelMessageKind

	Note     uint8 // u7: NoteOff, NoteOn, NoteAftertouch
	Velocity uint8 // u7: NoteOff, NoteOn

	ControllerNumber uint8 // u7: Controller
	Value            uint8 // u7: Controller

	Program uint8 // u7: ProgramChange

	Pressure uint8 // u7: NoteAftertouch, ChannelAftertouch

	PitchBendValue uint16 // u14 (0..16383): PitchBend
}

// MetaKind discriminates the meta event variants.
type MetaKind int

const (
	MetaSequenceNumber MetaKind = iota
	MetaText
	MetaCopyright
	MetaTrackName
	MetaInstrumentName
	MetaLyric
	MetaMarker
	MetaCuePoint
	MetaChannelPrefix
	MetaEndOfTrack
	MetaSetTempo
	MetaSmpteOffset
	MetaTimeSignature
	MetaKeySignature
	MetaSequencerSpecific
	MetaUnknown
)

// metaTypeByte maps every known MetaKind to its wire type byte, except
// MetaUnknown, which carries its type byte directly in UnknownTypeByte.
var metaTypeByte = map[MetaKind]byte{
	MetaSequenceNumber:    0x00,
	MetaText:              0x01,
	MetaCopyright:         0x02,
	MetaTrackName:         0x03,
	MetaInstrumentName:    0x04,
	MetaLyric:             0x05,
	MetaMarker:            0x06,
	MetaCuePoint:          0x07,
	MetaChannelPrefix:     0x20,
	MetaEndOfTrack:        0x2F,
	MetaSetTempo:          0x51,
	MetaSmpteOffset:       0x54,
	MetaTimeSignature:     0x58,
	MetaKeySignature:      0x59,
	MetaSequencerSpecific: 0x7F,
}

// KeyMode is the mode field of a key signature meta event.
type KeyMode uint8

const (
	KeyModeMajor KeyMode = 0
	KeyModeMinor KeyMode = 1
)

// SmpteOffsetValue is the payload of a MetaSmpteOffset event.
type SmpteOffsetValue struct {
	Rate     uint8 // 24, 25, 29, or 30
	Hour     uint8 // 0..23
	Minute   uint8 // 0..59
	Second   uint8 // 0..59
	Frame    uint8 // 0..30
	Subframe uint8 // 0..99
}

// TimeSignatureValue is the payload of a MetaTimeSignature event.
type TimeSignatureValue struct {
	Numerator               uint8
	DenominatorPow2         uint8 // denominator is 2^DenominatorPow2
	ClocksPerClick          uint8
	ThirtySecondsPerQuarter uint8
}

// KeySignatureValue is the payload of a MetaKeySignature event.
type KeySignatureValue struct {
	Sharps int8 // -7..7; negative means flats
	Mode   KeyMode
}

// MetaEvent is a tagged union over the meta event variants. Kind selects
// which fields are meaningful; unused fields are zero-valued.
type MetaEvent struct {
	Kind MetaKind

	SequenceNumber uint16 // MetaSequenceNumber

	// Text holds the raw bytes for every text-bearing variant: Text,
	// Copyright, TrackName, InstrumentName, Lyric, Marker, CuePoint, and
	// SequencerSpecific. Not validated against any character set.
	Text []byte

	ChannelPrefix uint8 // u4: MetaChannelPrefix

	Tempo uint32 // u24 microseconds per quarter note: MetaSetTempo

	SmpteOffset SmpteOffsetValue // MetaSmpteOffset

	TimeSignature TimeSignatureValue // MetaTimeSignature

	KeySignature KeySignatureValue // MetaKeySignature

	// UnknownTypeByte and UnknownData hold the raw type byte and payload
	// of a meta event whose type byte this package doesn't recognize.
	// Preserved verbatim so unrecognized, forward-compatible files
	// round-trip.
	UnknownTypeByte byte
	UnknownData     []byte
}

// BPM converts a MetaSetTempo event's microseconds-per-quarter-note value
// to beats per minute, per spec.md §6's formula.
func (m MetaEvent) BPM() float64 {
	if m.Tempo == 0 {
		return 0
	}
	return 60_000_000.0 / float64(m.Tempo)
}

// BPMToMicrosecondsPerQuarter is the inverse of MetaEvent.BPM, useful when
// constructing a MetaSetTempo event from a musical tempo.
func BPMToMicrosecondsPerQuarter(bpm float64) uint32 {
	if bpm <= 0 {
		return 0
	}
	return uint32(60_000_000.0/bpm + 0.5)
}

// DefaultTempo returns the SMF-conventional default tempo: 500000
// microseconds per quarter note (120 BPM).
func DefaultTempo() MetaEvent {
	return MetaEvent{Kind: MetaSetTempo, Tempo: 500000}
}

// DefaultTimeSignature returns the SMF-conventional default time
// signature: 4/4, 24 clocks per click, 8 thirty-seconds per quarter.
func DefaultTimeSignature() MetaEvent {
	return MetaEvent{
		Kind: MetaTimeSignature,
		TimeSignature: TimeSignatureValue{
			Numerator:               4,
			DenominatorPow2:          2,
			ClocksPerClick:           24,
			ThirtySecondsPerQuarter: 8,
		},
	}
}

// Resolve returns a short human-readable label for a key signature, e.g.
// "3 sharps, major" or "no sharps or flats, minor".
func (k KeySignatureValue) Resolve() string {
	modeName := "major"
	if k.Mode == KeyModeMinor {
		modeName = "minor"
	}
	n := k.Sharps
	switch {
	case n == 0:
		return "no sharps or flats, " + modeName
	case n > 0:
		return pluralCount(int(n), "sharp") + ", " + modeName
	default:
		return pluralCount(int(-n), "flat") + ", " + modeName
	}
}

func pluralCount(n int, noun string) string {
	suffix := "s"
	if n == 1 {
		suffix = ""
	}
	return itoa(n) + " " + noun + suffix
}

// itoa avoids pulling in strconv just for small non-negative integers in
// the handful of spots this package formats one into a label string.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// BeatUnit resolves a TimeSignatureValue's DenominatorPow2 to a
// DurationName, per the denominator-is-a-negative-power-of-two convention
// described in spec.md §6 and grounded in
// _examples/original_source/src/core/duration_name.rs.
func (t TimeSignatureValue) BeatUnit() DurationName {
	return durationNameFromPow2(t.DenominatorPow2)
}

// Clocks resolves ClocksPerClick to a named note duration when it matches
// a standard value.
func (t TimeSignatureValue) Clocks() Clocks {
	return NewClocks(t.ClocksPerClick)
}

// SysExKind discriminates the three physical SysEx event shapes.
type SysExKind int

const (
	SysExNormal SysExKind = iota
	SysExContinuation
	SysExAuthorization
)

// SysExEvent is a tagged union over the three SysEx shapes. Data excludes
// the leading F0/F7 status byte and, where applicable, the trailing F7
// terminator -- see spec.md §4.5.
type SysExEvent struct {
	Kind SysExKind
	Data []byte
}

// EventKind discriminates the three top-level event shapes.
type EventKind int

const (
	EventChannel EventKind = iota
	EventMeta
	EventSysEx
)

// Event is a tagged union over channel messages, meta events, and SysEx
// events.
type Event struct {
	Kind EventKind

	Channel uint8          // u4: EventChannel
	Message ChannelMessage // EventChannel

	Meta MetaEvent // EventMeta

	SysEx SysExEvent // EventSysEx
}

// TrackEvent pairs a delta-time (in ticks, relative to the previous event
// in the same track) with an Event.
type TrackEvent struct {
	Delta uint32 // u28: 0..0x0FFFFFFF
	Event Event
}

// Track is an ordered sequence of TrackEvents. A well-formed Track's last
// element is Meta::EndOfTrack, and no other element is.
type Track struct {
	Events []TrackEvent
}

// NewTrack returns an empty track. Use Append to add events and Close to
// add the mandatory terminator.
func NewTrack() *Track {
	return &Track{}
}

// hasEndOfTrack reports whether the track already ends with
// Meta::EndOfTrack.
func (t *Track) hasEndOfTrack() bool {
	if len(t.Events) == 0 {
		return false
	}
	last := t.Events[len(t.Events)-1].Event
	return last.Kind == EventMeta && last.Meta.Kind == MetaEndOfTrack
}

// Append adds an event to the track. It refuses to append after
// Meta::EndOfTrack has already been added, matching the model invariant
// that EndOfTrack is the final element.
func (t *Track) Append(delta uint32, event Event) error {
	if t.hasEndOfTrack() {
		return &EncodeError{Kind: ErrKindInvalidModel, Detail: "cannot append after EndOfTrack"}
	}
	t.Events = append(t.Events, TrackEvent{Delta: delta, Event: event})
	return nil
}

// Close appends Meta::EndOfTrack with the given delta if the track doesn't
// already end with one, so hand-built tracks satisfy the same invariant
// decoded tracks do.
func (t *Track) Close(finalDelta uint32) error {
	if t.hasEndOfTrack() {
		return nil
	}
	t.Events = append(t.Events, TrackEvent{Delta: finalDelta, Event: Event{Kind: EventMeta, Meta: MetaEvent{Kind: MetaEndOfTrack}}})
	return nil
}

// MidiFile is the root aggregate: a format, a division, and an ordered
// sequence of tracks.
type MidiFile struct {
	Format   Format
	Division Division
	Tracks   []Track
}

// NewMidiFile returns an empty MidiFile with the given format and
// division. Use AddTrack to add tracks; it enforces the
// format-0-implies-exactly-one-track invariant as tracks are added rather
// than only at encode time.
func NewMidiFile(format Format, division Division) *MidiFile {
	return &MidiFile{Format: format, Division: division}
}

// AddTrack appends a track, rejecting the addition if it would violate the
// Format-0-implies-one-track invariant.
func (m *MidiFile) AddTrack(t Track) error {
	if m.Format == FormatSingleTrack && len(m.Tracks) >= 1 {
		return &EncodeError{Kind: ErrKindInvalidModel, Detail: "format 0 allows exactly one track"}
	}
	m.Tracks = append(m.Tracks, t)
	return nil
}
