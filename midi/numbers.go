package midi

// Clamped numeric wrapper types express the model's field-width constraints
// at the type level. They are standalone helpers: the model's own fields
// (Event.Channel, the ChannelMessage fields, TrackEvent.Delta, ...) are plain
// uint8/uint16/uint32 and do not use them. New* constructors silently clamp
// out-of-range input and report whether the input was already in range,
// mirroring the clamp!() pattern used throughout
// _examples/original_source/src/clamp.rs. Decoders do not use these types;
// apart from a zero ticks-per-quarter division, which is read as 1, a
// decoded value outside its allowed range is a DecodeError, not a clamp.

// U4 is an unsigned value in 0..15, the range of MIDI channel numbers and
// the meta channel-prefix event.
type U4 struct{ v uint8 }

// NewU4 clamps v into 0..15 and reports whether v was already in range.
func NewU4(v uint8) (U4, bool) {
	c, ok := clampU8(v, 0, 15)
	return U4{c}, ok
}

// Get returns the clamped value.
func (u U4) Get() uint8 { return u.v }

// U7 is an unsigned 7-bit value in 0..127, the range of notes, velocities,
// pressures, controller numbers and values, and program numbers.
type U7 struct{ v uint8 }

// NewU7 clamps v into 0..127 and reports whether v was already in range.
func NewU7(v uint8) (U7, bool) {
	c, ok := clampU8(v, 0, 127)
	return U7{c}, ok
}

// Get returns the clamped value.
func (u U7) Get() uint8 { return u.v }

// U14 is an unsigned 14-bit value in 0..16383, the range of pitch-bend
// values.
type U14 struct{ v uint16 }

// NewU14 clamps v into 0..16383 and reports whether v was already in range.
func NewU14(v uint16) (U14, bool) {
	c, ok := clampU16(v, 0, 16383)
	return U14{c}, ok
}

// Get returns the clamped value.
func (u U14) Get() uint16 { return u.v }

// U15 is an unsigned 15-bit value in 1..32767, the range of the
// ticks-per-quarter division. Zero is not a valid tick count; callers who decode a wire value
// of zero should treat it per the header codec's clamp-to-one rule (spec.md
// §4.3), not via this type's constructor.
type U15 struct{ v uint16 }

// NewU15 clamps v into 1..32767 and reports whether v was already in range.
func NewU15(v uint16) (U15, bool) {
	c, ok := clampU16(v, 1, 32767)
	return U15{c}, ok
}

// Get returns the clamped value.
func (u U15) Get() uint16 { return u.v }

// U28 is an unsigned value in 0..0x0FFFFFFF, the largest value a four-byte
// variable-length quantity can represent; the range of delta-times.
type U28 struct{ v uint32 }

// NewU28 clamps v into 0..0x0FFFFFFF and reports whether v was already in
// range.
func NewU28(v uint32) (U28, bool) {
	c, ok := clampU32(v, 0, maxVlqValue)
	return U28{c}, ok
}

// Get returns the clamped value.
func (u U28) Get() uint32 { return u.v }

func clampU8(value, min, max uint8) (uint8, bool) {
	if value < min {
		return min, false
	}
	if value > max {
		return max, false
	}
	return value, true
}

func clampU16(value, min, max uint16) (uint16, bool) {
	if value < min {
		return min, false
	}
	if value > max {
		return max, false
	}
	return value, true
}

func clampU32(value, min, max uint32) (uint32, bool) {
	if value < min {
		return min, false
	}
	if value > max {
		return max, false
	}
	return value, true
}
