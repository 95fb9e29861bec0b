package midi

// DurationName resolves a TimeSignatureValue.DenominatorPow2 (the MIDI
// file spec's "negative power of two" denominator encoding) to a named
// note duration when it matches a standard value, and falls back to
// Other(n) when it doesn't. Grounded in
// _examples/original_source/src/core/duration_name.rs.
type DurationName struct {
	name  string
	pow2  uint8
	named bool
}

// durationNames maps the standard DenominatorPow2 values to their names.
var durationNames = map[uint8]string{
	0:  "whole",
	1:  "half",
	2:  "quarter",
	3:  "eighth",
	4:  "sixteenth",
	5:  "thirty-second",
	6:  "sixty-fourth",
	7:  "one-hundred-twenty-eighth",
	8:  "two-hundred-fifty-sixth",
	9:  "five-hundred-twelfth",
	10: "one-thousand-twenty-fourth",
}

func durationNameFromPow2(pow2 uint8) DurationName {
	if name, ok := durationNames[pow2]; ok {
		return DurationName{name: name, pow2: pow2, named: true}
	}
	return DurationName{pow2: pow2}
}

// Named reports whether this is one of the standard, named durations.
func (d DurationName) Named() bool { return d.named }

// String returns the duration's name if standard, or "other(<pow2>)"
// otherwise.
func (d DurationName) String() string {
	if d.named {
		return d.name
	}
	return "other(" + itoa(int(d.pow2)) + ")"
}

// Pow2 returns the underlying DenominatorPow2 value.
func (d DurationName) Pow2() uint8 { return d.pow2 }

// Clocks resolves a MIDI-clocks-per-click count to a named note duration
// when it matches a standard value (24 clocks per quarter note), and
// falls back to Other(n) when it doesn't. Grounded in
// _examples/original_source/src/core/clocks.rs.
type Clocks struct {
	name  string
	value uint8
	named bool
}

var clockNames = map[uint8]string{
	144: "dotted-whole",
	96:  "whole",
	72:  "dotted-half",
	48:  "half",
	36:  "dotted-quarter",
	24:  "quarter",
	18:  "dotted-eighth",
	12:  "eighth",
	9:   "dotted-sixteenth",
	6:   "sixteenth",
}

// NewClocks resolves v to a named Clocks value if possible.
func NewClocks(v uint8) Clocks {
	if name, ok := clockNames[v]; ok {
		return Clocks{name: name, value: v, named: true}
	}
	return Clocks{value: v}
}

// Named reports whether this is one of the standard, named clock counts.
func (c Clocks) Named() bool { return c.named }

// String returns the clock count's name if standard, or "other(<n>)"
// otherwise.
func (c Clocks) String() string {
	if c.named {
		return c.name
	}
	return "other(" + itoa(int(c.value)) + ")"
}

// Value returns the underlying MIDI clock count.
func (c Clocks) Value() uint8 { return c.value }
