/*
Package midi implements a codec for Standard MIDI Files (SMF).

It translates between the SMF byte stream and a validated, typed in-memory
model: MidiFile, Track, TrackEvent, and the Event taxonomy (channel
messages, meta events, and system-exclusive events). The package is a pure
codec core -- it has no opinion about where the bytes come from or go to.
Callers supply an owned []byte to Decode and receive an owned []byte from
Encode; there is no file, network, or device I/O anywhere in this package.

Decoding is strict on structural bytes (chunk framing, VLQ encoding,
running status) and lenient on semantic payloads (unknown meta event types
and unknown top-level chunk IDs are preserved or skipped, never rejected),
so that real-world files round-trip even when they contain
forward-compatible extensions this package doesn't specifically know about.
*/
package midi
