package midi

import "fmt"

// DecodeErrorKind enumerates the ways a byte stream can fail to decode as a
// valid SMF, per spec.md §7.
type DecodeErrorKind int

const (
	// ErrKindUnexpectedEOF means the input ended in the middle of a
	// structure (a VLQ, a chunk header, a fixed-size field, a declared
	// payload length).
	ErrKindUnexpectedEOF DecodeErrorKind = iota
	// ErrKindBadChunkID means the first chunk wasn't MThd, or an MTrk was
	// expected but something else was found after skipping tolerated
	// unknown chunks.
	ErrKindBadChunkID
	// ErrKindVlqOverflow means a variable-length quantity required a 5th
	// byte.
	ErrKindVlqOverflow
	// ErrKindUnknownFormat means the MThd format field was not 0, 1, or 2.
	ErrKindUnknownFormat
	// ErrKindFormatTrackMismatch means format was 0 but ntrks was not 1.
	ErrKindFormatTrackMismatch
	// ErrKindUnknownSmpteRate means the division's SMPTE frame rate byte
	// did not have absolute value 24, 25, 29, or 30.
	ErrKindUnknownSmpteRate
	// ErrKindUnexpectedDataByte means a data byte was encountered with no
	// running status in effect.
	ErrKindUnexpectedDataByte
	// ErrKindUnexpectedStatusByte means a byte expected to be a data byte
	// had its high bit set.
	ErrKindUnexpectedStatusByte
	// ErrKindMissingEndOfTrack means a track's last event was not
	// Meta::EndOfTrack.
	ErrKindMissingEndOfTrack
	// ErrKindDataAfterEndOfTrack means bytes remained in the track window
	// after Meta::EndOfTrack was decoded.
	ErrKindDataAfterEndOfTrack
	// ErrKindDividedSysexInterleaved means a non-terminated 0xF0 SysEx
	// block was followed by something other than an 0xF7-prefixed event.
	ErrKindDividedSysexInterleaved
	// ErrKindMetaFieldOutOfRange means a meta event's fixed-format fields
	// decoded to an out-of-range value (SMPTE offset, time signature,
	// key signature).
	ErrKindMetaFieldOutOfRange
	// ErrKindTrackCountMismatch means the header's ntrks did not match the
	// number of MTrk chunks actually decoded.
	ErrKindTrackCountMismatch
)

func (k DecodeErrorKind) String() string {
	switch k {
	case ErrKindUnexpectedEOF:
		return "UnexpectedEOF"
	case ErrKindBadChunkID:
		return "BadChunkID"
	case ErrKindVlqOverflow:
		return "VlqOverflow"
	case ErrKindUnknownFormat:
		return "UnknownFormat"
	case ErrKindFormatTrackMismatch:
		return "FormatTrackMismatch"
	case ErrKindUnknownSmpteRate:
		return "UnknownSmpteRate"
	case ErrKindUnexpectedDataByte:
		return "UnexpectedDataByte"
	case ErrKindUnexpectedStatusByte:
		return "UnexpectedStatusByte"
	case ErrKindMissingEndOfTrack:
		return "MissingEndOfTrack"
	case ErrKindDataAfterEndOfTrack:
		return "DataAfterEndOfTrack"
	case ErrKindDividedSysexInterleaved:
		return "DividedSysexInterleaved"
	case ErrKindMetaFieldOutOfRange:
		return "MetaFieldOutOfRange"
	case ErrKindTrackCountMismatch:
		return "TrackCountMismatch"
	default:
		return "Unknown"
	}
}

// DecodeError is returned by Decode. Offset is the byte offset, relative to
// the start of the buffer passed to Decode, at which the problem was found
// (the unexported per-track decoder reports offsets relative to its track
// window, and Decode rebases them).
type DecodeError struct {
	Kind   DecodeErrorKind
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("midi: decode error at offset %d: %s", e.Offset, e.Kind)
	}
	return fmt.Sprintf("midi: decode error at offset %d: %s: %s", e.Offset, e.Kind, e.Detail)
}

// EncodeErrorKind enumerates the ways an in-memory model can fail to
// encode, per spec.md §7.
type EncodeErrorKind int

const (
	// ErrKindVlqTooLarge means a value exceeded the maximum representable
	// variable-length quantity.
	ErrKindVlqTooLarge EncodeErrorKind = iota
	// ErrKindInvalidModel means the in-memory model violated an invariant
	// (e.g. EndOfTrack not last, or appearing more than once).
	ErrKindInvalidModel
)

func (k EncodeErrorKind) String() string {
	switch k {
	case ErrKindVlqTooLarge:
		return "VlqTooLarge"
	case ErrKindInvalidModel:
		return "InvalidModel"
	default:
		return "Unknown"
	}
}

// EncodeError is returned by Encode.
type EncodeError struct {
	Kind   EncodeErrorKind
	Detail string
}

func (e *EncodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("midi: encode error: %s", e.Kind)
	}
	return fmt.Sprintf("midi: encode error: %s: %s", e.Kind, e.Detail)
}
