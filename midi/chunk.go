package midi

import "bytes"

// chunkHeaderSize is the size of a chunk header: 4 ID bytes + a 4-byte
// big-endian length.
const chunkHeaderSize = 8

// chunk is a framed segment of the SMF byte stream: a 4-byte ASCII ID
// followed by a big-endian uint32 length, followed by exactly that many
// payload bytes.
type chunk struct {
	id      [4]byte
	payload []byte
}

// readChunk reads one chunk header and its payload window starting at
// offset. It returns the chunk and the offset just past its payload.
func readChunk(data []byte, offset int) (chunk, int, error) {
	if offset+chunkHeaderSize > len(data) {
		return chunk{}, offset, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: offset, Detail: "input ended while reading a chunk header"}
	}
	var c chunk
	copy(c.id[:], data[offset:offset+4])
	length := decodeU32(data[offset+4 : offset+8])
	payloadStart := offset + chunkHeaderSize
	payloadEnd := payloadStart + int(length)
	if payloadEnd > len(data) {
		return chunk{}, offset, &DecodeError{Kind: ErrKindUnexpectedEOF, Offset: payloadStart, Detail: "chunk payload runs past the end of input"}
	}
	c.payload = data[payloadStart:payloadEnd]
	return c, payloadEnd, nil
}

// writeChunk appends the wire encoding of id+payload to buf.
func writeChunk(buf *bytes.Buffer, id [4]byte, payload []byte) {
	buf.Write(id[:])
	buf.Write(encodeU32(uint32(len(payload))))
	buf.Write(payload)
}

var (
	chunkIDMThd = [4]byte{'M', 'T', 'h', 'd'}
	chunkIDMTrk = [4]byte{'M', 'T', 'r', 'k'}
)
