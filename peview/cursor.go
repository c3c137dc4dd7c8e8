package peview

import "encoding/binary"

// cursor is a bounds-checked little-endian reader over a byte slice.
// It never panics: every read is range-checked first and reports
// ErrOutsideBoundary instead of slicing past the end of data.
//
// This factors out the offset+size boundary check that the teacher
// repo repeats inline at every ReadUint16/ReadUint32/structUnpack call
// site into the single reusable primitive spec.md §9 calls for.
type cursor struct {
	data []byte
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) u8(offset uint32) (uint8, error) {
	if uint64(offset)+1 > uint64(len(c.data)) {
		return 0, ErrOutsideBoundary
	}
	return c.data[offset], nil
}

func (c *cursor) u16(offset uint32) (uint16, error) {
	if uint64(offset)+2 > uint64(len(c.data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint16(c.data[offset:]), nil
}

func (c *cursor) u32(offset uint32) (uint32, error) {
	if uint64(offset)+4 > uint64(len(c.data)) {
		return 0, ErrOutsideBoundary
	}
	return binary.LittleEndian.Uint32(c.data[offset:]), nil
}

func (c *cursor) bytes(offset, size uint32) ([]byte, error) {
	if uint64(offset)+uint64(size) > uint64(len(c.data)) {
		return nil, ErrOutsideBoundary
	}
	return c.data[offset : offset+size], nil
}

// cString reads a NUL-terminated ASCII string starting at offset. An
// unterminated string is read through to the end of the buffer.
func (c *cursor) cString(offset uint32) (string, error) {
	if uint64(offset) > uint64(len(c.data)) {
		return "", ErrOutsideBoundary
	}
	end := offset
	for end < uint32(len(c.data)) && c.data[end] != 0 {
		end++
	}
	return string(c.data[offset:end]), nil
}

// fixedString reads up to size bytes starting at offset and trims at
// the first NUL byte, or returns the full size bytes if none is found
// (used for the 8-byte section name field, which may be unterminated).
func (c *cursor) fixedString(offset, size uint32) (string, error) {
	b, err := c.bytes(offset, size)
	if err != nil {
		return "", err
	}
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n]), nil
}

func (c *cursor) len() uint32 {
	return uint32(len(c.data))
}
