package validator

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEndOfData is returned when a read runs past the end of the buffer
	ErrUnexpectedEndOfData = errors.New("unexpected end of data")
	// ErrVLQTooLong is returned when a variable-length quantity exceeds 4 bytes
	ErrVLQTooLong = errors.New("variable-length quantity longer than 4 bytes")
)

// maxVLQBytes is the longest variable-length quantity SMF allows
const maxVLQBytes = 4

// Cursor reads sequentially from an immutable byte slice. base is the
// absolute file offset of data[0], so positions reported by a sub-cursor
// stay meaningful for the whole file.
type Cursor struct {
	data []byte
	pos  int
	base int
}

// NewCursor creates a cursor positioned at the start of data
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the size of the underlying buffer
func (c *Cursor) Len() int {
	return len(c.data)
}

// Pos returns the position relative to the start of the cursor
func (c *Cursor) Pos() int {
	return c.pos
}

// Offset returns the absolute file offset of the next byte
func (c *Cursor) Offset() int {
	return c.base + c.pos
}

// Remaining returns how many bytes are left to read
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Read returns the next n bytes and advances past them
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", n, c.Offset(), ErrUnexpectedEndOfData)
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

// Peek returns up to n bytes without advancing
func (c *Cursor) Peek(n int) []byte {
	end := c.pos + n
	if end > len(c.data) {
		end = len(c.data)
	}
	return c.data[c.pos:end]
}

// ReadByte returns the next byte
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// UnreadByte steps back one byte
func (c *Cursor) UnreadByte() error {
	if c.pos == 0 {
		return errors.New("unread at start of cursor")
	}
	c.pos--
	return nil
}

// Skip advances n bytes, or to the end of the buffer when fewer remain
func (c *Cursor) Skip(n int) {
	if n > c.Remaining() {
		n = c.Remaining()
	}
	c.pos += n
}

// Sub returns a cursor over the next n bytes without advancing c. n is
// clamped to the remaining length.
func (c *Cursor) Sub(n int) *Cursor {
	if n > c.Remaining() {
		n = c.Remaining()
	}
	return &Cursor{
		data: c.data[c.pos : c.pos+n],
		base: c.Offset(),
	}
}

// ReadUint16 reads a big-endian 16-bit integer
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUint32 reads a big-endian 32-bit integer
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadVLQ decodes a variable-length quantity: 7 bits per byte, most
// significant first, high bit set on every byte but the last.
func (c *Cursor) ReadVLQ() (uint32, error) {
	var v uint32
	for i := 0; i < maxVLQBytes; i++ {
		b, err := c.ReadByte()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("at offset %d: %w", c.Offset(), ErrVLQTooLong)
}
