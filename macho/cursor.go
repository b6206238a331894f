package macho

import (
	"encoding/binary"
	"fmt"
)

// Cursor provides sequential, offset-tracked access to a region using a
// fixed byte order. It never grows the region.
type Cursor struct {
	region Region
	order  binary.ByteOrder
	offset int
}

func NewCursor(region Region, order binary.ByteOrder) *Cursor {
	return &Cursor{
		region: region,
		order:  order,
	}
}

func (c *Cursor) Offset() int {
	return c.offset
}

func (c *Cursor) Len() int {
	return c.region.GetLength()
}

func (c *Cursor) Remaining() int {
	return c.region.GetLength() - c.offset
}

// Seek moves to an absolute offset. Seeking to the end is allowed, anything
// beyond fails.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > c.region.GetLength() {
		return fmt.Errorf("%w: seek to %#x in %s (length %#x)", ErrorOutOfRange, offset, c.region.GetName(), c.region.GetLength())
	}
	c.offset = offset
	return nil
}

func (c *Cursor) Skip(n int) error {
	return c.Seek(c.offset + n)
}

func (c *Cursor) checkRange(write bool, n int) error {
	if n > c.Remaining() {
		op := "read"
		if write {
			op = "write"
		}
		return fmt.Errorf("%w: %s of %d bytes at %#x in %s (length %#x)", ErrorOutOfRange, op, n, c.offset, c.region.GetName(), c.region.GetLength())
	}
	return nil
}

func (c *Cursor) access(write bool, buf []byte) error {
	if err := c.checkRange(write, len(buf)); err != nil {
		return err
	}

	n, err := c.region.Access(write, c.offset, buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short access at %#x in %s", ErrorOutOfRange, c.offset, c.region.GetName())
	}

	c.offset += n
	return nil
}

func (c *Cursor) Read(buf []byte) error {
	return c.access(false, buf)
}

func (c *Cursor) Write(buf []byte) error {
	return c.access(true, buf)
}

func (c *Cursor) ReadUint8() (uint8, error) {
	var tmp [1]byte
	err := c.access(false, tmp[:])
	return tmp[0], err
}

func (c *Cursor) ReadUint16() (uint16, error) {
	var tmp [2]byte
	if err := c.access(false, tmp[:]); err != nil {
		return 0, err
	}
	return c.order.Uint16(tmp[:]), nil
}

func (c *Cursor) ReadUint32() (uint32, error) {
	var tmp [4]byte
	if err := c.access(false, tmp[:]); err != nil {
		return 0, err
	}
	return c.order.Uint32(tmp[:]), nil
}

func (c *Cursor) ReadInt8() (int8, error) {
	v, err := c.ReadUint8()
	return int8(v), err
}

func (c *Cursor) ReadInt16() (int16, error) {
	v, err := c.ReadUint16()
	return int16(v), err
}

func (c *Cursor) ReadInt32() (int32, error) {
	v, err := c.ReadUint32()
	return int32(v), err
}

func (c *Cursor) WriteUint8(v uint8) error {
	return c.access(true, []byte{v})
}

func (c *Cursor) WriteUint16(v uint16) error {
	var tmp [2]byte
	c.order.PutUint16(tmp[:], v)
	return c.access(true, tmp[:])
}

func (c *Cursor) WriteUint32(v uint32) error {
	var tmp [4]byte
	c.order.PutUint32(tmp[:], v)
	return c.access(true, tmp[:])
}
