package macho

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRead(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	c := NewCursor(RegionFromBytes("test", data), binary.LittleEndian)

	u8, err := c.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)

	u16, err := c.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), u16)

	u32, err := c.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x07060504), u32)
	assert.Equal(t, 7, c.Offset())

	_, err = c.ReadUint32()
	assert.ErrorIs(t, err, ErrorOutOfRange)
	assert.Equal(t, 7, c.Offset(), "failed read must not move the cursor")

	u8, err = c.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x08), u8)
	assert.Equal(t, 0, c.Remaining())

	_, err = c.ReadUint8()
	assert.ErrorIs(t, err, ErrorOutOfRange)
}

func TestCursorByteOrder(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}

	be := NewCursor(RegionFromBytes("test", data), binary.BigEndian)
	v, err := be.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)

	le := NewCursor(RegionFromBytes("test", data), binary.LittleEndian)
	v, err = le.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), v)
}

func TestCursorSigned(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff}
	c := NewCursor(RegionFromBytes("test", data), binary.LittleEndian)

	i32, err := c.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), i32)

	require.NoError(t, c.Seek(2))
	i16, err := c.ReadInt16()
	require.NoError(t, err)
	assert.Equal(t, int16(-1), i16)

	require.NoError(t, c.Seek(0))
	i8, err := c.ReadInt8()
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)
}

func TestCursorSeek(t *testing.T) {
	c := NewCursor(RegionFromBytes("test", make([]byte, 8)), binary.LittleEndian)

	assert.NoError(t, c.Seek(8))
	assert.ErrorIs(t, c.Seek(9), ErrorOutOfRange)
	assert.ErrorIs(t, c.Seek(-1), ErrorOutOfRange)
	assert.Equal(t, 8, c.Offset())

	require.NoError(t, c.Seek(4))
	assert.NoError(t, c.Skip(4))
	assert.ErrorIs(t, c.Skip(1), ErrorOutOfRange)
}

func TestCursorWrite(t *testing.T) {
	data := make([]byte, 8)
	c := NewCursor(RegionFromBytes("test", data), binary.LittleEndian)

	require.NoError(t, c.Seek(2))
	require.NoError(t, c.WriteUint32(0xdeadbeef))
	assert.Equal(t, []byte{0, 0, 0xef, 0xbe, 0xad, 0xde, 0, 0}, data)
	assert.Equal(t, 6, c.Offset())

	/* Only two bytes left, nothing may be written */
	assert.ErrorIs(t, c.WriteUint32(0x11223344), ErrorOutOfRange)
	assert.Equal(t, []byte{0, 0, 0xef, 0xbe, 0xad, 0xde, 0, 0}, data)

	require.NoError(t, c.WriteUint16(0x0102))
	assert.Equal(t, []byte{0x02, 0x01}, data[6:])
}

func TestCursorPartialRegion(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	root := RegionFromBytes("root", data)
	part := regionWrapPartial("part", root, 2, 4)

	c := NewCursor(part, binary.BigEndian)
	v, err := c.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x02030405), v)

	_, err = c.ReadUint8()
	assert.ErrorIs(t, err, ErrorOutOfRange)

	require.NoError(t, c.Seek(2))
	assert.ErrorIs(t, c.WriteUint32(0), ErrorOutOfRange)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7}, data)

	parent, offset := RecursiveGetParentAddress(part, 1)
	assert.Equal(t, "root", parent.GetName())
	assert.Equal(t, 3, offset)
}
