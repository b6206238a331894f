package macho

import (
	"encoding/binary"
	"fmt"
)

const (
	// Magic64 is the only accepted magic: a 64-bit little-endian image.
	Magic64    uint32 = 0xfeedfacf
	HeaderSize        = 32
)

// ByteOrder of every multi-byte field in an accepted image.
var ByteOrder binary.ByteOrder = binary.LittleEndian

type Header struct {
	Magic      uint32
	CpuType    int32
	CpuSubtype int32
	FileType   uint32
	NCmds      uint32
	SizeOfCmds uint32
	Flags      uint32
	Reserved   uint32
}

// ReadHeader decodes the file header at the cursor position, which must be 0.
// On success the cursor is left at the first load command.
func ReadHeader(c *Cursor) (*Header, error) {
	if c.Len() < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a %d byte header", ErrorUnsupportedFormat, c.Len(), HeaderSize)
	}

	var h Header
	var err error

	if h.Magic, err = c.ReadUint32(); err != nil {
		return nil, err
	}
	if h.Magic != Magic64 {
		return nil, fmt.Errorf("%w: magic %#08x, expected %#08x", ErrorUnsupportedFormat, h.Magic, Magic64)
	}

	/* Remaining fields are passed through unvalidated */
	if h.CpuType, err = c.ReadInt32(); err != nil {
		return nil, err
	}
	if h.CpuSubtype, err = c.ReadInt32(); err != nil {
		return nil, err
	}
	for _, m := range []*uint32{&h.FileType, &h.NCmds, &h.SizeOfCmds, &h.Flags, &h.Reserved} {
		if *m, err = c.ReadUint32(); err != nil {
			return nil, err
		}
	}

	return &h, nil
}
