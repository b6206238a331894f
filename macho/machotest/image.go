// Package machotest builds small synthetic Mach-O images for tests.
package machotest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	Magic64 = 0xfeedfacf

	cmdSegment64  = 0x19
	cmdUUID       = 0x1b
	cmdVersionMin = 0x24
)

type Command struct {
	Cmd  uint32
	Size uint32 /* 0 means 8 + len(Body) */
	Body []byte
}

func (c Command) size() uint32 {
	if c.Size != 0 {
		return c.Size
	}
	return uint32(8 + len(c.Body))
}

type Image struct {
	Magic    uint32 /* 0 means Magic64 */
	Commands []Command
	Trailer  []byte
}

// Bytes lays out the header, every command body and the trailer. ncmds and
// sizeofcmds are derived from Commands.
func (i Image) Bytes() []byte {
	magic := i.Magic
	if magic == 0 {
		magic = Magic64
	}

	var cmds []byte
	for _, m := range i.Commands {
		cmds = binary.LittleEndian.AppendUint32(cmds, m.Cmd)
		cmds = binary.LittleEndian.AppendUint32(cmds, m.size())
		cmds = append(cmds, m.Body...)
	}

	out := make([]byte, 0, 32+len(cmds)+len(i.Trailer))
	for _, m := range []uint32{
		magic,
		0x01000007, /* x86_64 */
		3,
		2, /* MH_EXECUTE */
		uint32(len(i.Commands)),
		uint32(len(cmds)),
		0x00200085,
		0,
	} {
		out = binary.LittleEndian.AppendUint32(out, m)
	}

	out = append(out, cmds...)
	return append(out, i.Trailer...)
}

func VersionMin(version uint32, sdk uint32) Command {
	body := binary.LittleEndian.AppendUint32(nil, version)
	return Command{
		Cmd:  cmdVersionMin,
		Body: binary.LittleEndian.AppendUint32(body, sdk),
	}
}

func Segment64(name string) Command {
	body := make([]byte, 64)
	copy(body[:16], name)
	return Command{
		Cmd:  cmdSegment64,
		Body: body,
	}
}

func UUID(b byte) Command {
	body := make([]byte, 16)
	for i := range body {
		body[i] = b + byte(i)
	}
	return Command{
		Cmd:  cmdUUID,
		Body: body,
	}
}

// WriteFile stores data in a fresh temporary directory and returns its path.
func WriteFile(t testing.TB, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "image")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}
