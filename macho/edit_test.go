package macho

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/BertoldVdb/minver-tools/macho/machotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalImage() []byte {
	return machotest.Image{
		Commands: []machotest.Command{
			machotest.VersionMin(0x000a0600, 0x000a0600),
		},
	}.Bytes()
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func requireEditError(t *testing.T, err error, target error, state State) {
	t.Helper()

	require.ErrorIs(t, err, target)
	var editErr *EditError
	require.ErrorAs(t, err, &editErr)
	assert.Equal(t, state, editErr.State)
}

// hashOutside hashes data with the 8 bytes at offset zeroed.
func hashOutside(data []byte, offset int) [32]byte {
	tmp := clone(data)
	copy(tmp[offset:offset+8], make([]byte, 8))
	return sha256.Sum256(tmp)
}

func TestEditReportOnly(t *testing.T) {
	data := minimalImage()
	orig := clone(data)

	result, err := Edit(data, EditConfig{}, nil)
	require.NoError(t, err)

	require.NotNil(t, result.Before)
	assert.Equal(t, 32, result.Before.Command.Offset)
	assert.Equal(t, LoadCmdVersionMinMacOSX, result.Before.Command.Cmd)
	assert.Equal(t, "version 10.6.0 sdk 10.6.0", result.Before.Values.String())
	assert.Nil(t, result.After)
	assert.Equal(t, StateReportOnly, result.State)
	assert.Equal(t, uint32(1), result.Header.NCmds)

	assert.Equal(t, orig, data)
}

func TestEditWrite(t *testing.T) {
	data := minimalImage()
	orig := clone(data)

	result, err := Edit(data, EditConfig{}, &Update{Version: "10.9.0", SDK: "10.12.0"})
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "version 10.6.0 sdk 10.6.0", result.Before.Values.String())
	require.NotNil(t, result.After)
	assert.Equal(t, "version 10.9.0 sdk 10.12.0", result.After.Values.String())

	assert.Equal(t, []byte{0x00, 0x09, 0x0a, 0x00, 0x00, 0x0c, 0x0a, 0x00}, data[40:48])
	assert.Equal(t, orig[:40], data[:40])
	assert.Equal(t, len(orig), len(data))

	/* A fresh read sees the new values */
	again, err := Edit(data, EditConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, result.After.Values, again.Before.Values)
}

func TestEditPatchLocality(t *testing.T) {
	data := testImage()
	orig := clone(data)

	result, err := Edit(data, EditConfig{}, &Update{Version: "10.14.2", SDK: "10.15.0"})
	require.NoError(t, err)

	offset := result.Before.Command.Offset + LoadCommandHeaderSize
	assert.Equal(t, 136, offset)
	assert.NotEqual(t, orig[offset:offset+8], data[offset:offset+8])
	assert.Equal(t, hashOutside(orig, offset), hashOutside(data, offset))
}

func TestEditFailures(t *testing.T) {
	badMagic := minimalImage()
	badMagic[0] = 0xce

	tooSmall := machotest.Image{Commands: []machotest.Command{
		{Cmd: uint32(LoadCmdVersionMinMacOSX), Body: make([]byte, 4)},
	}}.Bytes()

	tests := []struct {
		name   string
		data   []byte
		config EditConfig
		update *Update
		target error
		state  State
		before bool
	}{
		{
			name:   "bad magic",
			data:   badMagic,
			target: ErrorUnsupportedFormat,
			state:  StateStart,
		},
		{
			name:   "empty",
			data:   []byte{},
			target: ErrorUnsupportedFormat,
			state:  StateStart,
		},
		{
			name:   "absent target",
			data:   machotest.Image{}.Bytes(),
			target: ErrorTargetNotPresent,
			state:  StateHeaderRead,
		},
		{
			name:   "absent target among others",
			data:   machotest.Image{Commands: []machotest.Command{machotest.UUID(1)}}.Bytes(),
			target: ErrorTargetNotPresent,
			state:  StateHeaderRead,
		},
		{
			name:   "target too small",
			data:   tooSmall,
			target: ErrorCorruptRecord,
			state:  StateHeaderRead,
		},
		{
			name:   "invalid version",
			data:   minimalImage(),
			update: &Update{Version: "10.9", SDK: "10.12.0"},
			target: ErrorInvalidVersion,
			state:  StateValuesRead,
			before: true,
		},
		{
			name:   "sdk outside policy",
			data:   minimalImage(),
			update: &Update{Version: "10.9.0", SDK: "11.0.0"},
			target: ErrorInvalidVersion,
			state:  StateValuesRead,
			before: true,
		},
		{
			name:   "custom policy",
			data:   minimalImage(),
			config: EditConfig{Policy: &VersionPolicy{Major: 10, MinMinor: 10, MaxMinor: 11}},
			update: &Update{Version: "10.9.0", SDK: "10.11.0"},
			target: ErrorInvalidVersion,
			state:  StateValuesRead,
			before: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := clone(tt.data)

			result, err := Edit(tt.data, tt.config, tt.update)
			requireEditError(t, err, tt.target, tt.state)
			require.NotNil(t, result)
			assert.Equal(t, tt.before, result.Before != nil)
			assert.Nil(t, result.After)
			assert.Equal(t, orig, tt.data)
		})
	}
}

func TestEditRejectsNonVersionTarget(t *testing.T) {
	_, err := Edit(minimalImage(), EditConfig{Command: 0x19}, nil)

	var editErr *EditError
	require.ErrorAs(t, err, &editErr)
	assert.Equal(t, StateStart, editErr.State)
}

func TestEditOtherTarget(t *testing.T) {
	ios := machotest.VersionMin(0x00090000, 0x00090300)
	ios.Cmd = uint32(LoadCmdVersionMinIPhoneOS)
	data := machotest.Image{Commands: []machotest.Command{
		machotest.VersionMin(0x000a0600, 0x000a0600),
		ios,
	}}.Bytes()

	config := EditConfig{
		Command: LoadCmdVersionMinIPhoneOS,
		Policy:  &VersionPolicy{Major: 9, MinMinor: 0, MaxMinor: 3},
	}
	result, err := Edit(data, config, &Update{Version: "9.1.0", SDK: "9.3.0"})
	require.NoError(t, err)
	assert.Equal(t, 48, result.Before.Command.Offset)
	assert.Equal(t, "version 9.1.0 sdk 9.3.0", result.After.Values.String())

	/* The macOS command is untouched */
	macos, err := Edit(data, EditConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "version 10.6.0 sdk 10.6.0", macos.Before.Values.String())
}

type revertingBuffer struct {
	data     []byte
	orig     []byte
	flushErr error
}

func (r *revertingBuffer) Bytes() []byte {
	return r.data
}

func (r *revertingBuffer) Flush() error {
	copy(r.data, r.orig)
	return r.flushErr
}

func TestEditVerifyFailure(t *testing.T) {
	data := minimalImage()
	buf := &revertingBuffer{data: data, orig: clone(data)}

	result, err := EditBuffer(buf, EditConfig{}, &Update{Version: "10.9.0", SDK: "10.12.0"})
	requireEditError(t, err, ErrorVerifyFailed, StatePatched)
	require.NotNil(t, result.After)
	assert.Equal(t, "version 10.6.0 sdk 10.6.0", result.After.Values.String())
}

func TestEditFlushFailure(t *testing.T) {
	data := minimalImage()
	buf := &revertingBuffer{data: data, orig: clone(data), flushErr: errors.New("disk gone")}

	result, err := EditBuffer(buf, EditConfig{}, &Update{Version: "10.9.0", SDK: "10.12.0"})
	requireEditError(t, err, ErrorVerifyFailed, StatePatched)
	assert.Nil(t, result.After)
	assert.NotNil(t, result.Before)
}

func TestEditLogs(t *testing.T) {
	var lines []string
	config := EditConfig{
		LogFunc: func(level int, format string, param ...interface{}) {
			lines = append(lines, fmt.Sprintf("%d %s", level, fmt.Sprintf(format, param...)))
		},
	}

	_, err := Edit(minimalImage(), config, &Update{Version: "10.9.0", SDK: "10.12.0"})
	require.NoError(t, err)

	assert.Contains(t, lines, "1 State: start")
	assert.Contains(t, lines, "1 State: patched")
	assert.Contains(t, lines, "1 State: done")
	assert.Contains(t, lines, "2 Load command 0: LC_VERSION_MIN_MACOSX at 0x20, size 16")
}

func TestEditFile(t *testing.T) {
	path := machotest.WriteFile(t, testImage())
	orig, err := os.ReadFile(path)
	require.NoError(t, err)

	result, err := EditFile(path, EditConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "version 10.6.0 sdk 10.9.0", result.Before.Values.String())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(orig), sha256.Sum256(after), "report-only run modified the file")

	result, err = EditFile(path, EditConfig{}, &Update{Version: "10.9.0", SDK: "10.12.0"})
	require.NoError(t, err)
	assert.Equal(t, "version 10.9.0 sdk 10.12.0", result.After.Values.String())

	after, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, hashOutside(orig, 136), hashOutside(after, 136))

	result, err = EditFile(path, EditConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "version 10.9.0 sdk 10.12.0", result.Before.Values.String())
}

func TestEditFileFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := EditFile(filepath.Join(dir, "missing"), EditConfig{}, nil)
	requireEditError(t, err, ErrorFileNotFound, StateStart)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = EditFile(empty, EditConfig{}, &Update{Version: "10.9.0", SDK: "10.12.0"})
	requireEditError(t, err, ErrorUnsupportedFormat, StateStart)

	_, err = EditFile(dir, EditConfig{}, nil)
	assert.Error(t, err)

	bad := minimalImage()
	copy(bad, []byte{0xca, 0xfe, 0xba, 0xbe})
	path := machotest.WriteFile(t, bad)
	_, err = EditFile(path, EditConfig{}, &Update{Version: "10.9.0", SDK: "10.12.0"})
	requireEditError(t, err, ErrorUnsupportedFormat, StateStart)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(bad, after))
}

func TestList(t *testing.T) {
	hdr, cmds, err := List(testImage(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), hdr.NCmds)
	require.Len(t, cmds, 4)
	assert.Equal(t, "LC_SEGMENT_64", cmds[0].Cmd.String())
	assert.Equal(t, "LC_UUID", cmds[1].Cmd.String())
	assert.Equal(t, 144, cmds[3].Offset)

	_, _, err = List([]byte{1, 2, 3}, nil)
	assert.ErrorIs(t, err, ErrorUnsupportedFormat)
}
