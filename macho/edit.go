package macho

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BertoldVdb/minver-tools/macho/mview"
)

type LogFunc func(level int, format string, param ...interface{})

type State int

const (
	StateStart State = iota
	StateHeaderRead
	StateRecordFound
	StateValuesRead
	StateReportOnly
	StatePatched
	StateVerified
	StateDone
)

var stateNames = [...]string{
	StateStart:       "start",
	StateHeaderRead:  "header-read",
	StateRecordFound: "record-found",
	StateValuesRead:  "values-read",
	StateReportOnly:  "report-only",
	StatePatched:     "patched",
	StateVerified:    "verified",
	StateDone:        "done",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EditError records the last state reached before a failure. Errors with
// State >= StatePatched mean the file may already have been modified.
type EditError struct {
	State State
	Err   error
}

func (e *EditError) Error() string {
	return fmt.Sprintf("failed after %s: %v", e.State, e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

// Buffer is a mutable view of the complete image. Flush makes written bytes
// durable, after which Bytes must reflect what was stored.
type Buffer interface {
	Bytes() []byte
	Flush() error
}

type memoryBuffer []byte

func (m memoryBuffer) Bytes() []byte {
	return m
}

func (m memoryBuffer) Flush() error {
	return nil
}

type EditConfig struct {
	Command LoadCmd        /* Defaults to LoadCmdVersionMinMacOSX */
	Policy  *VersionPolicy /* Defaults to DefaultVersionPolicy */

	LogFunc LogFunc
}

// Update holds the textual versions to write. Both are validated before the
// image is touched.
type Update struct {
	Version string
	SDK     string
}

type Report struct {
	Command LoadCommand
	Values  VersionMin
}

type Result struct {
	Header *Header
	Before *Report
	After  *Report
	State  State
}

type editor struct {
	config EditConfig
	buf    Buffer
	result Result
}

func (e *editor) log(level int, format string, param ...interface{}) {
	if e.config.LogFunc != nil {
		e.config.LogFunc(level, format, param...)
	}
}

func (e *editor) enter(s State) {
	e.result.State = s
	e.log(1, "State: %s", s)
}

func (e *editor) fail(err error) (*Result, error) {
	e.log(1, "Failed after %s: %v", e.result.State, err)
	return &e.result, &EditError{State: e.result.State, Err: err}
}

// Edit reports, and if update is not nil rewrites, the version-min command
// inside an in-memory image.
func Edit(data []byte, config EditConfig, update *Update) (*Result, error) {
	return EditBuffer(memoryBuffer(data), config, update)
}

// EditBuffer is Edit over an arbitrary buffer. The returned result is never
// nil, and carries Before whenever the current values could be read.
func EditBuffer(buf Buffer, config EditConfig, update *Update) (*Result, error) {
	e := &editor{
		config: config,
		buf:    buf,
	}

	target := config.Command
	if target == 0 {
		target = LoadCmdVersionMinMacOSX
	}
	policy := DefaultVersionPolicy
	if config.Policy != nil {
		policy = *config.Policy
	}

	e.enter(StateStart)
	if !target.IsVersionMin() {
		return e.fail(fmt.Errorf("%s does not carry version fields", target))
	}

	data := buf.Bytes()
	if len(data) == 0 {
		return e.fail(fmt.Errorf("%w: file is empty", ErrorUnsupportedFormat))
	}

	file := RegionFromBytes("file", data)
	cursor := NewCursor(file, ByteOrder)

	hdr, err := ReadHeader(cursor)
	if err != nil {
		return e.fail(err)
	}
	e.result.Header = hdr
	e.enter(StateHeaderRead)
	e.log(2, "Header: cpu %#x/%#x, filetype %d, %d commands in %d bytes", hdr.CpuType, hdr.CpuSubtype, hdr.FileType, hdr.NCmds, hdr.SizeOfCmds)

	scanner, err := NewScanner(file, hdr)
	if err != nil {
		return e.fail(err)
	}
	scanner.LogFunc = config.LogFunc

	cmd, found, err := scanner.Find(target)
	if err != nil {
		return e.fail(err)
	} else if !found {
		return e.fail(fmt.Errorf("%w: no %s among %d load commands", ErrorTargetNotPresent, target, scanner.Visited()))
	}
	if cmd.Size < VersionMinSize {
		return e.fail(fmt.Errorf("%w: %s at %#x has size %d, need %d", ErrorCorruptRecord, target, cmd.Offset, cmd.Size, VersionMinSize))
	}
	e.enter(StateRecordFound)

	values, err := ReadVersionMin(cursor, cmd.Offset)
	if err != nil {
		return e.fail(err)
	}
	e.result.Before = &Report{
		Command: cmd,
		Values:  values,
	}
	e.enter(StateValuesRead)

	if update == nil {
		e.enter(StateReportOnly)
		return &e.result, nil
	}

	var want VersionMin
	if want.Version, err = policy.Parse(update.Version); err != nil {
		return e.fail(fmt.Errorf("version: %w", err))
	}
	if want.SDK, err = policy.Parse(update.SDK); err != nil {
		return e.fail(fmt.Errorf("sdk: %w", err))
	}

	if err := WriteVersionMin(cursor, cmd.Offset, want); err != nil {
		return e.fail(err)
	}
	e.enter(StatePatched)

	if err := buf.Flush(); err != nil {
		return e.fail(fmt.Errorf("%w: flush: %v", ErrorVerifyFailed, err))
	}

	/* Read back from the buffer as it is now, not from what we intended to write */
	after, err := ReadVersionMin(NewCursor(RegionFromBytes("file", buf.Bytes()), ByteOrder), cmd.Offset)
	if err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrorVerifyFailed, err))
	}
	e.result.After = &Report{
		Command: cmd,
		Values:  after,
	}
	if after != want {
		return e.fail(fmt.Errorf("%w: read back %s, wrote %s", ErrorVerifyFailed, after, want))
	}
	e.enter(StateVerified)

	e.enter(StateDone)
	return &e.result, nil
}

// EditFile runs EditBuffer over the file at path. The file is only opened
// for writing when update is not nil, and is released on every return path.
func EditFile(path string, config EditConfig, update *Update) (result *Result, err error) {
	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrorFileNotFound, path)
		}
		return &Result{}, &EditError{State: StateStart, Err: err}
	}
	if !stat.Mode().IsRegular() {
		return &Result{}, &EditError{State: StateStart, Err: fmt.Errorf("%s is not a regular file", path)}
	}
	if stat.Size() == 0 {
		return &Result{}, &EditError{State: StateStart, Err: fmt.Errorf("%w: %s is empty", ErrorUnsupportedFormat, path)}
	}

	view, err := mview.Open(path, update != nil)
	if err != nil {
		return &Result{}, &EditError{State: StateStart, Err: err}
	}
	defer func() {
		if cerr := view.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return EditBuffer(view, config, update)
}

// List returns the header and every load command of an image. Commands read
// before a failure are returned together with the error.
func List(data []byte, logFunc LogFunc) (*Header, []LoadCommand, error) {
	file := RegionFromBytes("file", data)

	hdr, err := ReadHeader(NewCursor(file, ByteOrder))
	if err != nil {
		return nil, nil, err
	}

	scanner, err := NewScanner(file, hdr)
	if err != nil {
		return hdr, nil, err
	}
	scanner.LogFunc = logFunc

	var cmds []LoadCommand
	for scanner.Next() {
		cmds = append(cmds, scanner.Command())
	}
	return hdr, cmds, scanner.Err()
}
