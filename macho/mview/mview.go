package mview

import "errors"

var ErrorEmpty = errors.New("file is empty")

// View is exclusive, byte-addressable access to the contents of one file.
// Bytes may only be modified when the view was opened writable.
type View interface {
	Bytes() []byte
	Flush() error
	Close() error
}

func Open(path string, writable bool) (View, error) {
	return openViewInternal(path, writable)
}
