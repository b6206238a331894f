//go:build !unix || puremview

package mview

import (
	"io"
	"os"
)

// memView holds the whole file in memory and writes it back in place on
// Flush. The file handle stays open for the lifetime of the view.
type memView struct {
	f        *os.File
	data     []byte
	writable bool
}

func openViewInternal(path string, writable bool) (View, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.Size() == 0 {
		f.Close()
		return nil, ErrorEmpty
	}

	data := make([]byte, stat.Size())
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, stat.Size()), data); err != nil {
		f.Close()
		return nil, err
	}

	return &memView{
		f:        f,
		data:     data,
		writable: writable,
	}, nil
}

func (v *memView) Bytes() []byte {
	return v.data
}

func (v *memView) Flush() error {
	if !v.writable || v.data == nil {
		return nil
	}

	if _, err := v.f.WriteAt(v.data, 0); err != nil {
		return err
	}
	if err := v.f.Sync(); err != nil {
		return err
	}

	/* Reload so that Bytes reflects what is on disk */
	_, err := io.ReadFull(io.NewSectionReader(v.f, 0, int64(len(v.data))), v.data)
	return err
}

func (v *memView) Close() error {
	v.data = nil
	if v.f == nil {
		return nil
	}
	err := v.f.Close()
	v.f = nil
	return err
}
