//go:build unix && !puremview

package mview

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

type mmapView struct {
	f        *os.File
	data     []byte
	writable bool
}

func openViewInternal(path string, writable bool) (View, error) {
	flag := os.O_RDONLY
	prot := unix.PROT_READ
	if writable {
		flag = os.O_RDWR
		prot |= unix.PROT_WRITE
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
	if stat.Size() > int64(int(^uint(0)>>1)) {
		f.Close()
		return nil, errors.New("file is too large to map")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(stat.Size()), prot, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, os.NewSyscallError("mmap", err)
	}

	return &mmapView{
		f:        f,
		data:     data,
		writable: writable,
	}, nil
}

func (v *mmapView) Bytes() []byte {
	return v.data
}

func (v *mmapView) Flush() error {
	if !v.writable || v.data == nil {
		return nil
	}
	return os.NewSyscallError("msync", unix.Msync(v.data, unix.MS_SYNC))
}

func (v *mmapView) Close() error {
	var err error
	if v.data != nil {
		err = os.NewSyscallError("munmap", unix.Munmap(v.data))
		v.data = nil
	}
	if v.f != nil {
		if cerr := v.f.Close(); err == nil {
			err = cerr
		}
		v.f = nil
	}
	return err
}
