// Package filedev uses a file as a flash-like memory device.
package filedev

import (
	"os"

	"github.com/pkg/errors"

	"github.com/tinyfirm/nvmstore/flash"
)

var _ flash.Dev = &FileDev{}

// FileDev adapts an image file to the device interface. Map returns a copy
// of the range read from the file, valid until the range is rewritten.
type FileDev struct {
	file *os.File
	size int64
}

// New returns a new filedev over the given file.
func New(file *os.File) (*FileDev, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &FileDev{
		file: file,
		size: info.Size(),
	}, nil
}

// WriteAt writes p at the given address.
func (fd *FileDev) WriteAt(addr int64, p []byte) error {
	if err := fd.check(addr, int64(len(p))); err != nil {
		return err
	}
	if _, err := fd.file.WriteAt(p, addr); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(fd.file.Sync())
}

// Map reads length bytes at the given address.
func (fd *FileDev) Map(addr, length int64) ([]byte, error) {
	if err := fd.check(addr, length); err != nil {
		return nil, err
	}
	p := make([]byte, length)
	if _, err := fd.file.ReadAt(p, addr); err != nil {
		return nil, errors.WithStack(err)
	}
	return p, nil
}

// Erase resets the range to 0xFF.
func (fd *FileDev) Erase(addr, length int64) error {
	if err := fd.check(addr, length); err != nil {
		return err
	}
	p := make([]byte, length)
	for i := range p {
		p[i] = 0xff
	}
	if _, err := fd.file.WriteAt(p, addr); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(fd.file.Sync())
}

// Size returns the byte size of the device.
func (fd *FileDev) Size() int64 {
	return fd.size
}

func (fd *FileDev) check(addr, length int64) error {
	if addr < 0 || length < 0 || addr+length > fd.size {
		return errors.Errorf("invalid range: [%d, %d), device size: %d", addr, addr+length, fd.size)
	}
	return nil
}
