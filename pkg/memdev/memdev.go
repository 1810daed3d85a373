// Package memdev simulates a flash-like memory device in memory.
package memdev

import (
	"github.com/pkg/errors"

	"github.com/tinyfirm/nvmstore/flash"
)

var _ flash.Dev = &MemDev{}

// MemDev keeps the device content in a byte slice. Map returns aliasing
// views into that slice, matching memory-mapped flash semantics.
type MemDev struct {
	data []byte
}

// New returns a new memdev of the given size, in the erased state.
func New(size int64) *MemDev {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xff
	}
	return &MemDev{
		data: data,
	}
}

// WriteAt writes p at the given address.
func (md *MemDev) WriteAt(addr int64, p []byte) error {
	if err := md.check(addr, int64(len(p))); err != nil {
		return err
	}
	copy(md.data[addr:], p)
	return nil
}

// Map returns a view of length bytes at the given address.
func (md *MemDev) Map(addr, length int64) ([]byte, error) {
	if err := md.check(addr, length); err != nil {
		return nil, err
	}
	return md.data[addr : addr+length], nil
}

// Erase resets the range to 0xFF.
func (md *MemDev) Erase(addr, length int64) error {
	if err := md.check(addr, length); err != nil {
		return err
	}
	for i := addr; i < addr+length; i++ {
		md.data[i] = 0xff
	}
	return nil
}

// Size returns the byte size of the device.
func (md *MemDev) Size() int64 {
	return int64(len(md.data))
}

func (md *MemDev) check(addr, length int64) error {
	if addr < 0 || length < 0 || addr+length > int64(len(md.data)) {
		return errors.Errorf("invalid range: [%d, %d), device size: %d", addr, addr+length, len(md.data))
	}
	return nil
}
