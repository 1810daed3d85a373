// Package flash provides bounds-checked access to a fixed window of a raw
// non-volatile memory device.
package flash

import (
	"github.com/pkg/errors"
)

// ErrOutOfRange is returned when an access does not fit into the block.
var ErrOutOfRange = errors.New("access out of block range")

// Block is a fixed, contiguous window of a device. It does not own the
// underlying memory, only references it.
type Block struct {
	dev  Dev
	addr int64
	size int64
}

// New returns a block spanning [addr, addr+size) of dev.
func New(dev Dev, addr, size int64) (*Block, error) {
	if addr < 0 || size <= 0 || addr+size > dev.Size() {
		return nil, errors.Wrapf(ErrOutOfRange, "block [%d, %d) does not fit device of size %d",
			addr, addr+size, dev.Size())
	}
	return &Block{
		dev:  dev,
		addr: addr,
		size: size,
	}, nil
}

// Size returns the byte size of the block.
func (b *Block) Size() int64 {
	return b.size
}

// Write writes p at the given offset within the block.
func (b *Block) Write(off int64, p []byte) error {
	if err := b.check(off, int64(len(p))); err != nil {
		return err
	}
	return b.dev.WriteAt(b.addr+off, p)
}

// Map returns a read-only view of length bytes at the given offset within
// the block. Contents are not validated.
func (b *Block) Map(off, length int64) ([]byte, error) {
	if err := b.check(off, length); err != nil {
		return nil, err
	}
	return b.dev.Map(b.addr+off, length)
}

// Erase resets the whole block to the erased state. Any table or mapped view
// over the block is invalid afterwards.
func (b *Block) Erase() error {
	return b.dev.Erase(b.addr, b.size)
}

func (b *Block) check(off, length int64) error {
	if off < 0 || length < 0 || off+length > b.size {
		return errors.Wrapf(ErrOutOfRange, "[%d, %d) exceeds block size %d", off, off+length, b.size)
	}
	return nil
}
