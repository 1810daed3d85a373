package partition

import (
	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/tinyfirm/nvmstore/flash"
)

// Handle is a non-owning reference to a single partition. It is cheap to
// recreate from a label lookup and owns nothing.
type Handle struct {
	block *flash.Block
	desc  *Descriptor
}

// Label returns the partition label.
func (h Handle) Label() string {
	return labelString(h.desc.Label)
}

// Size returns the partition size in bytes.
func (h Handle) Size() int64 {
	return int64(h.desc.Size)
}

// Write writes p at the given offset within the partition.
func (h Handle) Write(off int64, p []byte) error {
	if off < 0 || off+int64(len(p)) > int64(h.desc.Size) {
		return errors.Wrapf(flash.ErrOutOfRange, "write [%d, %d) exceeds partition %q of size %d",
			off, off+int64(len(p)), labelString(h.desc.Label), h.desc.Size)
	}
	return h.block.Write(int64(h.desc.Offset)+off, p)
}

// Map returns a read-only view of the whole partition. Contents are not
// validated; validity is the caller's responsibility.
func (h Handle) Map() ([]byte, error) {
	return h.block.Map(int64(h.desc.Offset), int64(h.desc.Size))
}

// Find scans the descriptor array for an exact label match. Not-found is not
// an error; it is the expected signal to create the partition.
func (s *Store) Find(label string) (Handle, bool) {
	target, err := labelBytes(label)
	if err != nil {
		return Handle{}, false
	}
	for i := 0; i < int(s.header().NPartitions); i++ {
		desc := s.descriptorAt(i)
		if desc.Label == target {
			return Handle{block: s.block, desc: desc}, true
		}
	}
	return Handle{}, false
}

// Create appends a partition of the given size and persists the updated
// table. A label collision is rejected rather than aliased.
func (s *Store) Create(label string, size uint32) (Handle, error) {
	target, err := labelBytes(label)
	if err != nil {
		return Handle{}, err
	}
	if _, exists := s.Find(label); exists {
		return Handle{}, errors.Wrapf(ErrLabelExists, "%q", label)
	}
	if int(s.header().NPartitions) >= s.capacity() {
		return Handle{}, errors.Wrapf(ErrTableFull, "capacity: %d", s.capacity())
	}

	offset := s.nextFreeOffset()
	if offset+int64(size) > s.block.Size() {
		return Handle{}, errors.Wrapf(ErrNoSpace, "%q needs %d bytes, %d free",
			label, size, s.block.Size()-offset)
	}

	i := int(s.header().NPartitions)
	off := headerLength + int64(i)*descriptorLength
	desc := photon.NewFromBytes[Descriptor](s.table[off:]).V
	desc.Offset = uint32(offset)
	desc.Size = size
	desc.Label = target
	s.header().NPartitions++

	if err := s.block.Write(0, s.table); err != nil {
		return Handle{}, err
	}

	return Handle{block: s.block, desc: desc}, nil
}

// Info describes one partition for diagnostics.
type Info struct {
	Label  string
	Offset uint32
	Size   uint32
}

// Partitions enumerates all partitions in creation order. Read-only.
func (s *Store) Partitions() []Info {
	n := int(s.header().NPartitions)
	infos := make([]Info, 0, n)
	for i := 0; i < n; i++ {
		desc := s.descriptorAt(i)
		infos = append(infos, Info{
			Label:  labelString(desc.Label),
			Offset: desc.Offset,
			Size:   desc.Size,
		})
	}
	return infos
}

// Free returns the number of unallocated bytes left in the block.
func (s *Store) Free() int64 {
	return s.block.Size() - s.nextFreeOffset()
}
