// Package partition implements a label-addressed partition table stored at
// the front of a raw memory block.
//
// Persisted layout, from block offset 0: a fixed header (signature, table
// size, partition count), a descriptor array sized at format time, then
// partition regions in creation order. The table is append-only: partitions
// are never resized or deleted, so allocation is a bump pointer over the
// remaining free space.
package partition

import (
	"unsafe"

	"github.com/outofforest/photon"
	"github.com/pkg/errors"

	"github.com/tinyfirm/nvmstore/flash"
)

// Signature identifies a block holding a valid partition table.
const Signature uint32 = 0x4e564d50

// LabelLength is the fixed width of partition labels. Shorter labels are
// zero-padded; a label filling the field is not null-terminated.
const LabelLength = 16

// Errors returned by the table manager.
var (
	// ErrNoTable means the block does not hold a valid partition table.
	ErrNoTable = errors.New("no valid partition table")

	// ErrTableFull means the descriptor array has no room left.
	ErrTableFull = errors.New("partition table is full")

	// ErrNoSpace means the block has not enough free space left.
	ErrNoSpace = errors.New("not enough free space in block")

	// ErrLabelExists means a partition with the same label already exists.
	ErrLabelExists = errors.New("partition label already exists")

	// ErrInvalidLabel means the label is empty or exceeds LabelLength.
	ErrInvalidLabel = errors.New("invalid partition label")
)

// Header describes the partition table stored at the start of the block.
type Header struct {
	Signature   uint32
	TableSize   uint32
	NPartitions uint32
}

// Descriptor describes a single partition within the block.
type Descriptor struct {
	Offset uint32
	Size   uint32
	Label  [LabelLength]byte
}

var (
	headerLength     = int64(unsafe.Sizeof(Header{}))
	descriptorLength = int64(unsafe.Sizeof(Descriptor{}))
)

// Store gives access to the partitions of a formatted block.
type Store struct {
	block *flash.Block
	table []byte
}

// Format writes a fresh table with zero partitions, reserving descriptor
// room for maxPartitions future partitions.
func Format(block *flash.Block, maxPartitions int) (*Store, error) {
	if maxPartitions < 0 {
		return nil, errors.Errorf("invalid partition capacity: %d", maxPartitions)
	}

	tableSize := headerLength + int64(maxPartitions)*descriptorLength
	if tableSize > block.Size() {
		return nil, errors.Wrapf(ErrNoSpace, "table of %d bytes does not fit block of %d bytes",
			tableSize, block.Size())
	}

	table := make([]byte, tableSize)
	header := photon.NewFromBytes[Header](table)
	header.V.Signature = Signature
	header.V.TableSize = uint32(tableSize)
	header.V.NPartitions = 0

	if err := block.Write(0, table); err != nil {
		return nil, err
	}

	return open(block)
}

// Open maps and validates an existing table. ErrNoTable is returned when the
// block holds no valid table; mapping failures are reported as-is.
func Open(block *flash.Block) (*Store, error) {
	return open(block)
}

// Erase clears the block. The block holds no valid table afterwards until
// Format is called again.
func Erase(block *flash.Block) error {
	return block.Erase()
}

func open(block *flash.Block) (*Store, error) {
	head, err := block.Map(0, headerLength)
	if err != nil {
		return nil, err
	}

	header := photon.NewFromBytes[Header](head)
	if header.V.Signature != Signature {
		return nil, errors.WithStack(ErrNoTable)
	}

	tableSize := int64(header.V.TableSize)
	if tableSize < headerLength || (tableSize-headerLength)%descriptorLength != 0 {
		return nil, errors.Wrapf(ErrNoTable, "inconsistent table size: %d", tableSize)
	}
	if tableSize > block.Size() {
		return nil, errors.Wrapf(ErrNoTable, "table size %d exceeds block size %d", tableSize, block.Size())
	}

	capacity := (tableSize - headerLength) / descriptorLength
	if int64(header.V.NPartitions) > capacity {
		return nil, errors.Wrapf(ErrNoTable, "%d partitions recorded, capacity is %d",
			header.V.NPartitions, capacity)
	}

	table, err := block.Map(0, tableSize)
	if err != nil {
		return nil, err
	}

	s := &Store{
		block: block,
		table: table,
	}
	if err := s.validateDescriptors(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) validateDescriptors() error {
	tableSize := int64(s.header().TableSize)
	for i := 0; i < int(s.header().NPartitions); i++ {
		desc := s.descriptorAt(i)
		start := int64(desc.Offset)
		end := start + int64(desc.Size)
		if start < tableSize || end > s.block.Size() {
			return errors.Wrapf(ErrNoTable, "partition %q [%d, %d) lies outside the usable block range",
				labelString(desc.Label), start, end)
		}
	}
	return nil
}

func (s *Store) header() *Header {
	return photon.NewFromBytes[Header](s.table).V
}

func (s *Store) descriptorAt(i int) *Descriptor {
	off := headerLength + int64(i)*descriptorLength
	return photon.NewFromBytes[Descriptor](s.table[off:]).V
}

func (s *Store) capacity() int {
	return int((int64(s.header().TableSize) - headerLength) / descriptorLength)
}

// nextFreeOffset returns the lowest block offset not covered by the table or
// an existing partition.
func (s *Store) nextFreeOffset() int64 {
	next := int64(s.header().TableSize)
	for i := 0; i < int(s.header().NPartitions); i++ {
		desc := s.descriptorAt(i)
		if end := int64(desc.Offset) + int64(desc.Size); end > next {
			next = end
		}
	}
	return next
}

func labelBytes(label string) ([LabelLength]byte, error) {
	var b [LabelLength]byte
	if label == "" || len(label) > LabelLength {
		return b, errors.Wrapf(ErrInvalidLabel, "%q", label)
	}
	copy(b[:], label)
	return b, nil
}

func labelString(b [LabelLength]byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
