package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyfirm/nvmstore/flash"
	"github.com/tinyfirm/nvmstore/pkg/memdev"
)

const blockSize = 4096

func newBlock(t *testing.T) *flash.Block {
	t.Helper()
	block, err := flash.New(memdev.New(blockSize), 0, blockSize)
	require.NoError(t, err)
	return block
}

func TestFormatOpenRoundTrip(t *testing.T) {
	requireT := require.New(t)

	block := newBlock(t)
	for _, maxPartitions := range []int{0, 1, 8, 32} {
		_, err := Format(block, maxPartitions)
		requireT.NoError(err)

		s, err := Open(block)
		requireT.NoError(err)
		requireT.Empty(s.Partitions())
		requireT.Equal(maxPartitions, s.capacity())
	}
}

func TestFormatTooSmall(t *testing.T) {
	requireT := require.New(t)

	block, err := flash.New(memdev.New(64), 0, 64)
	requireT.NoError(err)

	_, err = Format(block, 100)
	requireT.ErrorIs(err, ErrNoSpace)

	// The failed format must not have produced an openable table.
	_, err = Open(block)
	requireT.ErrorIs(err, ErrNoTable)
}

func TestOpenUnformatted(t *testing.T) {
	requireT := require.New(t)

	block := newBlock(t)
	_, err := Open(block)
	requireT.ErrorIs(err, ErrNoTable)
}

func TestOpenAfterErase(t *testing.T) {
	requireT := require.New(t)

	block := newBlock(t)
	_, err := Format(block, 4)
	requireT.NoError(err)

	requireT.NoError(Erase(block))

	_, err = Open(block)
	requireT.ErrorIs(err, ErrNoTable)

	_, err = Format(block, 4)
	requireT.NoError(err)
	_, err = Open(block)
	requireT.NoError(err)
}

func TestOpenInconsistentSize(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(blockSize)
	block, err := flash.New(dev, 0, blockSize)
	requireT.NoError(err)

	_, err = Format(block, 4)
	requireT.NoError(err)

	// Corrupt the recorded table size so it no longer matches a whole
	// number of descriptors.
	requireT.NoError(dev.WriteAt(4, []byte{0x01, 0x00, 0x00, 0x00}))

	_, err = Open(block)
	requireT.ErrorIs(err, ErrNoTable)
}

func TestOpenCountBeyondCapacity(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(blockSize)
	block, err := flash.New(dev, 0, blockSize)
	requireT.NoError(err)

	_, err = Format(block, 2)
	requireT.NoError(err)

	// Record more partitions than the reserved capacity.
	requireT.NoError(dev.WriteAt(8, []byte{0x03, 0x00, 0x00, 0x00}))

	_, err = Open(block)
	requireT.ErrorIs(err, ErrNoTable)
}

func TestLabelPadding(t *testing.T) {
	requireT := require.New(t)

	full, err := labelBytes("0123456789abcdef")
	requireT.NoError(err)
	requireT.Equal("0123456789abcdef", labelString(full))

	short, err := labelBytes("mac2")
	requireT.NoError(err)
	requireT.Equal("mac2", labelString(short))

	_, err = labelBytes("")
	requireT.ErrorIs(err, ErrInvalidLabel)
	_, err = labelBytes("0123456789abcdefg")
	requireT.ErrorIs(err, ErrInvalidLabel)
}
