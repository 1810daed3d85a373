package partition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyfirm/nvmstore/crc"
	"github.com/tinyfirm/nvmstore/flash"
	"github.com/tinyfirm/nvmstore/pkg/memdev"
)

func newStore(t *testing.T, maxPartitions int) *Store {
	t.Helper()
	s, err := Format(newBlock(t), maxPartitions)
	require.NoError(t, err)
	return s
}

func TestCreateFind(t *testing.T) {
	requireT := require.New(t)

	s := newStore(t, 4)

	_, found := s.Find("crypto")
	requireT.False(found)

	created, err := s.Create("crypto", 40)
	requireT.NoError(err)
	requireT.Equal("crypto", created.Label())
	requireT.EqualValues(40, created.Size())

	found2, ok := s.Find("crypto")
	requireT.True(ok)
	requireT.Equal(created.desc.Offset, found2.desc.Offset)
	requireT.Equal(created.desc.Size, found2.desc.Size)
}

func TestCreateDuplicateRejected(t *testing.T) {
	requireT := require.New(t)

	s := newStore(t, 4)

	_, err := s.Create("x", 10)
	requireT.NoError(err)

	_, err = s.Create("x", 10)
	requireT.ErrorIs(err, ErrLabelExists)
	requireT.Len(s.Partitions(), 1)
}

func TestExhaustion(t *testing.T) {
	requireT := require.New(t)

	const maxPartitions = 3
	s := newStore(t, maxPartitions)

	for _, label := range []string{"a", "b", "c"} {
		_, err := s.Create(label, 16)
		requireT.NoError(err)
	}

	_, err := s.Create("d", 16)
	requireT.ErrorIs(err, ErrTableFull)
	requireT.Len(s.Partitions(), maxPartitions)
}

func TestCreateNoSpace(t *testing.T) {
	requireT := require.New(t)

	s := newStore(t, 4)

	_, err := s.Create("big", blockSize)
	requireT.ErrorIs(err, ErrNoSpace)
	requireT.Empty(s.Partitions())

	// Free space shrinks as partitions are created.
	free := s.Free()
	_, err = s.Create("a", 100)
	requireT.NoError(err)
	requireT.Equal(free-100, s.Free())

	_, err = s.Create("b", uint32(s.Free())+1)
	requireT.ErrorIs(err, ErrNoSpace)
}

func TestRegionsDoNotOverlap(t *testing.T) {
	requireT := require.New(t)

	s := newStore(t, 8)

	labels := []string{"crypto", "mac1", "mac2", "se"}
	for _, label := range labels {
		_, err := s.Create(label, 52)
		requireT.NoError(err)
	}

	infos := s.Partitions()
	requireT.Len(infos, len(labels))
	tableEnd := uint32(headerLength + 8*descriptorLength)
	prevEnd := tableEnd
	for _, info := range infos {
		requireT.GreaterOrEqual(info.Offset, prevEnd)
		prevEnd = info.Offset + info.Size
	}
}

func TestSurvivesReopen(t *testing.T) {
	requireT := require.New(t)

	dev := memdev.New(blockSize)
	block, err := flash.New(dev, 0, blockSize)
	requireT.NoError(err)

	s, err := Format(block, 4)
	requireT.NoError(err)
	h, err := s.Create("mac2", 44)
	requireT.NoError(err)
	requireT.NoError(h.Write(0, []byte{0xaa, 0xbb}))

	s2, err := Open(block)
	requireT.NoError(err)
	h2, ok := s2.Find("mac2")
	requireT.True(ok)
	requireT.EqualValues(44, h2.Size())

	m, err := h2.Map()
	requireT.NoError(err)
	requireT.EqualValues([]byte{0xaa, 0xbb}, m[:2])
}

func TestWriteBounds(t *testing.T) {
	requireT := require.New(t)

	s := newStore(t, 2)
	h, err := s.Create("p", 10)
	requireT.NoError(err)

	requireT.NoError(h.Write(0, make([]byte, 10)))
	requireT.NoError(h.Write(8, []byte{1, 2}))
	requireT.ErrorIs(h.Write(8, []byte{1, 2, 3}), flash.ErrOutOfRange)
	requireT.ErrorIs(h.Write(-1, []byte{1}), flash.ErrOutOfRange)
}

func TestMapDoesNotValidate(t *testing.T) {
	requireT := require.New(t)

	s := newStore(t, 2)
	h, err := s.Create("p", 12)
	requireT.NoError(err)

	// Garbage content with no valid trailer still maps fine; validation is
	// explicit and optional.
	requireT.NoError(h.Write(0, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}))
	m, err := h.Map()
	requireT.NoError(err)
	requireT.Len(m, 12)
	requireT.False(crc.Matches(m))

	payload := make([]byte, 12)
	copy(payload, m)
	crc.Update(payload)
	requireT.NoError(h.Write(0, payload))

	m, err = h.Map()
	requireT.NoError(err)
	requireT.True(crc.Matches(m))
}
