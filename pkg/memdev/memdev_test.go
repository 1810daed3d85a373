package memdev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsErased(t *testing.T) {
	assertT := assert.New(t)

	dev := New(16)
	m, err := dev.Map(0, 16)
	assertT.NoError(err)
	for _, b := range m {
		assertT.EqualValues(0xff, b)
	}
}

func TestWriteAndMap(t *testing.T) {
	requireT := require.New(t)

	dev := New(10)
	requireT.NoError(dev.WriteAt(2, []byte{0x01, 0x02, 0x03}))

	m, err := dev.Map(2, 3)
	requireT.NoError(err)
	requireT.EqualValues([]byte{0x01, 0x02, 0x03}, m)

	m, err = dev.Map(0, 10)
	requireT.NoError(err)
	requireT.EqualValues([]byte{0xff, 0xff, 0x01, 0x02, 0x03, 0xff, 0xff, 0xff, 0xff, 0xff}, m)
}

func TestMapAliasesStorage(t *testing.T) {
	requireT := require.New(t)

	dev := New(4)
	m, err := dev.Map(0, 4)
	requireT.NoError(err)

	requireT.NoError(dev.WriteAt(0, []byte{0xaa, 0xbb, 0xcc, 0xdd}))
	requireT.EqualValues([]byte{0xaa, 0xbb, 0xcc, 0xdd}, m)
}

func TestErase(t *testing.T) {
	requireT := require.New(t)

	dev := New(8)
	requireT.NoError(dev.WriteAt(0, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	requireT.NoError(dev.Erase(2, 4))

	m, err := dev.Map(0, 8)
	requireT.NoError(err)
	requireT.EqualValues([]byte{1, 2, 0xff, 0xff, 0xff, 0xff, 7, 8}, m)
}

func TestOutOfRange(t *testing.T) {
	assertT := assert.New(t)

	dev := New(8)
	assertT.Error(dev.WriteAt(6, []byte{1, 2, 3}))
	assertT.Error(dev.WriteAt(-1, []byte{1}))
	assertT.Error(dev.Erase(0, 9))

	_, err := dev.Map(8, 1)
	assertT.Error(err)
	_, err = dev.Map(-1, 1)
	assertT.Error(err)
}
