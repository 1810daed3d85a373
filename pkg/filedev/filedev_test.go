package filedev

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newDev(t *testing.T, size int64) *FileDev {
	t.Helper()
	requireT := require.New(t)

	path := filepath.Join(t.TempDir(), "nvm.img")
	file, err := os.Create(path)
	requireT.NoError(err)
	t.Cleanup(func() {
		requireT.NoError(file.Close())
	})
	requireT.NoError(file.Truncate(size))

	dev, err := New(file)
	requireT.NoError(err)
	return dev
}

func TestWriteMapRoundTrip(t *testing.T) {
	requireT := require.New(t)

	dev := newDev(t, 64)
	requireT.EqualValues(64, dev.Size())

	requireT.NoError(dev.WriteAt(10, []byte{0x01, 0x02, 0x03}))

	m, err := dev.Map(10, 3)
	requireT.NoError(err)
	requireT.EqualValues([]byte{0x01, 0x02, 0x03}, m)
}

func TestMapIsCopy(t *testing.T) {
	requireT := require.New(t)

	dev := newDev(t, 16)
	requireT.NoError(dev.WriteAt(0, []byte{0xaa, 0xbb}))

	m, err := dev.Map(0, 2)
	requireT.NoError(err)

	requireT.NoError(dev.WriteAt(0, []byte{0x11, 0x22}))
	requireT.EqualValues([]byte{0xaa, 0xbb}, m)
}

func TestErase(t *testing.T) {
	requireT := require.New(t)

	dev := newDev(t, 8)
	requireT.NoError(dev.WriteAt(0, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	requireT.NoError(dev.Erase(0, 8))

	m, err := dev.Map(0, 8)
	requireT.NoError(err)
	for _, b := range m {
		requireT.EqualValues(0xff, b)
	}
}

func TestOutOfRange(t *testing.T) {
	requireT := require.New(t)

	dev := newDev(t, 8)
	requireT.Error(dev.WriteAt(7, []byte{1, 2}))
	_, err := dev.Map(0, 9)
	requireT.Error(err)
}
