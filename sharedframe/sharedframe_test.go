package sharedframe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/grid"
)

// newRegion creates a scratch file of the given size under a temp "shm"
// directory and points shmDir at it for the duration of the test.
func newRegion(t *testing.T, size int64) string {
	t.Helper()
	dir := t.TempDir()
	prev := shmDir
	shmDir = dir
	t.Cleanup(func() { shmDir = prev })

	name := "vortex_double_buffer"
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return name
}

func TestOpenMissingRegion(t *testing.T) {
	dir := t.TempDir()
	prev := shmDir
	shmDir = dir
	defer func() { shmDir = prev }()

	_, err := Open("does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenTooSmall(t *testing.T) {
	name := newRegion(t, Size-1)
	_, err := Open(name)
	require.ErrorIs(t, err, ErrSize)
}

func TestOpenExactSize(t *testing.T) {
	name := newRegion(t, Size)
	sf, err := Open(name)
	require.NoError(t, err)
	defer sf.Close()

	require.Equal(t, 0, sf.CurrentPage())
}

func TestClearWriteFlip(t *testing.T) {
	name := newRegion(t, Size)
	sf, err := Open(name)
	require.NoError(t, err)
	defer sf.Close()

	sf.ClearPage(1)
	sf.Write(1, 64, 64, 32, 0xFF)

	idx := grid.Index(64, 64, 32)
	require.Equal(t, byte(0xFF), sf.data[grid.N+idx])

	sf.Flip(1)
	require.Equal(t, 1, sf.CurrentPage())

	// Every other voxel of page 1 is untouched (zero).
	for i := 0; i < grid.N; i++ {
		if i == idx {
			continue
		}
		if sf.data[grid.N+i] != 0 {
			t.Fatalf("voxel %d not zero", i)
		}
	}
}

func TestScatterWriteLastWriterWins(t *testing.T) {
	name := newRegion(t, Size)
	sf, err := Open(name)
	require.NoError(t, err)
	defer sf.Close()

	xs := []int{10, 10}
	ys := []int{10, 10}
	zs := []int{10, 10}
	cs := []byte{0x01, 0x02}

	sf.ScatterWrite(0, xs, ys, zs, cs)

	idx := grid.Index(10, 10, 10)
	require.Equal(t, byte(0x02), sf.data[idx])
}

func TestControlFieldsDefaultZero(t *testing.T) {
	name := newRegion(t, Size)
	sf, err := Open(name)
	require.NoError(t, err)
	defer sf.Close()

	// Control fields default to zero until the driver writes them.
	require.Equal(t, uint8(0), sf.BPC())
	require.Equal(t, uint16(0), sf.Flags())
	require.Equal(t, uint16(0), sf.Rpm())
	require.Equal(t, uint16(0), sf.Uspf())
}
