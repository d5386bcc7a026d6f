// Package sharedframe exposes a typed, zero-copy view over the shared-memory
// double voxel buffer that the hardware driver scans to the LED array.
//
// Layout (no padding, host's native byte order for the control fields):
//
//	offset      size   name      meaning
//	0           2*N    buffers   two voxel pages, page 0 then page 1
//	2*N         1      page      index (0 or 1) of the page owned by the driver
//	2*N+1       1      bpc       bits-per-color hint (read-only here)
//	2*N+2       2      flags     driver flag bits (read-only here)
//	2*N+4       2      rpm       rotation-rate hint (read-only here)
//	2*N+6       2      uspf      microseconds-per-frame hint (read-only here)
//
// This package does no I/O beyond the initial mapping: all operations are
// plain slice reads/writes over mapped memory.
package sharedframe

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/grid"
	"github.com/LuPow132/Volumetric-Interactive-Display-2025/internal/bo"
)

const (
	pageOff  = 2 * grid.N
	bpcOff   = pageOff + 1
	flagsOff = pageOff + 2
	rpmOff   = pageOff + 4
	uspfOff  = pageOff + 6

	// Size is the exact byte length of the shared region this package expects.
	Size = pageOff + 8
)

// SharedFrame is a typed view over the shared voxel double-buffer region.
// It is safe for concurrent ScatterWrite/Write calls against different
// pages, but the single-writer discipline on the idle page (only the
// rasterizer ever writes voxels) is enforced by the caller, not here —
// this type trusts its caller.
type SharedFrame struct {
	data []byte // mmap'd region, length == Size
	name string
}

// shmDir is the host's shared-memory namespace. On Linux this is the tmpfs
// mounted at /dev/shm, matching the hardware driver's convention. Tests
// override it to point at a scratch directory.
var shmDir = "/dev/shm"

// shmPath resolves name to its path in the host's shared-memory namespace.
func shmPath(name string) string {
	return shmDir + "/" + name
}

// Open maps the named shared-memory region read-write, shared with the
// driver that created it. It fails with ErrNotFound if the region does not
// exist, ErrPermission if it cannot be opened for read-write access, and
// ErrSize if the mapped region is smaller than Size.
func Open(name string) (*SharedFrame, error) {
	path := shmPath(name)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermission, path)
		}
		return nil, fmt.Errorf("sharedframe: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("sharedframe: stat %s: %w", path, err)
	}
	if info.Size() < Size {
		return nil, fmt.Errorf("%w: have %d want %d", ErrSize, info.Size(), Size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("sharedframe: mmap %s: %w", path, err)
	}

	return &SharedFrame{data: data, name: name}, nil
}

// Close unmaps the shared region. It does not remove the region itself;
// the hardware driver owns its lifetime.
func (sf *SharedFrame) Close() error {
	if sf.data == nil {
		return nil
	}
	err := unix.Munmap(sf.data)
	sf.data = nil
	return err
}

// CurrentPage returns the page index (0 or 1) this core last flipped to, or
// the driver's initial value if no flip has happened yet. It is a hint for
// choosing the write target, read with ordinary (not synchronized) memory
// semantics: the scanout reads page between frames, not mid-rasterization.
func (sf *SharedFrame) CurrentPage() int {
	return int(sf.data[pageOff])
}

// BPC, Flags, Rpm and Uspf read the driver-owned control fields. They are
// write-once-by-the-driver and read-only from this core's side.
func (sf *SharedFrame) BPC() uint8 { return sf.data[bpcOff] }

// Flags returns the driver flag bits in the host's native byte order.
func (sf *SharedFrame) Flags() uint16 {
	return bo.Native().Uint16(sf.data[flagsOff : flagsOff+2])
}

// Rpm returns the mechanical rotation-rate hint in the host's native byte order.
func (sf *SharedFrame) Rpm() uint16 {
	return bo.Native().Uint16(sf.data[rpmOff : rpmOff+2])
}

// Uspf returns the microseconds-per-frame hint in the host's native byte order.
func (sf *SharedFrame) Uspf() uint16 {
	return bo.Native().Uint16(sf.data[uspfOff : uspfOff+2])
}

// pageBase returns the byte offset of the first voxel of page p.
func pageBase(p int) int {
	return p * grid.N
}

// ClearPage zeros the N voxel bytes of page p.
func (sf *SharedFrame) ClearPage(p int) {
	base := pageBase(p)
	clear(sf.data[base : base+grid.N])
}

// Write sets the color byte at voxel (x, y, z) of page p. It does not
// bounds-check its arguments; the caller validates coordinates against the
// grid package's dimensions first.
func (sf *SharedFrame) Write(p, x, y, z int, c byte) {
	sf.data[pageBase(p)+grid.Index(x, y, z)] = c
}

// ScatterWrite applies xs[i], ys[i], zs[i], cs[i] as one Write each, for
// i in [0, len(xs)). The four slices must have equal length. Points are
// written in index order, so if two points collide, the last one in index
// order wins.
func (sf *SharedFrame) ScatterWrite(p int, xs, ys, zs []int, cs []byte) {
	base := pageBase(p)
	for i, x := range xs {
		sf.data[base+grid.Index(x, ys[i], zs[i])] = cs[i]
	}
}

// Flip writes p into the page control field as a single-byte store. This is
// the sole synchronization point with the hardware driver: it observes the
// new page on its next scan frame.
func (sf *SharedFrame) Flip(p int) {
	sf.data[pageOff] = byte(p)
}
