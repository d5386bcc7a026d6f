// Package grid defines the fixed voxel-grid geometry shared by the shared
// frame buffer and the rasterizer. These constants must match the hardware
// driver bit-for-bit; they are not configurable at runtime.
package grid

const (
	// X, Y, Z are the voxel grid dimensions of one page.
	X = 128
	Y = 128
	Z = 64

	// N is the number of voxels (bytes) in one page.
	N = X * Y * Z
)

// Index returns the offset of voxel (x, y, z) within a single page.
// z is the fastest-varying axis, then x, then y:
//
//	i = (y*X + x)*Z + z
//
// Index does not bounds-check its arguments; callers validate coordinates
// against X, Y and Z before calling it.
func Index(x, y, z int) int {
	return (y*X+x)*Z + z
}

// InBounds reports whether (x, y, z) names an addressable voxel.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < X && y >= 0 && y < Y && z >= 0 && z < Z
}
