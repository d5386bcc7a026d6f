// Package bo provides native byte order selection.
//
// The shared voxel frame's control fields (bpc, flags, rpm, uspf) are
// written by the hardware driver in the host's native order, not network
// byte order, since they never cross the wire. Implementation is
// architecture-specific via build tags where commonly known, and falls back
// to a portable runtime detection elsewhere.
package bo
