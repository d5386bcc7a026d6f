// Package rasterizer implements the single dedicated worker that turns
// frame payloads pulled from a frameslot.Slot into idle-page writes and
// page flips on the shared voxel frame.
package rasterizer

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/frameslot"
	"github.com/LuPow132/Volumetric-Interactive-Display-2025/grid"
)

// ErrPayloadMalformed reports a payload whose length is not a multiple of
// 4 bytes. Scope: one frame — it is discarded and the rasterizer keeps
// running.
var ErrPayloadMalformed = errors.New("rasterizer: payload length not a multiple of 4")

// Target is the subset of sharedframe.SharedFrame the rasterizer needs.
// Accepting an interface here, rather than a concrete *sharedframe.SharedFrame,
// keeps this package testable without a real shared-memory mapping.
type Target interface {
	CurrentPage() int
	ClearPage(p int)
	ScatterWrite(p int, xs, ys, zs []int, cs []byte)
	Flip(p int)
}

// DefaultStatusInterval is how many processed frames elapse between
// periodic status log lines.
const DefaultStatusInterval = 100

// Rasterizer is the single long-lived worker that converts frame payloads
// into shared-frame writes and page flips.
type Rasterizer struct {
	Slot           *frameslot.Slot
	Frame          Target
	Log            *logrus.Logger
	StatusInterval int

	framesProcessed uint64
	pointsWritten   uint64
	pointsDropped   uint64
}

// New returns a Rasterizer ready to Run.
func New(slot *frameslot.Slot, frame Target, log *logrus.Logger) *Rasterizer {
	return &Rasterizer{
		Slot:           slot,
		Frame:          frame,
		Log:            log,
		StatusInterval: DefaultStatusInterval,
	}
}

// Run pulls payloads from the slot and rasterizes them until Take reports the
// slot closed, then returns. A payload still held in the slot when it is
// closed is rasterized before that; nothing else is drained. Run is
// meant to be the body of a single dedicated goroutine; it never
// terminates on data errors, only on slot closure.
func (r *Rasterizer) Run() {
	for {
		payload, ok := r.Slot.Take()
		if !ok {
			r.Log.Info("rasterizer stopping: slot closed")
			return
		}
		r.processFrame(payload)
	}
}

// processFrame rasterizes one decoded payload: it clears the idle page,
// scatter-writes every in-bounds point, and flips. A malformed payload
// aborts only this frame; the page is never flipped for a frame that
// wasn't fully rasterized.
func (r *Rasterizer) processFrame(payload []byte) {
	if len(payload)%4 != 0 {
		r.Log.WithError(ErrPayloadMalformed).Warn("discarding malformed frame")
		return
	}

	numPoints := len(payload) / 4
	xs := make([]int, 0, numPoints)
	ys := make([]int, 0, numPoints)
	zs := make([]int, 0, numPoints)
	cs := make([]byte, 0, numPoints)
	rejected := 0

	for i := 0; i < numPoints; i++ {
		off := i * 4
		x, y, z, c := int(payload[off]), int(payload[off+1]), int(payload[off+2]), payload[off+3]
		if !grid.InBounds(x, y, z) {
			rejected++
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
		zs = append(zs, z)
		cs = append(cs, c)
	}

	writePage := 1 - r.Frame.CurrentPage()
	r.Frame.ClearPage(writePage)
	r.Frame.ScatterWrite(writePage, xs, ys, zs, cs)
	r.Frame.Flip(writePage)

	r.framesProcessed++
	r.pointsWritten += uint64(len(xs))
	r.pointsDropped += uint64(rejected)

	if rejected > bogusPointWarnThreshold {
		r.Log.WithField("rejected", rejected).Warn("frame had many out-of-bounds points")
	}

	if r.StatusInterval > 0 && r.framesProcessed%uint64(r.StatusInterval) == 0 {
		r.Log.WithFields(logrus.Fields{
			"frames_processed": r.framesProcessed,
			"points_written":   r.pointsWritten,
			"points_dropped":   r.pointsDropped,
		}).Info("rasterizer status")
	}
}

// bogusPointWarnThreshold matches the original producer's "only warn if
// significant" cutoff: a handful of stray out-of-bounds points in an
// otherwise-good frame isn't worth a log line, but a frame that's mostly
// garbage is.
const bogusPointWarnThreshold = 10
