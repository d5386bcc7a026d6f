// Package frameslot implements a bounded, single-slot hand-off between any
// number of ingest connections and the single rasterizer worker.
//
// Semantics: newest-wins. An Offer into a full slot discards the payload
// currently held; Take always returns the most recently Offered payload and
// never the same payload twice. Backpressure is by dropping, never by
// blocking the offering side.
package frameslot

import "sync"

// Slot is a single-element rendezvous with drop-oldest semantics. The zero
// value is not usable; construct one with New.
type Slot struct {
	mu      sync.Mutex
	payload []byte
	has     bool
	closed  bool
	wake    chan struct{}
}

// New returns an empty, open Slot.
func New() *Slot {
	return &Slot{wake: make(chan struct{}, 1)}
}

// Offer replaces any currently-held payload and never blocks. The replaced
// payload, if any, is discarded. After Close, Offer is a no-op.
func (s *Slot) Offer(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.payload = payload
	s.has = true
	s.notify()
}

// Take blocks until a payload is available, then removes and returns it. If
// multiple Offers happened since the last Take, only the most recent
// payload is returned. Take returns ok=false once the slot has been closed
// and no payload remains.
func (s *Slot) Take() (payload []byte, ok bool) {
	for {
		s.mu.Lock()
		if s.has {
			payload, s.payload = s.payload, nil
			s.has = false
			s.mu.Unlock()
			return payload, true
		}
		if s.closed {
			// Pass the wake-up on so any other waiting Take also sees the close.
			s.notify()
			s.mu.Unlock()
			return nil, false
		}
		s.mu.Unlock()
		<-s.wake
	}
}

// Close wakes any waiting Take with a distinguished closed result and makes
// all subsequent Offers no-ops. Close is idempotent.
func (s *Slot) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.notify()
	s.mu.Unlock()
}

// notify wakes at most one blocked Take. Called with s.mu held.
func (s *Slot) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
