package ingest

import "errors"

var (
	// ErrBadHeader reports a frame whose first four bytes do not match the
	// 0xFF 0xFF 0xFF 0xFF signature. Scope: one connection — the stream is
	// considered corrupt and the connection is closed without resync.
	ErrBadHeader = errors.New("ingest: bad frame signature")

	// ErrFrameTooLarge reports a declared frame length over MaxFrame.
	// Scope: one connection.
	ErrFrameTooLarge = errors.New("ingest: frame exceeds max size")

	// ErrPayloadMalformed reports a gzip-decompressed payload whose length
	// is not a multiple of 4 bytes. Scope: one frame — the frame is
	// discarded and the connection stays open.
	ErrPayloadMalformed = errors.New("ingest: payload length not a multiple of 4")
)
