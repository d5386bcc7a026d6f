package ingest

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrame is the largest permitted declared payload length, in bytes, of a
// gzip-compressed frame body.
const MaxFrame = 10_000_000

// headerLen is the size, in bytes, of the frame header: a 4-byte signature
// followed by a big-endian uint32 length.
const headerLen = 8

var signature = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}

// frameOutcome classifies how readFrame's error, if any, should be handled
// by the connection loop.
type frameOutcome int

const (
	// outcomeOK means payload holds a fully decompressed frame body.
	outcomeOK frameOutcome = iota
	// outcomeClosed means the peer closed the connection cleanly at a
	// message boundary; the loop exits without logging a protocol error.
	outcomeClosed
	// outcomeProtocolError means the stream is corrupt or violates a
	// hard limit; the connection must be closed.
	outcomeProtocolError
	// outcomePayloadError means this one frame is malformed (bad gzip,
	// non-multiple-of-4 length); the frame is discarded and the
	// connection stays open.
	outcomePayloadError
)

// readFrame reads exactly one wire frame from r:
//
//	header   4-byte signature 0xFF 0xFF 0xFF 0xFF, then uint32 BE length L
//	payload  L bytes of gzip-compressed point records
//
// and returns the decompressed payload. The returned frameOutcome tells the
// caller how to react; err is always non-nil when outcome is not outcomeOK.
func readFrame(r io.Reader, maxFrame int) ([]byte, frameOutcome, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			// Clean close at a message boundary: not a protocol violation.
			return nil, outcomeClosed, io.EOF
		}
		// A short read after partial header bytes (io.ErrUnexpectedEOF) or
		// any other I/O failure mid-header is a protocol error.
		return nil, outcomeProtocolError, fmt.Errorf("ingest: reading header: %w", err)
	}

	if !bytes.Equal(header[:4], signature[:]) {
		return nil, outcomeProtocolError, ErrBadHeader
	}

	length := binary.BigEndian.Uint32(header[4:8])
	if int64(length) > int64(maxFrame) {
		return nil, outcomeProtocolError, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, maxFrame)
	}

	compressed := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, outcomeProtocolError, fmt.Errorf("ingest: reading payload: %w", err)
		}
	}

	payload, err := gunzip(compressed)
	if err != nil {
		return nil, outcomePayloadError, fmt.Errorf("ingest: gzip: %w", err)
	}
	if len(payload)%4 != 0 {
		return nil, outcomePayloadError, ErrPayloadMalformed
	}

	return payload, outcomeOK, nil
}

// gunzip decompresses a whole gzip stream into a freshly allocated buffer.
// An empty input decompresses to an empty payload: the all-off frame,
// encoded as a zero-length body.
func gunzip(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return nil, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
