package ingest

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/frameslot"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// net.Pipe gives a deterministic in-memory stream connection that, like
// TCP, does not preserve message boundaries on its own.
func TestHandleConnectionOffersEachFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	slot := frameslot.New()
	done := make(chan struct{})
	go func() {
		handleConnection(context.Background(), server, slot, MaxFrame, discardLogger())
		close(done)
	}()

	raw := []byte{1, 2, 3, 4}
	go func() {
		client.Write(buildFrame(t, raw))
		client.Close()
	}()

	payload, ok := slot.Take()
	if !ok {
		t.Fatal("expected a payload")
	}
	if string(payload) != string(raw) {
		t.Fatalf("payload = %v, want %v", payload, raw)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConnection did not exit after client close")
	}
}

func TestHandleConnectionBadHeaderCloses(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	slot := frameslot.New()
	done := make(chan struct{})
	go func() {
		handleConnection(context.Background(), server, slot, MaxFrame, discardLogger())
		close(done)
	}()

	go client.Write([]byte{0xFF, 0xFF, 0xFF, 0xFE, 0, 0, 0, 0})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConnection did not close on bad header")
	}
}

func TestHandleConnectionMalformedGzipKeepsConnectionOpen(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	slot := frameslot.New()
	done := make(chan struct{})
	go func() {
		handleConnection(context.Background(), server, slot, MaxFrame, discardLogger())
		close(done)
	}()

	garbageFrame := append(append([]byte{}, signature[:]...), 0, 0, 0, 4, 1, 2, 3, 4)
	goodFrame := buildFrame(t, []byte{9, 9, 9, 9})

	go func() {
		client.Write(garbageFrame)
		client.Write(goodFrame)
	}()

	payload, ok := slot.Take()
	if !ok || string(payload) != string([]byte{9, 9, 9, 9}) {
		t.Fatalf("payload = %v ok=%v, want the frame after the malformed one", payload, ok)
	}

	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConnection did not exit after client close")
	}
}

// TestHandleConnectionExitsWhenConnClosedByCaller models the shutdown path:
// the caller (Server) closes conn out from under a blocked read, the way it
// does for every tracked connection once its context is cancelled. An idle
// peer that never sends another byte must not keep the handler parked in
// readFrame forever.
func TestHandleConnectionExitsWhenConnClosedByCaller(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())

	slot := frameslot.New()
	done := make(chan struct{})
	go func() {
		handleConnection(ctx, server, slot, MaxFrame, discardLogger())
		close(done)
	}()

	// No write ever arrives; handleConnection is parked in readFrame.
	cancel()
	server.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handleConnection did not exit after its connection was closed")
	}
}
