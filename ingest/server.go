// Package ingest accepts concurrent inbound stream connections, reads
// framed point-cloud messages, decompresses them, and offers the decoded
// payload to a frameslot.Slot shared with the rasterizer.
package ingest

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/frameslot"
)

// DefaultBacklog is the small, bounded listen backlog for the ingest
// endpoint.
const DefaultBacklog = 5

// DefaultAddr is the well-known listening endpoint: 0.0.0.0:22104 (0x5658).
const DefaultAddr = "0.0.0.0:22104"

// Server accepts TCP connections and feeds decoded frames into a shared
// FrameSlot. Each connection runs on its own goroutine; connections share
// nothing but the Slot.
type Server struct {
	Addr     string
	Backlog  int
	MaxFrame int
	Slot     *frameslot.Slot
	Log      *logrus.Logger

	mu    sync.Mutex
	ln    net.Listener
	ready chan struct{}
	conns map[net.Conn]struct{}
}

// NewServer returns a Server ready to Serve, with Addr, Backlog and MaxFrame
// set to DefaultAddr, DefaultBacklog and MaxFrame. Serve uses these fields as
// they are when it is called; a field set to its zero value is not replaced
// by its default.
func NewServer(slot *frameslot.Slot, log *logrus.Logger) *Server {
	return &Server{
		Addr:     DefaultAddr,
		Backlog:  DefaultBacklog,
		MaxFrame: MaxFrame,
		Slot:     slot,
		Log:      log,
		ready:    make(chan struct{}),
		conns:    make(map[net.Conn]struct{}),
	}
}

// trackConn registers conn so closeAllConns can reach it on shutdown.
func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

// untrackConn removes conn once its handler has returned.
func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// closeAllConns closes every currently tracked connection, unblocking any
// handler goroutine parked in a read with no peer activity and no deadline.
func (s *Server) closeAllConns() {
	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// Addr4 blocks until the listener is bound and returns its local address.
// Intended for tests that bind to an ephemeral port ("127.0.0.1:0").
func (s *Server) Addr4() string {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln.Addr().String()
}

// Serve binds the listening socket and runs the accept loop until ctx is
// canceled or a fatal accept error occurs. On cancellation it closes the
// listener and every currently tracked connection — including ones
// blocked reading from a silent peer — then waits for every in-flight
// connection handler to return before returning itself.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := listenTCP4(s.Addr, s.Backlog)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	close(s.ready)
	s.Log.WithField("addr", ln.Addr().String()).Info("ingest listening")

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	eg, egCtx := errgroup.WithContext(runCtx)

	eg.Go(func() error {
		<-egCtx.Done()
		s.closeAllConns()
		return ln.Close()
	})

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				// Expected: our own close(ln) above caused this Accept error.
				return eg.Wait()
			default:
				s.Log.WithError(err).Error("accept failed")
				cancelRun()
				eg.Wait()
				return err
			}
		}

		connID := uuid.NewString()
		entry := s.Log.WithFields(logrus.Fields{
			"component":   "ingest",
			"conn_id":     connID,
			"remote_addr": conn.RemoteAddr().String(),
		})
		s.trackConn(conn)
		eg.Go(func() error {
			defer s.untrackConn(conn)
			handleConnection(egCtx, conn, s.Slot, s.MaxFrame, entry)
			return nil
		})
	}
}
