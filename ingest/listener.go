package ingest

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listenTCP4 binds and listens on an IPv4 TCP address with an explicit,
// small backlog, rather than relying on net.Listen's OS-default backlog.
// It is built directly on golang.org/x/sys/unix socket calls and wrapped as
// a standard net.Listener via net.FileListener.
func listenTCP4(addr string, backlog int) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("ingest: resolve %s: %w", addr, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("ingest: socket: %w", err)
	}
	// Close fd on any early return; os.NewFile takes ownership on success.
	closeFD := true
	defer func() {
		if closeFD {
			unix.Close(fd)
		}
	}()

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("ingest: setsockopt SO_REUSEADDR: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: tcpAddr.Port}
	copy(sa.Addr[:], tcpAddr.IP.To4())

	if err := unix.Bind(fd, sa); err != nil {
		return nil, fmt.Errorf("ingest: bind %s: %w", addr, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return nil, fmt.Errorf("ingest: listen %s: %w", addr, err)
	}

	// os.NewFile takes ownership of fd; f.Close() below is now the only
	// thing responsible for releasing it.
	closeFD = false
	f := os.NewFile(uintptr(fd), "vortex-listener")
	ln, err := net.FileListener(f)
	// net.FileListener dup()s fd for its own use; our copy is always closed
	// once it returns, success or not.
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("ingest: FileListener: %w", err)
	}
	return ln, nil
}
