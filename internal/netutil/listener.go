// Package netutil holds the socket setup and zero-copy file transfer
// helpers shared by the supervisor and worker loop: SO_REUSEADDR
// listener creation, sendfile(2) streaming for static bodies, and the
// listener FD dup/reconstruction pair that hands the shared socket to
// worker processes.
package netutil

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// maxBacklog mirrors SOMAXCONN, the system maximum.
const maxBacklog = unix.SOMAXCONN

// Listen creates a TCP listener on the wildcard address at port, with
// SO_REUSEADDR set, so a restarted server can rebind immediately
// while the previous socket lingers in TIME_WAIT.
func Listen(port int) (*net.TCPListener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("netutil: listen :%d: %w", port, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("netutil: listener is not TCP")
	}
	return tcpLn, nil
}

// Backlog reports the accept backlog in effect; Go's net package
// applies the kernel maximum itself and does not accept an override,
// so this is informational only.
func Backlog() int { return maxBacklog }
