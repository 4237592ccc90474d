package netutil

import (
	"fmt"
	"net"
	"os"
)

// ListenerFile dup's the TCP listener's file descriptor so it can be
// passed to a child process via exec.Cmd.ExtraFiles. Go has no safe
// userland fork() for a multi-threaded runtime, so workers are
// separate processes created by re-exec with FD inheritance instead.
func ListenerFile(ln *net.TCPListener) (*os.File, error) {
	f, err := ln.File()
	if err != nil {
		return nil, fmt.Errorf("netutil: dup listener fd: %w", err)
	}
	return f, nil
}

// ListenerFromFD reconstructs a net.Listener from an inherited file
// descriptor in a freshly exec'd worker process.
func ListenerFromFD(fd uintptr) (net.Listener, error) {
	f := os.NewFile(fd, "forkhttpd-listener")
	if f == nil {
		return nil, fmt.Errorf("netutil: invalid inherited fd %d", fd)
	}
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("netutil: reconstruct listener from fd %d: %w", fd, err)
	}
	return ln, nil
}
