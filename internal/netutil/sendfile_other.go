//go:build !linux

package netutil

import (
	"net"
	"os"
)

// StreamFile writes size bytes of file, from the start, onto conn.
// Zero-copy transfer is wired up only on Linux; everywhere else the
// bytes take the buffered path.
func StreamFile(conn net.Conn, file *os.File, size int64) (int64, error) {
	return bufferedCopy(conn, file, 0, size)
}
