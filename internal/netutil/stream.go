package netutil

import (
	"io"
	"os"
)

// bufferedCopy writes n bytes of file starting at off to w through
// userspace, for connections or byte ranges sendfile(2) cannot serve.
func bufferedCopy(w io.Writer, file *os.File, off, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	return io.Copy(w, io.NewSectionReader(file, off, n))
}
