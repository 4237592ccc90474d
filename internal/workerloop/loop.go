// Package workerloop is a single worker's accept/dispatch loop: wait
// on the shared listener, detect plugin reloads, invoke the handler
// plugin per request, frame and send the response.
package workerloop

import (
	"bufio"
	"bytes"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yourusername/forkhttpd/internal/httpwire"
	"github.com/yourusername/forkhttpd/internal/netutil"
	"github.com/yourusername/forkhttpd/internal/pluginapi"
	"github.com/yourusername/forkhttpd/internal/pluginhost"
)

// pollInterval bounds how long Accept blocks before the exit flag is
// re-checked, so a shutdown signal is observed within a second.
const pollInterval = time.Second

// Loop runs one worker's accept/dispatch cycle against a shared
// listener. Exit is the cooperative flag the signal handler flips; the
// loop polls it at least once per pollInterval.
type Loop struct {
	Listener  *net.TCPListener
	DocRoot   string
	StorePath string
	Host      *pluginhost.Host
	Exit      *int32
}

// Run blocks, serving connections until Exit is observed set, then
// returns normally so the worker process can exit with success.
func (l *Loop) Run() {
	for atomic.LoadInt32(l.Exit) == 0 {
		if err := l.Listener.SetDeadline(time.Now().Add(pollInterval)); err != nil {
			log.Printf("workerloop: set deadline: %v", err)
		}
		conn, err := l.Listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Accept interrupted by a signal or otherwise failed:
			// logged and looped, never fatal to the worker.
			log.Printf("workerloop: accept: %v", err)
			continue
		}
		l.handle(conn)
	}
}

func (l *Loop) handle(conn net.Conn) {
	defer conn.Close()

	if reloaded, err := l.Host.CheckReload(); err != nil {
		log.Printf("workerloop: plugin stat: %v", err)
	} else if reloaded {
		log.Printf("workerloop: plugin reload detected at %s", l.Host.Path)
	}

	handler, err := l.Host.Load()
	if err != nil {
		log.Printf("workerloop: plugin load: %v", err)
		return
	}

	raw, err := readRequest(conn, httpwire.MaxTotalBuffer)
	if err != nil && len(raw) == 0 {
		log.Printf("workerloop: read request: %v", err)
		return
	}

	req, parseErr := httpwire.Parse(raw)
	var resp *pluginapi.Response
	if parseErr != nil {
		resp = errorResponse(httpwire.StatusBadRequest)
	} else {
		pluginReq := &pluginapi.Request{
			Method:        req.Method,
			Target:        req.Target,
			Proto:         req.Proto,
			Headers:       req.Header.Pairs(),
			Body:          req.Body,
			ContentLength: req.ContentLength,
		}
		resp = handler(pluginReq, l.DocRoot, l.StorePath)
		if resp == nil {
			resp = errorResponse(httpwire.StatusInternalServerError)
		}
	}

	if err := l.writeResponse(conn, req, resp); err != nil {
		log.Printf("workerloop: write response: %v", err)
	}
}

// writeResponse frames resp onto conn, streaming the body from disk
// via sendfile(2) when the plugin identified a file response with a
// FilePath. The static responder leaves Body empty in that case
// (internal/staticfile.Serve) so the file's bytes cross the wire
// exactly once, here, rather than once into the responder's Body and
// again out to the socket.
func (l *Loop) writeResponse(conn net.Conn, req *httpwire.Request, resp *pluginapi.Response) error {
	wire := &httpwire.Response{
		StatusCode: resp.StatusCode,
		Reason:     resp.Reason,
		Header:     httpwire.Header(resp.Headers),
		Body:       resp.Body,
		NoBody:     resp.NoBody,
	}
	w := bufio.NewWriter(conn)

	method := ""
	if req != nil {
		method = req.Method
	}
	if method == "GET" && resp.Kind == pluginapi.KindFile && resp.FilePath != "" && !resp.NoBody {
		// Status and headers first; WriteTo with NoBody flushes at
		// the blank line, then the file body follows off disk.
		wire.NoBody = true
		if err := wire.WriteTo(w); err != nil {
			return err
		}
		f, err := os.Open(resp.FilePath)
		if err != nil {
			// Headers promising a Content-Length already went out;
			// there is nothing sound left to send but an empty body.
			return err
		}
		defer f.Close()
		_, err = netutil.StreamFile(conn, f, contentLength(wire.Header))
		return err
	}

	return wire.WriteTo(w)
}

// contentLength reads back the Content-Length the responder already
// computed from the file's stat'd size, so the sendfile byte count
// never has to come from a fully-buffered Body.
func contentLength(header httpwire.Header) int64 {
	v, ok := header.Get("Content-Length")
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func errorResponse(code int) *pluginapi.Response {
	r := httpwire.NewResponse(code, httpwire.Header{}, nil)
	return &pluginapi.Response{
		Kind:       pluginapi.KindError,
		StatusCode: r.StatusCode,
		Reason:     r.Reason,
		Headers:    r.Header.Pairs(),
	}
}

// readRequest reads up to max bytes from conn. Once the header
// terminator arrives the remaining read target shrinks to the declared
// Content-Length (itself capped), so a request with no body doesn't
// wait for the connection to idle out while a body split across
// packets is still collected in full.
func readRequest(conn net.Conn, max int) ([]byte, error) {
	buf := make([]byte, 0, max)
	chunk := make([]byte, 4096)
	want := max
	for len(buf) < want {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if want == max {
				if idx := bytes.Index(buf, []byte("\r\n\r\n")); idx >= 0 {
					bodyLen := declaredBodyLen(buf[:idx])
					if bodyLen > httpwire.MaxBodySize {
						bodyLen = httpwire.MaxBodySize
					}
					if w := idx + 4 + bodyLen; w < max {
						want = w
					}
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return buf, err
		}
	}
	return buf, nil
}

// declaredBodyLen scans a raw header block for a well-formed
// Content-Length; absent or malformed means no body is expected.
func declaredBodyLen(headerBlock []byte) int {
	for _, line := range bytes.Split(headerBlock, []byte("\r\n")) {
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := string(bytes.TrimSpace(line[:colon]))
		if !strings.EqualFold(name, "Content-Length") {
			continue
		}
		if n, err := strconv.Atoi(string(bytes.TrimSpace(line[colon+1:]))); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
