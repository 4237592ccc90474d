package httpwire

import (
	"bytes"
	"strconv"
	"strings"
)

// Parse decodes a request line, header block and optional body from
// buf. It never retains a reference to buf; every field it returns is
// copied out. A Content-Length larger than the bytes actually present
// is not an error: the body is adopted truncated and the handler
// decides what a short body means.
func Parse(buf []byte) (*Request, error) {
	lineEnd := bytes.Index(buf, []byte("\r\n"))
	if lineEnd < 0 {
		return nil, ErrInvalidRequestLine
	}
	reqLine := buf[:lineEnd]

	parts := bytes.SplitN(reqLine, []byte(" "), 3)
	if len(parts) != 3 {
		return nil, ErrInvalidRequestLine
	}
	method := parts[0]
	target := parts[1]
	proto := bytes.TrimRight(parts[2], "\r\n")

	if len(method) == 0 || len(method) > MaxMethodLength {
		return nil, ErrMethodTooLong
	}
	if len(target) == 0 || len(target) > MaxURILength {
		return nil, ErrURITooLong
	}
	if len(proto) == 0 {
		return nil, ErrInvalidRequestLine
	}

	// The blank-line terminator is searched from the request line's own
	// CRLF, so a request with no headers ("...\r\n\r\n") is accepted.
	headerStart := lineEnd + 2
	termIdx := bytes.Index(buf[lineEnd:], []byte("\r\n\r\n"))
	if termIdx < 0 {
		return nil, ErrNoHeaderTerminator
	}
	headerEnd := lineEnd + termIdx
	var headerBlock []byte
	if headerEnd > headerStart {
		headerBlock = buf[headerStart:headerEnd]
	}
	if len(headerBlock) > MaxHeaderSize {
		return nil, ErrHeadersTooLarge
	}

	var header Header
	contentLength := 0
	if len(headerBlock) > 0 {
		for _, line := range bytes.Split(headerBlock, []byte("\r\n")) {
			if len(line) == 0 {
				continue
			}
			colon := bytes.IndexByte(line, ':')
			if colon < 0 {
				return nil, ErrInvalidHeader
			}
			name := strings.TrimSpace(string(line[:colon]))
			value := strings.TrimSpace(string(line[colon+1:]))
			header.Add(name, value)
			if strings.EqualFold(name, "Content-Length") {
				if n, err := strconv.Atoi(value); err == nil && n >= 0 {
					contentLength = n
				}
			}
		}
	}

	bodyStart := headerEnd + 4
	var body []byte
	if contentLength > 0 {
		available := len(buf) - bodyStart
		if available < 0 {
			available = 0
		}
		n := contentLength
		if available < n {
			n = available
		}
		if n > MaxBodySize {
			n = MaxBodySize
		}
		if n > 0 {
			body = append([]byte(nil), buf[bodyStart:bodyStart+n]...)
		}
	}

	return &Request{
		Method:        string(method),
		Target:        string(target),
		Proto:         string(proto),
		Header:        header,
		Body:          body,
		ContentLength: contentLength,
	}, nil
}
