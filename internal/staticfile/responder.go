// Package staticfile implements the GET/HEAD static file responder:
// resolve a request-target under a document root, reject path
// traversal, and stream the resolved file's content.
package staticfile

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/yourusername/forkhttpd/internal/httpwire"
	"github.com/yourusername/forkhttpd/internal/urlutil"
)

// Serve resolves target against docRoot and returns the response for a
// GET or HEAD request. method must be "GET" or "HEAD"; HEAD responses
// carry NoBody set.
func Serve(method, target, docRoot string) *httpwire.Response {
	decodedPath, ok := decodePath(target)
	if !ok || strings.Contains(decodedPath, "..") {
		// Conservative traversal rule: any ".." anywhere in the
		// decoded path, no canonicalization attempted.
		return badRequest()
	}
	if decodedPath == "/" {
		decodedPath = "/index.html"
	}

	fullPath := docRoot + decodedPath
	info, err := os.Stat(fullPath)
	if err != nil {
		return statusForFSError(err)
	}
	if info.IsDir() {
		if !strings.HasSuffix(fullPath, "/") {
			fullPath += "/"
		}
		fullPath += "index.html"
		info, err = os.Stat(fullPath)
		if err != nil {
			return statusForFSError(err)
		}
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return forbidden()
		}
		return internalError()
	}
	defer f.Close()

	header := httpwire.Header{}
	header.Add("Content-Type", httpwire.ContentTypeFor(fullPath))
	header.Add("Content-Length", strconv.FormatInt(info.Size(), 10))
	resp := httpwire.NewResponse(httpwire.StatusOK, header, nil)

	if method == "HEAD" {
		resp.NoBody = true
		return resp
	}

	// Body is deliberately left unset: the worker streams fullPath
	// straight off disk with sendfile(2) (internal/workerloop), so
	// reading the whole file here too would mean every GET pays for
	// the file twice.
	resp.FilePath = fullPath
	return resp
}

// decodePath strips any query string from target, URL-decodes what
// remains, and reports whether a path component was present at all
// (an absent path is itself a bad request).
func decodePath(target string) (string, bool) {
	if target == "" {
		return "", false
	}
	path := target
	if i := strings.IndexByte(target, '?'); i >= 0 {
		path = target[:i]
	}
	if path == "" {
		return "", false
	}
	return urlutil.Decode(path), true
}

func statusForFSError(err error) *httpwire.Response {
	switch {
	case os.IsNotExist(err):
		return notFound()
	case errors.Is(err, os.ErrPermission):
		return forbidden()
	default:
		return internalError()
	}
}

func badRequest() *httpwire.Response {
	return httpwire.NewResponse(httpwire.StatusBadRequest, httpwire.Header{}, nil)
}

func notFound() *httpwire.Response {
	body := []byte("<html><body><h1>404 Not Found</h1></body></html>")
	h := httpwire.Header{}
	h.Add("Content-Type", "text/html")
	return httpwire.NewResponse(httpwire.StatusNotFound, h, body)
}

func forbidden() *httpwire.Response {
	body := []byte("<html><body><h1>403 Forbidden</h1></body></html>")
	h := httpwire.Header{}
	h.Add("Content-Type", "text/html")
	return httpwire.NewResponse(httpwire.StatusForbidden, h, body)
}

func internalError() *httpwire.Response {
	body := []byte("<html><body><h1>500 Internal Server Error</h1></body></html>")
	h := httpwire.Header{}
	h.Add("Content-Type", "text/html")
	return httpwire.NewResponse(httpwire.StatusInternalServerError, h, body)
}
