package httpwire

import "strings"

// mimeTypes is deliberately small and static rather than delegating to
// mime.TypeByExtension: the served values must not drift with the
// host's mime.types (e.g. "application/javascript", not the OS answer
// of "text/javascript"), so responses are reproducible across hosts.
var mimeTypes = map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"txt":  "text/plain",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"pdf":  "application/pdf",
}

// ContentTypeFor returns the MIME type for a file name's extension,
// matched case-insensitively, defaulting to application/octet-stream.
func ContentTypeFor(name string) string {
	ext := ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		ext = strings.ToLower(name[i+1:])
	}
	if ct, ok := mimeTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
