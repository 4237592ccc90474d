package staticfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/yourusername/forkhttpd/internal/httpwire"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestServeIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<html>home</html>")

	resp := Serve("GET", "/", dir)
	if resp.StatusCode != httpwire.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.FilePath != filepath.Join(dir, "index.html") {
		t.Errorf("FilePath = %q, want %s", resp.FilePath, filepath.Join(dir, "index.html"))
	}
	if len(resp.Body) != 0 {
		t.Errorf("Body = %q, want empty (streamed via FilePath instead)", resp.Body)
	}
	if cl, _ := resp.Header.Get("Content-Length"); cl != "17" {
		t.Errorf("Content-Length = %q, want 17", cl)
	}
	if ct, _ := resp.Header.Get("Content-Type"); ct != "text/html" {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if conn, _ := resp.Header.Get("Connection"); conn != "close" {
		t.Errorf("Connection = %q, want close", conn)
	}
}

func TestServeTraversalRejected(t *testing.T) {
	dir := t.TempDir()
	resp := Serve("GET", "/../etc/passwd", dir)
	if resp.StatusCode != httpwire.StatusBadRequest {
		t.Fatalf("StatusCode = %d, want 400", resp.StatusCode)
	}
	if cl, ok := resp.Header.Get("Content-Length"); !ok || cl != "0" {
		t.Errorf("Content-Length = %q, %v, want 0, true", cl, ok)
	}
}

func TestServeMissingFile(t *testing.T) {
	dir := t.TempDir()
	resp := Serve("GET", "/missing.txt", dir)
	if resp.StatusCode != httpwire.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", resp.StatusCode)
	}
	want := strconv.Itoa(len(resp.Body))
	if cl, ok := resp.Header.Get("Content-Length"); !ok || cl != want {
		t.Errorf("Content-Length = %q, %v, want %s, true", cl, ok, want)
	}
}

func TestServeHeadHasNoBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "image.png", string(make([]byte, 1024)))

	resp := Serve("HEAD", "/image.png", dir)
	if resp.StatusCode != httpwire.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if !resp.NoBody {
		t.Error("NoBody = false, want true for HEAD")
	}
	if cl, _ := resp.Header.Get("Content-Length"); cl != "1024" {
		t.Errorf("Content-Length = %q, want 1024", cl)
	}
}

func TestServeDirectoryFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sub/index.html", "nested")

	resp := Serve("GET", "/sub", dir)
	if resp.StatusCode != httpwire.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	want := filepath.Join(dir, "sub", "index.html")
	if resp.FilePath != want {
		t.Errorf("FilePath = %q, want %s", resp.FilePath, want)
	}
	if cl, _ := resp.Header.Get("Content-Length"); cl != "6" {
		t.Errorf("Content-Length = %q, want 6", cl)
	}
}

func TestServeZeroByteFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "")

	resp := Serve("GET", "/empty.txt", dir)
	if resp.StatusCode != httpwire.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if cl, _ := resp.Header.Get("Content-Length"); cl != "0" {
		t.Errorf("Content-Length = %q, want 0", cl)
	}
}
