package formstore

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/forkhttpd/internal/httpwire"
	"github.com/yourusername/forkhttpd/internal/kvstore"
)

func withClock(t *testing.T, unixSeconds int64) {
	t.Helper()
	old := clock
	clock = func() time.Time { return time.Unix(unixSeconds, 0) }
	t.Cleanup(func() { clock = old })
}

func TestServeWritesRecordsAndKeys(t *testing.T) {
	withClock(t, 1700000000)
	path := filepath.Join(t.TempDir(), "data.db")

	resp := Serve([]byte("name=alice&age=30"), path)
	if resp.StatusCode != httpwire.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	wantLen := strconv.Itoa(len(resp.Body))
	if cl, ok := resp.Header.Get("Content-Length"); !ok || cl != wantLen {
		t.Errorf("Content-Length = %q, %v, want %s, true", cl, ok, wantLen)
	}

	store, err := kvstore.OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer store.Close()

	name, err := store.Get([]byte("post_1700000000.name"))
	if err != nil || string(name) != "alice" {
		t.Errorf("name = %q, %v, want alice, nil", name, err)
	}
	age, err := store.Get([]byte("post_1700000000.age"))
	if err != nil || string(age) != "30" {
		t.Errorf("age = %q, %v, want 30, nil", age, err)
	}
	keys, err := store.Get([]byte("post_1700000000.keys"))
	if err != nil || string(keys) != "name,age" {
		t.Errorf("keys = %q, %v, want name,age, nil", keys, err)
	}
}

func TestServeEmptyBodyCreatesNoRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	resp := Serve(nil, path)
	if resp.StatusCode != httpwire.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if len(resp.Body) != 0 {
		t.Errorf("Body = %q, want empty", resp.Body)
	}
	if cl, ok := resp.Header.Get("Content-Length"); !ok || cl != "0" {
		t.Errorf("Content-Length = %q, %v, want 0, true", cl, ok)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("store file stat err = %v, want not-exist (no records created)", err)
	}
}

func TestServeSkipsPairsWithoutEquals(t *testing.T) {
	withClock(t, 1700000001)
	path := filepath.Join(t.TempDir(), "data.db")

	Serve([]byte("name=alice&justatoken&age=30"), path)

	store, err := kvstore.OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer store.Close()

	keys, err := store.Get([]byte("post_1700000001.keys"))
	if err != nil {
		t.Fatalf("Get keys: %v", err)
	}
	if strings.Contains(string(keys), "justatoken") {
		t.Errorf("keys = %q, should not contain the malformed pair", keys)
	}
	if string(keys) != "name,age" {
		t.Errorf("keys = %q, want name,age", keys)
	}
}

func TestServeURLDecodesFields(t *testing.T) {
	withClock(t, 1700000002)
	path := filepath.Join(t.TempDir(), "data.db")

	Serve([]byte("greeting=hello+world&pct=100%25"), path)

	store, err := kvstore.OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer store.Close()

	greeting, _ := store.Get([]byte("post_1700000002.greeting"))
	if string(greeting) != "hello world" {
		t.Errorf("greeting = %q, want %q", greeting, "hello world")
	}
	pct, _ := store.Get([]byte("post_1700000002.pct"))
	if string(pct) != "100%" {
		t.Errorf("pct = %q, want 100%%", pct)
	}
}

func TestServeSameSecondCollisionGetsSuffixed(t *testing.T) {
	withClock(t, 1700000003)
	path := filepath.Join(t.TempDir(), "data.db")

	Serve([]byte("a=1"), path)
	Serve([]byte("a=2"), path)

	store, err := kvstore.OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer store.Close()

	if _, err := store.Get([]byte("post_1700000003.keys")); err != nil {
		t.Errorf("first submission's keys record missing: %v", err)
	}
	found := false
	for i := 1; i < 5 && !found; i++ {
		key := []byte("post_1700000003-" + strconv.Itoa(i) + ".keys")
		if _, err := store.Get(key); err == nil {
			found = true
		}
	}
	if !found {
		t.Error("expected a suffixed id for the second same-second submission")
	}
}
