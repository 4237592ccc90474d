// Package pluginhost (re)loads the request handler plugin. Go's
// plugin.Open caches its result by the path it opened and has no
// unload call, so a file whose mtime has advanced would otherwise
// never be re-read. This host works around that by copying the .so to
// a throwaway path stamped with its mtime before each Open, forcing a
// fresh load whenever the source file actually changed. Earlier
// copies are left on disk: the runtime never unmaps plugin code pages
// either way, so nothing is reclaimed by deleting them.
package pluginhost

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"plugin"
	"sync"
	"time"

	"github.com/yourusername/forkhttpd/internal/pluginapi"
)

// Host loads one worker's view of the handler plugin file at Path,
// tracking the last-observed mtime so the caller can detect and log
// reload events.
type Host struct {
	Path     string
	CacheDir string

	mu        sync.Mutex
	lastMtime time.Time
	handler   pluginapi.HandlerFunc
}

// New creates a host for the plugin at path. cacheDir holds the
// mtime-stamped copies; if empty, a "forkhttpd-plugins" directory
// under os.TempDir() is used.
func New(path, cacheDir string) *Host {
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "forkhttpd-plugins")
	}
	return &Host{Path: path, CacheDir: cacheDir}
}

// CheckReload re-stats the plugin file and reports whether its mtime
// has advanced since the last check. It does not load the plugin;
// call Load for that.
func (h *Host) CheckReload() (reloaded bool, err error) {
	info, err := os.Stat(h.Path)
	if err != nil {
		return false, fmt.Errorf("pluginhost: stat %s: %w", h.Path, err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if info.ModTime().After(h.lastMtime) {
		h.lastMtime = info.ModTime()
		h.handler = nil // force a fresh Open on next Load
		return true, nil
	}
	return false, nil
}

// Load resolves the entrypoint, (re)opening the plugin when no handler
// is cached: on first use, or after CheckReload has observed an mtime
// advance. It does not stat the file for changes itself, so callers
// run CheckReload before it. The returned func is valid for
// exactly one request; the caller must not cache it past that.
func (h *Host) Load() (pluginapi.HandlerFunc, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handler != nil {
		return h.handler, nil
	}

	info, err := os.Stat(h.Path)
	if err != nil {
		return nil, fmt.Errorf("pluginhost: stat %s: %w", h.Path, err)
	}
	stamp := fmt.Sprintf("%d.so", info.ModTime().UnixNano())
	stagedPath := filepath.Join(h.CacheDir, stamp)

	if _, err := os.Stat(stagedPath); os.IsNotExist(err) {
		if err := os.MkdirAll(h.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("pluginhost: mkdir %s: %w", h.CacheDir, err)
		}
		if err := copyFile(h.Path, stagedPath); err != nil {
			return nil, fmt.Errorf("pluginhost: stage plugin: %w", err)
		}
	}

	p, err := plugin.Open(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("pluginhost: open %s: %w", stagedPath, err)
	}
	sym, err := p.Lookup(pluginapi.EntryPointSymbol)
	if err != nil {
		return nil, fmt.Errorf("pluginhost: lookup %s: %w", pluginapi.EntryPointSymbol, err)
	}
	fn, ok := sym.(*pluginapi.HandlerFunc)
	if !ok || fn == nil || *fn == nil {
		return nil, fmt.Errorf("pluginhost: symbol %s is not a pluginapi.HandlerFunc", pluginapi.EntryPointSymbol)
	}

	h.lastMtime = info.ModTime()
	h.handler = *fn
	return h.handler, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
