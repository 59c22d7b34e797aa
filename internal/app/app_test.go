package app

import (
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/atomicstack/quicklaunch/internal/config"
	"github.com/atomicstack/quicklaunch/internal/icon"
	"github.com/atomicstack/quicklaunch/internal/launch"
	"github.com/atomicstack/quicklaunch/internal/notify"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type keyText struct{}

func (keyText) Text(key string, _ ...interface{}) string { return key }

func newTestSession(t *testing.T, cfg config.Config) *Session {
	t.Helper()
	extractor := icon.ExtractorFunc(func(path string) (*icon.Bitmap, error) {
		return &icon.Bitmap{Key: icon.CacheKey(path), Glyph: "*"}, nil
	})
	s := NewSession(cfg, keyText{},
		WithExtractor(extractor),
		WithNotifier(notify.Nop{}),
		WithLauncher(launch.NewWith("linux", func(*exec.Cmd) error { return nil })),
	)
	t.Cleanup(s.Close)
	return s
}

func TestNewSessionUsesConfiguredTTL(t *testing.T) {
	s := newTestSession(t, config.Config{FolderTTL: 5 * time.Second})
	if got := s.Folders.TTL(); got != 5*time.Second {
		t.Fatalf("expected ttl 5s, got %s", got)
	}
}

func TestCloseClearsBothCaches(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := newTestSession(t, config.Config{})
	entries := s.Folders.Entries(dir)
	if len(entries) != 1 || entries[0].Icon == nil {
		t.Fatalf("expected one entry with an icon, got %#v", entries)
	}
	bmp := entries[0].Icon
	if s.Icons.Len() != 1 || s.Folders.Len() != 1 {
		t.Fatalf("expected both caches filled, got icons=%d folders=%d", s.Icons.Len(), s.Folders.Len())
	}
	if got := testutil.ToFloat64(s.Metrics.Counters()["folder_scans"]); got != 1 {
		t.Fatalf("expected one scan counted, got %v", got)
	}

	s.Close()
	s.Close()
	if s.Icons.Len() != 0 || s.Folders.Len() != 0 {
		t.Fatalf("expected caches emptied, got icons=%d folders=%d", s.Icons.Len(), s.Folders.Len())
	}
	if !bmp.Released() || !s.Icons.Default().Released() {
		t.Fatalf("expected bitmaps released")
	}
	select {
	case _, ok := <-s.Pool.Events():
		if ok {
			t.Fatalf("expected no pending scan events")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected scan channel closed")
	}
}

func TestModelPopupAndBrowseModes(t *testing.T) {
	dir := t.TempDir()
	s := newTestSession(t, config.Config{})

	popup := s.Model(config.Config{Mode: config.ModePopup}, []config.Program{{Name: "Docs", Path: dir}})
	if popup == nil {
		t.Fatalf("expected model")
	}
	if n := s.Builder.Pending(); n != 0 {
		t.Fatalf("expected no scan for the program list, got %d", n)
	}

	s.Model(config.Config{Mode: config.ModeBrowse, BrowsePath: dir}, nil)
	if n := s.Builder.Pending(); n != 1 {
		t.Fatalf("expected browse mode to start one scan, got %d", n)
	}
}

func TestPassThroughArgs(t *testing.T) {
	cfg := config.Config{
		Logging: config.Logging{FilePath: "/tmp/ql.log", Trace: true},
		Flags:   map[string]string{"lang": "ko", "ttl": "1m0s"},
	}
	want := []string{"-lang", "ko", "-ttl", "1m0s", "-log-file", "/tmp/ql.log", "-trace"}
	if got := passThroughArgs(cfg); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := passThroughArgs(config.Config{}); len(got) != 0 {
		t.Fatalf("expected no args, got %v", got)
	}
}
