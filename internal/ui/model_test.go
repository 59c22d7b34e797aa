package ui

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/quicklaunch/internal/backend"
	"github.com/atomicstack/quicklaunch/internal/config"
	"github.com/atomicstack/quicklaunch/internal/foldercache"
	"github.com/atomicstack/quicklaunch/internal/listing"
	"github.com/atomicstack/quicklaunch/internal/menu"
	"github.com/atomicstack/quicklaunch/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeLauncher struct {
	launched []string
	opened   []string
	err      error
}

func (f *fakeLauncher) Launch(path string) error {
	f.launched = append(f.launched, path)
	return f.err
}

func (f *fakeLauncher) Open(path string) error {
	f.opened = append(f.opened, path)
	return f.err
}

type recordingNotifier struct {
	bodies []string
}

func (r *recordingNotifier) Notify(_, body string) {
	r.bodies = append(r.bodies, body)
}

type testEnv struct {
	pool     *backend.Pool
	builder  *menu.Builder
	launcher *fakeLauncher
	notifier *recordingNotifier
	harness  *Harness
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	env := &testEnv{
		pool:     backend.NewPool(16),
		launcher: &fakeLauncher{},
		notifier: &recordingNotifier{},
	}
	t.Cleanup(env.pool.Stop)
	cache := foldercache.New(listing.New(nil).List)
	env.builder = menu.NewBuilder(cache, env.pool, keyText{}, menu.WithNotifier(env.notifier))
	opts.Builder = env.builder
	opts.Controller = menu.NewController(env.builder, time.Minute, nil)
	opts.Launcher = env.launcher
	opts.Notifier = env.notifier
	if opts.Title == "" {
		opts.Title = "Programs"
	}
	env.harness = NewHarness(NewModel(opts))
	return env
}

func (e *testEnv) deliver(t *testing.T, n int) {
	t.Helper()
	if err := e.harness.DeliverScans(e.pool.Events(), n, 2*time.Second); err != nil {
		t.Fatalf("deliver scans: %v", err)
	}
}

func (e *testEnv) model() *Model { return e.harness.Model() }

// makeDocs builds:
//
//	docs/Apps/tool.sh
//	docs/notes.txt
func makeDocs(t *testing.T) string {
	t.Helper()
	return testutil.Tree(t, filepath.Join(t.TempDir(), "docs"), "Apps/tool.sh", "notes.txt")
}

func programMenu(t *testing.T, programs ...config.Program) *menu.Menu {
	t.Helper()
	return menu.ProgramMenu("Programs", programs, nil)
}

func currentLabels(m *Model) []string {
	current := m.currentLevel()
	if current == nil {
		return nil
	}
	out := make([]string, 0, len(current.Items))
	for _, item := range current.Items {
		out = append(out, item.Label)
	}
	return out
}

func TestMenuHeaderRootLevel(t *testing.T) {
	env := newTestEnv(t, Options{Programs: programMenu(t)})
	if got := env.model().menuHeader(); got != "Programs" {
		t.Fatalf("expected %q, got %q", "Programs", got)
	}
}

func TestMenuHeaderNestedLevels(t *testing.T) {
	env := newTestEnv(t, Options{Programs: programMenu(t)})
	m := env.model()
	m.stack = append(m.stack, newLevel("root:1", "docs", nil), newLevel("folder:/docs/Apps", "Apps", nil))
	if got := m.menuHeader(); got != "Programs→docs→Apps" {
		t.Fatalf("expected breadcrumb, got %q", got)
	}
}

func TestNewModelDefaultsRootTitle(t *testing.T) {
	m := NewModel(Options{})
	if got := m.menuHeader(); got != defaultRootTitle {
		t.Fatalf("expected %q, got %q", defaultRootTitle, got)
	}
}

func TestBrowseModeOpensRootFolderMenu(t *testing.T) {
	docs := makeDocs(t)
	env := newTestEnv(t, Options{BrowsePath: docs})
	m := env.model()
	if len(m.stack) != 1 {
		t.Fatalf("expected a single level, got %d", len(m.stack))
	}
	root := m.stack[0]
	if root.Menu == nil || !root.Menu.Root {
		t.Fatalf("expected root folder menu, got %#v", root.Menu)
	}
	if root.Title != "docs" {
		t.Fatalf("expected title docs, got %q", root.Title)
	}
	if labels := currentLabels(m); len(labels) != 1 || labels[0] != "Loading" {
		t.Fatalf("expected loading placeholder, got %v", labels)
	}
	env.deliver(t, 1)
	want := []string{"Apps", "notes.txt", "", "OpenInBrowser", "Close"}
	got := currentLabels(m)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBrowseModeMissingFolderReportsError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	env := newTestEnv(t, Options{BrowsePath: missing})
	m := env.model()
	if len(m.stack) != 0 {
		t.Fatalf("expected no levels, got %d", len(m.stack))
	}
	if m.errMsg != "ShowFolderMenuError: "+missing {
		t.Fatalf("unexpected error message %q", m.errMsg)
	}
	if len(env.notifier.bodies) != 1 {
		t.Fatalf("expected one notification, got %v", env.notifier.bodies)
	}
	if cmd := m.handleEscapeKey(); cmd == nil {
		t.Fatalf("expected quit when nothing is shown")
	}
}

func TestActionResultErrorKeepsMenuOpen(t *testing.T) {
	env := newTestEnv(t, Options{Programs: programMenu(t)})
	m := env.model()
	m.loading = true
	cmd := m.handleActionResultMsg(menu.ActionResult{Err: errors.New("boom")})
	if cmd != nil {
		t.Fatalf("expected no command on error")
	}
	if m.errMsg != "boom" || m.loading {
		t.Fatalf("unexpected state err=%q loading=%v", m.errMsg, m.loading)
	}
	if len(env.notifier.bodies) != 1 || env.notifier.bodies[0] != "boom" {
		t.Fatalf("expected error notification, got %v", env.notifier.bodies)
	}
}

func TestActionResultSuccessQuits(t *testing.T) {
	env := newTestEnv(t, Options{Programs: programMenu(t)})
	cmd := env.model().handleActionResultMsg(menu.ActionResult{Info: "Launched x"})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestScansDoneStopsWaiting(t *testing.T) {
	ch := make(chan backend.Event)
	m := NewModel(Options{Scans: ch})
	close(ch)
	msg := waitForScan(ch)()
	if _, ok := msg.(scansDoneMsg); !ok {
		t.Fatalf("expected scansDoneMsg, got %T", msg)
	}
	m.Update(msg)
	if m.scans != nil {
		t.Fatalf("expected scan channel dropped")
	}
}
