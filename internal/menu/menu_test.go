package menu

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atomicstack/quicklaunch/internal/backend"
	"github.com/atomicstack/quicklaunch/internal/listing"
)

type keyText struct{}

func (keyText) Text(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	return key + ":" + fmt.Sprint(args...)
}

type sourceFunc func(path string) []listing.Entry

func (f sourceFunc) Entries(path string) []listing.Entry { return f(path) }

type submitted struct {
	ticket uint64
	key    string
	job    backend.Job
}

// manualPool records jobs and runs them only when the test completes them.
type manualPool struct {
	jobs []submitted
	next uint64
}

func (p *manualPool) Submit(key string, job backend.Job) uint64 {
	p.next++
	p.jobs = append(p.jobs, submitted{ticket: p.next, key: key, job: job})
	return p.next
}

func (p *manualPool) complete(i int) backend.Event {
	s := p.jobs[i]
	data, err := s.job(context.Background())
	return backend.Event{Ticket: s.ticket, Key: s.key, Data: data, Err: err}
}

type recordingNotifier struct {
	titles []string
	bodies []string
}

func (r *recordingNotifier) Notify(title, body string) {
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
}

type fixture struct {
	pool     *manualPool
	builder  *Builder
	ctrl     *Controller
	notifier *recordingNotifier
	now      time.Time
}

func newFixture(source Source) *fixture {
	f := &fixture{pool: &manualPool{}, notifier: &recordingNotifier{}, now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.builder = NewBuilder(source, f.pool, keyText{}, WithClock(clock), WithNotifier(f.notifier))
	f.ctrl = NewController(f.builder, 30*time.Second, clock)
	return f
}

func makeTree(t *testing.T, dirs, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(root, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func labels(m *Menu) []string {
	out := make([]string, 0, m.Len())
	for _, e := range m.Entries() {
		if e.Kind == KindSeparator {
			out = append(out, "---")
			continue
		}
		out = append(out, e.Label)
	}
	return out
}

func assertLabels(t *testing.T, m *Menu, want ...string) {
	t.Helper()
	got := labels(m)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPopulateOrdersFoldersThenFilesWithFooter(t *testing.T) {
	root := makeTree(t, []string{"zoo/x", "Apps", "beta"}, []string{"b.txt", "A.md", "c.log"})
	f := newFixture(sourceFunc(listing.New(nil).List))

	m, err := f.ctrl.OpenRoot("root", "Docs", root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLabels(t, m, "Loading")
	if !m.ShowsPlaceholder() {
		t.Fatalf("expected loading placeholder")
	}
	if len(f.pool.jobs) != 1 {
		t.Fatalf("expected one dispatched scan, got %d", len(f.pool.jobs))
	}

	if !f.builder.Apply(f.pool.complete(0)) {
		t.Fatalf("expected menu to change")
	}
	assertLabels(t, m, "Apps", "beta", "zoo", "A.md", "b.txt", "c.log", "---", "OpenInBrowser", "Close")
	for i, e := range m.Entries()[:3] {
		if e.Kind != KindFolder || e.Submenu == nil || e.State == nil {
			t.Fatalf("expected lazily expandable folder at %d", i)
		}
	}
	for i, e := range m.Entries()[3:6] {
		if e.Kind != KindFile || e.Action != ActionLaunch {
			t.Fatalf("expected launchable file at %d", i+3)
		}
	}
	if f.builder.Pending() != 0 {
		t.Fatalf("expected no pending scans")
	}
}

func TestPopulateEmptyFolderShowsNoItems(t *testing.T) {
	root := makeTree(t, nil, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))

	m, err := f.ctrl.OpenRoot("root", "Empty", root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.builder.Apply(f.pool.complete(0))

	assertLabels(t, m, "NoItems", "---", "OpenInBrowser", "Close")
	placeholder := m.Entries()[0]
	if placeholder.Enabled || placeholder.Actionable() || placeholder.Tag != TagEmpty {
		t.Fatalf("expected disabled no-items placeholder")
	}
	for _, e := range m.Entries() {
		if e.Kind == KindFile || e.Kind == KindFolder {
			t.Fatalf("expected no content entries, got %s", e.Label)
		}
	}
}

func TestNestedMenuHasNoCloseAction(t *testing.T) {
	root := makeTree(t, []string{"sub/inner"}, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	f.builder.Apply(f.pool.complete(0))

	sub := m.Entries()[0]
	if !f.ctrl.Open(sub) {
		t.Fatalf("expected scan for never-loaded submenu")
	}
	f.builder.Apply(f.pool.complete(1))
	assertLabels(t, sub.Submenu, "inner", "---", "OpenInBrowser")
	if sub.State.Phase() != Loaded {
		t.Fatalf("expected loaded phase, got %s", sub.State.Phase())
	}
	if !sub.State.LastLoaded.Equal(f.now) {
		t.Fatalf("expected load timestamp %v, got %v", f.now, sub.State.LastLoaded)
	}
}

func TestChildlessFolderIsMaterialisedEagerly(t *testing.T) {
	root := makeTree(t, []string{"empty"}, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	f.builder.Apply(f.pool.complete(0))

	empty := m.Entries()[0]
	if empty.State.SupportsLazyLoad {
		t.Fatalf("expected childless folder not to support lazy load")
	}
	if empty.State.Phase() != Loaded {
		t.Fatalf("expected childless folder marked loaded, got %s", empty.State.Phase())
	}
	assertLabels(t, empty.Submenu, "NoItems", "---", "OpenInBrowser")
	if f.ctrl.Open(empty) {
		t.Fatalf("expected no scan for childless folder")
	}
	if len(f.pool.jobs) != 1 {
		t.Fatalf("expected only the root scan, got %d", len(f.pool.jobs))
	}
}

func TestOpenTwiceDispatchesOnce(t *testing.T) {
	root := makeTree(t, []string{"sub/inner"}, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	f.builder.Apply(f.pool.complete(0))
	sub := m.Entries()[0]

	if !f.ctrl.Open(sub) {
		t.Fatalf("expected first open to dispatch")
	}
	if sub.State.Phase() != Loading {
		t.Fatalf("expected loading phase, got %s", sub.State.Phase())
	}
	if f.ctrl.Open(sub) {
		t.Fatalf("expected second open to be ignored while loading")
	}
	if len(f.pool.jobs) != 2 {
		t.Fatalf("expected exactly one submenu scan, got %d jobs", len(f.pool.jobs)-1)
	}
}

func TestOpenWithinTTLKeepsContent(t *testing.T) {
	root := makeTree(t, []string{"sub/inner"}, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	f.builder.Apply(f.pool.complete(0))
	sub := m.Entries()[0]
	f.ctrl.Open(sub)
	f.builder.Apply(f.pool.complete(1))
	loaded := sub.Submenu.Entries()[0]

	f.now = f.now.Add(30 * time.Second)
	if f.ctrl.Open(sub) {
		t.Fatalf("expected no reload within ttl")
	}
	if sub.Submenu.Entries()[0] != loaded {
		t.Fatalf("expected previously loaded content untouched")
	}

	f.now = f.now.Add(time.Second)
	if !f.ctrl.Open(sub) {
		t.Fatalf("expected reload after ttl")
	}
	if !loaded.Disposed() {
		t.Fatalf("expected stale content disposed on reload")
	}
	assertLabels(t, sub.Submenu, "Loading")
}

func TestOpenReloadsWhenPlaceholderStillShown(t *testing.T) {
	f := newFixture(sourceFunc(func(string) []listing.Entry { return nil }))
	entry := &Entry{Kind: KindFolder, Label: "x", Path: "/x", Enabled: true}
	entry.State = &SubmenuState{FolderPath: "/x", SupportsLazyLoad: true, HasLoadedOnce: true, LastLoaded: f.now}
	entry.Submenu = newSubmenu(entry)
	entry.Submenu.entries = []*Entry{f.builder.loadingEntry()}

	if !f.ctrl.Open(entry) {
		t.Fatalf("expected reload while placeholder is shown")
	}
}

func TestApplyDiscardsWhenMenuClosed(t *testing.T) {
	root := makeTree(t, nil, []string{"a.txt"})
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	placeholder := m.Entries()[0]

	m.Close()
	if f.builder.Apply(f.pool.complete(0)) {
		t.Fatalf("expected result for closed menu to be discarded")
	}
	if m.Len() != 1 || m.Entries()[0] != placeholder {
		t.Fatalf("expected no mutation of closed menu")
	}
	if f.builder.Pending() != 0 {
		t.Fatalf("expected pending entry removed")
	}
	if len(f.notifier.titles) != 0 {
		t.Fatalf("expected stale result not to be reported")
	}
}

func TestApplyDiscardsWhenOwnerDisposed(t *testing.T) {
	root := makeTree(t, []string{"sub/inner"}, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	f.builder.Apply(f.pool.complete(0))
	sub := m.Entries()[0]
	f.ctrl.Open(sub)

	m.Close()
	if !sub.Disposed() || !sub.Submenu.Closed() {
		t.Fatalf("expected closing the root to dispose nested entries")
	}
	if f.builder.Apply(f.pool.complete(1)) {
		t.Fatalf("expected result for disposed owner to be discarded")
	}
	assertLabels(t, sub.Submenu, "Loading")
}

func TestApplyUnknownTicketIsIgnored(t *testing.T) {
	f := newFixture(sourceFunc(func(string) []listing.Entry { return nil }))
	if f.builder.Apply(backend.Event{Ticket: 99, Key: "/nowhere"}) {
		t.Fatalf("expected unknown ticket to be ignored")
	}
}

func TestApplyFailureShowsErrorAndNotifies(t *testing.T) {
	root := makeTree(t, []string{"sub/inner"}, nil)
	f := newFixture(sourceFunc(listing.New(nil).List))
	m, _ := f.ctrl.OpenRoot("root", "Root", root)
	f.builder.Apply(f.pool.complete(0))
	sub := m.Entries()[0]
	f.ctrl.Open(sub)

	evt := f.pool.complete(1)
	evt.Data = nil
	evt.Err = errors.New("disk on fire")
	if !f.builder.Apply(evt) {
		t.Fatalf("expected failure to update the menu")
	}
	assertLabels(t, sub.Submenu, "Error", "---", "OpenInBrowser")
	if sub.Submenu.Entries()[0].Enabled {
		t.Fatalf("expected disabled error placeholder")
	}
	if sub.State.IsLoading || sub.State.HasLoadedOnce {
		t.Fatalf("expected loading cleared without marking loaded: %+v", sub.State)
	}
	if len(f.notifier.titles) != 1 || f.notifier.bodies[0] != "FolderMenuError:disk on fire" {
		t.Fatalf("expected one error notification, got %v", f.notifier.bodies)
	}
	// Sibling and ancestor menus are untouched.
	assertLabels(t, m, "sub", "---", "OpenInBrowser", "Close")

	if !f.ctrl.Open(sub) {
		t.Fatalf("expected retry after failure")
	}
}

func TestOpenRootMissingFolder(t *testing.T) {
	f := newFixture(sourceFunc(func(string) []listing.Entry { return nil }))
	if _, err := f.ctrl.OpenRoot("root", "Gone", filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatalf("expected error for missing folder")
	}
	if len(f.pool.jobs) != 0 {
		t.Fatalf("expected no scan for missing folder")
	}
}

func TestPopulateWithRealPool(t *testing.T) {
	root := makeTree(t, []string{"d"}, []string{"f.txt"})
	pool := backend.NewPool(4)
	defer pool.Stop()
	builder := NewBuilder(sourceFunc(listing.New(nil).List), pool, keyText{})
	m := NewRootMenu("root", "Root", root)
	builder.PopulateAsync(root, m, true, nil)

	select {
	case evt := <-pool.Events():
		if !builder.Apply(evt) {
			t.Fatalf("expected apply to succeed")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for scan")
	}
	assertLabels(t, m, "d", "f.txt", "---", "OpenInBrowser", "Close")
}
