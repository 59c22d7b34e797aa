package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/atomicstack/quicklaunch/internal/backend"
	"github.com/atomicstack/quicklaunch/internal/listing"
	"github.com/atomicstack/quicklaunch/internal/logging"
	"github.com/atomicstack/quicklaunch/internal/logging/events"
	"github.com/atomicstack/quicklaunch/internal/metrics"
)

// Localizer looks up user-facing strings.
type Localizer interface {
	Text(key string, args ...interface{}) string
}

// Notifier shows a message without blocking the caller.
type Notifier interface {
	Notify(title, body string)
}

// Source returns folder listings, possibly from cache.
type Source interface {
	Entries(path string) []listing.Entry
}

// Dispatcher runs a job off the UI loop. backend.Pool satisfies it.
type Dispatcher interface {
	Submit(key string, job backend.Job) uint64
}

type request struct {
	path              string
	target            *Menu
	includeRootExtras bool
	owner             *Entry
}

// Builder fills folder menus in the background. PopulateAsync and Apply must
// both be called from the UI loop; the pending table is not locked.
type Builder struct {
	source   Source
	pool     Dispatcher
	text     Localizer
	notifier Notifier
	now      func() time.Time
	metrics  *metrics.Metrics

	pending map[uint64]request
}

// BuilderOption customises a Builder.
type BuilderOption func(*Builder)

// WithClock injects the time source used for load timestamps.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithNotifier sets where menu-build errors are reported.
func WithNotifier(n Notifier) BuilderOption {
	return func(b *Builder) { b.notifier = n }
}

// WithMetrics counts discarded and failed scans.
func WithMetrics(m *metrics.Metrics) BuilderOption {
	return func(b *Builder) { b.metrics = m }
}

// NewBuilder returns a Builder that reads folders from source and runs the
// reads on pool.
func NewBuilder(source Source, pool Dispatcher, text Localizer, opts ...BuilderOption) *Builder {
	b := &Builder{
		source:  source,
		pool:    pool,
		text:    text,
		now:     time.Now,
		pending: make(map[uint64]request),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Pending returns the number of dispatched scans not yet applied.
func (b *Builder) Pending() int { return len(b.pending) }

// PopulateAsync shows the loading placeholder in target and starts reading
// path in the background. The result is merged by Apply. owner, when not
// nil, is the folder entry whose submenu target is.
func (b *Builder) PopulateAsync(path string, target *Menu, includeRootExtras bool, owner *Entry) {
	if target == nil || target.Closed() {
		events.Folder.Discard(path, events.DiscardNoTarget)
		return
	}
	target.replace([]*Entry{b.loadingEntry()})
	if owner != nil && owner.State != nil {
		owner.State.IsLoading = true
	}

	source := b.source
	ticket := b.pool.Submit(path, func(context.Context) (interface{}, error) {
		return source.Entries(path), nil
	})
	if ticket == 0 {
		b.fail(request{path: path, target: target, includeRootExtras: includeRootExtras, owner: owner},
			fmt.Errorf("scan of %s not started", path))
		return
	}
	b.pending[ticket] = request{path: path, target: target, includeRootExtras: includeRootExtras, owner: owner}
	events.Folder.Dispatch(path, includeRootExtras)
}

// Apply merges a completed scan into its target menu. It returns true when
// the menu changed; results for closed menus or disposed owners are dropped.
func (b *Builder) Apply(evt backend.Event) bool {
	req, ok := b.pending[evt.Ticket]
	if !ok {
		events.Folder.Discard(evt.Key, events.DiscardNoTarget)
		return false
	}
	delete(b.pending, evt.Ticket)

	if req.owner != nil && req.owner.Disposed() {
		b.metrics.ScanDiscarded()
		events.Folder.Discard(req.path, events.DiscardOwnerRemoved)
		return false
	}
	if req.target.Closed() {
		b.metrics.ScanDiscarded()
		events.Folder.Discard(req.path, events.DiscardMenuClosed)
		return false
	}

	if evt.Err != nil {
		b.fail(req, evt.Err)
		return true
	}
	entries, ok := evt.Data.([]listing.Entry)
	if !ok && evt.Data != nil {
		b.fail(req, fmt.Errorf("scan of %s returned %T", req.path, evt.Data))
		return true
	}

	req.target.replace(b.folderContent(entries, req.path, req.includeRootExtras))
	if req.owner != nil && req.owner.State != nil {
		req.owner.State.IsLoading = false
		req.owner.State.HasLoadedOnce = true
		req.owner.State.LastLoaded = b.now()
	}
	events.Folder.Apply(req.path, len(entries), evt.Elapsed)
	return true
}

func (b *Builder) fail(req request, err error) {
	b.metrics.ScanFailed()
	logging.Error(fmt.Errorf("folder menu %s: %w", req.path, err))
	events.Folder.Failed(req.path, err)

	content := []*Entry{{Kind: KindPlaceholder, Label: b.text.Text("Error"), Tag: TagError}}
	content = append(content, b.footer(req.path, req.includeRootExtras, len(content))...)
	req.target.replace(content)
	if req.owner != nil && req.owner.State != nil {
		req.owner.State.IsLoading = false
	}
	if b.notifier != nil {
		b.notifier.Notify(b.text.Text("Error"), b.text.Text("FolderMenuError", err.Error()))
	}
}

// folderContent turns a listing into menu entries: folders, then files, then
// the footer. An empty listing shows the "no items" placeholder instead.
func (b *Builder) folderContent(entries []listing.Entry, path string, includeRootExtras bool) []*Entry {
	content := make([]*Entry, 0, len(entries)+3)
	for _, le := range entries {
		if le.IsFolder {
			content = append(content, b.folderEntry(le))
		}
	}
	for _, le := range entries {
		if !le.IsFolder {
			content = append(content, &Entry{
				Kind:    KindFile,
				Label:   le.Name,
				Path:    le.Path,
				Enabled: true,
				Icon:    le.Icon,
				Action:  ActionLaunch,
			})
		}
	}
	if len(content) == 0 {
		content = append(content, b.emptyEntry())
	}
	return append(content, b.footer(path, includeRootExtras, len(content))...)
}

func (b *Builder) folderEntry(le listing.Entry) *Entry {
	entry := &Entry{
		Kind:    KindFolder,
		Label:   le.Name,
		Path:    le.Path,
		Enabled: true,
		Icon:    le.Icon,
		State:   &SubmenuState{FolderPath: le.Path, SupportsLazyLoad: le.HasChildren},
	}
	entry.Submenu = newSubmenu(entry)
	if le.HasChildren {
		entry.Submenu.entries = []*Entry{b.loadingEntry()}
		return entry
	}
	// Nothing to scan: materialise the empty submenu now.
	content := []*Entry{b.emptyEntry()}
	entry.Submenu.entries = append(content, b.footer(le.Path, false, len(content))...)
	entry.State.HasLoadedOnce = true
	entry.State.LastLoaded = b.now()
	return entry
}

func (b *Builder) footer(path string, includeRootExtras bool, existing int) []*Entry {
	footer := make([]*Entry, 0, 3)
	if existing > 0 {
		footer = append(footer, &Entry{Kind: KindSeparator})
	}
	footer = append(footer, &Entry{
		Kind:    KindAction,
		Label:   b.text.Text("OpenInBrowser"),
		Path:    path,
		Enabled: true,
		Action:  ActionOpenFolder,
	})
	if includeRootExtras {
		footer = append(footer, &Entry{
			Kind:    KindAction,
			Label:   b.text.Text("Close"),
			Enabled: true,
			Action:  ActionClose,
		})
	}
	return footer
}

func (b *Builder) loadingEntry() *Entry {
	return &Entry{Kind: KindPlaceholder, Label: b.text.Text("Loading"), Tag: TagLoading}
}

func (b *Builder) emptyEntry() *Entry {
	return &Entry{Kind: KindPlaceholder, Label: b.text.Text("NoItems"), Tag: TagEmpty}
}
