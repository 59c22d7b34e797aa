// Package listing enumerates the immediate children of a folder for the
// folder menus. Enumeration errors never escape: unreadable children are
// omitted and an unreadable folder yields an empty listing.
package listing

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atomicstack/quicklaunch/internal/icon"
)

// Entry is an immutable snapshot of one folder child taken at scan time.
type Entry struct {
	Name        string
	Path        string
	IsFolder    bool
	HasChildren bool
	Icon        *icon.Bitmap
}

// IconResolver supplies bitmaps for listed entries.
type IconResolver interface {
	Resolve(path string) *icon.Bitmap
	Folder() *icon.Bitmap
}

// Lister reads folders from disk.
type Lister struct {
	icons IconResolver
}

// New returns a Lister. icons may be nil, in which case entries carry no
// bitmap.
func New(icons IconResolver) *Lister {
	return &Lister{icons: icons}
}

// List returns the immediate children of dir, folders first, each group
// ordered case-insensitively by name.
func (l *Lister) List(dir string) []Entry {
	children, err := os.ReadDir(dir)
	if err != nil {
		return []Entry{}
	}
	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		entry, ok := l.entry(dir, child)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	Sort(entries)
	return entries
}

func (l *Lister) entry(dir string, child os.DirEntry) (Entry, bool) {
	path := filepath.Join(dir, child.Name())
	isDir := child.IsDir()
	if child.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			return Entry{}, false
		}
		isDir = info.IsDir()
	}
	entry := Entry{Name: child.Name(), Path: path, IsFolder: isDir}
	if isDir {
		entry.HasChildren = hasChildren(path)
		if l.icons != nil {
			entry.Icon = l.icons.Folder()
		}
		return entry, true
	}
	if l.icons != nil {
		entry.Icon = l.icons.Resolve(path)
	}
	return entry, true
}

// hasChildren reports whether dir contains at least one entry. Any failure
// counts as empty.
func hasChildren(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return false
	}
	defer f.Close()
	names, err := f.Readdirnames(1)
	return err == nil && len(names) > 0
}

// Sort orders entries folders first, then case-insensitively by name.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsFolder != b.IsFolder {
			return a.IsFolder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}
