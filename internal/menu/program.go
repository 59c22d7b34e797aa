package menu

import (
	"os"

	"github.com/atomicstack/quicklaunch/internal/config"
	"github.com/atomicstack/quicklaunch/internal/listing"
)

// ProgramMenu builds the top-level menu from the configured programs.
// Folder programs open a folder menu; everything else is launched.
func ProgramMenu(title string, programs []config.Program, icons listing.IconResolver) *Menu {
	m := &Menu{ID: "programs", Title: title}
	entries := make([]*Entry, 0, len(programs))
	for _, p := range programs {
		entry := &Entry{Kind: KindFile, Label: p.Name, Path: p.Path, Enabled: true, Action: ActionLaunch}
		if info, err := os.Stat(p.Path); err == nil && info.IsDir() {
			entry.Kind = KindFolder
			entry.Action = ActionBrowse
			if icons != nil {
				entry.Icon = icons.Folder()
			}
		} else if icons != nil {
			entry.Icon = icons.Resolve(p.Path)
		}
		entries = append(entries, entry)
	}
	m.entries = entries
	return m
}
