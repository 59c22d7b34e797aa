package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Item is the immutable view of an entry handed to actions, which run off
// the UI loop.
type Item struct {
	ID    string
	Label string
	Path  string
}

// Launcher starts programs and shows folders.
type Launcher interface {
	Launch(path string) error
	Open(path string) error
}

// Context carries the collaborators actions need.
type Context struct {
	Launcher Launcher
	Text     Localizer
}

// Action executes a menu selection.
type Action func(Context, Item) tea.Cmd

// ActionResult communicates the outcome of executing a menu action.
type ActionResult struct {
	Info string
	Err  error
}

// CloseRequest asks the UI to tear down the current root folder menu.
type CloseRequest struct {
	MenuID string
}

// BrowseRequest asks the UI to open path as a root folder menu.
type BrowseRequest struct {
	Label string
	Path  string
}

// localizedError carries a translated message while keeping the cause
// reachable through errors.Is.
type localizedError struct {
	msg string
	err error
}

func (e localizedError) Error() string { return e.msg }
func (e localizedError) Unwrap() error { return e.err }

// Node is a registered action.
type Node struct {
	ID     string
	Action Action
}

// Registry exposes lookup of actions by id.
type Registry struct {
	nodes map[string]*Node
}

// BuildRegistry registers the built-in actions.
func BuildRegistry() *Registry {
	nodes := make(map[string]*Node)
	for id, action := range ActionHandlers() {
		nodes[id] = &Node{ID: id, Action: action}
	}
	return &Registry{nodes: nodes}
}

// Find locates a node by ID.
func (r *Registry) Find(id string) (*Node, bool) {
	node, ok := r.nodes[id]
	return node, ok
}

// ActionHandlers maps action identifiers to their execution logic.
func ActionHandlers() map[string]Action {
	return map[string]Action{
		ActionLaunch:     LaunchAction,
		ActionOpenFolder: OpenFolderAction,
		ActionClose:      CloseAction,
		ActionBrowse:     BrowseAction,
	}
}

func LaunchAction(ctx Context, item Item) tea.Cmd {
	path := strings.TrimSpace(item.Path)
	if path == "" {
		return func() tea.Msg { return ActionResult{Err: localizedError{msg: ctx.Text.Text("EmptyPath")}} }
	}
	return func() tea.Msg {
		if err := ctx.Launcher.Launch(path); err != nil {
			return ActionResult{Err: localizedError{msg: ctx.Text.Text("ProgramRunError", err.Error()), err: err}}
		}
		return ActionResult{Info: fmt.Sprintf("Launched %s", item.Label)}
	}
}

func OpenFolderAction(ctx Context, item Item) tea.Cmd {
	path := strings.TrimSpace(item.Path)
	if path == "" {
		return func() tea.Msg { return ActionResult{Err: localizedError{msg: ctx.Text.Text("EmptyPath")}} }
	}
	return func() tea.Msg {
		if err := ctx.Launcher.Open(path); err != nil {
			return ActionResult{Err: localizedError{msg: ctx.Text.Text("ShowFolderMenuError", err.Error()), err: err}}
		}
		return ActionResult{Info: fmt.Sprintf("Opened %s", path)}
	}
}

func CloseAction(_ Context, item Item) tea.Cmd {
	return func() tea.Msg { return CloseRequest{MenuID: item.ID} }
}

func BrowseAction(_ Context, item Item) tea.Cmd {
	return func() tea.Msg { return BrowseRequest{Label: item.Label, Path: item.Path} }
}
