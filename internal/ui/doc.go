// Package ui contains the Bubble Tea program that renders the launcher menus.
// The Model type focuses on message orchestration, while dedicated helpers own
// navigation, input, rendering, and scan delivery.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Navigation helpers (navigation.go) manage the stack of menu levels. Each
//     level is a view over a menu.Menu; entering a folder entry asks the
//     menu.Controller whether its submenu needs a scan and pushes the submenu.
//   - Selecting a file or footer action runs the registered menu action
//     through the command bus, off the event loop.
//
// Folder scans:
//   - Scans run on backend.Pool goroutines. Their completions arrive on one
//     channel that waitForScan drains; each becomes a scanCompletedMsg that
//     hands the event to menu.Builder.Apply on the event loop, so menu trees
//     are only ever mutated here.
//   - Results for menus closed in the meantime are dropped by Apply; the
//     levels on screen are re-projected after every applied scan.
package ui
