// Package ui contains the Bubble Tea program that powers the interactive tree
// browser.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses are matched against the key map and translated into
//     navigation events for internal/ui/state.Navigator. The navigator owns the
//     fold set, the visible sequence and the cursor; the model only keeps the
//     viewport sized to the terminal.
//   - View renders through internal/format/treeview, then applies theme styles
//     to the returned spans.
//
// Backend interactions:
//   - An optional backend.Watcher streams filesystem change events. They are
//     reported on the status line; the reload key re-walks the tree and the
//     navigator is rebased onto the new tree by relative path.
package ui
