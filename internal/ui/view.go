package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/atomicstack/itree/internal/format/treeview"
	"github.com/atomicstack/itree/internal/tree"
)

const ellipsis = "…"

type styledLine struct {
	text  string
	style *lipgloss.Style
	// raw lines already carry ANSI styling.
	raw bool
}

// View implements tea.Model.
func (m *Model) View() string {
	info := m.currentInfo()
	m.syncViewport()
	lines := make([]styledLine, 0, 32)
	for _, line := range m.treeLines() {
		lines = append(lines, styledLine{text: m.styleTreeLine(line), raw: true})
	}
	if m.showHelp {
		lines = append(lines, styledLine{})
		for _, row := range m.keys.helpLines() {
			lines = append(lines, styledLine{text: row, style: m.styles.Info})
		}
	}
	if info != "" {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: info, style: m.styles.Info})
	}
	if m.showFooter && !m.showHelp {
		lines = append(lines, styledLine{})
		lines = append(lines, styledLine{text: m.help.ShortHelpView(m.keys.ShortHelp()), raw: true})
	}
	// Reserve the last row for the status line.
	lines = limitHeight(lines, m.height-1, m.width)
	lines = append(lines, m.statusLine())
	lines = applyWidth(lines, m.width)
	return renderLines(lines)
}

// treeLines renders the visible window of the tree.
func (m *Model) treeLines() []treeview.Line {
	all := treeview.Render(m.nav.Tree(), m.nav.Fold(), treeview.Options{
		Cursor:      m.nav.Focused(),
		Interactive: true,
	})
	height := m.maxVisibleItems()
	if height <= 0 {
		return all
	}
	return treeview.Window(all, m.nav.ViewportOffset, height)
}

func (m *Model) styleFor(s treeview.Style) *lipgloss.Style {
	switch s {
	case treeview.StyleGuide:
		return m.styles.Guide
	case treeview.StyleRoot:
		return m.styles.Root
	case treeview.StyleDirectory:
		return m.styles.Directory
	case treeview.StyleSymlink:
		return m.styles.Symlink
	case treeview.StyleRestricted:
		return m.styles.Restricted
	case treeview.StyleFoldMark:
		return m.styles.FoldMark
	default:
		return m.styles.File
	}
}

// styleTreeLine applies span styles. The focused line keeps its guides and
// draws the entry itself with the focus background.
func (m *Model) styleTreeLine(line treeview.Line) string {
	var b strings.Builder
	pos := 0
	focusFrom := len(line.Text)
	if line.Focused {
		focusFrom = 0
		for _, sp := range line.Spans {
			if sp.Style != treeview.StyleGuide {
				focusFrom = sp.Start
				break
			}
		}
	}
	for _, sp := range line.Spans {
		if sp.Start < pos || sp.End > len(line.Text) {
			continue
		}
		if sp.Start >= focusFrom {
			break
		}
		if sp.Start > pos {
			b.WriteString(line.Text[pos:sp.Start])
		}
		end := min(sp.End, focusFrom)
		b.WriteString(m.styleFor(sp.Style).Render(line.Text[sp.Start:end]))
		pos = end
	}
	if pos < focusFrom {
		b.WriteString(line.Text[pos:focusFrom])
		pos = focusFrom
	}
	if pos < len(line.Text) {
		b.WriteString(m.styles.Focused.Render(line.Text[pos:]))
	}
	return b.String()
}

func (m *Model) statusLine() styledLine {
	if m.errMsg != "" {
		return styledLine{text: "Error: " + m.errMsg, style: m.styles.Error}
	}
	t := m.nav.Tree()
	id := m.nav.Focused()
	parts := []string{describe(t, id), fmt.Sprintf("%d/%d", m.nav.Cursor+1, m.nav.Len())}
	if m.loading {
		parts = append(parts, "reloading…")
	}
	if m.changes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s on disk", m.changes, plural(m.changes, "change", "changes")))
	}
	if m.backendLastErr != "" {
		parts = append(parts, "watch: "+m.backendLastErr)
	}
	return styledLine{text: strings.Join(parts, " · "), style: m.styles.Status}
}

// describe summarises a node for the status line.
func describe(t *tree.Tree, id tree.ID) string {
	node := t.Node(id)
	switch {
	case node.Restricted:
		return fmt.Sprintf("%s %s (unreadable)", node.Kind, t.RelPath(id))
	case node.Kind == tree.Directory:
		n := len(node.Children)
		return fmt.Sprintf("%s %s (%d %s)", node.Kind, t.RelPath(id), n, plural(n, "entry", "entries"))
	case node.Kind == tree.Symlink:
		return fmt.Sprintf("%s %s -> %s", node.Kind, t.RelPath(id), node.Target)
	default:
		return fmt.Sprintf("%s %s (%s)", node.Kind, t.RelPath(id), humanize.Bytes(uint64(max(node.Size, 0))))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.help.Width = m.width
	m.syncViewport()
	return nil
}

// maxVisibleItems returns the number of rows left for the tree, or -1 when
// the height is unknown.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 1 // status line
	if m.showHelp {
		used += 1 + len(m.keys.helpLines())
	}
	if m.infoMsg != "" {
		used += 2
	}
	if m.showFooter && !m.showHelp {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
	m.syncViewport()
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText(ellipsis, width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText(ellipsis, width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if ansi.StringWidth(text) > width {
				text = truncate.StringWithTail(text, uint(width), ellipsis)
			}
		} else {
			text = truncateText(text, width)
		}
		result[i] = styledLine{text: text, style: line.style, raw: line.raw}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if !line.raw && line.style != nil && text != "" {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return runewidth.Truncate(text, 1, "")
	}
	return runewidth.Truncate(text, width, ellipsis)
}
