package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/quicklaunch/internal/menu"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	footerHint      = "↑/↓ move  enter open  → submenu  backspace clear  esc back  ctrl+c quit"
	separatorGlyph  = "─"
	submenuGlyph    = "›"
	itemIndicator   = "▌"
	ellipsis        = "…"
	infoLifetime    = 5 * time.Second
	reservedBottom  = 2 // status + filter prompt
	defaultSepWidth = 16
)

// line is one row of the view. prefix and body are styled separately so the
// selection highlight starts after the indicator column. Raw bodies already
// carry ANSI escapes.
type line struct {
	prefix      string
	prefixStyle *lipgloss.Style
	body        string
	style       *lipgloss.Style
	raw         bool
}

// View implements tea.Model.
func (m *Model) View() string {
	rows := make([]line, 0, 16)
	if header := m.menuHeader(); header != "" {
		rows = append(rows, line{body: header, style: styles.Header})
	}
	if current := m.currentLevel(); current != nil {
		rows = append(rows, m.levelLines(current)...)
	}
	if info := m.currentInfo(); info != "" {
		rows = append(rows, line{}, line{body: info, style: styles.Info})
	}
	if m.showFooter {
		rows = append(rows, line{}, line{body: footerHint, style: styles.Footer})
	}
	rows = clipRows(rows, m.height-reservedBottom)
	rows = append(rows, m.statusLine(), line{body: m.filterPrompt(), raw: true})

	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.render(m.width)
	}
	return strings.Join(out, "\n")
}

// levelLines renders the visible window of the level's items.
func (m *Model) levelLines(current *level) []line {
	m.syncViewport(current)
	if len(current.Items) == 0 {
		msg := "(no entries)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		}
		return []line{{body: msg, style: styles.Info}}
	}
	start, end := 0, len(current.Items)
	if limit := m.maxVisibleItems(); limit > 0 && end > limit {
		start = current.ViewportOffset
		if start > end-limit {
			start = end - limit
			current.ViewportOffset = start
		}
		end = start + limit
	}
	rows := make([]line, 0, end-start)
	for i := start; i < end; i++ {
		item := current.Items[i]
		rows = append(rows, m.entryLine(current.EntryFor(item), item.Label, i == current.Cursor))
	}
	return rows
}

func (m *Model) statusLine() line {
	switch {
	case m.errMsg != "":
		return line{body: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	case m.loading && m.pendingLabel != "":
		return line{body: m.spinner.View() + " " + m.pendingLabel, raw: true}
	}
	return line{}
}

// entryLine renders one menu entry. Only actionable entries take the
// selection highlight.
func (m *Model) entryLine(entry *menu.Entry, label string, selected bool) line {
	row := line{prefix: itemIndicator, prefixStyle: styles.ItemIndicator, style: styles.Item}
	glyph := " "
	suffix := ""
	if entry != nil {
		if entry.Icon != nil && entry.Icon.Glyph != "" {
			glyph = entry.Icon.Glyph
		}
		switch entry.Kind {
		case menu.KindFolder:
			row.style = styles.Folder
			suffix = " " + submenuGlyph
		case menu.KindAction:
			row.style = styles.Action
		case menu.KindSeparator:
			row.style = styles.Separator
			label = strings.Repeat(separatorGlyph, m.separatorWidth())
		case menu.KindPlaceholder:
			row.style = styles.Placeholder
			switch entry.Tag {
			case menu.TagLoading:
				row.body = " " + m.spinner.View() + " " + render(styles.Loading, label)
				row.raw = true
				return row
			case menu.TagError:
				row.style = styles.Error
			}
		}
	}
	if selected && entry.Actionable() {
		row.prefixStyle = styles.SelectedItemIndicator
		row.style = styles.SelectedItem
	}
	row.body = " " + glyph + " " + label + suffix
	return row
}

// render truncates the row to width and applies its styles. Styled rows are
// padded so a selection background spans the full width.
func (l line) render(width int) string {
	body := l.body
	if width > 0 {
		avail := width - lipgloss.Width(l.prefix)
		if avail < 1 {
			return render(l.prefixStyle, l.prefix)
		}
		body = truncate.StringWithTail(body, uint(avail), ellipsis)
		if !l.raw && l.style != nil {
			if pad := avail - lipgloss.Width(body); pad > 0 {
				body += strings.Repeat(" ", pad)
			}
		}
	}
	if !l.raw {
		body = render(l.style, body)
	}
	return render(l.prefixStyle, l.prefix) + body
}

func render(style *lipgloss.Style, value string) string {
	if style == nil || value == "" {
		return value
	}
	return style.Render(value)
}

// clipRows keeps at most height rows, replacing the overflow with an ellipsis.
func clipRows(rows []line, height int) []line {
	if height <= 0 || len(rows) <= height {
		return rows
	}
	clipped := append([]line(nil), rows[:height-1]...)
	return append(clipped, line{body: ellipsis})
}

func (m *Model) separatorWidth() int {
	switch {
	case m.width <= 0 || m.width > 24:
		return defaultSepWidth
	case m.width < 6:
		return 1
	}
	return m.width - 5
}

func (m *Model) menuHeader() string {
	segments := make([]string, 0, len(m.stack))
	for i, lvl := range m.stack {
		segment := strings.TrimSpace(lvl.Title)
		if i == 0 && segment == "" {
			segment = m.rootTitle
		}
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return strings.Join(segments, menuHeaderSeparator)
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
	m.syncViewport(m.currentLevel())
	return nil
}

// maxVisibleItems is the number of item rows that fit, or -1 when the height
// is unknown.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := reservedBottom
	if m.menuHeader() != "" {
		used++
	}
	if m.currentInfo() != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	if remain := m.height - used; remain > 1 {
		return remain
	}
	return 1
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(infoLifetime)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.forceClearInfo()
	}
	return m.infoMsg
}
