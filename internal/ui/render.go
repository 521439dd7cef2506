package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/slatehart/logdeck/internal/console"
)

// detailRows is the height of the metadata pane when it is open.
const detailRows = 5

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.styles
	sep := "  "

	var parts []string
	parts = append(parts, styles.Logo.Render("logdeck"))

	shown := len(m.display)
	retained := m.con.EntryCount()
	parts = append(parts,
		styles.MutedText.Render("Entries:")+" "+
			styles.Text.Render(fmt.Sprintf("%d/%d", shown, retained)))

	parts = append(parts,
		styles.MutedText.Render("Total:")+" "+
			styles.Text.Render(fmt.Sprintf("%d", m.con.TotalAdded())))

	if dropped := m.con.Dropped(); dropped > 0 {
		parts = append(parts,
			styles.MutedText.Render("Dropped:")+" "+
				styles.WarningText.Render(fmt.Sprintf("%d", dropped)))
	}

	if blocked := m.con.BlockedPatterns(); blocked > 0 {
		parts = append(parts,
			styles.MutedText.Render("Blocked:")+" "+
				styles.DangerText.Render(fmt.Sprintf("%d", blocked)))
	}

	if m.con.Processing() {
		parts = append(parts,
			styles.AccentText.Render(fmt.Sprintf("filtering… %d so far", m.lastResult.PartialCount)))
	}

	if !m.follow {
		parts = append(parts, styles.WarningText.Render("PAUSED"))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderCommandBar renders the key hints plus the active filter state.
func (m Model) renderCommandBar() string {
	styles := m.styles
	sep := "  "

	// Level tri-states, rendered by current filter state.
	filter := m.con.Filter()
	var levelParts []string
	for i, level := range console.Levels() {
		name := level.String()
		label := fmt.Sprintf("%d:%s", i+1, name[:3])
		switch filter.LevelState(level) {
		case console.TriIncluded:
			levelParts = append(levelParts, styles.SuccessText.Render(label))
		case console.TriExcluded:
			levelParts = append(levelParts, styles.DangerText.Render(label))
		default:
			levelParts = append(levelParts, styles.FaintText.Render(label))
		}
	}

	followLabel := "Pause"
	if !m.follow {
		followLabel = "Follow"
	}
	type cmd struct{ key, desc string }
	commands := []cmd{
		{"/", "Search"},
		{"Space", followLabel},
		{"o", "Category"},
		{"x", "Clear filters"},
		{"d", "Detail"},
		{"?", "Help"},
	}

	segments := make([]string, 0, len(commands)+3)
	segments = append(segments, strings.Join(levelParts, " "))
	for _, c := range commands {
		segments = append(segments,
			styles.AccentText.Render(c.key)+":"+styles.MutedText.Render(c.desc))
	}

	if term := filter.Search(); term != "" {
		mode := "i"
		if filter.CaseSensitive() {
			mode = "s"
		}
		segments = append(segments,
			styles.AccentText.Render("/"+truncate(term, 18)+" ("+mode+")"))
	}

	segments = append(segments,
		styles.AccentText.Render("T")+":"+styles.FaintText.Render(m.theme.Name))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, sep))
}

// renderSearchBar renders the live search prompt in place of the
// command bar.
func (m Model) renderSearchBar() string {
	hint := m.styles.MutedText.Render("  enter: apply  esc: cancel")
	return m.styles.Footer.Width(m.width).Render(m.searchInput.View() + hint)
}

// renderLog renders the visible slice of the filtered display list.
func (m Model) renderLog() string {
	rows := m.logRows()
	total := len(m.display)
	if total == 0 {
		return m.styles.FaintText.Render("  no entries match") +
			strings.Repeat("\n", rows-1)
	}

	var b strings.Builder
	for i := 0; i < rows; i++ {
		idx := m.offset + i
		if idx < total {
			b.WriteString(m.renderEntryLine(m.display[idx], idx == m.selected))
		}
		if i < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderEntryLine renders one log line with search highlighting.
func (m Model) renderEntryLine(e *console.Entry, selected bool) string {
	styles := m.styles
	filter := m.con.Filter()

	ts := styles.FaintText.Render(console.FormatTimestamp(e.Timestamp))
	level := styles.LevelStyle(e.Level.String()).Render(fmt.Sprintf("%-5s", e.Level.String()))
	category := m.renderHighlighted("["+e.Category+"]", filter, styles.MutedText)
	message := m.renderHighlighted(e.Message, filter, styles.Text)

	line := ts + " " + level + " " + category + " " + message
	if selected {
		marker := styles.Selected.Render(">")
		return marker + truncateLine(line, m.width-1)
	}
	return " " + truncateLine(line, m.width-1)
}

// renderHighlighted renders text with the active search term's matches
// emphasized, using the console's memoized segmentation.
func (m Model) renderHighlighted(text string, filter *console.Filter, base lipgloss.Style) string {
	term := filter.Search()
	if term == "" {
		return base.Render(text)
	}
	segs := m.con.Highlighter().Segments(text, term, filter.CaseSensitive())
	var b strings.Builder
	for _, seg := range segs {
		if seg.Match {
			b.WriteString(m.styles.Match.Render(seg.Text))
		} else {
			b.WriteString(base.Render(seg.Text))
		}
	}
	return b.String()
}

// renderDetail renders the metadata pane for the selected entry.
func (m Model) renderDetail() string {
	if !m.showDetail {
		return ""
	}
	styles := m.styles

	entry := m.con.ValidateSelection(m.selectedRef)
	if entry == nil {
		lines := []string{
			styles.FaintText.Render("─ detail " + strings.Repeat("─", max(0, m.width-9))),
			styles.MutedText.Render("entry no longer retained"),
			"", "", "",
		}
		return strings.Join(lines[:detailRows], "\n")
	}

	var fields []string
	for _, f := range entry.Data {
		fields = append(fields, f.Key+"="+f.Value)
	}
	fieldLine := "-"
	if len(fields) > 0 {
		fieldLine = strings.Join(fields, "  ")
	}

	lines := []string{
		styles.FaintText.Render("─ detail " + strings.Repeat("─", max(0, m.width-9))),
		styles.MutedText.Render("time:     ") + styles.Text.Render(console.FormatTimestamp(entry.Timestamp)),
		styles.MutedText.Render("level:    ") + styles.LevelStyle(entry.Level.String()).Render(entry.Level.String()) +
			styles.MutedText.Render("   category: ") + styles.Text.Render(entry.Category),
		styles.MutedText.Render("message:  ") + styles.Text.Render(truncate(entry.Message, max(0, m.width-10))),
		styles.MutedText.Render("data:     ") + styles.Text.Render(truncate(fieldLine, max(0, m.width-10))),
	}
	return strings.Join(lines[:detailRows], "\n")
}

// renderHelp renders the key binding overlay.
func (m Model) renderHelp() string {
	styles := m.styles
	type binding struct{ key, desc string }
	bindings := []binding{
		{"/", "search (literal substring)"},
		{"esc", "clear search"},
		{"c", "toggle case-sensitive search"},
		{"1-5", "cycle level filter (include → exclude → clear)"},
		{"o", "cycle selected entry's category filter"},
		{"x", "clear all filters"},
		{"C", "clear all entries"},
		{"space", "pause / follow"},
		{"j/k", "move selection"},
		{"g/G", "jump to top / bottom"},
		{"d", "toggle detail pane"},
		{"T", "cycle theme"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.Logo.Render("logdeck") + styles.MutedText.Render("  key bindings") + "\n\n")
	for _, bd := range bindings {
		b.WriteString("  " + styles.AccentText.Render(fmt.Sprintf("%-7s", bd.key)) +
			styles.Text.Render(bd.desc) + "\n")
	}
	b.WriteString("\n" + styles.FaintText.Render("press any key to close"))
	return b.String()
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// truncateLine clips a styled line to the terminal width without
// counting ANSI escapes as visible characters.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
