package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kraken-console/internal/alerts"
	"kraken-console/internal/assistant"
	"kraken-console/internal/catalog"
	"kraken-console/internal/portal"
)

var (
	cellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#1E3A5F")).
			Padding(0, 1)
	fullscreenStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#2DD4BF")).
			Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
	trayStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#1E3A5F")).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	krakenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2DD4BF")).Bold(true)
)

func panelWidth(total int) int {
	w := total / 3
	if w < 34 {
		w = 34
	}
	return w
}

func (m *Model) View() string {
	var body string
	if fs, ok := m.portals.Fullscreen(); ok {
		body = m.renderFullscreen(fs)
	} else if m.assistant.State() == assistant.StateIdle && !m.portals.HasOpenPortals() {
		body = m.renderIdle()
	} else {
		body = m.renderGrid()
	}

	sections := []string{}
	if m.tray == catalog.EdgeTop {
		sections = append(sections, m.renderTopTray())
	}
	sections = append(sections, body, m.statusLine())
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.tray == catalog.EdgeLeft || m.tray == catalog.EdgeRight {
		tray := m.renderSideTray(m.tray)
		if m.tray == catalog.EdgeLeft {
			return lipgloss.JoinHorizontal(lipgloss.Top, tray, content)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, content, tray)
	}
	return content
}

// renderIdle is the centered affordance shown before any interaction.
func (m *Model) renderIdle() string {
	lines := []string{
		krakenStyle.Render("K R A K E N"),
		"",
		assistant.Greeting,
		"",
		faintStyle.Render("F2 to speak · move the pointer to an edge for portals · q to quit"),
	}
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// renderGrid draws the 3x3 slot grid. When the assistant panel is
// visible it occupies the top-left cell, which is exactly the slot the
// corner ordering hands out last.
func (m *Model) renderGrid() string {
	cellW := m.width/3 - 2
	cellH := m.bodyHeight()/3 - 2
	if cellW < 18 {
		cellW = 18
	}
	if cellH < 3 {
		cellH = 3
	}

	byPos := map[portal.Position]portal.Open{}
	for _, p := range m.portals.Grid() {
		if p.Position != nil {
			byPos[*p.Position] = p
		}
	}

	rows := make([]string, 0, 3)
	for r := 0; r < 3; r++ {
		cells := make([]string, 0, 3)
		for c := 0; c < 3; c++ {
			pos := portal.Position{Row: r, Col: c}
			if r == 0 && c == 0 && m.assistant.Visible() {
				cells = append(cells, m.renderAssistantPanel(cellW, cellH))
				continue
			}
			if p, ok := byPos[pos]; ok {
				cells = append(cells, m.renderCell(p, cellW, cellH))
				continue
			}
			cells = append(cells, cellStyle.Width(cellW).Height(cellH).Render(faintStyle.Render("·")))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCell(p portal.Open, w, h int) string {
	lines := []string{titleStyle.Render(runewidth.Truncate(p.Title, w-2, "…"))}
	lines = append(lines, faintStyle.Render(string(p.Category)))
	if p.ID == "alerts" {
		lines = append(lines, m.alertSummaryLine())
	}
	if len(p.Context) > 0 {
		lines = append(lines, faintStyle.Render(contextLine(p.Context, w-2)))
	}
	return cellStyle.Width(w).Height(h).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFullscreen(p portal.Open) string {
	w := m.width - 4
	h := m.bodyHeight() - 2
	header := titleStyle.Render(p.Title) + "  " + faintStyle.Render(string(p.Category))

	var body string
	if p.ID == "alerts" {
		body = m.renderAlertList(w)
	} else {
		lines := []string{p.Description}
		if len(p.Context) > 0 {
			lines = append(lines, "", faintStyle.Render(contextLine(p.Context, w)))
		}
		body = strings.Join(lines, "\n")
	}

	hint := faintStyle.Render("esc to close")
	if p.ID == "alerts" {
		hint = faintStyle.Render("↑/↓ select · ctrl+y copy · esc to close")
	}
	content := lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", hint)

	if m.assistant.Visible() {
		panel := m.renderAssistantPanel(panelWidth(m.width)-2, 0)
		content = lipgloss.JoinVertical(lipgloss.Left, content, panel)
	}
	return fullscreenStyle.Width(w).Height(h).Render(content)
}

func (m *Model) renderAlertList(w int) string {
	list := m.visibleAlerts()
	if len(list) == 0 {
		return faintStyle.Render("No active alerts.")
	}
	lines := make([]string, 0, len(list))
	for i, a := range list {
		marker := "  "
		if i == m.alertSel {
			marker = selectedStyle.Render("› ")
		}
		line := fmt.Sprintf("%s%s %s %s",
			marker,
			severityBadge(a.Severity),
			runewidth.Truncate(a.Title, w-30, "…"),
			faintStyle.Render(a.Status))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderAssistantPanel(w, h int) string {
	msgs := m.assistant.Messages()
	shown := msgs
	if len(shown) > 4 {
		shown = shown[len(shown)-4:]
	}
	lines := []string{krakenStyle.Render("KRAKEN")}
	for _, msg := range shown {
		prefix := "◆ "
		if msg.Role == assistant.RoleUser {
			prefix = "» "
		}
		text := runewidth.Truncate(msg.Content, (w-4)*2, "…")
		lines = append(lines, prefix+text)
	}
	if m.pending {
		lines = append(lines, m.spin.View()+faintStyle.Render(" processing"))
	}
	lines = append(lines, m.textarea.View())
	if suggestions := m.searchSuggestions(); len(suggestions) > 0 {
		lines = append(lines, suggestions...)
	}
	style := panelStyle.Width(w)
	if h > 0 {
		style = style.Height(h)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// searchSuggestions lists the portals a pending /query would match,
// best first.
func (m *Model) searchSuggestions() []string {
	value := strings.TrimSpace(m.textarea.Value())
	query, ok := strings.CutPrefix(value, "/")
	if !ok || strings.TrimSpace(query) == "" {
		return nil
	}
	matches := catalog.Match(strings.TrimSpace(query))
	if len(matches) > 5 {
		matches = matches[:5]
	}
	out := make([]string, 0, len(matches))
	for i, d := range matches {
		line := fmt.Sprintf("  %s %s", d.Title, faintStyle.Render(string(d.Category)))
		if i == 0 {
			line = selectedStyle.Render("› ") + strings.TrimPrefix(line, "  ")
		}
		out = append(out, line)
	}
	return out
}

func (m *Model) renderTopTray() string {
	items := catalog.Tray(catalog.EdgeTop)
	parts := make([]string, 0, len(items))
	for i, d := range items {
		parts = append(parts, fmt.Sprintf("%s %s", faintStyle.Render(fmt.Sprintf("[%d]", i+1)), d.Title))
	}
	return trayStyle.Width(m.width - 2).Render(strings.Join(parts, "  "))
}

func (m *Model) renderSideTray(edge catalog.Edge) string {
	items := catalog.Tray(edge)
	title := "Specialized"
	if edge == catalog.EdgeRight {
		title = "AI Engine"
	}
	lines := []string{titleStyle.Render(title)}
	for i, d := range items {
		lines = append(lines, fmt.Sprintf("%s %s", faintStyle.Render(fmt.Sprintf("[%d]", i+1)), runewidth.Truncate(d.Title, 20, "…")))
	}
	return trayStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) statusLine() string {
	conn := criticalStyle.Render("● offline")
	if m.connected {
		conn = okStyle.Render("● connected")
	}
	parts := []string{conn, m.alertSummaryLine()}
	if m.lastAction != "" {
		parts = append(parts, faintStyle.Render("last: "+m.lastAction))
	}
	if m.connErr != "" {
		parts = append(parts, criticalStyle.Render(runewidth.Truncate(m.connErr, 40, "…")))
	}
	if m.err != nil {
		parts = append(parts, criticalStyle.Render(m.err.Error()))
	}
	return faintStyle.Render(" ") + strings.Join(parts, faintStyle.Render(" · "))
}

func (m *Model) alertSummaryLine() string {
	list := m.visibleAlerts()
	active := 0
	for _, a := range list {
		if a.Status == alerts.StatusActive {
			active++
		}
	}
	return fmt.Sprintf("%d alerts (%d active)", len(list), active)
}

func (m *Model) bodyHeight() int {
	h := m.height - 1
	if m.tray == catalog.EdgeTop {
		h -= 3
	}
	if h < 9 {
		h = 9
	}
	return h
}

func contextLine(ctx map[string]any, w int) string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ctx[k]))
	}
	return runewidth.Truncate(strings.Join(parts, " "), w, "…")
}

func severityBadge(severity string) string {
	label := fmt.Sprintf("%-8s", strings.ToUpper(severity))
	switch severity {
	case alerts.SeverityCritical:
		return criticalStyle.Render(label)
	case alerts.SeverityHigh:
		return highStyle.Render(label)
	default:
		return faintStyle.Render(label)
	}
}
