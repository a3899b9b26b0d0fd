package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"adpulse/internal/format"
	"adpulse/internal/view"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	riskStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	chipStyle  = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("236"))
	heroStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("81")).
			Padding(1, 2)

	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("117"))
)

const (
	convoHeight = 9
	minWidth    = 40
)

// layout sizes the two viewports from the terminal dimensions.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	// top bar + divider + conversation + input + footer
	chromeH := 1 + 1 + convoHeight + 1 + 1
	dashH := m.height - chromeH
	if dashH < 5 {
		dashH = 5
	}
	if !m.ready {
		m.dashboard = viewport.New(m.width, dashH)
		m.convo = viewport.New(m.width, convoHeight)
		m.ready = true
	} else {
		m.dashboard.Width = m.width
		m.dashboard.Height = dashH
		m.convo.Width = m.width
		m.convo.Height = convoHeight
	}
	m.input.Width = m.width - 4
}

// refreshSurfaces re-renders both viewports from current state.
func (m *Model) refreshSurfaces() {
	if !m.ready {
		return
	}
	atBottom := m.convo.AtBottom()
	m.dashboard.SetContent(m.renderDashboard())
	m.convo.SetContent(m.renderConversation())
	if atBottom {
		m.convo.GotoBottom()
	}
}

func (m *Model) scrollConvoToBottom() {
	if !m.ready {
		return
	}
	m.convo.SetContent(m.renderConversation())
	m.convo.GotoBottom()
}

func (m *Model) View() string {
	if !m.ready {
		return "Starting AdPulse…"
	}
	if m.modal != nil {
		return m.renderModal()
	}

	var b strings.Builder
	b.WriteString(m.renderTopBar())
	b.WriteString("\n")
	b.WriteString(m.dashboard.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", max(m.width, minWidth))))
	b.WriteString("\n")
	b.WriteString(m.convo.View())
	b.WriteString("\n")
	b.WriteString("> " + m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderTopBar() string {
	left := titleStyle.Render("AdPulse")
	sync := m.syncLabel
	switch m.syncLabel {
	case "Syncing…":
		sync = warnStyle.Render("[ " + sync + " ]")
	case "Retry":
		sync = riskStyle.Render("[ " + sync + " ]")
	default:
		sync = dimStyle.Render("[ s: " + sync + " ]")
	}
	last := ""
	if !m.lastSync.IsZero() {
		last = dimStyle.Render("  synced " + format.RelativeTime(m.lastSync, time.Now()))
	}
	return left + "  " + sync + last
}

func (m *Model) renderFooter() string {
	if m.focus == focusInput {
		return dimStyle.Render("enter: ask · esc: back · tab: dashboard · ctrl+c: quit")
	}
	return dimStyle.Render("1-4: card detail · s: sync · r: refresh · tab: ask · q: quit")
}

// renderDashboard lays the full main surface out top to bottom:
// header, chips, hero, delta strip, signal cards, strategic moves.
func (m *Model) renderDashboard() string {
	if m.emptyState || m.current == nil {
		if m.emptyState {
			return "\n  " + warnStyle.Render("No analysis available yet.") + "\n  " +
				dimStyle.Render("Press s to sync your account data, then r to refresh.")
		}
		return "\n  " + dimStyle.Render("Loading latest analysis…")
	}

	var b strings.Builder
	s := m.current

	h := view.BuildHeader(s, time.Now())
	sev := okStyle
	switch h.Severity {
	case view.SeverityBuilding:
		sev = warnStyle
	case view.SeverityRisk:
		sev = riskStyle
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		sev.Render("● "+h.StabilityLabel),
		dimStyle.Render(h.DateRange),
		dimStyle.Render("updated "+h.Freshness)))
	b.WriteString(dimStyle.Render("confidence " + h.ConfidencePct))
	for _, line := range h.Breakdown {
		b.WriteString(dimStyle.Render("  " + line.Name + " " + line.Pct))
	}
	b.WriteString("\n")

	var chips []string
	for _, c := range view.BuildChips(s) {
		chips = append(chips, chipStyle.Render(c.Label))
	}
	b.WriteString(strings.Join(chips, " ") + "\n\n")

	if len(m.heroLines) > 0 {
		idx := m.rotationIdx
		if idx >= len(m.heroLines) {
			idx = 0
		}
		b.WriteString(heroStyle.Render(wrapLine(m.heroLines[idx], m.width-4)) + "\n")
		if len(m.heroLines) > 1 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d", idx+1, len(m.heroLines))) + "\n")
		}
	}
	if m.intelPending {
		b.WriteString(dimStyle.Render("✨ Generating intelligence…") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Key metrics") + "\n")
	for _, row := range view.BuildDeltaStrip(s) {
		b.WriteString(fmt.Sprintf("  %-18s %-14s %s\n", row.Label, row.Value, dimStyle.Render(row.Trend)))
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Signal cards") + "\n")
	for i, card := range view.BuildCards(s, m.intel) {
		b.WriteString(m.renderCard(i+1, card) + "\n")
	}

	b.WriteString(sectionStyle.Render("Strategic moves") + "\n")
	moves := view.BuildMoves(s, m.intel)
	if len(moves) == 0 {
		b.WriteString("  " + dimStyle.Render(view.MovesEmptyState) + "\n")
	}
	for _, mv := range moves {
		b.WriteString(fmt.Sprintf("  %d. %s %s\n", mv.Rank, titleStyle.Render(mv.Title),
			dimStyle.Render("("+mv.Confidence+" confidence)")))
		if mv.Reasoning != "" {
			b.WriteString("     " + wrapLine(mv.Reasoning, m.width-8) + "\n")
		}
		for _, item := range mv.ActionItems {
			b.WriteString("     · " + wrapLine(item, m.width-10) + "\n")
		}
	}

	return b.String()
}

func (m *Model) renderCard(n int, card view.CardView) string {
	var b strings.Builder
	header := fmt.Sprintf("%d · %s", n, card.Title)
	b.WriteString(titleStyle.Render(header) + "  " + statusBadge(card.Status) + "\n")
	for _, line := range card.Metrics {
		b.WriteString(fmt.Sprintf("%-22s %s\n", dimStyle.Render(line.Label), line.Value))
	}
	b.WriteString(wrapLine(card.Narrative, m.width-8))
	if card.Expandable {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("press %d for full analysis", n)))
	}
	w := m.width - 4
	if w < minWidth {
		w = minWidth
	}
	return cardStyle.Width(w).Render(b.String())
}

func statusBadge(status string) string {
	switch status {
	case "Strong", "Healthy", "Active":
		return okStyle.Render("[" + status + "]")
	case "Watch":
		return riskStyle.Render("[" + status + "]")
	default:
		return warnStyle.Render("[" + status + "]")
	}
}

// renderConversation prints the turn log, newest at the bottom.
func (m *Model) renderConversation() string {
	if len(m.turns) == 0 {
		return dimStyle.Render("  Ask a question about your campaign data (tab to focus).")
	}
	var b strings.Builder
	for _, t := range m.turns {
		switch {
		case t.role == "user":
			b.WriteString(userStyle.Render("you ") + t.text + "\n")
		case t.loading:
			b.WriteString(dimStyle.Render("ai  "+t.text) + "\n")
		default:
			b.WriteString(assistantStyle.Render("ai  ") + wrapLine(t.text, m.width-6) + "\n")
			if len(t.panel) > 0 {
				if t.panelOpen {
					for _, line := range t.panel {
						b.WriteString(dimStyle.Render("      "+line) + "\n")
					}
				} else {
					b.WriteString(dimStyle.Render("      [p] supporting signals") + "\n")
				}
			}
		}
	}
	return b.String()
}

// renderModal centers the detail viewer over a blank surface. The body
// is the markdown-restricted deep analysis.
func (m *Model) renderModal() string {
	box, _, _ := m.modalBox()
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// modalBox renders the modal and returns it with its top-left corner
// coordinates, so mouse hit-testing and rendering agree.
func (m *Model) modalBox() (string, int, int) {
	w := m.width - 10
	if w > 78 {
		w = 78
	}
	if w < minWidth {
		w = minWidth
	}
	nodes := format.ParseMarkdown(m.modal.body)
	body := format.RenderNodes(nodes, w-4)
	content := titleStyle.Render(m.modal.title) + "\n\n" + body + "\n\n" +
		dimStyle.Render("esc to close")
	box := modalStyle.Width(w).Render(content)
	x0 := (m.width - lipgloss.Width(box)) / 2
	y0 := (m.height - lipgloss.Height(box)) / 2
	return box, x0, y0
}

// insideModal reports whether a terminal cell falls within the open
// modal box. Clicks outside dismiss it.
func (m *Model) insideModal(x, y int) bool {
	if m.modal == nil {
		return false
	}
	box, x0, y0 := m.modalBox()
	return x >= x0 && x < x0+lipgloss.Width(box) &&
		y >= y0 && y < y0+lipgloss.Height(box)
}

func wrapLine(s string, width int) string {
	if width < 20 {
		width = 20
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				b.WriteString("\n")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}
