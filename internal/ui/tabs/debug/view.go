package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbridges/modpay-tui/internal/ui/styles"
	"github.com/mbridges/modpay-tui/internal/version"
)

// View renders the debug tab content.
func (m *Model) View() string {
	var b strings.Builder

	if m.confirmReset {
		b.WriteString(styles.ErrorTextStyle.Render("Reset account? This wipes the session and all snapshot history."))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("Press Enter to confirm, any other key to cancel"))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if snaps := m.renderSnapshots(); snaps != "" {
		b.WriteString(snaps)
		b.WriteString("\n")
	}
	b.WriteString(styles.CardTitleStyle.Render("Fetch Traces"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())

	return styles.DocStyle.Render(b.String())
}

func (m *Model) renderStatus() string {
	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render("Sync Status"))

	state := "online"
	style := styles.StatusOnlineStyle
	switch {
	case m.status.AuthRequired:
		state = "auth required"
		style = styles.StatusAuthStyle
	case m.status.Offline:
		state = "offline"
		style = styles.StatusOfflineStyle
	}
	lines = append(lines, fmt.Sprintf("State:        %s", style.Render(state)))

	if !m.status.LastSuccess.IsZero() {
		lines = append(lines, fmt.Sprintf("Last success: %s", m.status.LastSuccess.Format(time.RFC3339)))
	}
	if !m.status.LastAttempt.IsZero() {
		lines = append(lines, fmt.Sprintf("Last attempt: %s", m.status.LastAttempt.Format(time.RFC3339)))
	}
	if m.status.LastError != "" {
		lines = append(lines, "Last error:   "+styles.ErrorTextStyle.Render(m.status.LastError))
	}

	if m.config != nil {
		lines = append(lines, "")
		lines = append(lines, styles.HelpStyle.Render("Database: "+m.config.DatabasePath))
		lines = append(lines, styles.HelpStyle.Render("Session:  "+m.config.SessionPath))
		lines = append(lines, styles.HelpStyle.Render("Widget:   "+m.config.WidgetPath))
	}
	lines = append(lines, styles.HelpStyle.Render("Version:  "+version.GetVersion()))

	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderSnapshots() string {
	if len(m.snapshots) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render("Recent Snapshots"))
	for _, snap := range m.snapshots {
		lines = append(lines, fmt.Sprintf("%s  total=%.2f (primary=%.2f secondary=%.2f) %s",
			snap.Timestamp.Format(time.RFC3339),
			snap.Total(), snap.PrimaryRevenue, snap.SecondaryRevenue, snap.Currency))
	}
	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTraces() string {
	if len(m.traces) == 0 {
		return styles.HelpStyle.Render("No fetches recorded yet")
	}

	var sections []string
	for _, trace := range m.traces {
		sections = append(sections, trace.String())
	}
	return strings.Join(sections, "\n\n")
}
