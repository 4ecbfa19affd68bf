package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mbridges/modpay-tui/internal/models"
	"github.com/mbridges/modpay-tui/internal/ui/components"
	"github.com/mbridges/modpay-tui/internal/ui/styles"
)

// View renders the dashboard tab content.
func (m *Model) View() string {
	revenue := m.state.GetRevenue()
	profile, onboarded := m.state.GetProfile()

	if !onboarded && revenue == nil {
		return m.renderOnboarding()
	}
	if revenue == nil {
		return styles.DocStyle.Render(styles.HelpStyle.Render("Waiting for first sync..."))
	}

	var b strings.Builder

	b.WriteString(m.renderHeadline(revenue))
	b.WriteString("\n")
	b.WriteString(m.renderBreakdown(revenue))
	b.WriteString("\n")
	b.WriteString(m.renderRecentEarnings())
	b.WriteString("\n")
	b.WriteString(m.renderFooter(profile))

	return styles.DocStyle.Render(b.String())
}

func (m *Model) renderOnboarding() string {
	lines := []string{
		styles.TitleStyle.Render("Welcome to modpay"),
		"",
		"No platform session found. To get started either:",
		"",
		"  " + styles.HelpKeyStyle.Render("MODRINTH_TOKEN") + "  set your API token in the environment",
		"  " + styles.HelpKeyStyle.Render("session.json") + "    or run the session capture tool",
		"",
		styles.HelpStyle.Render("The dashboard fills in automatically once a session appears."),
	}
	return styles.DocStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHeadline(revenue *models.CombinedRevenue) string {
	total := components.FormatMoney(revenue.TotalConverted, revenue.Currency)
	headline := styles.MoneyStyle.Render(total)

	if revenue.Degraded {
		headline += "  " + styles.DegradedStyle.Render("(stale)")
	}

	title := styles.CardTitleStyle.Render("Total Revenue")
	last24 := fmt.Sprintf("Last 24h: %s", components.FormatDelta(revenue.Last24hConverted, revenue.Currency))

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		headline,
		styles.HelpStyle.Render(last24),
	)
	return styles.CardStyle.Width(max(40, m.width/2)).Render(content)
}

func (m *Model) renderBreakdown(revenue *models.CombinedRevenue) string {
	rows := [][2]string{
		{"Modrinth", components.FormatMoney(revenue.PrimaryConverted, revenue.Currency)},
		{"CurseForge points", components.FormatMoney(revenue.SecondaryConverted, revenue.Currency)},
	}

	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render("By Source"))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%-18s %s", row[0], styles.SuccessTextStyle.Render(row[1])))
	}

	return styles.CardStyle.Width(max(40, m.width/2)).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderRecentEarnings() string {
	deltas := m.state.GetDeltas()
	if len(deltas) == 0 {
		return ""
	}

	// Last two weeks as a sparkline, newest on the right.
	start := max(0, len(deltas)-14)
	recent := deltas[start:]

	values := make([]float64, len(recent))
	for i, d := range recent {
		values[i] = d.Amount
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Daily Earnings"),
		components.RenderSparkline(values, max(14, len(values))),
		styles.HelpStyle.Render(fmt.Sprintf("last %d days", len(recent))),
	)
	return styles.CardStyle.Width(max(40, m.width/2)).Render(content)
}

func (m *Model) renderFooter(profile models.Profile) string {
	var parts []string

	if profile.Username != "" {
		parts = append(parts, fmt.Sprintf("Signed in as %s", styles.HelpKeyStyle.Render(profile.Username)))
	}

	status := m.state.GetStatus()
	parts = append(parts, m.renderStatus(status))

	if since := m.state.TimeSinceUpdate(); since > 0 {
		parts = append(parts, styles.HelpStyle.Render(fmt.Sprintf("updated %s ago", since.Round(time.Second))))
	}

	return strings.Join(parts, styles.HelpStyle.Render("  •  "))
}

func (m *Model) renderStatus(status models.SyncStatus) string {
	switch {
	case status.AuthRequired:
		return styles.StatusAuthStyle.Render("auth required")
	case status.Offline:
		return styles.StatusOfflineStyle.Render("offline")
	default:
		return styles.StatusOnlineStyle.Render("online")
	}
}
