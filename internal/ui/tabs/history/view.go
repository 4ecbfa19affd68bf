package history

import (
	"fmt"
	"strings"

	"github.com/mbridges/modpay-tui/internal/config"
	"github.com/mbridges/modpay-tui/internal/ui/components"
	"github.com/mbridges/modpay-tui/internal/ui/styles"
)

// View renders the history tab content.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderWeek())
	b.WriteString("\n")
	b.WriteString(m.renderTrend())

	return styles.DocStyle.Render(b.String())
}

func (m *Model) renderWeek() string {
	title := "This Week"
	if m.weekOffset < 0 {
		title = fmt.Sprintf("%d Week(s) Ago", -m.weekOffset)
	}

	var lines []string
	lines = append(lines, styles.CardTitleStyle.Render(title))

	if m.weekErr != nil {
		lines = append(lines, styles.ErrorTextStyle.Render(fmt.Sprintf("Failed to load week: %v", m.weekErr)))
		return styles.CardStyle.Render(strings.Join(lines, "\n"))
	}

	if len(m.week) == 0 {
		lines = append(lines, styles.HelpStyle.Render("No earnings recorded yet"))
		return styles.CardStyle.Render(strings.Join(lines, "\n"))
	}

	values := make([]float64, len(m.week))
	labels := make([]string, len(m.week))
	total := 0.0
	for i, d := range m.week {
		values[i] = d.Amount
		labels[i] = d.DayStart.Format("Mon 02")
		total += d.Amount
	}

	lines = append(lines, components.RenderBarChart(values, labels, max(40, m.width-10)))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Week total: %s",
		styles.SuccessTextStyle.Render(components.FormatMoney(total, config.BaseCurrency))))
	lines = append(lines, styles.HelpStyle.Render("←/→ to change week, t for this week"))

	return styles.CardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTrend() string {
	deltas := m.state.GetDeltas()
	if len(deltas) < 2 {
		return ""
	}

	values := make([]float64, len(deltas))
	for i, d := range deltas {
		values[i] = d.Amount
	}

	caption := fmt.Sprintf("daily earnings, last %d days (%s)", len(deltas), config.BaseCurrency)
	chart := components.RenderLineChart(values, max(40, m.width-14), 8, caption)

	return styles.CardStyle.Render(
		styles.CardTitleStyle.Render("Trend") + "\n" + chart,
	)
}
