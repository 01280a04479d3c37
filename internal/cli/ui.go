package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ridopark/closebt/internal/store"
	"github.com/ridopark/closebt/pkg/batch"
	"github.com/ridopark/closebt/pkg/report"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(18)

	gainStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	lossStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))
)

func signed(v float64, format string) string {
	s := fmt.Sprintf(format, v)
	switch {
	case v > 0:
		return gainStyle.Render(s)
	case v < 0:
		return lossStyle.Render(s)
	}
	return s
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderReport draws the headline metrics of one report
func renderReport(strategyName string, r *report.Report) string {
	title := titleStyle.Render(fmt.Sprintf("%s · %s", r.Metrics.Ticker, strategyName))
	if r.Status == report.StatusFailed {
		msg := ""
		if r.ErrorMessage != nil {
			msg = *r.ErrorMessage
		}
		body := strings.Join([]string{
			row("Run", r.RunID),
			row("Status", lossStyle.Render(r.Status)),
			row("Error", msg),
		}, "\n")
		return lipgloss.JoinVertical(lipgloss.Left, title, panelStyle.Render(body))
	}

	m := r.Metrics
	lines := []string{
		row("Run", r.RunID),
		row("Initial capital", fmt.Sprintf("$%.2f", m.InitialCapital)),
		row("Final value", fmt.Sprintf("$%.2f", m.FinalValue)),
		row("Total return", signed(m.TotalReturnPct, "%.2f%%")),
		row("Sharpe", fmt.Sprintf("%.2f", m.SharpeRatio)),
		row("Sortino", fmt.Sprintf("%.2f", m.SortinoRatio)),
		row("Calmar", fmt.Sprintf("%.2f", m.CalmarRatio)),
		row("Max drawdown", signed(-m.MaxDrawdownPct, "%.2f%%")),
		row("Round trips", fmt.Sprintf("%d", m.NumTrades)),
		row("Win rate", fmt.Sprintf("%.1f%%", m.WinRate)),
		row("Profit factor", fmt.Sprintf("%.2f", m.ProfitFactor)),
	}
	if p := r.Performance; p != nil {
		lines = append(lines, row("Period", fmt.Sprintf("%d days (%.2f years)", p.Period.Days, p.Period.Years)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, panelStyle.Render(strings.Join(lines, "\n")))
}

// renderBatch draws one line per variant
func renderBatch(symbol string, outcomes []batch.Outcome) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-24s %10s %8s %10s %7s", "variant", "return", "sharpe", "drawdown", "trades")))
	for _, o := range outcomes {
		b.WriteString("\n")
		if o.Err != nil {
			b.WriteString(fmt.Sprintf("%-24s %s", o.Variant, lossStyle.Render(o.Err.Error())))
			continue
		}
		m := o.Report.Metrics
		b.WriteString(fmt.Sprintf("%-24s %s %8.2f %9.2f%% %7d",
			o.Variant,
			signed(m.TotalReturnPct, "%9.2f%%"),
			m.SharpeRatio,
			m.MaxDrawdownPct,
			m.NumTrades,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(symbol+" batch"), panelStyle.Render(b.String()))
}

// renderRuns draws the archive listing
func renderRuns(runs []store.RunSummary) string {
	if len(runs) == 0 {
		return "No archived runs"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-36s %-8s %-14s %-9s %10s %6s  %s", "run_id", "ticker", "strategy", "status", "return", "trades", "created")))
	for _, r := range runs {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%-36s %-8s %-14s %-9s %s %6d  %s",
			r.RunID, r.Ticker, r.Strategy, r.Status,
			signed(r.TotalReturnPct, "%9.2f%%"),
			r.NumTrades,
			r.CreatedAt.Format("2006-01-02 15:04"),
		))
	}
	return b.String()
}
