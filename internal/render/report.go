// Package render draws terminal reports for aggregated screen time.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/screenwatch/screenwatch/internal/usage"
)

// Color palette (Catppuccin Mocha subset).
var (
	colorText    = lipgloss.Color("#CDD6F4")
	colorSubtext = lipgloss.Color("#A6ADC8")
	colorDim     = lipgloss.Color("#585B70")
	colorSurface = lipgloss.Color("#45475A")

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – headers
	colorBlue     = lipgloss.Color("#89B4FA") // day headings
	colorGreen    = lipgloss.Color("#A6E3A1") // bars
	colorLavender = lipgloss.Color("#B4BEFE") // totals
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	dayHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	appNameStyle = lipgloss.NewStyle().
			Foreground(colorText)

	durationStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	subtextStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)
)

const (
	barWidth     = 24
	nameColWidth = 36
)

// renderBar draws a proportional usage bar: filled share of the app against
// the largest app in the same group.
func renderBar(seconds, maxSeconds float64, width int) string {
	if width < 3 {
		width = 3
	}
	if maxSeconds <= 0 || seconds <= 0 {
		return lipgloss.NewStyle().Foreground(colorSurface).Render(strings.Repeat("━", width))
	}
	frac := seconds / maxSeconds
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	if filled < 1 {
		filled = 1
	}
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(colorGreen)
	trackStyle := lipgloss.NewStyle().Foreground(colorSurface)
	return filledStyle.Render(strings.Repeat("━", filled)) +
		trackStyle.Render(strings.Repeat("━", empty))
}

// trimName shortens a display name to the column width, counting terminal
// cells rather than bytes so multi-byte names never split mid-rune.
func trimName(name string, width int) string {
	return runewidth.Truncate(name, width, "…")
}

func appLine(app usage.AppTotal, maxSeconds float64) string {
	return fmt.Sprintf("  %s %s %s",
		appNameStyle.Render(fmt.Sprintf("%-*s", nameColWidth, trimName(app.AppName, nameColWidth))),
		renderBar(app.TotalDurationSeconds, maxSeconds, barWidth),
		durationStyle.Render(usage.FormatDuration(app.TotalDurationSeconds)),
	)
}

// Summary renders per-app totals as a ranked list with proportional bars.
func Summary(totals []usage.AppTotal) string {
	if len(totals) == 0 {
		return dimStyle.Render("no usage data") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Screen Time Summary"))
	b.WriteString("\n\n")

	maxSeconds := totals[0].TotalDurationSeconds
	for _, app := range totals {
		b.WriteString(appLine(app, maxSeconds))
		b.WriteString("\n")
	}

	grand := lo.SumBy(totals, func(a usage.AppTotal) float64 { return a.TotalDurationSeconds })
	b.WriteString("\n")
	b.WriteString(subtextStyle.Render(fmt.Sprintf("%d apps, %s total", len(totals), usage.FormatDuration(grand))))
	b.WriteString("\n")
	return b.String()
}

// Daily renders day-by-day buckets, newest first, each with its top apps.
func Daily(days []usage.DayBucket) string {
	if len(days) == 0 {
		return dimStyle.Render("no usage data") + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Daily Screen Time"))
	b.WriteString("\n")

	for _, day := range days {
		b.WriteString("\n")
		b.WriteString(dayHeaderStyle.Render(day.Date.Format("Mon 2006-01-02")))
		b.WriteString(dimStyle.Render("  " + usage.FormatDuration(day.TotalDurationSeconds)))
		b.WriteString("\n")

		maxSeconds := 0.0
		if len(day.Apps) > 0 {
			maxSeconds = day.Apps[0].TotalDurationSeconds
		}
		for _, app := range day.Apps {
			b.WriteString(appLine(app, maxSeconds))
			b.WriteString("\n")
		}
	}
	return b.String()
}
