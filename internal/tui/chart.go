package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marcin-skalski/repo-doc/internal/dashboard"
	"github.com/marcin-skalski/repo-doc/internal/metrics"
	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

const chartMonths = 6

func renderActivity(s *snapshot.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(panelTitle(dashboard.PanelActivity, ""))
	b.WriteString("\n\n")

	months := metrics.Months(s.MonthlyActivity, chartMonths)
	if len(months) == 0 {
		b.WriteString(emptyStyle.Render("No activity history in snapshot"))
		b.WriteString("\n")
	} else {
		b.WriteString(renderBars(s.MonthlyActivity, months, width))
	}

	b.WriteString("\n" + sectionStyle.Render("Insights") + "\n")
	for _, in := range metrics.Insights(s) {
		b.WriteString(labelStyle.Render(cell(in.Title, 16)))
		b.WriteString(insightStyle(in.Healthy).Render(in.Value))
		b.WriteString(labelStyle.Render(" (" + in.Detail + ")"))
		b.WriteString("\n")
	}

	score, source := healthScore(s)
	b.WriteString(labelStyle.Render(cell("Health score", 16)))
	b.WriteString(insightStyle(score >= 70).Render(fmt.Sprintf("%.1f / 100", score)))
	b.WriteString(labelStyle.Render(" (" + source + ")"))

	if a := s.Analytics; a != nil {
		b.WriteString("\n")
		if a.AverageCommitsPerMonth > 0 {
			b.WriteString("\n" + labelStyle.Render(cell("Commits/month", 16)) + strconv.FormatFloat(a.AverageCommitsPerMonth, 'f', 1, 64))
		}
		if a.MostActiveDay != "" {
			b.WriteString("\n" + labelStyle.Render(cell("Most active day", 16)) + a.MostActiveDay)
		}
		if a.PeakHours != "" {
			b.WriteString("\n" + labelStyle.Render(cell("Peak hours", 16)) + a.PeakHours)
		}
	}
	return b.String()
}

// healthScore prefers the generator's score and falls back to computing
// one from the snapshot.
func healthScore(s *snapshot.Snapshot) (float64, string) {
	if s.Analytics != nil && s.Analytics.RepoHealthScore > 0 {
		return s.Analytics.RepoHealthScore, "from snapshot"
	}
	return metrics.SnapshotHealth(s), "computed"
}

func renderBars(a *snapshot.MonthlyActivity, months []string, width int) string {
	series := []struct {
		name   string
		counts map[string]int
	}{
		{"Commits", a.Commits},
		{"Branches", a.Branches},
		{"PRs", a.PRs},
	}

	peak := 0
	for _, sr := range series {
		for _, mo := range months {
			peak = max(peak, sr.counts[mo])
		}
	}
	barW := max(10, min(50, width-20))

	var b strings.Builder
	for _, sr := range series {
		b.WriteString(sectionStyle.Render(sr.name))
		b.WriteString("\n")
		for _, mo := range months {
			v := sr.counts[mo]
			b.WriteString("  " + labelStyle.Render(mo) + " ")
			b.WriteString(barStyle.Render(strings.Repeat("█", barLen(v, peak, barW))))
			b.WriteString(" " + strconv.Itoa(v) + "\n")
		}
	}
	return b.String()
}

// barLen scales v against peak; any non-zero value gets at least one cell.
func barLen(v, peak, width int) int {
	if v <= 0 || peak <= 0 {
		return 0
	}
	return max(1, v*width/peak)
}
