package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcin-skalski/repo-doc/internal/dashboard"
	"github.com/marcin-skalski/repo-doc/internal/metrics"
	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

var (
	colorCritical = lipgloss.Color("196") // red
	colorWarning  = lipgloss.Color("214") // orange
	colorFresh    = lipgloss.Color("46")  // green
	colorInfo     = lipgloss.Color("39")  // blue
	colorMuted    = lipgloss.Color("240") // gray
	colorText     = lipgloss.Color("252")
	colorAccent   = lipgloss.Color("212") // pink

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorInfo).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorMuted)

	rowStyle = lipgloss.NewStyle().
			Foreground(colorText)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorInfo).
				Background(lipgloss.Color("237"))

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(colorMuted).
			PaddingRight(1).
			MarginRight(1)

	navItemStyle = lipgloss.NewStyle().
			Foreground(colorText)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorInfo)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(colorMuted).
			PaddingLeft(1).
			PaddingRight(1)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorInfo).
			Padding(0, 1)

	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWarning).
			MarginTop(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	barStyle = lipgloss.NewStyle().
			Foreground(colorInfo)
)

func severityColor(s metrics.Severity) lipgloss.Color {
	switch s {
	case metrics.Critical:
		return colorCritical
	case metrics.Warning:
		return colorWarning
	default:
		return colorFresh
	}
}

func severityBadge(s metrics.Severity, text string) string {
	return badgeStyle.Background(severityColor(s)).Render(text)
}

func stateBadge(state string) string {
	color := colorFresh
	switch state {
	case snapshot.StateClosed:
		color = colorCritical
	case snapshot.StateMerged:
		color = colorAccent
	}
	return badgeStyle.Background(color).Render(state)
}

func noticeStyle(k dashboard.NoticeKind) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch k {
	case dashboard.NoticeSuccess:
		return s.Foreground(colorFresh)
	case dashboard.NoticeError:
		return s.Foreground(colorCritical)
	default:
		return s.Foreground(colorInfo)
	}
}

func insightStyle(healthy bool) lipgloss.Style {
	if healthy {
		return lipgloss.NewStyle().Foreground(colorFresh)
	}
	return lipgloss.NewStyle().Foreground(colorWarning)
}
