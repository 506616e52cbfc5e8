package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/marcin-skalski/repo-doc/internal/dashboard"
	"github.com/marcin-skalski/repo-doc/internal/metrics"
)

// Used until the first WindowSizeMsg arrives.
const defaultWidth = 120

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(renderHeader(m.state, m.loading))
	b.WriteString("\n\n")

	cursor := -1
	switch m.state.View.Active {
	case dashboard.PanelStaleBranches:
		cursor = m.branchCursor
	case dashboard.PanelOpenPRs:
		cursor = m.prCursor
	}

	switch {
	case width >= narrowWidth:
		sidebar := sidebarStyle.Render(renderNav(m.state))
		panel := renderPanel(m.state, m.state.View.Active, cursor, width-lipgloss.Width(sidebar), m.now())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, panel))
	case m.state.View.NavOpen:
		b.WriteString(overlayStyle.Render(renderNav(m.state)))
	default:
		b.WriteString(renderPanel(m.state, m.state.View.Active, cursor, width, m.now()))
	}
	b.WriteString("\n")

	switch {
	case m.editingToken:
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString(labelStyle.Render("  enter: save  esc: cancel"))
		b.WriteString("\n")
	case m.state.Pending != nil:
		b.WriteString(confirmStyle.Render(m.state.Pending.Prompt() + "  y: confirm  n: cancel"))
		b.WriteString("\n")
	case m.state.InFlight != nil:
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " " + inFlightLabel(*m.state.InFlight))
		b.WriteString("\n")
	}

	if n := m.state.Notice; n != nil {
		b.WriteString("\n")
		b.WriteString(noticeStyle(n.Kind).Render(n.Text))
		b.WriteString("\n")
	}

	footer := m.help.View(m.keys)
	if width < narrowWidth && !m.help.ShowAll {
		footer = "m menu • " + footer
	}
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

// RenderReport renders panels without interactive chrome, for non-TUI
// output.
func RenderReport(state dashboard.State, panels []dashboard.Panel, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	now := time.Now()

	var b strings.Builder
	b.WriteString(renderHeader(state, false))
	for _, p := range panels {
		b.WriteString("\n\n")
		b.WriteString(renderPanel(state, p, -1, width, now))
	}
	b.WriteString("\n")
	return b.String()
}

func renderHeader(state dashboard.State, loading bool) string {
	repo := "(no repository)"
	if r, err := state.Repo(); err == nil {
		repo = r.FullName()
	}
	c := state.Counts()
	header := fmt.Sprintf("repo-doc │ %s │ %d stale branches │ %d open PRs", repo, c.StaleBranches, c.OpenPRs)
	if loading {
		header += " │ loading…"
	}
	return headerStyle.Render(header)
}

func renderNav(state dashboard.State) string {
	c := state.Counts()
	var b strings.Builder
	for i, p := range dashboard.Panels {
		if i > 0 {
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%d %s", i+1, p.Title())
		if p == state.View.Active {
			line = navActiveStyle.Render("▸ " + line)
		} else {
			line = navItemStyle.Render("  " + line)
		}
		switch p {
		case dashboard.PanelStaleBranches:
			line += " " + badgeStyle.Render(strconv.Itoa(c.StaleBranches))
		case dashboard.PanelOpenPRs:
			line += " " + badgeStyle.Render(strconv.Itoa(c.OpenPRs))
		}
		b.WriteString(line)
	}
	return b.String()
}

func renderPanel(state dashboard.State, p dashboard.Panel, cursor, width int, now time.Time) string {
	if state.Snapshot == nil {
		return sectionStyle.Render(p.Title()) + "\n" + emptyStyle.Render("No data loaded")
	}
	switch p {
	case dashboard.PanelStaleBranches:
		return renderBranches(state, cursor, width)
	case dashboard.PanelOpenPRs:
		return renderPRs(state, cursor, width)
	case dashboard.PanelRepoInfo:
		return renderRepo(state, now)
	case dashboard.PanelActivity:
		return renderActivity(state.Snapshot, width)
	}
	return ""
}

func panelTitle(p dashboard.Panel, filterLabel string) string {
	title := sectionStyle.Render(p.Title())
	if filterLabel != "" {
		title += labelStyle.Render("  filter: " + filterLabel + " (f)")
	}
	return title
}

func renderBranches(state dashboard.State, cursor, width int) string {
	var b strings.Builder
	b.WriteString(panelTitle(dashboard.PanelStaleBranches, state.BranchFilter.Label()))
	b.WriteString("\n")

	st := metrics.SummarizeBranches(state.Snapshot.StaleBranches)
	b.WriteString(labelStyle.Render(fmt.Sprintf("Total %d · Critical (%d+ days) %d · Recently active (<%d days) %d",
		st.Total, metrics.BranchCriticalDays, st.Critical, metrics.BranchRecentDays, st.RecentlyActive)))
	b.WriteString("\n\n")

	rows := state.VisibleBranches()
	if len(rows) == 0 {
		if state.BranchFilter.IsAll() {
			b.WriteString(emptyStyle.Render("No stale branches"))
		} else {
			b.WriteString(emptyStyle.Render("No branches inactive for " + state.BranchFilter.Label()))
		}
		return b.String()
	}

	const nameW, authorW, ageW, commitsW = 24, 14, 12, 8
	msgW := max(10, width-nameW-authorW-ageW-commitsW-6)

	b.WriteString(columnHeaderStyle.Render("  " + cell("BRANCH", nameW) + " " + cell("AUTHOR", authorW) + " " +
		cell("INACTIVE", ageW) + " " + cell("COMMITS", commitsW) + " " + "LAST COMMIT"))
	for i, br := range rows {
		age := metrics.BranchAge(br)
		badge := padStyled(severityBadge(metrics.BranchSeverity(age), br.DaysInactive.String()), ageW)

		lead := cell(br.Name, nameW) + " " + cell(br.Author, authorW)
		marker := "  "
		if i == cursor {
			marker = "▸ "
			lead = selectedRowStyle.Render(lead)
		} else {
			lead = rowStyle.Render(lead)
		}
		b.WriteString("\n")
		b.WriteString(marker + lead + " " + badge + " " + cell(br.Commits, commitsW) + " " +
			runewidth.Truncate(firstLine(br.Message), msgW, "…"))
	}
	return b.String()
}

func renderPRs(state dashboard.State, cursor, width int) string {
	var b strings.Builder
	b.WriteString(panelTitle(dashboard.PanelOpenPRs, state.PRFilter.Label()))
	b.WriteString("\n")

	st := metrics.SummarizePRs(state.Snapshot.OpenPRs)
	b.WriteString(labelStyle.Render(fmt.Sprintf("Total %d · Open %d · Stale (%d+ days) %d · Needs review %d",
		st.Total, st.Open, metrics.PRStaleDays, st.Stale, st.NeedsReview)))
	b.WriteString("\n\n")

	rows := state.VisiblePRs()
	if len(rows) == 0 {
		if state.PRFilter.IsAll() {
			b.WriteString(emptyStyle.Render("No open pull requests"))
		} else {
			b.WriteString(emptyStyle.Render("No PRs open for " + state.PRFilter.Label()))
		}
		return b.String()
	}

	const numW, authorW, ageW, stateW, reviewersW = 6, 14, 12, 9, 22
	titleW := max(12, width-numW-authorW-ageW-stateW-reviewersW-7)

	b.WriteString(columnHeaderStyle.Render("  " + cell("#", numW) + " " + cell("TITLE", titleW) + " " +
		cell("AUTHOR", authorW) + " " + cell("AGE", ageW) + " " + cell("STATE", stateW) + " " + "REVIEWERS"))
	for i, pr := range rows {
		age := metrics.PRAge(pr)
		lead := cell("#"+strconv.Itoa(pr.Number), numW) + " " + cell(pr.Title, titleW) + " " + cell(pr.Author, authorW)
		marker := "  "
		if i == cursor {
			marker = "▸ "
			lead = selectedRowStyle.Render(lead)
		} else {
			lead = rowStyle.Render(lead)
		}
		b.WriteString("\n")
		b.WriteString(marker + lead + " " +
			padStyled(severityBadge(metrics.PRSeverity(age), pr.DaysActive.String()), ageW) + " " +
			padStyled(stateBadge(pr.State), stateW) + " " +
			runewidth.Truncate(reviewerList(pr.Reviewers), reviewersW, "…"))
	}
	return b.String()
}

// reviewerList shows the first two reviewers and a count of the rest.
func reviewerList(reviewers []string) string {
	switch len(reviewers) {
	case 0:
		return "-"
	case 1, 2:
		return strings.Join(reviewers, ", ")
	default:
		return strings.Join(reviewers[:2], ", ") + " +" + strconv.Itoa(len(reviewers)-2)
	}
}

func renderRepo(state dashboard.State, now time.Time) string {
	var b strings.Builder
	b.WriteString(panelTitle(dashboard.PanelRepoInfo, ""))
	b.WriteString("\n\n")

	repo, ok := state.Snapshot.Repo()
	if !ok {
		b.WriteString(emptyStyle.Render("No repository information in snapshot"))
		return b.String()
	}

	name := repo.FullName()
	if name == "" {
		name = repo.Name
	}
	b.WriteString(rowStyle.Bold(true).Render(name))
	if repo.Description != "" {
		b.WriteString("\n" + repo.Description)
	}
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		b.WriteString(labelStyle.Render(cell(label, 16)) + value + "\n")
	}
	field("Language", repo.Language)
	field("Visibility", repo.Visibility)
	field("License", string(repo.License))
	field("Default branch", repo.DefaultBranch)
	field("Forks", humanize.Comma(int64(repo.ForksCount)))
	field("Open issues", humanize.Comma(int64(repo.OpenIssuesCount)))

	b.WriteString("\n" + sectionStyle.Render("Timeline") + "\n")
	field("Created", relTime(repo.CreatedAt, now))
	field("Updated", relTime(repo.UpdatedAt, now))
	field("Last push", relTime(repo.PushedAt, now))
	if created, ok := parseTime(repo.CreatedAt); ok && !created.After(now) {
		field("Age", humanize.Comma(int64(now.Sub(created).Hours()/24))+" days")
	}

	b.WriteString("\n" + sectionStyle.Render(fmt.Sprintf("Contributors (%d)", len(repo.Contributors))) + "\n")
	if len(repo.Contributors) == 0 {
		b.WriteString(emptyStyle.Render("none listed"))
	} else {
		b.WriteString(strings.Join(repo.Contributors, ", "))
	}
	return b.String()
}

func parseTime(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func relTime(raw string, now time.Time) string {
	t, ok := parseTime(raw)
	if !ok {
		return raw
	}
	return t.Format(time.DateOnly) + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

func inFlightLabel(a dashboard.Action) string {
	switch a.Kind {
	case dashboard.ActionDeleteBranch:
		return fmt.Sprintf("Deleting branch %q...", a.Branch)
	case dashboard.ActionClosePR:
		return fmt.Sprintf("Closing PR #%d...", a.Number)
	}
	return a.String() + "..."
}

// cell truncates or pads plain text to exactly w columns.
func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// padStyled pads an already styled string to w visible columns.
func padStyled(s string, w int) string {
	if n := ansi.StringWidth(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
