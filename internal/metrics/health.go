package metrics

import (
	"math"
	"sort"
	"strconv"

	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

// HealthInputs feeds HealthScore. Nil pointers mean "not tracked" and
// score as healthy.
type HealthInputs struct {
	AvgCommitsPerMonth float64
	TotalBranches      int
	StaleBranches      int
	TotalPRs           int
	OldPRs             int
	TotalIssues        *int
	SlowIssues         *int
	Contributors       *int
}

// HealthScore is a 0..100 weighted score: commit frequency 30%, branch
// hygiene 25%, PR velocity 25%, issue responsiveness 10%, contributor
// diversity 10%. Rounded to two decimals.
func HealthScore(in HealthInputs) float64 {
	commits := math.Min(in.AvgCommitsPerMonth/20*100, 100)

	branches := 100.0
	if in.TotalBranches > 0 {
		branches = float64(in.TotalBranches-in.StaleBranches) / float64(in.TotalBranches) * 100
	}

	prs := 100.0
	if in.TotalPRs > 0 {
		prs = float64(in.TotalPRs-in.OldPRs) / float64(in.TotalPRs) * 100
	}

	issues := 100.0
	if in.TotalIssues != nil && in.SlowIssues != nil && *in.TotalIssues > 0 {
		issues = float64(*in.TotalIssues-*in.SlowIssues) / float64(*in.TotalIssues) * 100
	}

	diversity := 100.0
	if in.Contributors != nil {
		diversity = math.Min(float64(*in.Contributors)/5*100, 100)
	}

	total := 0.30*commits + 0.25*branches + 0.25*prs + 0.10*issues + 0.10*diversity
	return math.Round(total*100) / 100
}

// SnapshotHealth computes HealthScore from what a snapshot carries. Issue
// timings are not part of a snapshot, so that component scores as healthy.
func SnapshotHealth(s *snapshot.Snapshot) float64 {
	if s == nil {
		return 0
	}
	in := HealthInputs{
		AvgCommitsPerMonth: AverageMonthlyCommits(s.MonthlyActivity),
		TotalBranches:      len(s.StaleBranches),
		StaleBranches:      CountAtLeast(s.StaleBranches, BranchCriticalDays, BranchAge),
	}
	for _, p := range s.OpenPRs {
		if !p.IsOpen() {
			continue
		}
		in.TotalPRs++
		if PRAge(p) >= PRStaleDays {
			in.OldPRs++
		}
	}
	if repo, ok := s.Repo(); ok {
		n := len(repo.Contributors)
		in.Contributors = &n
	}
	return HealthScore(in)
}

// AverageMonthlyCommits averages the commit series, or 0 without data.
func AverageMonthlyCommits(a *snapshot.MonthlyActivity) float64 {
	if a == nil || len(a.Commits) == 0 {
		return 0
	}
	sum := 0
	for _, v := range a.Commits {
		sum += v
	}
	return float64(sum) / float64(len(a.Commits))
}

// Months returns the last n "YYYY-MM" keys present in any activity series,
// oldest first.
func Months(a *snapshot.MonthlyActivity, n int) []string {
	if a == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, series := range []map[string]int{a.Commits, a.Branches, a.PRs} {
		for k := range series {
			seen[k] = struct{}{}
		}
	}
	months := make([]string, 0, len(seen))
	for k := range seen {
		months = append(months, k)
	}
	sort.Strings(months)
	if n > 0 && len(months) > n {
		months = months[len(months)-n:]
	}
	return months
}

type Insight struct {
	Title   string
	Value   string
	Detail  string
	Healthy bool
}

// Insights returns the branch-health and PR-velocity verdicts.
func Insights(s *snapshot.Snapshot) []Insight {
	if s == nil {
		return nil
	}
	stale := CountAtLeast(s.StaleBranches, BranchCriticalDays, BranchAge)
	old := SummarizePRs(s.OpenPRs).Stale

	branch := Insight{Title: "Branch Health", Value: "Good", Detail: "All fresh", Healthy: true}
	if stale > 0 {
		branch = Insight{Title: "Branch Health", Value: "Needs Attention", Detail: plural(stale, "stale", "stale")}
	}
	velocity := Insight{Title: "PR Velocity", Value: "Good", Detail: "Up to date", Healthy: true}
	if old > 0 {
		velocity = Insight{Title: "PR Velocity", Value: "Slow", Detail: plural(old, "old PR", "old PRs")}
	}
	return []Insight{branch, velocity}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
