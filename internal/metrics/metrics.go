// Package metrics derives ages, counts and health verdicts from a snapshot.
// Everything here is pure: same input, same output, in any order.
package metrics

import (
	"math"

	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

// Age thresholds, in days.
const (
	BranchCriticalDays = 30
	BranchWarningDays  = 7
	BranchRecentDays   = 7

	PRStaleDays   = 7
	PRWarningDays = 3
)

// LeadingInt returns the base-10 integer a string starts with, ignoring
// leading spaces. "12 days" gives 12; "soon" gives 0. Values too large
// for an int saturate.
func LeadingInt(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			return math.MaxInt
		}
		n = n*10 + d
	}
	return n
}

func BranchAge(b snapshot.StaleBranch) int { return LeadingInt(string(b.DaysInactive)) }

func PRAge(p snapshot.PullRequest) int { return LeadingInt(string(p.DaysActive)) }

// CountAtLeast counts items whose age is >= threshold.
func CountAtLeast[T any](items []T, threshold int, age func(T) int) int {
	n := 0
	for _, it := range items {
		if age(it) >= threshold {
			n++
		}
	}
	return n
}

// CountBelow counts items whose age is < threshold.
func CountBelow[T any](items []T, threshold int, age func(T) int) int {
	return len(items) - CountAtLeast(items, threshold, age)
}

type Severity int

const (
	Fresh Severity = iota
	Warning
	Critical
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "fresh"
	}
}

func BranchSeverity(days int) Severity {
	switch {
	case days >= BranchCriticalDays:
		return Critical
	case days >= BranchWarningDays:
		return Warning
	default:
		return Fresh
	}
}

func PRSeverity(days int) Severity {
	switch {
	case days >= PRStaleDays:
		return Critical
	case days >= PRWarningDays:
		return Warning
	default:
		return Fresh
	}
}

type BranchStats struct {
	Total          int
	Critical       int
	RecentlyActive int
}

func SummarizeBranches(branches []snapshot.StaleBranch) BranchStats {
	return BranchStats{
		Total:          len(branches),
		Critical:       CountAtLeast(branches, BranchCriticalDays, BranchAge),
		RecentlyActive: CountBelow(branches, BranchRecentDays, BranchAge),
	}
}

type PRStats struct {
	Total       int
	Open        int
	Stale       int
	NeedsReview int
}

// SummarizePRs counts every PR in Total; the remaining counts cover open
// PRs only.
func SummarizePRs(prs []snapshot.PullRequest) PRStats {
	st := PRStats{Total: len(prs)}
	for _, p := range prs {
		if !p.IsOpen() {
			continue
		}
		st.Open++
		if PRAge(p) >= PRStaleDays {
			st.Stale++
		}
		if len(p.Reviewers) > 0 {
			st.NeedsReview++
		}
	}
	return st
}
