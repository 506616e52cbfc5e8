// Package filter implements the per-panel minimum-age filters.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Selector is either All or a minimum age in days. The zero value is All.
type Selector struct {
	minDays int
}

var All = Selector{}

// AtLeast returns a selector keeping items at least days old. Non-positive
// days collapse to All.
func AtLeast(days int) Selector {
	if days <= 0 {
		return All
	}
	return Selector{minDays: days}
}

// Parse accepts "all" (or "") and positive integers.
func Parse(s string) (Selector, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return All, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
	if err != nil || n <= 0 {
		return All, fmt.Errorf("invalid filter %q (all or a positive number of days)", s)
	}
	return AtLeast(n), nil
}

func (s Selector) IsAll() bool { return s.minDays == 0 }

func (s Selector) MinDays() int { return s.minDays }

func (s Selector) String() string {
	if s.IsAll() {
		return "all"
	}
	return strconv.Itoa(s.minDays)
}

// Label is the human form shown next to a filter control.
func (s Selector) Label() string {
	if s.IsAll() {
		return "all"
	}
	return strconv.Itoa(s.minDays) + "+ days"
}

func (s Selector) Keep(age int) bool {
	return s.IsAll() || age >= s.minDays
}

// Apply returns the items the selector keeps, in their original order.
// The result never aliases items.
func Apply[T any](items []T, sel Selector, age func(T) int) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if sel.Keep(age(it)) {
			out = append(out, it)
		}
	}
	return out
}

// Levels is the ordered set of selectors a panel offers.
type Levels []Selector

var (
	BranchLevels = Levels{All, AtLeast(1), AtLeast(7), AtLeast(30)}
	PRLevels     = Levels{All, AtLeast(1), AtLeast(3), AtLeast(7)}
)

func (l Levels) Contains(s Selector) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Next returns the selector after cur, wrapping around. A selector not in
// the set restarts at the first level.
func (l Levels) Next(cur Selector) Selector {
	if len(l) == 0 {
		return All
	}
	for i, v := range l {
		if v == cur {
			return l[(i+1)%len(l)]
		}
	}
	return l[0]
}
