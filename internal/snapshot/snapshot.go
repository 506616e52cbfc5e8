package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Snapshot is the pre-generated repository health report the dashboard
// renders. It is treated as immutable; the With* helpers return copies.
type Snapshot struct {
	StaleBranches []StaleBranch `json:"stale_branches"`
	OpenPRs       []PullRequest `json:"open_prs"`
	RepoInfo      []RepoInfo    `json:"repo_info"`

	// Optional sections written by the snapshot generator.
	MonthlyActivity *MonthlyActivity `json:"monthly_activity,omitempty"`
	Analytics       *Analytics       `json:"analytics,omitempty"`
}

type StaleBranch struct {
	Name            string   `json:"branch"`
	Author          string   `json:"author"`
	Date            string   `json:"date"`
	Message         string   `json:"message"`
	DaysInactive    Duration `json:"days_inactive"`
	LastCommitHours float64  `json:"last_commit,omitempty"`
	Commits         string   `json:"commits"`
}

func (b *StaleBranch) UnmarshalJSON(data []byte) error {
	type plain StaleBranch
	var aux struct {
		plain
		AltName string `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = StaleBranch(aux.plain)
	if b.Name == "" {
		b.Name = aux.AltName
	}
	return nil
}

type PullRequest struct {
	Title      string   `json:"title"`
	Number     int      `json:"number"`
	Author     string   `json:"author"`
	CreatedAt  string   `json:"created_at"`
	DaysActive Duration `json:"days_active"`
	State      string   `json:"state"`
	URL        string   `json:"url,omitempty"`
	Reviewers  []string `json:"reviewers"`
}

// PR lifecycle states.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateMerged = "merged"
)

func (p *PullRequest) UnmarshalJSON(data []byte) error {
	type plain PullRequest
	var aux struct {
		plain
		Creater string `json:"creater"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PullRequest(aux.plain)
	if p.Author == "" {
		p.Author = aux.Creater
	}
	if p.State == "" {
		p.State = StateOpen
	}
	p.State = strings.ToLower(p.State)
	return nil
}

func (p PullRequest) IsOpen() bool {
	return p.State == StateOpen
}

type RepoInfo struct {
	Name            string   `json:"name"`
	Owner           string   `json:"owner"`
	Description     string   `json:"description"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at"`
	Language        string   `json:"language"`
	DefaultBranch   string   `json:"default_branch"`
	Visibility      string   `json:"visibility"`
	ForksCount      int      `json:"forks_count"`
	OpenIssuesCount int      `json:"open_issues_count"`
	License         License  `json:"license"`
	Contributors    []string `json:"contributors"`
}

// FullName returns "owner/name", or "" when either part is missing.
func (r RepoInfo) FullName() string {
	if r.Owner == "" || r.Name == "" {
		return ""
	}
	return r.Owner + "/" + r.Name
}

type MonthlyActivity struct {
	Commits  map[string]int `json:"commits"`
	Branches map[string]int `json:"branches"`
	PRs      map[string]int `json:"prs"`
}

type Analytics struct {
	AverageCommitsPerMonth float64 `json:"average_commits_per_month"`
	MostActiveDay          string  `json:"most_active_day"`
	PeakHours              string  `json:"peak_hours"`
	RepoHealthScore        float64 `json:"repo_health_score"`
}

// Duration is a pre-formatted "<N> <unit>" string such as "12 days".
// Generators that emit a bare number are normalized to "<N> days".
type Duration string

func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Duration(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*d = Duration(strconv.FormatInt(i, 10) + " days")
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("duration %s: %w", n, err)
	}
	*d = Duration(strconv.FormatInt(clampDays(f), 10) + " days")
	return nil
}

func (d Duration) String() string { return string(d) }

// clampDays truncates f toward zero, saturating at the int64 range.
func clampDays(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// License accepts a plain identifier, null, or GitHub's license object.
type License string

func (l *License) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = License(s)
		return nil
	}
	var obj struct {
		Key    string `json:"key"`
		Name   string `json:"name"`
		SPDXID string `json:"spdx_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("license: %w", err)
	}
	switch {
	case obj.SPDXID != "" && obj.SPDXID != "NOASSERTION":
		*l = License(obj.SPDXID)
	case obj.Name != "":
		*l = License(obj.Name)
	default:
		*l = License(obj.Key)
	}
	return nil
}

// Repo returns the current repository, if the snapshot has one.
func (s *Snapshot) Repo() (RepoInfo, bool) {
	if s == nil || len(s.RepoInfo) == 0 {
		return RepoInfo{}, false
	}
	return s.RepoInfo[0], true
}

func (s *Snapshot) Branch(name string) (StaleBranch, bool) {
	if s == nil {
		return StaleBranch{}, false
	}
	for _, b := range s.StaleBranches {
		if b.Name == name {
			return b, true
		}
	}
	return StaleBranch{}, false
}

func (s *Snapshot) PullRequest(number int) (PullRequest, bool) {
	if s == nil {
		return PullRequest{}, false
	}
	for _, p := range s.OpenPRs {
		if p.Number == number {
			return p, true
		}
	}
	return PullRequest{}, false
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		StaleBranches: append([]StaleBranch(nil), s.StaleBranches...),
		OpenPRs:       make([]PullRequest, len(s.OpenPRs)),
		RepoInfo:      make([]RepoInfo, len(s.RepoInfo)),
	}
	for i, p := range s.OpenPRs {
		p.Reviewers = append([]string(nil), p.Reviewers...)
		c.OpenPRs[i] = p
	}
	for i, r := range s.RepoInfo {
		r.Contributors = append([]string(nil), r.Contributors...)
		c.RepoInfo[i] = r
	}
	if s.MonthlyActivity != nil {
		c.MonthlyActivity = &MonthlyActivity{
			Commits:  cloneCounts(s.MonthlyActivity.Commits),
			Branches: cloneCounts(s.MonthlyActivity.Branches),
			PRs:      cloneCounts(s.MonthlyActivity.PRs),
		}
	}
	if s.Analytics != nil {
		a := *s.Analytics
		c.Analytics = &a
	}
	return c
}

// WithoutBranch returns a copy with the named branch removed. The bool
// reports whether the branch existed.
func (s *Snapshot) WithoutBranch(name string) (*Snapshot, bool) {
	if _, ok := s.Branch(name); !ok {
		return s, false
	}
	c := s.Clone()
	kept := c.StaleBranches[:0]
	for _, b := range c.StaleBranches {
		if b.Name != name {
			kept = append(kept, b)
		}
	}
	c.StaleBranches = kept
	return c, true
}

// WithPullRequestState returns a copy with the PR's state replaced.
func (s *Snapshot) WithPullRequestState(number int, state string) (*Snapshot, bool) {
	if _, ok := s.PullRequest(number); !ok {
		return s, false
	}
	c := s.Clone()
	for i := range c.OpenPRs {
		if c.OpenPRs[i].Number == number {
			c.OpenPRs[i].State = state
		}
	}
	return c, true
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
