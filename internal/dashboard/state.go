// Package dashboard holds the application state and the pure transitions
// the UI drives: panel navigation, per-panel filters, notices, and the
// confirm-then-mutate action protocol.
package dashboard

import (
	"errors"
	"fmt"

	"github.com/marcin-skalski/repo-doc/internal/filter"
	"github.com/marcin-skalski/repo-doc/internal/metrics"
	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

var ErrNoRepository = errors.New("repository owner/name unknown")

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient user-visible message. ID increases with every
// post so an expiry timer only clears the notice it was started for.
type Notice struct {
	ID   int
	Kind NoticeKind
	Text string
}

// State is the whole dashboard state. Every transition returns a new
// value; nothing here is shared or mutated in place.
type State struct {
	Snapshot     *snapshot.Snapshot
	View         View
	BranchFilter filter.Selector
	PRFilter     filter.Selector

	// Pending is the mutating action awaiting confirmation.
	Pending *Action
	// InFlight is the mutating action whose remote call has not returned.
	InFlight *Action

	Notice *Notice

	// Fallback identifies the repository when the snapshot has none.
	Fallback snapshot.RepoInfo

	noticeSeq int
}

func New() State {
	return State{View: NewView()}
}

// Loaded installs a freshly loaded snapshot. Any pending confirmation
// refers to the old data and is dropped.
func (s State) Loaded(snap *snapshot.Snapshot) State {
	s.Snapshot = snap
	s.Pending = nil
	return s.Post(NoticeSuccess, "Data loaded successfully!")
}

// LoadFailed keeps whatever snapshot was showing and reports the error.
func (s State) LoadFailed(err error) State {
	return s.Post(NoticeError, fmt.Sprintf("Error loading data: %v", err))
}

func (s State) SelectPanel(p Panel) State {
	s.View = s.View.Select(p)
	return s
}

func (s State) NextPanel() State {
	s.View = s.View.Next()
	return s
}

func (s State) OpenNav() State {
	s.View = s.View.OpenNav()
	return s
}

func (s State) DismissNav() State {
	s.View = s.View.DismissNav()
	return s
}

func (s State) SetBranchFilter(sel filter.Selector) (State, error) {
	if !filter.BranchLevels.Contains(sel) {
		return s, fmt.Errorf("branch filter %s not offered", sel)
	}
	s.BranchFilter = sel
	return s, nil
}

func (s State) SetPRFilter(sel filter.Selector) (State, error) {
	if !filter.PRLevels.Contains(sel) {
		return s, fmt.Errorf("PR filter %s not offered", sel)
	}
	s.PRFilter = sel
	return s, nil
}

func (s State) CycleBranchFilter() State {
	s.BranchFilter = filter.BranchLevels.Next(s.BranchFilter)
	return s
}

func (s State) CyclePRFilter() State {
	s.PRFilter = filter.PRLevels.Next(s.PRFilter)
	return s
}

// CycleFilter advances the filter of the active panel, if it has one.
func (s State) CycleFilter() State {
	switch s.View.Active {
	case PanelStaleBranches:
		return s.CycleBranchFilter()
	case PanelOpenPRs:
		return s.CyclePRFilter()
	}
	return s
}

func (s State) VisibleBranches() []snapshot.StaleBranch {
	if s.Snapshot == nil {
		return nil
	}
	return filter.Apply(s.Snapshot.StaleBranches, s.BranchFilter, metrics.BranchAge)
}

func (s State) VisiblePRs() []snapshot.PullRequest {
	if s.Snapshot == nil {
		return nil
	}
	return filter.Apply(s.Snapshot.OpenPRs, s.PRFilter, metrics.PRAge)
}

// Counts are the navigation badges.
type Counts struct {
	StaleBranches int
	OpenPRs       int
}

func (s State) Counts() Counts {
	if s.Snapshot == nil {
		return Counts{}
	}
	return Counts{
		StaleBranches: len(s.Snapshot.StaleBranches),
		OpenPRs:       metrics.SummarizePRs(s.Snapshot.OpenPRs).Open,
	}
}

// Repo returns the repository actions and links refer to.
func (s State) Repo() (snapshot.RepoInfo, error) {
	if repo, ok := s.Snapshot.Repo(); ok {
		if repo.FullName() == "" {
			return repo, ErrNoRepository
		}
		return repo, nil
	}
	if s.Fallback.FullName() == "" {
		return s.Fallback, ErrNoRepository
	}
	return s.Fallback, nil
}

func (s State) Post(kind NoticeKind, text string) State {
	s.noticeSeq++
	s.Notice = &Notice{ID: s.noticeSeq, Kind: kind, Text: text}
	return s
}

// ClearNotice removes the notice only if it is still the one with id.
func (s State) ClearNotice(id int) State {
	if s.Notice != nil && s.Notice.ID == id {
		s.Notice = nil
	}
	return s
}
