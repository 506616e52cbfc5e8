package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

type ActionKind int

const (
	ActionCompareBranch ActionKind = iota
	ActionViewPR
	ActionDeleteBranch
	ActionClosePR
)

// Action is a row action. Branch or Number identifies the target,
// depending on the kind.
type Action struct {
	Kind   ActionKind
	Branch string
	Number int
}

func CompareBranch(name string) Action { return Action{Kind: ActionCompareBranch, Branch: name} }
func ViewPR(number int) Action         { return Action{Kind: ActionViewPR, Number: number} }
func DeleteBranch(name string) Action  { return Action{Kind: ActionDeleteBranch, Branch: name} }
func ClosePR(number int) Action        { return Action{Kind: ActionClosePR, Number: number} }

func (a Action) Mutating() bool {
	return a.Kind == ActionDeleteBranch || a.Kind == ActionClosePR
}

// Prompt is the confirmation question for a mutating action.
func (a Action) Prompt() string {
	switch a.Kind {
	case ActionDeleteBranch:
		return fmt.Sprintf("Are you sure you want to delete branch %q?", a.Branch)
	case ActionClosePR:
		return fmt.Sprintf("Are you sure you want to close PR #%d?", a.Number)
	default:
		return ""
	}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionCompareBranch:
		return "compare " + a.Branch
	case ActionViewPR:
		return fmt.Sprintf("view #%d", a.Number)
	case ActionDeleteBranch:
		return "delete " + a.Branch
	case ActionClosePR:
		return fmt.Sprintf("close #%d", a.Number)
	default:
		return "unknown action"
	}
}

// Effect is work the caller must perform after a transition. A nil
// Effect means there is nothing to do.
type Effect interface {
	effect()
}

// Navigate opens URL outside the dashboard. Its outcome is not observed.
type Navigate struct {
	URL string
}

// Mutate is a single remote call. Pass it to Dispatcher.Execute.
type Mutate struct {
	Action Action
	Owner  string
	Repo   string
	Token  string
}

func (Navigate) effect() {}
func (Mutate) effect()   {}

// Result is the outcome of executing a Mutate.
type Result struct {
	Action Action
	Err    error
}

// Remote performs the two mutations against the hosting API.
type Remote interface {
	DeleteBranch(ctx context.Context, token, owner, repo, branch string) error
	ClosePullRequest(ctx context.Context, token, owner, repo string, number int) error
}

// Credentials supplies the access token, if one has been entered.
type Credentials interface {
	Token() (string, bool)
}

// URLs builds the links read-only actions open.
type URLs interface {
	CompareURL(owner, repo, base, head string) string
	PullRequestURL(owner, repo string, number int) string
}

const missingTokenText = "GitHub token not found. Please set your token."

// Dispatcher turns row actions into effects. Its transition methods are
// pure; only Execute talks to the network.
type Dispatcher struct {
	remote Remote
	creds  Credentials
	urls   URLs
	logger *slog.Logger
}

func NewDispatcher(remote Remote, creds Credentials, urls URLs, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{remote: remote, creds: creds, urls: urls, logger: logger}
}

// Trigger handles a click on a row action. Read-only actions yield a
// Navigate effect; mutating actions park in State.Pending until Resolve.
func (d *Dispatcher) Trigger(s State, a Action) (State, Effect) {
	repo, err := s.Repo()
	if err != nil {
		return s.Post(NoticeError, fmt.Sprintf("Cannot %s: %v", a, err)), nil
	}
	if !s.hasTarget(a) {
		return s.Post(NoticeError, fmt.Sprintf("Cannot %s: not in snapshot", a)), nil
	}

	switch a.Kind {
	case ActionCompareBranch:
		base := repo.DefaultBranch
		if base == "" {
			base = "main"
		}
		url := d.urls.CompareURL(repo.Owner, repo.Name, base, a.Branch)
		return s.Post(NoticeInfo, "Opening compare view for branch: "+a.Branch), Navigate{URL: url}
	case ActionViewPR:
		url := d.urls.PullRequestURL(repo.Owner, repo.Name, a.Number)
		return s.Post(NoticeInfo, fmt.Sprintf("Opening PR #%d", a.Number)), Navigate{URL: url}
	}

	if s.InFlight != nil {
		return s.Post(NoticeInfo, fmt.Sprintf("Still waiting for %s to finish", *s.InFlight)), nil
	}
	if a.Kind == ActionClosePR {
		if pr, _ := s.Snapshot.PullRequest(a.Number); !pr.IsOpen() {
			return s.Post(NoticeInfo, fmt.Sprintf("PR #%d is already %s", a.Number, pr.State)), nil
		}
	}
	pending := a
	s.Pending = &pending
	return s, nil
}

// Resolve answers the pending confirmation. Declining is silent.
func (d *Dispatcher) Resolve(s State, accepted bool) (State, Effect) {
	if s.Pending == nil {
		return s, nil
	}
	a := *s.Pending
	s.Pending = nil
	if !accepted {
		return s, nil
	}

	token, ok := d.creds.Token()
	if !ok {
		return s.Post(NoticeError, missingTokenText), nil
	}
	repo, err := s.Repo()
	if err != nil {
		return s.Post(NoticeError, fmt.Sprintf("Cannot %s: %v", a, err)), nil
	}

	inflight := a
	s.InFlight = &inflight
	return s, Mutate{Action: a, Owner: repo.Owner, Repo: repo.Name, Token: token}
}

// Execute makes exactly one remote call for m. There is no retry.
func (d *Dispatcher) Execute(ctx context.Context, m Mutate) Result {
	var err error
	switch m.Action.Kind {
	case ActionDeleteBranch:
		err = d.remote.DeleteBranch(ctx, m.Token, m.Owner, m.Repo, m.Action.Branch)
	case ActionClosePR:
		err = d.remote.ClosePullRequest(ctx, m.Token, m.Owner, m.Repo, m.Action.Number)
	default:
		err = fmt.Errorf("%s is not a remote action", m.Action)
	}
	if err != nil {
		d.logger.Error("remote action failed", "action", m.Action.String(), "repo", m.Owner+"/"+m.Repo, "err", err)
	} else {
		d.logger.Info("remote action succeeded", "action", m.Action.String(), "repo", m.Owner+"/"+m.Repo)
	}
	return Result{Action: m.Action, Err: err}
}

// Complete applies a finished remote call. Local data changes only on
// success.
func (d *Dispatcher) Complete(s State, r Result) State {
	s.InFlight = nil
	a := r.Action

	if r.Err != nil {
		switch a.Kind {
		case ActionDeleteBranch:
			return s.Post(NoticeError, fmt.Sprintf("Error deleting branch: %v", r.Err))
		case ActionClosePR:
			return s.Post(NoticeError, fmt.Sprintf("Error closing PR: %v", r.Err))
		default:
			return s.Post(NoticeError, r.Err.Error())
		}
	}

	switch a.Kind {
	case ActionDeleteBranch:
		if next, ok := s.Snapshot.WithoutBranch(a.Branch); ok {
			s.Snapshot = next
		}
		return s.Post(NoticeSuccess, fmt.Sprintf("Branch %q deleted successfully!", a.Branch))
	case ActionClosePR:
		if next, ok := s.Snapshot.WithPullRequestState(a.Number, snapshot.StateClosed); ok {
			s.Snapshot = next
		}
		return s.Post(NoticeSuccess, fmt.Sprintf("PR #%d closed successfully!", a.Number))
	}
	return s
}

func (s State) hasTarget(a Action) bool {
	switch a.Kind {
	case ActionCompareBranch, ActionDeleteBranch:
		_, ok := s.Snapshot.Branch(a.Branch)
		return ok
	case ActionViewPR, ActionClosePR:
		_, ok := s.Snapshot.PullRequest(a.Number)
		return ok
	}
	return false
}
