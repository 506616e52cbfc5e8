package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcin-skalski/repo-doc/internal/metrics"
	"github.com/marcin-skalski/repo-doc/internal/snapshot"
)

func newDispatcher(remote *fakeRemote, token string) *Dispatcher {
	return NewDispatcher(remote, fakeCreds(token), fakeURLs{}, nil)
}

// run drives one mutating action through confirm, execute and complete.
func run(t *testing.T, d *Dispatcher, s State, a Action, accept bool) State {
	t.Helper()
	s, eff := d.Trigger(s, a)
	require.Nil(t, eff)
	require.NotNil(t, s.Pending)
	assert.Equal(t, a, *s.Pending)

	s, eff = d.Resolve(s, accept)
	assert.Nil(t, s.Pending)
	if eff == nil {
		return s
	}
	m, ok := eff.(Mutate)
	require.True(t, ok, "expected Mutate, got %T", eff)
	require.NotNil(t, s.InFlight)
	return d.Complete(s, d.Execute(context.Background(), m))
}

func TestCompareBranchNavigates(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "")

	s, eff := d.Trigger(loadedState(), CompareBranch("feature-x"))
	assert.Equal(t, Navigate{URL: "web/acme/app/compare/develop...feature-x"}, eff)
	assert.Nil(t, s.Pending)
	assert.Equal(t, NoticeInfo, s.Notice.Kind)
	assert.Zero(t, remote.calls())
}

func TestViewPRNavigates(t *testing.T) {
	d := newDispatcher(&fakeRemote{}, "")
	_, eff := d.Trigger(loadedState(), ViewPR(42))
	assert.Equal(t, Navigate{URL: "web/acme/app/pull/42"}, eff)
}

func TestTriggerWithoutRepository(t *testing.T) {
	d := newDispatcher(&fakeRemote{}, "tok")
	snap := testSnapshot()
	snap.RepoInfo[0].Owner = ""
	s, eff := d.Trigger(New().Loaded(snap), ViewPR(42))
	assert.Nil(t, eff)
	assert.Equal(t, NoticeError, s.Notice.Kind)
}

func TestTriggerUnknownTarget(t *testing.T) {
	d := newDispatcher(&fakeRemote{}, "tok")
	s, eff := d.Trigger(loadedState(), DeleteBranch("nope"))
	assert.Nil(t, eff)
	assert.Nil(t, s.Pending)
	assert.Equal(t, NoticeError, s.Notice.Kind)
}

func TestClosePRDeclined(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "tok")
	before := loadedState()

	s := run(t, d, before, ClosePR(42), false)

	assert.Zero(t, remote.calls())
	assert.Same(t, before.Snapshot, s.Snapshot)
	assert.Equal(t, before.Notice, s.Notice, "declining posts nothing")
	assert.Nil(t, s.InFlight)
}

func TestClosePRWithoutToken(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "")

	s := run(t, d, loadedState(), ClosePR(42), true)

	assert.Zero(t, remote.calls())
	require.NotNil(t, s.Notice)
	assert.Equal(t, NoticeError, s.Notice.Kind)
	assert.Contains(t, s.Notice.Text, "token not found")
	pr, _ := s.Snapshot.PullRequest(42)
	assert.Equal(t, snapshot.StateOpen, pr.State)
}

func TestClosePRSuccess(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "tok")
	before := loadedState()
	openBefore := before.Counts().OpenPRs

	s := run(t, d, before, ClosePR(42), true)

	assert.Equal(t, []int{42}, remote.closed)
	pr, _ := s.Snapshot.PullRequest(42)
	assert.Equal(t, snapshot.StateClosed, pr.State)
	assert.Equal(t, openBefore-1, s.Counts().OpenPRs)
	assert.Len(t, s.Snapshot.OpenPRs, 2, "closing never removes the PR")
	assert.Equal(t, NoticeSuccess, s.Notice.Kind)
	assert.Nil(t, s.InFlight)

	old, _ := before.Snapshot.PullRequest(42)
	assert.Equal(t, snapshot.StateOpen, old.State, "previous state value is untouched")
}

func TestClosePRRefreshesPRMetrics(t *testing.T) {
	d := newDispatcher(&fakeRemote{}, "tok")
	before := loadedState()
	require.Equal(t, 1, metrics.SummarizePRs(before.Snapshot.OpenPRs).Stale)
	require.False(t, metrics.Insights(before.Snapshot)[1].Healthy)

	s := run(t, d, before, ClosePR(7), true)

	st := metrics.SummarizePRs(s.Snapshot.OpenPRs)
	assert.Equal(t, 1, st.Open)
	assert.Equal(t, 0, st.Stale)
	velocity := metrics.Insights(s.Snapshot)[1]
	assert.Equal(t, "Good", velocity.Value)
	assert.True(t, velocity.Healthy)
}

func TestClosePRAlreadyClosed(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "tok")
	s := run(t, d, loadedState(), ClosePR(42), true)

	s, eff := d.Trigger(s, ClosePR(42))
	assert.Nil(t, eff)
	assert.Nil(t, s.Pending)
	assert.Contains(t, s.Notice.Text, "already closed")
	assert.Len(t, remote.closed, 1)
}

func TestDeleteBranchSuccess(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "tok")

	s := run(t, d, loadedState(), DeleteBranch("feature-x"), true)

	assert.Equal(t, []string{"tok acme/app feature-x"}, remote.deleted)
	assert.Equal(t, []string{"hotfix"}, names(s.Snapshot.StaleBranches))
	assert.Equal(t, 1, s.Counts().StaleBranches)
	assert.Contains(t, s.Notice.Text, "deleted successfully")
}

func TestRemoteFailureLeavesStateUnchanged(t *testing.T) {
	remote := &fakeRemote{err: errors.New("HTTP 403: Resource not accessible")}
	d := newDispatcher(remote, "tok")
	before := loadedState()

	s := run(t, d, before, DeleteBranch("feature-x"), true)

	assert.Len(t, remote.deleted, 1, "exactly one attempt")
	assert.Same(t, before.Snapshot, s.Snapshot)
	assert.Equal(t, NoticeError, s.Notice.Kind)
	assert.Contains(t, s.Notice.Text, "Error deleting branch")
	assert.Contains(t, s.Notice.Text, "403")
	assert.Nil(t, s.InFlight)

	s = run(t, d, s, ClosePR(7), true)
	assert.Contains(t, s.Notice.Text, "Error closing PR")
	pr, _ := s.Snapshot.PullRequest(7)
	assert.Equal(t, snapshot.StateOpen, pr.State)
}

func TestSecondMutationWhileInFlight(t *testing.T) {
	remote := &fakeRemote{}
	d := newDispatcher(remote, "tok")

	s, _ := d.Trigger(loadedState(), DeleteBranch("feature-x"))
	s, eff := d.Resolve(s, true)
	require.IsType(t, Mutate{}, eff)

	s, eff = d.Trigger(s, ClosePR(42))
	assert.Nil(t, eff)
	assert.Nil(t, s.Pending)
	assert.Contains(t, s.Notice.Text, "Still waiting")

	// Read-only actions are still allowed.
	_, eff = d.Trigger(s, ViewPR(42))
	assert.IsType(t, Navigate{}, eff)
}

func TestResolveWithoutPending(t *testing.T) {
	d := newDispatcher(&fakeRemote{}, "tok")
	s := loadedState()
	got, eff := d.Resolve(s, true)
	assert.Nil(t, eff)
	assert.Equal(t, s, got)
}

func TestReloadDropsPending(t *testing.T) {
	d := newDispatcher(&fakeRemote{}, "tok")
	s, _ := d.Trigger(loadedState(), DeleteBranch("hotfix"))
	require.NotNil(t, s.Pending)
	s = s.Loaded(testSnapshot())
	assert.Nil(t, s.Pending)
}

func TestActionPrompt(t *testing.T) {
	assert.Equal(t, `Are you sure you want to delete branch "x"?`, DeleteBranch("x").Prompt())
	assert.Equal(t, "Are you sure you want to close PR #3?", ClosePR(3).Prompt())
	assert.True(t, ClosePR(3).Mutating())
	assert.False(t, ViewPR(3).Mutating())
}
