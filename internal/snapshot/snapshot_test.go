package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  // generated by the nightly health job
  "stale_branches": [
    {"branch": "feature-x", "author": "alice", "date": "2024-01-02", "message": "wip", "days_inactive": "35 days", "last_commit": 840.0, "commits": "12 commits"},
    {"branch": "fix/login", "author": "bob", "date": "2024-02-01", "message": "fix", "days_inactive": "3 days", "commits": "12 commits"},
  ],
  "open_prs": [
    {"title": "Add cache", "number": 42, "creater": "carol", "created_at": "2024-02-03", "days_active": 2, "state": "open", "reviewers": ["dave"]}
  ],
  "repo_info": [
    {"name": "app", "owner": "acme", "default_branch": "main", "visibility": "public",
     "license": {"key": "mit", "name": "MIT License", "spdx_id": "MIT"}, "contributors": ["alice", "bob"]}
  ],
  "monthly_activity": {"commits": {"2024-01": 4}, "branches": {}, "prs": {"2024-02": 1}}
}`

func TestDecode(t *testing.T) {
	snap, err := Decode([]byte(sampleJSON))
	require.NoError(t, err)

	require.Len(t, snap.StaleBranches, 2)
	assert.Equal(t, "feature-x", snap.StaleBranches[0].Name)
	assert.Equal(t, Duration("35 days"), snap.StaleBranches[0].DaysInactive)

	require.Len(t, snap.OpenPRs, 1)
	pr := snap.OpenPRs[0]
	assert.Equal(t, "carol", pr.Author, "creater key is accepted as author")
	assert.Equal(t, Duration("2 days"), pr.DaysActive, "numeric days are normalized")
	assert.True(t, pr.IsOpen())

	repo, ok := snap.Repo()
	require.True(t, ok)
	assert.Equal(t, "acme/app", repo.FullName())
	assert.Equal(t, License("MIT"), repo.License)

	require.NotNil(t, snap.MonthlyActivity)
	assert.Equal(t, 4, snap.MonthlyActivity.Commits["2024-01"])
	assert.Nil(t, snap.Analytics)
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"malformed", `{"stale_branches": [`},
		{"missing key", `{"stale_branches": [], "open_prs": []}`},
		{"duplicate branch", `{"stale_branches": [{"branch": "a"}, {"branch": "a"}], "open_prs": [], "repo_info": []}`},
		{"duplicate pr", `{"stale_branches": [], "open_prs": [{"number": 1}, {"number": 1}], "repo_info": []}`},
		{"non-positive pr", `{"stale_branches": [], "open_prs": [{"number": 0}], "repo_info": []}`},
		{"bad state", `{"stale_branches": [], "open_prs": [{"number": 1, "state": "draft"}], "repo_info": []}`},
		{"two repos", `{"stale_branches": [], "open_prs": [], "repo_info": [{}, {}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.json))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoad)
		})
	}
}

func TestDecodeBranchNameKey(t *testing.T) {
	snap, err := Decode([]byte(`{"stale_branches": [{"name": "feature-y", "days_inactive": "8 days"}, {"branch": "main-fix", "name": "ignored"}], "open_prs": [], "repo_info": []}`))
	require.NoError(t, err)
	require.Len(t, snap.StaleBranches, 2)
	assert.Equal(t, "feature-y", snap.StaleBranches[0].Name)
	assert.Equal(t, "main-fix", snap.StaleBranches[1].Name, "branch key wins over name")
}

func TestDurationLargeNumbers(t *testing.T) {
	tests := []struct {
		in   string
		want Duration
	}{
		{`12.7`, "12 days"},
		{`1e300`, "9223372036854775807 days"},
		{`-1e300`, "-9223372036854775808 days"},
		{`9.3e18`, "9223372036854775807 days"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			require.NoError(t, d.UnmarshalJSON([]byte(tt.in)))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestLicenseVariants(t *testing.T) {
	snap, err := Decode([]byte(`{"stale_branches": [], "open_prs": [], "repo_info": [{"license": null}]}`))
	require.NoError(t, err)
	assert.Equal(t, License(""), snap.RepoInfo[0].License)

	snap, err = Decode([]byte(`{"stale_branches": [], "open_prs": [], "repo_info": [{"license": "Apache-2.0"}]}`))
	require.NoError(t, err)
	assert.Equal(t, License("Apache-2.0"), snap.RepoInfo[0].License)

	snap, err = Decode([]byte(`{"stale_branches": [], "open_prs": [], "repo_info": [{"license": {"key": "other", "name": "Other", "spdx_id": "NOASSERTION"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, License("Other"), snap.RepoInfo[0].License)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	snap, err := FileSource{Path: path}.Load()
	require.NoError(t, err)
	assert.Len(t, snap.StaleBranches, 2)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestWithoutBranch(t *testing.T) {
	snap, err := Decode([]byte(sampleJSON))
	require.NoError(t, err)

	next, ok := snap.WithoutBranch("feature-x")
	require.True(t, ok)
	require.Len(t, next.StaleBranches, 1)
	assert.Equal(t, "fix/login", next.StaleBranches[0].Name)
	assert.Len(t, snap.StaleBranches, 2, "original is untouched")

	same, ok := snap.WithoutBranch("nope")
	assert.False(t, ok)
	assert.Same(t, snap, same)
}

func TestWithPullRequestState(t *testing.T) {
	snap, err := Decode([]byte(sampleJSON))
	require.NoError(t, err)

	next, ok := snap.WithPullRequestState(42, StateClosed)
	require.True(t, ok)
	assert.Equal(t, StateClosed, next.OpenPRs[0].State)
	assert.Equal(t, StateOpen, snap.OpenPRs[0].State)
	assert.Len(t, next.OpenPRs, len(snap.OpenPRs))

	_, ok = snap.WithPullRequestState(7, StateClosed)
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	snap, err := Decode([]byte(sampleJSON))
	require.NoError(t, err)

	c := snap.Clone()
	c.OpenPRs[0].Reviewers[0] = "mallory"
	c.RepoInfo[0].Contributors[0] = "mallory"
	c.MonthlyActivity.Commits["2024-01"] = 99

	assert.Equal(t, "dave", snap.OpenPRs[0].Reviewers[0])
	assert.Equal(t, "alice", snap.RepoInfo[0].Contributors[0])
	assert.Equal(t, 4, snap.MonthlyActivity.Commits["2024-01"])
}
