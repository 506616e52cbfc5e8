package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcin-skalski/repo-doc/internal/filter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "data.json", cfg.SnapshotFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "main", cfg.Repo.DefaultBranch)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIURL)
	assert.Equal(t, "https://github.com", cfg.GitHub.WebURL)
	assert.Equal(t, "GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	assert.Equal(t, 15*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 5*time.Second, cfg.TUI.NoticeTTL)
	assert.True(t, cfg.ShouldPromptToken())
	assert.Equal(t, filter.All, cfg.BranchFilter())
	assert.Equal(t, filter.All, cfg.PRFilter())
	assert.Equal(t, "repo-doc.log", filepath.Base(cfg.LogFile))

	assert.Equal(t, cfg, Default())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
snapshot_file: /srv/report.json
log:
  level: debug
repo:
  owner: acme
  name: app
  default_branch: develop
github:
  api_url: https://ghe.example.com/api/v3
  web_url: https://ghe.example.com
  token_env: GHE_TOKEN
  timeout: 3s
tui:
  notice_ttl: 2s
  prompt_token: false
filters:
  branches: "30"
  prs: 3+
`))
	require.NoError(t, err)

	assert.Equal(t, "/srv/report.json", cfg.SnapshotFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, RepoConfig{Owner: "acme", Name: "app", DefaultBranch: "develop"}, cfg.Repo)
	assert.Equal(t, "GHE_TOKEN", cfg.GitHub.TokenEnv)
	assert.Equal(t, 3*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 2*time.Second, cfg.TUI.NoticeTTL)
	assert.False(t, cfg.ShouldPromptToken())
	assert.Equal(t, filter.AtLeast(30), cfg.BranchFilter())
	assert.Equal(t, filter.AtLeast(3), cfg.PRFilter())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "log: [", "parse config"},
		{"bad timeout", "github:\n  timeout: soon\n", "github.timeout"},
		{"zero timeout", "github:\n  timeout: 0s\n", "must be positive"},
		{"negative ttl", "tui:\n  notice_ttl: -1s\n", "tui.notice_ttl"},
		{"log level", "log:\n  level: loud\n", "log.level"},
		{"api url", "github:\n  api_url: ftp://x\n", "github.api_url"},
		{"web url", "github:\n  web_url: github.com\n", "github.web_url"},
		{"half repo", "repo:\n  owner: acme\n", "set together"},
		{"branch level", "filters:\n  branches: \"3\"\n", "filters.branches"},
		{"pr level", "filters:\n  prs: \"30\"\n", "filters.prs"},
		{"pr garbage", "filters:\n  prs: old\n", "filters.prs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateAfterOverride(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Filters.Branches = "2"
	assert.Error(t, cfg.Validate())
}
