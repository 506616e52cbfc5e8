package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcin-skalski/repo-doc/internal/filter"
)

type Config struct {
	SnapshotFile string        `yaml:"snapshot_file"`
	LogFile      string        `yaml:"log_file"`
	Log          LogConfig     `yaml:"log"`
	Repo         RepoConfig    `yaml:"repo"`
	GitHub       GitHubConfig  `yaml:"github"`
	TUI          TUIConfig     `yaml:"tui"`
	Filters      FiltersConfig `yaml:"filters"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RepoConfig names the repository used when the snapshot has no repo_info.
type RepoConfig struct {
	Owner         string `yaml:"owner"`
	Name          string `yaml:"name"`
	DefaultBranch string `yaml:"default_branch"`
}

type GitHubConfig struct {
	APIURL     string        `yaml:"api_url"`
	WebURL     string        `yaml:"web_url"`
	TokenEnv   string        `yaml:"token_env"`
	Timeout    time.Duration `yaml:"-"`
	RawTimeout string        `yaml:"timeout"`
}

type TUIConfig struct {
	NoticeTTL    time.Duration `yaml:"-"`
	RawNoticeTTL string        `yaml:"notice_ttl"`
	PromptToken  *bool         `yaml:"prompt_token,omitempty"`
}

type FiltersConfig struct {
	Branches string `yaml:"branches"`
	PRs      string `yaml:"prs"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	// defaults alone always parse
	_ = cfg.setDefaults()
	return &cfg
}

// Validate re-checks the config after flags have overridden fields.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// ShouldPromptToken reports whether the TUI asks for a token at startup.
func (c *Config) ShouldPromptToken() bool {
	return c.TUI.PromptToken == nil || *c.TUI.PromptToken
}

// BranchFilter and PRFilter assume validate has passed.
func (c *Config) BranchFilter() filter.Selector {
	sel, _ := filter.Parse(c.Filters.Branches)
	return sel
}

func (c *Config) PRFilter() filter.Selector {
	sel, _ := filter.Parse(c.Filters.PRs)
	return sel
}

func (c *Config) setDefaults() error {
	if c.SnapshotFile == "" {
		c.SnapshotFile = "data.json"
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(os.TempDir(), "repo-doc", "logs", "repo-doc.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Repo.DefaultBranch == "" {
		c.Repo.DefaultBranch = "main"
	}

	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = "https://api.github.com"
	}
	if c.GitHub.WebURL == "" {
		c.GitHub.WebURL = "https://github.com"
	}
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = "GITHUB_TOKEN"
	}
	if c.GitHub.RawTimeout == "" {
		c.GitHub.RawTimeout = "15s"
	}
	timeout, err := time.ParseDuration(c.GitHub.RawTimeout)
	if err != nil {
		return fmt.Errorf("parse github.timeout %q: %w", c.GitHub.RawTimeout, err)
	}
	c.GitHub.Timeout = timeout

	if c.TUI.RawNoticeTTL == "" {
		c.TUI.RawNoticeTTL = "5s"
	}
	ttl, err := time.ParseDuration(c.TUI.RawNoticeTTL)
	if err != nil {
		return fmt.Errorf("parse tui.notice_ttl %q: %w", c.TUI.RawNoticeTTL, err)
	}
	c.TUI.NoticeTTL = ttl

	if c.Filters.Branches == "" {
		c.Filters.Branches = "all"
	}
	if c.Filters.PRs == "" {
		c.Filters.PRs = "all"
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}
	if err := checkURL("github.api_url", c.GitHub.APIURL); err != nil {
		return err
	}
	if err := checkURL("github.web_url", c.GitHub.WebURL); err != nil {
		return err
	}
	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("github.timeout must be positive, got %s", c.GitHub.RawTimeout)
	}
	if c.TUI.NoticeTTL <= 0 {
		return fmt.Errorf("tui.notice_ttl must be positive, got %s", c.TUI.RawNoticeTTL)
	}
	if (c.Repo.Owner == "") != (c.Repo.Name == "") {
		return fmt.Errorf("repo: owner and name must be set together")
	}
	if err := checkSelector("filters.branches", c.Filters.Branches, filter.BranchLevels); err != nil {
		return err
	}
	return checkSelector("filters.prs", c.Filters.PRs, filter.PRLevels)
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: invalid URL %q", field, raw)
	}
	return nil
}

func checkSelector(field, raw string, levels filter.Levels) error {
	sel, err := filter.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if !levels.Contains(sel) {
		return fmt.Errorf("%s: %q is not one of %s", field, raw, levels)
	}
	return nil
}
