package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/marcin-skalski/repo-doc/internal/browser"
	"github.com/marcin-skalski/repo-doc/internal/config"
	"github.com/marcin-skalski/repo-doc/internal/credential"
	"github.com/marcin-skalski/repo-doc/internal/dashboard"
	"github.com/marcin-skalski/repo-doc/internal/github"
	"github.com/marcin-skalski/repo-doc/internal/logging"
	"github.com/marcin-skalski/repo-doc/internal/snapshot"
	"github.com/marcin-skalski/repo-doc/internal/tui"
)

type options struct {
	configPath   string
	snapshotPath string
	panel        string
	branchFilter string
	prFilter     string
	tokenEnv     string
	noTUI        bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("repo-doc", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flagSet.StringVar(&opts.snapshotPath, "snapshot", "", "snapshot JSON file (overrides snapshot_file)")
	flagSet.BoolVar(&opts.noTUI, "no-tui", false, "print a report instead of starting the TUI")
	flagSet.StringVar(&opts.panel, "panel", "all", "panel to show: branches|prs|repo|activity|all")
	flagSet.StringVar(&opts.branchFilter, "branch-filter", "", "initial branch filter: all|1|7|30")
	flagSet.StringVar(&opts.prFilter, "pr-filter", "", "initial PR filter: all|1|3|7")
	flagSet.StringVar(&opts.tokenEnv, "token-env", "", "environment variable holding the GitHub token")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() {}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(opts, flagSet.Changed("config"))
	if err != nil {
		return err
	}
	panels, err := parsePanels(opts.panel)
	if err != nil {
		return err
	}

	enableTUI := !opts.noTUI && os.Getenv("REPO_DOC_TUI") != "0" &&
		isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	logger, err := logging.SetupLogger(cfg.LogFile, cfg.Log.Level, enableTUI)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer logging.CloseFile()

	client, err := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Timeout, logger)
	if err != nil {
		return err
	}
	tokens := credential.FromEnv(cfg.GitHub.TokenEnv)
	dispatcher := dashboard.NewDispatcher(client, tokens, github.WebURLs{Base: cfg.GitHub.WebURL}, logger)
	source := snapshot.FileSource{Path: cfg.SnapshotFile}

	state := dashboard.New()
	state.Fallback = snapshot.RepoInfo{
		Owner:         cfg.Repo.Owner,
		Name:          cfg.Repo.Name,
		DefaultBranch: cfg.Repo.DefaultBranch,
	}
	if state, err = state.SetBranchFilter(cfg.BranchFilter()); err != nil {
		return err
	}
	if state, err = state.SetPRFilter(cfg.PRFilter()); err != nil {
		return err
	}

	if !enableTUI {
		logger.Debug("repo-doc report", "snapshot", cfg.SnapshotFile, "panels", opts.panel)
		return runReport(state, source, panels)
	}

	if len(panels) == 1 {
		state = state.SelectPanel(panels[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("repo-doc starting", "snapshot", cfg.SnapshotFile, "config", opts.configPath)
	model := tui.NewModel(state, tui.Options{
		Source:      source,
		Dispatcher:  dispatcher,
		Tokens:      tokens,
		OpenURL:     browser.Open,
		NoticeTTL:   cfg.TUI.NoticeTTL,
		PromptToken: cfg.ShouldPromptToken(),
		Logger:      logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies flag overrides. A missing
// default config file is not an error.
func loadConfig(opts options, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}

	if opts.snapshotPath != "" {
		cfg.SnapshotFile = opts.snapshotPath
	}
	if opts.tokenEnv != "" {
		cfg.GitHub.TokenEnv = opts.tokenEnv
	}
	if opts.branchFilter != "" {
		cfg.Filters.Branches = opts.branchFilter
	}
	if opts.prFilter != "" {
		cfg.Filters.PRs = opts.prFilter
	}
	return cfg, cfg.Validate()
}

func parsePanels(name string) ([]dashboard.Panel, error) {
	if name == "" || name == "all" {
		return dashboard.Panels, nil
	}
	p, err := dashboard.ParsePanel(name)
	if err != nil {
		return nil, err
	}
	return []dashboard.Panel{p}, nil
}

func runReport(state dashboard.State, source snapshot.Source, panels []dashboard.Panel) error {
	snap, err := source.Load()
	if err != nil {
		return errors.New(state.LoadFailed(err).Notice.Text)
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	fmt.Fprint(os.Stdout, tui.RenderReport(state.Loaded(snap), panels, width))
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `repo-doc: terminal dashboard for a repository health snapshot.

Reads a pre-generated snapshot (stale branches, open PRs, repository
info, monthly activity) and shows it as an interactive dashboard. Stale
branches can be deleted and PRs closed through the GitHub API once a
token is available (from $GITHUB_TOKEN by default, or entered with "t").

Without a terminal, or with --no-tui or REPO_DOC_TUI=0, prints a
plain report of the selected panels instead.

Usage:
  repo-doc [flags]

Examples:
  # Dashboard for ./data.json
  repo-doc

  # Report of branches inactive for 30+ days
  repo-doc --no-tui --panel branches --branch-filter 30

Flags:
%s`, flagSet.FlagUsages())
}
