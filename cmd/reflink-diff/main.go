package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/reflink-diff/internal/config"
	"github.com/bamsammich/reflink-diff/internal/engine"
	"github.com/bamsammich/reflink-diff/internal/filter"
	"github.com/bamsammich/reflink-diff/internal/ui"
)

var version = "dev"

const usageText = `reflink-diff: Replay likely moves as reflink copies.

Usage:
    reflink-diff apply   <src-base> <src-target> <dst-base> <dst-target> [flags]
    reflink-diff dry-run <src-base> <src-target> <dst-base> <dst-target> [flags]

Diffs the file hierarchy from src-base to src-target, and detects
potential moves, based on files having the same mtime and size, falling
back to same size and then same name.

For every detected move, create a reflink:
  * With as source, the base file, but in the destination tree.
  * With as target, the target file, but in the destination tree.

In other words, this diffs src-base..src-target and replays that diff on
top of dst-base.

In "apply" mode the reflinks are created. In "dry-run" mode, we print
which reflinks would be created.

This is only a heuristic, but it sets up reflink sharing where possible,
and rsync can later fix everything up (metadata, changed files, new and
deleted files, etc.). When using rsync by itself, it would try to copy
the file, destroying potential sharing.

Run "reflink-diff apply --help" for the list of flags.`

var errUsage = errors.New("missing mode")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code: 0 on success,
// 1 for usage errors, 2 when the run itself fails.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}

	// Anything else is cobra rejecting the command line.
	fmt.Fprintln(stdout, usageText)
	if !errors.Is(err, errUsage) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   "reflink-diff",
		Short: "Replay likely moves between two snapshots as reflink copies",
		Long:  usageText,
		RunE: func(*cobra.Command, []string) error {
			if showVersion {
				fmt.Fprintf(stdout, "reflink-diff %s\n", version)
				return nil
			}
			return errUsage
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	root.AddCommand(
		newModeCmd(engine.Apply, "Create the inferred reflinks in the destination target", stdout, stderr),
		newModeCmd(engine.DryRun, "Print the reflinks apply would create", stdout, stderr),
		newDocsCmd(),
	)
	return root
}

// options holds the flags shared by both modes.
type options struct {
	chain          *filter.Chain
	verify         string
	filterFile     string
	logFile        string
	configFile     string
	maxOpen        int
	noSizeFallback bool
	noNameFallback bool
	changes        bool
	verbose        bool
	quiet          bool
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

func bindFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVar(&opts.verify, "verify", engine.VerifyBytes.String(),
		"how candidate moves are confirmed: bytes, hash or none")
	fs.BoolVar(&opts.noSizeFallback, "no-size-fallback", false,
		"do not consider files of equal size but different mtime")
	fs.BoolVar(&opts.noNameFallback, "no-name-fallback", false,
		"do not consider files with the same name")
	fs.IntVar(&opts.maxOpen, "max-open", engine.DefaultMaxOpen,
		"maximum directory handles held open per scan")
	fs.Var(&filterFlag{chain: opts.chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	fs.Var(&filterFlag{chain: opts.chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	fs.StringVar(&opts.filterFile, "filter", "", "read filter rules from FILE")
	fs.BoolVar(&opts.changes, "changes", false, "print the full change set (C/D/A lines) before the reflinks")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress all output except reflinks and errors")
	fs.StringVar(&opts.logFile, "log", "", "write structured JSON log to FILE")
	fs.StringVar(&opts.configFile, "config", "", "read defaults from FILE instead of the XDG config")
}

func newModeCmd(mode engine.Mode, short string, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{chain: filter.NewChain()}
	cmd := &cobra.Command{
		Use:   mode.String() + " <src-base> <src-target> <dst-base> <dst-target>",
		Short: short,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd, mode, args, opts, stdout, stderr)
		},
	}
	bindFlags(cmd.Flags(), opts)
	return cmd
}

func execute(
	cmd *cobra.Command,
	mode engine.Mode,
	args []string,
	opts *options,
	stdout, stderr io.Writer,
) error {
	// Usage errors are reported before the log file is opened.
	cfg, cfgErr := loadConfig(opts.configFile)
	var filterErr error
	if opts.filterFile != "" {
		filterErr = opts.chain.LoadFile(opts.filterFile)
	}
	if cfgErr == nil && filterErr == nil {
		if err := applyConfigDefaults(cmd, cfg.Defaults, opts); err != nil {
			return fmt.Errorf("config defaults: %w", err)
		}
	}
	verifyMode, err := engine.ParseVerifyMode(opts.verify)
	if err != nil {
		return fmt.Errorf("invalid --verify: %w", err)
	}

	logger, closeLog, err := newLogger(opts, stderr)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	defer closeLog()
	slog.SetDefault(logger)

	if cfgErr != nil {
		logger.Error("load config failed", "error", cfgErr)
		return &exitError{code: 2}
	}
	if filterErr != nil {
		logger.Error("load filter rules failed", "error", filterErr)
		return &exitError{code: 2}
	}

	color := false
	if f, ok := stdout.(*os.File); ok {
		color = ui.IsTTY(f.Fd())
	}
	theme := ui.NewTheme(cfg.Theme, color)
	presenter := ui.NewPresenter(ui.Config{
		Writer: stdout,
		Theme:  theme,
		DryRun: mode == engine.DryRun,
		Quiet:  opts.quiet,
	})

	var changesErr error
	runCfg := engine.Config{
		Events:       presenter,
		Logger:       logger,
		Filter:       opts.chain,
		SrcBase:      args[0],
		SrcTarget:    args[1],
		DstBase:      args[2],
		DstTarget:    args[3],
		Mode:         mode,
		Verify:       verifyMode,
		MaxOpen:      opts.maxOpen,
		SizeFallback: !opts.noSizeFallback,
		NameFallback: !opts.noNameFallback,
	}
	if opts.changes {
		runCfg.OnChanges = func(cs engine.ChangeSet) {
			changesErr = ui.WriteChanges(stdout, cs, theme)
		}
	}

	logger.Debug("starting",
		"mode", mode,
		"src_base", runCfg.SrcBase,
		"src_target", runCfg.SrcTarget,
		"dst_base", runCfg.DstBase,
		"dst_target", runCfg.DstTarget,
		"verify", verifyMode,
		"filter_rules", len(opts.chain.Rules()),
	)
	result := engine.Run(runCfg)
	if result.Err == nil {
		result.Err = changesErr
	}

	if summary := presenter.Summary(result.Stats, result.Err != nil); summary != "" {
		fmt.Fprintln(stderr, summary)
	}
	if result.Err != nil {
		logger.Error("run failed", "error", result.Err)
		return &exitError{code: 2}
	}
	return nil
}

// newLogger builds the run logger: text on stderr, plus JSON into --log
// when given. Every record carries the run id.
func newLogger(opts *options, stderr io.Writer) (*slog.Logger, func(), error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	} else if !opts.quiet {
		level = slog.LevelInfo
	}

	var handler slog.Handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	closeLog := func() {}
	if opts.logFile != "" {
		lf, err := os.Create(opts.logFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closeLog = func() { _ = lf.Close() }
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = ui.NewMultiHandler(handler, jsonHandler)
	}
	return slog.New(handler).With("run", uuid.NewString()), closeLog, nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI. Config excludes are appended after the CLI rules and the
// --filter file, so those match first.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, opts *options) error {
	flags := cmd.Flags()
	if !flags.Changed("verify") && defaults.Verify != nil {
		opts.verify = *defaults.Verify
	}
	if !flags.Changed("no-size-fallback") && defaults.SizeFallback != nil {
		opts.noSizeFallback = !*defaults.SizeFallback
	}
	if !flags.Changed("no-name-fallback") && defaults.NameFallback != nil {
		opts.noNameFallback = !*defaults.NameFallback
	}
	if !flags.Changed("max-open") && defaults.MaxOpen != nil {
		opts.maxOpen = *defaults.MaxOpen
	}
	for _, pattern := range defaults.Exclude {
		if err := opts.chain.AddExclude(pattern); err != nil {
			return err
		}
	}
	return nil
}

type exitError struct {
	err  error
	code int
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }
