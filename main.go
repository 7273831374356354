package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

type cliOptions struct {
	configPath   string
	skip         string
	ignore       string
	ignoreCommon bool
	listIgnored  bool
	depth        int
	workers      int
	caseMode     string
	noConfirm    bool
	logFile      string
	verbose      bool
}

// settings is the merged result of defaults, config file and flags.
type settings struct {
	Root    string
	Confirm bool
	LogFile string
	Verbose bool
	Ctrl    ControllerOptions
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "dupekill [path]",
		Short:         "Find files that share a name and delete the extra copies",
		Long:          "dupekill scans a directory tree for files with identical names and lets you\nmark and permanently delete the duplicates in an interactive table.",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(cmd, opts, rootArg(args))
			if err != nil {
				return err
			}
			if opts.listIgnored {
				for _, name := range sortedNames(cfg.Ctrl.Ignore) {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			return runTUI(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML config file")
	flags.StringVar(&opts.skip, "skip", "", "Comma-separated directory names to skip")
	flags.StringVar(&opts.ignore, "ignore", "", "Comma-separated file names never reported as duplicates")
	flags.BoolVar(&opts.ignoreCommon, "ignore-common", false, "Also ignore names that repeat by convention (README.md, .DS_Store, …)")
	flags.IntVar(&opts.depth, "depth", 0, "Maximum directory depth to scan (0 = unlimited)")
	flags.IntVar(&opts.workers, "workers", 4, "Concurrent delete workers")
	flags.StringVar(&opts.caseMode, "case", "auto", "Name comparison: auto, sensitive or insensitive")
	flags.BoolVar(&opts.noConfirm, "no-confirm", false, "Delete without confirmation prompts")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&opts.listIgnored, "list-ignored", false, "Print ignored file names and exit")

	rootCmd.AddCommand(newListCmd(opts), newCleanCmd(opts))
	return rootCmd
}

func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func resolveSettings(cmd *cobra.Command, opts *cliOptions, root string) (settings, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return settings{}, fmt.Errorf("resolve path %s: %w", root, err)
	}

	config := Config{}
	if path, ok, err := resolveConfigPath(absRoot, opts.configPath); err != nil {
		return settings{}, err
	} else if ok {
		cfg, err := loadConfig(path)
		if err != nil {
			return settings{}, err
		}
		normalized, err := normalizeConfig(cfg)
		if err != nil {
			return settings{}, err
		}
		config = normalized
	}

	flags := cmd.Flags()
	out := settings{
		Root:    absRoot,
		Confirm: true,
		LogFile: config.LogFile,
		Verbose: opts.verbose,
		Ctrl: ControllerOptions{
			MaxDepth:   config.Depth,
			Workers:    4,
			IgnoreCase: hostIgnoresCase(),
		},
	}
	if config.Workers > 0 {
		out.Ctrl.Workers = config.Workers
	}
	if config.Confirm != nil {
		out.Confirm = *config.Confirm
	}
	if config.IgnoreCase != nil {
		out.Ctrl.IgnoreCase = *config.IgnoreCase
	}

	skip := config.Skip
	ignore := config.Ignore
	ignoreCommon := config.IgnoreCommon
	if flags.Changed("skip") {
		skip = parseNameList(opts.skip)
	}
	if flags.Changed("ignore") {
		ignore = parseNameList(opts.ignore)
	}
	if flags.Changed("ignore-common") {
		ignoreCommon = opts.ignoreCommon
	}
	if flags.Changed("depth") {
		if opts.depth < 0 {
			return settings{}, fmt.Errorf("--depth must be >= 0")
		}
		out.Ctrl.MaxDepth = opts.depth
	}
	if flags.Changed("workers") {
		if opts.workers < 1 {
			return settings{}, fmt.Errorf("--workers must be >= 1")
		}
		out.Ctrl.Workers = opts.workers
	}
	if flags.Changed("case") {
		switch opts.caseMode {
		case "auto":
		case "sensitive":
			out.Ctrl.IgnoreCase = false
		case "insensitive":
			out.Ctrl.IgnoreCase = true
		default:
			return settings{}, fmt.Errorf("--case must be auto, sensitive or insensitive, got %q", opts.caseMode)
		}
	}
	if opts.noConfirm {
		out.Confirm = false
	}
	if flags.Changed("log-file") {
		out.LogFile = opts.logFile
	}

	out.Ctrl.SkipDirs = mergeSkipDirs(defaultSkipDirs(), skip)
	out.Ctrl.Ignore = buildNameSet(ignoreCommon, ignore)
	return out, nil
}

func runTUI(ctx context.Context, cfg settings) error {
	logger, closeLog, err := newLogger(cfg.LogFile, cfg.Verbose, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeLog(); closeErr != nil {
			fmt.Fprintln(os.Stderr, "Error closing log:", closeErr)
		}
	}()

	cfg.Ctrl.Logger = logger
	events := newTeaEvents()
	ctrl := NewController(cfg.Ctrl, events)

	m := NewModel(ctx, ctrl, events, cfg.Root, cfg.Confirm)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
