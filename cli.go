package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// cliEvents reports controller events on a plain writer for the
// non-interactive commands.
type cliEvents struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	outcome *DeletionOutcome
}

func (e *cliEvents) ScanProgress(int, int) {}

func (e *cliEvents) ScanCompleted([]Candidate) {}

func (e *cliEvents) ScanFailed(error) {}

func (e *cliEvents) DeleteProgress(done, _ int) {
	if e.bar != nil {
		_ = e.bar.Set(done)
	}
}

func (e *cliEvents) DeletionCompleted(outcome DeletionOutcome) {
	e.outcome = &outcome
	if e.bar != nil {
		_ = e.bar.Finish()
	}
}

func (e *cliEvents) StatusChanged(text string) {
	fmt.Fprintln(e.out, text)
}

type jsonFile struct {
	Path      string  `json:"path"`
	SizeBytes int64   `json:"size_bytes"`
	SizeKB    float64 `json:"size_kb"`
	Modified  string  `json:"modified"`
}

type jsonGroup struct {
	Name  string     `json:"name"`
	Files []jsonFile `json:"files"`
}

func newListCmd(opts *cliOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "Print groups of same-named files and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings(cmd, opts, rootArg(args))
			if err != nil {
				return err
			}
			ctrl, closeLog, err := newCLIController(cmd, cfg, &cliEvents{out: io.Discard})
			if err != nil {
				return err
			}
			defer closeLog()

			if err := ctrl.OnScanRequested(cmd.Context(), cfg.Root); err != nil {
				return err
			}
			candidates := ctrl.Candidates()
			if asJSON {
				return writeGroupsJSON(cmd.OutOrStdout(), candidates)
			}
			writeGroupsText(cmd.OutOrStdout(), candidates)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newCleanCmd(opts *cliOptions) *cobra.Command {
	var keep string
	var yes bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean [path]",
		Short: "Delete all but one file of every same-name group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parseKeepPolicy(keep)
			if err != nil {
				return err
			}
			cfg, err := resolveSettings(cmd, opts, rootArg(args))
			if err != nil {
				return err
			}
			events := &cliEvents{out: cmd.ErrOrStderr()}
			ctrl, closeLog, err := newCLIController(cmd, cfg, events)
			if err != nil {
				return err
			}
			defer closeLog()

			if err := ctrl.OnScanRequested(cmd.Context(), cfg.Root); err != nil {
				return err
			}
			markAllButKeepers(ctrl, policy)
			marked := ctrl.Marked()
			if len(marked) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, c := range marked {
				fmt.Fprintf(out, "  %s (%s)\n", c.FullPath, formatKB(c.FileRecord))
			}
			if dryRun {
				fmt.Fprintf(out, "Would delete %d file(s), %s\n", len(marked), formatBytes(markedBytes(marked)))
				return nil
			}
			if cfg.Confirm && !yes {
				ok, err := confirmPrompt(cmd.InOrStdin(), out, fmt.Sprintf("Permanently delete %d file(s), %s?", len(marked), formatBytes(markedBytes(marked))))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Deletion cancelled")
					return nil
				}
			}

			events.bar = progressbar.NewOptions(len(marked),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("deleting"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			if err := ctrl.OnDeleteRequested(cmd.Context()); err != nil {
				return err
			}
			if events.outcome == nil {
				return nil
			}
			for _, failure := range events.outcome.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "  failed (%s): %s: %v\n", failure.Reason, failure.Path, failure.Err)
			}
			if events.outcome.Failed > 0 {
				return fmt.Errorf("%d file(s) could not be removed", events.outcome.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&keep, "keep", string(keepFirst), "Which file of each group survives: first, newest or oldest")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print what would be deleted")
	return cmd
}

func newCLIController(cmd *cobra.Command, cfg settings, events Events) (*Controller, func(), error) {
	logger, closeLog, err := newLogger(cfg.LogFile, cfg.Verbose, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	cfg.Ctrl.Logger = logger
	return NewController(cfg.Ctrl, events), func() { _ = closeLog() }, nil
}

func confirmPrompt(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// splitGroups returns the candidates grouped by their group index, in order.
func splitGroups(candidates []Candidate) [][]Candidate {
	groups := [][]Candidate{}
	index := map[int]int{}
	for _, c := range candidates {
		pos, ok := index[c.Group]
		if !ok {
			pos = len(groups)
			index[c.Group] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], c)
	}
	return groups
}

func writeGroupsText(w io.Writer, candidates []Candidate) {
	groups := splitGroups(candidates)
	if len(groups) == 0 {
		fmt.Fprintln(w, "No duplicate names found")
		return
	}
	var total int64
	for _, group := range groups {
		fmt.Fprintf(w, "%s (%d files)\n", group[0].Name, len(group))
		for _, c := range group {
			total += c.SizeBytes
			fmt.Fprintf(w, "  %-12s  %s  %s\n", formatKB(c.FileRecord), formatTimestamp(c.ModifiedAt), c.FullPath)
		}
	}
	fmt.Fprintf(w, "%d file(s) in %d group(s), %s total\n", len(candidates), len(groups), formatBytes(total))
}

func writeGroupsJSON(w io.Writer, candidates []Candidate) error {
	out := []jsonGroup{}
	for _, group := range splitGroups(candidates) {
		g := jsonGroup{Name: group[0].Name}
		for _, c := range group {
			g.Files = append(g.Files, jsonFile{
				Path:      c.FullPath,
				SizeBytes: c.SizeBytes,
				SizeKB:    c.SizeKB(),
				Modified:  formatTimestamp(c.ModifiedAt),
			})
		}
		out = append(out, g)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
