package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Events receives everything the core reports back to a presentation layer.
type Events interface {
	ScanProgress(dirs, files int)
	ScanCompleted(candidates []Candidate)
	ScanFailed(err error)
	DeleteProgress(done, total int)
	DeletionCompleted(outcome DeletionOutcome)
	StatusChanged(text string)
}

type nopEvents struct{}

func (nopEvents) ScanProgress(int, int) {}
func (nopEvents) ScanCompleted([]Candidate) {}
func (nopEvents) ScanFailed(error) {}
func (nopEvents) DeleteProgress(int, int) {}
func (nopEvents) DeletionCompleted(DeletionOutcome) {}
func (nopEvents) StatusChanged(string) {}

type controllerState int

const (
	stateIdle controllerState = iota
	stateScanning
	stateDeleting
)

type ControllerOptions struct {
	FS         FileSystem
	MaxDepth   int
	SkipDirs   map[string]struct{}
	Ignore     map[string]struct{}
	IgnoreCase bool
	Workers    int
	Logger     *slog.Logger
}

// Controller is the command surface a presentation layer drives. It owns the
// current session and serializes scans and deletions.
type Controller struct {
	opts     ControllerOptions
	events   Events
	logger   *slog.Logger
	executor *Executor

	mu      sync.Mutex
	state   controllerState
	session *Session
}

func NewController(opts ControllerOptions, events Events) *Controller {
	if opts.FS == nil {
		opts.FS = newOSFS()
	}
	if events == nil {
		events = nopEvents{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	c := &Controller{
		opts:    opts,
		events:  events,
		logger:  logger,
		session: NewSession("", nil),
	}
	c.executor = &Executor{
		FS:      opts.FS,
		Workers: opts.Workers,
		Progress: func(done, total int) {
			c.events.DeleteProgress(done, total)
		},
	}
	return c
}

func (c *Controller) begin(next controllerState) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateIdle {
		return nil, ErrBusy
	}
	c.state = next
	return c.session, nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = stateIdle
	c.mu.Unlock()
}

func (c *Controller) current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// OnScanRequested scans root and replaces the current session with the result.
func (c *Controller) OnScanRequested(ctx context.Context, root string) error {
	if _, err := c.begin(stateScanning); err != nil {
		c.events.StatusChanged("Busy: wait for the current operation to finish")
		return err
	}
	defer c.finish()

	c.events.StatusChanged(fmt.Sprintf("Scanning %s…", root))
	scanner := &Scanner{
		FS:       c.opts.FS,
		MaxDepth: c.opts.MaxDepth,
		SkipDirs: c.opts.SkipDirs,
		Progress: c.events.ScanProgress,
	}
	result, err := scanner.Scan(ctx, root)
	if err != nil {
		c.mu.Lock()
		c.session = NewSession(root, nil)
		c.mu.Unlock()
		c.logger.Error("scan failed", "root", root, "error", err)
		c.events.ScanFailed(err)
		c.events.StatusChanged(fmt.Sprintf("Scan failed: %v", err))
		return err
	}
	for _, skipped := range result.Skipped {
		c.logger.Debug("skipped unreadable entry", "path", skipped.Path, "error", skipped.Err)
	}

	candidates := GroupByName(result.Records, c.opts.IgnoreCase, c.opts.Ignore)
	session := NewSession(root, candidates)
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.logger.Info("scan complete",
		"root", root,
		"files", len(result.Records),
		"candidates", len(candidates),
		"skipped", len(result.Skipped),
		"elapsed", result.Elapsed,
	)
	c.events.ScanCompleted(session.Candidates())
	status := fmt.Sprintf("Found %d duplicate file(s) in %d group(s)", len(candidates), countGroups(candidates))
	if len(result.Skipped) > 0 {
		status += fmt.Sprintf(" · skipped %d unreadable entries", len(result.Skipped))
	}
	c.events.StatusChanged(status)
	return nil
}

func (c *Controller) OnToggleCandidate(id string) {
	c.current().Toggle(id)
}

func (c *Controller) OnSelectAllChanged(value bool) {
	c.current().SetAll(value)
}

// OnDeleteRequested deletes the currently marked candidates. The caller is
// responsible for having confirmed the action with the operator.
func (c *Controller) OnDeleteRequested(ctx context.Context) error {
	session, err := c.begin(stateDeleting)
	if err != nil {
		c.events.StatusChanged("Busy: wait for the current operation to finish")
		return err
	}
	defer c.finish()

	marked := session.Marked()
	if len(marked) == 0 {
		c.events.StatusChanged("Nothing marked for deletion")
		return nil
	}

	c.events.StatusChanged(fmt.Sprintf("Deleting %d file(s)…", len(marked)))
	outcome, err := c.executor.Execute(ctx, marked)
	if err != nil {
		return err
	}
	session.Remove(outcome.Gone)

	for _, failure := range outcome.Failures {
		c.logger.Warn("delete failed", "path", failure.Path, "reason", failure.Reason, "error", failure.Err)
	}
	c.logger.Info("deletion complete", "deleted", outcome.Deleted, "failed", outcome.Failed, "gone", len(outcome.Gone))

	c.events.DeletionCompleted(outcome)
	c.events.StatusChanged(deletionStatus(outcome))
	return nil
}

func deletionStatus(outcome DeletionOutcome) string {
	status := fmt.Sprintf("Deleted %d, failed %d", outcome.Deleted, outcome.Failed)
	if outcome.Failed > 0 {
		status += " · some files could not be removed"
	}
	return status
}

func (c *Controller) Candidates() []Candidate {
	return c.current().Candidates()
}

func (c *Controller) Marked() []Candidate {
	return c.current().Marked()
}

// Mark sets the mark on a single candidate.
func (c *Controller) Mark(id string, value bool) {
	c.current().Set(id, value)
}

func (c *Controller) Root() string {
	return c.current().Root()
}
