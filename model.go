package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const busyText = "Busy: wait for the current operation to finish"

type sortMode int

const (
	sortByGroup sortMode = iota
	sortBySizeDesc
	sortByPath
	sortModeCount
)

var sortLabels = [sortModeCount]string{"group", "size ↓", "path"}

func (s sortMode) String() string {
	if s < 0 || s >= sortModeCount {
		return sortLabels[sortByGroup]
	}
	return sortLabels[s]
}

func (s sortMode) next() sortMode {
	return (s + 1) % sortModeCount
}

func (s sortMode) less(a, b Candidate) bool {
	switch s {
	case sortBySizeDesc:
		if a.SizeBytes != b.SizeBytes {
			return a.SizeBytes > b.SizeBytes
		}
		return a.Group < b.Group
	case sortByPath:
		return strings.ToLower(a.FullPath) < strings.ToLower(b.FullPath)
	default:
		return a.Group < b.Group
	}
}

type confirmState struct {
	active bool
	count  int
	bytes  int64
}

type scanProgressMsg struct {
	Dirs  int
	Files int
}

type scanCompletedMsg struct {
	Candidates []Candidate
}

type scanFailedMsg struct {
	Err error
}

type deleteProgressMsg struct {
	Done  int
	Total int
}

type deletionCompletedMsg struct {
	Outcome DeletionOutcome
}

type statusMsg struct {
	Text string
}

type scanPulseMsg struct{}

// opDoneMsg is returned once a scan or delete command has returned, whatever
// events it emitted along the way.
type opDoneMsg struct {
	Delete bool
	Err    error
}

// teaEvents forwards controller events into the bubbletea message loop.
type teaEvents struct {
	ch chan tea.Msg
}

func newTeaEvents() *teaEvents {
	return &teaEvents{ch: make(chan tea.Msg, 64)}
}

func (e *teaEvents) send(msg tea.Msg) { e.ch <- msg }

func (e *teaEvents) ScanProgress(dirs, files int) {
	e.send(scanProgressMsg{Dirs: dirs, Files: files})
}

func (e *teaEvents) ScanCompleted(candidates []Candidate) {
	e.send(scanCompletedMsg{Candidates: candidates})
}

func (e *teaEvents) ScanFailed(err error) { e.send(scanFailedMsg{Err: err}) }

func (e *teaEvents) DeleteProgress(done, total int) {
	e.send(deleteProgressMsg{Done: done, Total: total})
}

func (e *teaEvents) DeletionCompleted(outcome DeletionOutcome) {
	e.send(deletionCompletedMsg{Outcome: outcome})
}

func (e *teaEvents) StatusChanged(text string) { e.send(statusMsg{Text: text}) }

type keyMap struct {
	Toggle, MarkAll, Clear, KeepFirst, Delete key.Binding
	Rescan, Sort, Confirm, Help, Quit        key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:    bind("space", "mark", " ", "space"),
		MarkAll:   bind("a", "mark all", "a"),
		Clear:     bind("A", "clear marks", "A"),
		KeepFirst: bind("K", "keep first of each", "K"),
		Delete:    bind("D/enter", "delete marked", "D", "enter"),
		Rescan:    bind("r", "rescan", "r"),
		Sort:      bind("s", "cycle sort", "s"),
		Confirm:   bind("c", "confirm on/off", "c"),
		Help:      bind("?", "more keys", "?", "h"),
		Quit:      bind("q", "quit", "q", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.MarkAll, k.Delete, k.Sort, k.Rescan, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.MarkAll, k.Clear, k.KeepFirst, k.Delete},
		{k.Sort, k.Confirm, k.Rescan, k.Help, k.Quit},
	}
}

// scanView holds what the status line shows while a scan runs.
type scanView struct {
	dirs, files int
	started     time.Time
	pulse       float64
	pulseStep   float64
	bar         progress.Model
}

func (s *scanView) reset() {
	s.dirs, s.files = 0, 0
	s.started = time.Now()
	s.pulse = 0
	s.pulseStep = 0.06
}

// advance moves the indeterminate bar back and forth between 0 and 1.
func (s *scanView) advance() {
	s.pulse += s.pulseStep
	if s.pulse >= 1 || s.pulse <= 0 {
		s.pulse = min(max(s.pulse, 0), 1)
		s.pulseStep = -s.pulseStep
	}
}

type deleteView struct {
	done, total int
	bar         progress.Model
}

type model struct {
	ctx    context.Context
	cancel context.CancelFunc
	ctrl   *Controller
	events *teaEvents
	root   string

	rows     []Candidate
	failed   map[string]FailureReason
	sortMode sortMode

	scanning bool
	deleting bool
	scan     scanView
	del      deleteView

	confirm        confirmState
	confirmDeletes bool
	err            error
	warning        string
	lastEvent      string

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	width, height, pathWidth int
}

func NewModel(ctx context.Context, ctrl *Controller, events *teaEvents, root string, confirmDeletes bool) model {
	ctx, cancel := context.WithCancel(ctx)
	m := model{
		ctx:            ctx,
		cancel:         cancel,
		ctrl:           ctrl,
		events:         events,
		root:           root,
		failed:         map[string]FailureReason{},
		scanning:       true,
		confirmDeletes: confirmDeletes,
		table:          newCandidateTable(),
		spinner:        newSpinner(),
		help:           help.New(),
		keys:           newKeyMap(),
		pathWidth:      minPathWidth,
		scan:           scanView{bar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())},
		del:            deleteView{bar: progress.New(progress.WithDefaultGradient())},
	}
	m.scan.reset()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitEvent(m.events.ch), scanCmd(m.ctx, m.ctrl, m.root), scanPulseCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.del.bar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.del.bar = bar
		}
		return m, cmd
	case scanPulseMsg:
		if !m.scanning {
			return m, nil
		}
		m.scan.advance()
		return m, scanPulseCmd()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case opDoneMsg:
		m.finishOp(msg)
	case tea.KeyMsg:
		m.warning = ""
		if m.confirm.active {
			return m, m.answerConfirm(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			return m, tea.Quit
		}
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	default:
		if cmd, ok := m.applyEvent(msg); ok {
			return m, tea.Batch(cmd, waitEvent(m.events.ch))
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// applyEvent folds one controller event into the model. It reports false
// for messages that did not come from the event channel.
func (m *model) applyEvent(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case scanProgressMsg:
		m.scan.dirs, m.scan.files = msg.Dirs, msg.Files
	case scanCompletedMsg:
		m.scanning = false
		m.err = nil
		m.failed = map[string]FailureReason{}
		m.rows = msg.Candidates
		m.reloadTable()
		m.table.SetCursor(0)
	case scanFailedMsg:
		m.scanning = false
		m.err = msg.Err
		m.rows = nil
		m.reloadTable()
	case deleteProgressMsg:
		m.del.done, m.del.total = msg.Done, msg.Total
		percent := 1.0
		if msg.Total > 0 {
			percent = float64(msg.Done) / float64(msg.Total)
		}
		return m.del.bar.SetPercent(percent), true
	case deletionCompletedMsg:
		m.deleting = false
		m.applyOutcome(msg.Outcome)
	case statusMsg:
		m.lastEvent = msg.Text
	default:
		return nil, false
	}
	return nil, true
}

func (m *model) finishOp(msg opDoneMsg) {
	if msg.Delete {
		m.deleting = false
		m.refreshRows()
	} else {
		m.scanning = false
	}
	switch {
	case errors.Is(msg.Err, ErrBusy):
		m.lastEvent = busyText
	case msg.Err != nil:
		m.err = msg.Err
	}
}

func (m *model) answerConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.confirm = confirmState{}
		return m.startDelete()
	case "n", "N", "esc":
		m.confirm = confirmState{}
		m.lastEvent = "Deletion cancelled"
	}
	return nil
}

// handleKey runs the action bound to msg. It reports false for keys the
// table should see, such as cursor movement.
func (m *model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, k.Rescan):
		return true, m.startScan()
	case key.Matches(msg, k.Sort):
		m.sortMode = m.sortMode.next()
		m.reloadTable()
		m.lastEvent = "Sorted by " + m.sortMode.String()
	case key.Matches(msg, k.Toggle):
		m.toggleMark()
	case key.Matches(msg, k.MarkAll):
		m.setAll(true)
	case key.Matches(msg, k.Clear):
		m.setAll(false)
	case key.Matches(msg, k.KeepFirst):
		m.keepFirst()
	case key.Matches(msg, k.Delete):
		return true, m.requestDeleteMarked()
	case key.Matches(msg, k.Confirm):
		m.confirmDeletes = !m.confirmDeletes
		if m.confirmDeletes {
			m.lastEvent = "Confirm prompts enabled"
		} else {
			m.lastEvent = "Confirm prompts disabled"
		}
	default:
		return false, nil
	}
	return true, nil
}

func (m model) busy() bool {
	return m.scanning || m.deleting
}

func (m *model) startScan() tea.Cmd {
	if m.busy() {
		m.lastEvent = busyText
		return nil
	}
	m.scanning = true
	m.err = nil
	m.rows = nil
	m.failed = map[string]FailureReason{}
	m.scan.reset()
	m.reloadTable()
	return tea.Batch(m.spinner.Tick, scanCmd(m.ctx, m.ctrl, m.root), scanPulseCmd())
}

func (m *model) refreshRows() {
	m.rows = m.ctrl.Candidates()
	m.reloadTable()
}

func (m *model) reloadTable() {
	mode := m.sortMode
	sort.SliceStable(m.rows, func(i, j int) bool {
		return mode.less(m.rows[i], m.rows[j])
	})
	m.setTableRows()
}

func (m *model) cursorRow() (Candidate, bool) {
	idx := m.table.Cursor()
	if m.scanning || idx < 0 || idx >= len(m.rows) {
		return Candidate{}, false
	}
	return m.rows[idx], true
}

func (m *model) toggleMark() {
	row, ok := m.cursorRow()
	if !ok {
		return
	}
	m.ctrl.OnToggleCandidate(row.ID())
	m.refreshRows()
	if row.Marked {
		m.lastEvent = "Unmarked " + row.Name
	} else {
		m.lastEvent = "Marked " + row.Name + " for deletion"
	}
}

func (m *model) setAll(value bool) {
	if len(m.rows) == 0 || m.scanning {
		return
	}
	m.ctrl.OnSelectAllChanged(value)
	m.refreshRows()
	m.lastEvent = "Cleared marks"
	if value {
		m.lastEvent = fmt.Sprintf("Marked %d file(s)", len(m.rows))
	}
}

func (m *model) keepFirst() {
	if m.busy() || len(m.rows) == 0 {
		return
	}
	count := markAllButKeepers(m.ctrl, keepFirst)
	m.refreshRows()
	m.lastEvent = fmt.Sprintf("Marked %d file(s), keeping the first of each group", count)
}

func (m *model) requestDeleteMarked() tea.Cmd {
	if m.busy() {
		m.lastEvent = busyText
		return nil
	}
	marked := m.ctrl.Marked()
	switch {
	case len(marked) == 0:
		m.lastEvent = "Nothing marked"
		return nil
	case m.confirmDeletes:
		m.confirm = confirmState{active: true, count: len(marked), bytes: markedBytes(marked)}
		return nil
	default:
		return m.startDelete()
	}
}

func (m *model) startDelete() tea.Cmd {
	if m.busy() {
		return nil
	}
	m.deleting = true
	m.err = nil
	m.del.done, m.del.total = 0, 0
	m.failed = map[string]FailureReason{}
	return tea.Batch(m.del.bar.SetPercent(0), deleteCmd(m.ctx, m.ctrl))
}

func (m *model) applyOutcome(outcome DeletionOutcome) {
	for _, failure := range outcome.Failures {
		m.failed[failure.Path] = failure.Reason
	}
	if outcome.Failed > 0 {
		m.warning = fmt.Sprintf("Warning: %d file(s) could not be removed", outcome.Failed)
	}
	m.refreshRows()
}

func scanCmd(ctx context.Context, ctrl *Controller, root string) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{Err: ctrl.OnScanRequested(ctx, root)}
	}
}

func deleteCmd(ctx context.Context, ctrl *Controller) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{Delete: true, Err: ctrl.OnDeleteRequested(ctx)}
	}
}

func waitEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func scanPulseCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return scanPulseMsg{}
	})
}
