package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent  = lipgloss.Color("86")
	colorBorder  = lipgloss.Color("238")
	colorMuted   = lipgloss.Color("242")
	colorSubtle  = lipgloss.Color("245")
	colorText    = lipgloss.Color("252")
	colorDanger  = lipgloss.Color("203")
	colorWarning = lipgloss.Color("214")
	colorInverse = lipgloss.Color("231")
	colorChip    = lipgloss.Color("62")
	colorCursor  = lipgloss.Color("57")
	colorOnRow   = lipgloss.Color("229")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func badge(bg lipgloss.Color) lipgloss.Style {
	return fg(colorInverse).Background(bg).Padding(0, 1)
}

type theme struct {
	frame, pad                   lipgloss.Style
	title, subtitle, text, muted lipgloss.Style
	marked, danger, warning      lipgloss.Style
	prompt, chip                 lipgloss.Style
}

var ui = theme{
	frame:    lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(colorBorder),
	pad:      lipgloss.NewStyle().Padding(0, 1),
	title:    fg(colorAccent).Bold(true),
	subtitle: fg(colorSubtle),
	text:     fg(colorText),
	muted:    fg(colorMuted),
	marked:   fg(colorAccent).Bold(true),
	danger:   fg(colorDanger).Bold(true),
	warning:  fg(colorWarning).Bold(true),
	prompt:   badge(colorDanger).Bold(true),
	chip:     badge(colorChip),
}

// Fixed column widths; the path column takes whatever is left.
const (
	nameWidth     = 24
	groupWidth    = 5
	sizeWidth     = 12
	modifiedWidth = 19
	statusWidth   = 8
	minPathWidth  = 20
	chromeWidth   = 16
)

func tableColumns(pathWidth int) []table.Column {
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Grp", Width: groupWidth},
		{Title: "Path", Width: pathWidth},
		{Title: "Size", Width: sizeWidth},
		{Title: "Modified", Width: modifiedWidth},
		{Title: "Status", Width: statusWidth},
	}
}

func newCandidateTable() table.Model {
	st := table.DefaultStyles()
	st.Header = st.Header.BorderStyle(lipgloss.NormalBorder()).BorderForeground(colorBorder).BorderBottom(true).Bold(true)
	st.Selected = st.Selected.Foreground(colorOnRow).Background(colorCursor).Bold(true)

	t := table.New(table.WithColumns(tableColumns(minPathWidth)), table.WithFocused(true))
	t.SetStyles(st)
	return t
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(fg(colorAccent)))
}

func (m *model) resize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	width, height = max(width, 80), max(height, 12)
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height

	m.pathWidth = max(width-(nameWidth+groupWidth+sizeWidth+modifiedWidth+statusWidth+chromeWidth), minPathWidth)
	m.table.SetColumns(tableColumns(m.pathWidth))
	m.setTableRows()

	chrome := 0
	for _, part := range []string{m.headerView(), m.statusView(), m.footerView()} {
		chrome += lipgloss.Height(part)
	}
	m.table.SetHeight(max(height-chrome-4, 5))
	m.table.SetWidth(width - 4)

	barWidth := max(width-28, 20)
	m.scan.bar.Width = barWidth
	m.del.bar.Width = barWidth
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading…"
	}
	return ui.pad.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		ui.frame.Render(m.table.View()),
		m.statusView(),
		m.footerView(),
	))
}

func (m model) headerView() string {
	top := ui.title.Render("dupekill") + " " + ui.chip.Render(fmt.Sprintf("groups: %d", countGroups(m.rows)))
	sub := ui.subtitle.Render("Same-name duplicate finder") + " · " + ui.muted.Render("Root: "+m.root)
	return ui.pad.Render(top + "\n" + sub)
}

func (m model) statusView() string {
	if m.scanning {
		elapsed := time.Since(m.scan.started).Truncate(100 * time.Millisecond)
		line := fmt.Sprintf("%s Scanning… dirs %d · files %d · %s", m.spinner.View(), m.scan.dirs, m.scan.files, elapsed)
		return ui.text.Render(line) + "\n" + ui.muted.Render(m.scan.bar.ViewAs(m.scan.pulse))
	}

	var summary string
	if m.err != nil {
		summary = ui.danger.Render(fmt.Sprintf("Error: %v", m.err))
	} else {
		summary = ui.text.Render(m.summary())
	}
	if !m.deleting {
		return summary
	}
	return strings.Join([]string{
		summary,
		ui.muted.Render(fmt.Sprintf("Deleting %d/%d", m.del.done, m.del.total)),
		ui.muted.Render(m.del.bar.View()),
	}, "\n")
}

func (m model) summary() string {
	marked := 0
	for _, row := range m.rows {
		if row.Marked {
			marked++
		}
	}
	confirm := "off"
	if m.confirmDeletes {
		confirm = "on"
	}
	line := fmt.Sprintf("Candidates: %d · Marked: %d (%s) · Sort: %s · Confirm: %s",
		len(m.rows), marked, formatBytes(markedBytes(m.rows)), m.sortMode, confirm)
	if len(m.failed) > 0 {
		line += " · " + ui.warning.Render(fmt.Sprintf("Failed: %d", len(m.failed)))
	}
	return line
}

func (m model) footerView() string {
	if m.confirm.active {
		return ui.prompt.Render(fmt.Sprintf("Permanently delete %d marked file(s), %s? (y/n)", m.confirm.count, formatBytes(m.confirm.bytes)))
	}
	helpView := m.help.View(m.keys)
	switch {
	case m.warning != "":
		return ui.warning.Render(m.warning) + "\n" + helpView
	case m.lastEvent != "":
		return ui.muted.Render(m.lastEvent) + "\n" + helpView
	default:
		return helpView
	}
}

func (m model) rowStatus(row Candidate) string {
	if _, failed := m.failed[row.FullPath]; failed {
		return ui.danger.Render("error")
	}
	if row.Marked {
		return ui.marked.Render("marked")
	}
	return ui.muted.Render("ready")
}

func (m *model) setTableRows() {
	rows := make([]table.Row, len(m.rows))
	for i, row := range m.rows {
		rows[i] = table.Row{
			row.Name,
			strconv.Itoa(row.Group + 1),
			truncateLeft(row.FullPath, m.pathWidth),
			formatKB(row.FileRecord),
			formatTimestamp(row.ModifiedAt),
			m.rowStatus(row),
		}
	}
	m.table.SetRows(rows)
	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}
