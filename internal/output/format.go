// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"neolist/internal/config"
	"neolist/internal/todo"
)

const (
	// Separator is printed between snapshots in watch mode.
	Separator = "------------"

	// itemIndent aligns sub-task lines under the task title.
	itemIndent = "      "
)

// Printer writes tasks to w, styled for the chosen theme. Styling is only
// emitted when w is a color terminal.
type Printer struct {
	w io.Writer

	num      lipgloss.Style
	progress lipgloss.Style
	complete lipgloss.Style
	done     lipgloss.Style
	open     lipgloss.Style
	notes    lipgloss.Style
	header   lipgloss.Style
}

// New creates a Printer for w using the light or dark theme.
func New(w io.Writer, theme string) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetHasDarkBackground(theme == config.ThemeDark)

	accent := lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#A5A2FF"}
	muted := lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	good := lipgloss.AdaptiveColor{Light: "#1E8A3A", Dark: "#5FD787"}

	return &Printer{
		w:        w,
		num:      r.NewStyle().Foreground(muted),
		progress: r.NewStyle().Foreground(accent),
		complete: r.NewStyle().Foreground(good),
		done:     r.NewStyle().Foreground(muted).Strikethrough(true),
		open:     r.NewStyle(),
		notes:    r.NewStyle().Foreground(muted).Italic(true),
		header:   r.NewStyle().Bold(true).Foreground(accent),
	}
}

// Task prints a task line.
// Format: "{N:>4}  {TITLE}  {DONE}/{TOTAL}\n", the counter only when the
// task has sub-tasks.
func (p *Printer) Task(num int, t todo.Task) {
	line := p.num.Render(fmt.Sprintf("%4d", num)) + "  " + normalizeTitle(t.Title)
	if done, total := t.Progress(); total > 0 {
		line += "  " + p.counterStyle(done, total).Render(fmt.Sprintf("%d/%d", done, total))
	}
	fmt.Fprintln(p.w, line)
}

// counterStyle highlights tasks whose sub-tasks are all completed.
func (p *Printer) counterStyle(done, total int) lipgloss.Style {
	if done == total {
		return p.complete
	}
	return p.progress
}

// Item prints a sub-task line with its "task.item" reference.
// Format: "      {N}.{M}  [x] {TEXT}\n"
func (p *Printer) Item(taskNum, itemNum int, item todo.ChecklistItem) {
	ref := p.num.Render(fmt.Sprintf("%d.%d", taskNum, itemNum))
	text := normalizeText(item.Text)
	if item.Completed {
		fmt.Fprintf(p.w, "%s%s  [x] %s\n", itemIndent, ref, p.done.Render(text))
		return
	}
	fmt.Fprintf(p.w, "%s%s  [ ] %s\n", itemIndent, ref, p.open.Render(text))
}

// Notes prints the notes indented under the task, one output line per
// line of text. Empty notes print nothing.
func (p *Printer) Notes(notes string) {
	if strings.TrimSpace(notes) == "" {
		return
	}
	notes = strings.ReplaceAll(notes, "\r\n", "\n")
	for _, line := range strings.Split(strings.TrimRight(notes, "\n"), "\n") {
		fmt.Fprintln(p.w, itemIndent+p.notes.Render(line))
	}
}

// Details prints a task with its notes and every sub-task.
func (p *Printer) Details(num int, t todo.Task) {
	p.Task(num, t)
	p.Notes(t.Notes)
	for i, item := range t.Checklist {
		p.Item(num, i+1, item)
	}
}

// Tasks prints the collection. With details, notes and sub-tasks follow
// each task.
func (p *Printer) Tasks(tasks []todo.Task, details bool) {
	for i, t := range tasks {
		if details {
			p.Details(i+1, t)
			continue
		}
		p.Task(i+1, t)
	}
}

// Header prints a section title.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w, p.header.Render(title))
}

// Separator prints the watch mode separator.
func (p *Printer) Separator() {
	fmt.Fprintln(p.w, Separator)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
