package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Makepad-fr/tasklist/internal/model"
)

const maxNameWidth = 60

// Header is the title line with completion counts.
func Header(tasks []model.Task) string {
	d, p := model.Stats(tasks)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(current.Title, "Tasks"),
		C(current.Success, current.SymDone), d,
		C(current.Pending, current.SymPending), p,
		C(current.Accent, "Total"), len(tasks),
	)
}

// PriorityTag renders a priority in its theme color.
func PriorityTag(p model.Priority) string {
	color := current.Low
	switch p {
	case model.PriorityMedium:
		color = current.Medium
	case model.PriorityHigh:
		color = current.High
	}
	return C(color, "["+p.String()+"]")
}

// TaskLines renders one entry per task, numbered by position in all so that
// numbers stay valid references while a filter hides some tasks.
func TaskLines(all, shown []model.Task) []string {
	if len(shown) == 0 {
		return []string{C(current.Muted, "No tasks to display")}
	}
	pos := make(map[string]int, len(all))
	for i, t := range all {
		pos[t.ID] = i + 1
	}
	out := make([]string, 0, len(shown))
	for _, t := range shown {
		idx := fmt.Sprintf("%2d.", pos[t.ID])
		box, color := current.BoxUnchecked, current.Muted
		name := runewidth.Truncate(OneLine(t.Name), maxNameWidth, "...")
		if t.Completed {
			box, color = current.BoxChecked, current.Success
			name = C(strike, name)
		}
		out = append(out, fmt.Sprintf("%s %s %s %s %s",
			C(dim, idx), C(color, box), name, PriorityTag(t.Priority), C(current.Muted, shortID(t.ID))))
		if desc := OneLine(t.Description); desc != "" {
			out = append(out, "       "+C(current.Muted, runewidth.Truncate(desc, maxNameWidth, "...")))
		}
	}
	return out
}

// GroupLines renders pending tasks, then completed ones.
func GroupLines(all, shown []model.Task) []string {
	var pend, done []model.Task
	for _, t := range shown {
		if t.Completed {
			done = append(done, t)
		} else {
			pend = append(pend, t)
		}
	}
	section := func(title string, tasks []model.Task) []string {
		lines := []string{C(current.Accent, title)}
		if len(tasks) == 0 {
			return append(lines, C(current.Muted, "(none)"))
		}
		return append(lines, TaskLines(all, tasks)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// OneLine collapses every run of whitespace, newlines included, to a single
// space so a field always fits on one rendered row.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
