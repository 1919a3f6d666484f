package model

// Task is the domain model for a task-list entry.
// Field names on the wire follow the rich profile; see Profile for the
// minimal alternative.
type Task struct {
	ID          string   `json:"id"`
	Name        string   `json:"taskName"`
	Description string   `json:"taskDescription"`
	Priority    Priority `json:"priorityLevel"`
	Completed   bool     `json:"isCompleted"`
}

// Draft holds candidate values for a task that does not exist yet.
type Draft struct {
	Name        string
	Description string
	Priority    Priority
}

// Stats counts completed and pending tasks.
func Stats(tasks []Task) (done, pending int) {
	for _, t := range tasks {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// Visible returns the tasks a view should show. Hiding completed tasks
// never touches the underlying collection.
func Visible(tasks []Task, showCompleted bool) []Task {
	if showCompleted {
		return tasks
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}
