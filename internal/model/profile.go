package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Profile selects the field set used to serialize a collection. A deployment
// uses exactly one; switching invalidates data written with the other.
type Profile string

const (
	// ProfileRich stores id, taskName, taskDescription, priorityLevel, isCompleted.
	ProfileRich Profile = "rich"
	// ProfileMinimal stores id, todo, isCompleted.
	ProfileMinimal Profile = "minimal"
)

func ParseProfile(s string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProfileRich, nil
	case ProfileRich, ProfileMinimal:
		return p, nil
	}
	return "", fmt.Errorf("unknown profile %q (want rich or minimal)", s)
}

type minimalTask struct {
	ID        string `json:"id"`
	Todo      string `json:"todo"`
	Completed bool   `json:"isCompleted"`
}

// Encode serializes the whole collection. A nil slice encodes as [].
func (p Profile) Encode(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	var (
		b   []byte
		err error
	)
	switch p {
	case ProfileMinimal:
		out := make([]minimalTask, len(tasks))
		for i, t := range tasks {
			out[i] = minimalTask{ID: t.ID, Todo: t.Name, Completed: t.Completed}
		}
		b, err = json.Marshal(out)
	default:
		b, err = json.Marshal(tasks)
	}
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// Normalize drops what p cannot store, so a task held in memory equals the
// one Decode returns after Encode.
func (p Profile) Normalize(t Task) Task {
	if p == ProfileMinimal {
		t.Description = ""
		t.Priority = PriorityLow
	}
	return t
}

// Decode parses a stored collection. Minimal records come back with low
// priority and no description. A record without an id or a name means the
// value was written with the other profile, or by hand, and is an error.
func (p Profile) Decode(s string) ([]Task, error) {
	var tasks []Task
	switch p {
	case ProfileMinimal:
		var in []minimalTask
		if err := json.Unmarshal([]byte(s), &in); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		tasks = make([]Task, len(in))
		for i, m := range in {
			tasks[i] = Task{ID: m.ID, Name: m.Todo, Priority: PriorityLow, Completed: m.Completed}
		}
	default:
		if err := json.Unmarshal([]byte(s), &tasks); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		if tasks == nil {
			tasks = []Task{}
		}
	}
	for i, t := range tasks {
		if t.ID == "" || strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("record %d: missing id or name for %s profile", i, p)
		}
	}
	return tasks, nil
}
