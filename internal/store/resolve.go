package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// Find returns the task with id.
func (s *Store) Find(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// Resolve turns a user reference into a task. A reference is a 1-based
// position, a full id, or an id prefix matching exactly one task.
func (s *Store) Resolve(ref string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.tasks) {
			return model.Task{}, fmt.Errorf("%w: index out of range: have %d, got %d", ErrNotFound, len(s.tasks), n)
		}
		return s.tasks[n-1], nil
	}
	if i := s.indexOf(ref); i >= 0 {
		return s.tasks[i], nil
	}

	var match []model.Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %q", ErrNotFound, ref)
	case 1:
		return match[0], nil
	default:
		return model.Task{}, fmt.Errorf("%w: %q matches %d tasks", ErrAmbiguous, ref, len(match))
	}
}
