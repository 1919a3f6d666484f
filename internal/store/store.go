// Package store owns the ordered task collection and keeps it mirrored to a
// key-value Storage after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// DefaultMinLength is the creation threshold: a trimmed name must be longer
// than this many characters.
const DefaultMinLength = 3

var (
	// ErrRejected marks input that failed validation. Nothing was changed.
	ErrRejected = errors.New("rejected")
	// ErrNotFound is returned by Resolve when no task matches a reference.
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguous is returned by Resolve when an id prefix matches several tasks.
	ErrAmbiguous = errors.New("ambiguous task reference")
)

// Storage is a synchronous string value under a single fixed key.
// ok is false when nothing has been written yet.
type Storage interface {
	Read(ctx context.Context) (value string, ok bool, err error)
	Write(ctx context.Context, value string) error
}

// Store is the authoritative in-memory collection. All methods are safe for
// concurrent use, though a single writer is expected.
type Store struct {
	mu      sync.Mutex
	storage Storage
	tasks   []model.Task

	minLength int
	profile   model.Profile
	newID     func() string
	logger    *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMinLength sets the creation threshold. Zero accepts any non-blank name.
func WithMinLength(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.minLength = n
		}
	}
}

// WithProfile selects the serialization profile.
func WithProfile(p model.Profile) Option {
	return func(s *Store) { s.profile = p }
}

// WithIDFunc replaces the id generator (uuid v4 by default).
func WithIDFunc(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty Store backed by st. Call Load to read persisted tasks.
func New(st Storage, opts ...Option) *Store {
	s := &Store{
		storage:   st,
		tasks:     []model.Task{},
		minLength: DefaultMinLength,
		profile:   model.ProfileRich,
		newID:     uuid.NewString,
		logger:    log.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MinLength reports the creation threshold so views can disable submit early.
func (s *Store) MinLength() int { return s.minLength }

// Acceptable reports whether name passes the creation threshold.
func (s *Store) Acceptable(name string) bool {
	return len([]rune(strings.TrimSpace(name))) > s.minLength
}

// Load replaces the in-memory collection with the stored one. A missing value
// yields an empty list. A value that does not parse is logged and treated as
// empty; it is overwritten by the next mutation.
func (s *Store) Load(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.storage.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if !ok {
		s.tasks = []model.Task{}
		return s.snapshot(), nil
	}
	tasks, err := s.profile.Decode(raw)
	if err != nil {
		s.logger.Warn("stored task list is malformed, starting empty", "err", err)
		s.tasks = []model.Task{}
		return s.snapshot(), nil
	}
	s.tasks = tasks
	s.logger.Debug("loaded tasks", "count", len(tasks))
	return s.snapshot(), nil
}

// Tasks returns a copy of the current collection.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Add appends a new task built from d. The name is trimmed and must be longer
// than the minimum; an empty priority means low.
func (s *Store) Add(ctx context.Context, d model.Draft) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(d.Name)
	if !s.Acceptable(name) {
		return s.snapshot(), fmt.Errorf("%w: name must be longer than %d characters", ErrRejected, s.minLength)
	}
	prio, err := model.ParsePriority(string(d.Priority))
	if err != nil {
		return s.snapshot(), fmt.Errorf("%w: %v", ErrRejected, err)
	}

	t := model.Task{
		ID:          s.newID(),
		Name:        name,
		Description: d.Description,
		Priority:    prio,
	}
	next := append(slices.Clone(s.tasks), t)
	if err := s.commit(ctx, next); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// ToggleCompleted flips the completion flag of the task with id.
// An unknown id is a no-op.
func (s *Store) ToggleCompleted(ctx context.Context, id string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return s.snapshot(), nil
	}
	next := slices.Clone(s.tasks)
	next[i].Completed = !next[i].Completed
	if err := s.commit(ctx, next); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Edit replaces the name of the task with id. The new name is held to the
// same threshold as Add. An unknown id is a no-op.
func (s *Store) Edit(ctx context.Context, id, text string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return s.snapshot(), nil
	}
	name := strings.TrimSpace(text)
	if !s.Acceptable(name) {
		return s.snapshot(), fmt.Errorf("%w: name must be longer than %d characters", ErrRejected, s.minLength)
	}
	next := slices.Clone(s.tasks)
	next[i].Name = name
	if err := s.commit(ctx, next); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// Delete removes the task with id. An unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return s.snapshot(), nil
	}
	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// commit persists next and only then makes it the current collection, so a
// failed write leaves memory and storage as they were. next must not alias
// s.tasks; fields the profile cannot store are cleared in place.
func (s *Store) commit(ctx context.Context, next []model.Task) error {
	for i := range next {
		next[i] = s.profile.Normalize(next[i])
	}
	raw, err := s.profile.Encode(next)
	if err != nil {
		return err
	}
	if err := s.storage.Write(ctx, raw); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	s.tasks = next
	s.logger.Debug("persisted tasks", "count", len(next))
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) snapshot() []model.Task {
	return slices.Clone(s.tasks)
}
