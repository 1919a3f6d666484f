package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/store"
	"github.com/Makepad-fr/tasklist/internal/store/memstore"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	ctrlP = tea.KeyMsg{Type: tea.KeyCtrlP}
)

func newTestModel(t *testing.T, mem *memstore.Store, names ...string) (Model, *store.Store) {
	t.Helper()
	n := 0
	st := store.New(mem, store.WithLogger(log.New(io.Discard)), store.WithIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	ctx := context.Background()
	if _, err := st.Load(ctx); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if _, err := st.Add(ctx, model.Draft{Name: name}); err != nil {
			t.Fatal(err)
		}
	}
	return New(ctx, st, Options{ShowCompleted: true}), st
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCreateFormAddsAndPersists(t *testing.T) {
	mem := memstore.New()
	m, st := newTestModel(t, mem)

	m = send(m, runes("a"), runes("Buy milk"), tab, runes("two litres"), tab, ctrlP, ctrlP, enter)

	if m.mode != modeBrowse {
		t.Fatalf("form still open, err = %q", m.err)
	}
	tasks := st.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("tasks = %+v", tasks)
	}
	want := model.Task{ID: "id-1", Name: "Buy milk", Description: "two litres", Priority: model.PriorityHigh}
	if tasks[0] != want {
		t.Errorf("task = %+v, want %+v", tasks[0], want)
	}
	if mem.Writes() != 1 {
		t.Errorf("writes = %d, want 1", mem.Writes())
	}
	if len(m.list.Items()) != 1 {
		t.Errorf("list items = %d", len(m.list.Items()))
	}
}

func TestCreateFormRejectsShortName(t *testing.T) {
	mem := memstore.New()
	m, st := newTestModel(t, mem)

	m = send(m, runes("a"), runes("ab"), enter)
	if m.mode != modeCreate {
		t.Fatal("form closed on rejected name")
	}
	if !strings.Contains(m.err, "longer than 3") {
		t.Errorf("err = %q", m.err)
	}
	if len(st.Tasks()) != 0 || mem.Writes() != 0 {
		t.Error("rejected name reached storage")
	}
	if !strings.Contains(m.View(), "Add a task") {
		t.Error("form not rendered")
	}

	m = send(m, esc)
	if m.mode != modeBrowse || m.err != "" {
		t.Errorf("esc did not close form: mode=%v err=%q", m.mode, m.err)
	}
}

func TestToggleAndFilter(t *testing.T) {
	mem := memstore.New()
	m, st := newTestModel(t, mem, "Buy milk", "Walk dog")

	m = send(m, space)
	if !st.Tasks()[0].Completed {
		t.Fatal("space did not toggle the selected task")
	}

	m = send(m, runes("f"))
	if m.showCompleted {
		t.Fatal("filter flag not flipped")
	}
	if got := len(m.list.Items()); got != 1 {
		t.Errorf("visible items = %d, want 1", got)
	}
	if len(st.Tasks()) != 2 {
		t.Error("filter changed the collection")
	}
	writes := mem.Writes()
	m = send(m, runes("f"))
	if mem.Writes() != writes {
		t.Error("filter wrote to storage")
	}
	if got := len(m.list.Items()); got != 2 {
		t.Errorf("visible items = %d, want 2", got)
	}
}

func TestInlineEdit(t *testing.T) {
	mem := memstore.New()
	m, st := newTestModel(t, mem, "Buy milk")

	m = send(m, runes("e"))
	if m.mode != modeEdit || m.edit.Value() != "Buy milk" {
		t.Fatalf("edit mode = %v, value = %q", m.mode, m.edit.Value())
	}
	m.edit.SetValue("Buy oat milk")
	m = send(m, enter)

	got := st.Tasks()[0]
	if got.Name != "Buy oat milk" || got.ID != "id-1" {
		t.Errorf("task = %+v", got)
	}
	if m.mode != modeBrowse {
		t.Error("edit did not close")
	}
}

func TestInlineEditRejected(t *testing.T) {
	m, st := newTestModel(t, memstore.New(), "Buy milk")
	m = send(m, runes("e"))
	m.edit.SetValue("  ")
	m = send(m, enter)
	if m.mode != modeEdit || m.err == "" {
		t.Errorf("mode = %v, err = %q", m.mode, m.err)
	}
	if st.Tasks()[0].Name != "Buy milk" {
		t.Error("name changed")
	}
}

func TestDelete(t *testing.T) {
	m, st := newTestModel(t, memstore.New(), "Buy milk", "Walk dog")
	m = send(m, runes("d"))
	tasks := st.Tasks()
	if len(tasks) != 1 || tasks[0].Name != "Walk dog" {
		t.Fatalf("tasks = %+v", tasks)
	}
	if !strings.Contains(m.status, "Buy milk") {
		t.Errorf("status = %q", m.status)
	}
	m = send(m, runes("d"), runes("d"))
	if len(st.Tasks()) != 0 {
		t.Error("list not empty")
	}
	if !strings.Contains(m.View(), "No tasks to display") {
		t.Error("empty state not rendered")
	}
}

func TestStorageFailureShownNotApplied(t *testing.T) {
	mem := memstore.New()
	m, st := newTestModel(t, mem, "Buy milk")
	mem.WriteErr = errors.New("disk full")

	m = send(m, space)
	if st.Tasks()[0].Completed {
		t.Error("toggle applied despite write failure")
	}
	if !strings.Contains(m.err, "disk full") {
		t.Errorf("err = %q", m.err)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, memstore.New())
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("no command returned")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestDelegateFlattensMultilineFields(t *testing.T) {
	task := model.Task{ID: "id-1", Name: "Pack\nbags", Description: "line one\nline two\n\nline three", Priority: model.PriorityLow}
	items := []list.Item{listItem{task: task, pos: 1}}
	d := itemDelegate{}
	l := list.New(items, d, 60, 10)

	var buf bytes.Buffer
	d.Render(&buf, l, 0, items[0])
	out := buf.String()
	if rows := strings.Count(out, "\n") + 1; rows != d.Height() {
		t.Fatalf("rendered %d rows, delegate height is %d:\n%s", rows, d.Height(), out)
	}
	if !strings.Contains(out, "Pack bags") || !strings.Contains(out, "line one line two line three") {
		t.Errorf("fields not flattened:\n%s", out)
	}
}
