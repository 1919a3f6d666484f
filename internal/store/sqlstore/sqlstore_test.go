package sqlstore

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore_ReadMissing(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, setupTestDB(t), SQLite, "todos")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, ok, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Read on empty table = %q, %v; want absent", v, ok)
	}
}

func TestStore_WriteOverwrites(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	s, err := New(ctx, db, SQLite, "todos")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, v := range []string{`[{"id":"a"}]`, `[]`} {
		if err := s.Write(ctx, v); err != nil {
			t.Fatalf("Write(%s): %v", v, err)
		}
	}
	v, ok, err := s.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("Read = %q, %v, %v", v, ok, err)
	}
	if v != "[]" {
		t.Errorf("Read = %q, want []", v)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestStore_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	a, err := New(ctx, db, SQLite, "todos")
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(ctx, db, SQLite, "archive")
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Write(ctx, "[1]"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Read(ctx); ok {
		t.Error("write under one key leaked into another")
	}
}

func TestNew_UnknownDialect(t *testing.T) {
	if _, err := New(context.Background(), setupTestDB(t), Dialect("oracle"), "todos"); err == nil {
		t.Error("expected error for unknown dialect")
	}
}

func TestOpen_SQLiteMemoryKeepsOneDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, SQLite, ":memory:", "todos")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	for _, v := range []string{`[]`, `[{"id":"a"}]`} {
		if err := s.Write(ctx, v); err != nil {
			t.Fatalf("Write(%s): %v", v, err)
		}
		got, ok, err := s.Read(ctx)
		if err != nil || !ok || got != v {
			t.Errorf("Read after Write(%s) = %q, %v, %v", v, got, ok, err)
		}
	}
}
