package reminders

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer store.Close()

	due := time.Now().Add(time.Hour).Truncate(time.Second)
	id, err := store.Add("water the plants", due)
	if err != nil {
		t.Fatalf("Add() = %v", err)
	}
	if id == 0 {
		t.Fatal("Add() returned zero id")
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatalf("Pending() = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Pending() len = %d, want 1", len(pending))
	}
	r := pending[0]
	if r.ID != id || r.Text != "water the plants" || !r.Due.Equal(due) || r.Done {
		t.Errorf("reminder = %+v", r)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add("call mom", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen = %v", err)
	}
	defer store.Close()

	pending, err := store.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Text != "call mom" {
		t.Errorf("after reopen: %+v", pending)
	}
}

func TestStorePendingOrderedByDue(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	now := time.Now()
	if _, err := store.Add("later", now.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add("sooner", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].Text != "sooner" || pending[1].Text != "later" {
		t.Errorf("order = %+v", pending)
	}
}

func TestStoreDueByAndMarkDone(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	now := time.Now()
	overdueID, err := store.Add("overdue", now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Add("future", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	due, err := store.DueBy(now)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 || due[0].ID != overdueID {
		t.Fatalf("DueBy() = %+v, want only the overdue reminder", due)
	}

	if err := store.MarkDone(overdueID); err != nil {
		t.Fatalf("MarkDone() = %v", err)
	}

	due, err = store.DueBy(now)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Errorf("DueBy() after done = %+v, want none", due)
	}

	pending, err := store.Pending()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Text != "future" {
		t.Errorf("Pending() after done = %+v", pending)
	}
}

func TestStoreMarkDoneUnknownID(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.MarkDone(42); err == nil {
		t.Error("MarkDone(42) on empty store = nil, want error")
	}
}
