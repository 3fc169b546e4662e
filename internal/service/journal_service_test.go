package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func newTestJournal(objects *stubObjectStore) (*journalService, *stubJournalRepo) {
	repo := &stubJournalRepo{}
	svc := NewJournalService(repo, nil).(*journalService)
	if objects != nil {
		svc.objects = objects
	}
	n := 0
	svc.newID = func() string { n++; return fmt.Sprintf("entry-%d", n) }
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC) }
	return svc, repo
}

func TestJournalCreateDefaultsMood(t *testing.T) {
	svc, _ := newTestJournal(nil)
	entry, err := svc.Create("dev-1", JournalInput{Title: " Sunday ", Content: "Slept in.", Tags: []string{"rest", "rest", " "}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if entry.Title != "Sunday" || entry.Mood != "neutral" || entry.DeviceID != "dev-1" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(entry.Tags) != 1 || entry.Tags[0] != "rest" {
		t.Fatalf("expected deduplicated tags, got %v", entry.Tags)
	}
}

func TestJournalValidation(t *testing.T) {
	svc, repo := newTestJournal(nil)
	cases := []JournalInput{
		{Title: "", Content: "x"},
		{Title: "x", Content: "  "},
		{Title: "x", Content: "y", Mood: "ecstatic"},
		{Title: "x", Content: "y", Tags: []string{"a", "b", "c", "d", "e", "f"}},
	}
	for _, in := range cases {
		if _, err := svc.Create("dev-1", in); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", in, err)
		}
	}
	if len(repo.entries) != 0 {
		t.Fatal("invalid entries must not be stored")
	}
}

func TestJournalEntriesArePrivatePerDevice(t *testing.T) {
	svc, _ := newTestJournal(nil)
	mine, _ := svc.Create("dev-1", JournalInput{Title: "Mine", Content: "private", Mood: "down"})

	if _, err := svc.Update("dev-2", mine.ID, JournalInput{Title: "x", Content: "y"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("another device must not update the entry, got %v", err)
	}
	if err := svc.Delete("dev-2", mine.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("another device must not delete the entry, got %v", err)
	}
	list, _ := svc.List("dev-2", "")
	if len(list) != 0 {
		t.Fatalf("expected no entries for dev-2, got %d", len(list))
	}
}

func TestJournalUpdateDeleteAndSearch(t *testing.T) {
	svc, _ := newTestJournal(nil)
	a, _ := svc.Create("dev-1", JournalInput{Title: "Work", Content: "Deadline stress", Tags: []string{"work"}})
	_, _ = svc.Create("dev-1", JournalInput{Title: "Walk", Content: "Park with mum", Mood: "great"})

	updated, err := svc.Update("dev-1", a.ID, JournalInput{Title: "Work", Content: "Deadline met", Mood: "good"})
	if err != nil || updated.Content != "Deadline met" || updated.Mood != "good" {
		t.Fatalf("Update: %+v %v", updated, err)
	}
	hits, _ := svc.List("dev-1", "DEADLINE")
	if len(hits) != 1 || hits[0].ID != a.ID {
		t.Fatalf("expected case-insensitive match on content, got %+v", hits)
	}
	if err := svc.Delete("dev-1", a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete("dev-1", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestJournalExport(t *testing.T) {
	objects := &stubObjectStore{}
	svc, _ := newTestJournal(objects)
	_, _ = svc.Create("dev-1", JournalInput{Title: "One", Content: "first"})
	_, _ = svc.Create("dev-1", JournalInput{Title: "Two", Content: "second"})

	out, err := svc.Export(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Entries != 2 || objects.expiry != ExportLinkTTL {
		t.Fatalf("unexpected export %+v expiry=%s", out, objects.expiry)
	}
	if out.ObjectName != "exports/dev-1/journal-20250601T203000Z.json" || !strings.Contains(out.URL, out.ObjectName) {
		t.Fatalf("unexpected object name %q url %q", out.ObjectName, out.URL)
	}
	var payload struct {
		Entries []struct {
			Title string `json:"title"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(objects.objects[out.ObjectName], &payload); err != nil || len(payload.Entries) != 2 {
		t.Fatalf("export payload: %v %+v", err, payload)
	}
}

func TestJournalExportWithoutStorage(t *testing.T) {
	svc, _ := newTestJournal(nil)
	if _, err := svc.Export(context.Background(), "dev-1"); err == nil {
		t.Fatal("expected error when object storage is not configured")
	}
}
