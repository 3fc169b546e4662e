package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"askher-go/internal/model"
	"askher-go/internal/service"
)

type fakeJournal struct {
	service.JournalService
	lastDevice string
	lastQuery  string
}

func (f *fakeJournal) List(deviceID, query string) ([]model.JournalEntry, error) {
	f.lastDevice, f.lastQuery = deviceID, query
	return []model.JournalEntry{{ID: "e1", DeviceID: deviceID, Title: "Today", Content: "ok", Mood: "good"}}, nil
}

func (f *fakeJournal) Delete(deviceID, id string) error {
	f.lastDevice = deviceID
	return fmt.Errorf("%w: journal entry %q", service.ErrNotFound, id)
}

func (f *fakeJournal) Export(_ context.Context, deviceID string) (*service.JournalExport, error) {
	return &service.JournalExport{
		ObjectName: "exports/" + deviceID + "/journal.json",
		URL:        "https://minio.local/x",
		ExpiresAt:  time.Now().Add(service.ExportLinkTTL),
		Entries:    1,
	}, nil
}

func TestJournalScopedToDevice(t *testing.T) {
	f := &fakeJournal{}
	r := NewRouter(Services{Journal: f}, RouterOptions{Quiet: true})

	_, env := perform(t, r, http.MethodGet, "/api/v1/journal?q=work", "dev-9", nil)
	if f.lastDevice != "dev-9" || f.lastQuery != "work" {
		t.Fatalf("expected device and query passed through, got %q %q", f.lastDevice, f.lastQuery)
	}
	var entries []map[string]interface{}
	_ = json.Unmarshal(env.Data, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, leaked := entries[0]["DeviceID"]; leaked {
		t.Fatal("device id must not be serialised")
	}
	if entries[0]["date"] == nil {
		t.Fatal("expected creation time exposed as date")
	}

	w, _ := perform(t, r, http.MethodDelete, "/api/v1/journal/e404", "dev-9", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	_, env = perform(t, r, http.MethodPost, "/api/v1/journal/export", "dev-9", nil)
	var export service.JournalExport
	_ = json.Unmarshal(env.Data, &export)
	if export.ObjectName != "exports/dev-9/journal.json" || export.Entries != 1 {
		t.Fatalf("unexpected export %+v", export)
	}
}
