package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"askher-go/internal/model"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": status, "message": message, "data": data})
}

func TestAPIErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, `not found: question "q9"`, nil)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Question(context.Background(), "q9")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != `not found: question "q9"` {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestAPIErrorWithPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Trending(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestForumCallsSendExpectedBodies(t *testing.T) {
	var got map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/questions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeEnvelope(w, http.StatusOK, "success", []model.QuestionRecord{{ID: "q1"}})
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeEnvelope(w, http.StatusCreated, "success", model.QuestionRecord{ID: "q2", Tone: model.ToneListen})
	})
	mux.HandleFunc("/responses/r1/upvote", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", map[string]bool{"created": true})
	})
	mux.HandleFunc("/responses/r1/upvotes", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", map[string]int64{"count": 4})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	q, err := c.AskQuestion(ctx, "u1", "Feeling stuck", "just_listen")
	if err != nil || q.ID != "q2" {
		t.Fatalf("AskQuestion: %+v %v", q, err)
	}
	if got["user_id"] != "u1" || got["tone"] != "just_listen" {
		t.Fatalf("unexpected request body %v", got)
	}
	qs, err := c.Questions(ctx)
	if err != nil || len(qs) != 1 {
		t.Fatalf("Questions: %v %v", qs, err)
	}
	created, err := c.Upvote(ctx, "r1", "u1")
	if err != nil || !created {
		t.Fatalf("Upvote: %v %v", created, err)
	}
	n, err := c.Upvotes(ctx, "r1")
	if err != nil || n != 4 {
		t.Fatalf("Upvotes: %d %v", n, err)
	}
}

func TestDeviceIDAdoptedFromServer(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get(deviceIDHeader))
		mu.Unlock()
		w.Header().Set(deviceIDHeader, "dev-from-server")
		writeEnvelope(w, http.StatusOK, "success", []model.ResponseRecord{})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, _ = c.Trending(context.Background())
	_, _ = c.Trending(context.Background())
	if c.DeviceID() != "dev-from-server" {
		t.Fatalf("expected device id adopted, got %q", c.DeviceID())
	}
	if seen[0] != "" || seen[1] != "dev-from-server" {
		t.Fatalf("unexpected device headers %v", seen)
	}
}

func TestChatRemembersSession(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		sent = append(sent, body["session_id"])
		writeEnvelope(w, http.StatusOK, "success", map[string]string{"response": "I hear you.", "session_id": "sid-1"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	for i := 0; i < 2; i++ {
		reply, err := c.Chat(context.Background(), "hello")
		if err != nil || reply != "I hear you." {
			t.Fatalf("Chat: %q %v", reply, err)
		}
	}
	if len(sent) != 2 || sent[0] != "" || sent[1] != "sid-1" {
		t.Fatalf("expected session id resent, got %v", sent)
	}
	c.ResetSession()
	if c.SessionID() != "" {
		t.Fatal("ResetSession should clear the session id")
	}
}

func TestChatFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, "chatbot unavailable", map[string]string{
			"response":   "I apologize, but I'm having trouble processing that right now.",
			"session_id": "sid-2",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	reply, err := c.Chat(context.Background(), "hello")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected APIError 500, got %v", err)
	}
	if reply == "" || c.SessionID() != "sid-2" {
		t.Fatalf("expected fallback reply and session kept, got %q %q", reply, c.SessionID())
	}
}

func TestHistoryWithoutSession(t *testing.T) {
	c := New("http://127.0.0.1:1")
	history, err := c.History(context.Background())
	if err != nil || len(history) != 0 {
		t.Fatalf("expected empty history without a session, got %v %v", history, err)
	}
}
