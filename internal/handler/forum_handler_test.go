package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"askher-go/internal/model"
	"askher-go/internal/service"
)

type fakeForum struct {
	service.ForumService
	questions map[string]model.QuestionRecord
	upvotes   map[string]int64
}

func (f *fakeForum) CreateQuestion(_ context.Context, userID, content, tone string) (*model.QuestionRecord, error) {
	parsed, valid := model.ParseTone(tone)
	if !valid {
		return nil, fmt.Errorf("%w: unknown tone %q", service.ErrValidation, tone)
	}
	q := model.QuestionRecord{ID: fmt.Sprintf("q%d", len(f.questions)+1), UserID: userID, Content: content, Tone: parsed}
	f.questions[q.ID] = q
	return &q, nil
}

func (f *fakeForum) GetQuestion(id string) (*model.QuestionRecord, error) {
	q, found := f.questions[id]
	if !found {
		return nil, fmt.Errorf("%w: question %q", service.ErrNotFound, id)
	}
	return &q, nil
}

func (f *fakeForum) UpvoteCount(responseID string) (int64, error) {
	return f.upvotes[responseID], nil
}

func (f *fakeForum) Trending() ([]model.ResponseRecord, error) {
	return nil, fmt.Errorf("database is down")
}

func newForumRouter() (*fakeForum, http.Handler) {
	f := &fakeForum{questions: map[string]model.QuestionRecord{}, upvotes: map[string]int64{"r1": 3}}
	return f, NewRouter(Services{Forum: f}, RouterOptions{Quiet: true})
}

func TestForumCreateAndGetQuestion(t *testing.T) {
	_, r := newForumRouter()

	w, env := perform(t, r, http.MethodPost, "/questions", "", CreateQuestionRequest{UserID: "u1", Content: "Feeling stuck", Tone: "just_listen"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var q model.QuestionRecord
	_ = json.Unmarshal(env.Data, &q)
	if q.Tone != model.ToneListen {
		t.Fatalf("expected just_listen to map to listen, got %q", q.Tone)
	}

	w, _ = perform(t, r, http.MethodGet, "/questions/"+q.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w, _ = perform(t, r, http.MethodGet, "/questions/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w, _ = perform(t, r, http.MethodPost, "/questions", "", CreateQuestionRequest{UserID: "u1", Content: "x", Tone: "yell"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tone, got %d", w.Code)
	}
}

func TestForumUpvoteCountAndInternalError(t *testing.T) {
	_, r := newForumRouter()

	_, env := perform(t, r, http.MethodGet, "/responses/r1/upvotes", "", nil)
	var out struct {
		Count int64 `json:"count"`
	}
	_ = json.Unmarshal(env.Data, &out)
	if out.Count != 3 {
		t.Fatalf("expected 3 upvotes, got %d", out.Count)
	}

	w, env := perform(t, r, http.MethodGet, "/trending", "", nil)
	if w.Code != http.StatusInternalServerError || env.Message != "internal server error" {
		t.Fatalf("expected opaque 500, got %d %q", w.Code, env.Message)
	}
}
