package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"askher-go/internal/model"
	"askher-go/pkg/tasks"
)

func newTestForum(pub *stubPublisher) (*forumService, *stubQuestionRepo, *stubResponseRepo, *stubReactionRepo) {
	qs := &stubQuestionRepo{}
	rs := &stubResponseRepo{}
	reactions := newStubReactionRepo()
	var p tasks.Publisher
	if pub != nil {
		p = pub
	}
	svc := NewForumService(qs, rs, reactions, p).(*forumService)
	n := 0
	svc.newID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }
	return svc, qs, rs, reactions
}

func TestCreateQuestionEnqueuesAIReply(t *testing.T) {
	pub := &stubPublisher{}
	svc, qs, _, _ := newTestForum(pub)

	q, err := svc.CreateQuestion(context.Background(), "user-1", "  Is it normal to feel lost at 30?  ", "just_listen")
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if q.Tone != model.ToneListen || q.Content != "Is it normal to feel lost at 30?" {
		t.Fatalf("unexpected question %+v", q)
	}
	if len(qs.items) != 1 {
		t.Fatalf("expected question stored, got %d", len(qs.items))
	}
	if len(pub.tasks) != 1 || pub.tasks[0].Type != tasks.TypeAIReply || pub.tasks[0].QuestionID != q.ID {
		t.Fatalf("expected ai_reply task, got %+v", pub.tasks)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	svc, qs, _, _ := newTestForum(nil)
	cases := []struct{ user, content, tone string }{
		{"", "hello", "advice"},
		{"u", "", "advice"},
		{"u", "hello", "rant"},
	}
	for _, c := range cases {
		if _, err := svc.CreateQuestion(context.Background(), c.user, c.content, c.tone); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected ErrValidation, got %v", c, err)
		}
	}
	if len(qs.items) != 0 {
		t.Fatal("invalid questions must not be stored")
	}
}

func TestCreateQuestionWithoutQueue(t *testing.T) {
	svc, _, _, _ := newTestForum(&stubPublisher{err: errors.New("down")})
	if _, err := svc.CreateQuestion(context.Background(), "u", "hi", "advice"); err != nil {
		t.Fatalf("queue failure must not fail question creation: %v", err)
	}
}

func TestResponsesFlow(t *testing.T) {
	svc, _, _, _ := newTestForum(nil)
	q, _ := svc.CreateQuestion(context.Background(), "asker", "hi", "advice")

	if _, err := svc.CreateResponse("nope", "u", "x", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown question, got %v", err)
	}
	first, err := svc.CreateResponse(q.ID, "helper", "first", false)
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	second, _ := svc.CreateResponse(q.ID, "helper", "❤️", true)

	list, err := svc.ResponsesForQuestion(q.ID)
	if err != nil || len(list) != 2 || list[0].ID != first.ID || !list[1].IsEmoji {
		t.Fatalf("unexpected responses %+v err=%v", list, err)
	}
	mine, _ := svc.ResponsesByUser("helper")
	if len(mine) != 2 {
		t.Fatalf("expected 2 responses by helper, got %d", len(mine))
	}
	got, err := svc.GetResponse(second.ID)
	if err != nil || got.Content != "❤️" {
		t.Fatalf("GetResponse: %+v %v", got, err)
	}
	if _, err := svc.GetResponse("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTrendingReturnsTenMostRecent(t *testing.T) {
	svc, _, _, _ := newTestForum(nil)
	q, _ := svc.CreateQuestion(context.Background(), "asker", "hi", "advice")
	var last *model.ResponseRecord
	for i := 0; i < 12; i++ {
		last, _ = svc.CreateResponse(q.ID, "u", fmt.Sprintf("r%d", i), false)
	}
	trending, _ := svc.Trending()
	if len(trending) != TrendingLimit {
		t.Fatalf("expected %d trending, got %d", TrendingLimit, len(trending))
	}
	if trending[0].ID != last.ID {
		t.Fatalf("expected newest response first, got %s", trending[0].Content)
	}
}

func TestUpvoteOncePerUser(t *testing.T) {
	svc, _, _, _ := newTestForum(nil)
	q, _ := svc.CreateQuestion(context.Background(), "asker", "hi", "advice")
	r, _ := svc.CreateResponse(q.ID, "helper", "ok", false)

	created, err := svc.Upvote(r.ID, "fan")
	if err != nil || !created {
		t.Fatalf("first upvote: %v %v", created, err)
	}
	created, _ = svc.Upvote(r.ID, "fan")
	if created {
		t.Fatal("duplicate upvote must not count")
	}
	_, _ = svc.Upvote(r.ID, "other")
	if n, _ := svc.UpvoteCount(r.ID); n != 2 {
		t.Fatalf("expected 2 upvotes, got %d", n)
	}
	if _, err := svc.Upvote("missing", "fan"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Upvote(r.ID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestComments(t *testing.T) {
	svc, _, _, _ := newTestForum(nil)
	q, _ := svc.CreateQuestion(context.Background(), "asker", "hi", "advice")
	r, _ := svc.CreateResponse(q.ID, "helper", "ok", false)

	_, _ = svc.AddComment(r.ID, "a", "first")
	_, _ = svc.AddComment(r.ID, "b", "second")
	cs, _ := svc.Comments(r.ID)
	if len(cs) != 2 || cs[0].Content != "first" {
		t.Fatalf("expected comments oldest first, got %+v", cs)
	}
	if _, err := svc.AddComment("missing", "a", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
