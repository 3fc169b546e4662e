package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"askher-go/internal/model"
	"askher-go/internal/repository"
	"askher-go/pkg/es"
	"askher-go/pkg/llm"
	"askher-go/pkg/tasks"
)

type stubProfiles struct {
	mu    sync.Mutex
	users map[string]model.User
	saves int
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{users: make(map[string]model.User)}
}

func (s *stubProfiles) Load(_ context.Context, deviceID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[deviceID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *stubProfiles) Save(_ context.Context, deviceID string, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.users[deviceID] = user
	return nil
}

func (s *stubProfiles) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type stubPublisher struct {
	mu    sync.Mutex
	tasks []tasks.Task
	err   error
}

func (s *stubPublisher) Publish(_ context.Context, task tasks.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

type stubQuestionRepo struct {
	items []model.QuestionRecord
}

func (s *stubQuestionRepo) Create(q *model.QuestionRecord) error {
	s.items = append(s.items, *q)
	return nil
}

func (s *stubQuestionRepo) FindByID(id string) (*model.QuestionRecord, error) {
	for _, q := range s.items {
		if q.ID == id {
			cp := q
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubQuestionRepo) FindAll() ([]model.QuestionRecord, error) {
	return append([]model.QuestionRecord(nil), s.items...), nil
}

func (s *stubQuestionRepo) FindByUserID(userID string) ([]model.QuestionRecord, error) {
	var out []model.QuestionRecord
	for _, q := range s.items {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}

type stubResponseRepo struct {
	items []model.ResponseRecord
}

func (s *stubResponseRepo) Create(r *model.ResponseRecord) error {
	s.items = append(s.items, *r)
	return nil
}

func (s *stubResponseRepo) FindByID(id string) (*model.ResponseRecord, error) {
	for _, r := range s.items {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubResponseRepo) FindAll() ([]model.ResponseRecord, error) {
	return append([]model.ResponseRecord(nil), s.items...), nil
}

func (s *stubResponseRepo) FindByQuestionID(id string) ([]model.ResponseRecord, error) {
	var out []model.ResponseRecord
	for _, r := range s.items {
		if r.QuestionID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResponseRepo) FindByUserID(userID string) ([]model.ResponseRecord, error) {
	var out []model.ResponseRecord
	for _, r := range s.items {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubResponseRepo) FindRecent(limit int) ([]model.ResponseRecord, error) {
	out := append([]model.ResponseRecord(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stubReactionRepo struct {
	upvotes  map[string]map[string]bool
	comments []model.Comment
}

func newStubReactionRepo() *stubReactionRepo {
	return &stubReactionRepo{upvotes: make(map[string]map[string]bool)}
}

func (s *stubReactionRepo) AddUpvote(u *model.Upvote) (bool, error) {
	if s.upvotes[u.ResponseID] == nil {
		s.upvotes[u.ResponseID] = make(map[string]bool)
	}
	if s.upvotes[u.ResponseID][u.UserID] {
		return false, nil
	}
	s.upvotes[u.ResponseID][u.UserID] = true
	return true, nil
}

func (s *stubReactionRepo) CountUpvotes(responseID string) (int64, error) {
	return int64(len(s.upvotes[responseID])), nil
}

func (s *stubReactionRepo) AddComment(c *model.Comment) error {
	s.comments = append(s.comments, *c)
	return nil
}

func (s *stubReactionRepo) FindComments(responseID string) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range s.comments {
		if c.ResponseID == responseID {
			out = append(out, c)
		}
	}
	return out, nil
}

type stubConversationRepo struct {
	mu       sync.Mutex
	sessions map[string][]model.ChatMessage
	limit    int
}

func newStubConversationRepo(limit int) *stubConversationRepo {
	return &stubConversationRepo{sessions: make(map[string][]model.ChatMessage), limit: limit}
}

func (s *stubConversationRepo) GetConversationHistory(_ context.Context, id string) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatMessage{}, s.sessions[id]...), nil
}

func (s *stubConversationRepo) UpdateConversationHistory(_ context.Context, id string, msgs []model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(msgs) > s.limit {
		msgs = msgs[len(msgs)-s.limit:]
	}
	s.sessions[id] = msgs
	return nil
}

func (s *stubConversationRepo) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type stubLLM struct {
	reply    string
	err      error
	messages []llm.Message
}

func (s *stubLLM) Complete(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	s.messages = messages
	return s.reply, s.err
}

func (s *stubLLM) StreamChatMessages(_ context.Context, messages []llm.Message, _ *llm.GenerationParams, w llm.MessageWriter) error {
	s.messages = messages
	if s.err != nil {
		return s.err
	}
	for _, word := range strings.SplitAfter(s.reply, " ") {
		if err := w.WriteMessage(1, []byte(word)); err != nil {
			return err
		}
	}
	return nil
}

type stubJournalRepo struct {
	entries []model.JournalEntry
}

func (s *stubJournalRepo) Create(e *model.JournalEntry) error {
	s.entries = append([]model.JournalEntry{*e}, s.entries...)
	return nil
}

func (s *stubJournalRepo) Update(e *model.JournalEntry) error {
	for i := range s.entries {
		if s.entries[i].ID == e.ID && s.entries[i].DeviceID == e.DeviceID {
			s.entries[i] = *e
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubJournalRepo) Delete(deviceID, id string) error {
	for i := range s.entries {
		if s.entries[i].ID == id && s.entries[i].DeviceID == deviceID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *stubJournalRepo) FindByID(deviceID, id string) (*model.JournalEntry, error) {
	for _, e := range s.entries {
		if e.ID == id && e.DeviceID == deviceID {
			cp := e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubJournalRepo) FindByDevice(deviceID, query string) ([]model.JournalEntry, error) {
	q := strings.ToLower(query)
	var out []model.JournalEntry
	for _, e := range s.entries {
		if e.DeviceID != deviceID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Title+" "+e.Content+" "+strings.Join(e.Tags, " ")), q) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type stubObjectStore struct {
	objects map[string][]byte
	expiry  time.Duration
}

func (s *stubObjectStore) Put(_ context.Context, name, _ string, data []byte) error {
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[name] = data
	return nil
}

func (s *stubObjectStore) PresignedURL(_ context.Context, name string, expiry time.Duration) (string, error) {
	if _, ok := s.objects[name]; !ok {
		return "", errors.New("no such object")
	}
	s.expiry = expiry
	return "https://minio.local/" + name + "?sig=abc", nil
}

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) CreateEmbedding(context.Context, string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

type stubSearcher struct {
	hits   []es.WisdomHit
	query  string
	vector []float32
	tags   []string
	topK   int
}

func (s *stubSearcher) Search(_ context.Context, query string, vector []float32, tags []string, topK int) ([]es.WisdomHit, error) {
	s.query, s.vector, s.tags, s.topK = query, vector, tags, topK
	return s.hits, nil
}
