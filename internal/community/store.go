// Package community 实现社区状态模型：问题、回复、当前用户档案，以及积分与问题分发规则。
package community

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"askher-go/internal/model"
	"askher-go/pkg/log"

	"github.com/google/uuid"
)

const (
	// MaxContentLength 是问题正文允许的最大字符数。
	MaxContentLength = 500
	// MaxTags 是单个问题允许的最多标签数。
	MaxTags = 5
)

// HeartPolicy 决定"送出爱心"时由谁的 heartsReceived 计数增加。
type HeartPolicy int

const (
	// HeartToActor 增加送出者自己的计数（产品现有行为）。
	HeartToActor HeartPolicy = iota
	// HeartToAuthor 增加被点赞回复作者的计数。
	HeartToAuthor
)

// ParseHeartPolicy 解析配置中的 "actor" / "author"。
func ParseHeartPolicy(raw string) (HeartPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "actor":
		return HeartToActor, nil
	case "author":
		return HeartToAuthor, nil
	}
	return HeartToActor, fmt.Errorf("unknown heart policy %q", raw)
}

// Rules 是积分经济规则。
type Rules struct {
	AskPoints     int
	RespondPoints int
	PublishPoints int
}

// DefaultRules 返回提问 2 分、回复 5 分、公开 3 分的默认规则。
func DefaultRules() Rules {
	return Rules{AskPoints: 2, RespondPoints: 5, PublishPoints: 3}
}

// Options 配置一个 Store。零值字段使用默认值。
type Options struct {
	Rules          *Rules
	HeartPolicy    HeartPolicy
	Seed           []model.Question
	PersistTimeout time.Duration
	NewID          func() string
	Now            func() time.Time
}

// Store 是一个会话内社区数据的唯一来源。
// 所有状态变更都在互斥锁内完成，彼此原子；档案写入槽位发生在释放锁之后。
type Store struct {
	mu sync.Mutex
	// seq 在每次档案变更时递增，persist 据此丢弃过期的快照。
	seq uint64

	writeMu sync.Mutex
	written uint64

	user      model.User
	questions []*model.Question
	// 仅在 HeartToAuthor 策略下使用：其他作者收到的爱心数。
	authorHearts map[string]int

	slot           ProfileSlot
	rules          Rules
	heartPolicy    HeartPolicy
	persistTimeout time.Duration
	newID          func() string
	now            func() time.Time
}

// NewStore 创建 Store，并从槽位加载用户档案；槽位为空或损坏时创建新的匿名用户并立即写回。
func NewStore(slot ProfileSlot, opts Options) *Store {
	s := &Store{
		slot:           slot,
		rules:          DefaultRules(),
		heartPolicy:    opts.HeartPolicy,
		persistTimeout: opts.PersistTimeout,
		newID:          opts.NewID,
		now:            opts.Now,
		authorHearts:   make(map[string]int),
	}
	if opts.Rules != nil {
		s.rules = *opts.Rules
	}
	if s.persistTimeout <= 0 {
		s.persistTimeout = 2 * time.Second
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, q := range opts.Seed {
		cp := q.Clone()
		s.questions = append(s.questions, &cp)
	}

	if user, ok := s.loadUser(); ok {
		s.user = user
		return s
	}
	s.user = model.User{ID: s.newID()}
	s.persist(s.commit())
	return s
}

func (s *Store) loadUser() (model.User, bool) {
	if s.slot == nil {
		return model.User{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	user, err := s.slot.Load(ctx)
	if err != nil {
		log.Warnf("[CommunityStore] 读取用户档案失败，将创建新用户: %v", err)
		return model.User{}, false
	}
	if user == nil || user.ID == "" {
		return model.User{}, false
	}
	return *user, true
}

// commit 记录一次档案变更，返回待写入的快照与序号。调用方必须持有 s.mu。
func (s *Store) commit() (model.User, uint64) {
	s.seq++
	return s.user, s.seq
}

// persist 在 s.mu 之外尽力写入槽位，失败只记录日志。
// 序号不大于已写入序号的快照是过期的，直接丢弃。
func (s *Store) persist(user model.User, seq uint64) {
	if s.slot == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if seq <= s.written {
		return
	}
	s.written = seq
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.slot.Save(ctx, user); err != nil {
		log.Warnw("[CommunityStore] 写入用户档案失败", "userId", user.ID, "error", err)
	}
}

// User 返回当前用户档案的快照。
func (s *Store) User() model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Questions 按集合当前顺序（最新提问在前）返回全部问题的副本。
func (s *Store) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(func(*model.Question) bool { return true })
}

// Question 按 id 查找问题。
func (s *Store) Question(id string) (model.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.find(id)
	if q == nil {
		return model.Question{}, fmt.Errorf("%w: question %q", ErrNotFound, id)
	}
	return q.Clone(), nil
}

// PublicQuestions 返回已公开到 Wisdom Wall 的问题，保持集合顺序。
func (s *Store) PublicQuestions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(func(q *model.Question) bool { return q.IsPublic })
}

// AddQuestion 创建一个私有问题并放到集合最前面，提问者获得 AskPoints 积分。
func (s *Store) AddQuestion(content string, tone model.Tone, tags []string) (model.Question, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Question{}, fmt.Errorf("%w: content is empty", ErrValidation)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return model.Question{}, fmt.Errorf("%w: content exceeds %d characters", ErrValidation, MaxContentLength)
	}
	if !tone.Valid() {
		return model.Question{}, fmt.Errorf("%w: unknown tone %q", ErrValidation, tone)
	}
	normalized, err := NormalizeTags(tags)
	if err != nil {
		return model.Question{}, err
	}

	s.mu.Lock()
	q := &model.Question{
		ID:        s.newID(),
		Content:   content,
		Tone:      tone,
		CreatedAt: s.now(),
		UserID:    s.user.ID,
		Responses: []model.Response{},
		IsPublic:  false,
		Tags:      normalized,
	}
	s.questions = append([]*model.Question{q}, s.questions...)

	s.user.QuestionsAsked++
	s.user.Points += s.rules.AskPoints
	out := q.Clone()
	user, seq := s.commit()
	s.mu.Unlock()

	s.persist(user, seq)
	return out, nil
}

// AddResponse 在问题末尾追加一条回复，回复者获得 RespondPoints 积分。
func (s *Store) AddResponse(questionID, content string) (model.Response, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Response{}, fmt.Errorf("%w: content is empty", ErrValidation)
	}

	s.mu.Lock()
	q := s.find(questionID)
	if q == nil {
		s.mu.Unlock()
		return model.Response{}, fmt.Errorf("%w: question %q", ErrNotFound, questionID)
	}
	r := model.Response{
		ID:        s.newID(),
		Content:   content,
		CreatedAt: s.now(),
		UserID:    s.user.ID,
		IsAI:      false,
	}
	q.Responses = append(q.Responses, r)

	s.user.ResponsesGiven++
	s.user.Points += s.rules.RespondPoints
	user, seq := s.commit()
	s.mu.Unlock()

	s.persist(user, seq)
	return r, nil
}

// MakeQuestionPublic 将问题公开到 Wisdom Wall。公开是单向的：
// 只有 false→true 的那一次会加 PublishPoints 积分并返回 changed=true，重复调用没有任何效果。
func (s *Store) MakeQuestionPublic(questionID string) (bool, error) {
	s.mu.Lock()
	q := s.find(questionID)
	if q == nil {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: question %q", ErrNotFound, questionID)
	}
	if q.IsPublic {
		s.mu.Unlock()
		return false, nil
	}
	q.IsPublic = true
	s.user.Points += s.rules.PublishPoints
	user, seq := s.commit()
	s.mu.Unlock()

	s.persist(user, seq)
	return true, nil
}

// GiveHeartToResponse 给问题下的某条回复送出爱心。计数归属由 HeartPolicy 决定。
func (s *Store) GiveHeartToResponse(questionID, responseID string) error {
	s.mu.Lock()
	q := s.find(questionID)
	if q == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: question %q", ErrNotFound, questionID)
	}
	var response *model.Response
	for i := range q.Responses {
		if q.Responses[i].ID == responseID {
			response = &q.Responses[i]
			break
		}
	}
	if response == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: response %q in question %q", ErrNotFound, responseID, questionID)
	}

	if s.heartPolicy == HeartToAuthor && response.UserID != s.user.ID {
		s.authorHearts[response.UserID]++
		s.mu.Unlock()
		return nil
	}
	s.user.HeartsReceived++
	user, seq := s.commit()
	s.mu.Unlock()

	s.persist(user, seq)
	return nil
}

// HeartsReceivedBy 返回某个用户在本会话中收到的爱心数。
func (s *Store) HeartsReceivedBy(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID == s.user.ID {
		return s.user.HeartsReceived
	}
	return s.authorHearts[userID]
}

// LeastAnsweredExcludingSelf 返回不是当前用户提出的问题，按回复数升序（稳定排序）取前 count 个。
func (s *Store) LeastAnsweredExcludingSelf(count int) []model.Question {
	if count <= 0 {
		return []model.Question{}
	}
	s.mu.Lock()
	others := s.snapshot(func(q *model.Question) bool { return q.UserID != s.user.ID })
	s.mu.Unlock()

	sort.SliceStable(others, func(i, j int) bool {
		return len(others[i].Responses) < len(others[j].Responses)
	})
	if count < len(others) {
		others = others[:count]
	}
	return others
}

// SampleQuestionsToAnswer 用给定种子从别人的问题中随机抽取 count 个，种子相同结果相同。
func (s *Store) SampleQuestionsToAnswer(count int, seed int64) []model.Question {
	if count <= 0 {
		return []model.Question{}
	}
	s.mu.Lock()
	others := s.snapshot(func(q *model.Question) bool { return q.UserID != s.user.ID })
	s.mu.Unlock()

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if count < len(others) {
		others = others[:count]
	}
	return others
}

// AskedToday 报告当前用户今天（按本地日历日）是否已经提过问题。
func (s *Store) AskedToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	y, m, d := s.now().Date()
	for _, q := range s.questions {
		if q.UserID != s.user.ID {
			continue
		}
		qy, qm, qd := q.CreatedAt.In(s.now().Location()).Date()
		if qy == y && qm == m && qd == d {
			return true
		}
	}
	return false
}

// NormalizeTags 去掉首尾空白和空标签，去重并保持顺序；超过 MaxTags 个时返回校验错误。
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("%w: at most %d tags allowed, got %d", ErrValidation, MaxTags, len(out))
	}
	return out, nil
}

func (s *Store) find(id string) *model.Question {
	for _, q := range s.questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

func (s *Store) snapshot(keep func(*model.Question) bool) []model.Question {
	out := make([]model.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, q.Clone())
		}
	}
	return out
}
