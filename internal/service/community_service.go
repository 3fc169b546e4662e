package service

import (
	"context"
	"sync"
	"time"

	"askher-go/internal/community"
	"askher-go/internal/model"
	"askher-go/internal/repository"
	"askher-go/pkg/log"
	"askher-go/pkg/metrics"
	"askher-go/pkg/tasks"

	"github.com/google/uuid"
)

// ProfileView 是 /me 返回的档案视图。
type ProfileView struct {
	User         model.User `json:"user"`
	Title        string     `json:"title"`
	NextTitle    string     `json:"nextTitle,omitempty"`
	PointsToNext int        `json:"pointsToNext"`
	AskedToday   bool       `json:"askedToday"`
}

// CommunityService 为每个设备托管一个社区会话。
// 只读操作不会为尚无会话的设备创建会话，而是返回仅含示例问题的访客视图。
type CommunityService interface {
	Profile(deviceID string) ProfileView
	Questions(deviceID string) []model.Question
	Ask(ctx context.Context, deviceID, content string, tone model.Tone, tags []string) (model.Question, error)
	Respond(deviceID, questionID, content string) (model.Response, error)
	Publish(ctx context.Context, deviceID, questionID string) (bool, error)
	Heart(deviceID, questionID, responseID string) error
	Wall(deviceID string, filter community.WallFilter) []model.Question
	// WallTags 返回 Wisdom Wall 上出现过的全部标签，去重并排序。
	WallTags(deviceID string) []string
	// ToAnswer 在 seed 为 nil 时返回回复最少的问题，否则按 seed 随机抽样。
	ToAnswer(deviceID string, count int, seed *int64) []model.Question
	// EvictIdle 释放超过空闲时长未访问的会话，返回释放的数量。
	EvictIdle() int
}

// CommunityOptions 是创建 CommunityService 时的可选配置。
type CommunityOptions struct {
	Rules          community.Rules
	HeartPolicy    community.HeartPolicy
	SeedSamples    bool
	PersistTimeout time.Duration
	// IdleTimeout 之后未被访问的会话会被 EvictIdle 释放，默认 24 小时。
	IdleTimeout time.Duration
}

const defaultIdleTimeout = 24 * time.Hour

type deviceSession struct {
	store    *community.Store
	lastSeen time.Time
}

type communityService struct {
	profiles  repository.ProfileRepository
	publisher tasks.Publisher
	metrics   *metrics.Metrics
	opts      CommunityOptions
	now       func() time.Time

	// guest 只服务只读请求，从不写入槽位。
	guest *community.Store

	mu       sync.Mutex
	sessions map[string]*deviceSession
}

// NewCommunityService 创建 CommunityService。profiles 为 nil 时档案只保存在内存中。
func NewCommunityService(profiles repository.ProfileRepository, publisher tasks.Publisher, m *metrics.Metrics, opts CommunityOptions) CommunityService {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	s := &communityService{
		profiles:  profiles,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		now:       time.Now,
		sessions:  make(map[string]*deviceSession),
	}
	s.guest = s.newStore(nil)
	return s
}

// deviceSlot 把按设备分键的档案仓库适配为单个槽位。
type deviceSlot struct {
	repo     repository.ProfileRepository
	deviceID string
}

func (d deviceSlot) Load(ctx context.Context) (*model.User, error) {
	return d.repo.Load(ctx, d.deviceID)
}

func (d deviceSlot) Save(ctx context.Context, user model.User) error {
	return d.repo.Save(ctx, d.deviceID, user)
}

func (s *communityService) newStore(slot community.ProfileSlot) *community.Store {
	var seed []model.Question
	if s.opts.SeedSamples {
		seed = community.SampleQuestions(s.now())
	}
	rules := s.opts.Rules
	return community.NewStore(slot, community.Options{
		Rules:          &rules,
		HeartPolicy:    s.opts.HeartPolicy,
		Seed:           seed,
		PersistTimeout: s.opts.PersistTimeout,
		Now:            s.now,
	})
}

// store 返回设备对应的会话，不存在时创建。只有写操作调用它。
func (s *communityService) store(deviceID string) *community.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[deviceID]; ok {
		sess.lastSeen = s.now()
		return sess.store
	}
	var slot community.ProfileSlot
	if s.profiles != nil {
		slot = deviceSlot{repo: s.profiles, deviceID: deviceID}
	}
	st := s.newStore(slot)
	s.sessions[deviceID] = &deviceSession{store: st, lastSeen: s.now()}
	log.Infof("[CommunityService] 新建社区会话, device: %s, user: %s", deviceID, st.User().ID)
	return st
}

// view 返回只读请求使用的会话。设备尚无会话时，若槽位中已有档案则恢复会话，否则返回 nil。
func (s *communityService) view(deviceID string) *community.Store {
	s.mu.Lock()
	if sess, ok := s.sessions[deviceID]; ok {
		sess.lastSeen = s.now()
		s.mu.Unlock()
		return sess.store
	}
	s.mu.Unlock()

	if s.profiles == nil || deviceID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout())
	defer cancel()
	user, err := s.profiles.Load(ctx, deviceID)
	if err != nil {
		log.Warnw("[CommunityService] 读取用户档案失败，使用访客视图", "device", deviceID, "error", err)
		return nil
	}
	if user == nil || user.ID == "" {
		return nil
	}
	return s.store(deviceID)
}

// readStore 返回设备的会话，没有时退回访客视图。
func (s *communityService) readStore(deviceID string) (*community.Store, bool) {
	if st := s.view(deviceID); st != nil {
		return st, true
	}
	return s.guest, false
}

func (s *communityService) persistTimeout() time.Duration {
	if s.opts.PersistTimeout > 0 {
		return s.opts.PersistTimeout
	}
	return 2 * time.Second
}

func (s *communityService) EvictIdle() int {
	cutoff := s.now().Add(-s.opts.IdleTimeout)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for deviceID, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, deviceID)
			evicted++
		}
	}
	if evicted > 0 {
		log.Infof("[CommunityService] 已释放 %d 个空闲会话, 剩余 %d", evicted, len(s.sessions))
	}
	return evicted
}

func (s *communityService) Profile(deviceID string) ProfileView {
	st, found := s.readStore(deviceID)
	var user model.User
	askedToday := false
	if found {
		user = st.User()
		askedToday = st.AskedToday()
	}
	view := ProfileView{
		User:       user,
		Title:      community.SupportTitle(user.Points),
		AskedToday: askedToday,
	}
	if next, remaining, ok := community.NextSupportTitle(user.Points); ok {
		view.NextTitle = next
		view.PointsToNext = remaining
	}
	return view
}

func (s *communityService) Questions(deviceID string) []model.Question {
	st, _ := s.readStore(deviceID)
	return st.Questions()
}

func (s *communityService) Ask(_ context.Context, deviceID, content string, tone model.Tone, tags []string) (model.Question, error) {
	q, err := s.store(deviceID).AddQuestion(content, tone, tags)
	if err != nil {
		return q, err
	}
	s.metrics.CommunityEvent("asked")
	return q, nil
}

func (s *communityService) Respond(deviceID, questionID, content string) (model.Response, error) {
	r, err := s.store(deviceID).AddResponse(questionID, content)
	if err != nil {
		return r, err
	}
	s.metrics.CommunityEvent("responded")
	return r, nil
}

// Publish 公开问题；只有真正发生 Private→Public 转换时才投递索引任务。
func (s *communityService) Publish(ctx context.Context, deviceID, questionID string) (bool, error) {
	st := s.store(deviceID)
	changed, err := st.MakeQuestionPublic(questionID)
	if err != nil || !changed {
		return changed, err
	}
	s.metrics.CommunityEvent("published")

	if s.publisher != nil {
		q, qErr := st.Question(questionID)
		if qErr == nil {
			task := tasks.Task{
				ID:         uuid.NewString(),
				Type:       tasks.TypeIndexQuestion,
				QuestionID: q.ID,
				UserID:     q.UserID,
				Content:    q.Content,
				Tone:       string(q.Tone),
				Tags:       q.Tags,
				CreatedAt:  q.CreatedAt,
			}
			if err := s.publisher.Publish(ctx, task); err != nil {
				log.Warnw("[CommunityService] 投递索引任务失败", "questionId", q.ID, "error", err)
			}
		}
	}
	return true, nil
}

func (s *communityService) Heart(deviceID, questionID, responseID string) error {
	if err := s.store(deviceID).GiveHeartToResponse(questionID, responseID); err != nil {
		return err
	}
	s.metrics.CommunityEvent("hearted")
	return nil
}

func (s *communityService) Wall(deviceID string, filter community.WallFilter) []model.Question {
	st, _ := s.readStore(deviceID)
	return community.FilterQuestions(st.PublicQuestions(), filter)
}

func (s *communityService) WallTags(deviceID string) []string {
	st, _ := s.readStore(deviceID)
	return community.UniqueTags(st.PublicQuestions())
}

func (s *communityService) ToAnswer(deviceID string, count int, seed *int64) []model.Question {
	st, _ := s.readStore(deviceID)
	if seed != nil {
		return st.SampleQuestionsToAnswer(count, *seed)
	}
	return st.LeastAnsweredExcludingSelf(count)
}
