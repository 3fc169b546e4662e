package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"askher-go/internal/community"
	"askher-go/internal/model"
	"askher-go/internal/repository"
	"askher-go/pkg/log"
	"askher-go/pkg/tasks"

	"github.com/google/uuid"
)

// TrendingLimit 是 /trending 返回的最新回复条数。
const TrendingLimit = 10

// ForumService 定义了持久化论坛（问题、回复、点赞、评论）的业务逻辑。
type ForumService interface {
	CreateQuestion(ctx context.Context, userID, content, tone string) (*model.QuestionRecord, error)
	GetQuestion(id string) (*model.QuestionRecord, error)
	ListQuestions() ([]model.QuestionRecord, error)
	QuestionsByUser(userID string) ([]model.QuestionRecord, error)

	CreateResponse(questionID, userID, content string, isEmoji bool) (*model.ResponseRecord, error)
	GetResponse(id string) (*model.ResponseRecord, error)
	ListResponses() ([]model.ResponseRecord, error)
	ResponsesForQuestion(questionID string) ([]model.ResponseRecord, error)
	ResponsesByUser(userID string) ([]model.ResponseRecord, error)
	Trending() ([]model.ResponseRecord, error)

	Upvote(responseID, userID string) (created bool, err error)
	UpvoteCount(responseID string) (int64, error)
	AddComment(responseID, userID, content string) (*model.Comment, error)
	Comments(responseID string) ([]model.Comment, error)
}

type forumService struct {
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
	reactionRepo repository.ReactionRepository
	publisher    tasks.Publisher
	newID        func() string
	now          func() time.Time
}

// NewForumService 创建一个新的 ForumService。publisher 为 nil 时不生成 AI 回复。
func NewForumService(
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	reactionRepo repository.ReactionRepository,
	publisher tasks.Publisher,
) ForumService {
	return &forumService{
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		reactionRepo: reactionRepo,
		publisher:    publisher,
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	return userID, nil
}

func requireContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: content is empty", ErrValidation)
	}
	if utf8.RuneCountInString(content) > community.MaxContentLength {
		return "", fmt.Errorf("%w: content exceeds %d characters", ErrValidation, community.MaxContentLength)
	}
	return content, nil
}

// CreateQuestion 保存问题并投递一个 ai_reply 任务。投递失败只记录日志。
func (s *forumService) CreateQuestion(ctx context.Context, userID, content, tone string) (*model.QuestionRecord, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	content, err = requireContent(content)
	if err != nil {
		return nil, err
	}
	parsed, ok := model.ParseTone(tone)
	if !ok {
		return nil, fmt.Errorf("%w: unknown tone %q", ErrValidation, tone)
	}

	q := &model.QuestionRecord{
		ID:        s.newID(),
		UserID:    userID,
		Content:   content,
		Tone:      parsed,
		CreatedAt: s.now(),
	}
	if err := s.questionRepo.Create(q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	if s.publisher != nil {
		task := tasks.Task{
			ID:         s.newID(),
			Type:       tasks.TypeAIReply,
			QuestionID: q.ID,
			UserID:     q.UserID,
			Content:    q.Content,
			Tone:       string(q.Tone),
			CreatedAt:  q.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, task); err != nil {
			log.Warnw("[ForumService] 投递 AI 回复任务失败", "questionId", q.ID, "error", err)
		}
	}
	return q, nil
}

func (s *forumService) GetQuestion(id string) (*model.QuestionRecord, error) {
	q, err := s.questionRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, "question %q", id)
	}
	return q, nil
}

func (s *forumService) ListQuestions() ([]model.QuestionRecord, error) {
	return s.questionRepo.FindAll()
}

func (s *forumService) QuestionsByUser(userID string) ([]model.QuestionRecord, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	return s.questionRepo.FindByUserID(userID)
}

func (s *forumService) CreateResponse(questionID, userID, content string, isEmoji bool) (*model.ResponseRecord, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	content, err = requireContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.questionRepo.FindByID(questionID); err != nil {
		return nil, notFound(err, "question %q", questionID)
	}
	r := &model.ResponseRecord{
		ID:         s.newID(),
		QuestionID: questionID,
		UserID:     userID,
		Content:    content,
		IsEmoji:    isEmoji,
		CreatedAt:  s.now(),
	}
	if err := s.responseRepo.Create(r); err != nil {
		return nil, fmt.Errorf("create response: %w", err)
	}
	return r, nil
}

func (s *forumService) GetResponse(id string) (*model.ResponseRecord, error) {
	r, err := s.responseRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, "response %q", id)
	}
	return r, nil
}

func (s *forumService) ListResponses() ([]model.ResponseRecord, error) {
	return s.responseRepo.FindAll()
}

func (s *forumService) ResponsesForQuestion(questionID string) ([]model.ResponseRecord, error) {
	if _, err := s.questionRepo.FindByID(questionID); err != nil {
		return nil, notFound(err, "question %q", questionID)
	}
	return s.responseRepo.FindByQuestionID(questionID)
}

func (s *forumService) ResponsesByUser(userID string) ([]model.ResponseRecord, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	return s.responseRepo.FindByUserID(userID)
}

func (s *forumService) Trending() ([]model.ResponseRecord, error) {
	return s.responseRepo.FindRecent(TrendingLimit)
}

// Upvote 记录点赞；同一用户重复点赞不重复计数，created 为 false。
func (s *forumService) Upvote(responseID, userID string) (bool, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return false, err
	}
	if _, err := s.responseRepo.FindByID(responseID); err != nil {
		return false, notFound(err, "response %q", responseID)
	}
	return s.reactionRepo.AddUpvote(&model.Upvote{
		ID:         s.newID(),
		ResponseID: responseID,
		UserID:     userID,
		CreatedAt:  s.now(),
	})
}

func (s *forumService) UpvoteCount(responseID string) (int64, error) {
	return s.reactionRepo.CountUpvotes(responseID)
}

func (s *forumService) AddComment(responseID, userID, content string) (*model.Comment, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	content, err = requireContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.responseRepo.FindByID(responseID); err != nil {
		return nil, notFound(err, "response %q", responseID)
	}
	c := &model.Comment{
		ID:         s.newID(),
		ResponseID: responseID,
		UserID:     userID,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.reactionRepo.AddComment(c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

func (s *forumService) Comments(responseID string) ([]model.Comment, error) {
	return s.reactionRepo.FindComments(responseID)
}
