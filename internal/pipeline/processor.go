// Package pipeline 处理从 Kafka 取出的后台任务：为新问题生成 AI 回复，以及把公开问题写入 Wisdom Wall 索引。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"askher-go/internal/config"
	"askher-go/internal/model"
	"askher-go/internal/repository"
	"askher-go/pkg/embedding"
	"askher-go/pkg/llm"
	"askher-go/pkg/log"
	"askher-go/pkg/metrics"
	"askher-go/pkg/tasks"

	"github.com/google/uuid"
)

// AIUserID 是 AI 生成回复的作者 id。
const AIUserID = "askher-ai"

// WisdomIndexer 写入 Wisdom Wall 搜索索引。
type WisdomIndexer interface {
	Index(ctx context.Context, doc model.WisdomDocument) error
}

// Processor 封装了任务处理的所有依赖和逻辑。
type Processor struct {
	llmClient       llm.Client
	embeddingClient embedding.Client
	indexer         WisdomIndexer
	questionRepo    repository.QuestionRepository
	responseRepo    repository.ResponseRepository
	llmCfg          config.LLMConfig
	embeddingModel  string
	metrics         *metrics.Metrics

	newID func() string
	now   func() time.Time
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	llmClient llm.Client,
	embeddingClient embedding.Client,
	indexer WisdomIndexer,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	llmCfg config.LLMConfig,
	embeddingModel string,
	m *metrics.Metrics,
) *Processor {
	return &Processor{
		llmClient:       llmClient,
		embeddingClient: embeddingClient,
		indexer:         indexer,
		questionRepo:    questionRepo,
		responseRepo:    responseRepo,
		llmCfg:          llmCfg,
		embeddingModel:  embeddingModel,
		metrics:         m,
		newID:           uuid.NewString,
		now:             time.Now,
	}
}

// Process 按任务类型分派。未知类型直接返回错误。
func (p *Processor) Process(ctx context.Context, task tasks.Task) error {
	var err error
	switch task.Type {
	case tasks.TypeAIReply:
		err = p.replyWithAI(ctx, task)
	case tasks.TypeIndexQuestion:
		err = p.indexQuestion(ctx, task)
	default:
		err = fmt.Errorf("unknown task type %q", task.Type)
	}
	p.metrics.TaskProcessed(string(task.Type), err)
	return err
}

// replyWithAI 为论坛问题生成一条支持性回复。问题已有 AI 回复时跳过，重投递的任务不会产生重复回复。
func (p *Processor) replyWithAI(ctx context.Context, task tasks.Task) error {
	log.Infof("[Processor] 开始生成 AI 回复, QuestionID: %s", task.QuestionID)

	question, err := p.questionRepo.FindByID(task.QuestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warnf("[Processor] 问题 %s 不存在，跳过 AI 回复", task.QuestionID)
			return nil
		}
		return fmt.Errorf("查询问题失败: %w", err)
	}
	existing, err := p.responseRepo.FindByQuestionID(question.ID)
	if err != nil {
		return fmt.Errorf("查询已有回复失败: %w", err)
	}
	for _, r := range existing {
		if r.IsAI {
			log.Infof("[Processor] 问题 %s 已有 AI 回复，跳过", question.ID)
			return nil
		}
	}

	messages := llm.BuildMessages(p.llmCfg.Prompt.System, llm.ToneHint(string(question.Tone)), nil, question.Content)
	answer, err := p.llmClient.Complete(ctx, messages, llm.ParamsFromConfig(p.llmCfg.Generation))
	if err != nil {
		return fmt.Errorf("生成 AI 回复失败: %w", err)
	}
	if answer == "" {
		return errors.New("AI 回复为空")
	}

	resp := &model.ResponseRecord{
		ID:         p.newID(),
		QuestionID: question.ID,
		UserID:     AIUserID,
		Content:    answer,
		IsAI:       true,
		CreatedAt:  p.now(),
	}
	if err := p.responseRepo.Create(resp); err != nil {
		return fmt.Errorf("保存 AI 回复失败: %w", err)
	}
	log.Infof("[Processor] AI 回复已保存, QuestionID: %s, ResponseID: %s", question.ID, resp.ID)
	return nil
}

// indexQuestion 向量化公开问题并写入索引。
func (p *Processor) indexQuestion(ctx context.Context, task tasks.Task) error {
	log.Infof("[Processor] 开始索引公开问题, QuestionID: %s", task.QuestionID)
	if task.Content == "" {
		return errors.New("问题内容为空")
	}
	vector, err := p.embeddingClient.CreateEmbedding(ctx, task.Content)
	if err != nil {
		return fmt.Errorf("问题向量化失败: %w", err)
	}
	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = p.now()
	}
	doc := model.WisdomDocument{
		QuestionID:   task.QuestionID,
		Content:      task.Content,
		Tone:         model.Tone(task.Tone),
		Tags:         task.Tags,
		Vector:       vector,
		ModelVersion: p.embeddingModel,
		IsPublic:     true,
		CreatedAt:    createdAt,
	}
	if err := p.indexer.Index(ctx, doc); err != nil {
		return fmt.Errorf("写入 Elasticsearch 失败: %w", err)
	}
	log.Infof("[Processor] 公开问题索引成功, QuestionID: %s", task.QuestionID)
	return nil
}
