package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"askher-go/internal/community"
	"askher-go/internal/model"
	"askher-go/pkg/embedding"
	"askher-go/pkg/es"
	"askher-go/pkg/log"
)

// MaxTopK 是单次检索允许返回的最多条数。
const MaxTopK = 50

// WisdomSearcher 在 Wisdom Wall 索引上执行检索。
type WisdomSearcher interface {
	Search(ctx context.Context, query string, vector []float32, tags []string, topK int) ([]es.WisdomHit, error)
}

// SearchService 接口定义了 Wisdom Wall 的搜索操作。
type SearchService interface {
	// SearchWisdom 在 tags 非空时只返回带有全部所选标签的问题。
	SearchWisdom(ctx context.Context, query string, tags []string, topK int) ([]model.WisdomSearchResult, error)
}

type searchService struct {
	embeddingClient embedding.Client
	searcher        WisdomSearcher
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(embeddingClient embedding.Client, searcher WisdomSearcher) SearchService {
	return &searchService{embeddingClient: embeddingClient, searcher: searcher}
}

// SearchWisdom 执行混合检索。向量化失败时退化为纯关键词检索。
func (s *searchService) SearchWisdom(ctx context.Context, query string, tags []string, topK int) ([]model.WisdomSearchResult, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return nil, fmt.Errorf("%w: query is empty", ErrValidation)
	}
	tags, err := community.NormalizeTags(tags)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 10
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	log.Infof("[SearchService] 开始执行混合搜索, query: '%s', tags: %v, topK: %d", normalized, tags, topK)

	var vector []float32
	if s.embeddingClient != nil {
		v, err := s.embeddingClient.CreateEmbedding(ctx, query)
		if err != nil {
			log.Warnf("[SearchService] 向量化查询失败，退化为关键词检索: %v", err)
		} else {
			vector = v
		}
	}

	hits, err := s.searcher.Search(ctx, normalized, vector, tags, topK)
	if err != nil {
		log.Errorf("[SearchService] 检索失败: %v", err)
		return nil, err
	}

	results := make([]model.WisdomSearchResult, 0, len(hits))
	for _, h := range hits {
		if !h.Document.IsPublic {
			continue
		}
		results = append(results, model.WisdomSearchResult{
			QuestionID: h.Document.QuestionID,
			Content:    h.Document.Content,
			Tone:       h.Document.Tone,
			Tags:       h.Document.Tags,
			Score:      h.Score,
			CreatedAt:  h.Document.CreatedAt,
		})
	}
	log.Infof("[SearchService] 混合搜索执行完毕, 返回 %d 条结果", len(results))
	return results, nil
}

var (
	reKeep  = regexp.MustCompile(`[^\p{L}\p{N}\s'-]+`)
	reSpace = regexp.MustCompile(`\s+`)
)

// normalizeQuery 去掉标点并归一空白。
func normalizeQuery(q string) string {
	kept := reKeep.ReplaceAllString(strings.ToLower(q), " ")
	return strings.TrimSpace(reSpace.ReplaceAllString(kept, " "))
}
