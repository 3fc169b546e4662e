// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"askher-go/internal/config"
	"askher-go/internal/model"
	"askher-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端并确保 Wisdom Wall 索引存在。
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName, esCfg.Dimensions)
}

// IndexMapping 返回 Wisdom Wall 索引的 mapping，向量维度为 dims，使用 cosine 相似度。
func IndexMapping(dims int) string {
	return fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"question_id": { "type": "keyword" },
				"content": { "type": "text", "analyzer": "english" },
				"tone": { "type": "keyword" },
				"tags": { "type": "keyword" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" },
				"is_public": { "type": "boolean" },
				"created_at": { "type": "date" }
			}
		}
	}`, dims)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	created, err := ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(IndexMapping(dims))),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer created.Body.Close()
	if created.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, created.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}
	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// WisdomHit 是一条带分数的检索结果。
type WisdomHit struct {
	Document model.WisdomDocument
	Score    float64
}

// WisdomIndex 封装了对 Wisdom Wall 索引的读写。
type WisdomIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewWisdomIndex 创建一个使用给定客户端和索引名的 WisdomIndex。
func NewWisdomIndex(client *elasticsearch.Client, index string) *WisdomIndex {
	return &WisdomIndex{client: client, index: index}
}

// Index 以 QuestionID 为文档 id 写入（或覆盖）一条文档。
func (w *WisdomIndex) Index(ctx context.Context, doc model.WisdomDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      w.index,
		DocumentID: doc.QuestionID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, w.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("索引文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

// Search 执行混合检索，body 由 BuildHybridQuery 生成。
func (w *WisdomIndex) Search(ctx context.Context, query string, vector []float32, tags []string, topK int) ([]WisdomHit, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildHybridQuery(query, vector, tags, topK)); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}
	res, err := w.client.Search(
		w.client.Search.WithContext(ctx),
		w.client.Search.WithIndex(w.index),
		w.client.Search.WithBody(&buf),
		w.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch returned an error: %s: %s", res.Status(), string(bodyBytes))
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.WisdomDocument `json:"_source"`
				Score  float64              `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}
	hits := make([]WisdomHit, 0, len(esResponse.Hits.Hits))
	for _, h := range esResponse.Hits.Hits {
		hits = append(hits, WisdomHit{Document: h.Source, Score: h.Score})
	}
	return hits, nil
}

// BuildHybridQuery 构建 kNN 召回 + BM25 重排的查询，只返回公开文档。
// vector 为空时退化为纯关键词检索；tags 非空时文档必须带有其中每一个标签。
func BuildHybridQuery(query string, vector []float32, tags []string, topK int) map[string]interface{} {
	if topK <= 0 {
		topK = 10
	}
	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"is_public": true}},
	}
	for _, tag := range tags {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"tags": tag}})
	}
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"match": map[string]interface{}{"content": query},
				},
				"filter": filters,
				"should": []map[string]interface{}{
					{"match_phrase": map[string]interface{}{
						"content": map[string]interface{}{"query": query, "boost": 3.0},
					}},
				},
			},
		},
		"size":    topK,
		"_source": map[string]interface{}{"excludes": []string{"vector"}},
	}
	if len(vector) > 0 {
		body["knn"] = map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              topK * 5,
			"num_candidates": topK * 30,
			"filter":         filters,
		}
		body["rescore"] = map[string]interface{}{
			"window_size": topK * 5,
			"query": map[string]interface{}{
				"rescore_query": map[string]interface{}{
					"match": map[string]interface{}{
						"content": map[string]interface{}{"query": query, "operator": "and"},
					},
				},
				"query_weight":         0.2,
				"rescore_query_weight": 1.0,
			},
		}
	}
	return body
}
