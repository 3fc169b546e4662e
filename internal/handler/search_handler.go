package handler

import (
	"net/http"
	"strconv"

	"askher-go/internal/service"
	"askher-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler 结构体定义了 Wisdom Wall 搜索的处理器。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchWisdom 是处理混合搜索请求的 Gin 处理函数。
func (h *SearchHandler) SearchWisdom(c *gin.Context) {
	query := c.Query("query")
	log.Infof("[SearchHandler] 收到混合搜索请求, query: %s", query)

	if query == "" {
		log.Warnf("[SearchHandler] 搜索请求失败: query 参数为空")
		fail(c, http.StatusBadRequest, "query is required")
		return
	}
	topK, err := strconv.Atoi(c.DefaultQuery("topK", "10"))
	if err != nil || topK <= 0 {
		topK = 10
	}

	results, err := h.searchService.SearchWisdom(c.Request.Context(), query, c.QueryArray("tag"), topK)
	if err != nil {
		failWith(c, "SearchHandler", err)
		return
	}

	log.Infof("[SearchHandler] 混合搜索成功, query: '%s', 返回 %d 条结果", query, len(results))
	ok(c, results)
}
