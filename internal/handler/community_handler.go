package handler

import (
	"net/http"
	"strconv"

	"askher-go/internal/community"
	"askher-go/internal/model"
	"askher-go/internal/service"
	"askher-go/pkg/log"

	"github.com/gin-gonic/gin"
)

const defaultToAnswerCount = 3

// CommunityHandler 处理 /api/v1/community 下与社区会话相关的请求。
type CommunityHandler struct {
	communityService service.CommunityService
}

// NewCommunityHandler 创建一个新的 CommunityHandler。
func NewCommunityHandler(communityService service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

// AskRequest 是提问请求体。
type AskRequest struct {
	Content string   `json:"content"`
	Tone    string   `json:"tone"`
	Tags    []string `json:"tags"`
}

// RespondRequest 是回复请求体。
type RespondRequest struct {
	Content string `json:"content"`
}

// Me 返回当前设备的用户档案与支持者称号。
func (h *CommunityHandler) Me(c *gin.Context) {
	ok(c, h.communityService.Profile(deviceID(c)))
}

// ListQuestions 返回会话中的全部问题，最新在前。
func (h *CommunityHandler) ListQuestions(c *gin.Context) {
	ok(c, h.communityService.Questions(deviceID(c)))
}

// Ask 处理提问。
func (h *CommunityHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	tone, valid := model.ParseTone(req.Tone)
	if !valid {
		fail(c, http.StatusBadRequest, "unknown tone")
		return
	}
	q, err := h.communityService.Ask(c.Request.Context(), deviceID(c), req.Content, tone, req.Tags)
	if err != nil {
		failWith(c, "CommunityHandler", err)
		return
	}
	log.Infof("[CommunityHandler] 新问题已创建, device: %s, question: %s", deviceID(c), q.ID)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": q})
}

// Respond 给问题追加一条回复。
func (h *CommunityHandler) Respond(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.communityService.Respond(deviceID(c), c.Param("id"), req.Content)
	if err != nil {
		failWith(c, "CommunityHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": r})
}

// Publish 把问题公开到 Wisdom Wall。
func (h *CommunityHandler) Publish(c *gin.Context) {
	changed, err := h.communityService.Publish(c.Request.Context(), deviceID(c), c.Param("id"))
	if err != nil {
		failWith(c, "CommunityHandler", err)
		return
	}
	ok(c, gin.H{"changed": changed})
}

// Heart 给回复送出爱心。
func (h *CommunityHandler) Heart(c *gin.Context) {
	if err := h.communityService.Heart(deviceID(c), c.Param("id"), c.Param("rid")); err != nil {
		failWith(c, "CommunityHandler", err)
		return
	}
	ok(c, h.communityService.Profile(deviceID(c)).User)
}

// Wall 返回已公开的问题。q 按关键词筛选正文和标签，可重复的 tag 参数要求问题带有全部所选标签。
func (h *CommunityHandler) Wall(c *gin.Context) {
	filter := community.WallFilter{
		Keyword: c.Query("q"),
		Tags:    c.QueryArray("tag"),
	}
	ok(c, h.communityService.Wall(deviceID(c), filter))
}

// WallTags 返回 Wisdom Wall 上的全部标签，供前端生成筛选项。
func (h *CommunityHandler) WallTags(c *gin.Context) {
	ok(c, h.communityService.WallTags(deviceID(c)))
}

// ToAnswer 返回可供回答的问题。带 seed 参数时随机抽样，否则按回复数从少到多。
func (h *CommunityHandler) ToAnswer(c *gin.Context) {
	count := defaultToAnswerCount
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}
	var seed *int64
	if raw := c.Query("seed"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "seed must be an integer")
			return
		}
		seed = &n
	}
	ok(c, h.communityService.ToAnswer(deviceID(c), count, seed))
}

// Titles 返回称号阶梯；带 points 参数时同时返回该积分对应的称号。
func (h *CommunityHandler) Titles(c *gin.Context) {
	data := gin.H{"tiers": community.SupportTitles()}
	if raw := c.Query("points"); raw != "" {
		points, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "points must be an integer")
			return
		}
		data["title"] = community.SupportTitle(points)
		if next, remaining, found := community.NextSupportTitle(points); found {
			data["nextTitle"] = next
			data["pointsToNext"] = remaining
		}
	}
	ok(c, data)
}
