package handler

import (
	"net/http"

	"askher-go/internal/service"
	"askher-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ForumHandler 处理持久化论坛的请求，路径与前端调用保持一致。
type ForumHandler struct {
	forumService service.ForumService
}

// NewForumHandler 创建一个新的 ForumHandler。
func NewForumHandler(forumService service.ForumService) *ForumHandler {
	return &ForumHandler{forumService: forumService}
}

// CreateQuestionRequest 是 POST /questions 的请求体。
type CreateQuestionRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Tone    string `json:"tone"`
}

// CreateResponseRequest 是 POST /responses 的请求体。
type CreateResponseRequest struct {
	QuestionID string `json:"question_id"`
	UserID     string `json:"user_id"`
	Content    string `json:"content"`
	IsEmoji    bool   `json:"is_emoji"`
}

// UpvoteRequest 是 POST /responses/:id/upvote 的请求体。
type UpvoteRequest struct {
	UserID string `json:"user_id"`
}

// CommentRequest 是 POST /responses/:id/comments 的请求体。
type CommentRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

func (h *ForumHandler) ListQuestions(c *gin.Context) {
	questions, err := h.forumService.ListQuestions()
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, questions)
}

func (h *ForumHandler) GetQuestion(c *gin.Context) {
	q, err := h.forumService.GetQuestion(c.Param("id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, q)
}

// CreateQuestion 保存问题，AI 回复由后台任务异步生成。
func (h *ForumHandler) CreateQuestion(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.forumService.CreateQuestion(c.Request.Context(), req.UserID, req.Content, req.Tone)
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	log.Infof("[ForumHandler] 问题已保存, question: %s, user: %s", q.ID, q.UserID)
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": q})
}

func (h *ForumHandler) MyQuestions(c *gin.Context) {
	questions, err := h.forumService.QuestionsByUser(c.Query("user_id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, questions)
}

func (h *ForumHandler) ListResponses(c *gin.Context) {
	responses, err := h.forumService.ListResponses()
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, responses)
}

func (h *ForumHandler) CreateResponse(c *gin.Context) {
	var req CreateResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.forumService.CreateResponse(req.QuestionID, req.UserID, req.Content, req.IsEmoji)
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": r})
}

func (h *ForumHandler) GetResponse(c *gin.Context) {
	r, err := h.forumService.GetResponse(c.Param("id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, r)
}

func (h *ForumHandler) QuestionResponses(c *gin.Context) {
	responses, err := h.forumService.ResponsesForQuestion(c.Param("id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, responses)
}

func (h *ForumHandler) MyResponses(c *gin.Context) {
	responses, err := h.forumService.ResponsesByUser(c.Query("user_id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, responses)
}

// Trending 返回最新的若干条回复。
func (h *ForumHandler) Trending(c *gin.Context) {
	responses, err := h.forumService.Trending()
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, responses)
}

// Upvote 记录点赞，重复点赞返回 created=false。
func (h *ForumHandler) Upvote(c *gin.Context) {
	var req UpvoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.forumService.Upvote(c.Param("id"), req.UserID)
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, gin.H{"created": created})
}

func (h *ForumHandler) UpvoteCount(c *gin.Context) {
	count, err := h.forumService.UpvoteCount(c.Param("id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, gin.H{"count": count})
}

func (h *ForumHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	comment, err := h.forumService.AddComment(c.Param("id"), req.UserID, req.Content)
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": http.StatusCreated, "message": "success", "data": comment})
}

func (h *ForumHandler) Comments(c *gin.Context) {
	comments, err := h.forumService.Comments(c.Param("id"))
	if err != nil {
		failWith(c, "ForumHandler", err)
		return
	}
	ok(c, comments)
}
