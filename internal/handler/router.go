package handler

import (
	"askher-go/internal/middleware"
	"askher-go/internal/service"
	"askher-go/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Services 汇总路由所需的全部服务。值为 nil 的服务对应的路由不会注册。
type Services struct {
	Community service.CommunityService
	Forum     service.ForumService
	Chat      service.ChatService
	Search    service.SearchService
	Journal   service.JournalService
	Directory service.DirectoryService
}

// RouterOptions 控制中间件与指标端点。
type RouterOptions struct {
	Metrics     *metrics.Metrics
	MetricsPath string
	// Quiet 关闭请求日志，测试中使用。
	Quiet bool
}

// NewRouter 创建 Gin 引擎并注册全部路由。
func NewRouter(s Services, opts RouterOptions) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(gin.Recovery(), middleware.DeviceID())
	if !opts.Quiet {
		r.Use(middleware.RequestLogger())
	}
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/health", func(c *gin.Context) { ok(c, gin.H{"status": "ok"}) })

	// 论坛与聊天机器人沿用前端调用的根路径
	if s.Forum != nil {
		forum := NewForumHandler(s.Forum)
		r.GET("/questions", forum.ListQuestions)
		r.POST("/questions", forum.CreateQuestion)
		r.GET("/questions/:id", forum.GetQuestion)
		r.GET("/questions/:id/responses", forum.QuestionResponses)
		r.GET("/responses", forum.ListResponses)
		r.POST("/responses", forum.CreateResponse)
		r.GET("/responses/:id", forum.GetResponse)
		r.POST("/responses/:id/upvote", forum.Upvote)
		r.GET("/responses/:id/upvotes", forum.UpvoteCount)
		r.POST("/responses/:id/comments", forum.AddComment)
		r.GET("/responses/:id/comments", forum.Comments)
		r.GET("/trending", forum.Trending)
		r.GET("/my/questions", forum.MyQuestions)
		r.GET("/my/responses", forum.MyResponses)
	}
	if s.Chat != nil {
		chat := NewChatHandler(s.Chat)
		chatbot := r.Group("/chatbot")
		{
			chatbot.GET("/greeting", chat.Greeting)
			chatbot.POST("/chat", chat.Chat)
			chatbot.GET("/history", NewConversationHandler(s.Chat).GetHistory)
			chatbot.GET("/stream", chat.Stream)
		}
		r.POST("/generate-response", chat.GenerateResponse)
	}

	apiV1 := r.Group("/api/v1")
	{
		if s.Community != nil {
			h := NewCommunityHandler(s.Community)
			community := apiV1.Group("/community")
			{
				community.GET("/me", h.Me)
				community.GET("/questions", h.ListQuestions)
				community.POST("/questions", h.Ask)
				community.POST("/questions/:id/responses", h.Respond)
				community.POST("/questions/:id/publish", h.Publish)
				community.POST("/questions/:id/responses/:rid/heart", h.Heart)
				community.GET("/wall", h.Wall)
				community.GET("/wall/tags", h.WallTags)
				community.GET("/to-answer", h.ToAnswer)
				community.GET("/titles", h.Titles)
			}
		}
		if s.Search != nil {
			apiV1.GET("/wisdom/search", NewSearchHandler(s.Search).SearchWisdom)
		}
		if s.Journal != nil {
			h := NewJournalHandler(s.Journal)
			journal := apiV1.Group("/journal")
			{
				journal.GET("", h.List)
				journal.POST("", h.Create)
				journal.PUT("/:id", h.Update)
				journal.DELETE("/:id", h.Delete)
				journal.POST("/export", h.Export)
			}
		}
		if s.Directory != nil {
			h := NewDirectoryHandler(s.Directory)
			apiV1.GET("/hotlines", h.Hotlines)
			apiV1.GET("/resources", h.Resources)
		}
	}
	return r
}
