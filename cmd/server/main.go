// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"askher-go/internal/community"
	"askher-go/internal/config"
	"askher-go/internal/handler"
	"askher-go/internal/pipeline"
	"askher-go/internal/repository"
	"askher-go/internal/service"
	"askher-go/pkg/database"
	"askher-go/pkg/embedding"
	"askher-go/pkg/es"
	"askher-go/pkg/kafka"
	"askher-go/pkg/llm"
	"askher-go/pkg/log"
	"askher-go/pkg/metrics"
	"askher-go/pkg/storage"
	"askher-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := os.Getenv("ASKHER_CONFIG")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	// 1. 初始化配置
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	heartPolicy, err := community.ParseHeartPolicy(cfg.Community.HeartPolicy)
	if err != nil {
		log.Fatal("社区配置无效", err)
	}

	// 3. 初始化数据库、Redis、对象存储与搜索引擎
	database.InitMySQL(cfg.Database.MySQL.DSN, cfg.Database.MySQL.AutoMigrate)
	defer database.Close()
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// 4. 初始化 Repository
	profileRepo := repository.NewProfileRepository(database.RDB, community.SlotKey, cfg.Community.ProfileTTL)
	conversationRepo := repository.NewConversationRepository(database.RDB, cfg.Chatbot.HistoryLimit, cfg.Chatbot.SessionTTL)
	questionRepo := repository.NewQuestionRepository(database.DB)
	responseRepo := repository.NewResponseRepository(database.DB)
	reactionRepo := repository.NewReactionRepository(database.DB)
	journalRepo := repository.NewJournalRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)
	wisdomIndex := es.NewWisdomIndex(es.ESClient, cfg.Elasticsearch.IndexName)
	sessions := token.NewSessionManager(cfg.Chatbot.SessionSecret, cfg.Chatbot.SessionTTL)

	communityService := service.NewCommunityService(profileRepo, producer, m, service.CommunityOptions{
		Rules: community.Rules{
			AskPoints:     cfg.Community.AskPoints,
			RespondPoints: cfg.Community.RespondPoints,
			PublishPoints: cfg.Community.PublishPoints,
		},
		HeartPolicy:    heartPolicy,
		SeedSamples:    cfg.Community.SeedSamples,
		PersistTimeout: cfg.Community.PersistTimeout,
		IdleTimeout:    cfg.Community.IdleTimeout,
	})
	services := handler.Services{
		Community: communityService,
		Forum:     service.NewForumService(questionRepo, responseRepo, reactionRepo, producer),
		Chat:      service.NewChatService(llmClient, service.NewConversationService(conversationRepo), sessions, cfg.LLM, m),
		Search:    service.NewSearchService(embeddingClient, wisdomIndex),
		Journal:   service.NewJournalService(journalRepo, storage.NewObjectStore(storage.MinioClient, cfg.MinIO.BucketName)),
		Directory: service.NewDirectoryService(),
	}

	// 6. 初始化任务处理器 (Processor) 并启动后台 Kafka 消费者
	processor := pipeline.NewProcessor(
		llmClient,
		embeddingClient,
		wisdomIndex,
		questionRepo,
		responseRepo,
		cfg.LLM,
		cfg.Embedding.Model,
		m,
	)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		kafka.StartConsumer(consumerCtx, cfg.Kafka, database.RDB, processor)
	}()

	// 定期释放空闲的社区会话，档案仍保存在 Redis 中
	go func() {
		interval := cfg.Community.SweepInterval
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-consumerCtx.Done():
				return
			case <-ticker.C:
				communityService.EvictIdle()
			}
		}
	}()

	// 7. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(services, handler.RouterOptions{Metrics: m, MetricsPath: cfg.Metrics.Path})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("Kafka 消费者未在超时前退出")
	}
	log.Info("服务已优雅关闭")
}
