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

	"github.com/gin-gonic/gin"

	"docmind-go/internal/chunker"
	"docmind-go/internal/config"
	"docmind-go/internal/handler"
	"docmind-go/internal/middleware"
	"docmind-go/internal/pipeline"
	"docmind-go/internal/repository"
	"docmind-go/internal/service"
	"docmind-go/pkg/embedding"
	"docmind-go/pkg/llm"
	"docmind-go/pkg/log"
	"docmind-go/pkg/pdf"
	"docmind-go/pkg/tika"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化外部客户端与文本提取后端
	var extractor pipeline.TextExtractor
	switch cfg.Extractor.Provider {
	case "tika":
		extractor = tika.NewClient(cfg.Tika)
		log.Infof("使用 Tika 文本提取后端: %s", cfg.Tika.ServerURL)
	default:
		extractor = pdf.NewExtractor()
		log.Info("使用本地 pdfcpu 文本提取后端")
	}
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)

	// 4. 初始化文档仓库（进程内内存表，在此构造一次并注入各使用方）
	docRepo := repository.NewDocumentRepository()

	// 5. 初始化摄取管道
	splitter, err := chunker.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal("分块配置无效", err)
	}
	processor := pipeline.NewProcessor(extractor, embeddingClient, splitter, docRepo)

	// 6. 初始化 Service (依赖注入)
	documentService := service.NewDocumentService(processor, docRepo)
	answerService := service.NewAnswerService(llmClient)
	questionService := service.NewQuestionService(docRepo, embeddingClient, answerService, cfg.RAG.TopK)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		documents := apiV1.Group("/documents")
		{
			documentHandler := handler.NewDocumentHandler(documentService, cfg.RAG.MaxUploadMB)
			documents.POST("/upload", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.GET("/:documentId", documentHandler.Get)
			documents.DELETE("/:documentId", documentHandler.Delete)
		}

		questions := apiV1.Group("/questions")
		{
			questions.POST("/ask", handler.NewQuestionHandler(questionService).Ask)
		}
	}

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
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
