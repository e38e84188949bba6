// Package http はWeb UIとテスター向けのREST APIサーバを提供する。
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jinford/meai/internal/infra/git"
	"github.com/jinford/meai/internal/platform/container"
)

// ServiceName はヘルスチェックで名乗るサービス名
const ServiceName = "meai"

// shutdownTimeout は graceful shutdown の待機時間
const shutdownTimeout = 10 * time.Second

// Server はREST APIサーバ
type Server struct {
	engine    *gin.Engine
	container *container.ServiceContainer
	logger    *slog.Logger
	startedAt time.Time
	gitSHA    string
}

// Option は Server 構築時のオプション
type Option func(*Server)

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer はルーティングを組み立てた Server を返す
func NewServer(c *container.ServiceContainer, opts ...Option) *Server {
	s := &Server{
		container: c,
		logger:    slog.Default(),
		startedAt: time.Now(),
		gitSHA:    git.HeadSHA("."),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestID())
	engine.Use(s.requestLogger())

	engine.GET("/health", s.handleHealth)

	api := engine.Group("/api")
	{
		api.GET("/health", s.handleAPIHealth)
		api.POST("/ask", s.handleAsk)
		api.POST("/feedback", s.handleFeedback)
		api.GET("/notes/download", s.handleNotesDownload)

		api.POST("/chats", s.handleCreateChat)
		api.GET("/chats", s.handleListChats)
		api.DELETE("/chats/:id", s.handleDeleteChat)
		api.GET("/chats/:id/messages", s.handleChatMessages)
		api.POST("/chats/:id/messages", s.handleAppendChatMessage)
	}

	s.engine = engine
	return s
}

// Run はHTTPサーバを起動し、コンテキストのキャンセルで graceful に停止する
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Handler はテスト用にルータを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// handleHealth は死活監視用の固定レスポンスを返す
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": ServiceName,
	})
}

// handleAPIHealth はビルド識別子つきの詳細ヘルスを返す
func (s *Server) handleAPIHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"service":        ServiceName,
		"git_sha":        s.gitSHA,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}
