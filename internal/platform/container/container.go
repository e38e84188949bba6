// Package container はアプリケーションの依存関係を組み立てるDIコンテナを提供する。
package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/meai/internal/core/answer"
	"github.com/jinford/meai/internal/core/chat"
	"github.com/jinford/meai/internal/core/conversation"
	"github.com/jinford/meai/internal/core/feedback"
	"github.com/jinford/meai/internal/core/ingestion"
	"github.com/jinford/meai/internal/core/license"
	"github.com/jinford/meai/internal/core/llm"
	"github.com/jinford/meai/internal/core/notes"
	"github.com/jinford/meai/internal/core/vendor"
	"github.com/jinford/meai/internal/infra/filter"
	"github.com/jinford/meai/internal/infra/openai"
	"github.com/jinford/meai/internal/infra/pdfx"
	"github.com/jinford/meai/internal/infra/postgres"
	"github.com/jinford/meai/internal/infra/prompt"
	"github.com/jinford/meai/pkg/config"
	"github.com/jinford/meai/pkg/db"
)

// ServiceContainer はアプリケーションの全サービスと共有リソースを保持する
type ServiceContainer struct {
	AnswerService   *answer.Service
	NotesService    *notes.Service
	FeedbackService *feedback.Service
	ChatService     *chat.Service
	Pipeline        *ingestion.Pipeline

	VendorStore vendor.Store

	logger   *slog.Logger
	database *db.DB
}

type containerOptions struct {
	logger    *slog.Logger
	llmClient llm.Client
	embedder  llm.Embedder
	prompts   answer.PromptStore
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerLLMClient は LLM クライアントを差し替える
func WithContainerLLMClient(client llm.Client) ContainerOption {
	return func(opts *containerOptions) {
		opts.llmClient = client
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder llm.Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerPromptStore はプロンプトストアを差し替える
func WithContainerPromptStore(store answer.PromptStore) ContainerOption {
	return func(opts *containerOptions) {
		opts.prompts = store
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	database, err := db.New(ctx, db.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	llmClient := options.llmClient
	if llmClient == nil {
		client, err := openai.NewClient(cfg.OpenAI.APIKey, openai.WithModel(cfg.OpenAI.LLMModel))
		if err != nil {
			database.Close()
			return nil, err
		}
		llmClient = client
	}

	embedder := options.embedder
	if embedder == nil {
		embedder = openai.NewEmbedder(cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
	}

	prompts := options.prompts
	if prompts == nil {
		prompts = prompt.NewStore(cfg.PromptDir)
	}

	chunkRepo := postgres.NewChunkRepository(database.Pool)
	documentRepo := postgres.NewDocumentRepository(database.Pool)
	vendorRepo := postgres.NewVendorRepository(database.Pool, cfg.VendorTable)
	conversationRepo := postgres.NewConversationRepository(database.Pool)
	feedbackRepo := postgres.NewFeedbackRepository(database.Pool)
	chatRepo := postgres.NewChatRepository(database.Pool)

	licenseResolver := license.NewResolver(documentRepo, documentRepo,
		license.WithResolverLogger(logger),
	)
	vendorMatcher := vendor.NewMatcher(vendorRepo,
		vendor.WithMatcherLogger(logger),
	)

	answerOpts := []answer.ServiceOption{
		answer.WithLogger(logger),
		answer.WithVendorTableName(cfg.VendorTable),
	}
	if cfg.SchedulingURL != "" {
		answerOpts = append(answerOpts, answer.WithSchedulingURL(cfg.SchedulingURL))
	}
	answerService := answer.NewService(
		prompts, llmClient, embedder, chunkRepo, licenseResolver, vendorMatcher, conversationRepo,
		answerOpts...,
	)

	notesService := notes.NewService(llmClient, conversationRepo, notes.WithLogger(logger))
	feedbackService := feedback.NewService(feedbackRepo, feedback.WithLogger(logger))
	chatService := chat.NewService(chatRepo, chat.WithLogger(logger))

	pipeline, err := buildPipeline(cfg, embedder, chunkRepo, logger)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &ServiceContainer{
		AnswerService:   answerService,
		NotesService:    notesService,
		FeedbackService: feedbackService,
		ChatService:     chatService,
		Pipeline:        pipeline,
		VendorStore:     vendorRepo,
		logger:          logger,
		database:        database,
	}, nil
}

// buildPipeline は取り込みパイプラインを組み立てる
func buildPipeline(cfg *config.Config, embedder llm.Embedder, writer ingestion.ChunkWriter, logger *slog.Logger) (*ingestion.Pipeline, error) {
	ignoreFilter, err := filter.NewIgnoreFilter(cfg.LibraryDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}

	return ingestion.NewPipeline(pdfx.NewExtractor(), embedder, writer,
		ingestion.WithIgnoreMatcher(ignoreFilter),
		ingestion.WithPipelineLogger(logger),
	), nil
}

// Logger はコンテナのロガーを返す
func (c *ServiceContainer) Logger() *slog.Logger {
	return c.logger
}

// ConversationStore は会話ログストアを返す
func (c *ServiceContainer) ConversationStore() conversation.Store {
	return postgres.NewConversationRepository(c.database.Pool)
}

// Close は保持しているリソースを解放する
func (c *ServiceContainer) Close() {
	if c.database != nil {
		c.database.Close()
	}
}
