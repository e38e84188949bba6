// Package notes はセッションの会話ログからエンジニアリングノートを生成する。
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jinford/meai/internal/core/conversation"
	"github.com/jinford/meai/internal/core/llm"
)

// MaxTranscriptMessages はノート生成に使うメッセージ数の上限
const MaxTranscriptMessages = 200

// scribePrompt はノート生成用のsystemプロンプト
const scribePrompt = "You are an engineering scribe. Produce concise engineering notes for another engineer. " +
	"Extract: requirements, assumptions, decisions, open questions, risks, next actions. " +
	"Use Markdown headings and bullet points. No fluff."

// Service はノート生成サービス
type Service struct {
	llm    llm.Client
	conv   conversation.Store
	logger *slog.Logger
}

// Option は Service 構築時のオプション
type Option func(*Service)

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService は新しい Service を作成する
func NewService(client llm.Client, conv conversation.Store, opts ...Option) *Service {
	s := &Service{
		llm:    client,
		conv:   conv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildNotes はセッションの会話ログを要約したMarkdownノートを生成する。
// メッセージが無いセッションではLLMを呼ばず固定文面を返す。
func (s *Service) BuildNotes(ctx context.Context, sessionID uuid.UUID) (string, error) {
	messages, err := s.conv.ListMessages(ctx, sessionID, MaxTranscriptMessages)
	if err != nil {
		return "", fmt.Errorf("failed to load session messages: %w", err)
	}

	if len(messages) == 0 {
		return fmt.Sprintf("# Engineering Notes\n\nNo messages found for session_id=%s\n", sessionID), nil
	}

	turns := make([]string, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, fmt.Sprintf("%s: %s", strings.ToUpper(m.Role), m.Content))
	}
	transcript := strings.Join(turns, "\n\n")

	text, err := s.llm.Complete(ctx, []llm.Message{
		llm.System(scribePrompt),
		llm.User(transcript),
	}, 0)
	if err != nil {
		return "", fmt.Errorf("failed to generate notes: %w", err)
	}

	s.logger.Info("notes generated", "sessionID", sessionID, "messages", len(messages))

	text = strings.TrimSpace(text)
	if text == "" {
		text = "No content."
	}
	return "# Engineering Notes\n\n" + text + "\n", nil
}
