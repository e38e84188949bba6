package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jinford/meai/internal/core/conversation"
)

// DefaultListLimit はチャット一覧のデフォルト取得件数
const DefaultListLimit = 100

// Service はチャット履歴のユースケースを提供する
type Service struct {
	store  Store
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
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateChat はユーザーの新しいチャットを作成する。タイトル省略時は仮タイトルを使う。
func (s *Service) CreateChat(ctx context.Context, userID, title string) (*Chat, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	c, err := s.store.InsertChat(ctx, userID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	s.logger.Info("chat created", "chatID", c.ID, "userID", userID)
	return c, nil
}

// ListChats はユーザーの削除されていないチャットを新しい順で返す
func (s *Service) ListChats(ctx context.Context, userID string, limit int) ([]*Chat, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	chats, err := s.store.ListChats(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// DeleteChat はユーザーのチャットと配下のメッセージをソフトデリートする
func (s *Service) DeleteChat(ctx context.Context, userID string, chatID uuid.UUID) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserIDRequired
	}
	if err := s.store.SoftDeleteChat(ctx, userID, chatID); err != nil {
		return err
	}
	s.logger.Info("chat deleted", "chatID", chatID, "userID", userID)
	return nil
}

// Messages はユーザーのチャットのメッセージを会話順で返す。
// 他ユーザーのチャットや削除済みに対しては ErrChatNotFound を返す。
func (s *Service) Messages(ctx context.Context, userID string, chatID uuid.UUID) ([]*Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	if _, err := s.store.GetChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

// AppendMessage はユーザーのチャットにメッセージを追記する。
// 仮タイトルのままのチャットに最初のuserメッセージが入ったとき、
// 先頭40文字をタイトルとして採用する。導出できない場合は固定タイトルに倒す。
func (s *Service) AppendMessage(ctx context.Context, userID string, chatID uuid.UUID, role, content string) (*Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	if !conversation.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	c, err := s.store.GetChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	m, err := s.store.InsertMessage(ctx, chatID, role, content)
	if err != nil {
		return nil, fmt.Errorf("failed to append chat message: %w", err)
	}

	if role == conversation.RoleUser && (c.Title == "" || c.Title == DefaultTitle) {
		if err := s.store.UpdateTitle(ctx, chatID, deriveTitle(content)); err != nil {
			s.logger.Warn("failed to update chat title", "chatID", chatID, "error", err)
		}
	}

	return m, nil
}

// deriveTitle はメッセージ本文から先頭40文字のタイトルを導出する。
// 空白のみの本文は FallbackTitle になる。
func deriveTitle(content string) string {
	title := strings.TrimSpace(content)
	if title == "" {
		return FallbackTitle
	}
	runes := []rune(title)
	if len(runes) > TitleMaxChars {
		title = string(runes[:TitleMaxChars])
	}
	return title
}
