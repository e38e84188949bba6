// Package chat はWeb UI向けのチャット履歴管理を提供する。
// 削除は物理削除ではなくソフトデリートで行う。
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle は新規チャットの仮タイトル
const DefaultTitle = "New chat"

// FallbackTitle は最初のuserメッセージからタイトルを導出できなかった場合のタイトル
const FallbackTitle = "Chat"

// TitleMaxChars はメッセージから導出するタイトルの最大文字数
const TitleMaxChars = 40

// ErrChatNotFound はチャットが存在しないか削除済みであることを表す
var ErrChatNotFound = errors.New("chat not found")

// ErrInvalidRole はメッセージのロールが許可された値でないことを表す
var ErrInvalidRole = errors.New("invalid message role")

// ErrUserIDRequired はユーザー識別子が空であることを表す
var ErrUserIDRequired = errors.New("user_id is required")

// Chat はチャット1件のメタデータ。必ず1ユーザーに属する。
type Chat struct {
	ID            uuid.UUID
	UserID        string
	Title         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastMessageAt *time.Time
}

// Message はチャット内の1メッセージ
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store はチャット履歴の永続化インターフェース。
// チャットの読み書きは常に所有ユーザーでスコープされる。
type Store interface {
	// InsertChat はユーザーのチャットを作成する
	InsertChat(ctx context.Context, userID, title string) (*Chat, error)

	// ListChats はユーザーの削除されていないチャットを新しい順で返す。
	// last_message_at降順（NULLは末尾）、同値は created_at降順。
	ListChats(ctx context.Context, userID string, limit int) ([]*Chat, error)

	// GetChat はユーザーの削除されていないチャットを取得する。
	// 他ユーザーのチャットや削除済みは ErrChatNotFound を返す。
	GetChat(ctx context.Context, userID string, chatID uuid.UUID) (*Chat, error)

	// SoftDeleteChat はユーザーのチャットと配下のメッセージに削除フラグを立てる。
	// 対象が無い場合は ErrChatNotFound を返す。
	SoftDeleteChat(ctx context.Context, userID string, chatID uuid.UUID) error

	// ListMessages はチャットのメッセージを作成時刻の昇順で返す
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]*Message, error)

	// InsertMessage はメッセージを追記し、チャットの
	// updated_at / last_message_at を更新する
	InsertMessage(ctx context.Context, chatID uuid.UUID, role, content string) (*Message, error)

	// UpdateTitle はチャットのタイトルを変更する
	UpdateTitle(ctx context.Context, chatID uuid.UUID, title string) error
}
