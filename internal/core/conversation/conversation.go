// Package conversation はセッションとメッセージログの永続化契約を定義する。
package conversation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// メッセージのロール。meai_messages.role と一致する。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ValidRole はロール文字列が許可された値かどうかを返す
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message は会話ログの1ターンを表す。追記専用で、created_at順が会話順。
type Message struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

// Store はセッション/メッセージの永続化インターフェース
type Store interface {
	// EnsureSession はセッションを冪等に作成する（id でupsert）
	EnsureSession(ctx context.Context, sessionID uuid.UUID, testerLabel *string) error

	// InsertMessage はメッセージを追記し、採番したメッセージIDを返す
	InsertMessage(ctx context.Context, sessionID uuid.UUID, role string, content string) (uuid.UUID, error)

	// ListMessages はセッションのメッセージを作成時刻の昇順で返す
	ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*Message, error)
}
