package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/meai/internal/core/conversation"
)

// ConversationRepository はセッションとメッセージログの永続化を実装する
type ConversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository は新しい ConversationRepository を返す
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

var _ conversation.Store = (*ConversationRepository)(nil)

// EnsureSession はセッションを冪等に作成する。
// 既存セッションでは tester_label を非NULL値でのみ上書きする。
func (r *ConversationRepository) EnsureSession(ctx context.Context, sessionID uuid.UUID, testerLabel *string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO meai_sessions (id, tester_label)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE
		 SET tester_label = COALESCE(EXCLUDED.tester_label, meai_sessions.tester_label)`,
		sessionID, testerLabel,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	return nil
}

// InsertMessage はメッセージを追記し、採番したIDを返す
func (r *ConversationRepository) InsertMessage(ctx context.Context, sessionID uuid.UUID, role string, content string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO meai_messages (session_id, role, content)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		sessionID, role, content,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return id, nil
}

// ListMessages はセッションのメッセージを作成時刻の昇順で返す
func (r *ConversationRepository) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*conversation.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM meai_messages
		 WHERE session_id = $1
		 ORDER BY created_at ASC
		 LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*conversation.Message
	for rows.Next() {
		var m conversation.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read message rows: %w", err)
	}
	return messages, nil
}
