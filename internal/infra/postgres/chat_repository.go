package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/meai/internal/core/chat"
)

// ChatRepository はWeb UI向けチャット履歴の永続化を実装する
type ChatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository は新しい ChatRepository を返す
func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

var _ chat.Store = (*ChatRepository)(nil)

// InsertChat はユーザーのチャットを作成する
func (r *ChatRepository) InsertChat(ctx context.Context, userID, title string) (*chat.Chat, error) {
	var c chat.Chat
	err := r.pool.QueryRow(ctx,
		`INSERT INTO chats (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, user_id, title, created_at, updated_at, last_message_at`,
		userID, title,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.LastMessageAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat: %w", err)
	}
	return &c, nil
}

// ListChats はユーザーの削除されていないチャットを新しい順で返す
func (r *ChatRepository) ListChats(ctx context.Context, userID string, limit int) ([]*chat.Chat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, created_at, updated_at, last_message_at
		 FROM chats
		 WHERE user_id = $1 AND deleted = FALSE
		 ORDER BY last_message_at DESC NULLS LAST, created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []*chat.Chat
	for rows.Next() {
		var c chat.Chat
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.LastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat row: %w", err)
		}
		chats = append(chats, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat rows: %w", err)
	}
	return chats, nil
}

// GetChat はユーザーの削除されていないチャットを取得する
func (r *ChatRepository) GetChat(ctx context.Context, userID string, chatID uuid.UUID) (*chat.Chat, error) {
	var c chat.Chat
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at, updated_at, last_message_at
		 FROM chats
		 WHERE id = $1 AND user_id = $2 AND deleted = FALSE`,
		chatID, userID,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt, &c.LastMessageAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, chat.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &c, nil
}

// SoftDeleteChat はユーザーのチャットと配下のメッセージに削除フラグを立てる
func (r *ChatRepository) SoftDeleteChat(ctx context.Context, userID string, chatID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE chats SET deleted = TRUE, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND deleted = FALSE`,
		chatID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrChatNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE chat_messages SET deleted = TRUE WHERE chat_id = $1`,
		chatID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chat deletion: %w", err)
	}
	return nil
}

// ListMessages はチャットのメッセージを作成時刻の昇順で返す
func (r *ChatRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*chat.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, chat_id, role, content, created_at
		 FROM chat_messages
		 WHERE chat_id = $1 AND deleted = FALSE
		 ORDER BY created_at ASC`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*chat.Message
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat message rows: %w", err)
	}
	return messages, nil
}

// InsertMessage はメッセージを追記し、チャットの更新時刻を進める
func (r *ChatRepository) InsertMessage(ctx context.Context, chatID uuid.UUID, role, content string) (*chat.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var m chat.Message
	err = tx.QueryRow(ctx,
		`INSERT INTO chat_messages (chat_id, role, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, chat_id, role, content, created_at`,
		chatID, role, content,
	).Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert chat message: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE chats SET updated_at = NOW(), last_message_at = NOW()
		 WHERE id = $1`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to touch chat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit chat message: %w", err)
	}
	return &m, nil
}

// UpdateTitle はチャットのタイトルを変更する
func (r *ChatRepository) UpdateTitle(ctx context.Context, chatID uuid.UUID, title string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE chats SET title = $2, updated_at = NOW()
		 WHERE id = $1 AND deleted = FALSE`,
		chatID, title,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrChatNotFound
	}
	return nil
}
