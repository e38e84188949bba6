package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/meai/internal/core/feedback"
)

// FeedbackRepository はフィードバックの永続化を実装する
type FeedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository は新しい FeedbackRepository を返す
func NewFeedbackRepository(pool *pgxpool.Pool) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

var _ feedback.Store = (*FeedbackRepository)(nil)

// Insert はフィードバックを追記し、採番したIDを返す
func (r *FeedbackRepository) Insert(ctx context.Context, entry feedback.Entry) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO meai_feedback (session_id, message_id, score, comment)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		entry.SessionID, entry.MessageID, entry.Score, entry.Comment,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return id, nil
}
