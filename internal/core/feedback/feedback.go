// Package feedback は回答に対するユーザー評価の記録を提供する。
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidScore はスコアが許可された値でないことを表す
var ErrInvalidScore = errors.New("score must be -1, 0, or 1")

// Entry は1件のフィードバックを表す
type Entry struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	MessageID *uuid.UUID
	Score     *int
	Comment   string
	CreatedAt time.Time
}

// Store はフィードバックの永続化インターフェース
type Store interface {
	// Insert はフィードバックを追記し、採番したIDを返す
	Insert(ctx context.Context, entry Entry) (uuid.UUID, error)
}

// Service はフィードバックの受付と検証を行う
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

// Record はフィードバックを検証して保存する。
// score は -1 / 0 / 1 のみ許可し、省略も認める。
func (s *Service) Record(ctx context.Context, entry Entry) (uuid.UUID, error) {
	if entry.Score != nil {
		switch *entry.Score {
		case -1, 0, 1:
		default:
			return uuid.Nil, ErrInvalidScore
		}
	}

	id, err := s.store.Insert(ctx, entry)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert feedback: %w", err)
	}

	s.logger.Info("feedback recorded", "id", id, "sessionID", entry.SessionID)
	return id, nil
}
