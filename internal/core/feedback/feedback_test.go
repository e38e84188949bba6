package feedback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	entries []Entry
	err     error
}

func (s *stubStore) Insert(ctx context.Context, entry Entry) (uuid.UUID, error) {
	s.entries = append(s.entries, entry)
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return uuid.New(), nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func intPtr(n int) *int { return &n }

func TestRecordAcceptsAllowedScores(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, WithLogger(testLogger))

	for _, score := range []*int{intPtr(-1), intPtr(0), intPtr(1), nil} {
		id, err := svc.Record(context.Background(), Entry{
			SessionID: uuid.New(),
			Score:     score,
			Comment:   "helpful",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
	}

	assert.Len(t, store.entries, 4)
}

func TestRecordRejectsOutOfRangeScore(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, WithLogger(testLogger))

	_, err := svc.Record(context.Background(), Entry{
		SessionID: uuid.New(),
		Score:     intPtr(2),
	})
	assert.ErrorIs(t, err, ErrInvalidScore)

	// 検証で弾かれた場合はストアに触れない
	assert.Empty(t, store.entries)
}

func TestRecordWrapsStoreError(t *testing.T) {
	store := &stubStore{err: fmt.Errorf("connection refused")}
	svc := NewService(store, WithLogger(testLogger))

	_, err := svc.Record(context.Background(), Entry{SessionID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert feedback")
}
