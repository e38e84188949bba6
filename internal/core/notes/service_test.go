package notes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/meai/internal/core/conversation"
	"github.com/jinford/meai/internal/core/llm"
)

type stubConversation struct {
	messages []*conversation.Message
	limits   []int
	err      error
}

func (s *stubConversation) EnsureSession(ctx context.Context, sessionID uuid.UUID, testerLabel *string) error {
	return nil
}

func (s *stubConversation) InsertMessage(ctx context.Context, sessionID uuid.UUID, role string, content string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (s *stubConversation) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*conversation.Message, error) {
	s.limits = append(s.limits, limit)
	return s.messages, s.err
}

type stubLLM struct {
	response string
	calls    [][]llm.Message
	temps    []float64
}

func (s *stubLLM) Complete(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
	s.calls = append(s.calls, messages)
	s.temps = append(s.temps, temperature)
	return s.response, nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestBuildNotesEmptySession(t *testing.T) {
	llmStub := &stubLLM{}
	svc := NewService(llmStub, &stubConversation{}, WithLogger(testLogger))
	sessionID := uuid.New()

	got, err := svc.BuildNotes(context.Background(), sessionID)
	require.NoError(t, err)

	// 空セッションはLLMを呼ばない
	assert.Empty(t, llmStub.calls)
	assert.Equal(t, fmt.Sprintf("# Engineering Notes\n\nNo messages found for session_id=%s\n", sessionID), got)
}

func TestBuildNotesTranscriptFormat(t *testing.T) {
	conv := &stubConversation{messages: []*conversation.Message{
		{Role: "user", Content: "what bolt grade should I use?"},
		{Role: "assistant", Content: "Use grade 8.8 for this load."},
	}}
	llmStub := &stubLLM{response: "- Decided on grade 8.8 bolts."}
	svc := NewService(llmStub, conv, WithLogger(testLogger))

	got, err := svc.BuildNotes(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, llmStub.calls, 1)
	call := llmStub.calls[0]
	require.Len(t, call, 2)
	assert.Equal(t, llm.RoleSystem, call[0].Role)
	assert.Contains(t, call[0].Content, "engineering scribe")
	assert.Equal(t, "USER: what bolt grade should I use?\n\nASSISTANT: Use grade 8.8 for this load.", call[1].Content)

	// 要約は温度0で生成する
	assert.Equal(t, []float64{0}, llmStub.temps)
	assert.Equal(t, "# Engineering Notes\n\n- Decided on grade 8.8 bolts.\n", got)

	// 読み出し件数には上限がある
	assert.Equal(t, []int{MaxTranscriptMessages}, conv.limits)
}

func TestBuildNotesBlankCompletion(t *testing.T) {
	conv := &stubConversation{messages: []*conversation.Message{
		{Role: "user", Content: "hello"},
	}}
	svc := NewService(&stubLLM{response: "   \n"}, conv, WithLogger(testLogger))

	got, err := svc.BuildNotes(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "# Engineering Notes\n\nNo content.\n", got)
}

func TestBuildNotesStoreError(t *testing.T) {
	conv := &stubConversation{err: fmt.Errorf("connection refused")}
	svc := NewService(&stubLLM{}, conv, WithLogger(testLogger))

	_, err := svc.BuildNotes(context.Background(), uuid.New())
	assert.Error(t, err)
}
