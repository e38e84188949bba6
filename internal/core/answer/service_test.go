package answer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/meai/internal/core/conversation"
	"github.com/jinford/meai/internal/core/llm"
)

// === テスト用スタブ ===

type stubPromptStore struct {
	prompts map[string]string
}

func (s *stubPromptStore) Load(name string) (string, error) {
	p, ok := s.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPromptNotFound, name)
	}
	return p, nil
}

type stubLLM struct {
	responses []string
	calls     [][]llm.Message
	temps     []float64
}

func (s *stubLLM) Complete(ctx context.Context, messages []llm.Message, temperature float64) (string, error) {
	s.calls = append(s.calls, messages)
	s.temps = append(s.temps, temperature)
	if len(s.responses) == 0 {
		return "", fmt.Errorf("no stub response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

type stubEmbedder struct {
	embedCalls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.embedCalls++
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubSearcher struct {
	rows  []Chunk
	ks    []int
	calls int
}

func (s *stubSearcher) Search(ctx context.Context, queryVector []float32, k int) ([]Chunk, error) {
	s.calls++
	s.ks = append(s.ks, k)
	return s.rows, nil
}

type stubLicenses struct {
	block string
	calls int
}

func (s *stubLicenses) Directives(ctx context.Context, sourceFiles []string) string {
	s.calls++
	if s.block == "" {
		return "LICENSE CONSTRAINTS (must follow):\n- No retrieved documents."
	}
	return s.block
}

type stubVendors struct {
	block     string
	questions []string
}

func (s *stubVendors) Directives(ctx context.Context, question string) (string, error) {
	s.questions = append(s.questions, question)
	return s.block, nil
}

type stubConversation struct {
	sessions []uuid.UUID
	messages []string
	roles    []string
	inserted []uuid.UUID
}

func (s *stubConversation) EnsureSession(ctx context.Context, sessionID uuid.UUID, testerLabel *string) error {
	s.sessions = append(s.sessions, sessionID)
	return nil
}

func (s *stubConversation) InsertMessage(ctx context.Context, sessionID uuid.UUID, role string, content string) (uuid.UUID, error) {
	s.roles = append(s.roles, role)
	s.messages = append(s.messages, content)
	id := uuid.New()
	s.inserted = append(s.inserted, id)
	return id, nil
}

func (s *stubConversation) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*conversation.Message, error) {
	return nil, nil
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestService(llmStub *stubLLM, searcher *stubSearcher, vendors *stubVendors, conv *stubConversation) *Service {
	prompts := &stubPromptStore{prompts: map[string]string{
		"mode_1":                   "mode one system prompt",
		"mode_2":                   "mode two system prompt",
		"planner":                  "planner prompt",
		"validator":                "validator prompt",
		"pinned_facts_hardwarehub": "pinned facts",
	}}
	return NewService(prompts, llmStub, &stubEmbedder{}, searcher, &stubLicenses{}, vendors, conv,
		WithLogger(testLogger),
	)
}

// === テスト ===

func TestAnswerRoutedScheduling(t *testing.T) {
	llmStub := &stubLLM{}
	conv := &stubConversation{}
	svc := newTestService(llmStub, &stubSearcher{}, &stubVendors{}, conv)

	result, err := svc.Answer(context.Background(), Params{
		Mode:    "mode_1",
		Message: "Can we schedule a meeting with HardwareHub next week?",
	})
	require.NoError(t, err)

	// PlannerもLLMも一切呼ばれない
	assert.Empty(t, llmStub.calls)
	assert.Contains(t, result.Answer, DefaultSchedulingURL)
	assert.Equal(t, RoutedSchedule, result.Debug.Routed)
	assert.Empty(t, result.Citations)

	// ユーザー発話と定型回答が会話ログに残る
	require.Len(t, conv.roles, 2)
	assert.Equal(t, "user", conv.roles[0])
	assert.Equal(t, "assistant", conv.roles[1])
	assert.Equal(t, result.Answer, conv.messages[1])
}

func TestAnswerRepairsExactlyOnce(t *testing.T) {
	llmStub := &stubLLM{responses: []string{
		`{"needs_clarification": false, "clarifying_question": "", "use_docs_rag": false, "use_vendors": false}`,
		"draft answer",
		`{"ok": false, "issues": ["missing citation"]}`,
		"repaired answer",
	}}
	conv := &stubConversation{}
	svc := newTestService(llmStub, &stubSearcher{}, &stubVendors{}, conv)

	result, err := svc.Answer(context.Background(), Params{
		Mode:    "mode_1",
		Message: "what is the standard tolerance for this fit?",
	})
	require.NoError(t, err)

	// planner / 生成 / validator / 修正 の4回で止まる（再検証はしない）
	require.Len(t, llmStub.calls, 4)
	assert.Equal(t, "repaired answer", result.Answer)
	assert.True(t, result.Debug.Fixed)

	// 修正指示は会話の末尾にuserターンとして積まれ、温度は0
	repairCall := llmStub.calls[3]
	last := repairCall[len(repairCall)-1]
	assert.Equal(t, llm.RoleUser, last.Role)
	assert.Contains(t, last.Content, "Fix the answer to address these issues:")
	assert.Contains(t, last.Content, "- missing citation")
	assert.Equal(t, 0.0, llmStub.temps[3])

	// 永続化されるassistantメッセージは修正済みの方
	assert.Equal(t, "repaired answer", conv.messages[len(conv.messages)-1])
}

func TestAnswerSystemDocsOnlyEmptyContext(t *testing.T) {
	llmStub := &stubLLM{responses: []string{
		`{"needs_clarification": false, "clarifying_question": "", "use_docs_rag": true, "use_vendors": false}`,
	}}
	searcher := &stubSearcher{rows: []Chunk{
		{SourceFile: "random_catalog.pdf", ChunkIndex: 0, Content: strings.Repeat("x", 100)},
	}}
	conv := &stubConversation{}
	svc := newTestService(llmStub, searcher, &stubVendors{}, conv)

	result, err := svc.Answer(context.Background(), Params{
		Mode:    "mode_1",
		Message: "run a meai self-check of the runbook",
	})
	require.NoError(t, err)

	// k=8 → 許可リスト外で空 → k=24 で再試行 → それでも空なら確定回答
	assert.Equal(t, []int{8, 24}, searcher.ks)
	assert.Equal(t, "No ME AI system-doc context retrieved", result.Answer)
	assert.Empty(t, result.Citations)

	// 生成を行わないのでassistantメッセージは永続化されない
	assert.Equal(t, []string{"user"}, conv.roles)
	require.Len(t, llmStub.calls, 1)
}

func TestAnswerVendorRequest(t *testing.T) {
	good := strings.Repeat("context text ", 10)
	llmStub := &stubLLM{responses: []string{
		`{"needs_clarification": false, "clarifying_question": "", "use_docs_rag": true, "use_vendors": false}`,
		"you could work with Acme Machining [VENDOR_TABLE]",
		`{"ok": true, "issues": []}`,
	}}
	searcher := &stubSearcher{rows: []Chunk{
		{SourceFile: "a.pdf", ChunkIndex: 2, Content: good},
	}}
	vendors := &stubVendors{block: "VENDOR_TABLE_MATCHES (use these explicitly when asked):\n- Acme Machining (CNC)"}
	conv := &stubConversation{}
	svc := newTestService(llmStub, searcher, vendors, conv)

	result, err := svc.Answer(context.Background(), Params{
		Mode:    "mode_2",
		Message: "I need a medical-grade CNC supplier",
	})
	require.NoError(t, err)

	// Plannerがfalseでもキーワードでベンダー照会が有効になる
	require.Len(t, vendors.questions, 1)
	assert.True(t, result.Debug.UsedVendors)

	// 出典に [VENDOR_TABLE] が含まれる
	last := result.Citations[len(result.Citations)-1]
	assert.Equal(t, "[VENDOR_TABLE]", last.Tag)
	assert.Equal(t, DefaultVendorTableName, last.Source)

	// 生成プロンプトにベンダーブロックが埋め込まれる
	genCall := llmStub.calls[1]
	userTurn := genCall[len(genCall)-1]
	assert.Contains(t, userTurn.Content, "Acme Machining")
}

func TestAnswerValidatesParams(t *testing.T) {
	svc := newTestService(&stubLLM{}, &stubSearcher{}, &stubVendors{}, &stubConversation{})

	_, err := svc.Answer(context.Background(), Params{Mode: "", Message: "hello"})
	assert.Error(t, err)

	_, err = svc.Answer(context.Background(), Params{Mode: "mode_1", Message: "   "})
	assert.Error(t, err)
}
