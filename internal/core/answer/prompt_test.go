package answer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/meai/internal/core/llm"
)

func TestBuildUserPromptContainsAllSections(t *testing.T) {
	got := BuildUserPrompt("LICENSE CONSTRAINTS (must follow):\n- No retrieved documents.",
		"VENDOR_TABLE_MATCHES:\n- Not requested.",
		"how thick should the wall be?")

	assert.Contains(t, got, "LICENSE CONSTRAINTS (must follow):")
	assert.Contains(t, got, "VENDOR_TABLE_MATCHES:")
	assert.Contains(t, got, "USER QUESTION:\nhow thick should the wall be?")
	assert.Contains(t, got, `End with "Citations:"`)
}

func TestBuildMessagesOrder(t *testing.T) {
	messages := BuildMessages("pinned", true, "mode prompt", "some context", "user prompt")

	require.Len(t, messages, 5)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, "pinned", messages[0].Content)
	assert.Contains(t, messages[1].Content, "HardwareHub")
	assert.Equal(t, "mode prompt", messages[2].Content)
	assert.Equal(t, "RETRIEVED CONTEXT:\nsome context", messages[3].Content)
	assert.Equal(t, llm.RoleUser, messages[4].Role)
	assert.Equal(t, "user prompt", messages[4].Content)
}

func TestBuildMessagesWithoutServicesAndContext(t *testing.T) {
	messages := BuildMessages("pinned", false, "mode prompt", "", "user prompt")

	require.Len(t, messages, 3)
	for _, m := range messages[:2] {
		assert.Equal(t, llm.RoleSystem, m.Role)
	}
	assert.Equal(t, "user prompt", messages[2].Content)

	for _, m := range messages {
		assert.False(t, strings.HasPrefix(m.Content, "RETRIEVED CONTEXT:"))
	}
}

func TestBuildCitations(t *testing.T) {
	got := BuildCitations([]string{"[a.pdf:3]", "[weird tag]"}, false, "vendors_core")

	require.Len(t, got, 2)
	assert.Equal(t, "a.pdf", got[0].SourceFile)
	require.NotNil(t, got[0].ChunkIndex)
	assert.Equal(t, 3, *got[0].ChunkIndex)

	// パースできないタグはタグ文字列だけを保持する
	assert.Equal(t, "[weird tag]", got[1].Tag)
	assert.Empty(t, got[1].SourceFile)
	assert.Nil(t, got[1].ChunkIndex)
}

func TestBuildCitationsAppendsVendorTable(t *testing.T) {
	got := BuildCitations([]string{"[a.pdf:0]"}, true, "vendors_core")

	require.Len(t, got, 2)
	assert.Equal(t, "[VENDOR_TABLE]", got[1].Tag)
	assert.Equal(t, "vendors_core", got[1].Source)
}

func TestCountPromptTokens(t *testing.T) {
	// BPEランクが取得できない環境(オフラインかつキャッシュ無し)ではスキップする
	if _, err := promptEncoding(); err != nil {
		t.Skipf("o200k_base encoding unavailable: %v", err)
	}

	messages := []llm.Message{
		llm.System("You are a helpful assistant."),
		llm.User("hello"),
	}

	assert.Greater(t, CountPromptTokens(messages), 0)
}
