package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlan(t *testing.T) {
	raw := `{"needs_clarification": true, "clarifying_question": "which material?", "use_docs_rag": false, "use_vendors": true}`

	got, err := DecodePlan(raw)
	require.NoError(t, err)

	assert.True(t, got.NeedsClarification)
	assert.Equal(t, "which material?", got.ClarifyingQuestion)
	assert.False(t, got.UseDocsRAG)
	assert.True(t, got.UseVendors)
}

func TestDecodePlanMissingKeysDefaultToDocsRAG(t *testing.T) {
	got, err := DecodePlan(`{"use_vendors": true}`)
	require.NoError(t, err)

	assert.True(t, got.UseDocsRAG)
	assert.True(t, got.UseVendors)
	assert.False(t, got.NeedsClarification)
}

func TestDecodePlanInvalidJSON(t *testing.T) {
	_, err := DecodePlan("I think we should search the docs")
	require.Error(t, err)

	// 呼び出し側が代入するデフォルトは文書検索のみ有効
	assert.Equal(t, PlanDecision{UseDocsRAG: true}, DefaultPlan())
}

func TestDecodeVerdict(t *testing.T) {
	got, err := DecodeVerdict(`{"ok": false, "issues": ["missing citation", "wrong unit"]}`)
	require.NoError(t, err)

	assert.False(t, got.OK)
	assert.Equal(t, []string{"missing citation", "wrong unit"}, got.Issues)
	assert.True(t, ShouldRepair(got))
}

func TestDecodeVerdictMissingOKDefaultsToPass(t *testing.T) {
	got, err := DecodeVerdict(`{"issues": []}`)
	require.NoError(t, err)

	assert.True(t, got.OK)
	assert.False(t, ShouldRepair(got))
}

func TestDecodeVerdictInvalidJSON(t *testing.T) {
	_, err := DecodeVerdict("looks fine to me")
	require.Error(t, err)

	assert.Equal(t, Verdict{OK: true}, DefaultVerdict())
}
