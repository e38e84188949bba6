package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInput(t *testing.T) {
	chunks := ChunkText("hello", 900, 120)

	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestChunkTextEmptyInput(t *testing.T) {
	assert.Nil(t, ChunkText("", 900, 120))
}

func TestChunkTextOverlappingWindows(t *testing.T) {
	text := strings.Repeat("x", 2000)

	chunks := ChunkText(text, 900, 120)

	// 窓は 780 文字ずつ進む: [0:900] [780:1680] [1560:2000]
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 900)
	assert.Len(t, chunks[1], 900)
	assert.Len(t, chunks[2], 440)

	// 隣接チャンクは末尾120文字を共有する
	assert.Equal(t, chunks[0][780:], chunks[1][:120])
}

func TestChunkTextCountsRunes(t *testing.T) {
	// マルチバイト文字でもバイト数ではなく文字数で区切る
	text := strings.Repeat("あ", 1000)

	chunks := ChunkText(text, 900, 120)

	require.Len(t, chunks, 2)
	assert.Equal(t, 900, len([]rune(chunks[0])))
	assert.Equal(t, 220, len([]rune(chunks[1])))
}

func TestChunkTextFallsBackToDefaults(t *testing.T) {
	text := strings.Repeat("x", 1000)

	// 不正なパラメータはデフォルト値に倒す
	assert.Equal(t, ChunkText(text, 0, -1), ChunkText(text, DefaultChunkChars, DefaultOverlap))

	// デフォルトの重複幅すら入らない場合は重複なしで進める
	assert.Equal(t, ChunkText(text, 100, 100), ChunkText(text, 100, 0))
}
