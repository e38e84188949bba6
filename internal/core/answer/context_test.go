package answer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGarbageShortChunk(t *testing.T) {
	long := strings.Repeat("a", 80)
	short := strings.Repeat("a", 79)

	assert.True(t, IsGarbage(short))
	assert.False(t, IsGarbage(long))
}

func TestIsGarbageDigitRatio(t *testing.T) {
	// 100文字中35個の数字は比率0.35ちょうどで許容される
	border := strings.Repeat("1", 35) + strings.Repeat("a", 65)
	assert.False(t, IsGarbage(border))

	// 36個で0.35を超える
	over := strings.Repeat("1", 36) + strings.Repeat("a", 64)
	assert.True(t, IsGarbage(over))
}

func TestIsGarbageCountsRunes(t *testing.T) {
	// マルチバイト文字でも文字数で判定する
	long := strings.Repeat("あ", 80)
	assert.False(t, IsGarbage(long))
}

func chunkWith(source string, index int, content string) Chunk {
	return Chunk{SourceFile: source, ChunkIndex: index, Content: content}
}

func TestBuildContextSkipsGarbageAndCaps(t *testing.T) {
	good := strings.Repeat("x", 100)

	rows := []Chunk{
		chunkWith("a.pdf", 0, "short"),
		chunkWith("a.pdf", 1, good),
		chunkWith("b.pdf", 0, good),
		chunkWith("c.pdf", 0, good),
		chunkWith("d.pdf", 0, good),
		chunkWith("e.pdf", 0, good),
		chunkWith("f.pdf", 0, good),
	}

	got := BuildContext(rows, MaxContextChunks)

	assert.Len(t, got.Tags, 5)
	assert.Equal(t, []string{"[a.pdf:1]", "[b.pdf:0]", "[c.pdf:0]", "[d.pdf:0]", "[e.pdf:0]"}, got.Tags)
	assert.Equal(t, 5, strings.Count(got.Context, good))
	assert.False(t, got.Empty())
}

func TestBuildContextSkipsEmptySourceFile(t *testing.T) {
	good := strings.Repeat("x", 100)

	got := BuildContext([]Chunk{chunkWith("", 0, good)}, MaxContextChunks)

	assert.True(t, got.Empty())
	assert.Equal(t, "", got.Context)
}

func TestBuildContextDedupesTagsAndFiles(t *testing.T) {
	good := strings.Repeat("x", 100)

	rows := []Chunk{
		chunkWith("a.pdf", 0, good),
		chunkWith("b.pdf", 1, good),
		chunkWith("a.pdf", 0, good),
	}

	got := BuildContext(rows, MaxContextChunks)

	assert.Equal(t, []string{"[a.pdf:0]", "[b.pdf:1]"}, got.Tags)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, got.SourceFiles)
	// 本文自体は重複排除しない
	assert.Equal(t, 3, strings.Count(got.Context, good))
}

func TestFilterSystemDocs(t *testing.T) {
	rows := []Chunk{
		chunkWith("08_Runbook.pdf", 0, "a"),
		chunkWith("docs/10_Glossary.pdf", 1, "b"),
		chunkWith("random_supplier_catalog.pdf", 0, "c"),
		chunkWith("ui_schema.md", 0, "d"),
	}

	got := FilterSystemDocs(rows)

	assert.Len(t, got, 3)
	assert.Equal(t, "08_Runbook.pdf", got[0].SourceFile)
	assert.Equal(t, "docs/10_Glossary.pdf", got[1].SourceFile)
	assert.Equal(t, "ui_schema.md", got[2].SourceFile)
}
