package ingestion

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	pages map[string][]string
	paths []string
}

func (s *stubExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	s.paths = append(s.paths, path)
	return s.pages[filepath.Base(path)], nil
}

type stubEmbedder struct {
	batches [][]string
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.5}, nil
}

func (s *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches = append(s.batches, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.5}
	}
	return out, nil
}

type stubWriter struct {
	nextIndex int
	inserts   [][]ChunkRecord
}

func (s *stubWriter) InsertChunks(ctx context.Context, rows []ChunkRecord) error {
	s.inserts = append(s.inserts, rows)
	return nil
}

func (s *stubWriter) NextChunkIndex(ctx context.Context, sourceFile string) (int, error) {
	return s.nextIndex, nil
}

type stubIgnore struct {
	blocked []string
}

func (s *stubIgnore) MatchesPath(path string) bool {
	for _, b := range s.blocked {
		if strings.Contains(path, b) {
			return true
		}
	}
	return false
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestPipeline(extractor *stubExtractor, writer *stubWriter, opts ...PipelineOption) (*Pipeline, *stubEmbedder) {
	embedder := &stubEmbedder{}
	opts = append([]PipelineOption{WithPipelineLogger(testLogger)}, opts...)
	return NewPipeline(extractor, embedder, writer, opts...), embedder
}

func TestIngestFileFlushesInBatches(t *testing.T) {
	// 窓幅10・重複なしで226文字（末尾に改行が足される）→ 23チャンク
	extractor := &stubExtractor{pages: map[string][]string{
		"manual.pdf": {strings.Repeat("a", 225)},
	}}
	writer := &stubWriter{}
	p, _ := newTestPipeline(extractor, writer, WithChunking(10, 0))

	err := p.IngestFile(context.Background(), "/lib", "/lib/manual.pdf")
	require.NoError(t, err)

	require.Len(t, writer.inserts, 3)
	assert.Len(t, writer.inserts[0], 10)
	assert.Len(t, writer.inserts[1], 10)
	assert.Len(t, writer.inserts[2], 3)

	// チャンク番号は0から連番、ソースは相対パス
	first := writer.inserts[0][0]
	assert.Equal(t, "manual.pdf", first.SourceFile)
	assert.Equal(t, 0, first.ChunkIndex)
	last := writer.inserts[2][2]
	assert.Equal(t, 22, last.ChunkIndex)
}

func TestIngestFileAttachesEmbeddings(t *testing.T) {
	extractor := &stubExtractor{pages: map[string][]string{
		"manual.pdf": {"some page text"},
	}}
	writer := &stubWriter{}
	p, embedder := newTestPipeline(extractor, writer)

	err := p.IngestFile(context.Background(), "/lib", "/lib/manual.pdf")
	require.NoError(t, err)

	require.Len(t, embedder.batches, 1)
	require.Len(t, writer.inserts, 1)
	for _, row := range writer.inserts[0] {
		assert.Equal(t, []float32{0.5}, row.Embedding)
	}
}

func TestIngestFileResumesFromStoredIndex(t *testing.T) {
	extractor := &stubExtractor{pages: map[string][]string{
		"manual.pdf": {strings.Repeat("a", 99)},
	}}
	// 10チャンクのうち先頭5つは保存済み
	writer := &stubWriter{nextIndex: 5}
	p, _ := newTestPipeline(extractor, writer, WithChunking(10, 0))

	err := p.IngestFile(context.Background(), "/lib", "/lib/manual.pdf")
	require.NoError(t, err)

	require.Len(t, writer.inserts, 1)
	rows := writer.inserts[0]
	require.Len(t, rows, 5)
	assert.Equal(t, 5, rows[0].ChunkIndex)
	assert.Equal(t, 9, rows[4].ChunkIndex)
}

func TestIngestFileSkipsEmptyPages(t *testing.T) {
	extractor := &stubExtractor{pages: map[string][]string{
		"manual.pdf": {"", "  \n\t", "real content"},
	}}
	writer := &stubWriter{}
	p, _ := newTestPipeline(extractor, writer)

	err := p.IngestFile(context.Background(), "/lib", "/lib/manual.pdf")
	require.NoError(t, err)

	require.Len(t, writer.inserts, 1)
	require.Len(t, writer.inserts[0], 1)
	assert.Equal(t, "real content\n", writer.inserts[0][0].Content)
}

func TestIngestDirWalksSortedAndHonorsIgnores(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "licenses"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "licenses", "cc.pdf"), []byte("x"), 0o644))

	extractor := &stubExtractor{pages: map[string][]string{}}
	writer := &stubWriter{}
	p, _ := newTestPipeline(extractor, writer, WithIgnoreMatcher(&stubIgnore{blocked: []string{"licenses"}}))

	err := p.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	// 拡張子は大文字小文字を問わず、除外ディレクトリ配下は読まれない
	require.Len(t, extractor.paths, 2)
	assert.Equal(t, filepath.Join(dir, "a.PDF"), extractor.paths[0])
	assert.Equal(t, filepath.Join(dir, "b.pdf"), extractor.paths[1])
}
