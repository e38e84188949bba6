// Package ingestion はPDF文書のチャンク分割・Embedding生成・保存を行う
// バッチ取り込みパイプラインを提供する。
package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jinford/meai/internal/core/llm"
)

// DefaultBatchSize はEmbedding生成と挿入をまとめる件数
const DefaultBatchSize = 10

// Pipeline はライブラリディレクトリの取り込みを実行する
type Pipeline struct {
	extractor Extractor
	embedder  llm.Embedder
	writer    ChunkWriter
	ignore    IgnoreMatcher
	logger    *slog.Logger

	chunkChars int
	overlap    int
	batchSize  int
}

// PipelineOption は Pipeline 構築時のオプション
type PipelineOption func(*Pipeline)

// WithPipelineLogger はロガーを差し替える
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithIgnoreMatcher は除外パス判定を設定する
func WithIgnoreMatcher(ignore IgnoreMatcher) PipelineOption {
	return func(p *Pipeline) {
		p.ignore = ignore
	}
}

// WithChunking はチャンクサイズと重複幅を上書きする
func WithChunking(chars, overlap int) PipelineOption {
	return func(p *Pipeline) {
		p.chunkChars = chars
		p.overlap = overlap
	}
}

// NewPipeline は新しい Pipeline を作成する
func NewPipeline(extractor Extractor, embedder llm.Embedder, writer ChunkWriter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		extractor:  extractor,
		embedder:   embedder,
		writer:     writer,
		logger:     slog.Default(),
		chunkChars: DefaultChunkChars,
		overlap:    DefaultOverlap,
		batchSize:  DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IngestDir はライブラリディレクトリ配下のPDFを辞書順に取り込む。
// 1ファイルの失敗はログに残して次のファイルへ進む。
func (p *Pipeline) IngestDir(ctx context.Context, dir string) error {
	pdfs, err := p.findPDFs(dir)
	if err != nil {
		return fmt.Errorf("failed to scan library dir: %w", err)
	}

	p.logger.Info("found PDFs", "dir", dir, "count", len(pdfs))

	for _, path := range pdfs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.IngestFile(ctx, dir, path); err != nil {
			p.logger.Error("ingestion failed, continuing to next PDF", "path", path, "error", err)
		}
	}
	return nil
}

// IngestFile は単一のPDFを取り込む。
// ソース識別子はライブラリディレクトリからの相対パス。
// 保存済みの最大 chunk_index から再開し、既存チャンクは再生成しない。
func (p *Pipeline) IngestFile(ctx context.Context, dir, path string) error {
	sourceID, err := filepath.Rel(dir, path)
	if err != nil {
		sourceID = path
	}

	resumeAt, err := p.writer.NextChunkIndex(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to resolve resume index: %w", err)
	}

	p.logger.Info("processing PDF", "source", sourceID, "resumeAt", resumeAt)

	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	nextIndex := 0
	var batch []ChunkRecord
	for _, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}

		for _, chunk := range ChunkText(text+"\n", p.chunkChars, p.overlap) {
			if nextIndex < resumeAt {
				nextIndex++
				continue
			}

			batch = append(batch, ChunkRecord{
				SourceFile: sourceID,
				ChunkIndex: nextIndex,
				Content:    chunk,
			})
			nextIndex++

			if len(batch) >= p.batchSize {
				if err := p.flush(ctx, sourceID, batch); err != nil {
					return err
				}
				batch = nil
			}
		}
	}

	if len(batch) > 0 {
		if err := p.flush(ctx, sourceID, batch); err != nil {
			return err
		}
	}

	p.logger.Info("done", "source", sourceID, "chunks", nextIndex)
	return nil
}

// flush はバッチのEmbeddingを生成してまとめて挿入する
func (p *Pipeline) flush(ctx context.Context, sourceID string, batch []ChunkRecord) error {
	texts := make([]string, len(batch))
	for i, row := range batch {
		texts[i] = row.Content
	}

	embeddings, err := p.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(batch))
	}

	for i := range batch {
		batch[i].Embedding = embeddings[i]
	}

	if err := p.writer.InsertChunks(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	p.logger.Info("inserted batch",
		"source", sourceID,
		"throughIndex", batch[len(batch)-1].ChunkIndex,
	)
	return nil
}

// findPDFs はディレクトリ配下の取り込み対象PDFを辞書順で列挙する
func (p *Pipeline) findPDFs(dir string) ([]string, error) {
	var pdfs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p.ignore != nil && p.ignore.MatchesPath(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		if p.ignore != nil && p.ignore.MatchesPath(path) {
			return nil
		}
		pdfs = append(pdfs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(pdfs)
	return pdfs, nil
}
