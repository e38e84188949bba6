// Package postgres は PostgreSQL (pgvector) を使ったリポジトリ実装を提供する。
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/meai/internal/core/answer"
	"github.com/jinford/meai/internal/core/ingestion"
)

// ChunkRepository は meai_chunks テーブルに対する検索と書き込みを実装する
type ChunkRepository struct {
	pool *pgxpool.Pool
}

// NewChunkRepository は新しい ChunkRepository を返す
func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

var (
	_ answer.ChunkSearcher  = (*ChunkRepository)(nil)
	_ ingestion.ChunkWriter = (*ChunkRepository)(nil)
)

// Search は match_meai_chunks 関数でコサイン類似度の上位k件を返す
func (r *ChunkRepository) Search(ctx context.Context, queryVector []float32, k int) ([]answer.Chunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source_file, chunk_index, content, similarity FROM match_meai_chunks($1, $2)`,
		pgvector.NewVector(queryVector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var chunks []answer.Chunk
	for rows.Next() {
		var c answer.Chunk
		if err := rows.Scan(&c.SourceFile, &c.ChunkIndex, &c.Content, &c.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}
	return chunks, nil
}

// InsertChunks はチャンクをまとめて挿入する
func (r *ChunkRepository) InsertChunks(ctx context.Context, records []ingestion.ChunkRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO meai_chunks (source_file, chunk_index, content, embedding)
			 VALUES ($1, $2, $3, $4)`,
			rec.SourceFile, rec.ChunkIndex, rec.Content, pgvector.NewVector(rec.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s[%d]: %w", rec.SourceFile, rec.ChunkIndex, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk batch: %w", err)
	}
	return nil
}

// NextChunkIndex はソースの次に採番すべき chunk_index を返す
func (r *ChunkRepository) NextChunkIndex(ctx context.Context, sourceFile string) (int, error) {
	var next int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(chunk_index) + 1, 0) FROM meai_chunks WHERE source_file = $1`,
		sourceFile,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve next chunk index: %w", err)
	}
	return next, nil
}
