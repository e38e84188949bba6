package ingestion

import "context"

// ChunkRecord は取り込み済みチャンクの1行を表す。保存後は不変。
type ChunkRecord struct {
	SourceFile string
	ChunkIndex int
	Content    string
	Embedding  []float32
}

// ChunkWriter はチャンクの書き込みインターフェース
type ChunkWriter interface {
	// InsertChunks はチャンクをまとめて挿入する
	InsertChunks(ctx context.Context, rows []ChunkRecord) error

	// NextChunkIndex はソースの次に採番すべき chunk_index を返す（再開用）
	NextChunkIndex(ctx context.Context, sourceFile string) (int, error)
}

// Extractor はPDFからページごとのテキストを抽出するインターフェース
type Extractor interface {
	ExtractPages(ctx context.Context, path string) ([]string, error)
}

// IgnoreMatcher は取り込み対象から除外するパスの判定インターフェース。
// ポリシー文書やライセンス原文のディレクトリを除外するために使う。
type IgnoreMatcher interface {
	MatchesPath(path string) bool
}
