package answer

import (
	"context"
	"errors"
)

// ErrPromptNotFound は指定名のプロンプトテンプレートが存在しない場合のエラー
var ErrPromptNotFound = errors.New("prompt not found")

// PromptStore は名前付きプロンプトテンプレートの読み込みインターフェース
type PromptStore interface {
	// Load は名前でテンプレート本文を取得する。
	// 存在しない場合は ErrPromptNotFound を返す。
	Load(name string) (string, error)
}

// ChunkSearcher はクエリベクトルによる類似チャンク検索インターフェース
type ChunkSearcher interface {
	// Search は類似度の降順で上位k件のチャンクを返す
	Search(ctx context.Context, queryVector []float32, k int) ([]Chunk, error)
}

// LicenseDirectives は引用元に対するライセンス制約ブロックの生成インターフェース。
// ストア障害時は内部で空リストに倒し、strict側の指示を返す（fail-closed）。
type LicenseDirectives interface {
	Directives(ctx context.Context, sourceFiles []string) string
}

// VendorDirectives はベンダー候補ブロックの生成インターフェース
type VendorDirectives interface {
	Directives(ctx context.Context, question string) (string, error)
}
