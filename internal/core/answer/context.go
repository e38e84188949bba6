package answer

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinChunkChars を下回るチャンクはノイズとして捨てる
	MinChunkChars = 80

	// MaxDigitRatio を超える数字比率はOCRノイズや数表とみなす
	MaxDigitRatio = 0.35

	// MaxContextChunks は生成に渡すチャンク数の上限。
	// 取得件数（8件、フォールバック時24件）に関わらずこれを超えない。
	MaxContextChunks = 5
)

// systemDocAllowlist はsystem-docs-onlyモードで許可する文書のベース名。
// 内部システム文書一式と UI スキーマのみ。
var systemDocAllowlist = map[string]struct{}{
	"01_Project_Overview.pdf":    {},
	"02_System_Architecture.pdf": {},
	"03_Tech_Stack.pdf":          {},
	"04_Env_and_Secrets.pdf":     {},
	"05_Database_Schema.pdf":     {},
	"06_Ingestion_Pipeline.pdf":  {},
	"07_Known_Issues.pdf":        {},
	"08_Runbook.pdf":             {},
	"09_Future_Roadmap.pdf":      {},
	"10_Glossary.pdf":            {},
	"ui_schema.md":               {},
}

// IsGarbage はチャンク本文が低品質かどうかを判定する。
// 80文字未満、または数字比率が0.35を超えるものを除外する。
func IsGarbage(content string) bool {
	n := utf8.RuneCountInString(content)
	if n < MinChunkChars {
		return true
	}
	digits := 0
	for _, r := range content {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits)/float64(n) > MaxDigitRatio
}

// AssembledContext はコンテキスト構築の結果を表す。
// Tags と SourceFiles は初出順を保った重複排除済みリスト。
type AssembledContext struct {
	Context     string
	Tags        []string
	SourceFiles []string
}

// Empty はコンテキストに採用されたチャンクが無かったかどうかを返す
func (a AssembledContext) Empty() bool {
	return len(a.Tags) == 0
}

// BuildContext は取得順を保ったままガベージフィルタを適用し、
// maxChunks 件が残るまでチャンクを採用してコンテキストを構築する。
// 類似度による足切りは行わない。
func BuildContext(rows []Chunk, maxChunks int) AssembledContext {
	var (
		ctx   []string
		tags  []string
		files []string
	)
	for _, r := range rows {
		if IsGarbage(r.Content) {
			continue
		}
		if r.SourceFile == "" {
			continue
		}
		ctx = append(ctx, r.Content)
		tags = append(tags, r.Tag())
		files = append(files, r.SourceFile)
		if len(ctx) >= maxChunks {
			break
		}
	}
	return AssembledContext{
		Context:     strings.Join(ctx, "\n\n"),
		Tags:        dedupeOrdered(tags),
		SourceFiles: dedupeOrdered(files),
	}
}

// FilterSystemDocs は許可リストのベース名を持つチャンクだけに絞り込む
func FilterSystemDocs(rows []Chunk) []Chunk {
	filtered := make([]Chunk, 0, len(rows))
	for _, r := range rows {
		if _, ok := systemDocAllowlist[path.Base(r.SourceFile)]; ok {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// dedupeOrdered は初出順を保ったまま重複を除去する
func dedupeOrdered(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
