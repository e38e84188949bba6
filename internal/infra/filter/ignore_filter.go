// Package filter は取り込み対象から除外するパスの判定を提供する。
package filter

import (
	"fmt"
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/jinford/meai/internal/core/ingestion"
)

// IgnoreFileName はライブラリディレクトリ直下に置く除外ルールファイル
const IgnoreFileName = ".meaiignore"

// IgnoreFilter は gitignore 形式のルールで除外パスを判定する
type IgnoreFilter struct {
	baseDir string
	matcher *gitignore.GitIgnore
}

// NewIgnoreFilter はライブラリディレクトリの除外ルールを読み込む。
// ルールファイルが無い場合は何も除外しないフィルタを返す。
func NewIgnoreFilter(baseDir string) (*IgnoreFilter, error) {
	path := filepath.Join(baseDir, IgnoreFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &IgnoreFilter{baseDir: baseDir}, nil
	}

	matcher, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to compile ignore rules: %w", err)
	}

	return &IgnoreFilter{baseDir: baseDir, matcher: matcher}, nil
}

var _ ingestion.IgnoreMatcher = (*IgnoreFilter)(nil)

// MatchesPath はパスが除外ルールに一致するかを返す。
// 判定はライブラリディレクトリからの相対パスで行う。
func (f *IgnoreFilter) MatchesPath(path string) bool {
	if f.matcher == nil {
		return false
	}

	rel, err := filepath.Rel(f.baseDir, path)
	if err != nil {
		rel = path
	}
	return f.matcher.MatchesPath(rel)
}
