// Package prompt はプロンプトテンプレートのファイルベース読み込みを提供する。
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinford/meai/internal/core/answer"
)

// Store はディレクトリ配下の <name>.txt をテンプレートとして読み込む
type Store struct {
	dir string
}

// NewStore は新しい Store を返す
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

var _ answer.PromptStore = (*Store)(nil)

// Load は名前でテンプレート本文を取得する。
// ファイルが存在しない場合は answer.ErrPromptNotFound を返す。
func (s *Store) Load(name string) (string, error) {
	path := filepath.Join(s.dir, name+".txt")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", answer.ErrPromptNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %s: %w", name, err)
	}

	return strings.TrimSpace(string(data)), nil
}
