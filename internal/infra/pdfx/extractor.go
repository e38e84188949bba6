// Package pdfx はPDFファイルからのテキスト抽出を提供する。
package pdfx

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/jinford/meai/internal/core/ingestion"
)

// Extractor は ingestion.Extractor のPDF実装
type Extractor struct{}

// NewExtractor は新しい Extractor を返す
func NewExtractor() *Extractor {
	return &Extractor{}
}

var _ ingestion.Extractor = (*Extractor)(nil)

// ExtractPages はPDFの各ページのプレーンテキストを返す。
// テキストを持たないページ（画像のみ等）は空文字列になる。
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// 壊れたページは空として扱い、残りの抽出を続ける
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
