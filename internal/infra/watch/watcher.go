// Package watch はライブラリディレクトリの監視を提供する。
// 新しく置かれたPDFを検出して取り込みパイプラインに渡す。
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay は書き込み途中のファイルを拾わないための待機時間
const settleDelay = 2 * time.Second

// Handler は検出したPDFを処理するコールバック
type Handler func(ctx context.Context, path string) error

// Watcher はディレクトリを監視して新規PDFを通知する
type Watcher struct {
	logger *slog.Logger
}

// Option は Watcher 構築時のオプション
type Option func(*Watcher)

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher は新しい Watcher を返す
func NewWatcher(opts ...Option) *Watcher {
	w := &Watcher{logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch はディレクトリを監視し、作成・移動されたPDFごとに handler を呼ぶ。
// コンテキストのキャンセルで停止する。ハンドラのエラーはログに残して監視を続ける。
func (w *Watcher) Watch(ctx context.Context, dir string, handler Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("watching for new PDFs", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}

			w.logger.Info("new PDF detected", "path", event.Name)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(settleDelay):
			}

			if err := handler(ctx, event.Name); err != nil {
				w.logger.Error("failed to process PDF", "path", event.Name, "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
