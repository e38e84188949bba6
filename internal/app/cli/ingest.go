package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/meai/internal/infra/watch"
)

// IngestAction はライブラリディレクトリのPDFを取り込むコマンドのアクション
func IngestAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	dir := cmd.String("dir")
	watchMode := cmd.Bool("watch")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if dir == "" {
		dir = appCtx.Config.LibraryDir
	}

	pipeline := appCtx.Container.Pipeline

	if err := pipeline.IngestDir(ctx, dir); err != nil {
		return fmt.Errorf("取り込みに失敗: %w", err)
	}

	if !watchMode {
		return nil
	}

	// 初回取り込み後はディレクトリを監視し、新規PDFを逐次取り込む
	watcher := watch.NewWatcher(watch.WithLogger(appCtx.Logger()))
	err = watcher.Watch(ctx, dir, func(ctx context.Context, path string) error {
		return pipeline.IngestFile(ctx, dir, path)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("監視に失敗: %w", err)
	}
	return nil
}
