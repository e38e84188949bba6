package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// NotesAction はセッションのエンジニアリングノートを生成するコマンドのアクション
func NotesAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	output := cmd.String("output")

	sid, err := uuid.Parse(cmd.String("session"))
	if err != nil {
		return fmt.Errorf("--session はUUIDで指定してください: %w", err)
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	notes, err := appCtx.Container.NotesService.BuildNotes(ctx, sid)
	if err != nil {
		return fmt.Errorf("ノート生成に失敗: %w", err)
	}

	if output == "" {
		fmt.Print(notes)
		return nil
	}

	if err := os.WriteFile(output, []byte(notes), 0o644); err != nil {
		return fmt.Errorf("ノートの書き込みに失敗: %w", err)
	}
	fmt.Printf("ノートを書き出しました: %s\n", output)
	return nil
}
