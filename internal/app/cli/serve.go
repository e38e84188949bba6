package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	meaihttp "github.com/jinford/meai/internal/interface/http"
)

// ServeAction はREST APIサーバを起動するコマンドのアクション
func ServeAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	addr := cmd.String("addr")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if addr == "" {
		addr = appCtx.Config.HTTP.Addr
	}

	server := meaihttp.NewServer(appCtx.Container, meaihttp.WithLogger(appCtx.Logger()))
	return server.Run(ctx, addr)
}
