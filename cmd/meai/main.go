package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	appcli "github.com/jinford/meai/internal/app/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	app := &cli.Command{
		Name:  "meai",
		Usage: "機械設計ドキュメント向け 検索拡張QAアシスタント",
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "質問応答を実行",
				ArgsUsage: "<質問文>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "回答モード (mode_1/mode_2、省略時は選択プロンプト)",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "セッションID（省略時は新規採番）",
					},
					&cli.StringFlag{
						Name:  "tester",
						Usage: "テスター識別ラベル",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "実行メタデータを表示",
					},
				},
				Action: appcli.AskAction,
			},
			{
				Name:  "ingest",
				Usage: "ライブラリディレクトリのPDFを取り込み",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "取り込み対象ディレクトリ（省略時は設定値）",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "取り込み後もディレクトリを監視して新規PDFを処理",
					},
				},
				Action: appcli.IngestAction,
			},
			{
				Name:  "serve",
				Usage: "REST APIサーバを起動",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "リッスンアドレス（省略時は設定値）",
					},
				},
				Action: appcli.ServeAction,
			},
			{
				Name:  "notes",
				Usage: "セッションのエンジニアリングノートを生成",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "session",
						Usage:    "セッションID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "出力ファイルパス（省略時は標準出力）",
					},
				},
				Action: appcli.NotesAction,
			},
			{
				Name:  "vendor",
				Usage: "ベンダー台帳管理コマンド",
				Commands: []*cli.Command{
					{
						Name:  "list",
						Usage: "ベンダーを検索して表示",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "env",
								Usage: "環境変数ファイルパス",
								Value: ".env",
							},
							&cli.StringFlag{
								Name:  "query",
								Usage: "検索ヒント（業種キーワードや能力フレーズ）",
							},
							&cli.IntFlag{
								Name:  "limit",
								Usage: "表示件数",
								Value: 20,
							},
						},
						Action: appcli.VendorListAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
