package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/meai/internal/core/vendor"
)

// VendorListAction はベンダー台帳を検索して表示するコマンドのアクション
func VendorListAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	query := cmd.String("query")
	limit := cmd.Int("limit")

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	filter := vendor.SearchFilter{Limit: int(limit)}
	if query != "" {
		hints := vendor.ParseHints(query)
		filter.Industries = hints.Industries
		filter.Capability = hints.Capability
	}

	vendors, err := appCtx.Container.VendorStore.Search(ctx, filter)
	if err != nil {
		return fmt.Errorf("ベンダー検索に失敗: %w", err)
	}

	if len(vendors) == 0 {
		fmt.Println("該当するベンダーはありません")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Category", "Industries", "Location", "Website")
	for _, v := range vendors {
		table.Append(v.Name, v.Category, v.Industries, v.Location, v.Website)
	}
	table.Render()

	return nil
}
