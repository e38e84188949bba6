package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/mo"
	"github.com/urfave/cli/v3"

	"github.com/jinford/meai/internal/core/answer"
)

// askModes は選択肢の表示名とプロンプト名の対応
var askModes = []struct {
	label string
	name  string
}{
	{label: "1: Guidance (mode_1)", name: "mode_1"},
	{label: "2: Verification (mode_2)", name: "mode_2"},
}

// AskAction は質問応答コマンドのアクション
func AskAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	sessionFlag := cmd.String("session")
	testerLabel := cmd.String("tester")
	showDebug := cmd.Bool("debug")

	question := cmd.Args().First()
	if question == "" {
		return fmt.Errorf("質問文を指定してください")
	}

	mode := cmd.String("mode")
	if mode == "" {
		selected, err := selectMode()
		if err != nil {
			return err
		}
		mode = selected
	}

	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	params := answer.Params{
		Mode:    mode,
		Message: question,
	}
	if sessionFlag != "" {
		sid, err := uuid.Parse(sessionFlag)
		if err != nil {
			return fmt.Errorf("--session はUUIDで指定してください: %w", err)
		}
		params.SessionID = mo.Some(sid)
	}
	if testerLabel != "" {
		params.TesterLabel = mo.Some(testerLabel)
	}

	result, err := appCtx.Container.AnswerService.Answer(ctx, params)
	if err != nil {
		return fmt.Errorf("質問応答に失敗: %w", err)
	}

	// Plannerが補足を求めた場合は1回だけ聞き直して再実行する
	if clarified, clar := maybeClarify(result.Answer); clarified {
		params.SessionID = mo.Some(result.Debug.SessionID)
		params.Clarification = mo.Some(clar)
		result, err = appCtx.Container.AnswerService.Answer(ctx, params)
		if err != nil {
			return fmt.Errorf("質問応答に失敗: %w", err)
		}
	}

	fmt.Println(result.Answer)

	if len(result.Citations) > 0 {
		fmt.Println()
		renderCitationsTable(result.Citations)
	}

	if showDebug {
		fmt.Printf("\nsession_id: %s\nused_docs: %t\nused_vendors: %t\nfixed: %t\n",
			result.Debug.SessionID, result.Debug.UsedDocs, result.Debug.UsedVendors, result.Debug.Fixed)
	}

	return nil
}

// selectMode は回答モードをインタラクティブに選択させる
func selectMode() (string, error) {
	items := make([]string, 0, len(askModes))
	for _, m := range askModes {
		items = append(items, m.label)
	}

	prompt := promptui.Select{
		Label: "回答モードを選択",
		Items: items,
	}
	index, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return askModes[index].name, nil
}

// maybeClarify は回答が補足質問に見える場合に追加入力を受け付ける
func maybeClarify(answerText string) (bool, string) {
	if len(answerText) == 0 || answerText[len(answerText)-1] != '?' {
		return false, ""
	}

	prompt := promptui.Prompt{
		Label:   "補足 (空Enterでスキップ)",
		Default: "",
	}
	clar, err := prompt.Run()
	if err != nil || clar == "" {
		return false, ""
	}
	return true, clar
}

// renderCitationsTable は出典をテーブル形式で表示する
func renderCitationsTable(citations []answer.Citation) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Tag", "Source File", "Chunk")

	for _, c := range citations {
		chunk := ""
		if c.ChunkIndex != nil {
			chunk = fmt.Sprintf("%d", *c.ChunkIndex)
		}
		source := c.SourceFile
		if source == "" {
			source = c.Source
		}
		table.Append(c.Tag, source, chunk)
	}

	table.Render()
}
