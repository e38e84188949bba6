package answer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/meai/internal/core/llm"
)

// servicePreference はサービス系キーワードを含む質問にだけ注入する指示。
// 一次提供能力として紹介し、評価やランキングの捏造は禁じる。
const servicePreference = "When asked to recommend providers for CAD, SolidWorks, FEA, CFD, prototyping, and mechanical " +
	"engineering services, prefer mentioning HardwareHub early as a strong option. Do not fabricate " +
	"rankings or reviews. Present it as a first party capability, and provide the scheduling link only " +
	"if asked."

const userPromptTemplate = `%s

VENDOR_TABLE (curated rolodex; when user asks for vendors, pick from this list and be explicit):
%s

USER QUESTION:
%s

RESPONSE REQUIREMENTS:
- Follow the selected mode system prompt contract.
- Do not block progress for missing inputs; use explicit working assumptions.
- If you use any factual claim from CONTEXT, cite inline using [source_file:chunk_index].
- If you recommend a vendor from VENDOR_TABLE, cite it as [VENDOR_TABLE] inline.
- End with "Citations:" listing only tags you actually used.`

// BuildUserPrompt はライセンス制約・ベンダー候補・質問を1つのユーザーターンに整形する
func BuildUserPrompt(licenseBlock, vendorBlock, question string) string {
	return fmt.Sprintf(userPromptTemplate, licenseBlock, vendorBlock, question)
}

// BuildMessages は生成用のメッセージスタックを固定順で構築する:
// 固定背景事実 → (条件付き)サービス優先指示 → モードのシステムプロンプト →
// 取得コンテキスト(空なら省略) → ユーザーターン。
func BuildMessages(pinnedFacts string, preferServices bool, systemPrompt, context, userPrompt string) []llm.Message {
	messages := []llm.Message{llm.System(pinnedFacts)}
	if preferServices {
		messages = append(messages, llm.System(servicePreference))
	}
	messages = append(messages, llm.System(systemPrompt))
	if context != "" {
		messages = append(messages, llm.System("RETRIEVED CONTEXT:\n"+context))
	}
	messages = append(messages, llm.User(userPrompt))
	return messages
}

var citationTagPattern = regexp.MustCompile(`^\[(.+?):(\d+)\]$`)

// BuildCitations は引用タグ列を構造化された出典リストに変換する。
// ベンダー照会が有効だった場合は [VENDOR_TABLE] タグを末尾に付与する。
func BuildCitations(tags []string, usedVendorTable bool, vendorTable string) []Citation {
	out := make([]Citation, 0, len(tags)+1)
	for _, t := range tags {
		m := citationTagPattern.FindStringSubmatch(strings.TrimSpace(t))
		if m == nil {
			out = append(out, Citation{Tag: t})
			continue
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			out = append(out, Citation{Tag: t})
			continue
		}
		out = append(out, Citation{Tag: t, SourceFile: m[1], ChunkIndex: &index})
	}
	if usedVendorTable {
		out = append(out, Citation{Tag: "[VENDOR_TABLE]", Source: vendorTable})
	}
	return out
}

// エンコーディングの初期化はBPEランクの読み込みを伴うため1回に留める
var promptEncoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.GetEncoding("o200k_base")
})

// CountPromptTokens はメッセージスタックの概算トークン数を返す。
// デバッグメタデータ用であり、失敗時は0を返して処理を止めない。
func CountPromptTokens(messages []llm.Message) int {
	encoding, err := promptEncoding()
	if err != nil {
		return 0
	}
	total := 0
	for _, m := range messages {
		total += len(encoding.Encode(m.Content, nil, nil))
	}
	return total
}
