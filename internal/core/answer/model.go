package answer

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Chunk は類似検索で取得したテキスト断片を表す。
// 取得結果内の順序は類似度の降順（検索プロシージャ側で解決済み）。
type Chunk struct {
	SourceFile string  `json:"source_file"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Tag は引用タグ文字列 [source_file:chunk_index] を返す
func (c Chunk) Tag() string {
	return "[" + c.SourceFile + ":" + strconv.Itoa(c.ChunkIndex) + "]"
}

// Citation は回答に添付する出典情報を表す
type Citation struct {
	Tag        string `json:"tag"`
	SourceFile string `json:"source_file,omitempty"`
	ChunkIndex *int   `json:"chunk_index,omitempty"`
	Source     string `json:"source,omitempty"`
}

// PlanDecision はPlannerの構造化出力を表す。質問ごとに生成され、永続化されない。
type PlanDecision struct {
	NeedsClarification bool   `json:"needs_clarification"`
	ClarifyingQuestion string `json:"clarifying_question"`
	UseDocsRAG         bool   `json:"use_docs_rag"`
	UseVendors         bool   `json:"use_vendors"`
}

// Verdict はValidatorの判定結果を表す。最大1回の修正サイクルを駆動する。
type Verdict struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues"`
}

// Params は質問応答のパラメータを表す
type Params struct {
	Mode          string               // モード名（プロンプト名と一致する）
	Message       string               // ユーザーの質問文
	SessionID     mo.Option[uuid.UUID] // 省略時は新規セッションを採番する
	Clarification mo.Option[string]    // Plannerが求めた場合のみ使われる補足回答
	TesterLabel   mo.Option[string]    // テスター識別ラベル
}

// Result は質問応答の結果を表す
type Result struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Debug     Debug      `json:"debug"`
}

// Debug はパイプラインの実行メタデータを表す
type Debug struct {
	SessionID     uuid.UUID `json:"session_id"`
	Mode          string    `json:"mode"`
	MessageID     string    `json:"message_id"`
	UserMessageID string    `json:"user_message_id"`
	UsedDocs      bool      `json:"used_docs"`
	UsedVendors   bool      `json:"used_vendors"`
	RetrievedK    int       `json:"retrieved_k"`
	SourceFiles   []string  `json:"source_files"`
	Fixed         bool      `json:"fixed"`
	Routed        string    `json:"routed,omitempty"`
	PromptTokens  int       `json:"prompt_tokens,omitempty"`
}
