// Package llm はLLMサービスとのやり取りに使う共通の型を定義する。
package llm

import "context"

// Role はチャットメッセージのロール
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message はLLMに送信するチャットメッセージ
type Message struct {
	Role    Role
	Content string
}

// System はsystemロールのメッセージを作成する
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User はuserロールのメッセージを作成する
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Client はLLM通信インターフェース
type Client interface {
	// Complete はメッセージスタックに基づいて応答テキストを生成する。
	// ストリーミングは行わず、常に完全な応答を待つ。
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// Embedder はテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed はバッチでEmbeddingを生成する
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
}
