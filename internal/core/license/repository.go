package license

import "context"

// DocumentStore は文書カタログの読み取りインターフェース
type DocumentStore interface {
	// FindBySourceIDs は source_url が一致する文書レコードを返す
	FindBySourceIDs(ctx context.Context, sourceIDs []string) ([]Document, error)
}

// PolicyStore はライセンスポリシーの読み取りインターフェース
type PolicyStore interface {
	// FindByKeys は license_key が一致するポリシーを返す
	FindByKeys(ctx context.Context, keys []string) ([]Policy, error)
}
