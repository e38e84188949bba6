// Package license は引用元文書のライセンス制約を解決し、
// 生成プロンプトに注入する指示ブロックを構築する。
// ブロックはモデルへのハード制約であり、生成テキストへの機械的な強制は行わない。
package license

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// フィールド欠落時のデフォルト。未知のライセンスは常にstrict側に倒す。
const (
	defaultCommercialUseAllowed = true
	defaultDerivativesAllowed   = true
	defaultShareAlikeRequired   = false
	defaultVerbatimAllowed      = false
	defaultCitationRequired     = true
	defaultAttributionRequired  = false
)

const blockHeader = "LICENSE CONSTRAINTS (must follow):"

// boolOr はNULL許容のポリシーフィールドをデフォルト値で解決する
func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Resolver は引用元ごとのライセンス指示行を構築する
type Resolver struct {
	documents DocumentStore
	policies  PolicyStore
	logger    *slog.Logger
}

// ResolverOption は Resolver 構築時のオプション
type ResolverOption func(*Resolver)

// WithResolverLogger はロガーを差し替える
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver は新しい Resolver を作成する
func NewResolver(documents DocumentStore, policies PolicyStore, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		documents: documents,
		policies:  policies,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Directives は引用元リストに対するライセンス制約ブロックを入力順で構築する。
// ストア障害は空リストに倒し、ライセンス不明のstrict指示として劣化させる（fail-closed）。
// チャンクの source_file と文書の source_url の命名が食い違う場合も同じ経路で
// 安全側に落ちる。ヒューリスティックな突合の補正は行わない。
func (r *Resolver) Directives(ctx context.Context, sourceFiles []string) string {
	if len(sourceFiles) == 0 {
		return blockHeader + "\n- No retrieved documents."
	}

	docBySource := r.fetchDocuments(ctx, sourceFiles)

	var licenseKeys []string
	for _, sf := range sourceFiles {
		if d, ok := docBySource[sf]; ok && d.LicenseKey != "" {
			licenseKeys = append(licenseKeys, d.LicenseKey)
		}
	}

	policyByKey := r.fetchPolicies(ctx, licenseKeys)

	lines := []string{blockHeader}
	for _, sf := range sourceFiles {
		d, ok := docBySource[sf]
		if !ok {
			lines = append(lines, fmt.Sprintf("- %s: no document record found. Treat as strict: summarize only, cite if used.", sf))
			continue
		}

		title := d.Title
		if title == "" {
			title = sf
		}
		lines = append(lines, fmt.Sprintf("- %s | title: %s", sf, title))

		policy, ok := policyByKey[d.LicenseKey]
		if d.LicenseKey == "" || !ok {
			lines = append(lines, "  license: unknown. Treat as strict: summarize only, do not quote, cite if used.")
			continue
		}

		lines = append(lines, fmt.Sprintf("  license_key: %s", d.LicenseKey))
		lines = append(lines, fmt.Sprintf("  commercial_use_allowed: %t", boolOr(policy.CommercialUseAllowed, defaultCommercialUseAllowed)))
		lines = append(lines, fmt.Sprintf("  derivatives_allowed: %t", boolOr(policy.DerivativesAllowed, defaultDerivativesAllowed)))
		lines = append(lines, fmt.Sprintf("  sharealike_required: %t", boolOr(policy.ShareAlikeRequired, defaultShareAlikeRequired)))
		lines = append(lines, fmt.Sprintf("  verbatim_allowed: %t", boolOr(policy.VerbatimAllowed, defaultVerbatimAllowed)))
		if policy.VerbatimCharLimit != nil {
			lines = append(lines, fmt.Sprintf("  verbatim_char_limit: %d", *policy.VerbatimCharLimit))
		}
		lines = append(lines, fmt.Sprintf("  citation_required: %t", boolOr(policy.CitationRequired, defaultCitationRequired)))
		lines = append(lines, fmt.Sprintf("  attribution_required: %t", boolOr(policy.AttributionRequired, defaultAttributionRequired)))
	}

	return strings.Join(lines, "\n")
}

func (r *Resolver) fetchDocuments(ctx context.Context, sourceFiles []string) map[string]Document {
	docs, err := r.documents.FindBySourceIDs(ctx, sourceFiles)
	if err != nil {
		r.logger.Warn("document lookup failed, degrading to strict licensing", "error", err)
		return nil
	}
	bySource := make(map[string]Document, len(docs))
	for _, d := range docs {
		if d.SourceURL == "" {
			continue
		}
		bySource[d.SourceURL] = d
	}
	return bySource
}

func (r *Resolver) fetchPolicies(ctx context.Context, keys []string) map[string]Policy {
	if len(keys) == 0 {
		return nil
	}
	policies, err := r.policies.FindByKeys(ctx, dedupe(keys))
	if err != nil {
		r.logger.Warn("license lookup failed, degrading to strict licensing", "error", err)
		return nil
	}
	byKey := make(map[string]Policy, len(policies))
	for _, p := range policies {
		if p.LicenseKey == "" {
			continue
		}
		byKey[p.LicenseKey] = p
	}
	return byKey
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
