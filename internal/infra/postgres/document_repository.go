package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/meai/internal/core/license"
)

// DocumentRepository は文書カタログとライセンスポリシーの読み取りを実装する
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository は新しい DocumentRepository を返す
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

var (
	_ license.DocumentStore = (*DocumentRepository)(nil)
	_ license.PolicyStore   = (*DocumentRepository)(nil)
)

// FindBySourceIDs は source_url が一致する文書レコードを返す
func (r *DocumentRepository) FindBySourceIDs(ctx context.Context, sourceIDs []string) ([]license.Document, error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT source_url, COALESCE(title, ''), COALESCE(license_key, '')
		 FROM documents
		 WHERE source_url = ANY($1)`,
		sourceIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []license.Document
	for rows.Next() {
		var d license.Document
		if err := rows.Scan(&d.SourceURL, &d.Title, &d.LicenseKey); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read document rows: %w", err)
	}
	return docs, nil
}

// FindByKeys は license_key が一致するポリシーを返す
func (r *DocumentRepository) FindByKeys(ctx context.Context, keys []string) ([]license.Policy, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT license_key, commercial_use_allowed, derivatives_allowed,
		        share_alike_required, verbatim_allowed, verbatim_char_limit,
		        citation_required, attribution_required
		 FROM licenses
		 WHERE license_key = ANY($1)`,
		keys,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query licenses: %w", err)
	}
	defer rows.Close()

	var policies []license.Policy
	for rows.Next() {
		var p license.Policy
		if err := rows.Scan(
			&p.LicenseKey, &p.CommercialUseAllowed, &p.DerivativesAllowed,
			&p.ShareAlikeRequired, &p.VerbatimAllowed, &p.VerbatimCharLimit,
			&p.CitationRequired, &p.AttributionRequired,
		); err != nil {
			return nil, fmt.Errorf("failed to scan license row: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read license rows: %w", err)
	}
	return policies, nil
}
