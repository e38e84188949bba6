package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/meai/internal/core/vendor"
)

// VendorRepository はベンダー台帳の曖昧検索を実装する。
// テーブル名はデプロイごとに差し替え可能（既定は vendors_core）。
type VendorRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewVendorRepository は新しい VendorRepository を返す
func NewVendorRepository(pool *pgxpool.Pool, table string) *VendorRepository {
	if table == "" {
		table = "vendors_core"
	}
	return &VendorRepository{pool: pool, table: table}
}

var _ vendor.Store = (*VendorRepository)(nil)

// Search は業種のAND部分一致と能力フレーズのOR部分一致でベンダーを返す
func (r *VendorRepository) Search(ctx context.Context, filter vendor.SearchFilter) ([]vendor.Vendor, error) {
	var conds []string
	var args []any

	for _, industry := range filter.Industries {
		args = append(args, "%"+industry+"%")
		conds = append(conds, fmt.Sprintf("industries ILIKE $%d", len(args)))
	}

	if capability := strings.TrimSpace(filter.Capability); capability != "" {
		args = append(args, "%"+capability+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(category ILIKE $%d OR description ILIKE $%d OR capabilities ILIKE $%d OR notes ILIKE $%d)",
			n, n, n, n,
		))
	}

	query := fmt.Sprintf(
		`SELECT COALESCE(name, ''), COALESCE(category, ''), COALESCE(description, ''),
		        COALESCE(industries, ''), COALESCE(website, ''), COALESCE(location, ''),
		        COALESCE(capabilities, ''), COALESCE(notes, ''),
		        COALESCE(contact_name, ''), COALESCE(email, ''), COALESCE(phone, '')
		 FROM %s`, r.table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name"

	limit := filter.Limit
	if limit <= 0 {
		limit = vendor.MaxResults
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []vendor.Vendor
	for rows.Next() {
		var v vendor.Vendor
		if err := rows.Scan(
			&v.Name, &v.Category, &v.Description, &v.Industries, &v.Website,
			&v.Location, &v.Capabilities, &v.Notes, &v.ContactName, &v.Email, &v.Phone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor row: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vendor rows: %w", err)
	}
	return vendors, nil
}
