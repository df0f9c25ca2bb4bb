// Package source implements the relational row source on PostgreSQL.
//
// Queries return the denormalized result sets the sync core consumes:
// identity columns repeated per row, repeating-group columns from LEFT
// JOINs, NULL where a joined table had no match. Ordering is stable by item
// code so the grouper's first-seen semantics are deterministic.
package source

import (
	"context"
	"fmt"
	"time"

	"crmsync/internal/sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// productRowsQuery pages product rows changed since the watermark. The
// ORDER BY must stay stable across pages: pagination walks offset/limit
// over a single logical ordering.
const productRowsQuery = `
SELECT i.item_code,
       i.item_name,
       i.division,
       i.department,
       i.item_group,
       i.base_unit,
       COALESCE(i.hsn_code, ''),
       COALESCE(i.attribute_set, ''),
       c.color_code,
       c.color_name,
       a.attr_name,
       a.attr_value,
       t.tax_below,
       t.tax_above
FROM items i
LEFT JOIN item_colors c ON c.item_code = i.item_code
LEFT JOIN item_attributes a ON a.item_code = i.item_code
LEFT JOIN item_tax t ON t.item_code = i.item_code
WHERE i.updated_at > $1
ORDER BY i.item_code, c.color_code, a.attr_name, a.attr_value
LIMIT $2 OFFSET $3`

const priceRowsQuery = `
SELECT i.item_code,
       i.item_name,
       pl.price_list_id,
       pl.price_list_name,
       pl.currency,
       p.category,
       p.rate,
       p.mrp
FROM items i
JOIN item_prices p ON p.item_code = i.item_code
JOIN price_lists pl ON pl.price_list_id = p.price_list_id
ORDER BY i.item_code, pl.price_list_id, p.category`

const imageRowsQuery = `
SELECT item_code,
       image_url,
       position,
       is_default,
       updated_at
FROM item_images
ORDER BY item_code, position`

// Store reads flat rows from the product database.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ProductRows returns one page of product rows changed after since. An
// empty page signals the end of pagination.
func (s *Store) ProductRows(ctx context.Context, since time.Time, offset, limit int) ([]sync.ProductRow, error) {
	rows, err := s.pool.Query(ctx, productRowsQuery, since, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query product rows: %w", err)
	}
	defer rows.Close()

	var out []sync.ProductRow
	for rows.Next() {
		var r sync.ProductRow
		if err := rows.Scan(
			&r.ItemCode, &r.ItemName, &r.Division, &r.Department,
			&r.ItemGroup, &r.BaseUnit, &r.HSNCode, &r.AttributeSet,
			&r.ColorCode, &r.ColorName,
			&r.AttrName, &r.AttrValue,
			&r.TaxBelow, &r.TaxAbove,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read product rows: %w", err)
	}
	return out, nil
}

// PriceRows returns all price-list rows. The price domain is small enough
// that the source is read in one sweep.
func (s *Store) PriceRows(ctx context.Context) ([]sync.PriceRow, error) {
	rows, err := s.pool.Query(ctx, priceRowsQuery)
	if err != nil {
		return nil, fmt.Errorf("query price rows: %w", err)
	}
	defer rows.Close()

	var out []sync.PriceRow
	for rows.Next() {
		var r sync.PriceRow
		if err := rows.Scan(
			&r.ItemCode, &r.ItemName,
			&r.PriceListID, &r.PriceListName, &r.Currency,
			&r.Category, &r.Rate, &r.MRP,
		); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read price rows: %w", err)
	}
	return out, nil
}

// ImageRows returns all image rows, unique per (item, position) by schema
// constraint.
func (s *Store) ImageRows(ctx context.Context) ([]sync.ImageRow, error) {
	rows, err := s.pool.Query(ctx, imageRowsQuery)
	if err != nil {
		return nil, fmt.Errorf("query image rows: %w", err)
	}
	defer rows.Close()

	var out []sync.ImageRow
	for rows.Next() {
		var r sync.ImageRow
		if err := rows.Scan(&r.ItemCode, &r.ImageURL, &r.Position, &r.IsDefault, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read image rows: %w", err)
	}
	return out, nil
}
