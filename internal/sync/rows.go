package sync

import "time"

// rows.go defines the flat row shapes produced by the SQL row source.
//
// Each row is one record of a denormalized result set: identity and
// descriptive fields repeat on every row for the same item, while the
// repeating-group fields (color, attribute, tax tier, price tier) vary
// row to row and are nil when the joined table had no match. The grouper
// folds these rows back into nested records.

// ProductRow is a single denormalized product record.
//
// ItemCode is the grouping key. ColorCode/ColorName, AttrName/AttrValue and
// the two tax rates are repeating-group fields; a nil value means the row
// contributes nothing for that dimension.
type ProductRow struct {
	ItemCode     string
	ItemName     string
	Division     string
	Department   string
	ItemGroup    string
	BaseUnit     string
	HSNCode      string
	AttributeSet string

	ColorCode *string
	ColorName *string

	AttrName  *string
	AttrValue *string

	// Tax rates in percent. TaxBelow applies under the price threshold,
	// TaxAbove at or over it.
	TaxBelow *float64
	TaxAbove *float64
}

// PriceRow is a single denormalized price-list record. Grouping is
// two-level: ItemCode owns the group, PriceListID owns a sub-group with its
// own header snapshot and its own tier collection deduped by Category.
type PriceRow struct {
	ItemCode      string
	ItemName      string
	PriceListID   string
	PriceListName string
	Currency      string

	Category *string
	Rate     *float64
	MRP      *float64
}

// ImageRow is a single product image record. Image rows are already unique
// per (item, position) at the source and are projected one to one into
// documents without grouping.
type ImageRow struct {
	ItemCode  string
	ImageURL  string
	Position  int
	IsDefault bool
	UpdatedAt time.Time
}
