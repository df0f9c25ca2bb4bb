package sync

// grouper.go folds ordered flat row sequences into grouped records.
//
// Grouping is strictly sequential over the input: the first row seen for a
// key establishes the identity snapshot, and group order in the output is
// first-appearance order. Within a group, each child dimension keeps a dedup
// set so repeated rows never produce duplicate child entries.

import "strconv"

// Tax tier labels. The CRM models product tax as a fixed two-slot rule set
// keyed by these evaluation expressions.
const (
	TaxEvalBelowThreshold = "Price < 2500"
	TaxEvalAboveThreshold = "Price >= 2500"
)

// taxRateRemap overrides specific formatted tax rates before they reach the
// CRM. A 12.00 rate is always recorded as 18.00 (rate revision that the
// source tables were never migrated to).
var taxRateRemap = map[string]string{
	"12.00": "18.00",
}

// ColorEntry is one deduplicated color variant of a product.
type ColorEntry struct {
	ColorCode string `json:"ColorCode"`
	ColorName string `json:"ColorName"`
}

// AttributeEntry is one deduplicated name/value attribute of a product.
type AttributeEntry struct {
	AttributeName  string `json:"AttributeName"`
	AttributeValue string `json:"AttributeValue"`
}

// TaxRule is one tax tier: a formatted percentage and the price expression
// that selects it.
type TaxRule struct {
	TaxPer         string `json:"TaxPer"`
	EvalExpression string `json:"EvalExpression"`
}

// ProductGroup is all rows for one item code folded into a single record.
type ProductGroup struct {
	Key        string
	Head       ProductRow // identity snapshot from the first row seen
	Colors     []ColorEntry
	Attributes []AttributeEntry
	TaxRules   []TaxRule

	colorKeys map[string]struct{}
	attrKeys  map[string]struct{}
	taxKeys   map[string]struct{}
}

// GroupProducts folds an ordered sequence of product rows into product
// groups, one per distinct item code, in first-appearance order. An empty
// input yields an empty (nil) result.
func GroupProducts(rows []ProductRow) []*ProductGroup {
	var groups []*ProductGroup
	index := make(map[string]*ProductGroup, len(rows))

	for _, row := range rows {
		g, ok := index[row.ItemCode]
		if !ok {
			g = &ProductGroup{
				Key:       row.ItemCode,
				Head:      row,
				colorKeys: make(map[string]struct{}),
				attrKeys:  make(map[string]struct{}),
				taxKeys:   make(map[string]struct{}),
			}
			index[row.ItemCode] = g
			groups = append(groups, g)
		}
		g.absorb(row)
	}

	return groups
}

// absorb merges one row's repeating-group fields into the group.
func (g *ProductGroup) absorb(row ProductRow) {
	if row.ColorCode != nil && *row.ColorCode != "" {
		if _, seen := g.colorKeys[*row.ColorCode]; !seen {
			g.colorKeys[*row.ColorCode] = struct{}{}
			g.Colors = append(g.Colors, ColorEntry{
				ColorCode: *row.ColorCode,
				ColorName: deref(row.ColorName),
			})
		}
	}

	if row.AttrName != nil && *row.AttrName != "" && row.AttrValue != nil && *row.AttrValue != "" {
		key := *row.AttrName + "\x00" + *row.AttrValue
		if _, seen := g.attrKeys[key]; !seen {
			g.attrKeys[key] = struct{}{}
			g.Attributes = append(g.Attributes, AttributeEntry{
				AttributeName:  *row.AttrName,
				AttributeValue: *row.AttrValue,
			})
		}
	}

	g.absorbTax(row.TaxBelow, TaxEvalBelowThreshold)
	g.absorbTax(row.TaxAbove, TaxEvalAboveThreshold)
}

// absorbTax records a tax tier for the given slot label, at most once per
// group. A nil rate contributes no entry at all, never a zero-value one.
func (g *ProductGroup) absorbTax(rate *float64, eval string) {
	if rate == nil {
		return
	}
	if _, seen := g.taxKeys[eval]; seen {
		return
	}
	g.taxKeys[eval] = struct{}{}
	g.TaxRules = append(g.TaxRules, TaxRule{
		TaxPer:         FormatTaxRate(*rate),
		EvalExpression: eval,
	})
}

// FormatTaxRate renders a tax percentage with two decimal places, applying
// the fixed rate remap table to the formatted value.
func FormatTaxRate(rate float64) string {
	s := strconv.FormatFloat(rate, 'f', 2, 64)
	if mapped, ok := taxRateRemap[s]; ok {
		return mapped
	}
	return s
}

// PriceTier is one deduplicated price entry within a price list, keyed by
// its category label.
type PriceTier struct {
	Category string   `json:"Category"`
	Rate     float64  `json:"Rate"`
	MRP      *float64 `json:"MRP,omitempty"`
}

// PriceListGroup is the sub-group for one price list within a price group.
// It owns its own header snapshot and tier collection.
type PriceListGroup struct {
	PriceListID   string
	PriceListName string
	Currency      string
	Tiers         []PriceTier

	tierKeys map[string]struct{}
}

// PriceGroup is all price rows for one item code, sub-grouped by price list
// in first-appearance order.
type PriceGroup struct {
	Key   string
	Head  PriceRow
	Lists []*PriceListGroup

	listIndex map[string]*PriceListGroup
}

// GroupPriceLists folds an ordered sequence of price rows into price groups
// keyed by item code, with a sub-group per price list id. Tier entries are
// deduped by category label within their price list.
func GroupPriceLists(rows []PriceRow) []*PriceGroup {
	var groups []*PriceGroup
	index := make(map[string]*PriceGroup, len(rows))

	for _, row := range rows {
		g, ok := index[row.ItemCode]
		if !ok {
			g = &PriceGroup{
				Key:       row.ItemCode,
				Head:      row,
				listIndex: make(map[string]*PriceListGroup),
			}
			index[row.ItemCode] = g
			groups = append(groups, g)
		}

		list, ok := g.listIndex[row.PriceListID]
		if !ok {
			list = &PriceListGroup{
				PriceListID:   row.PriceListID,
				PriceListName: row.PriceListName,
				Currency:      row.Currency,
				tierKeys:      make(map[string]struct{}),
			}
			g.listIndex[row.PriceListID] = list
			g.Lists = append(g.Lists, list)
		}

		if row.Category == nil || *row.Category == "" || row.Rate == nil {
			continue
		}
		if _, seen := list.tierKeys[*row.Category]; seen {
			continue
		}
		list.tierKeys[*row.Category] = struct{}{}
		list.Tiers = append(list.Tiers, PriceTier{
			Category: *row.Category,
			Rate:     *row.Rate,
			MRP:      row.MRP,
		})
	}

	return groups
}

// deref returns the pointed-to string, or "" for nil.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
