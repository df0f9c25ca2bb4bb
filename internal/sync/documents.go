package sync

// documents.go builds the nested CRM upsert documents from grouped records.
//
// Constant business fields (sort rank, visibility, pre-booking) come from
// the defaults below and are never sourced from row data. String fields
// with fallbacks go through productFieldMap so the mapping stays auditable
// in one place.

// PlaceholderAttributeName is the generic attribute name synthesized for
// products whose grouping produced no real attributes. The CRM rejects
// products with an empty attribute array.
const PlaceholderAttributeName = "Generic"

// Constant defaults for business fields the CRM requires but the source
// does not carry.
const (
	defaultSortOrder       = 1
	defaultIsActive        = true
	defaultShowOnline      = true
	defaultAllowPreBooking = false
)

// ProductDocument is the nested product shape accepted by the CRM bulk
// upsert endpoint.
type ProductDocument struct {
	ItemCode         string `json:"ItemCode"`
	ItemName         string `json:"ItemName"`
	SKU              string `json:"SKU"`
	Tag              string `json:"Tag"`
	Division         string `json:"Division"`
	Department       string `json:"Department"`
	ItemGroup        string `json:"ItemGroup"`
	BaseUnit         string `json:"BaseUnit"`
	HSNCode          string `json:"HSNCode"`
	AttributeSetName string `json:"AttributeSetName"`

	SortOrder       int  `json:"SortOrder"`
	IsActive        bool `json:"IsActive"`
	ShowOnline      bool `json:"ShowOnline"`
	AllowPreBooking bool `json:"AllowPreBooking"`

	Colors     []ColorEntry     `json:"Colors"`
	Attributes []AttributeEntry `json:"Attributes"`
	TaxRules   []TaxRule        `json:"TaxRules"`
}

// productField maps one snapshot string field into the document with a
// fallback used when the source value is empty.
type productField struct {
	name     string
	get      func(ProductRow) string
	set      func(*ProductDocument, string)
	fallback string
}

// productFieldMap is the declarative snapshot-to-document mapping for
// string fields. Order matches the document layout.
var productFieldMap = []productField{
	{"ItemName", func(r ProductRow) string { return r.ItemName },
		func(d *ProductDocument, v string) { d.ItemName = v }, ""},
	{"Division", func(r ProductRow) string { return r.Division },
		func(d *ProductDocument, v string) { d.Division = v }, "General"},
	{"Department", func(r ProductRow) string { return r.Department },
		func(d *ProductDocument, v string) { d.Department = v }, "General"},
	{"ItemGroup", func(r ProductRow) string { return r.ItemGroup },
		func(d *ProductDocument, v string) { d.ItemGroup = v }, "General"},
	{"BaseUnit", func(r ProductRow) string { return r.BaseUnit },
		func(d *ProductDocument, v string) { d.BaseUnit = v }, "PCS"},
	{"HSNCode", func(r ProductRow) string { return r.HSNCode },
		func(d *ProductDocument, v string) { d.HSNCode = v }, ""},
	{"AttributeSetName", func(r ProductRow) string { return r.AttributeSet },
		func(d *ProductDocument, v string) { d.AttributeSetName = v }, "Default Set"},
}

// BuildProductDocuments converts product groups into CRM documents, in
// group order. It runs after grouping is fully complete: the placeholder
// attribute rule must see the final deduplicated attribute state, not a
// per-row view.
func BuildProductDocuments(groups []*ProductGroup) []ProductDocument {
	docs := make([]ProductDocument, 0, len(groups))
	for _, g := range groups {
		docs = append(docs, buildProductDocument(g))
	}

	// Safety pass over the finished batch: the CRM rejects products with
	// no attributes, so synthesize exactly one placeholder where needed.
	for i := range docs {
		if len(docs[i].Attributes) == 0 {
			docs[i].Attributes = []AttributeEntry{{
				AttributeName:  PlaceholderAttributeName,
				AttributeValue: docs[i].AttributeSetName,
			}}
		}
	}

	return docs
}

func buildProductDocument(g *ProductGroup) ProductDocument {
	doc := ProductDocument{
		ItemCode:        g.Key,
		SortOrder:       defaultSortOrder,
		IsActive:        defaultIsActive,
		ShowOnline:      defaultShowOnline,
		AllowPreBooking: defaultAllowPreBooking,
		Colors:          g.Colors,
		Attributes:      g.Attributes,
		TaxRules:        g.TaxRules,
	}

	for _, f := range productFieldMap {
		v := f.get(g.Head)
		if v == "" {
			v = f.fallback
		}
		f.set(&doc, v)
	}

	// SKU and tag derive from identity, they are not independent columns.
	doc.SKU = g.Key
	doc.Tag = doc.ItemName

	return doc
}

// PriceListHeader is one price list inside a price document, carrying its
// own nested tier array.
type PriceListHeader struct {
	PriceListID   string      `json:"PriceListID"`
	PriceListName string      `json:"PriceListName"`
	Currency      string      `json:"Currency"`
	Rates         []PriceTier `json:"Rates"`
}

// PriceDocument is the per-item price-list shape accepted by the CRM.
type PriceDocument struct {
	ItemCode   string            `json:"ItemCode"`
	ItemName   string            `json:"ItemName"`
	PriceLists []PriceListHeader `json:"PriceLists"`
}

// BuildPriceDocuments flattens each price group's sub-grouped lists into an
// array of headers. No merging happens across groups.
func BuildPriceDocuments(groups []*PriceGroup) []PriceDocument {
	docs := make([]PriceDocument, 0, len(groups))
	for _, g := range groups {
		doc := PriceDocument{
			ItemCode:   g.Key,
			ItemName:   g.Head.ItemName,
			PriceLists: make([]PriceListHeader, 0, len(g.Lists)),
		}
		for _, list := range g.Lists {
			doc.PriceLists = append(doc.PriceLists, PriceListHeader{
				PriceListID:   list.PriceListID,
				PriceListName: list.PriceListName,
				Currency:      list.Currency,
				Rates:         list.Tiers,
			})
		}
		docs = append(docs, doc)
	}
	return docs
}

// ImageDocument is the per-image shape accepted by the CRM.
type ImageDocument struct {
	ItemCode  string `json:"ItemCode"`
	ImageURL  string `json:"ImageURL"`
	Position  int    `json:"Position"`
	IsDefault bool   `json:"IsDefault"`
}

// BuildImageDocuments projects image rows one to one into documents. The
// source guarantees uniqueness per (item, position), so no deduplication
// happens here.
func BuildImageDocuments(rows []ImageRow) []ImageDocument {
	docs := make([]ImageDocument, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, ImageDocument{
			ItemCode:  row.ItemCode,
			ImageURL:  row.ImageURL,
			Position:  row.Position,
			IsDefault: row.IsDefault,
		})
	}
	return docs
}
