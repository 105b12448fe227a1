package core

import (
	"context"
	"encoding/json"

	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// Remote is the automation backend as seen by the domain. *webhook.Client
// implements it.
type Remote interface {
	FetchOrders(ctx context.Context, code string) (map[string][]webhook.ProductRecord, error)
	FetchDetails(ctx context.Context, asins []string) (map[string]webhook.DetailRecord, error)
	SaveDetails(ctx context.Context, asin string, details webhook.DetailRecord) error
	SetReady(ctx context.Context, req webhook.ReadyRequest) error
	UpdateASIN(ctx context.Context, req webhook.ASINUpdateRequest) error
	GenerateTitle(ctx context.Context, req webhook.TitleRequest) (string, error)
	Translate(ctx context.Context, asin, language string) error
	Competition(ctx context.Context, asin string) (map[string]any, error)
	FetchFinancial(ctx context.Context) (json.RawMessage, error)
	Upload(ctx context.Context, zip, pdf webhook.File) error
}

var _ Remote = (*webhook.Client)(nil)

// Order is a customer order ("comanda") with its received products.
type Order struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Product is one received product line of an order.
//
// Found is derived from the condition buckets on every sync and always
// equals BNCondition+VGCondition+GCondition+Broken.
type Product struct {
	ID                        string `json:"id"`
	UniqueID                  string `json:"uniqueId"`
	ASIN                      string `json:"asin"`
	ProductSKU                string `json:"productsku"`
	Title                     string `json:"title"`
	Expected                  int    `json:"expected"`
	Found                     int    `json:"found"`
	ManifestSKU               string `json:"manifestsku"`
	ListingReady              bool   `json:"listingReady"`
	BNCondition               int    `json:"bncondition"`
	VGCondition               int    `json:"vgcondition"`
	GCondition                int    `json:"gcondition"`
	Broken                    int    `json:"broken"`
	StockCode                 string `json:"stockcode"`
	UnitWeight                string `json:"unitweight"`
	EstimatedSaleValueWithVAT string `json:"estimatedsalevaluewithvat"`

	// VerificationReady is nil when the backend did not send the field.
	VerificationReady *bool `json:"verificationready,omitempty"`
}

// UniqueKey builds the navigation and caching identity of a product.
func UniqueKey(productSKU, manifestSKU string) string {
	return productSKU + "|" + manifestSKU
}

// Totals sums expected, found and listing-ready counts over products.
type Totals struct {
	Products int
	Expected int
	Found    int
	Ready    int
}

func totalsOf(products []Product) Totals {
	t := Totals{Products: len(products)}
	for _, p := range products {
		t.Expected += p.Expected
		t.Found += p.Found
		if p.ListingReady {
			t.Ready++
		}
	}
	return t
}

// Version is a per-language variant of a product record.
type Version struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// OriginVersion is the key of the base-language record in version selectors.
const OriginVersion = ""

// RomanianVersion is the variant key used by the preliminary export.
const RomanianVersion = "ro"

// MaxImages is the image cap enforced when adding images.
const MaxImages = 5

// PlaceholderTitle marks a detail record that could not be fetched.
const PlaceholderTitle = "Eroare"

// ProductDetails is the enriched record for one ASIN.
type ProductDetails struct {
	Title         string             `json:"title"`
	Images        []string           `json:"images"`
	Description   string             `json:"description"`
	Features      map[string]any     `json:"features"`
	Brand         string             `json:"brand"`
	Price         *string            `json:"price"`
	Category      string             `json:"category"`
	CategoryID    string             `json:"categoryId"`
	OtherVersions map[string]Version `json:"other_versions"`

	// Placeholder is set on records synthesized for failed fetches.
	Placeholder bool `json:"-"`
}

// placeholderDetails is returned for ASINs the backend did not resolve.
func placeholderDetails() ProductDetails {
	return ProductDetails{
		Title:         PlaceholderTitle,
		Images:        []string{},
		Features:      map[string]any{},
		OtherVersions: map[string]Version{},
		Placeholder:   true,
	}
}

// Clone returns a deep copy.
func (d ProductDetails) Clone() ProductDetails {
	out := d
	out.Images = cloneStrings(d.Images)
	if d.Price != nil {
		p := *d.Price
		out.Price = &p
	}
	if d.Features != nil {
		out.Features = deepCopyValue(d.Features).(map[string]any)
	}
	if d.OtherVersions != nil {
		out.OtherVersions = make(map[string]Version, len(d.OtherVersions))
		for k, v := range d.OtherVersions {
			v.Images = cloneStrings(v.Images)
			out.OtherVersions[k] = v
		}
	}
	return out
}

// Version returns the variant for key, or the origin fields for OriginVersion.
func (d ProductDetails) Version(key string) (Version, bool) {
	if key == OriginVersion {
		return Version{Title: d.Title, Description: d.Description, Images: d.Images}, true
	}
	v, ok := d.OtherVersions[key]
	return v, ok
}

// VersionKeys lists the variant keys in a stable order, origin first.
func (d ProductDetails) VersionKeys() []string {
	keys := []string{OriginVersion}
	keys = append(keys, sortedKeys(d.OtherVersions)...)
	return keys
}

func (d *ProductDetails) setVersion(key string, v Version) {
	if key == OriginVersion {
		d.Title, d.Description, d.Images = v.Title, v.Description, v.Images
		return
	}
	if d.OtherVersions == nil {
		d.OtherVersions = make(map[string]Version)
	}
	d.OtherVersions[key] = v
}

// FinancialRecord is one opaque row of the financial report.
type FinancialRecord map[string]any

// Text renders the cell under key. Nested values render empty.
func (r FinancialRecord) Text(key string) string { return asString(r[key]) }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopyValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopyValue(val)
		}
		return out
	default:
		return v
	}
}
