package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ProductRecord is one raw product row from the order sync endpoint.
// Values arrive as strings, numbers or booleans depending on the automation
// that produced them, so the record is kept loosely typed.
type ProductRecord map[string]any

// OrdersResponse is the body of the full order sync endpoint.
type OrdersResponse struct {
	Status string                     `json:"status"`
	Data   map[string][]ProductRecord `json:"data"`
}

// FlexString decodes a JSON string, number or null into a string.
type FlexString struct {
	Value string
	Valid bool
}

// NewFlexString returns a valid FlexString.
func NewFlexString(s string) FlexString {
	return FlexString{Value: s, Valid: true}
}

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = FlexString{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString{Value: s, Valid: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flex string: unsupported value %s", b)
	}
	*f = FlexString{Value: n.String(), Valid: true}
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// VersionRecord is a per-language variant of a product detail record.
type VersionRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// DetailRecord is the enriched product record keyed by ASIN.
type DetailRecord struct {
	Title         string                   `json:"title"`
	Images        []string                 `json:"images"`
	Description   string                   `json:"description"`
	Features      map[string]any           `json:"features"`
	Brand         string                   `json:"brand"`
	Price         FlexString               `json:"price"`
	Category      string                   `json:"category"`
	CategoryID    FlexString               `json:"categoryId"`
	OtherVersions map[string]VersionRecord `json:"other_versions"`
}

// ReadyRequest toggles the ready-to-list flag for a product or a whole order.
type ReadyRequest struct {
	OrderID        string `json:"orderId"`
	Pallet         string `json:"pallet,omitempty"`
	ASIN           string `json:"asin,omitempty"`
	SetReadyStatus bool   `json:"setReadyStatus"`
}

// ASINUpdateRequest replaces the ASIN attached to a received product.
type ASINUpdateRequest struct {
	ProductSKU  string `json:"productsku"`
	OldASIN     string `json:"asin_vechi"`
	NewASIN     string `json:"asin_nou"`
	OrderID     string `json:"orderId"`
	ManifestSKU string `json:"manifestsku"`
}

// TitleRequest asks the automation backend for a generated title.
type TitleRequest struct {
	ASIN        string
	Title       string
	Description string
	Competitors []string
}

// MarshalJSON flattens competitor titles into competition_1_title..competition_5_title.
func (r TitleRequest) MarshalJSON() ([]byte, error) {
	body := map[string]string{
		"asin":        r.ASIN,
		"title":       r.Title,
		"description": r.Description,
	}
	for i := 0; i < MaxCompetitors; i++ {
		v := ""
		if i < len(r.Competitors) {
			v = r.Competitors[i]
		}
		body["competition_"+strconv.Itoa(i+1)+"_title"] = v
	}
	return json.Marshal(body)
}

// MaxCompetitors is the number of competitor titles sent for title generation.
const MaxCompetitors = 5

// File is an in-memory upload part.
type File struct {
	Name   string
	Reader io.Reader
	Size   int64
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type titleResponse struct {
	Output string `json:"output"`
}
