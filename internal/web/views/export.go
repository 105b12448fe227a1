package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/schema"
)

// maxCellRunes caps free text in the review table; the full value stays in
// the title attribute.
const maxCellRunes = 120

func modeLabel(m core.ExportMode) string {
	if m == core.ExportRealStock {
		return "stoc real"
	}
	return "preliminar"
}

func cellClass(t schema.FieldType) string {
	switch t {
	case schema.FieldMoney, schema.FieldInt:
		return "text-right tabular-nums"
	case schema.FieldCode:
		return "font-mono"
	case schema.FieldList:
		return "max-w-xs"
	default:
		return ""
	}
}

func cellAttrs(t schema.FieldType) templ.Attributes {
	if class := cellClass(t); class != "" {
		return templ.Attributes{"class": class}
	}
	return templ.Attributes{}
}

func rowAttrs(row core.ExportRow) templ.Attributes {
	if len(row.Errors) > 0 {
		return templ.Attributes{"class": "bg-red-50"}
	}
	return templ.Attributes{}
}

func detailLinkAttrs(orderID string, row core.ExportRow) templ.Attributes {
	href := string(templ.URL(URL(core.ProductDetailView{
		CommandID:   orderID,
		ManifestSKU: row.ManifestSKU,
		ProductID:   row.ProductID,
	})))
	return templ.Attributes{
		"href":        href,
		"hx-get":      href,
		"hx-target":   "#main",
		"hx-push-url": "true",
		"class":       "underline text-xs",
	}
}

func imageLinkAttrs(item string) templ.Attributes {
	return templ.Attributes{
		"href":   string(templ.URL(item)),
		"class":  "block truncate underline",
		"target": "_blank",
		"rel":    "noopener",
	}
}

func recordValue(r core.Record, key string) string {
	v, _ := r.Get(key)
	return v
}

func listItems(val string) []string {
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
