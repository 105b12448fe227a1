package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/listingdesk/internal/codes"
	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/schema"
)

// SKUSuffix is appended to the ASIN to form the exported SKU.
const SKUSuffix = "CN"

// ExportIssue lists why one product blocks the export.
type ExportIssue struct {
	ASIN    string
	Name    string
	Reasons []string
}

// ExportRow is one computed row of the review table.
type ExportRow struct {
	ASIN   string
	Name   string
	Record Record
	Errors []string

	// ManifestSKU and ProductID locate the product for the detail view.
	ManifestSKU string
	ProductID   string
}

// ExportReport is the outcome of an export run.
type ExportReport struct {
	OrderID string
	Mode    ExportMode

	// Rows is the review table with failing rows first.
	Rows []ExportRow

	// Records is the download payload in input order. It is nil when the
	// export is blocked.
	Records []Record

	Issues   []ExportIssue
	Warnings []string

	// Skipped lists ASINs left out because no detail record resolved.
	Skipped []string
}

// Blocked reports whether validation failures prevent the download.
func (r ExportReport) Blocked() bool { return len(r.Issues) > 0 }

// Columns returns the column layout of the report's mode.
func (r ExportReport) Columns() []schema.Column {
	if r.Mode == ExportRealStock {
		return schema.RealStock
	}
	return schema.Preliminary
}

// Exporter builds export reports for orders.
type Exporter struct {
	syncer *Syncer
	eans   *codes.EANGenerator
}

// NewExporter returns an exporter that resolves details through syncer.
func NewExporter(syncer *Syncer) *Exporter {
	return &Exporter{syncer: syncer, eans: codes.NewEANGenerator()}
}

// Run dispatches on mode.
func (e *Exporter) Run(ctx context.Context, order Order, mode ExportMode) ExportReport {
	if mode == ExportRealStock {
		return e.RealStock(ctx, order)
	}
	return e.Preliminary(ctx, order)
}

// Preliminary validates every listing-ready product of order and computes
// its listing row. Products without resolvable details are skipped with a
// warning. Any validation failure blocks the download, but every computed
// row stays in the review table.
func (e *Exporter) Preliminary(ctx context.Context, order Order) ExportReport {
	logger := logging.WithFields(ctx, "order", order.ID, "mode", ExportPreliminary)
	report := ExportReport{OrderID: order.ID, Mode: ExportPreliminary}

	e.eans.Reset()

	ready := listingReady(order.Products)
	asins := make([]string, 0, len(ready))
	for _, p := range ready {
		asins = append(asins, p.ASIN)
	}
	details := e.syncer.FetchDetails(ctx, asins)

	var records []Record
	for _, p := range ready {
		d, ok := details[p.ASIN]
		if !ok || d.Placeholder {
			logger.Warn("skipping product without details", "asin", p.ASIN, "sku", p.ProductSKU)
			report.Skipped = append(report.Skipped, p.ASIN)
			continue
		}

		title, desc, images := romanianFields(d)
		stockCode := p.StockCode
		if stockCode == "" {
			stockCode = codes.StockCode(codes.DefaultStockCodeLength)
		}

		errs := ValidateCandidate(ExportCandidate{
			Price:       d.Price,
			Images:      images,
			StockCode:   stockCode,
			Title:       title,
			Description: desc,
		})

		rec := e.preliminaryRecord(p, d, title, desc, images, stockCode)
		row := ExportRow{
			ASIN:        p.ASIN,
			Name:        title,
			Record:      rec,
			Errors:      Messages(errs),
			ManifestSKU: p.ManifestSKU,
			ProductID:   productKey(p),
		}
		report.Rows = append(report.Rows, row)
		records = append(records, rec)

		if len(errs) > 0 {
			report.Issues = append(report.Issues, ExportIssue{ASIN: p.ASIN, Name: title, Reasons: row.Errors})
		}
	}

	if len(report.Skipped) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d produse fără detalii au fost omise", len(report.Skipped)))
	}
	if !report.Blocked() {
		report.Records = records
	}
	sortErrorsFirst(report.Rows)

	logger.Info("preliminary export built",
		"rows", len(report.Rows), "issues", len(report.Issues), "skipped", len(report.Skipped))
	return report
}

// romanianFields picks the "ro" variant, falling back to the origin fields
// when the variant is absent.
func romanianFields(d ProductDetails) (title, desc string, images []string) {
	if v, ok := d.OtherVersions[RomanianVersion]; ok {
		return v.Title, v.Description, v.Images
	}
	return d.Title, d.Description, d.Images
}

func (e *Exporter) preliminaryRecord(p Product, d ProductDetails, title, desc string, images []string, stockCode string) Record {
	prices := ComputePrices(ParsePrice(d.Price))

	values := map[string]string{
		schema.ColSKU:                 p.ASIN + SKUSuffix,
		schema.ColName:                StripDiacritics(title),
		schema.ColDescription:         StripDiacritics(desc),
		schema.ColBrand:               d.Brand,
		schema.ColCategory:            d.Category,
		schema.ColCategoryID:          d.CategoryID,
		schema.ColEAN:                 e.eans.Next(),
		schema.ColStockCode:           stockCode,
		schema.ColWeight:              p.UnitWeight,
		schema.ColImages:              strings.Join(nonEmpty(images), ","),
		schema.ColSalePriceWithTax:    prices.SaleWithTax,
		schema.ColSalePriceWithoutTax: prices.SaleWithoutTax,
		schema.ColFullPriceWithTax:    prices.FullWithTax,
		schema.ColFullPriceWithoutTax: prices.FullWithoutTax,
		schema.ColTaxRate:             strconv.Itoa(TaxRate),
	}
	return recordFor(schema.Preliminary, values)
}

// RealStock emits SKU and stock count for listing-ready products. When any
// product carries verificationready, only products with it set to true
// qualify; when none does, every listing-ready product qualifies and a
// warning says so.
func (e *Exporter) RealStock(ctx context.Context, order Order) ExportReport {
	report := ExportReport{OrderID: order.ID, Mode: ExportRealStock}

	ready := listingReady(order.Products)
	withField := 0
	for _, p := range order.Products {
		if p.VerificationReady != nil {
			withField++
		}
	}
	fieldPresent := withField > 0

	excludedMissing := 0
	for _, p := range ready {
		if fieldPresent {
			if p.VerificationReady == nil {
				excludedMissing++
				continue
			}
			if !*p.VerificationReady {
				continue
			}
		}
		rec := recordFor(schema.RealStock, map[string]string{
			schema.ColSKU:   p.ASIN + SKUSuffix,
			schema.ColStock: strconv.Itoa(p.BNCondition),
		})
		report.Rows = append(report.Rows, ExportRow{
			ASIN:        p.ASIN,
			Name:        p.Title,
			Record:      rec,
			ManifestSKU: p.ManifestSKU,
			ProductID:   productKey(p),
		})
		report.Records = append(report.Records, rec)
	}

	switch {
	case !fieldPresent:
		report.Warnings = append(report.Warnings,
			"Câmpul verificationready lipsește din date; au fost exportate toate produsele gata de listare")
	case excludedMissing > 0:
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d produse fără câmpul verificationready au fost excluse", excludedMissing))
	}

	logging.WithFields(ctx, "order", order.ID, "mode", ExportRealStock).
		Info("real stock export built", "rows", len(report.Rows), "warnings", len(report.Warnings))
	return report
}

// productKey is the identifier the detail view resolves a product by.
func productKey(p Product) string {
	if p.UniqueID != "" {
		return p.UniqueID
	}
	return p.ID
}

func listingReady(products []Product) []Product {
	var out []Product
	for _, p := range products {
		if p.ListingReady {
			out = append(out, p)
		}
	}
	return out
}

func recordFor(cols []schema.Column, values map[string]string) Record {
	rec := make(Record, len(cols))
	for i, c := range cols {
		rec[i] = Field{Key: c.Name, Value: values[c.Name]}
	}
	return rec
}

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sortErrorsFirst moves failing rows to the top, keeping relative order.
func sortErrorsFirst(rows []ExportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return len(rows[i].Errors) > 0 && len(rows[j].Errors) == 0
	})
}
