// Package schema holds the fixed layouts the listing desk reads and writes:
// the CSV column sets produced by the export pipeline and the relational
// table behind the postgres snapshot store.
package schema

// FieldType is the value kind of an export column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldCode
	FieldMoney
	FieldInt
	FieldList
)

// Column is one CSV column of an export.
type Column struct {
	Name string
	Type FieldType
}

// Export column names.
const (
	ColSKU                 = "SKU"
	ColName                = "Name"
	ColDescription         = "Description"
	ColBrand               = "Brand"
	ColCategory            = "Category"
	ColCategoryID          = "CategoryId"
	ColEAN                 = "EAN"
	ColStockCode           = "StockCode"
	ColWeight              = "Weight"
	ColImages              = "Images"
	ColSalePriceWithTax    = "SalePriceWithTax"
	ColSalePriceWithoutTax = "SalePriceWithoutTax"
	ColFullPriceWithTax    = "FullPriceWithTax"
	ColFullPriceWithoutTax = "FullPriceWithoutTax"
	ColTaxRate             = "TaxRate"
	ColStock               = "Stock"
)

// Preliminary is the column layout of a preliminary listing export.
var Preliminary = []Column{
	{ColSKU, FieldCode},
	{ColName, FieldText},
	{ColDescription, FieldText},
	{ColBrand, FieldText},
	{ColCategory, FieldText},
	{ColCategoryID, FieldCode},
	{ColEAN, FieldCode},
	{ColStockCode, FieldCode},
	{ColWeight, FieldText},
	{ColImages, FieldList},
	{ColSalePriceWithTax, FieldMoney},
	{ColSalePriceWithoutTax, FieldMoney},
	{ColFullPriceWithTax, FieldMoney},
	{ColFullPriceWithoutTax, FieldMoney},
	{ColTaxRate, FieldInt},
}

// RealStock is the column layout of a real stock export.
var RealStock = []Column{
	{ColSKU, FieldCode},
	{ColStock, FieldInt},
}

// Names returns the column names in order.
func Names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// SnapshotTable is the postgres table used by the snapshot store.
const SnapshotTable = "session_snapshots"

// SnapshotDDL creates SnapshotTable when missing.
const SnapshotDDL = `
CREATE TABLE IF NOT EXISTS session_snapshots (
    key        TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS session_snapshots_expires_idx ON session_snapshots (expires_at);
`
