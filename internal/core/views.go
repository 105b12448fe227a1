package core

import "fmt"

// ViewID names a router state.
type ViewID string

const (
	ViewOrders        ViewID = "comenzi"
	ViewImport        ViewID = "import"
	ViewFinancial     ViewID = "financiar"
	ViewPallets       ViewID = "paleti"
	ViewProducts      ViewID = "produse"
	ViewProductDetail ViewID = "produs-detaliu"
	ViewExport        ViewID = "export"
)

// PreservesScroll reports whether the browser keeps its scroll offset when
// this view is re-rendered.
func (id ViewID) PreservesScroll() bool {
	return id == ViewProducts || id == ViewProductDetail
}

// ExportMode selects an export flavour.
type ExportMode string

const (
	ExportPreliminary ExportMode = "preliminar"
	ExportRealStock   ExportMode = "stoc-real"
)

// View is a router state together with the identifiers it needs. The set of
// implementations is closed.
type View interface {
	ID() ViewID
	isView()
}

type (
	OrdersView    struct{}
	ImportView    struct{}
	FinancialView struct{}

	PalletsView struct {
		CommandID string
	}

	ProductsView struct {
		CommandID   string
		ManifestSKU string
	}

	ProductDetailView struct {
		CommandID   string
		ManifestSKU string
		ProductID   string
	}

	ExportView struct {
		CommandID string
		Mode      ExportMode
	}
)

func (OrdersView) ID() ViewID        { return ViewOrders }
func (ImportView) ID() ViewID        { return ViewImport }
func (FinancialView) ID() ViewID     { return ViewFinancial }
func (PalletsView) ID() ViewID       { return ViewPallets }
func (ProductsView) ID() ViewID      { return ViewProducts }
func (ProductDetailView) ID() ViewID { return ViewProductDetail }
func (ExportView) ID() ViewID        { return ViewExport }

func (OrdersView) isView()        {}
func (ImportView) isView()        {}
func (FinancialView) isView()     {}
func (PalletsView) isView()       {}
func (ProductsView) isView()      {}
func (ProductDetailView) isView() {}
func (ExportView) isView()        {}

// ViewParams are the loosely typed identifiers a request carries.
type ViewParams struct {
	CommandID   string
	ManifestSKU string
	ProductID   string
	Mode        string
}

// ParseView builds the variant for id. Missing identifiers are left empty;
// the router reports them as incomplete data.
func ParseView(id ViewID, p ViewParams) (View, error) {
	switch id {
	case ViewOrders:
		return OrdersView{}, nil
	case ViewImport:
		return ImportView{}, nil
	case ViewFinancial:
		return FinancialView{}, nil
	case ViewPallets:
		return PalletsView{CommandID: p.CommandID}, nil
	case ViewProducts:
		return ProductsView{CommandID: p.CommandID, ManifestSKU: p.ManifestSKU}, nil
	case ViewProductDetail:
		return ProductDetailView{CommandID: p.CommandID, ManifestSKU: p.ManifestSKU, ProductID: p.ProductID}, nil
	case ViewExport:
		mode := ExportMode(p.Mode)
		if mode == "" {
			mode = ExportPreliminary
		}
		if mode != ExportPreliminary && mode != ExportRealStock {
			return nil, fmt.Errorf("%w: export mode %q", ErrUnknownView, p.Mode)
		}
		return ExportView{CommandID: p.CommandID, Mode: mode}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, id)
	}
}

// Params is the inverse of ParseView.
func Params(v View) ViewParams {
	switch t := v.(type) {
	case PalletsView:
		return ViewParams{CommandID: t.CommandID}
	case ProductsView:
		return ViewParams{CommandID: t.CommandID, ManifestSKU: t.ManifestSKU}
	case ProductDetailView:
		return ViewParams{CommandID: t.CommandID, ManifestSKU: t.ManifestSKU, ProductID: t.ProductID}
	case ExportView:
		return ViewParams{CommandID: t.CommandID, Mode: string(t.Mode)}
	default:
		return ViewParams{}
	}
}
