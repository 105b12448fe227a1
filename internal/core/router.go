package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/JonMunkholm/listingdesk/internal/fuzzy"
	"github.com/JonMunkholm/listingdesk/internal/logging"
)

// Renderer receives the output of a navigation. Exactly one of Render or
// Fail follows every Loading call unless the navigation went stale.
type Renderer interface {
	Loading(id ViewID)
	Render(page Page)
	Fail(id ViewID, err error)
}

// Page is a built view model.
type Page struct {
	View           View
	PreserveScroll bool
	SearchQuery    string
	Content        any
}

// OrderSummary is an order line of the orders view.
type OrderSummary struct {
	ID      string
	Name    string
	Pallets int
	Totals  Totals
}

// OrdersPage lists synced orders.
type OrdersPage struct {
	Orders     []OrderSummary
	AccessCode string
	// Synced is false when the resync failed and the stored list is shown.
	Synced bool
}

// ImportPage is the bulk import form.
type ImportPage struct{}

// FinancialPage shows the financial report as a table.
type FinancialPage struct {
	Columns []string
	Records []FinancialRecord
	Synced  bool
}

// PalletSummary is one pallet of an order.
type PalletSummary struct {
	ManifestSKU string
	Totals      Totals
}

// PalletsPage lists the pallets of one order.
type PalletsPage struct {
	Order   OrderSummary
	Pallets []PalletSummary
	Synced  bool
}

// ProductRow is a product line enriched with its details.
type ProductRow struct {
	Product Product
	Details ProductDetails
}

// ProductsPage lists the products of one pallet.
type ProductsPage struct {
	Order       OrderSummary
	ManifestSKU string
	Rows        []ProductRow
}

// ProductDetailPage is the editor for one product.
type ProductDetailPage struct {
	Order         OrderSummary
	ManifestSKU   string
	Product       Product
	Edit          EditBuffer
	ActiveVersion string
	Versions      []string
}

// ExportPage shows an export report for review.
type ExportPage struct {
	Order  OrderSummary
	Report ExportReport
}

// Router is the view state machine of one session.
type Router struct {
	state    *State
	syncer   *Syncer
	exporter *Exporter
	now      func() time.Time
}

// NewRouter wires a router over state.
func NewRouter(state *State, syncer *Syncer, exporter *Exporter) *Router {
	return &Router{state: state, syncer: syncer, exporter: exporter, now: time.Now}
}

// Navigate transitions to v. The current view is updated before anything
// is built; build errors and panics are logged and handed to out.Fail, so
// the returned error is informational. A navigation overtaken by a newer
// one renders nothing and returns ErrStaleNavigation.
func (r *Router) Navigate(ctx context.Context, v View, out Renderer) error {
	id := v.ID()
	logger := logging.WithFields(ctx, "view", id)

	token := r.state.BeginNavigation(id)
	out.Loading(id)

	page, err := r.build(ctx, token, v)
	if errors.Is(err, ErrStaleNavigation) || !r.state.IsCurrent(token) {
		logger.Debug("navigation discarded", "token", token)
		return ErrStaleNavigation
	}
	if err != nil {
		logger.Error("view build failed", "error", err)
		out.Fail(id, err)
		return err
	}

	out.Render(page)
	return nil
}

// Current rebuilds the view the session is on.
func (r *Router) Current() View {
	nav := r.state.Navigation()
	if nav.CurrentView == "" {
		return OrdersView{}
	}
	v, err := ParseView(nav.CurrentView, ViewParams{
		CommandID:   nav.CommandID,
		ManifestSKU: nav.ManifestSKU,
		ProductID:   nav.ProductID,
		Mode:        string(nav.ExportMode),
	})
	if err != nil {
		return OrdersView{}
	}
	return v
}

// Search stores q and re-renders the current view with it applied.
func (r *Router) Search(ctx context.Context, q string, out Renderer) error {
	r.state.SetSearchQuery(q)
	return r.Navigate(ctx, r.Current(), out)
}

// Back goes one level up. From the product detail it returns to the export
// review when that is where the user came from.
func (r *Router) Back(ctx context.Context, out Renderer) error {
	return r.Navigate(ctx, r.backTarget(), out)
}

func (r *Router) backTarget() View {
	nav := r.state.Navigation()
	switch nav.CurrentView {
	case ViewProductDetail:
		if nav.PreviousView == ViewExport {
			mode := nav.ExportMode
			if mode == "" {
				mode = ExportPreliminary
			}
			return ExportView{CommandID: nav.CommandID, Mode: mode}
		}
		return ProductsView{CommandID: nav.CommandID, ManifestSKU: nav.ManifestSKU}
	case ViewProducts:
		return PalletsView{CommandID: nav.CommandID}
	default:
		return OrdersView{}
	}
}

// build recovers panics into ErrRenderPanic.
func (r *Router) build(ctx context.Context, token uint64, v View) (page Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx).Error("panic while building view",
				"view", v.ID(), "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrRenderPanic, rec)
		}
	}()

	var content any
	switch t := v.(type) {
	case OrdersView:
		content, err = r.buildOrders(ctx, token)
	case ImportView:
		content = ImportPage{}
	case FinancialView:
		content, err = r.buildFinancial(ctx, token)
	case PalletsView:
		content, err = r.buildPallets(ctx, token, t)
	case ProductsView:
		content, err = r.buildProducts(ctx, token, t)
	case ProductDetailView:
		content, err = r.buildProductDetail(ctx, token, t)
	case ExportView:
		content, err = r.buildExport(ctx, token, t)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownView, v)
	}
	if err != nil {
		return Page{}, err
	}

	return Page{
		View:           v,
		PreserveScroll: v.ID().PreservesScroll(),
		SearchQuery:    r.state.SearchQuery(),
		Content:        content,
	}, nil
}

// resync refreshes orders, falling back to the stored list.
func (r *Router) resync(ctx context.Context) ([]Order, bool) {
	orders, ok := r.syncer.SyncOrders(ctx, r.state.AccessCode())
	if !ok {
		return r.state.Orders(), false
	}
	return orders, true
}

func (r *Router) buildOrders(ctx context.Context, token uint64) (OrdersPage, error) {
	orders, synced := r.resync(ctx)
	q := r.state.SearchQuery()

	page := OrdersPage{AccessCode: r.state.AccessCode(), Synced: synced}
	for _, o := range orders {
		if !fuzzy.Match(q, o.Name+" "+o.ID) {
			continue
		}
		page.Orders = append(page.Orders, Summarize(o))
	}

	return page, r.state.commit(token, func() {
		r.state.commandID = ""
		r.state.manifestSKU = ""
		r.state.productID = ""
	})
}

func (r *Router) buildFinancial(ctx context.Context, token uint64) (FinancialPage, error) {
	if _, ok := r.syncer.SyncOrders(ctx, r.state.AccessCode()); !ok {
		logging.FromContext(ctx).Debug("order resync failed before financial view")
	}

	records, synced := r.syncer.FetchFinancial(ctx)
	if !synced {
		records = r.state.Financial()
	}

	q := r.state.SearchQuery()
	columns := map[string]struct{}{}
	page := FinancialPage{Synced: synced}
	for _, rec := range records {
		if q != "" && !fuzzy.Match(q, financialText(rec)) {
			continue
		}
		for k := range rec {
			columns[k] = struct{}{}
		}
		page.Records = append(page.Records, rec)
	}
	page.Columns = sortedKeys(columns)

	return page, r.state.commit(token, func() {})
}

func financialText(rec FinancialRecord) string {
	var b strings.Builder
	for _, k := range sortedKeys(rec) {
		b.WriteString(asString(rec[k]))
		b.WriteByte(' ')
	}
	return b.String()
}

func (r *Router) buildPallets(ctx context.Context, token uint64, v PalletsView) (PalletsPage, error) {
	if v.CommandID == "" {
		return PalletsPage{}, fmt.Errorf("%w: %s needs an order id", ErrIncompleteData, ViewPallets)
	}

	_, synced := r.resync(ctx)
	order, ok := r.state.FindOrder(v.CommandID)
	if !ok {
		return PalletsPage{}, fmt.Errorf("%w: order %q", ErrNotFound, v.CommandID)
	}

	q := r.state.SearchQuery()
	page := PalletsPage{Order: Summarize(order), Synced: synced}
	for _, p := range palletsOf(order) {
		if fuzzy.Match(q, p.ManifestSKU) {
			page.Pallets = append(page.Pallets, p)
		}
	}

	return page, r.state.commit(token, func() {
		r.state.commandID = order.ID
		r.state.manifestSKU = ""
		r.state.productID = ""
	})
}

func (r *Router) buildProducts(ctx context.Context, token uint64, v ProductsView) (ProductsPage, error) {
	if v.CommandID == "" || v.ManifestSKU == "" {
		return ProductsPage{}, fmt.Errorf("%w: %s needs an order id and a manifest sku", ErrIncompleteData, ViewProducts)
	}

	order, ok := r.state.FindOrder(v.CommandID)
	if !ok {
		return ProductsPage{}, fmt.Errorf("%w: order %q", ErrNotFound, v.CommandID)
	}
	products := productsOnPallet(order, v.ManifestSKU)
	if len(products) == 0 {
		return ProductsPage{}, fmt.Errorf("%w: pallet %q in order %q", ErrNotFound, v.ManifestSKU, v.CommandID)
	}

	asins := make([]string, len(products))
	for i, p := range products {
		asins[i] = p.ASIN
	}
	details := r.syncer.FetchDetails(ctx, asins)

	q := r.state.SearchQuery()
	page := ProductsPage{Order: Summarize(order), ManifestSKU: v.ManifestSKU}
	for _, p := range products {
		d := details[p.ASIN]
		title := p.Title
		if d.Title != "" && !d.Placeholder {
			title = d.Title
		}
		if !fuzzy.Match(q, strings.Join([]string{title, p.ASIN, p.ProductSKU}, " ")) {
			continue
		}
		page.Rows = append(page.Rows, ProductRow{Product: p, Details: d})
	}

	return page, r.state.commit(token, func() {
		r.state.commandID = order.ID
		r.state.manifestSKU = v.ManifestSKU
		r.state.productID = ""
	})
}

func (r *Router) buildProductDetail(ctx context.Context, token uint64, v ProductDetailView) (ProductDetailPage, error) {
	if v.CommandID == "" || v.ManifestSKU == "" || v.ProductID == "" {
		return ProductDetailPage{}, fmt.Errorf("%w: %s needs an order id, a manifest sku and a product id",
			ErrIncompleteData, ViewProductDetail)
	}

	order, ok := r.state.FindOrder(v.CommandID)
	if !ok {
		return ProductDetailPage{}, fmt.Errorf("%w: order %q", ErrNotFound, v.CommandID)
	}
	product, ok := findProduct(order, v.ManifestSKU, v.ProductID)
	if !ok {
		return ProductDetailPage{}, fmt.Errorf("%w: product %q", ErrNotFound, v.ProductID)
	}

	buf, hasBuf := r.state.EditBuffer()
	keep := hasBuf && buf.UniqueID == product.UniqueID
	if !keep {
		details := r.syncer.FetchDetails(ctx, []string{product.ASIN})
		buf = EditBuffer{UniqueID: product.UniqueID, ASIN: product.ASIN, Details: details[product.ASIN].Clone()}
	}

	active := OriginVersion
	if keep {
		active = r.state.ActiveVersion()
	}
	if _, ok := buf.Details.Version(active); !ok {
		active = OriginVersion
	}

	page := ProductDetailPage{
		Order:         Summarize(order),
		ManifestSKU:   v.ManifestSKU,
		Product:       product,
		Edit:          buf.clone(),
		ActiveVersion: active,
		Versions:      buf.Details.VersionKeys(),
	}

	return page, r.state.commit(token, func() {
		r.state.commandID = order.ID
		r.state.manifestSKU = v.ManifestSKU
		r.state.productID = product.UniqueID
		r.state.activeVersion = active
		if !keep || r.state.edit == nil {
			b := buf.clone()
			r.state.edit = &b
		}
	})
}

func (r *Router) buildExport(ctx context.Context, token uint64, v ExportView) (ExportPage, error) {
	if v.CommandID == "" {
		return ExportPage{}, fmt.Errorf("%w: %s needs an order id", ErrIncompleteData, ViewExport)
	}
	order, ok := r.state.FindOrder(v.CommandID)
	if !ok {
		return ExportPage{}, fmt.Errorf("%w: order %q", ErrNotFound, v.CommandID)
	}

	report := r.exporter.Run(ctx, order, v.Mode)

	shown := report
	if q := r.state.SearchQuery(); q != "" {
		shown.Rows = nil
		for _, row := range report.Rows {
			if fuzzy.Match(q, row.Name+" "+row.ASIN) {
				shown.Rows = append(shown.Rows, row)
			}
		}
	}

	return ExportPage{Order: Summarize(order), Report: shown}, r.state.commit(token, func() {
		r.state.commandID = order.ID
		r.state.exportMode = v.Mode
		if report.Blocked() || len(report.Records) == 0 {
			r.state.lastExport = nil
			return
		}
		r.state.lastExport = &ExportData{
			OrderID:   order.ID,
			Mode:      v.Mode,
			Records:   report.Records,
			CreatedAt: r.now(),
		}
	})
}

// Summarize counts pallets and totals of an order.
func Summarize(o Order) OrderSummary {
	return OrderSummary{
		ID:      o.ID,
		Name:    o.Name,
		Pallets: len(palletsOf(o)),
		Totals:  totalsOf(o.Products),
	}
}

// palletsOf groups an order's products by manifest sku in first-seen order.
func palletsOf(o Order) []PalletSummary {
	index := map[string]int{}
	var groups [][]Product
	var skus []string
	for _, p := range o.Products {
		i, ok := index[p.ManifestSKU]
		if !ok {
			i = len(groups)
			index[p.ManifestSKU] = i
			groups = append(groups, nil)
			skus = append(skus, p.ManifestSKU)
		}
		groups[i] = append(groups[i], p)
	}

	out := make([]PalletSummary, len(groups))
	for i, g := range groups {
		out[i] = PalletSummary{ManifestSKU: skus[i], Totals: totalsOf(g)}
	}
	return out
}

func productsOnPallet(o Order, manifestSKU string) []Product {
	var out []Product
	for _, p := range o.Products {
		if p.ManifestSKU == manifestSKU {
			out = append(out, p)
		}
	}
	return out
}

// findProduct matches productID against the unique id first and the plain
// id second.
func findProduct(o Order, manifestSKU, productID string) (Product, bool) {
	for _, p := range o.Products {
		if p.ManifestSKU == manifestSKU && p.UniqueID == productID {
			return p, true
		}
	}
	for _, p := range o.Products {
		if p.ManifestSKU == manifestSKU && p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}
