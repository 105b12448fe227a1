package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/listingdesk/internal/core"
)

// Page renders the content of a built view.
func Page(p core.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		scroll := "top"
		if p.PreserveScroll {
			scroll = "keep"
		}
		h.rawf(`<section data-view="%s" data-scroll="%s">`, esc(string(p.View.ID())), scroll)

		switch c := p.Content.(type) {
		case core.OrdersPage:
			ordersPage(h, c)
		case core.ImportPage:
			importPage(h)
		case core.FinancialPage:
			financialPage(h, c)
		case core.PalletsPage:
			palletsPage(h, c)
		case core.ProductsPage:
			productsPage(h, c)
		case core.ProductDetailPage:
			productDetailPage(h, c)
		case core.ExportPage:
			h.component(exportReview(c))
		default:
			return fmt.Errorf("views: no page for %T", p.Content)
		}

		h.raw(`</section>`)
		return h.err
	})
}

func (h *htmlWriter) heading(title string) {
	h.raw(`<h1 class="text-xl font-semibold mb-3">`)
	h.text(title)
	h.raw(`</h1>`)
}

func (h *htmlWriter) staleBanner(synced bool) {
	if synced {
		return
	}
	h.raw(`<p class="mb-3 text-amber-700">Sincronizarea a eșuat; sunt afișate datele salvate.</p>`)
}

func (h *htmlWriter) totalsCells(t core.Totals) {
	h.rawf(`<td class="text-right">%d</td><td class="text-right">%d</td><td class="text-right">%d</td><td class="text-right">%d</td>`,
		t.Products, t.Expected, t.Found, t.Ready)
}

const totalsHeader = `<th>Produse</th><th>Așteptate</th><th>Găsite</th><th>Gata</th>`

// readyForm toggles the ready flag for an order, a pallet or one product.
func (h *htmlWriter) readyForm(orderID, pallet, asin string, ready bool, label string) {
	h.raw(`<form hx-post="/api/ready" hx-target="#main" class="inline">`)
	h.hidden("order", orderID)
	h.hidden("pallet", pallet)
	h.hidden("asin", asin)
	h.hidden("ready", fmt.Sprint(ready))
	h.raw(`<button type="submit" class="underline">`)
	h.text(label)
	h.raw(`</button></form>`)
}

func ordersPage(h *htmlWriter, p core.OrdersPage) {
	h.heading("Comenzi")

	h.raw(`<form hx-post="/api/access-code" hx-target="#main" class="mb-4 flex gap-2">`)
	h.raw(`<label for="code">Cod de acces</label>`)
	h.rawf(`<input id="code" name="code" type="password" value="%s" class="border rounded px-2">`, esc(p.AccessCode))
	h.raw(`<button type="submit">Salvează</button></form>`)

	h.staleBanner(p.Synced)
	if len(p.Orders) == 0 {
		h.raw(`<p>Nu există comenzi.</p>`)
		return
	}

	h.raw(`<table class="w-full"><thead><tr><th>Comandă</th><th>ID</th><th>Paleți</th>`)
	h.raw(totalsHeader)
	h.raw(`<th>Export</th><th></th></tr></thead><tbody>`)
	for _, o := range p.Orders {
		h.raw(`<tr><td>`)
		h.link(core.PalletsView{CommandID: o.ID}, o.Name, "underline")
		h.raw(`</td><td class="font-mono">`)
		h.text(o.ID)
		h.rawf(`</td><td class="text-right">%d</td>`, o.Pallets)
		h.totalsCells(o.Totals)
		h.raw(`<td>`)
		h.link(core.ExportView{CommandID: o.ID, Mode: core.ExportPreliminary}, "Preliminar", "underline mr-2")
		h.link(core.ExportView{CommandID: o.ID, Mode: core.ExportRealStock}, "Stoc real", "underline")
		h.raw(`</td><td>`)
		if o.Totals.Ready < o.Totals.Products {
			h.readyForm(o.ID, "", "", true, "Marchează comanda gata")
		} else {
			h.readyForm(o.ID, "", "", false, "Anulează")
		}
		h.raw(`</td></tr>`)
	}
	h.raw(`</tbody></table>`)
}

func importPage(h *htmlWriter) {
	h.heading("Import")
	h.raw(`<form hx-post="/api/import" hx-encoding="multipart/form-data" hx-target="#import-result" class="flex flex-col gap-2 max-w-md">`)
	h.raw(`<label>Arhivă ZIP <input type="file" name="zip" accept=".zip" required></label>`)
	h.raw(`<label>Document PDF <input type="file" name="pdf" accept=".pdf" required></label>`)
	h.raw(`<button type="submit">Trimite</button></form>`)
	h.raw(`<div id="import-result" class="mt-3"></div>`)
}

func financialPage(h *htmlWriter, p core.FinancialPage) {
	h.heading("Raport financiar")
	h.staleBanner(p.Synced)
	if len(p.Records) == 0 {
		h.raw(`<p>Nu există înregistrări.</p>`)
		return
	}

	h.raw(`<table class="w-full"><thead><tr>`)
	for _, col := range p.Columns {
		h.raw(`<th>`)
		h.text(col)
		h.raw(`</th>`)
	}
	h.raw(`</tr></thead><tbody>`)
	for _, rec := range p.Records {
		h.raw(`<tr>`)
		for _, col := range p.Columns {
			h.raw(`<td>`)
			h.text(rec.Text(col))
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}
