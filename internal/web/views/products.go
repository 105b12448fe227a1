package views

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/listingdesk/internal/core"
)

func palletsPage(h *htmlWriter, p core.PalletsPage) {
	h.heading("Paleți: " + p.Order.Name)
	h.staleBanner(p.Synced)
	if len(p.Pallets) == 0 {
		h.raw(`<p>Comanda nu are paleți.</p>`)
		return
	}

	h.raw(`<table class="w-full"><thead><tr><th>Palet</th>`)
	h.raw(totalsHeader)
	h.raw(`<th></th></tr></thead><tbody>`)
	for _, pal := range p.Pallets {
		h.raw(`<tr><td>`)
		h.link(core.ProductsView{CommandID: p.Order.ID, ManifestSKU: pal.ManifestSKU}, pal.ManifestSKU, "underline font-mono")
		h.raw(`</td>`)
		h.totalsCells(pal.Totals)
		h.raw(`<td>`)
		if pal.Totals.Ready < pal.Totals.Products {
			h.readyForm(p.Order.ID, pal.ManifestSKU, "", true, "Marchează paletul gata")
		} else {
			h.readyForm(p.Order.ID, pal.ManifestSKU, "", false, "Anulează")
		}
		h.raw(`</td></tr>`)
	}
	h.raw(`</tbody></table>`)
}

func productsPage(h *htmlWriter, p core.ProductsPage) {
	h.heading(fmt.Sprintf("Produse: %s / %s", p.Order.Name, p.ManifestSKU))
	if len(p.Rows) == 0 {
		h.raw(`<p>Niciun produs nu corespunde căutării.</p>`)
		return
	}

	h.raw(`<table class="w-full"><thead><tr><th></th><th>Titlu</th><th>ASIN</th><th>SKU</th>`)
	h.raw(`<th>Așteptate</th><th>Găsite</th><th>BN</th><th>VG</th><th>G</th><th>Defecte</th><th>Gata</th><th>ASIN nou</th></tr></thead><tbody>`)
	for _, row := range p.Rows {
		prod := row.Product
		title := prod.Title
		if !row.Details.Placeholder && row.Details.Title != "" {
			title = row.Details.Title
		}

		h.rawf(`<tr id="p-%s"><td>`, esc(prod.UniqueID))
		if len(row.Details.Images) > 0 {
			h.rawf(`<img src="%s" alt="" class="w-12 h-12 object-cover" loading="lazy">`, esc(row.Details.Images[0]))
		}
		h.raw(`</td><td>`)
		id := prod.UniqueID
		if id == "" {
			id = prod.ID
		}
		h.link(core.ProductDetailView{CommandID: p.Order.ID, ManifestSKU: p.ManifestSKU, ProductID: id}, title, "underline")
		if row.Details.Placeholder {
			h.raw(` <span class="text-red-700 text-xs">detalii indisponibile</span>`)
		}
		h.raw(`</td><td class="font-mono">`)
		h.text(prod.ASIN)
		h.raw(`</td><td class="font-mono">`)
		h.text(prod.ProductSKU)
		h.rawf(`</td><td class="text-right">%d</td><td class="text-right">%d</td>`, prod.Expected, prod.Found)
		h.rawf(`<td class="text-right">%d</td><td class="text-right">%d</td><td class="text-right">%d</td><td class="text-right">%d</td>`,
			prod.BNCondition, prod.VGCondition, prod.GCondition, prod.Broken)
		h.raw(`<td>`)
		h.readyForm(p.Order.ID, p.ManifestSKU, prod.ASIN, !prod.ListingReady, yesNo(prod.ListingReady))
		h.raw(`</td><td>`)
		asinForm(h, p.Order.ID, p.ManifestSKU, prod)
		h.raw(`</td></tr>`)
	}
	h.raw(`</tbody></table>`)
}

func asinForm(h *htmlWriter, orderID, manifestSKU string, prod core.Product) {
	h.raw(`<form hx-post="/api/asin" hx-target="#main" class="flex gap-1">`)
	h.hidden("order", orderID)
	h.hidden("manifest", manifestSKU)
	h.hidden("sku", prod.ProductSKU)
	h.hidden("old", prod.ASIN)
	h.raw(`<input name="new" size="10" class="border rounded px-1 font-mono" required>`)
	h.raw(`<button type="submit">Schimbă</button></form>`)
}

func versionLabel(key string) string {
	if key == core.OriginVersion {
		return "Original"
	}
	return key
}

func productDetailPage(h *htmlWriter, p core.ProductDetailPage) {
	d := p.Edit.Details
	h.heading(p.Product.ASIN + " · " + p.Product.ProductSKU)
	if d.Placeholder {
		h.raw(`<p class="text-red-700 mb-3">Detaliile produsului nu au putut fi încărcate. Salvarea este dezactivată.</p>`)
	}

	h.raw(`<nav class="flex gap-2 mb-3">`)
	for _, key := range p.Versions {
		class := ""
		if key == p.ActiveVersion {
			class = "font-semibold"
		}
		h.raw(`<form hx-post="/api/product/version" hx-target="#main" class="inline">`)
		h.hidden("version", key)
		h.rawf(`<button type="submit" class="%s">`, class)
		h.text(versionLabel(key))
		h.raw(`</button></form>`)
	}
	h.raw(`</nav>`)

	v, _ := d.Version(p.ActiveVersion)
	h.raw(`<form hx-post="/api/product/edit" hx-target="#main" class="flex flex-col gap-2 max-w-3xl">`)
	h.hidden("version", p.ActiveVersion)
	h.rawf(`<label>Titlu <input name="title" value="%s" class="border rounded px-2 w-full"></label>`, esc(v.Title))
	h.raw(`<label>Descriere <textarea name="description" rows="8" class="border rounded px-2 w-full">`)
	h.text(v.Description)
	h.raw(`</textarea></label>`)
	if p.ActiveVersion == core.OriginVersion {
		price := ""
		if d.Price != nil {
			price = *d.Price
		}
		h.rawf(`<label>Brand <input name="brand" value="%s" class="border rounded px-2"></label>`, esc(d.Brand))
		h.rawf(`<label>Categorie <input name="category" value="%s" class="border rounded px-2"></label>`, esc(d.Category))
		h.rawf(`<label>ID categorie <input name="category_id" value="%s" class="border rounded px-2 font-mono"></label>`, esc(d.CategoryID))
		h.rawf(`<label>Preț <input name="price" value="%s" class="border rounded px-2"></label>`, esc(price))
	}
	h.raw(`<button type="submit">Aplică</button></form>`)

	imagesSection(h, p.ActiveVersion, v.Images)

	h.raw(`<div class="flex gap-4 mt-4">`)
	if !d.Placeholder {
		h.raw(`<button hx-post="/api/product/save" hx-target="#main">Salvează modificările</button>`)
	}
	h.raw(`<form hx-post="/api/product/translate" hx-target="#main" class="flex gap-1">`)
	h.raw(`<input name="language" value="ro" size="3" class="border rounded px-1">`)
	h.raw(`<button type="submit">Traduce</button></form>`)
	h.raw(`<button hx-get="/api/product/competition" hx-target="#competition">Concurență</button>`)
	h.raw(`</div><div id="competition" class="mt-2"></div>`)

	h.raw(`<form hx-post="/api/product/title" hx-target="#main" class="mt-4 flex flex-col gap-1 max-w-3xl">`)
	h.raw(`<p class="font-semibold">Generează titlu din titlurile concurenților</p>`)
	for i := range 5 {
		h.rawf(`<input name="competitor" placeholder="Titlu concurent %d" class="border rounded px-2">`, i+1)
	}
	h.raw(`<button type="submit">Generează</button></form>`)
}

func imagesSection(h *htmlWriter, version string, images []string) {
	h.rawf(`<div class="mt-4"><p class="font-semibold">Imagini (%d/%d)</p><ul class="flex gap-2 flex-wrap">`, len(images), core.MaxImages)
	for i, img := range images {
		h.rawf(`<li><img src="%s" alt="" class="w-24 h-24 object-cover">`, esc(img))
		h.raw(`<form hx-post="/api/product/images/remove" hx-target="#main">`)
		h.hidden("version", version)
		h.hidden("index", fmt.Sprint(i))
		h.raw(`<button type="submit" class="text-xs text-red-700">Șterge</button></form></li>`)
	}
	h.raw(`</ul>`)
	if len(images) < core.MaxImages {
		h.raw(`<form hx-post="/api/product/images/add" hx-target="#main" class="flex gap-1 mt-2">`)
		h.hidden("version", version)
		h.raw(`<input name="url" type="url" placeholder="URL imagine" class="border rounded px-2" required>`)
		h.raw(`<button type="submit">Adaugă</button></form>`)
	}
	h.raw(`</div>`)
}

// Competition renders the competition lookup as indented JSON.
func Competition(data map[string]any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		if len(data) == 0 {
			h.raw(`<p>Nu au fost găsite produse concurente.</p>`)
			return h.err
		}
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		h.raw(`<pre class="text-xs bg-gray-100 p-2 overflow-x-auto">`)
		h.text(string(b))
		h.raw(`</pre>`)
		return h.err
	})
}
