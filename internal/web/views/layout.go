package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/listingdesk/internal/core"
)

const htmxSrc = "https://unpkg.com/htmx.org@1.9.12"

// Layout wraps body in the full document with navigation and search.
func Layout(title, search string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="ro"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.rawf(`<script src="%s"></script>`, htmxSrc)
		h.raw(`</head><body class="bg-gray-50 text-gray-900" hx-indicator="#loading">`)

		h.raw(`<header class="flex items-center gap-4 p-4 border-b bg-white"><nav class="flex gap-3">`)
		h.link(core.OrdersView{}, "Comenzi", "font-semibold")
		h.link(core.ImportView{}, "Import", "")
		h.link(core.FinancialView{}, "Financiar", "")
		h.raw(`<a href="/v/back" hx-get="/v/back" hx-target="#main" class="text-gray-500">Înapoi</a>`)
		h.raw(`</nav>`)
		h.component(SearchBox(search, false))
		h.raw(`</header>`)

		h.raw(`<div id="loading" class="htmx-indicator p-2 text-sm text-gray-500">Se încarcă...</div>`)
		h.raw(`<main id="main" class="p-4">`)
		h.component(body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// SearchBox is the header search input. With oob set it is rendered as an
// out-of-band swap so fragment responses reset the box to the query the
// current view actually applies.
func SearchBox(query string, oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<input id="search" type="search" name="q" `)
		if oob {
			h.raw(`hx-swap-oob="true" `)
		}
		h.rawf(`value="%s" placeholder="Caută..." class="ml-auto border rounded px-2 py-1" `, esc(query))
		h.raw(`hx-get="/api/search" hx-trigger="input changed delay:150ms, search" hx-target="#main">`)
		return h.err
	})
}

// WithSearchBox appends the out-of-band search box to a fragment.
func WithSearchBox(body templ.Component, query string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.component(body)
		h.component(SearchBox(query, true))
		return h.err
	})
}

// ErrorAlert is the fragment shown in place of a view that failed.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div role="alert" class="border border-red-300 bg-red-50 text-red-800 rounded p-3">`)
		h.raw(`<p class="font-semibold">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="text-xs text-red-600">Cod: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// Notice is a neutral one-line message fragment.
func Notice(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw(`<div class="border border-blue-200 bg-blue-50 rounded p-3">`)
		h.text(message)
		h.raw(`</div>`)
		return h.err
	})
}

// Title names a view in the document title.
func Title(id core.ViewID) string {
	switch id {
	case core.ViewOrders:
		return "Comenzi"
	case core.ViewImport:
		return "Import"
	case core.ViewFinancial:
		return "Raport financiar"
	case core.ViewPallets:
		return "Paleți"
	case core.ViewProducts:
		return "Produse"
	case core.ViewProductDetail:
		return "Detalii produs"
	case core.ViewExport:
		return "Export"
	default:
		return "Listing Desk"
	}
}
