// Package views renders the listing desk pages as templ components.
//
//go:generate templ generate
package views

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/listingdesk/internal/core"
)

// htmlWriter keeps the first write error so page code can stay linear.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw writes trusted markup.
func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// rawf formats trusted markup. Every user value must go through esc.
func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// text writes escaped text.
func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func esc(s string) string { return templ.EscapeString(s) }

// URL is the address of v under /v/.
func URL(v core.View) string {
	p := core.Params(v)
	q := url.Values{}
	for key, val := range map[string]string{
		"command":  p.CommandID,
		"manifest": p.ManifestSKU,
		"product":  p.ProductID,
		"mode":     p.Mode,
	} {
		if val != "" {
			q.Set(key, val)
		}
	}
	u := "/v/" + string(v.ID())
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// link renders an hx-boosted anchor to v.
func (h *htmlWriter) link(v core.View, label, class string) {
	href := string(templ.URL(URL(v)))
	h.rawf(`<a href="%s" hx-get="%s" hx-target="#main" hx-push-url="true" class="%s">`, esc(href), esc(href), class)
	h.text(label)
	h.raw(`</a>`)
}

// hidden renders a hidden input.
func (h *htmlWriter) hidden(name, value string) {
	h.rawf(`<input type="hidden" name="%s" value="%s">`, esc(name), esc(value))
}

func yesNo(b bool) string {
	if b {
		return "Da"
	}
	return "Nu"
}
