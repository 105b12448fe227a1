package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/web/views"
)

var errNoSession = errors.New("internal error: request has no session")

const searchPath = "/api/search"

// capture is the core.Renderer of one request. It keeps the outcome so the
// handler can pick status and headers before anything is written.
type capture struct {
	loading core.ViewID
	page    *core.Page
	failed  core.ViewID
	err     error
}

func (c *capture) Loading(id core.ViewID) { c.loading = id }

func (c *capture) Render(page core.Page) { c.page = &page }

func (c *capture) Fail(id core.ViewID, err error) {
	c.failed = id
	c.err = err
}

// navigate runs a router call and writes its outcome. A navigation that
// went stale answers 204 so htmx leaves the page alone.
func navigate(w http.ResponseWriter, r *http.Request, sess *core.Session, run func(context.Context, core.Renderer) error) {
	out := &capture{}
	err := run(requestContext(r), out)

	switch {
	case errors.Is(err, core.ErrStaleNavigation):
		logging.FromContext(r.Context()).Debug("stale navigation", "view", out.loading)
		w.WriteHeader(http.StatusNoContent)
	case out.page != nil:
		writePage(w, r, sess, *out.page)
	case out.err != nil:
		respondError(w, r, out.err, statusFor(out.err))
	case err != nil:
		respondError(w, r, err, statusFor(err))
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// writePage renders page as an htmx fragment or as a full document.
func writePage(w http.ResponseWriter, r *http.Request, sess *core.Session, page core.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	var c templ.Component = views.Page(page)
	if isHTMX(r) {
		w.Header().Set("HX-Push-Url", views.URL(page.View))
		if !page.PreserveScroll {
			w.Header().Set("HX-Reswap", "innerHTML show:window:top")
		}
		// The box the user is typing in is left alone.
		if r.URL.Path != searchPath {
			c = views.WithSearchBox(c, sess.State.SearchQuery())
		}
	} else {
		c = views.Layout(views.Title(page.View.ID()), sess.State.SearchQuery(), c)
	}

	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "view", page.View.ID(), "error", err)
	}
}

// rerender redraws the current view after an action.
func rerender(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	navigate(w, r, sess, func(ctx context.Context, out core.Renderer) error {
		return sess.Router.Navigate(ctx, sess.Router.Current(), out)
	})
}
