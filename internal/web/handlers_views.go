package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/listingdesk/internal/core"
)

// handleView transitions to the view named in the path.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	view, err := core.ParseView(core.ViewID(chi.URLParam(r, "view")), core.ViewParams{
		CommandID:   q.Get("command"),
		ManifestSKU: q.Get("manifest"),
		ProductID:   q.Get("product"),
		Mode:        q.Get("mode"),
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	navigate(w, r, sess, func(ctx context.Context, out core.Renderer) error {
		return sess.Router.Navigate(ctx, view, out)
	})
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	navigate(w, r, sess, sess.Router.Back)
}

// handleSearch applies q to the current view after the debounce window.
// Superseded keystrokes answer 204 and render nothing.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	if !sess.Search.Wait(r.Context()) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	q := r.URL.Query().Get("q")
	navigate(w, r, sess, func(ctx context.Context, out core.Renderer) error {
		return sess.Router.Search(ctx, q, out)
	})
}
