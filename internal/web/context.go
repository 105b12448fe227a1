package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/listingdesk/internal/core"
	mw "github.com/JonMunkholm/listingdesk/internal/web/middleware"
)

// requestContext carries the client address and user agent into core so
// automation logs name who triggered them.
func requestContext(r *http.Request) context.Context {
	return core.WithClient(r.Context(), clientHost(r.RemoteAddr), r.UserAgent())
}

// session returns the request's session. Routes behind mw.Sessions always
// have one; a missing session is an internal error.
func session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, ok := mw.SessionFrom(r.Context())
	if !ok {
		respondError(w, r, errNoSession, http.StatusInternalServerError)
	}
	return sess, ok
}
