package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/web/views"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// actionDone answers a successful action: htmx gets the current view
// redrawn, API clients get a status object.
func actionDone(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	if isHTMX(r) {
		rerender(w, r, sess)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// parseBool accepts the usual checkbox spellings.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes", "da":
		return true
	}
	return false
}

func (s *Server) handleAccessCode(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := sess.Actions.SetAccessCode(r.FormValue("code")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	err := sess.Actions.ToggleReady(requestContext(r), core.ReadyToggle{
		OrderID: r.FormValue("order"),
		Pallet:  r.FormValue("pallet"),
		ASIN:    r.FormValue("asin"),
		Ready:   parseBool(r.FormValue("ready")),
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleASIN(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	err := sess.Actions.UpdateASIN(requestContext(r), core.ASINChange{
		OrderID:     r.FormValue("order"),
		ManifestSKU: r.FormValue("manifest"),
		ProductSKU:  r.FormValue("sku"),
		OldASIN:     r.FormValue("old"),
		NewASIN:     r.FormValue("new"),
	})
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := sess.Actions.SetActiveVersion(r.FormValue("version")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, r, core.ErrInvalidPayload, http.StatusBadRequest)
		return
	}

	form := core.EditForm{
		Version:     r.PostForm.Get("version"),
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Brand:       r.PostForm.Get("brand"),
		Category:    r.PostForm.Get("category"),
		CategoryID:  r.PostForm.Get("category_id"),
	}
	if r.PostForm.Has("price") {
		price := r.PostForm.Get("price")
		form.Price = &price
	}

	if err := sess.Actions.ApplyEdit(form); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleAddImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := sess.Actions.AddImage(r.FormValue("version"), r.FormValue("url")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		respondError(w, r, core.ErrInvalidPayload, http.StatusBadRequest)
		return
	}
	if err := sess.Actions.RemoveImage(r.FormValue("version"), index); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := sess.Actions.SaveEdits(requestContext(r)); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, r, core.ErrInvalidPayload, http.StatusBadRequest)
		return
	}

	title, err := sess.Actions.GenerateTitle(requestContext(r), r.PostForm["competitor"])
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if isHTMX(r) {
		rerender(w, r, sess)
		return
	}
	writeJSON(w, map[string]string{"title": title})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	if err := sess.Actions.Translate(requestContext(r), r.FormValue("language")); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	actionDone(w, r, sess)
}

func (s *Server) handleCompetition(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}
	data, err := sess.Actions.Competition(requestContext(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		views.Competition(data).Render(r.Context(), w)
		return
	}
	writeJSON(w, data)
}

// handleImport forwards the zip and pdf parts to the upload automation.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	limit := s.cfg.Server.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, r, core.ErrMissingFiles, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files [2]webhook.File
	for i, name := range []string{"zip", "pdf"} {
		f, header, err := r.FormFile(name)
		if err != nil {
			respondError(w, r, core.ErrMissingFiles, http.StatusBadRequest)
			return
		}
		defer f.Close()
		files[i] = webhook.File{Name: header.Filename, Reader: f, Size: header.Size}
	}

	if err := sess.Actions.Import(requestContext(r), files[0], files[1]); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		views.Notice("Fișierele au fost trimise pentru import.").Render(r.Context(), w)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
