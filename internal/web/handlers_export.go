package web

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
)

// handleExportCSV downloads the last export that passed validation. The
// export is cleared by any later export run that is blocked or empty.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := session(w, r)
	if !ok {
		return
	}

	data, ok := sess.State.LastExport()
	if !ok {
		respondError(w, r, core.ErrEmptyExport, http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := core.WriteCSV(&buf, data.Records); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	filename := fmt.Sprintf("export_%s_%s_%s.csv", data.OrderID, data.Mode, data.CreatedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export download interrupted", "error", err)
		return
	}

	logging.FromContext(r.Context()).Info("export downloaded",
		"order", data.OrderID, "mode", data.Mode, "rows", len(data.Records))
}
