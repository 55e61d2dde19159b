package http

import (
	"bytes"
	"net/http"

	"fintrack/internal/backup"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	doc := backup.Export(s.svc.Snapshot(), now)

	var buf bytes.Buffer
	if err := backup.Write(&buf, doc); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.Filename(now)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger exported",
		log.FieldOperation, log.OpExport,
		"accounts", len(doc.Accounts),
		"expenses", len(doc.Expenses))
}

// handleImport replaces the ledger with a backup document. Presets and
// settings missing from the document keep their current values.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	doc, err := backup.Decode(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Import(r.Context(), backup.Apply(doc, s.svc.Snapshot())); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Changed(services.EntityLedger, log.OpImport, 0).
		Body(s.svc.Snapshot()).
		Write(w)
}
