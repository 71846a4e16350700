package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

// Exports render into a buffer first so a failure can still become a JSON
// error instead of a truncated download.

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.Views.History(r.Context(), userID(r), criteriaFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, h.Transactions); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	writeDownload(w, "text/csv; charset=utf-8", "transactions.csv", buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	h, err := s.deps.Views.History(r.Context(), userID(r), criteriaFromQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, h.Transactions, h.Summary, export.PDFOptions{CreatedAt: time.Now()}); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	writeDownload(w, "application/pdf", "transactions.pdf", buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseChartKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, r, applog.OpRender, err)
		return
	}
	d, err := s.deps.Views.Dashboard(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, applog.OpRender, err)
		return
	}
	var buf bytes.Buffer
	if err := export.RenderChart(&buf, d.Months, kind); err != nil {
		writeError(w, r, applog.OpRender, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
