package api

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

var exportColumns = []string{
	"id", "title", "fileName", "createdAt",
	"email", "phone", "zipCode", "orderId", "customerName",
	"extractionMethod",
}

// exportConversations handles GET /conversations/export?format=csv|json.
func (s *Server) exportConversations(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	convs, err := s.store.ListConversations(r.Context())
	if err != nil {
		s.logger.Error("export conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	name := fmt.Sprintf("extractify_conversations_%s.%s", time.Now().UTC().Format("20060102"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if format == "json" {
		views := make([]conversationView, len(convs))
		for i, c := range convs {
			views[i] = toView(c)
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.Encode(views)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	cw := csv.NewWriter(w)
	cw.Write(exportColumns)
	for _, c := range convs {
		v := toView(c)
		fileName := ""
		if v.FileName != nil {
			fileName = *v.FileName
		}
		cw.Write([]string{
			v.ID, v.Title, fileName, v.CreatedAt,
			v.ExtractedFields.Email, v.ExtractedFields.Phone, v.ExtractedFields.ZipCode,
			v.ExtractedFields.OrderID, v.ExtractedFields.CustomerName,
			v.ExtractionMethod,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn("csv export write failed", "error", err)
	}
}
