package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MikeSquared-Agency/extractify/internal/bulk"
	"github.com/MikeSquared-Agency/extractify/internal/events"
	"github.com/MikeSquared-Agency/extractify/internal/fields"
)

type extractRequest struct {
	Text     *string `json:"text"`
	FileName string  `json:"fileName"`
}

func decodeExtractRequest(w http.ResponseWriter, r *http.Request) (extractRequest, bool) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return req, false
	}
	if req.Text == nil {
		writeError(w, http.StatusUnprocessableEntity, "text is required")
		return req, false
	}
	return req, true
}

// extract handles POST /extract.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExtractRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.extractor.Extract(r.Context(), *req.Text, req.FileName))
}

// extractBulk handles POST /extract-bulk.
func (s *Server) extractBulk(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExtractRequest(w, r)
	if !ok {
		return
	}

	batch, err := bulk.Parse(*req.Text, req.FileName)
	if err != nil {
		s.logger.Warn("bulk parse failed", "file_name", req.FileName, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.bulk.Run(r.Context(), batch)
	if err != nil {
		s.logger.Error("bulk extraction failed", "file_name", req.FileName, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	found := make(map[string]int, len(fields.Names))
	for _, c := range resp.Conversations {
		f := c.Fields()
		for _, name := range fields.Names {
			if f.Get(name) != fields.NA {
				found[name]++
			}
		}
	}
	if err := s.events.Publish(events.SubjectBulkCompleted, events.BulkCompleted{
		FileName: req.FileName,
		Format:   string(resp.Format),
		Total:    resp.Total,
		Dataset:  resp.Dataset,
		Summary:  resp.Summary,
		Fields:   found,
	}); err != nil {
		s.logger.Warn("failed to publish bulk completion", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}
