package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/extractify/internal/events"
	"github.com/MikeSquared-Agency/extractify/internal/fields"
	"github.com/MikeSquared-Agency/extractify/internal/store"
)

const (
	previewLength = 100
	// MethodProvided marks fields supplied by the client instead of extracted.
	MethodProvided = "provided"
)

type extractedFields struct {
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ZipCode      string `json:"zipCode"`
	OrderID      string `json:"orderId"`
	CustomerName string `json:"customerName"`
}

type conversationView struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Content          string          `json:"content"`
	FileName         *string         `json:"fileName"`
	CreatedAt        string          `json:"createdAt"`
	Date             string          `json:"date"`
	Preview          string          `json:"preview"`
	ExtractedFields  extractedFields `json:"extractedFields"`
	Metadata         json.RawMessage `json:"metadata"`
	ExtractionMethod string          `json:"extractionMethod"`
}

func toView(c store.Conversation) conversationView {
	metadata := c.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}
	return conversationView{
		ID:        c.ID,
		Title:     c.Title,
		Content:   c.Content,
		FileName:  c.FileName,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		Date:      c.CreatedAt.UTC().Format("2006-01-02"),
		Preview:   preview(c.Content),
		ExtractedFields: extractedFields{
			Email:        c.Fields.Email,
			Phone:        c.Fields.Phone,
			ZipCode:      c.Fields.ZipCode,
			OrderID:      c.Fields.OrderID,
			CustomerName: c.Fields.CustomerName,
		},
		Metadata:         metadata,
		ExtractionMethod: c.ExtractionMethod,
	}
}

// preview keeps the first 100 characters, marking truncation with "...".
func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	return string([]rune(content)[:previewLength]) + "..."
}

// listConversations handles GET /conversations.
func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.store.ListConversations(r.Context())
	if err != nil {
		s.logger.Error("list conversations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	views := make([]conversationView, len(convs))
	for i, c := range convs {
		views[i] = toView(c)
	}
	writeJSON(w, http.StatusOK, views)
}

// getConversation handles GET /conversations/{id}.
func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetConversation(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("get conversation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}
	writeJSON(w, http.StatusOK, toView(c))
}

type createConversationRequest struct {
	Title           *string           `json:"title"`
	Content         *string           `json:"content"`
	FileName        string            `json:"fileName"`
	ExtractedFields map[string]string `json:"extractedFields"`
}

// createConversation handles POST /conversations. Pre-extracted fields are
// stored as given; otherwise the content is run through the extractor.
func (s *Server) createConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if req.Title == nil || req.Content == nil {
		writeError(w, http.StatusUnprocessableEntity, "title and content are required")
		return
	}

	nc := store.NewConversation{
		Title:    *req.Title,
		Content:  *req.Content,
		FileName: req.FileName,
	}
	if len(req.ExtractedFields) > 0 {
		nc.Fields = providedFields(func(name string) (any, bool) {
			v, ok := req.ExtractedFields[name]
			return v, ok
		})
		nc.ExtractionMethod = MethodProvided
	} else {
		x := s.extractor.Extract(r.Context(), nc.Content, nc.FileName)
		nc.Fields = x.Fields()
		nc.Metadata = x.Metadata
		nc.ExtractionMethod = x.Metadata.ExtractionMethod
	}

	saved, ok := s.save(w, r, nc)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toView(saved))
}

type bulkSaveRequest struct {
	FileName      string           `json:"fileName"`
	Conversations []map[string]any `json:"conversations"`
}

// bulkSave handles POST /conversations/bulk-save with results from
// /extract-bulk.
func (s *Server) bulkSave(w http.ResponseWriter, r *http.Request) {
	var req bulkSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	saved := make([]conversationView, 0, len(req.Conversations))
	for idx, item := range req.Conversations {
		n := idx + 1
		nc := store.NewConversation{
			Title:            fmt.Sprintf("%s - Conversation %d", req.FileName, n),
			Content:          fmt.Sprintf("Conversation %d from %s", n, req.FileName),
			FileName:         req.FileName,
			ExtractionMethod: MethodProvided,
			Fields: providedFields(func(name string) (any, bool) {
				v, ok := item[name]
				return v, ok
			}),
		}
		if content, ok := item["content"].(string); ok && content != "" {
			nc.Content = content
		}
		if meta, ok := item["metadata"].(map[string]any); ok {
			nc.Metadata = meta
			if m, ok := meta["extractionMethod"].(string); ok && m != "" {
				nc.ExtractionMethod = m
			}
		}

		c, ok := s.save(w, r, nc)
		if !ok {
			return
		}
		saved = append(saved, toView(c))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"saved":         len(saved),
		"conversations": saved,
	})
}

// deleteConversation handles DELETE /conversations/{id}.
func (s *Server) deleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.DeleteConversation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("delete conversation failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	if err := s.events.Publish(events.SubjectConversationDeleted, events.ConversationDeleted{
		ID:        id,
		DeletedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to publish conversation deleted", "id", id, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// save persists a conversation and announces it, writing the error response
// itself on failure.
func (s *Server) save(w http.ResponseWriter, r *http.Request, nc store.NewConversation) (store.Conversation, bool) {
	saved, err := s.store.SaveConversation(r.Context(), nc)
	if err != nil {
		s.logger.Error("save conversation failed", "title", nc.Title, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save conversation")
		return store.Conversation{}, false
	}

	var found []string
	for _, name := range fields.Names {
		if saved.Fields.Get(name) != fields.NA {
			found = append(found, name)
		}
	}
	if err := s.events.Publish(events.SubjectConversationSaved, events.ConversationSaved{
		ID:               saved.ID,
		Title:            saved.Title,
		FileName:         nc.FileName,
		ExtractionMethod: saved.ExtractionMethod,
		FieldsFound:      found,
		CreatedAt:        saved.CreatedAt,
	}); err != nil {
		s.logger.Warn("failed to publish conversation saved", "id", saved.ID, "error", err)
	}

	s.logger.Info("conversation saved", "id", saved.ID, "method", saved.ExtractionMethod, "fields_found", len(found))
	return saved, true
}

// providedFields builds a result from client-supplied values. Missing or
// blank values become NA and non-strings are rendered as text.
func providedFields(get func(name string) (any, bool)) fields.Result {
	value := func(name string) string {
		v, ok := get(name)
		if !ok || v == nil {
			return fields.NA
		}
		s := fmt.Sprint(v)
		if f, isNum := v.(float64); isNum {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
		if s == "" {
			return fields.NA
		}
		return s
	}
	return fields.Result{
		Email:        value("email"),
		Phone:        value("phone"),
		ZipCode:      value("zipCode"),
		OrderID:      value("orderId"),
		CustomerName: value("customerName"),
	}
}
