package events

import "time"

const (
	SubjectConversationSaved   = "extractify.conversation.saved"
	SubjectConversationDeleted = "extractify.conversation.deleted"
	SubjectBulkCompleted       = "extractify.bulk.completed"
)

// Publisher sends an event payload on a subject. *Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }

// ConversationSaved is emitted after a conversation is persisted.
type ConversationSaved struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	FileName         string    `json:"file_name,omitempty"`
	ExtractionMethod string    `json:"extraction_method"`
	FieldsFound      []string  `json:"fields_found"`
	CreatedAt        time.Time `json:"created_at"`
}

// ConversationDeleted is emitted after a conversation is removed.
type ConversationDeleted struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// BulkCompleted is emitted when a bulk extraction request finishes.
type BulkCompleted struct {
	FileName string         `json:"file_name,omitempty"`
	Format   string         `json:"format"`
	Total    int            `json:"total"`
	Dataset  string         `json:"dataset,omitempty"`
	Summary  string         `json:"summary,omitempty"`
	Fields   map[string]int `json:"fields_found"`
}
