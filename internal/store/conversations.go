package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/extractify/internal/fields"
)

// NewConversation is a conversation and its extracted fields ready to save.
type NewConversation struct {
	Title            string
	Content          string
	FileName         string
	Fields           fields.Result
	Metadata         any // encoded as jsonb; nil stores {}
	ExtractionMethod string
}

// Conversation is a stored conversation joined with its extracted fields.
type Conversation struct {
	ID               string
	Title            string
	Content          string
	FileName         *string
	CreatedAt        time.Time
	Fields           fields.Result
	Metadata         json.RawMessage
	ExtractionMethod string
}

// NewID returns an identifier of the form conv_<unix>_<8 hex>.
func NewID(now time.Time) string {
	return fmt.Sprintf("conv_%d_%s", now.Unix(), uuid.NewString()[:8])
}

// SaveConversation writes the conversation and its fields in one transaction.
func (s *Store) SaveConversation(ctx context.Context, c NewConversation) (Conversation, error) {
	metadata := []byte("{}")
	if c.Metadata != nil {
		b, err := json.Marshal(c.Metadata)
		if err != nil {
			return Conversation{}, fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = b
	}

	var fileName *string
	if c.FileName != "" {
		fileName = &c.FileName
	}

	now := time.Now().UTC()
	id := NewID(now)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Conversation{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, title, content, file_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		id, c.Title, c.Content, fileName, now,
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("insert conversation: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO extracted_fields (conversation_id, email, phone, zip_code, order_id, customer_name, metadata, extraction_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, c.Fields.Email, c.Fields.Phone, c.Fields.ZipCode, c.Fields.OrderID, c.Fields.CustomerName, metadata, c.ExtractionMethod,
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("insert extracted fields: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Conversation{}, fmt.Errorf("commit: %w", err)
	}

	return Conversation{
		ID:               id,
		Title:            c.Title,
		Content:          c.Content,
		FileName:         fileName,
		CreatedAt:        now,
		Fields:           c.Fields,
		Metadata:         metadata,
		ExtractionMethod: c.ExtractionMethod,
	}, nil
}

const selectConversation = `
	SELECT c.id, c.title, c.content, c.file_name, c.created_at,
	       ef.email, ef.phone, ef.zip_code, ef.order_id, ef.customer_name, ef.metadata, ef.extraction_method
	FROM conversations c
	LEFT JOIN extracted_fields ef ON ef.conversation_id = c.id`

// ListConversations returns every conversation, newest first.
func (s *Store) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.pool.Query(ctx, selectConversation+`
	ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

// GetConversation fetches one conversation by ID.
func (s *Store) GetConversation(ctx context.Context, id string) (Conversation, error) {
	row := s.pool.QueryRow(ctx, selectConversation+`
	WHERE c.id = $1`, id)

	c, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

// DeleteConversation removes a conversation and its extracted fields.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM extracted_fields WHERE conversation_id = $1`, id); err != nil {
		return fmt.Errorf("delete extracted fields: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func scanConversation(row pgx.Row) (Conversation, error) {
	var c Conversation
	var email, phone, zipCode, orderID, customer, method *string
	var metadata []byte
	err := row.Scan(&c.ID, &c.Title, &c.Content, &c.FileName, &c.CreatedAt,
		&email, &phone, &zipCode, &orderID, &customer, &metadata, &method)
	if err != nil {
		return Conversation{}, err
	}

	c.Fields = fields.Result{
		Email:        orNA(email),
		Phone:        orNA(phone),
		ZipCode:      orNA(zipCode),
		OrderID:      orNA(orderID),
		CustomerName: orNA(customer),
	}
	c.Metadata = json.RawMessage("{}")
	if len(metadata) > 0 {
		c.Metadata = metadata
	}
	c.ExtractionMethod = "unknown"
	if method != nil && *method != "" {
		c.ExtractionMethod = *method
	}
	return c, nil
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return fields.NA
	}
	return *s
}
