package extractor

import "github.com/MikeSquared-Agency/extractify/internal/fields"

const (
	MethodHybrid = "hybrid"
	MethodRegex  = "regex"
)

// LLMFields is the reply shape requested from the model.
type LLMFields struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	ZipCode string `json:"zipCode"`
	OrderID string `json:"orderId"`
}

func emptyLLMFields() LLMFields {
	return LLMFields{Email: fields.NA, Phone: fields.NA, ZipCode: fields.NA, OrderID: fields.NA}
}

func (l LLMFields) get(name string) string {
	switch name {
	case "email":
		return l.Email
	case "phone":
		return l.Phone
	case "zipCode":
		return l.ZipCode
	case "orderId":
		return l.OrderID
	}
	return fields.NA
}

// Metadata describes how an extraction was produced. The bulk keys are only
// set for conversations that came out of a bulk upload.
type Metadata struct {
	FileName         string        `json:"fileName"`
	ProcessedAt      string        `json:"processedAt"`
	TextLength       int           `json:"textLength"`
	ExtractionMethod string        `json:"extractionMethod"`
	RegexResults     fields.Result `json:"regexResults"`
	LLMResults       *LLMFields    `json:"llmResults"`

	ConversationID  string `json:"conversationId,omitempty"`
	HasScenarioData *bool  `json:"hasScenarioData,omitempty"`
	Flow            string `json:"flow,omitempty"`
	Subflow         string `json:"subflow,omitempty"`
	Category        string `json:"category,omitempty"`
}

// Extraction is the merged result for one conversation.
type Extraction struct {
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	ZipCode      string   `json:"zipCode"`
	OrderID      string   `json:"orderId"`
	CustomerName string   `json:"customerName"`
	Metadata     Metadata `json:"metadata"`
}

// Fields returns the extracted values without metadata.
func (x Extraction) Fields() fields.Result {
	return fields.Result{
		Email:        x.Email,
		Phone:        x.Phone,
		ZipCode:      x.ZipCode,
		OrderID:      x.OrderID,
		CustomerName: x.CustomerName,
	}
}
