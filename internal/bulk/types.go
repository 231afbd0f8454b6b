package bulk

import "github.com/MikeSquared-Agency/extractify/internal/extractor"

// Format names the layout detected for an upload.
type Format string

const (
	FormatABCD  Format = "abcd"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatText  Format = "text"
)

// DatasetABCD labels responses for the ABCD customer-service corpus.
const DatasetABCD = "ABCD v1.1"

// Item is one conversation cut out of an upload.
type Item struct {
	Ref  string // passed to the extractor as the file name
	Text string

	// ABCD only.
	ConversationID string
	HasScenario    bool
	Scenario       *Scenario
}

// Scenario is the structured customer record attached to an ABCD dialogue.
type Scenario struct {
	Flow     string
	Subflow  string
	HasFlow  bool
	Personal map[string]any
	Order    map[string]any
}

// Batch is the parsed form of an upload.
type Batch struct {
	Format Format
	Items  []Item
}

// Response is returned by the bulk extraction endpoint and CLI.
type Response struct {
	Conversations []extractor.Extraction `json:"conversations"`
	Total         int                    `json:"total"`
	Format        Format                 `json:"format"`
	Dataset       string                 `json:"dataset,omitempty"`
	Summary       string                 `json:"summary,omitempty"`
	Categories    map[string]int         `json:"categories,omitempty"`
}
