package bulk

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MikeSquared-Agency/extractify/internal/extractor"
	"github.com/MikeSquared-Agency/extractify/internal/fields"
	"github.com/MikeSquared-Agency/extractify/internal/metrics"
)

const unknownFlow = "unknown"

// Runner extracts every conversation in a batch, one after another.
type Runner struct {
	extractor *extractor.Extractor
	logger    *slog.Logger
}

func NewRunner(ext *extractor.Extractor, logger *slog.Logger) *Runner {
	return &Runner{extractor: ext, logger: logger}
}

// Run extracts each item in order. ABCD items are backfilled from their
// scenario record and summarised by flow.
func (r *Runner) Run(ctx context.Context, batch Batch) (Response, error) {
	resp := Response{
		Conversations: make([]extractor.Extraction, 0, len(batch.Items)),
		Format:        batch.Format,
	}

	var flows []string
	counts := make(map[string]int)

	for _, item := range batch.Items {
		if err := ctx.Err(); err != nil {
			return Response{}, fmt.Errorf("bulk extraction: %w", err)
		}

		x := r.extractor.Extract(ctx, item.Text, item.Ref)

		if batch.Format == FormatABCD {
			applyScenario(&x, item)
			flow := unknownFlow
			if item.Scenario != nil {
				flow = x.Metadata.Flow
			}
			if _, seen := counts[flow]; !seen {
				flows = append(flows, flow)
			}
			counts[flow]++
		}

		resp.Conversations = append(resp.Conversations, x)
	}
	resp.Total = len(resp.Conversations)

	if batch.Format == FormatABCD {
		resp.Dataset = DatasetABCD
		resp.Categories = counts
		parts := make([]string, len(flows))
		for i, f := range flows {
			parts[i] = fmt.Sprintf("%d %s", counts[f], strings.ReplaceAll(f, "_", " "))
		}
		resp.Summary = strings.Join(parts, ", ")
	}

	r.logger.Info("bulk extraction complete",
		"format", batch.Format,
		"total", resp.Total,
	)

	return resp, nil
}

// applyScenario fills fields the text did not yield from the ABCD scenario
// and records the conversation's flow in the metadata.
func applyScenario(x *extractor.Extraction, item Item) {
	x.Metadata.ConversationID = item.ConversationID
	has := item.HasScenario
	x.Metadata.HasScenarioData = &has

	sc := item.Scenario
	if sc == nil {
		return
	}

	backfill(&x.Phone, "phone", sc.Personal["phone"])
	backfill(&x.Email, "email", sc.Personal["email"])
	backfill(&x.ZipCode, "zipCode", sc.Order["zip_code"])
	backfill(&x.OrderID, "orderId", sc.Order["order_id"])

	x.Metadata.Flow = unknownFlow
	if sc.HasFlow {
		x.Metadata.Flow = sc.Flow
	}
	x.Metadata.Subflow = sc.Subflow
	x.Metadata.Category = category(sc.Flow, sc.Subflow)
}

func backfill(dst *string, field string, v any) {
	if *dst != fields.NA {
		return
	}
	s := truthyString(v)
	if s == "" {
		return
	}
	*dst = s
	metrics.RecordFieldFound(field, "scenario")
}

func truthyString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// category renders "Flow - Subflow" in title case, e.g.
// "storewide_query", "pricing" becomes "Storewide Query - Pricing".
func category(flow, subflow string) string {
	caser := cases.Title(language.English)
	c := caser.String(strings.ReplaceAll(flow, "_", " "))
	if subflow == "" {
		return c
	}
	return c + " - " + caser.String(strings.ReplaceAll(subflow, "_", " "))
}
