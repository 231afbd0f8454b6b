package fields

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+`)

	bracketedPhone = regexp.MustCompile(`\((\d{3})\)\s*(\d{3})[-.\s]?(\d{4})`)
	dashedPhone    = regexp.MustCompile(`\b(\d{3})-(\d{3})-(\d{4})\b`)
	dottedPhone    = regexp.MustCompile(`\b(\d{3})\.(\d{3})\.(\d{4})\b`)
	spacedPhone    = regexp.MustCompile(`\b(\d{3})\s(\d{3})\s(\d{4})\b`)

	// Matched against lowercased context windows.
	orderMention   = regexp.MustCompile(`order(?:\s*(?:id|number|#|:))?`)
	orderReference = regexp.MustCompile(`order\s+(?:id|number|#)`)
	phoneCue       = regexp.MustCompile(`phone|call|contact|reach|mobile|cell|number`)
	phoneKeyword   = regexp.MustCompile(`phone|call|contact|reach|mobile|cell`)

	bracketedAreaCode = regexp.MustCompile(`\(\d{3}\)`)
	separatedPhone    = regexp.MustCompile(`\d{3}[-.\s]\d{3}[-.\s]\d{4}`)
	longDigitRun      = regexp.MustCompile(`\d{6,}`)
	accountShape      = regexp.MustCompile(`[A-Za-z]\d{6,}|\d{6,}[A-Za-z]`)

	zipKeyword   = regexp.MustCompile(`(?i)\bzip\s*(?:code)?\s*(?:is|:|#)?\s*(\d{5}(?:-\d{4})?)\b`)
	zipPlusFour  = regexp.MustCompile(`\b(\d{5}-\d{4})\b`)
	addressZip   = regexp.MustCompile(`(?i)\b(?:street|ave|avenue|road|rd|drive|dr|blvd|boulevard|way|ln|lane|st|circle)\b\.?[^,]*,\s*[^,]+,\s*[a-z]{2}\s+(\d{5})\b`)
	isolatedFive = regexp.MustCompile(`\b(\d{5})\b`)

	orderIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)order\s+id\.?\s*(?:it\s+is|is|:)\s*(\d{6,})`),
		regexp.MustCompile(`(?i)order\s+id\.?\s*:?\s*(\d{6,})`),
		regexp.MustCompile(`(?i)order\s+number\.?\s*(?:it\s+is|is|:)?\s*(\d{6,})`),
		regexp.MustCompile(`(?i)order\s+#\s*(\d{6,})`),
		regexp.MustCompile(`(?i)order\s+(\d{6,})`),
	}
	orderIDMention  = regexp.MustCompile(`(?i)order\s+(?:id|number|#)`)
	boundedSixPlus  = regexp.MustCompile(`\b(\d{6,})\b`)
	boundedNinePlus = regexp.MustCompile(`\b(\d{9,})\b`)

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)\b(?:my name is|i'm|i am|this is|name's|name is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		regexp.MustCompile(`(?im)\b(?:call me|it's|its)\s+([A-Z][a-z]+)`),
		regexp.MustCompile(`(?im)^(?:hi|hello|hey)[,!]?\s+(?:this is\s+)?([A-Z][a-z]+)`),
		regexp.MustCompile(`(?im)\b(?:customer|user|caller):\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
	}
)

// Leading words the name patterns pick up from ordinary sentences.
// The patterns match case-insensitively, so any word can land here.
var nameStopWords = map[string]bool{
	"A": true, "About": true, "Actually": true, "Afraid": true, "Also": true,
	"An": true, "And": true, "Are": true, "Asking": true, "At": true,
	"Back": true, "Busy": true, "Calling": true, "Concerned": true,
	"Confused": true, "Fine": true, "For": true, "From": true,
	"Getting": true, "Glad": true, "Going": true, "Good": true,
	"Happy": true, "Having": true, "Here": true, "Hoping": true, "In": true,
	"Interested": true, "Is": true, "It": true, "Just": true,
	"Looking": true, "My": true, "No": true, "Not": true, "Now": true,
	"Of": true, "Ok": true, "Okay": true, "On": true, "Really": true,
	"So": true, "Sorry": true, "Still": true, "Sure": true, "That": true,
	"The": true, "There": true, "To": true, "Trying": true, "Up": true,
	"Very": true, "Waiting": true, "Wanting": true, "Was": true,
	"With": true, "Wondering": true, "Worried": true, "Yes": true,
	"Your": true,
}

// phoneTelKeywords tie a bare long number to a phone rather than an order.
var phoneTelKeywords = []string{"phone", "call", "contact", "telephone"}
