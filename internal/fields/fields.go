// Package fields pulls contact and order details out of free-form
// customer-service conversation text using ordered regex rules.
//
// Each field is resolved independently: the first candidate that survives
// its context checks wins, and a field with no candidate is NA. Nothing in
// this package returns an error or keeps state between calls.
package fields

import (
	"regexp"
	"strings"
)

const (
	contextBefore    = 50
	phoneAfter       = 30
	contextAfter     = 50
	surroundRadius   = 10
	accountRadius    = 5
	orderFollowRange = 100
)

// Extractor applies the field rules for one Profile.
type Extractor struct {
	profile       Profile
	phonePatterns []*regexp.Regexp
}

var defaultExtractor = New(ProfileStrict)

// New returns an Extractor for the given profile.
func New(profile Profile) *Extractor {
	e := &Extractor{profile: profile, phonePatterns: []*regexp.Regexp{bracketedPhone}}
	if profile == ProfileExtended {
		e.phonePatterns = append(e.phonePatterns, dashedPhone, dottedPhone, spacedPhone)
	}
	return e
}

// Extract runs the strict profile over text.
func Extract(text string) Result {
	return defaultExtractor.Extract(text)
}

// Profile reports which rule profile e applies.
func (e *Extractor) Profile() Profile {
	return e.profile
}

// Extract resolves every field of text.
func (e *Extractor) Extract(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Empty()
	}
	return Result{
		Email:        Email(text),
		Phone:        e.Phone(text),
		ZipCode:      ZipCode(text),
		OrderID:      OrderID(text),
		CustomerName: CustomerName(text),
	}
}

// Email returns the first address-shaped token with non-empty local and
// domain parts. Trailing sentence punctuation is dropped.
func Email(text string) string {
	for _, m := range emailPattern.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".-")
		at := strings.IndexByte(m, '@')
		if at <= 0 || at == len(m)-1 {
			continue
		}
		return m
	}
	return NA
}

// Phone returns the first phone number normalized to NNN-NNN-NNNN. A number
// whose preceding window ends in an order mention is skipped.
func (e *Extractor) Phone(text string) string {
	for _, re := range e.phonePatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			before := lowerBefore(text, m[0], contextBefore)
			if orderContext(before) {
				continue
			}
			if re != bracketedPhone {
				after := lowerAfter(text, m[1], phoneAfter)
				if !phoneKeyword.MatchString(before) && !phoneKeyword.MatchString(after) {
					continue
				}
			}
			return text[m[2]:m[3]] + "-" + text[m[4]:m[5]] + "-" + text[m[6]:m[7]]
		}
	}
	return NA
}

// ZipCode prefers an explicit "zip" mention, then ZIP+4, then the ZIP at
// the end of a street address, then any isolated 5-digit number that is not
// part of a phone or order reference.
func ZipCode(text string) string {
	if m := zipKeyword.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := zipPlusFour.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := addressZip.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	for _, m := range isolatedFive.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		surrounding := window(text, start, end, surroundRadius)
		if bracketedAreaCode.MatchString(surrounding) {
			continue
		}
		if orderReference.MatchString(lowerBefore(text, start, contextBefore)) {
			continue
		}
		if longDigitRun.MatchString(surrounding) {
			continue
		}
		return text[start:end]
	}
	return NA
}

// OrderID prefers a number introduced by "order id", "order number",
// "order #" or "order", then a number shortly after such a mention, then a
// bare 9+ digit token that is not a phone.
func OrderID(text string) string {
	for _, re := range orderIDPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if accountShape.MatchString(window(text, m[0], m[1], accountRadius)) {
				continue
			}
			return text[m[2]:m[3]]
		}
	}

	for _, m := range orderIDMention.FindAllStringIndex(text, -1) {
		follow := text[m[1]:min(len(text), m[1]+orderFollowRange)]
		n := boundedSixPlus.FindStringSubmatchIndex(follow)
		if n == nil {
			continue
		}
		check := text[m[1]:min(len(text), m[1]+n[1]+surroundRadius)]
		if !accountShape.MatchString(check) {
			return follow[n[2]:n[3]]
		}
	}

	for _, m := range boundedNinePlus.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		number := text[start:end]
		surrounding := window(text, start, end, surroundRadius)
		if bracketedAreaCode.MatchString(surrounding) || separatedPhone.MatchString(surrounding) {
			continue
		}

		before := lowerBefore(text, start, contextBefore)
		after := lowerAfter(text, end, contextAfter)
		orderNearby := strings.Contains(before, "order") || strings.Contains(after, "order")

		if containsAny(before, phoneTelKeywords) || containsAny(after, phoneTelKeywords) {
			if strings.Contains(before, "order") {
				return number
			}
			continue
		}
		if orderNearby {
			return number
		}
		// A bare 10-digit number is as likely a phone as an order.
		if len(number) == 10 {
			continue
		}
		return number
	}
	return NA
}

// CustomerName finds a self-introduction such as "my name is Jane Doe".
func CustomerName(text string) string {
	for _, re := range namePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		words := strings.Fields(capitalizeWords(m[1]))
		if nameStopWords[words[0]] {
			continue
		}
		if len(words) == 2 && nameStopWords[words[1]] {
			words = words[:1]
		}
		name := strings.Join(words, " ")
		if len(name) <= 30 && !strings.ContainsAny(name, "0123456789") {
			return name
		}
	}
	return NA
}

// orderContext reports whether the window ends in an order mention with no
// phone cue after it.
func orderContext(before string) bool {
	mentions := orderMention.FindAllStringIndex(before, -1)
	if len(mentions) == 0 {
		return false
	}
	last := mentions[len(mentions)-1][1]
	return !phoneCue.MatchString(before[last:])
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func lowerBefore(text string, start, n int) string {
	return strings.ToLower(text[max(0, start-n):start])
}

func lowerAfter(text string, end, n int) string {
	return strings.ToLower(text[end:min(len(text), end+n)])
}

func window(text string, start, end, radius int) string {
	return text[max(0, start-radius):min(len(text), end+radius)]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
