// Package nlu holds the text heuristics that ground free-form chat against
// the slot inventory. Everything here is deliberately simple substring and
// token matching; the TextMatcher interface exists so a real NLP
// implementation can replace it without touching the store or coordinator.
package nlu

import (
	"strings"
	"time"

	"github.com/clinicdesk/appointment-ai/internal/slots"
)

// Hints is an optional (doctor, date) filter pair extracted from one
// user utterance. Empty string means the hint is absent.
type Hints struct {
	Doctor string
	Date   string
}

// TextMatcher extracts slot filters from user text and grounds assistant
// replies back against a candidate slot list.
type TextMatcher interface {
	ExtractHints(text string) Hints
	MatchSlots(reply string, candidates []slots.Slot) []slots.Slot
}

// HeuristicMatcher is the shipped TextMatcher: whitespace tokenization,
// "dr." prefixes and ISO dates for hints, verbatim three-way substring
// containment for matching.
type HeuristicMatcher struct{}

var _ TextMatcher = HeuristicMatcher{}

// ExtractHints tokenizes on whitespace. A token starting with "dr."
// (case-insensitive) is a doctor hint; when the token is the bare honorific
// the following token is the surname and joins the hint, so "Dr. Chen"
// survives tokenization intact. A token parsing as YYYY-MM-DD is a date
// hint. The last valid token of each kind wins. Malformed date tokens are
// skipped, never an error.
func (HeuristicMatcher) ExtractHints(text string) Hints {
	var h Hints
	tokens := strings.Fields(text)
	for i, token := range tokens {
		lower := strings.ToLower(token)
		if strings.HasPrefix(lower, "dr.") {
			if lower == "dr." && i+1 < len(tokens) {
				h.Doctor = token + " " + tokens[i+1]
			} else {
				h.Doctor = token
			}
		}
		if t, err := time.Parse("2006-01-02", token); err == nil {
			h.Date = t.Format("2006-01-02")
		}
	}
	return h
}

// MatchSlots returns the candidates whose doctor, date and time all appear
// verbatim as substrings of the reply. Biased toward false negatives:
// a paraphrased or partial mention must not trigger a booking offer.
func (HeuristicMatcher) MatchSlots(reply string, candidates []slots.Slot) []slots.Slot {
	matched := []slots.Slot{}
	for _, slot := range candidates {
		if strings.Contains(reply, slot.Doctor) &&
			strings.Contains(reply, slot.Date) &&
			strings.Contains(reply, slot.Time) {
			matched = append(matched, slot)
		}
	}
	return matched
}

// HasBookingIntent reports whether the assistant reply signals a booking.
// Intent is a separate gate from slot eligibility: a reply must both carry
// intent and match a candidate before a confirmation is offered.
func HasBookingIntent(reply string) bool {
	return strings.Contains(strings.ToLower(reply), "book")
}
