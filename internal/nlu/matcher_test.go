package nlu

import (
	"testing"

	"github.com/clinicdesk/appointment-ai/internal/slots"
)

func TestExtractHints(t *testing.T) {
	m := HeuristicMatcher{}

	tests := []struct {
		name       string
		text       string
		wantDoctor string
		wantDate   string
	}{
		{"doctor and date", "I want Dr. Chen on 2025-08-25", "Dr. Chen", "2025-08-25"},
		{"doctor only", "anything with Dr. Brown please", "Dr. Brown", ""},
		{"date only", "what about 2025-08-23?", "", "2025-08-23"},
		{"neither", "show me some open appointments", "", ""},
		{"case-insensitive prefix", "can I see DR. Lee", "DR. Lee", ""},
		{"attached surname", "is Dr.Smith around?", "Dr.Smith", ""},
		{"bare honorific at end", "I need a dr.", "dr.", ""},
		{"last doctor wins", "not Dr. Chen, Dr. Lee instead", "Dr. Lee", ""},
		{"last date wins", "not 2025-08-23 but 2025-08-24", "", "2025-08-24"},
		{"malformed dates skipped", "maybe 2025-13-99 or 2025/08/23", "", ""},
		{"drive is not a doctor", "I will drive there", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ExtractHints(tt.text)
			if got.Doctor != tt.wantDoctor {
				t.Errorf("doctor hint = %q, want %q", got.Doctor, tt.wantDoctor)
			}
			if got.Date != tt.wantDate {
				t.Errorf("date hint = %q, want %q", got.Date, tt.wantDate)
			}
		})
	}
}

func TestExtractHintsNeverPanicsOnGarbage(t *testing.T) {
	m := HeuristicMatcher{}
	for _, text := range []string{"", "   ", "dr.", "0000-00-00", "\t\n", "дp. 2025-08-"} {
		_ = m.ExtractHints(text)
	}
}

func TestMatchSlots(t *testing.T) {
	m := HeuristicMatcher{}
	johnson := slots.Slot{Doctor: "Dr. Sarah Johnson", Date: "2025-08-26", Time: "09:00:00"}
	chen := slots.Slot{Doctor: "Dr. Michael Chen", Date: "2025-08-25", Time: "10:00:00"}
	candidates := []slots.Slot{johnson, chen}

	t.Run("all three fields verbatim", func(t *testing.T) {
		reply := "I can book you with Dr. Sarah Johnson on 2025-08-26 at 09:00:00."
		got := m.MatchSlots(reply, candidates)
		if len(got) != 1 || got[0].Doctor != johnson.Doctor {
			t.Fatalf("expected Johnson slot, got %+v", got)
		}
	})

	t.Run("two of three is not a match", func(t *testing.T) {
		reply := "How about Dr. Sarah Johnson on 2025-08-26?"
		if got := m.MatchSlots(reply, candidates); len(got) != 0 {
			t.Fatalf("expected no match, got %+v", got)
		}
	})

	t.Run("paraphrased mention is not a match", func(t *testing.T) {
		reply := "Sarah Johnson has an opening August 26th at 9am."
		if got := m.MatchSlots(reply, candidates); len(got) != 0 {
			t.Fatalf("expected no match, got %+v", got)
		}
	})

	t.Run("multiple slots can match", func(t *testing.T) {
		reply := "You could book Dr. Sarah Johnson on 2025-08-26 at 09:00:00 " +
			"or Dr. Michael Chen on 2025-08-25 at 10:00:00."
		if got := m.MatchSlots(reply, candidates); len(got) != 2 {
			t.Fatalf("expected both slots, got %+v", got)
		}
	})

	t.Run("empty candidates", func(t *testing.T) {
		got := m.MatchSlots("book Dr. Sarah Johnson 2025-08-26 09:00:00", nil)
		if len(got) != 0 {
			t.Fatalf("expected empty, got %+v", got)
		}
		if got == nil {
			t.Fatal("match result must be non-nil")
		}
	})
}

func TestHasBookingIntent(t *testing.T) {
	positives := []string{
		"I can book that for you",
		"Shall I BOOK it?",
		"This slot is bookable",
	}
	for _, reply := range positives {
		if !HasBookingIntent(reply) {
			t.Errorf("expected intent for %q", reply)
		}
	}

	negatives := []string{
		"Dr. Chen is available on 2025-08-25 at 10:00:00",
		"",
		"Let me know what works for you",
	}
	for _, reply := range negatives {
		if HasBookingIntent(reply) {
			t.Errorf("expected no intent for %q", reply)
		}
	}
}
