package conversation

import (
	"strings"
	"testing"

	"github.com/clinicdesk/appointment-ai/internal/slots"
)

func TestBuildSystemPromptIncludesSlots(t *testing.T) {
	prompt, err := BuildSystemPrompt("2025-08-20", []slots.Slot{
		{Doctor: "Dr. Sarah Johnson", DoctorID: 1001, Date: "2025-08-26", Time: "09:00:00", Patient: "John Doe"},
	})
	if err != nil {
		t.Fatalf("build prompt: %v", err)
	}

	if !strings.Contains(prompt, "Today's date is 2025-08-20") {
		t.Error("prompt missing today's date")
	}
	for _, want := range []string{`"doctor": "Dr. Sarah Johnson"`, `"date": "2025-08-26"`, `"time": "09:00:00"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %s", want)
		}
	}
	// Only doctor/date/time cross the model boundary.
	for _, leak := range []string{"John Doe", "1001", "patient", "booked"} {
		if strings.Contains(prompt, leak) {
			t.Errorf("prompt leaked internal field %q", leak)
		}
	}
}

func TestBuildSystemPromptEmptyList(t *testing.T) {
	for _, candidates := range [][]slots.Slot{nil, {}} {
		prompt, err := BuildSystemPrompt("2025-08-20", candidates)
		if err != nil {
			t.Fatalf("build prompt: %v", err)
		}
		if !strings.Contains(prompt, "\n[]\n") {
			t.Errorf("empty inventory must render the literal []: %q", prompt)
		}
	}
}

func TestBuildTurnMessagesOrder(t *testing.T) {
	history := []Message{
		{Role: ChatRoleUser, Content: "hello"},
		{Role: ChatRoleAssistant, Content: "hi, how can I help?"},
	}
	msgs := buildTurnMessages(history, "anything with Dr. Chen?")

	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[2].Role != ChatRoleUser || msgs[2].Content != "anything with Dr. Chen?" {
		t.Errorf("new input must come last: %+v", msgs[2])
	}
}
