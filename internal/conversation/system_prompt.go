package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/clinicdesk/appointment-ai/internal/slots"
)

const systemPromptTemplate = `You are a helpful healthcare assistant. Today's date is %s.
The following doctor slots are available (JSON):
%s
Only offer doctors and slots from this list; never invent availability.
When you propose a slot, repeat its doctor, date, and time exactly as written in the list.`

// BuildSystemPrompt renders the grounding prompt for one turn: today's date
// plus the JSON-serialized candidate slot list. An empty candidate list
// serializes as the literal [], not an error.
func BuildSystemPrompt(today string, candidates []slots.Slot) (string, error) {
	if candidates == nil {
		candidates = []slots.Slot{}
	}
	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("conversation: marshal candidate slots: %w", err)
	}
	return fmt.Sprintf(systemPromptTemplate, today, string(data)), nil
}

// buildTurnMessages assembles the running transcript plus the new user
// input in the order the model expects.
func buildTurnMessages(history []Message, userInput string) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, ChatMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, ChatMessage{Role: ChatRoleUser, Content: userInput})
	return msgs
}
