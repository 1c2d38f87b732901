package conversation

import (
	"context"
	"time"

	"github.com/clinicdesk/appointment-ai/internal/booking"
)

// Service describes how the scheduling conversation engine behaves.
type Service interface {
	ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
	History(ctx context.Context, sessionID string) ([]Message, error)
}

// Message represents a single message in a session transcript.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// State is the per-session position in the turn lifecycle.
type State string

const (
	// StateIdle means no turn is pending.
	StateIdle State = "idle"
	// StateAwaitingModelReply covers the synchronous model call: hints are
	// extracted, candidates queried, prompt built.
	StateAwaitingModelReply State = "awaiting_model_reply"
	// StateAwaitingBookingConfirmation means the last reply matched slots
	// and confirmation offers are outstanding.
	StateAwaitingBookingConfirmation State = "awaiting_booking_confirmation"
)

// TurnRequest is one user utterance within a session. An empty SessionID
// opens a new session.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	Patient   string `json:"patient"`
	Text      string `json:"text"`
}

// TurnResponse is what the UI boundary renders for a turn.
type TurnResponse struct {
	SessionID string                 `json:"session_id"`
	Reply     string                 `json:"reply"`
	Offers    []booking.Confirmation `json:"offers,omitempty"`
	State     State                  `json:"state"`
	Timestamp time.Time              `json:"timestamp"`
}

// ConfirmRequest is the UI's confirmation trigger for one outstanding offer.
type ConfirmRequest struct {
	SessionID      string `json:"session_id"`
	ConfirmationID string `json:"confirmation_id"`
	Patient        string `json:"patient"`
}

// ConfirmResponse reports the commit outcome. Booked=false with a message
// is the non-fatal "slot no longer available" path.
type ConfirmResponse struct {
	SessionID string `json:"session_id"`
	Booked    bool   `json:"booked"`
	Message   string `json:"message"`
}
