package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/appointment-ai/internal/booking"
	"github.com/clinicdesk/appointment-ai/internal/nlu"
	"github.com/clinicdesk/appointment-ai/internal/observability/metrics"
	"github.com/clinicdesk/appointment-ai/internal/slots"
	"github.com/clinicdesk/appointment-ai/pkg/logging"
)

// ErrNoPendingOffer indicates a confirmation trigger that references no
// outstanding offer: the session is not awaiting a confirmation, or the
// offer ID is unknown (for example, superseded by a later turn).
var ErrNoPendingOffer = errors.New("conversation: no pending booking offer")

// SlotQuerier is the inventory capability the engine needs per turn.
type SlotQuerier interface {
	Query(ctx context.Context, f slots.Filter) ([]slots.Slot, error)
}

// BookingCoordinator decides offer eligibility and owns the commit path.
type BookingCoordinator interface {
	Propose(matched []slots.Slot) []booking.Confirmation
	Commit(ctx context.Context, req booking.Request) error
}

// EngineConfig carries per-turn tunables.
type EngineConfig struct {
	QueryLimit  int
	ModelID     string
	Temperature float32
	MaxTokens   int32
	LLMTimeout  time.Duration
}

// Engine orchestrates one scheduling conversation turn at a time: extract
// hints, query the grounded inventory, call the model, match the reply back
// against the candidates, and offer confirmations when eligible.
type Engine struct {
	inventory SlotQuerier
	sessions  SessionStore
	llm       LLMClient
	matcher   nlu.TextMatcher
	coord     BookingCoordinator
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics
	cfg       EngineConfig

	now func() time.Time
}

var _ Service = (*Engine)(nil)

// NewEngine wires the conversation engine. Metrics may be nil.
func NewEngine(
	inventory SlotQuerier,
	sessions SessionStore,
	llm LLMClient,
	matcher nlu.TextMatcher,
	coord BookingCoordinator,
	logger *logging.Logger,
	m *metrics.ConversationMetrics,
	cfg EngineConfig,
) *Engine {
	if inventory == nil {
		panic("conversation: slot querier required")
	}
	if sessions == nil {
		panic("conversation: session store required")
	}
	if llm == nil {
		panic("conversation: llm client required")
	}
	if matcher == nil {
		matcher = nlu.HeuristicMatcher{}
	}
	if coord == nil {
		panic("conversation: booking coordinator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = slots.DefaultQueryLimit
	}
	return &Engine{
		inventory: inventory,
		sessions:  sessions,
		llm:       llm,
		matcher:   matcher,
		coord:     coord,
		logger:    logger,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ProcessTurn runs one full user turn. A new user turn while a confirmation
// is outstanding abandons the offer implicitly: no commit happens, the offer
// is dropped, and the turn proceeds from idle.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := e.logger.With("session_id", sessionID)

	state, err := e.sessions.LoadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state != nil && state.State == StateAwaitingBookingConfirmation {
		// Implicit abandonment: a fresh user turn drops the outstanding
		// offers without committing anything.
		log.Debug("pending booking offer abandoned by new turn")
		if err := e.sessions.SaveState(ctx, sessionID, &SessionState{State: StateIdle}); err != nil {
			return nil, err
		}
	}

	hints := e.matcher.ExtractHints(req.Text)
	candidates, err := e.inventory.Query(ctx, slots.Filter{
		Doctor: hints.Doctor,
		Date:   hints.Date,
		Limit:  e.cfg.QueryLimit,
	})
	if err != nil {
		return nil, err
	}

	history, err := e.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	system, err := e.buildPrompt(candidates)
	if err != nil {
		return nil, err
	}

	if err := e.sessions.SaveState(ctx, sessionID, &SessionState{State: StateAwaitingModelReply}); err != nil {
		return nil, err
	}

	reply, err := e.complete(ctx, system, buildTurnMessages(history, req.Text))
	if err != nil {
		// No assistant reply this turn: the transcript stays untouched and
		// the session returns to idle.
		e.metrics.ObserveTurn(metrics.TurnModelFail)
		if stateErr := e.sessions.SaveState(ctx, sessionID, &SessionState{State: StateIdle}); stateErr != nil {
			log.Error("failed to reset session state after model failure", "error", stateErr)
		}
		return nil, fmt.Errorf("conversation: model reply unavailable: %w", err)
	}

	if err := e.sessions.AppendHistory(ctx, sessionID,
		Message{Role: ChatRoleUser, Content: req.Text},
		Message{Role: ChatRoleAssistant, Content: reply},
	); err != nil {
		return nil, err
	}

	matched := e.matcher.MatchSlots(reply, candidates)
	next := &SessionState{State: StateIdle}
	outcome := metrics.TurnReplied
	if nlu.HasBookingIntent(reply) && len(matched) > 0 {
		next = &SessionState{
			State:  StateAwaitingBookingConfirmation,
			Offers: e.coord.Propose(matched),
		}
		outcome = metrics.TurnOffered
	}
	if err := e.sessions.SaveState(ctx, sessionID, next); err != nil {
		return nil, err
	}

	e.metrics.ObserveTurn(outcome)
	log.Info("turn processed",
		"candidates", len(candidates),
		"matched", len(matched),
		"state", next.State,
	)

	return &TurnResponse{
		SessionID: sessionID,
		Reply:     reply,
		Offers:    next.Offers,
		State:     next.State,
		Timestamp: e.now().UTC(),
	}, nil
}

// Confirm commits the offer the UI picked. Only offers recorded for the
// session in the awaiting_booking_confirmation state are committable, which
// keeps every booking grounded in a candidate list the model actually saw.
func (e *Engine) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	state, err := e.sessions.LoadState(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.State != StateAwaitingBookingConfirmation {
		return nil, ErrNoPendingOffer
	}

	var offer *booking.Confirmation
	for i := range state.Offers {
		if state.Offers[i].ID == req.ConfirmationID {
			offer = &state.Offers[i]
			break
		}
	}
	if offer == nil {
		return nil, ErrNoPendingOffer
	}

	patient := req.Patient
	if patient == "" {
		patient = "User"
	}

	commitErr := e.coord.Commit(ctx, booking.Request{
		Patient: patient,
		Doctor:  offer.Slot.Doctor,
		Date:    offer.Slot.Date,
		Time:    offer.Slot.Time,
	})

	// The offer round is over either way.
	if err := e.sessions.SaveState(ctx, req.SessionID, &SessionState{State: StateIdle}); err != nil {
		return nil, err
	}

	switch {
	case commitErr == nil:
		return &ConfirmResponse{
			SessionID: req.SessionID,
			Booked:    true,
			Message: fmt.Sprintf("Appointment booked for %s with %s on %s at %s.",
				patient, offer.Slot.Doctor, offer.Slot.Date, offer.Slot.Time),
		}, nil
	case errors.Is(commitErr, booking.ErrSlotUnavailable):
		return &ConfirmResponse{
			SessionID: req.SessionID,
			Booked:    false,
			Message:   "Sorry, that slot is no longer available.",
		}, nil
	default:
		return nil, commitErr
	}
}

// History returns the session transcript.
func (e *Engine) History(ctx context.Context, sessionID string) ([]Message, error) {
	return e.sessions.History(ctx, sessionID)
}

func (e *Engine) buildPrompt(candidates []slots.Slot) (string, error) {
	return BuildSystemPrompt(e.now().Format("2006-01-02"), candidates)
}

func (e *Engine) complete(ctx context.Context, system string, msgs []ChatMessage) (string, error) {
	if e.cfg.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.LLMTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.llm.Complete(ctx, LLMRequest{
		Model:       e.cfg.ModelID,
		System:      []string{system},
		Messages:    msgs,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
	})
	e.metrics.ObserveModelLatency(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
