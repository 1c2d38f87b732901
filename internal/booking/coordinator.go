package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicdesk/appointment-ai/internal/observability/metrics"
	"github.com/clinicdesk/appointment-ai/internal/slots"
	"github.com/clinicdesk/appointment-ai/pkg/logging"
)

// ErrSlotUnavailable is the single error category this package surfaces to
// callers: the requested slot is gone, either already booked or never in
// the inventory. Callers report it as "slot no longer available".
var ErrSlotUnavailable = slots.ErrSlotUnavailable

// Committer is the store capability the coordinator depends on.
type Committer interface {
	Commit(ctx context.Context, patient, doctor, date, timeOfDay string) error
}

// Confirmation is one bookable offer surfaced to the UI boundary. The UI
// echoes the ID back to trigger the commit; the slot inside is always a
// value from the turn's grounded candidate list, never free text.
type Confirmation struct {
	ID    string     `json:"id"`
	Slot  slots.Slot `json:"slot"`
	Label string     `json:"label"`
}

// Request is a commit proposal built from a confirmed offer.
type Request struct {
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Coordinator owns the open→booked transition. It is the sole path by which
// slot status changes.
type Coordinator struct {
	store   Committer
	logger  *logging.Logger
	metrics *metrics.ConversationMetrics
}

// NewCoordinator wires the coordinator. Metrics may be nil.
func NewCoordinator(store Committer, logger *logging.Logger, m *metrics.ConversationMetrics) *Coordinator {
	if store == nil {
		panic("booking: committer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{store: store, logger: logger, metrics: m}
}

// Propose turns matched slots into confirmation offers, one per slot.
// Deciding whether a confirmation is actually triggered stays with the
// UI boundary; this only decides eligibility.
func (c *Coordinator) Propose(matched []slots.Slot) []Confirmation {
	offers := make([]Confirmation, 0, len(matched))
	for _, slot := range matched {
		offers = append(offers, Confirmation{
			ID:    uuid.NewString(),
			Slot:  slot,
			Label: fmt.Sprintf("Confirm booking: %s on %s at %s", slot.Doctor, slot.Date, slot.Time),
		})
	}
	return offers
}

// Commit books the slot for the patient. A request racing another patient
// to the same slot, or referencing a slot not in the store, comes back as
// ErrSlotUnavailable; anything else is a storage failure.
func (c *Coordinator) Commit(ctx context.Context, req Request) error {
	err := c.store.Commit(ctx, req.Patient, req.Doctor, req.Date, req.Time)
	switch {
	case err == nil:
		c.metrics.ObserveBooking(metrics.BookingCommitted)
		c.logger.Info("booking committed",
			"doctor", req.Doctor, "date", req.Date, "time", req.Time)
		return nil
	case errors.Is(err, slots.ErrSlotUnavailable):
		c.metrics.ObserveBooking(metrics.BookingUnavailable)
		c.logger.Info("booking lost race or slot unknown",
			"doctor", req.Doctor, "date", req.Date, "time", req.Time)
		return ErrSlotUnavailable
	default:
		c.metrics.ObserveBooking(metrics.BookingFailed)
		return fmt.Errorf("booking: commit: %w", err)
	}
}
