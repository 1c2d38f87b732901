package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSlotUnavailable reports a commit that matched no open slot. This is an
// expected steady-state outcome of a multi-user booking race, not a fault.
var ErrSlotUnavailable = errors.New("slots: slot no longer available")

// PgxPool is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists the appointment slot inventory in Postgres.
type Store struct {
	pool PgxPool
}

// NewStore creates a store backed by the given pool.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("slots: pgx pool required")
	}
	return &Store{pool: pool}
}

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS slots (
		doctor TEXT NOT NULL,
		doctor_id INTEGER PRIMARY KEY,
		slot_time TIME NOT NULL,
		slot_date DATE NOT NULL,
		booked BOOLEAN NOT NULL DEFAULT FALSE,
		patient TEXT NOT NULL DEFAULT '',
		UNIQUE (doctor, slot_date, slot_time)
	)
`

const seedInsertSQL = `
	INSERT INTO slots (doctor, doctor_id, slot_time, slot_date, booked, patient)
	VALUES ($1, $2, $3::time, $4::date, $5, $6)
	ON CONFLICT (doctor_id) DO NOTHING
`

// Initialize creates the slots table if absent and seeds the demo inventory.
// Safe to run on every boot.
func (s *Store) Initialize(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("slots: create table: %w", err)
	}
	for _, slot := range seedInventory {
		if _, err := s.pool.Exec(ctx, seedInsertSQL,
			slot.Doctor, slot.DoctorID, slot.Time, slot.Date, slot.Booked, slot.Patient,
		); err != nil {
			return fmt.Errorf("slots: seed %q: %w", slot.Doctor, err)
		}
	}
	return nil
}

// Query returns open slots matching the filter, ordered by date then time.
// The doctor hint is a case-insensitive substring match; the date hint is
// an exact calendar date.
func (s *Store) Query(ctx context.Context, f Filter) ([]Slot, error) {
	sql := `
		SELECT doctor, doctor_id, to_char(slot_date, 'YYYY-MM-DD'), to_char(slot_time, 'HH24:MI:SS'), booked, patient
		FROM slots
		WHERE booked = FALSE`
	args := []any{}

	if f.Doctor != "" {
		args = append(args, "%"+f.Doctor+"%")
		sql += fmt.Sprintf(" AND doctor ILIKE $%d", len(args))
	}
	if f.Date != "" {
		args = append(args, f.Date)
		sql += fmt.Sprintf(" AND slot_date = $%d::date", len(args))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" ORDER BY slot_date, slot_time LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("slots: query: %w", err)
	}
	defer rows.Close()

	result := []Slot{}
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(&slot.Doctor, &slot.DoctorID, &slot.Date, &slot.Time, &slot.Booked, &slot.Patient); err != nil {
			return nil, fmt.Errorf("slots: scan: %w", err)
		}
		result = append(result, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("slots: rows: %w", err)
	}
	return result, nil
}

// Commit flips exactly the slot matching (doctor, date, time) from open to
// booked and records the patient. The booked = FALSE predicate makes the
// update conditional, so under concurrent commits for the same slot at most
// one statement matches a row; the loser gets ErrSlotUnavailable.
func (s *Store) Commit(ctx context.Context, patient, doctor, date, timeOfDay string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE slots
		SET booked = TRUE, patient = $1
		WHERE doctor = $2 AND slot_date = $3::date AND slot_time = $4::time AND booked = FALSE
	`, patient, doctor, date, timeOfDay)
	if err != nil {
		return fmt.Errorf("slots: commit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotUnavailable
	}
	return nil
}
