package slots

// Slot is one bookable (doctor, date, time) appointment. The JSON shape is
// exactly what the model prompt receives: doctor, date, time and nothing else.
type Slot struct {
	Doctor   string `json:"doctor"`
	DoctorID int    `json:"-"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM:SS
	Booked   bool   `json:"-"`
	Patient  string `json:"-"`
}

// Filter narrows a slot query. Zero values mean "no filter"; the two hints
// combine with AND. Limit caps the result, defaulting to DefaultQueryLimit.
type Filter struct {
	Doctor string
	Date   string
	Limit  int
}

// DefaultQueryLimit bounds candidate lists when the caller does not.
const DefaultQueryLimit = 10
