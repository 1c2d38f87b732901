package slots

// seedInventory is the fixed demo inventory inserted on first initialization.
// Seeding is idempotent: doctor_id is the primary key and conflicting rows
// are ignored, so re-running Initialize never duplicates or resets a slot.
var seedInventory = []Slot{
	{Doctor: "Dr. Sarah Johnson", DoctorID: 1001, Time: "09:00:00", Date: "2025-08-26", Booked: false, Patient: "John Doe"},
	{Doctor: "Dr. Michael Chen", DoctorID: 1002, Time: "10:00:00", Date: "2025-08-25", Booked: false, Patient: "Jane Smith"},
	{Doctor: "Dr. Emily Brown", DoctorID: 1003, Time: "14:00:00", Date: "2025-08-23", Booked: false, Patient: "Robert Wilson"},
	{Doctor: "Dr. David Lee", DoctorID: 1004, Time: "11:00:00", Date: "2025-08-24", Booked: false, Patient: "Maria Garcia"},
}
