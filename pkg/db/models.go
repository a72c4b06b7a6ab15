package db

// StaffMember is one row of the Staff roster tab
type StaffMember struct {
	Name string `sheet:"staff_name"`
}

// OffDay marks a staff member unavailable for a whole calendar date.
// OffDate arrives in whatever format the person editing the sheet used and
// must be normalized before any comparison.
type OffDay struct {
	Name    string `sheet:"name"`
	OffDate string `sheet:"off_date"`
}

// Booking is one appointment row. Web bookings and walk-ins share this shape;
// walk-in rows simply leave the customer columns empty. Staff may be the
// literal "Any" when the customer expressed no preference.
type Booking struct {
	ID              string `sheet:"booking_id"`
	FullName        string `sheet:"full_name"`
	Phone           string `sheet:"phone"`
	Staff           string `sheet:"staff"`
	ServiceName     string `sheet:"service_name"`
	ServiceDuration int    `sheet:"service_duration"`
	BookingDate     string `sheet:"booking_date"`
	StartTime       string `sheet:"start_time"`
	EndTime         string `sheet:"end_time"`
	CreatedAt       string `sheet:"created_at"`
}

// Service is one row of the Services menu tab. DurationMinutes stays a raw
// string because sheet edits occasionally leave it blank or malformed, and
// the engine decides how strict to be about that.
type Service struct {
	Name            string `sheet:"service_name"`
	DurationMinutes string `sheet:"duration_minutes"`
}
