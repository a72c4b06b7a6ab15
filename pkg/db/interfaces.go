package db

import "context"

// Store defines the tabular-store operations the booking engine needs.
// The production implementation is backed by Google Sheets; tests use an
// in-memory fake.
type Store interface {
	ListStaff(ctx context.Context) ([]StaffMember, error)
	ListOffDays(ctx context.Context) ([]OffDay, error)
	ListServices(ctx context.Context) ([]Service, error)
	ListWebBookings(ctx context.Context) ([]Booking, error)
	ListWalkins(ctx context.Context) ([]Booking, error)
	AppendBooking(ctx context.Context, booking *Booking) error
}
