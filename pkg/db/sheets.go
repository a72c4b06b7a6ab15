package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lanxiangspa/booking-server/pkg/sheetstore"
)

// callTimeout bounds every round trip to the Sheets API so a slow upstream
// surfaces as an error instead of a hung request
const callTimeout = 15 * time.Second

// Tabs names the spreadsheet tabs backing each table
type Tabs struct {
	Staff       string
	OffDays     string
	WebBookings string
	Walkins     string
	Services    string
}

// SheetsStore implements Store on top of a Google Sheets spreadsheet
type SheetsStore struct {
	ssql *sheetstore.DB
	tabs Tabs
}

// NewSheetsStore creates a Store backed by the given spreadsheet
func NewSheetsStore(ssql *sheetstore.DB, tabs Tabs) *SheetsStore {
	return &SheetsStore{ssql: ssql, tabs: tabs}
}

// ListStaff retrieves the staff roster
func (s *SheetsStore) ListStaff(ctx context.Context) ([]StaffMember, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	staff, err := sheetstore.GetTableAs[StaffMember](ctx, s.ssql, s.tabs.Staff)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// ListOffDays retrieves all off-day records
func (s *SheetsStore) ListOffDays(ctx context.Context) ([]OffDay, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	offDays, err := sheetstore.GetTableAs[OffDay](ctx, s.ssql, s.tabs.OffDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list off days: %w", err)
	}
	return offDays, nil
}

// ListServices retrieves the service menu
func (s *SheetsStore) ListServices(ctx context.Context) ([]Service, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	services, err := sheetstore.GetTableAs[Service](ctx, s.ssql, s.tabs.Services)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// ListWebBookings retrieves all web booking rows
func (s *SheetsStore) ListWebBookings(ctx context.Context) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	bookings, err := sheetstore.GetTableAs[Booking](ctx, s.ssql, s.tabs.WebBookings)
	if err != nil {
		return nil, fmt.Errorf("failed to list web bookings: %w", err)
	}
	return bookings, nil
}

// ListWalkins retrieves all walk-in rows
func (s *SheetsStore) ListWalkins(ctx context.Context) ([]Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	walkins, err := sheetstore.GetTableAs[Booking](ctx, s.ssql, s.tabs.Walkins)
	if err != nil {
		return nil, fmt.Errorf("failed to list walkins: %w", err)
	}
	return walkins, nil
}

// AppendBooking appends one booking row to the web bookings tab
func (s *SheetsStore) AppendBooking(ctx context.Context, booking *Booking) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if err := sheetstore.AppendModel(ctx, s.ssql, s.tabs.WebBookings, *booking); err != nil {
		return fmt.Errorf("failed to append booking: %w", err)
	}
	return nil
}
