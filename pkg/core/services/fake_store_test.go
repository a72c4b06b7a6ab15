package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/pkg/db"
)

// fakeStore is an in-memory db.Store. Appended bookings become visible to
// subsequent list calls immediately, mirroring the real sheet.
type fakeStore struct {
	mu       sync.Mutex
	staff    []db.StaffMember
	offDays  []db.OffDay
	services []db.Service
	web      []db.Booking
	walkins  []db.Booking

	failWith  error // when set, every call fails with this error
	appendErr error
}

func (f *fakeStore) ListStaff(ctx context.Context) ([]db.StaffMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]db.StaffMember(nil), f.staff...), nil
}

func (f *fakeStore) ListOffDays(ctx context.Context) ([]db.OffDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]db.OffDay(nil), f.offDays...), nil
}

func (f *fakeStore) ListServices(ctx context.Context) ([]db.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]db.Service(nil), f.services...), nil
}

func (f *fakeStore) ListWebBookings(ctx context.Context) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]db.Booking(nil), f.web...), nil
}

func (f *fakeStore) ListWalkins(ctx context.Context) ([]db.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]db.Booking(nil), f.walkins...), nil
}

func (f *fakeStore) AppendBooking(ctx context.Context, booking *db.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	if f.failWith != nil {
		return f.failWith
	}
	f.web = append(f.web, *booking)
	return nil
}

func (f *fakeStore) webBookings() []db.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]db.Booking(nil), f.web...)
}

// fixedClock pins "now" for deterministic tests
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func bangkokLocation() *time.Location {
	// GMT+7 like the business timezone, always present in the tz database
	return time.FixedZone("ICT", 7*60*60)
}

func newTestEngine(store db.Store, now time.Time, recurring ...RecurringOffDay) *Engine {
	return NewEngine(store, fixedClock{t: now}, bangkokLocation(), recurring, nil, zap.NewNop())
}
