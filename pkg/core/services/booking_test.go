package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/pkg/db"
)

func TestParseServiceDuration(t *testing.T) {
	tests := []struct {
		service string
		want    int
	}{
		{"Facial - 30 mins", 30},
		{"Deep Tissue - 90 mins", 90},
		{"Foot Reflexology - 45 min", 45},
		{"Swedish Massage", DefaultDurationMinutes},
		{"Aromatherapy - soon", DefaultDurationMinutes},
		{"", DefaultDurationMinutes},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			assert.Equal(t, tt.want, parseServiceDuration(tt.service))
		})
	}
}

func TestCreateBooking_Success(t *testing.T) {
	now := time.Date(2025, 6, 18, 9, 0, 0, 0, bangkokLocation())
	store := &fakeStore{staff: []db.StaffMember{{Name: "Bob"}}}
	engine := newTestEngine(store, now)

	result, err := engine.CreateBooking(context.Background(), BookingRequest{
		FullName:        "Jane Doe",
		PhoneNumber:     "0901234567",
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.BookingID)
	assert.Contains(t, result.Message, "Bob")
	assert.Contains(t, result.Message, "2025-06-20")

	rows := store.webBookings()
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].Staff)
	assert.Equal(t, "2025-06-20", rows[0].BookingDate)
	assert.Equal(t, "10:00", rows[0].StartTime)
	assert.Equal(t, "10:30", rows[0].EndTime)
	assert.Equal(t, 30, rows[0].ServiceDuration)
	assert.Equal(t, "Jane Doe", rows[0].FullName)
	assert.NotEmpty(t, rows[0].CreatedAt)
}

func TestCreateBooking_DefaultDuration(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, time.Now())

	_, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Swedish Massage",
		PreferredStaff:  "Bob",
	})
	require.NoError(t, err)

	rows := store.webBookings()
	require.Len(t, rows, 1)
	assert.Equal(t, 60, rows[0].ServiceDuration)
	assert.Equal(t, "11:00", rows[0].EndTime)
}

func TestCreateBooking_Conflict(t *testing.T) {
	store := &fakeStore{
		walkins: []db.Booking{
			// Walk-in recorded with the sheet's day-first date format
			{Staff: "Bob", BookingDate: "20/06/2025", StartTime: "10:00", EndTime: "11:00"},
		},
	}
	engine := newTestEngine(store, time.Now())

	_, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T10:30",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, err.Error(), "already booked")
	assert.Empty(t, store.webBookings())
}

func TestCreateBooking_AdjacentSlotCommits(t *testing.T) {
	store := &fakeStore{
		web: []db.Booking{
			{Staff: "Bob", BookingDate: "2025-06-20", StartTime: "10:00", EndTime: "11:00"},
		},
	}
	engine := newTestEngine(store, time.Now())

	_, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T11:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	})
	require.NoError(t, err)
}

func TestCreateBooking_AnyStaffSkipsConflictCheck(t *testing.T) {
	store := &fakeStore{
		web: []db.Booking{
			{Staff: "Alice", BookingDate: "2025-06-20", StartTime: "10:00", EndTime: "11:00"},
			{Staff: "Any", BookingDate: "2025-06-20", StartTime: "10:00", EndTime: "11:00"},
		},
	}
	engine := newTestEngine(store, time.Now())

	// Same slot as both existing bookings, yet never a conflict for "Any"
	result, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Any",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.BookingID)

	rows := store.webBookings()
	assert.Equal(t, "Any", rows[len(rows)-1].Staff)
}

func TestCreateBooking_Validation(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, time.Now())
	ctx := context.Background()

	var validation *ValidationError

	_, err := engine.CreateBooking(ctx, BookingRequest{Service: "Facial", PreferredStaff: "Bob"})
	require.ErrorAs(t, err, &validation)

	_, err = engine.CreateBooking(ctx, BookingRequest{BookingDateTime: "2025-06-20T10:00", Service: "Facial"})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "a staff member must be selected", validation.Msg)

	_, err = engine.CreateBooking(ctx, BookingRequest{
		BookingDateTime: "20/06/2025 10:00", Service: "Facial", PreferredStaff: "Bob",
	})
	require.ErrorAs(t, err, &validation)

	_, err = engine.CreateBooking(ctx, BookingRequest{
		BookingDateTime: "2025-06-20T10:00", Service: "Facial", PreferredStaff: "Bob",
		PhoneNumber: "not-a-phone",
	})
	require.ErrorAs(t, err, &validation)
}

func TestCreateBooking_AppendFailure(t *testing.T) {
	store := &fakeStore{appendErr: errors.New("quota exceeded")}
	engine := newTestEngine(store, time.Now())

	_, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
}

func TestCreateBooking_ConcurrentIdenticalSlots(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, time.Now())

	req := BookingRequest{
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = engine.CreateBooking(context.Background(), req)
		}(i)
	}
	wg.Wait()

	// The per-staff commit lock serializes the two requests: exactly one
	// commits, the other observes the fresh row and gets a conflict
	var successes, conflicts int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		conflicts++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, store.webBookings(), 1)
}

// recordingForwarder captures forwarded bookings for assertions
type recordingForwarder struct {
	forwarded chan *db.Booking
	err       error
}

func (f *recordingForwarder) ForwardBooking(ctx context.Context, booking *db.Booking) error {
	f.forwarded <- booking
	return f.err
}

func TestCreateBooking_ForwardsToLegacyCRM(t *testing.T) {
	store := &fakeStore{}
	forwarder := &recordingForwarder{forwarded: make(chan *db.Booking, 1)}
	engine := NewEngine(store, fixedClock{t: time.Now()}, bangkokLocation(), nil, forwarder, zap.NewNop())

	result, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	})
	require.NoError(t, err)

	select {
	case b := <-forwarder.forwarded:
		assert.Equal(t, result.BookingID, b.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("booking was never forwarded")
	}
}

func TestCreateBooking_LegacyFailureDoesNotSurface(t *testing.T) {
	store := &fakeStore{}
	forwarder := &recordingForwarder{
		forwarded: make(chan *db.Booking, 1),
		err:       errors.New("legacy CRM down"),
	}
	engine := NewEngine(store, fixedClock{t: time.Now()}, bangkokLocation(), nil, forwarder, zap.NewNop())

	_, err := engine.CreateBooking(context.Background(), BookingRequest{
		BookingDateTime: "2025-06-20T10:00",
		Service:         "Facial - 30 mins",
		PreferredStaff:  "Bob",
	})
	require.NoError(t, err)
	<-forwarder.forwarded
}
