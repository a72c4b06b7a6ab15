package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/pkg/db"
	"github.com/lanxiangspa/booking-server/pkg/metrics"
)

// AnyStaff is the sentinel staff value for "no preference" bookings
const AnyStaff = "Any"

// DefaultDurationMinutes is used when the service text carries no "- N mins"
// suffix. The web form normally appends one; walk-in entries often don't,
// and rejecting those would lose real bookings.
const DefaultDurationMinutes = 60

// bookingDateTimeLayout matches what the web form submits
const bookingDateTimeLayout = "2006-01-02T15:04"

// forwardTimeout bounds the detached legacy-CRM call
const forwardTimeout = 10 * time.Second

var (
	durationSuffixPattern = regexp.MustCompile(`-\s*(\d+)\s*mins?\s*$`)
	phonePattern          = regexp.MustCompile(`^[0-9]{8,15}$`)
)

// BookingRequest is a new booking submitted from the web form
type BookingRequest struct {
	FullName        string
	PhoneNumber     string
	BookingDateTime string
	Service         string
	PreferredStaff  string
}

// BookingResult is the outcome of a committed booking
type BookingResult struct {
	BookingID string
	Message   string
}

// CreateBooking validates the request, rejects slots that overlap an
// existing booking for the same staff member, and appends the new row to the
// web bookings tab. The read-check-append sequence runs under the staff
// member's commit lock so two concurrent requests for the same slot cannot
// both pass the conflict check. Requests for "Any" staff skip the conflict
// scan entirely and always commit.
func (e *Engine) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	if req.BookingDateTime == "" || req.Service == "" {
		return nil, &ValidationError{Msg: "bookingDateTime and service are required"}
	}
	if req.PreferredStaff == "" {
		return nil, &ValidationError{Msg: "a staff member must be selected"}
	}
	if req.PhoneNumber != "" && !phonePattern.MatchString(req.PhoneNumber) {
		return nil, &ValidationError{Msg: "phoneNumber must be 8 to 15 digits"}
	}

	newStart, err := time.ParseInLocation(bookingDateTimeLayout, req.BookingDateTime, e.loc)
	if err != nil {
		return nil, &ValidationError{Msg: "invalid bookingDateTime, expected YYYY-MM-DDTHH:MM"}
	}

	duration := parseServiceDuration(req.Service)
	newEnd := newStart.Add(time.Duration(duration) * time.Minute)

	date := newStart.Format(DateLayout)
	startTime := newStart.Format("15:04")
	endTime := newEnd.Format("15:04")

	e.logger.Debug("Committing booking",
		zap.String("staff", req.PreferredStaff),
		zap.String("date", date),
		zap.String("start", startTime),
		zap.String("end", endTime),
		zap.Int("duration_minutes", duration))

	if req.PreferredStaff != AnyStaff {
		lock := e.staffLock(req.PreferredStaff)
		lock.Lock()
		defer lock.Unlock()

		if err := e.checkConflicts(ctx, req.PreferredStaff, date, newStart, newEnd); err != nil {
			return nil, err
		}
	}

	booking := &db.Booking{
		ID:              uuid.New().String(),
		FullName:        req.FullName,
		Phone:           req.PhoneNumber,
		Staff:           req.PreferredStaff,
		ServiceName:     req.Service,
		ServiceDuration: duration,
		BookingDate:     date,
		StartTime:       startTime,
		EndTime:         endTime,
		CreatedAt:       e.clock.Now().In(e.loc).Format(time.RFC3339),
	}

	if err := e.store.AppendBooking(ctx, booking); err != nil {
		return nil, &UpstreamError{Op: "append booking", Err: err}
	}

	e.logger.Info("Booking committed",
		zap.String("booking_id", booking.ID),
		zap.String("staff", booking.Staff),
		zap.String("date", booking.BookingDate),
		zap.String("start", booking.StartTime))

	e.forwardToLegacy(booking)

	return &BookingResult{
		BookingID: booking.ID,
		Message:   fmt.Sprintf("Booking confirmed for %s on %s at %s", req.PreferredStaff, date, startTime),
	}, nil
}

// checkConflicts scans the staff member's bookings on the date (both
// sources, "Any" rows included as blocking) for an interval overlap
func (e *Engine) checkConflicts(ctx context.Context, staff, date string, newStart, newEnd time.Time) error {
	bookings, err := e.bookingsOn(ctx, date)
	if err != nil {
		return err
	}

	for _, b := range bookings {
		if b.Staff != staff && b.Staff != AnyStaff {
			continue
		}
		existingStart, existingEnd, ok := e.bookingInterval(date, b)
		if !ok {
			continue
		}
		if overlaps(newStart, newEnd, existingStart, existingEnd) {
			return &ConflictError{Msg: fmt.Sprintf(
				"%s is already booked from %s to %s on %s, this slot is no longer available",
				staff, b.StartTime, b.EndTime, date)}
		}
	}

	return nil
}

// forwardToLegacy dispatches the committed booking to the old CRM in a
// detached goroutine. The call has its own deadline and failure channel;
// it never affects the caller's result.
func (e *Engine) forwardToLegacy(booking *db.Booking) {
	if e.forwarder == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
		defer cancel()

		if err := e.forwarder.ForwardBooking(ctx, booking); err != nil {
			metrics.LegacyForwardFailures.Inc()
			e.logger.Warn("Failed to forward booking to legacy CRM",
				zap.String("booking_id", booking.ID),
				zap.Error(err))
		}
	}()
}

// parseServiceDuration extracts the duration from service text like
// "Facial - 30 mins". Text without the suffix falls back to the default;
// that leniency is deliberate, the walk-in sheet rarely carries it.
func parseServiceDuration(service string) int {
	m := durationSuffixPattern.FindStringSubmatch(service)
	if m == nil {
		return DefaultDurationMinutes
	}
	duration, err := strconv.Atoi(m[1])
	if err != nil || duration <= 0 {
		return DefaultDurationMinutes
	}
	return duration
}
