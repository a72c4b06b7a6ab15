package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/pkg/db"
)

// Live status values reported by LiveAvailability
const (
	StatusAvailable = "Available"
	StatusBusy      = "Busy"
	StatusOff       = "Off"
)

// SlotQuery asks whether each staff member is free for one proposed slot.
// Either ServiceName (resolved against the Services tab) or DurationMinutes
// must be supplied.
type SlotQuery struct {
	Date            string
	StartTime       string
	ServiceName     string
	DurationMinutes int
}

// StaffSlotStatus is one staff member's answer to a SlotQuery.
// NextAvailableTime is the conflicting booking's end time, or null when free.
type StaffSlotStatus struct {
	Name              string  `json:"name"`
	IsAvailable       bool    `json:"is_available"`
	NextAvailableTime *string `json:"next_available_time"`
}

// StaffLiveStatus is one staff member's occupancy right now.
// WaitTimeMinutes is set only while the member is busy.
type StaffLiveStatus struct {
	Name            string `json:"name"`
	Status          string `json:"status"`
	WaitTimeMinutes *int   `json:"wait_time_minutes,omitempty"`
}

// SlotAvailability reports, for every roster member, whether the proposed
// slot is free. Off-day staff are unavailable outright. Bookings against
// "Any" staff block every named member, since any of them may be pulled in
// to serve that appointment.
func (e *Engine) SlotAvailability(ctx context.Context, q SlotQuery) ([]StaffSlotStatus, error) {
	if !IsCanonicalDate(q.Date) {
		return nil, &ValidationError{Msg: "missing or invalid date parameter, expected YYYY-MM-DD"}
	}

	duration := q.DurationMinutes
	if duration <= 0 {
		var err error
		duration, err = e.resolveServiceDuration(ctx, q.ServiceName)
		if err != nil {
			return nil, err
		}
	}

	newStart, err := combineDateTime(q.Date, q.StartTime, e.loc)
	if err != nil {
		return nil, &ValidationError{Msg: "missing or invalid startTime parameter, expected HH:MM"}
	}
	newEnd := newStart.Add(time.Duration(duration) * time.Minute)

	names, err := e.roster(ctx)
	if err != nil {
		return nil, err
	}
	off, err := e.offStaffOn(ctx, q.Date)
	if err != nil {
		return nil, err
	}
	bookings, err := e.bookingsOn(ctx, q.Date)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Computing slot availability",
		zap.String("date", q.Date),
		zap.String("start", q.StartTime),
		zap.Int("duration_minutes", duration),
		zap.Int("bookings_on_date", len(bookings)))

	result := make([]StaffSlotStatus, 0, len(names))
	for _, name := range names {
		if off[name] {
			result = append(result, StaffSlotStatus{Name: name, IsAvailable: false})
			continue
		}

		status := StaffSlotStatus{Name: name, IsAvailable: true}
		for _, b := range bookings {
			if b.Staff != name && b.Staff != AnyStaff {
				continue
			}
			existingStart, existingEnd, ok := e.bookingInterval(q.Date, b)
			if !ok {
				continue
			}
			if overlaps(newStart, newEnd, existingStart, existingEnd) {
				status.IsAvailable = false
				end := b.EndTime
				status.NextAvailableTime = &end
				break
			}
		}
		result = append(result, status)
	}

	return result, nil
}

// LiveAvailability reports each roster member's occupancy state. Only when
// date is "today" in the business timezone does it inspect bookings; for any
// other date everyone not off is Available, because slot conflicts are
// enforced at commit time rather than in the day-level view.
func (e *Engine) LiveAvailability(ctx context.Context, date string) ([]StaffLiveStatus, error) {
	if !IsCanonicalDate(date) {
		return nil, &ValidationError{Msg: "missing or invalid date parameter, expected YYYY-MM-DD"}
	}

	names, err := e.roster(ctx)
	if err != nil {
		return nil, err
	}
	off, err := e.offStaffOn(ctx, date)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now().In(e.loc)
	today := now.Format(DateLayout)

	result := make([]StaffLiveStatus, 0, len(names))
	if date != today {
		for _, name := range names {
			status := StatusAvailable
			if off[name] {
				status = StatusOff
			}
			result = append(result, StaffLiveStatus{Name: name, Status: status})
		}
		return result, nil
	}

	bookings, err := e.bookingsOn(ctx, date)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if off[name] {
			result = append(result, StaffLiveStatus{Name: name, Status: StatusOff})
			continue
		}

		status := StaffLiveStatus{Name: name, Status: StatusAvailable}
		for _, b := range bookings {
			if b.Staff != name && b.Staff != AnyStaff {
				continue
			}
			start, end, ok := e.bookingInterval(date, b)
			if !ok {
				continue
			}
			if !now.Before(start) && now.Before(end) {
				wait := int(math.Round(end.Sub(now).Minutes()))
				if wait < 0 {
					wait = 0
				}
				status.Status = StatusBusy
				status.WaitTimeMinutes = &wait
				break
			}
		}
		result = append(result, status)
	}

	return result, nil
}

// bookingInterval builds the concrete [start,end) instants of a booking row
// on the given date. Rows with unparseable times are skipped rather than
// failing the whole query; the sheet is hand-edited and junk rows happen.
func (e *Engine) bookingInterval(date string, b db.Booking) (time.Time, time.Time, bool) {
	start, err := combineDateTime(date, b.StartTime, e.loc)
	if err != nil {
		e.logger.Debug("Skipping booking row with bad start_time",
			zap.String("staff", b.Staff), zap.String("start_time", b.StartTime))
		return time.Time{}, time.Time{}, false
	}
	end, err := combineDateTime(date, b.EndTime, e.loc)
	if err != nil {
		e.logger.Debug("Skipping booking row with bad end_time",
			zap.String("staff", b.Staff), zap.String("end_time", b.EndTime))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// resolveServiceDuration looks the service up in the Services tab and parses
// its duration in minutes
func (e *Engine) resolveServiceDuration(ctx context.Context, serviceName string) (int, error) {
	if serviceName == "" {
		return 0, &ValidationError{Msg: "serviceName or duration is required with startTime"}
	}

	menu, err := e.store.ListServices(ctx)
	if err != nil {
		return 0, &UpstreamError{Op: "list services", Err: err}
	}

	for _, svc := range menu {
		if svc.Name != serviceName {
			continue
		}
		duration, err := strconv.Atoi(strings.TrimSpace(svc.DurationMinutes))
		if err != nil || duration <= 0 {
			return 0, &NotFoundError{Msg: fmt.Sprintf("invalid duration for service %q", serviceName)}
		}
		return duration, nil
	}

	return 0, &NotFoundError{Msg: fmt.Sprintf("service %q not found", serviceName)}
}
