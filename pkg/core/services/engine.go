package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/pkg/db"
)

// LegacyForwarder pushes committed bookings to the old CRM. Forwarding is
// fire-and-forget: failures are logged and never reach the caller.
type LegacyForwarder interface {
	ForwardBooking(ctx context.Context, booking *db.Booking) error
}

// RecurringOffDay is a compiled recurrence rule marking a staff member off
// on every date the rule produces
type RecurringOffDay struct {
	Staff string
	Rule  *rrule.RRule
}

// CompileRecurringOffDay parses an RFC 5545 RRULE string into a rule anchored
// in the business timezone. The anchor predates any data in the sheet so
// weekly rules match every queried date.
func CompileRecurringOffDay(staff, rule string, loc *time.Location) (RecurringOffDay, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return RecurringOffDay{}, fmt.Errorf("failed to parse rrule %q: %w", rule, err)
	}
	opt.Dtstart = time.Date(2020, 1, 1, 0, 0, 0, 0, loc)

	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return RecurringOffDay{}, fmt.Errorf("failed to compile rrule %q: %w", rule, err)
	}

	return RecurringOffDay{Staff: staff, Rule: r}, nil
}

// Engine answers availability queries and commits bookings against the
// shared tabular store. It is stateless per request apart from the per-staff
// commit locks.
type Engine struct {
	store     db.Store
	clock     Clock
	loc       *time.Location
	recurring []RecurringOffDay
	forwarder LegacyForwarder
	logger    *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEngine creates an availability engine. forwarder may be nil when no
// legacy CRM is configured.
func NewEngine(store db.Store, clock Clock, loc *time.Location, recurring []RecurringOffDay, forwarder LegacyForwarder, logger *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		clock:     clock,
		loc:       loc,
		recurring: recurring,
		forwarder: forwarder,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// staffLock returns the commit mutex for one staff member, creating it on
// first use. Serializing commits per staff closes the read-check-append race
// between two concurrent bookings for the same slot.
func (e *Engine) staffLock(name string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	lock, ok := e.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[name] = lock
	}
	return lock
}

// roster returns the staff names to report on. The Staff tab is the source
// of truth; older spreadsheets had no Staff tab, so an empty roster falls
// back to the distinct names in OffDays.
func (e *Engine) roster(ctx context.Context) ([]string, error) {
	staff, err := e.store.ListStaff(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "list staff", Err: err}
	}

	names := make([]string, 0, len(staff))
	for _, s := range staff {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	if len(names) > 0 {
		return names, nil
	}

	e.logger.Debug("Staff tab empty, deriving roster from off-day records")
	offDays, err := e.store.ListOffDays(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "list off days", Err: err}
	}

	seen := make(map[string]bool)
	for _, od := range offDays {
		if od.Name != "" && !seen[od.Name] {
			seen[od.Name] = true
			names = append(names, od.Name)
		}
	}
	return names, nil
}

// offStaffOn returns the set of staff names off on the given canonical date,
// from both the OffDays tab and the configured recurring rules
func (e *Engine) offStaffOn(ctx context.Context, date string) (map[string]bool, error) {
	offDays, err := e.store.ListOffDays(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "list off days", Err: err}
	}

	off := make(map[string]bool)
	for _, od := range offDays {
		if NormalizeDate(od.OffDate) == date {
			off[od.Name] = true
		}
	}

	if len(e.recurring) > 0 {
		dayStart, err := time.ParseInLocation(DateLayout, date, e.loc)
		if err == nil {
			dayEnd := dayStart.Add(24*time.Hour - time.Second)
			for _, r := range e.recurring {
				if len(r.Rule.Between(dayStart, dayEnd, true)) > 0 {
					off[r.Staff] = true
				}
			}
		}
	}

	return off, nil
}

// bookingsOn returns the union of web bookings and walk-ins whose normalized
// booking date equals the given canonical date
func (e *Engine) bookingsOn(ctx context.Context, date string) ([]db.Booking, error) {
	web, err := e.store.ListWebBookings(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "list web bookings", Err: err}
	}
	walkins, err := e.store.ListWalkins(ctx)
	if err != nil {
		return nil, &UpstreamError{Op: "list walkins", Err: err}
	}

	var onDate []db.Booking
	for _, b := range append(web, walkins...) {
		if NormalizeDate(b.BookingDate) == date {
			onDate = append(onDate, b)
		}
	}
	return onDate, nil
}

// overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not conflict.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
