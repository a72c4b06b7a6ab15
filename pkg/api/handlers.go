package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lanxiangspa/booking-server/pkg/core/services"
	"github.com/lanxiangspa/booking-server/pkg/metrics"
)

// BookingService is the slice of the engine the HTTP layer needs
type BookingService interface {
	SlotAvailability(ctx context.Context, q services.SlotQuery) ([]services.StaffSlotStatus, error)
	LiveAvailability(ctx context.Context, date string) ([]services.StaffLiveStatus, error)
	CreateBooking(ctx context.Context, req services.BookingRequest) (*services.BookingResult, error)
}

// Handler serves the booking API endpoints
type Handler struct {
	svc    BookingService
	logger *zap.Logger
}

// NewHandler creates the API handler
func NewHandler(svc BookingService, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GetStaffAvailability serves GET /api/staff-availability. With a startTime
// the query asks about one proposed slot; without it the response is each
// staff member's live occupancy state.
func (h *Handler) GetStaffAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date := q.Get("date")
	if !services.IsCanonicalDate(date) {
		writeErrorMessage(w, http.StatusBadRequest, "missing or invalid date parameter, expected YYYY-MM-DD")
		return
	}

	startTime := q.Get("startTime")
	if startTime == "" {
		metrics.AvailabilityRequests.WithLabelValues("live").Inc()
		result, err := h.svc.LiveAvailability(r.Context(), date)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"staff_availability": result})
		return
	}

	duration := 0
	if raw := q.Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorMessage(w, http.StatusBadRequest, "duration must be a positive number of minutes")
			return
		}
		duration = parsed
	}

	metrics.AvailabilityRequests.WithLabelValues("slot").Inc()
	result, err := h.svc.SlotAvailability(r.Context(), services.SlotQuery{
		Date:            date,
		StartTime:       startTime,
		ServiceName:     q.Get("serviceName"),
		DurationMinutes: duration,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"staff_availability": result})
}

// bookingPayload is the POST /api/bookings request body
type bookingPayload struct {
	FullName        string `json:"fullName"`
	PhoneNumber     string `json:"phoneNumber"`
	BookingDateTime string `json:"bookingDateTime"`
	Service         string `json:"service"`
	PreferredStaff  string `json:"preferredStaff"`
}

// CreateBooking serves POST /api/bookings
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var payload bookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.svc.CreateBooking(r.Context(), services.BookingRequest{
		FullName:        payload.FullName,
		PhoneNumber:     payload.PhoneNumber,
		BookingDateTime: payload.BookingDateTime,
		Service:         payload.Service,
		PreferredStaff:  payload.PreferredStaff,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics.BookingsCreated.Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": result.Message,
	})
}

// writeError maps engine errors onto the HTTP taxonomy. Store and lookup
// failures land on 500 with the underlying detail, which the operators read
// straight from the booking form's error toast when a sheet breaks.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		writeErrorMessage(w, http.StatusBadRequest, validation.Msg)
		return
	}

	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		metrics.BookingConflicts.Inc()
		writeErrorMessage(w, http.StatusConflict, conflict.Msg)
		return
	}

	h.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "An internal server error occurred.",
		"details": err.Error(),
	})
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
