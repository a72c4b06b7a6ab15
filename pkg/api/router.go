package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config holds the router dependencies
type Config struct {
	Logger         *zap.Logger
	Service        BookingService
	AllowedOrigins []string
}

// NewRouter builds the HTTP surface: the two booking endpoints plus health
// and metrics
func NewRouter(cfg *Config) *chi.Mux {
	h := NewHandler(cfg.Service, cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/staff-availability", h.GetStaffAvailability)
		r.Post("/bookings", h.CreateBooking)
	})

	return r
}
