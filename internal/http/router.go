package http

import (
	"net/http"
)

// RouterConfig wires handlers into the router. Health reports readiness of
// the backing store; nil means always healthy.
type RouterConfig struct {
	Courts       *CourtHandler
	Reservations *ReservationHandler
	Occupancy    *OccupancyHandler
	Health       func(r *http.Request) error
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter registers every route on a method aware ServeMux. Unsupported
// methods get 405 from the mux itself.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Courts != nil {
		mux.HandleFunc("GET /venues/{venueID}/courts", cfg.Courts.List)
		mux.HandleFunc("GET /venues/{venueID}/courts/{courtID}", cfg.Courts.Get)
		mux.HandleFunc("PUT /venues/{venueID}/courts/{courtID}", cfg.Courts.Upsert)
	}

	if cfg.Reservations != nil {
		mux.HandleFunc("GET /venues/{venueID}/courts/{courtID}/slots", cfg.Reservations.Slots)
		mux.HandleFunc("GET /venues/{venueID}/courts/{courtID}/availability", cfg.Reservations.Availability)
		mux.HandleFunc("GET /venues/{venueID}/reservations", cfg.Reservations.List)
		mux.HandleFunc("POST /venues/{venueID}/reservations", cfg.Reservations.Create)
		mux.HandleFunc("GET /venues/{venueID}/reservations/{id}", cfg.Reservations.Get)
		mux.HandleFunc("PUT /venues/{venueID}/reservations/{id}", cfg.Reservations.Update)
		mux.HandleFunc("POST /venues/{venueID}/reservations/{id}/cancel", cfg.Reservations.Cancel)
		mux.HandleFunc("GET /venues/{venueID}/profiles/{profileID}/upcoming", cfg.Reservations.Upcoming)
	}

	if cfg.Occupancy != nil {
		mux.HandleFunc("GET /venues/{venueID}/occupancy/daily", cfg.Occupancy.Daily)
		mux.HandleFunc("GET /venues/{venueID}/occupancy/monthly", cfg.Occupancy.Monthly)
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}
