package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/court-booking/internal/application"
	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

type reservationService interface {
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (booking.Reservation, error)
	UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (booking.Reservation, error)
	CancelReservation(ctx context.Context, principal application.Principal, venueID, reservationID string) (booking.Reservation, error)
	GetReservation(ctx context.Context, principal application.Principal, venueID, reservationID string) (booking.Reservation, error)
	ListCalendar(ctx context.Context, params application.ListCalendarParams) (application.Calendar, error)
	UpcomingForProfile(ctx context.Context, principal application.Principal, venueID, profileID string) ([]booking.Occurrence, error)
	SlotAvailability(ctx context.Context, venueID, courtID string, date time.Time) (application.DayAvailability, error)
	PublicAvailability(ctx context.Context, venueID, courtID string) ([]application.DayAvailability, error)
}

// ReservationHandler serves the reservation lifecycle, the calendar and slot
// availability. Query dates are read in loc.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
	loc       *time.Location
}

func NewReservationHandler(service reservationService, loc *time.Location, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.Local
	}
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base, loc: loc}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	logger := h.log(r.Context(), "Create", "venue_id", venueID)

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.ErrorContext(r.Context(), "failed to decode reservation request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	created, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		Principal: principal,
		VenueID:   venueID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", created.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(created)})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	venueID, id := r.PathValue("venueID"), r.PathValue("id")
	principal, _ := PrincipalFromContext(r.Context())

	reservation, err := h.service.GetReservation(r.Context(), principal, venueID, id)
	if err != nil {
		h.log(r.Context(), "Get", "venue_id", venueID, "reservation_id", id).
			ErrorContext(r.Context(), "reservation lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	venueID, id := r.PathValue("venueID"), r.PathValue("id")
	logger := h.log(r.Context(), "Update", "venue_id", venueID, "reservation_id", id)

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.ErrorContext(r.Context(), "failed to decode reservation update", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	updated, err := h.service.UpdateReservation(r.Context(), application.UpdateReservationParams{
		Principal:     principal,
		VenueID:       venueID,
		ReservationID: id,
		Input:         req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(updated)})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	venueID, id := r.PathValue("venueID"), r.PathValue("id")
	logger := h.log(r.Context(), "Cancel", "venue_id", venueID, "reservation_id", id)
	principal, _ := PrincipalFromContext(r.Context())

	cancelled, err := h.service.CancelReservation(r.Context(), principal, venueID, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(cancelled)})
}

// List serves the calendar. from and to are required; court narrows it.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	query := r.URL.Query()
	logger := h.log(r.Context(), "List", "venue_id", venueID)

	from, okFrom := h.optionalDate(query.Get("from"))
	to, okTo := h.optionalDate(query.Get("to"))
	if !okFrom || !okTo {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.ListCalendar(r.Context(), application.ListCalendarParams{
		Principal: principal,
		VenueID:   venueID,
		From:      from,
		To:        to,
		CourtID:   strings.TrimSpace(query.Get("court")),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, calendarResponse{
		From:         calendar.FormatDate(result.From),
		To:           calendar.FormatDate(result.To),
		Reservations: toOccurrenceDTOs(result.Occurrences),
	})
}

func (h *ReservationHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	venueID, profileID := r.PathValue("venueID"), r.PathValue("profileID")
	principal, _ := PrincipalFromContext(r.Context())

	occurrences, err := h.service.UpcomingForProfile(r.Context(), principal, venueID, profileID)
	if err != nil {
		h.log(r.Context(), "Upcoming", "venue_id", venueID, "profile_id", profileID).
			ErrorContext(r.Context(), "upcoming listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, upcomingResponse{Reservations: toOccurrenceDTOs(occurrences)})
}

func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request) {
	venueID, courtID := r.PathValue("venueID"), r.PathValue("courtID")
	date, err := calendar.ParseDate(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	day, err := h.service.SlotAvailability(r.Context(), venueID, courtID, date)
	if err != nil {
		h.log(r.Context(), "Slots", "venue_id", venueID, "court_id", courtID).
			ErrorContext(r.Context(), "slot lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDayAvailabilityDTO(day))
}

func (h *ReservationHandler) Availability(w http.ResponseWriter, r *http.Request) {
	venueID, courtID := r.PathValue("venueID"), r.PathValue("courtID")

	days, err := h.service.PublicAvailability(r.Context(), venueID, courtID)
	if err != nil {
		h.log(r.Context(), "Availability", "venue_id", venueID, "court_id", courtID).
			ErrorContext(r.Context(), "availability lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]dayAvailabilityDTO, 0, len(days))
	for _, d := range days {
		out = append(out, toDayAvailabilityDTO(d))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{Days: out})
}

// optionalDate returns the zero time for an empty value so the service can
// report the missing field.
func (h *ReservationHandler) optionalDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, true
	}
	t, err := calendar.ParseDate(value, h.loc)
	return t, err == nil
}
