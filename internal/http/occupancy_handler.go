package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/court-booking/internal/application"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/occupancy"
)

type occupancyService interface {
	DailyOccupancy(ctx context.Context, venueID string, date time.Time, courtFilter string) (occupancy.Daily, error)
	MonthlyOccupancy(ctx context.Context, venueID string, month time.Time, courtFilter string) (occupancy.Month, error)
}

type OccupancyHandler struct {
	service   occupancyService
	responder responder
	logger    *slog.Logger
	loc       *time.Location
}

func NewOccupancyHandler(service occupancyService, loc *time.Location, logger *slog.Logger) *OccupancyHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.Local
	}
	return &OccupancyHandler{service: service, responder: newResponder(base), logger: base, loc: loc}
}

func (h *OccupancyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "OccupancyHandler", operation, attrs...)
}

func (h *OccupancyHandler) Daily(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	date, err := calendar.ParseDate(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	filter := courtFilter(r)

	daily, err := h.service.DailyOccupancy(r.Context(), venueID, date, filter)
	if err != nil {
		h.log(r.Context(), "Daily", "venue_id", venueID, "court", filter).
			ErrorContext(r.Context(), "daily occupancy failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOccupancyDTO(date, daily))
}

func (h *OccupancyHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	month, err := time.ParseInLocation("2006-01", strings.TrimSpace(r.URL.Query().Get("month")), h.loc)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
		return
	}
	filter := courtFilter(r)

	grid, err := h.service.MonthlyOccupancy(r.Context(), venueID, month, filter)
	if err != nil {
		h.log(r.Context(), "Monthly", "venue_id", venueID, "court", filter).
			ErrorContext(r.Context(), "monthly occupancy failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMonthlyOccupancyResponse(grid))
}

// courtFilter defaults to every court.
func courtFilter(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("court")); v != "" {
		return v
	}
	return occupancy.AllCourts
}
