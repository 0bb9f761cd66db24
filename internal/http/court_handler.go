package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/court-booking/internal/application"
	"github.com/example/court-booking/internal/booking"
)

type courtService interface {
	ListCourts(ctx context.Context, venueID string) ([]booking.Court, error)
	GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error)
	UpsertCourt(ctx context.Context, params application.UpsertCourtParams) (booking.Court, error)
}

type CourtHandler struct {
	service   courtService
	responder responder
	logger    *slog.Logger
}

func NewCourtHandler(service courtService, logger *slog.Logger) *CourtHandler {
	base := defaultLogger(logger)
	return &CourtHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CourtHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CourtHandler", operation, attrs...)
}

func (h *CourtHandler) List(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	logger := h.log(r.Context(), "List", "venue_id", venueID)

	courts, err := h.service.ListCourts(r.Context(), venueID)
	if err != nil {
		logger.ErrorContext(r.Context(), "court list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]courtDTO, 0, len(courts))
	for _, c := range courts {
		out = append(out, toCourtDTO(c))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCourtsResponse{Courts: out})
}

func (h *CourtHandler) Get(w http.ResponseWriter, r *http.Request) {
	venueID, courtID := r.PathValue("venueID"), r.PathValue("courtID")

	court, err := h.service.GetCourt(r.Context(), venueID, courtID)
	if err != nil {
		h.log(r.Context(), "Get", "venue_id", venueID, "court_id", courtID).
			ErrorContext(r.Context(), "court lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courtResponse{Court: toCourtDTO(court)})
}

func (h *CourtHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	venueID, courtID := r.PathValue("venueID"), r.PathValue("courtID")
	logger := h.log(r.Context(), "Upsert", "venue_id", venueID, "court_id", courtID)

	var req courtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.ErrorContext(r.Context(), "failed to decode court request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	court, err := h.service.UpsertCourt(r.Context(), application.UpsertCourtParams{
		Principal: principal,
		VenueID:   venueID,
		CourtID:   courtID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "court upsert failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "court saved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, courtResponse{Court: toCourtDTO(court)})
}
