package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/schedule"
)

// VenueInvalidator drops derived state kept for a venue.
type VenueInvalidator interface {
	InvalidateVenue(venueID string)
}

// CourtService exposes the court data the booking core consumes.
type CourtService struct {
	courts       CourtRepository
	now          func() time.Time
	logger       *slog.Logger
	invalidators []VenueInvalidator
}

// NewCourtService wires dependencies for court operations.
func NewCourtService(courts CourtRepository, now func() time.Time) *CourtService {
	return NewCourtServiceWithLogger(courts, now, nil)
}

// NewCourtServiceWithLogger constructs a CourtService with a specified logger.
// Every invalidator is told about a venue after one of its courts changes.
func NewCourtServiceWithLogger(courts CourtRepository, now func() time.Time, logger *slog.Logger, invalidators ...VenueInvalidator) *CourtService {
	if now == nil {
		now = time.Now
	}
	return &CourtService{courts: courts, now: now, logger: defaultLogger(logger), invalidators: invalidators}
}

func (s *CourtService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CourtService", operation, attrs...)
}

// ListCourts returns every court of the venue.
func (s *CourtService) ListCourts(ctx context.Context, venueID string) ([]booking.Court, error) {
	if s == nil || s.courts == nil {
		return nil, fmt.Errorf("court repository not configured")
	}
	courts, err := s.courts.ListCourts(ctx, venueID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return courts, nil
}

// GetCourt returns ErrNotFound for unknown courts.
func (s *CourtService) GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error) {
	if s == nil || s.courts == nil {
		return booking.Court{}, fmt.Errorf("court repository not configured")
	}
	court, err := s.courts.GetCourt(ctx, venueID, courtID)
	if err != nil {
		return booking.Court{}, mapRepoError(err)
	}
	return court, nil
}

// UpsertCourt creates or replaces a court. Only admins may call it.
func (s *CourtService) UpsertCourt(ctx context.Context, params UpsertCourtParams) (court booking.Court, err error) {
	if s == nil || s.courts == nil {
		return booking.Court{}, fmt.Errorf("court repository not configured")
	}
	ctx, span := startSpan(ctx, "CourtService.UpsertCourt", params.VenueID)
	started := time.Now()
	logger := s.loggerWith(ctx, "UpsertCourt", "venue_id", params.VenueID, "court_id", params.CourtID)
	defer func() {
		finish(ctx, logger, span, started, err, "court saved", "status", court.Status)
	}()

	if err = requireAdmin(params.Principal); err != nil {
		return
	}

	vErr := &ValidationError{}
	requireField(vErr, "venue_id", params.VenueID)
	requireField(vErr, "court_id", params.CourtID)
	court = validateCourtInput(params.Input, vErr)
	if vErr.HasErrors() {
		err = vErr
		court = booking.Court{}
		return
	}

	now := s.now()
	court.ID = params.CourtID
	court.VenueID = params.VenueID
	court.CreatedAt = now
	court.UpdatedAt = now
	if existing, getErr := s.courts.GetCourt(ctx, params.VenueID, params.CourtID); getErr == nil {
		court.CreatedAt = existing.CreatedAt
	}

	if err = s.courts.UpsertCourt(ctx, court); err != nil {
		err = mapRepoError(err)
		court = booking.Court{}
		return
	}
	for _, inv := range s.invalidators {
		inv.InvalidateVenue(params.VenueID)
	}
	return
}

func validateCourtInput(in CourtInput, vErr *ValidationError) booking.Court {
	court := booking.Court{
		Name:         strings.TrimSpace(in.Name),
		Status:       booking.CourtActive,
		WeekdayHours: strings.TrimSpace(in.WeekdayHours),
		WeekendHours: strings.TrimSpace(in.WeekendHours),
		SlotMinutes:  in.SlotMinutes,
	}
	if court.Name == "" {
		vErr.add("name", "is required")
	}
	if v := strings.TrimSpace(in.Status); v != "" {
		status, err := booking.ParseCourtStatus(v)
		if err != nil {
			vErr.add("status", "must be one of active, inactive, maintenance")
		}
		court.Status = status
	}
	if in.SlotMinutes < 0 || in.SlotMinutes > 24*60 {
		vErr.add("slot_minutes", "must be between 0 and 1440")
	}
	for _, day := range in.OpenDays {
		wd, err := calendar.ParseWeekday(day)
		if err != nil {
			vErr.add("open_days", fmt.Sprintf("unknown weekday %q", day))
			continue
		}
		court.OpenDays[wd] = true
	}
	for field, hours := range map[string]string{"weekday_hours": court.WeekdayHours, "weekend_hours": court.WeekendHours} {
		ranges, errs := schedule.ParseRanges(hours)
		if len(errs) > 0 {
			vErr.add(field, "must be comma separated HH:MM-HH:MM ranges")
			continue
		}
		for _, r := range ranges {
			if r.End <= r.Start {
				vErr.add(field, fmt.Sprintf("range %s must end after it starts", r))
				break
			}
		}
	}
	return court
}
