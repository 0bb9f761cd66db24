package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/court-booking/internal/booking"
)

func TestCourtService_UpsertCourt(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	repo := &courtRepoStub{courts: testCourts()}
	svc := NewCourtService(repo, func() time.Time { return now })
	ctx := context.Background()

	t.Run("admin creates a court", func(t *testing.T) {
		court, err := svc.UpsertCourt(ctx, UpsertCourtParams{
			Principal: admin,
			VenueID:   venue,
			CourtID:   "court-3",
			Input: CourtInput{
				Name:         " Beach 3 ",
				OpenDays:     []string{"mon", "Tuesday", "sat"},
				WeekdayHours: "07:00-12:00, 14:00-22:00",
				WeekendHours: "08:00-18:00",
				SlotMinutes:  90,
			},
		})
		if err != nil {
			t.Fatalf("UpsertCourt: %v", err)
		}
		if court.Name != "Beach 3" || court.Status != booking.CourtActive || court.SlotMinutes != 90 {
			t.Fatalf("unexpected court %+v", court)
		}
		want := booking.WeekdayFlags{false, true, true, false, false, false, true}
		if court.OpenDays != want {
			t.Fatalf("expected open days %v, got %v", want, court.OpenDays)
		}
		if len(repo.upserted) != 1 || !repo.upserted[0].CreatedAt.Equal(now) {
			t.Fatalf("expected court to be stored with CreatedAt %v", now)
		}
	})

	t.Run("replacing keeps CreatedAt", func(t *testing.T) {
		created := now.Add(-48 * time.Hour)
		repo.courts[0].CreatedAt = created
		court, err := svc.UpsertCourt(ctx, UpsertCourtParams{
			Principal: admin,
			VenueID:   venue,
			CourtID:   "court-1",
			Input:     CourtInput{Name: "Quadra 1", Status: "maintenance", WeekdayHours: "08:00-22:00"},
		})
		if err != nil {
			t.Fatalf("UpsertCourt: %v", err)
		}
		if !court.CreatedAt.Equal(created) || !court.UpdatedAt.Equal(now) || court.Status != booking.CourtMaintenance {
			t.Fatalf("unexpected court %+v", court)
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.UpsertCourt(ctx, UpsertCourtParams{
			Principal: admin,
			VenueID:   venue,
			CourtID:   "court-4",
			Input: CourtInput{
				Status:       "closed",
				OpenDays:     []string{"funday"},
				WeekdayHours: "22:00-08:00",
				WeekendHours: "8-18",
				SlotMinutes:  -5,
			},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"name", "status", "open_days", "weekday_hours", "weekend_hours", "slot_minutes"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected error for %s, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("clients are forbidden", func(t *testing.T) {
		_, err := svc.UpsertCourt(ctx, UpsertCourtParams{Principal: client, VenueID: venue, CourtID: "court-1"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestCourtService_GetCourt(t *testing.T) {
	svc := NewCourtService(&courtRepoStub{courts: testCourts()}, nil)
	ctx := context.Background()

	if _, err := svc.GetCourt(ctx, venue, "court-9"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	courts, err := svc.ListCourts(ctx, venue)
	if err != nil || len(courts) != 2 {
		t.Fatalf("expected two courts, got %d, %v", len(courts), err)
	}
}
