package http

import (
	"time"

	"github.com/example/court-booking/internal/application"
	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/occupancy"
)

type recurrenceDTO struct {
	Frequency string `json:"frequency"`
	EndDate   string `json:"end_date,omitempty"`
}

type reservationRequest struct {
	CourtID     string         `json:"court_id"`
	Date        string         `json:"date"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	Status      string         `json:"status"`
	Kind        string         `json:"kind"`
	ProfileID   string         `json:"profile_id"`
	ClientName  string         `json:"client_name"`
	ClientPhone string         `json:"client_phone"`
	Notes       string         `json:"notes"`
	Recurrence  *recurrenceDTO `json:"recurrence"`
}

func (r reservationRequest) toInput() application.ReservationInput {
	in := application.ReservationInput{
		CourtID:     r.CourtID,
		Date:        r.Date,
		Start:       r.StartTime,
		End:         r.EndTime,
		Status:      r.Status,
		Kind:        r.Kind,
		ProfileID:   r.ProfileID,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Notes:       r.Notes,
	}
	if r.Recurrence != nil {
		in.Recurrence = &application.RecurrenceInput{Frequency: r.Recurrence.Frequency, EndDate: r.Recurrence.EndDate}
	}
	return in
}

type reservationDTO struct {
	ID          string         `json:"id"`
	MasterID    string         `json:"master_id"`
	VenueID     string         `json:"venue_id"`
	CourtID     string         `json:"court_id"`
	ProfileID   string         `json:"profile_id,omitempty"`
	Date        string         `json:"date"`
	StartTime   string         `json:"start_time"`
	EndTime     string         `json:"end_time"`
	Status      string         `json:"status"`
	Kind        string         `json:"kind"`
	ClientName  string         `json:"client_name,omitempty"`
	ClientPhone string         `json:"client_phone,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	Recurrence  *recurrenceDTO `json:"recurrence,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func toReservationDTO(r booking.Reservation) reservationDTO {
	return toOccurrenceDTO(booking.AsOccurrence(r))
}

func toOccurrenceDTO(o booking.Occurrence) reservationDTO {
	dto := reservationDTO{
		ID:          o.ID,
		MasterID:    o.MasterID(),
		VenueID:     o.VenueID,
		CourtID:     o.CourtID,
		ProfileID:   o.ProfileID,
		Date:        calendar.FormatDate(o.Date),
		StartTime:   o.Start.String(),
		EndTime:     o.End.String(),
		Status:      string(o.Status),
		Kind:        string(o.Kind),
		ClientName:  o.ClientName,
		ClientPhone: o.ClientPhone,
		Notes:       o.Notes,
		CreatedAt:   formatTimestamp(o.CreatedAt),
		UpdatedAt:   formatTimestamp(o.UpdatedAt),
	}
	if o.Recurrence != nil {
		dto.Recurrence = &recurrenceDTO{Frequency: string(o.Recurrence.EffectiveFrequency())}
		if o.Recurrence.EndDate != nil {
			dto.Recurrence.EndDate = calendar.FormatDate(*o.Recurrence.EndDate)
		}
	}
	return dto
}

func toOccurrenceDTOs(occurrences []booking.Occurrence) []reservationDTO {
	out := make([]reservationDTO, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, toOccurrenceDTO(o))
	}
	return out
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type calendarResponse struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	Reservations []reservationDTO `json:"reservations"`
}

type upcomingResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type courtRequest struct {
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	OpenDays     []string `json:"open_days"`
	WeekdayHours string   `json:"weekday_hours"`
	WeekendHours string   `json:"weekend_hours"`
	SlotMinutes  int      `json:"slot_minutes"`
}

func (r courtRequest) toInput() application.CourtInput {
	return application.CourtInput{
		Name:         r.Name,
		Status:       r.Status,
		OpenDays:     r.OpenDays,
		WeekdayHours: r.WeekdayHours,
		WeekendHours: r.WeekendHours,
		SlotMinutes:  r.SlotMinutes,
	}
}

type courtDTO struct {
	ID           string   `json:"id"`
	VenueID      string   `json:"venue_id"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	OpenDays     []string `json:"open_days"`
	WeekdayHours string   `json:"weekday_hours"`
	WeekendHours string   `json:"weekend_hours"`
	SlotMinutes  int      `json:"slot_minutes"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toCourtDTO(c booking.Court) courtDTO {
	open := make([]string, 0, 7)
	for _, d := range c.OpenDays.OpenWeekdays() {
		open = append(open, calendar.WeekdayName(d))
	}
	return courtDTO{
		ID:           c.ID,
		VenueID:      c.VenueID,
		Name:         c.Name,
		Status:       string(c.Status),
		OpenDays:     open,
		WeekdayHours: c.WeekdayHours,
		WeekendHours: c.WeekendHours,
		SlotMinutes:  c.SlotMinutes,
		CreatedAt:    formatTimestamp(c.CreatedAt),
		UpdatedAt:    formatTimestamp(c.UpdatedAt),
	}
}

type courtResponse struct {
	Court courtDTO `json:"court"`
}

type listCourtsResponse struct {
	Courts []courtDTO `json:"courts"`
}

type slotDTO struct {
	Start         string `json:"start"`
	Status        string `json:"status"`
	ReservationID string `json:"reservation_id,omitempty"`
}

type dayAvailabilityDTO struct {
	Date  string    `json:"date"`
	Slots []slotDTO `json:"slots"`
}

func toDayAvailabilityDTO(day application.DayAvailability) dayAvailabilityDTO {
	slots := make([]slotDTO, 0, len(day.Slots))
	for _, s := range day.Slots {
		slots = append(slots, slotDTO{Start: s.Start, Status: string(s.Status), ReservationID: s.ReservationID})
	}
	return dayAvailabilityDTO{Date: calendar.FormatDate(day.Date), Slots: slots}
}

type availabilityResponse struct {
	Days []dayAvailabilityDTO `json:"days"`
}

type occupancyDTO struct {
	Date   string  `json:"date"`
	Rate   float64 `json:"rate"`
	Booked int     `json:"booked"`
	Total  int     `json:"total"`
}

type gridDayDTO struct {
	occupancyDTO
	InMonth bool `json:"in_month"`
}

type monthlyOccupancyResponse struct {
	Month       string       `json:"month"`
	AverageRate float64      `json:"average_rate"`
	Bookings    int          `json:"bookings"`
	Days        []gridDayDTO `json:"days"`
}

func toOccupancyDTO(date time.Time, d occupancy.Daily) occupancyDTO {
	return occupancyDTO{Date: calendar.FormatDate(date), Rate: d.Rate, Booked: d.Booked, Total: d.Total}
}

func toMonthlyOccupancyResponse(m occupancy.Month) monthlyOccupancyResponse {
	days := make([]gridDayDTO, 0, len(m.Days))
	for _, d := range m.Days {
		days = append(days, gridDayDTO{occupancyDTO: toOccupancyDTO(d.Date, d.Occupancy), InMonth: d.InMonth})
	}
	return monthlyOccupancyResponse{
		Month:       m.Month.Format("2006-01"),
		AverageRate: m.AverageRate,
		Bookings:    m.Bookings,
		Days:        days,
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
