package recurrence

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

// DefaultHorizonYears bounds series that have no explicit end date.
const DefaultHorizonYears = 1

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrNoOpenDays indicates a daily series on a court that never opens.
var ErrNoOpenDays = errors.New("recurrence: court has no open weekday")

// Horizon is the default lifetime of an open-ended series. Years and months
// are added first and clamp to the end of a shorter month, then days follow.
type Horizon struct {
	Years  int
	Months int
	Days   int
}

func (h Horizon) apply(anchor time.Time) time.Time {
	y, m, d := anchor.Date()
	ty, tm, _ := time.Date(y+h.Years, m+time.Month(h.Months), 1, 12, 0, 0, 0, time.UTC).Date()
	if last := calendar.DaysInMonth(ty, tm); d > last {
		d = last
	}
	return calendar.Day(ty, tm, d+h.Days, anchor.Location())
}

// Option configures an Engine.
type Option func(*Engine)

// WithHorizon overrides the open-ended series horizon.
func WithHorizon(h Horizon) Option {
	return func(e *Engine) {
		if h.Years > 0 || h.Months > 0 || h.Days > 0 {
			e.horizon = h
		}
	}
}

// WithLogger sets the logger used to report skipped masters.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine expands master reservations into dated occurrences.
type Engine struct {
	horizon Horizon
	logger  *slog.Logger
}

// NewEngine constructs an Engine with the default one-year horizon.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{horizon: Horizon{Years: DefaultHorizonYears}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Expand runs the default engine.
func Expand(masters []booking.Reservation, windowStart, windowEnd time.Time, courts []booking.Court) []booking.Occurrence {
	return defaultEngine.Expand(masters, windowStart, windowEnd, courts)
}

// Horizon reports the configured open-ended series horizon.
func (e *Engine) Horizon() Horizon {
	return e.horizon
}

// SeriesEnd is the last date a recurring master can occur on: its explicit
// end date, or the anchor date plus the horizon.
func (e *Engine) SeriesEnd(master booking.Reservation) time.Time {
	anchor := calendar.StartOfDay(master.Date)
	if master.Recurrence != nil && master.Recurrence.EndDate != nil {
		return dayIn(*master.Recurrence.EndDate, anchor.Location())
	}
	return e.horizon.apply(anchor)
}

// Expand materialises every occurrence intersecting [windowStart, windowEnd],
// both bounds inclusive and compared by calendar day.
//
// One-off masters pass through unchanged when their date is in the window,
// cancelled or not. Recurring masters that are cancelled, or whose court is
// not in courts, contribute nothing. Output holds the one-off masters first,
// then each recurring series in input order, dates ascending.
func (e *Engine) Expand(masters []booking.Reservation, windowStart, windowEnd time.Time, courts []booking.Court) []booking.Occurrence {
	var (
		single    []booking.Occurrence
		recurring []booking.Occurrence
		index     booking.CourtIndex
	)

	for _, master := range masters {
		if !master.IsRecurring() {
			if calendar.Within(master.Date, windowStart, windowEnd) {
				single = append(single, booking.AsOccurrence(master.Clone()))
			}
			continue
		}
		if master.IsCancelled() {
			continue
		}
		if index == nil {
			index = booking.IndexCourts(courts)
		}
		court, ok := index[master.CourtID]
		if !ok {
			e.log().Debug("skipping series with unknown court",
				"reservation_id", master.ID,
				"court_id", master.CourtID,
			)
			continue
		}
		dates, err := e.datesWithin(master, court, windowStart, windowEnd)
		if err != nil {
			e.log().Warn("skipping series",
				"reservation_id", master.ID,
				"error", err,
			)
			continue
		}
		recurring = append(recurring, occurrencesOf(master, dates)...)
	}

	return append(single, recurring...)
}

// Rule builds the RFC 5545 rule that generates a master's dates on court.
// The rule runs on UTC midnights carrying the civil dates of the series, so
// daylight saving gaps in the master's location cannot shift a day.
func (e *Engine) Rule(master booking.Reservation, court booking.Court) (*rrule.RRule, error) {
	if master.Recurrence == nil {
		return nil, fmt.Errorf("recurrence: reservation %s does not repeat", master.ID)
	}
	anchor := civil(master.Date)
	opts := rrule.ROption{
		Dtstart: anchor,
		Until:   civil(e.SeriesEnd(master)),
	}

	switch master.Recurrence.EffectiveFrequency() {
	case booking.FrequencyWeekly:
		opts.Freq = rrule.WEEKLY
		opts.Byweekday = []rrule.Weekday{toRRuleWeekday(anchor.Weekday())}
	case booking.FrequencyDaily:
		open := court.OpenDays.OpenWeekdays()
		if len(open) == 0 {
			return nil, ErrNoOpenDays
		}
		opts.Freq = rrule.DAILY
		for _, d := range open {
			opts.Byweekday = append(opts.Byweekday, toRRuleWeekday(d))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, master.Recurrence.Frequency)
	}

	return rrule.NewRRule(opts)
}

// datesWithin clips the series to the window and lets the rule walk the days.
func (e *Engine) datesWithin(master booking.Reservation, court booking.Court, windowStart, windowEnd time.Time) ([]time.Time, error) {
	loc := master.Date.Location()
	anchor := calendar.StartOfDay(master.Date)

	from := dayIn(windowStart, loc)
	if from.Before(anchor) {
		from = anchor
	}
	to := dayIn(windowEnd, loc)
	if end := e.SeriesEnd(master); end.Before(to) {
		to = end
	}
	if to.Before(from) {
		return nil, nil
	}

	rule, err := e.Rule(master, court)
	if err != nil {
		if errors.Is(err, ErrNoOpenDays) {
			return nil, nil
		}
		return nil, err
	}
	instants := rule.Between(civil(from), civil(to), true)
	out := make([]time.Time, 0, len(instants))
	for _, t := range instants {
		y, m, d := t.Date()
		out = append(out, calendar.Day(y, m, d, loc))
	}
	return out, nil
}

func occurrencesOf(master booking.Reservation, dates []time.Time) []booking.Occurrence {
	out := make([]booking.Occurrence, 0, len(dates))
	for _, date := range dates {
		occ := booking.Occurrence{Reservation: master.Clone()}
		if calendar.SameDay(date, master.Date) {
			occ.Origin = booking.AnchorOrigin()
		} else {
			occ.ID = OccurrenceID(master.ID, date)
			occ.Date = calendar.StartOfDay(date)
			occ.Origin = booking.DerivedFrom(master.ID)
		}
		out = append(out, occ)
	}
	return out
}

func (e *Engine) log() *slog.Logger {
	if e.logger == nil {
		return slog.Default()
	}
	return e.logger
}

func dayIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return calendar.Day(y, m, d, loc)
}

// civil maps t's calendar day to UTC midnight of the same date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toRRuleWeekday(d time.Weekday) rrule.Weekday {
	switch d {
	case time.Monday:
		return rrule.MO
	case time.Tuesday:
		return rrule.TU
	case time.Wednesday:
		return rrule.WE
	case time.Thursday:
		return rrule.TH
	case time.Friday:
		return rrule.FR
	case time.Saturday:
		return rrule.SA
	default:
		return rrule.SU
	}
}
