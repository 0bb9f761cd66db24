package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/court-booking/internal/application"
)

// ServiceFactory builds application services on a shared test clock and id
// sequence.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// ReservationServiceDeps captures dependencies for constructing a reservation service.
type ReservationServiceDeps struct {
	Reservations application.ReservationRepository
	Courts       application.CourtRepository
	IDGenerator  func() string
	Now          func() time.Time
	Config       application.ReservationServiceConfig
}

// NewReservationService builds a reservation service using the supplied
// dependencies combined with the factory defaults. The location defaults to
// UTC so fixtures dates line up.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	cfg := deps.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return application.NewReservationService(deps.Reservations, deps.Courts, idGen, now, cfg)
}

// CourtServiceDeps captures dependencies for constructing a court service.
type CourtServiceDeps struct {
	Courts       application.CourtRepository
	Now          func() time.Time
	Logger       *slog.Logger
	Invalidators []application.VenueInvalidator
}

// NewCourtService builds a court service using the supplied dependencies.
func (f *ServiceFactory) NewCourtService(deps CourtServiceDeps) *application.CourtService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewCourtServiceWithLogger(deps.Courts, now, deps.Logger, deps.Invalidators...)
}

// VenueServices pairs the services of one store the way the server wires
// them: court changes invalidate the reservation service's calendars.
type VenueServices struct {
	Reservations *application.ReservationService
	Courts       *application.CourtService
}

// NewVenueServices builds both services over the harness repositories.
func (f *ServiceFactory) NewVenueServices(h *SQLiteHarness, cfg application.ReservationServiceConfig) VenueServices {
	reservations := f.NewReservationService(ReservationServiceDeps{
		Reservations: h.Reservations,
		Courts:       h.Courts,
		Config:       cfg,
	})
	courts := f.NewCourtService(CourtServiceDeps{
		Courts:       h.Courts,
		Invalidators: []application.VenueInvalidator{reservations},
	})
	return VenueServices{Reservations: reservations, Courts: courts}
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	AdminKeyHash string
	Verify       application.KeyVerifier
	Logger       *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	return application.NewAuthServiceWithLogger(deps.AdminKeyHash, deps.Verify, deps.Logger)
}
