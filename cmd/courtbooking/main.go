package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/example/court-booking/internal/application"
	"github.com/example/court-booking/internal/config"
	httptransport "github.com/example/court-booking/internal/http"
	"github.com/example/court-booking/internal/logging"
	"github.com/example/court-booking/internal/persistence/redisstore"
	"github.com/example/court-booking/internal/persistence/sqlite"
	"github.com/example/court-booking/internal/persistence/sqlite/migration"
	"github.com/example/court-booking/internal/recurrence"
	"github.com/example/court-booking/internal/telemetry"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-key" {
		if err := hashKey(os.Stdout, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		return
	}

	bootLogger := logging.NewLogger(os.Stdout, "info")
	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("court booking API stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  telemetry.ServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           otelhttp.NewHandler(newHandler(st, cfg, logger), telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("court booking API listening", "addr", server.Addr, "store", cfg.StoreDriver)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// store is the backend chosen by COURTBOOKING_STORE_DRIVER.
type store struct {
	courts       application.CourtRepository
	reservations application.ReservationRepository
	ping         func(context.Context) error
	close        func() error
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverRedis:
		rs := redisstore.New(redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.Location)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return store{}, fmt.Errorf("connect redis: %w", err)
		}
		return store{courts: rs, reservations: rs, ping: rs.Ping, close: rs.Close}, nil
	default:
		storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.SQLiteDSN), cfg.Location, logger)
		if err != nil {
			return store{}, fmt.Errorf("open storage: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			_ = storage.Close()
			return store{}, fmt.Errorf("apply migrations: %w", err)
		}
		return store{courts: storage.Courts(), reservations: storage.Reservations(), ping: storage.Ping, close: storage.Close}, nil
	}
}

func newHandler(st store, cfg config.Config, logger *slog.Logger) http.Handler {
	reservations := application.NewReservationService(st.reservations, st.courts, uuid.NewString, time.Now, application.ReservationServiceConfig{
		Location:      cfg.Location,
		Horizon:       recurrence.Horizon{Years: cfg.RecurrenceHorizonYears},
		MaxWindowDays: cfg.MaxWindowDays,
		CacheTTL:      cfg.CalendarCacheTTL,
		DisableCache:  cfg.CalendarCacheTTL == 0,
		Logger:        logger,
	})
	courts := application.NewCourtServiceWithLogger(st.courts, time.Now, logger, reservations)
	auth := application.NewAuthServiceWithLogger(cfg.AdminKeyHash, application.VerifyAdminKey, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Courts:       httptransport.NewCourtHandler(courts, logger),
		Reservations: httptransport.NewReservationHandler(reservations, cfg.Location, logger),
		Occupancy:    httptransport.NewOccupancyHandler(reservations, cfg.Location, logger),
		Health:       func(r *http.Request) error { return st.ping(r.Context()) },
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestID(),
			httptransport.RequestLogger(logger),
			httptransport.Authenticate(auth, logger),
		},
	})
}

// hashKey prints the argon2id hash to put in COURTBOOKING_ADMIN_KEY_HASH.
func hashKey(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: courtbooking hash-key <admin key>")
	}
	encoded, err := application.HashAdminKey(args[0], application.DefaultArgon2idParams)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, encoded)
	return err
}
