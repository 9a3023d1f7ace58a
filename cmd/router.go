package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	cancelAppointmentHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/cancel_appointment"
	createBookingHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/create_booking"
	getAppointmentHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_available_slots"
	getCustomerAppointmentsHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_customer_appointments"
	getScheduleHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/get_schedule"
	listAppointmentsHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/list_appointments"
	listServicesHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/list_services"
	registerCustomerHandler "github.com/m04kA/SMC-SpaBookingService/internal/api/handlers/register_customer"
	"github.com/m04kA/SMC-SpaBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SpaBookingService/internal/config"
	"github.com/m04kA/SMC-SpaBookingService/internal/infra/lock"
	bookingsService "github.com/m04kA/SMC-SpaBookingService/internal/service/bookings"
	catalogService "github.com/m04kA/SMC-SpaBookingService/internal/service/catalog"
	customersService "github.com/m04kA/SMC-SpaBookingService/internal/service/customers"
	createBookingUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-SpaBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SpaBookingService/pkg/logger"
	"github.com/m04kA/SMC-SpaBookingService/pkg/metrics"
)

const healthCheckTimeout = 2 * time.Second

// routerDeps собранные зависимости HTTP-слоя
type routerDeps struct {
	cfg      *config.Config
	stores   *stores
	locker   lock.Locker
	metrics  *metrics.Metrics // nil, если метрики выключены
	gatherer prometheus.Gatherer
	log      *logger.Logger
}

func newRouter(deps routerDeps) (*mux.Router, error) {
	cfg, log := deps.cfg, deps.log

	schedule, err := cfg.Slots.Schedule()
	if err != nil {
		return nil, fmt.Errorf("slot schedule: %w", err)
	}

	// Инициализируем сервисы
	catalogSvc := catalogService.NewService(deps.stores.catalog, log)
	customersSvc := customersService.NewService(deps.stores.customers, cfg.Booking.BcryptCost, log)
	bookingsSvc := bookingsService.NewService(
		deps.stores.appointments,
		deps.stores.catalog,
		deps.stores.customers,
		deps.metrics,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase, err := getAvailableSlotsUC.NewUseCase(
		deps.stores.catalog,
		deps.stores.appointments,
		schedule,
		log,
	)
	if err != nil {
		return nil, err
	}

	createBookingUseCase, err := createBookingUC.NewUseCase(
		deps.stores.catalog,
		deps.stores.customers,
		deps.stores.appointments,
		deps.stores.tx,
		deps.locker,
		deps.metrics,
		createBookingUC.Config{
			Schedule:             schedule,
			RequireKnownCustomer: cfg.Booking.RequireKnownCustomer,
		},
		log,
	)
	if err != nil {
		return nil, err
	}

	// Инициализируем handlers
	listServices := listServicesHandler.NewHandler(catalogSvc, log)
	getSchedule := getScheduleHandler.NewHandler(schedule, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(bookingsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(bookingsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(bookingsSvc, log)
	getCustomerAppointments := getCustomerAppointmentsHandler.NewHandler(bookingsSvc, log)
	registerCustomer := registerCustomerHandler.NewHandler(customersSvc, log)

	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(log))

	if deps.metrics != nil {
		r.Use(middleware.HTTPMetrics(deps.metrics))
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", healthHandler(deps.stores.ping)).Methods(http.MethodGet)

	// Мутирующие маршруты проходят через rate limit
	limited := func(h http.HandlerFunc) http.Handler { return h }
	if cfg.RateLimit.Enabled {
		trusted, err := cfg.RateLimit.TrustedProxyPrefixes()
		if err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, trusted, log)
		limited = func(h http.HandlerFunc) http.Handler { return limiter.Middleware(h) }
		log.Info("Rate limit enabled: %.2f req/s, burst=%d, trusted proxies=%d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, len(trusted))
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Каталог и расписание ---
	api.HandleFunc("/services", listServices.Handle).Methods(http.MethodGet)
	api.HandleFunc("/services/{serviceId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// --- Записи ---
	api.Handle("/appointments", limited(createBooking.Handle)).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	api.Handle("/appointments/{appointmentId}/cancel", limited(cancelAppointment.Handle)).Methods(http.MethodPatch)

	// --- Клиенты ---
	api.Handle("/customers", limited(registerCustomer.Handle)).Methods(http.MethodPost)
	api.HandleFunc("/customers/{customerId}/appointments", getCustomerAppointments.Handle).Methods(http.MethodGet)

	// --- Администрирование ---
	api.HandleFunc("/admin/appointments", listAppointments.Handle).Methods(http.MethodGet)

	return r, nil
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			handlers.RespondError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
