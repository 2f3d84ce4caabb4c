package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kigurumiya/reserve-backend/api/controllers"
	"github.com/kigurumiya/reserve-backend/api/middleware"
	availabilitysvc "github.com/kigurumiya/reserve-backend/internal/availability"
	calendarsvc "github.com/kigurumiya/reserve-backend/internal/calendar"
	inventorysvc "github.com/kigurumiya/reserve-backend/internal/inventory"
	reservationsvc "github.com/kigurumiya/reserve-backend/internal/reservations"
	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/db"
	"github.com/kigurumiya/reserve-backend/pkg/logger"
	"github.com/kigurumiya/reserve-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis *redis.Client

	Gatherer prometheus.Gatherer

	Availability availabilitysvc.Service
	Calendar     calendarsvc.Service
	Inventory    inventorysvc.Service
	Reservations reservationsvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	submitPolicy := middleware.NewSubmitRateLimitPolicy(
		"submit",
		cfg.Reservation.RateLimitWindow,
		cfg.Reservation.SubmitIPLimit,
	)
	// A nil *redis.Client must stay a nil interface downstream, so the
	// readiness check reports "skipped" and the rate limiter disables itself.
	var redisDep interface {
		Ping(ctx context.Context) error
		IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	}
	if p.Redis != nil {
		redisDep = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisDep))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/items", controllers.PublicListItems(p.Inventory, logg))

		r.Route("/availability", func(r chi.Router) {
			r.Get("/", controllers.AvailabilityCheck(p.Availability, logg))
			r.Get("/month", controllers.AvailabilityMonth(p.Availability, logg))
			r.Get("/disabled-dates", controllers.AvailabilityDisabledDates(p.Availability, logg))
		})

		r.Route("/reservations", func(r chi.Router) {
			r.With(middleware.SubmitRateLimit(submitPolicy, redisDep, logg)).
				Post("/", controllers.SubmitReservation(p.Reservations, logg))
			r.Get("/{code}", controllers.LookupReservation(p.Reservations, logg))
			r.Post("/{code}/cancel", controllers.CancelReservation(p.Reservations, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.BasicAuth(cfg.AdminAuth, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.AdminListItems(p.Inventory, logg))
			r.Post("/", controllers.AdminCreateItem(p.Inventory, logg))
			r.Get("/{itemId}", controllers.AdminGetItem(p.Inventory, logg))
			r.Put("/{itemId}", controllers.AdminUpdateItem(p.Inventory, logg))

			r.Route("/{itemId}/calendar", func(r chi.Router) {
				r.Get("/", controllers.AdminListOverrides(p.Calendar, logg))
				r.Put("/", controllers.AdminSetOverride(p.Calendar, logg))
				r.Delete("/", controllers.AdminRemoveOverride(p.Calendar, logg))
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.AdminListReservations(p.Reservations, logg))
			r.Post("/", controllers.AdminCreateReservation(p.Reservations, logg))
		})
	})

	return r
}
