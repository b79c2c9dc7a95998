package router

import (
	"database/sql"
	"net/http"

	mem "pr-insights/internal/adapters/storage/memory"
	pg "pr-insights/internal/adapters/storage/postgres"
	"pr-insights/internal/domain/deliveries"
	"pr-insights/internal/domain/timeline"
	"pr-insights/internal/middleware"
	"pr-insights/internal/platform/logger"

	_ "pr-insights/docs" // registro del spec generado por swag

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger logger.Logger // puede ser nil (tests)

	// Opcional: si viene, usa Postgres. Si no, el log queda in-memory.
	DB *sql.DB

	// Límite del body de webhooks; 0 usa el default del módulo.
	MaxBodyBytes int64
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		deliveriesRepo deliveries.Repository
		eventStore     timeline.EventStore
	)

	if opts.DB != nil {
		deliveriesRepo = pg.NewDeliveriesRepo(opts.DB)
		eventStore = pg.NewTimelineRepo(opts.DB)
	} else {
		store := mem.NewStore()
		deliveriesRepo = store
		eventStore = store
	}

	// Services por módulo; el event store entra inyectado, nunca global.
	deliveriesSvc := deliveries.NewService(deliveriesRepo)
	timelineSvc := timeline.NewService(eventStore)

	deliveries.RegisterRoutes(r, deliveriesSvc, opts.MaxBodyBytes)
	timeline.RegisterRoutes(r, timelineSvc)

	return r
}
