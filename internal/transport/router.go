package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/niklvrr/mentorq/internal/config"
	"github.com/niklvrr/mentorq/internal/transport/handler"
	transportMiddleware "github.com/niklvrr/mentorq/internal/transport/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Ticket   *handler.TicketHandler
	Feedback *handler.FeedbackHandler
	Stats    *handler.StatsHandler
	Health   *handler.HealthHandler
}

func NewRouter(
	h Handlers,
	authenticator transportMiddleware.Authenticator,
	registry *prometheus.Registry,
	cfg config.AppConfig,
	log *zap.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	// Recovery должен быть первым для обработки паник во всех middleware
	router.Use(transportMiddleware.Recovery(log))

	// RequestID для трейсинга запросов
	router.Use(middleware.RequestID)

	// Logging для структурированного логирования всех запросов
	router.Use(transportMiddleware.Logging(log))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSOrigin != "*",
	}))
	router.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))

	// Timeout для контроля времени выполнения запросов, LCS может отвечать долго
	router.Use(transportMiddleware.Timeout(cfg.RequestTimeout, log))

	// Metrics для сбора метрик производительности
	router.Use(transportMiddleware.Metrics(registry))

	// Эндпоинт для Prometheus метрик
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/health", h.Health.HealthCheck)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", h.Auth.Token)
		r.Post("/token/refresh", h.Auth.Refresh)
	})

	router.Group(func(r chi.Router) {
		r.Use(transportMiddleware.Auth(authenticator, log))

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", h.Ticket.ListTickets)
			r.Post("/", h.Ticket.CreateTicket)
			r.Get("/stats", h.Stats.GetStats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Ticket.GetTicket)
				r.Patch("/", h.Ticket.UpdateTicket)
				r.Put("/", h.Ticket.UpdateTicket)
				r.Get("/slack-dm", h.Ticket.SlackDM)
			})
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Get("/", h.Feedback.ListFeedback)
			r.Post("/", h.Feedback.CreateFeedback)
			r.Get("/leaderboard", h.Stats.GetLeaderboard)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Feedback.GetFeedback)
				r.Patch("/", h.Feedback.UpdateFeedback)
				r.Put("/", h.Feedback.UpdateFeedback)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteError(w, http.StatusNotFound, handler.ErrorResponse{
			Error: handler.ErrorDetail{Code: "NOT_FOUND", Message: "route not found"},
		})
	})

	return router
}
