package httpapi

import (
	"net/http"
	"time"

	"immunization_reminder_bot/internal/app"
	"immunization_reminder_bot/internal/domain/immunization"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server is the operator-facing HTTP surface: a dispatch trigger, an SMS
// simulator, the escalation queue and health worker administration. It
// replaces the dashboard the SMS core does not carry.
type Server struct {
	inbound    *app.InboundService
	dispatch   *app.DispatchService
	admin      *app.AdminService
	schedules  immunization.Repository
	logger     *logrus.Entry
	adminToken string
}

func NewServer(
	inbound *app.InboundService,
	dispatch *app.DispatchService,
	admin *app.AdminService,
	schedules immunization.Repository,
	logger *logrus.Entry,
	adminToken string,
) *Server {
	return &Server{
		inbound:    inbound,
		dispatch:   dispatch,
		admin:      admin,
		schedules:  schedules,
		logger:     logger,
		adminToken: adminToken,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sms/inbound", s.handleInboundSMS)
		r.Get("/escalations", s.handleListEscalations)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdminToken)
			r.Post("/dispatch/run", s.handleRunDispatch)
			r.Post("/workers", s.handleAddWorker)
			r.Delete("/workers/{phone}", s.handleDeactivateWorker)
			r.Get("/workers", s.handleListWorkers)
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("HTTP request handled")
	})
}

// requireAdminToken gates mutating operator endpoints behind a shared
// token. With no token configured the endpoints stay open, which is only
// acceptable for local development.
func (s *Server) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken != "" && r.Header.Get("X-Admin-Token") != s.adminToken {
			s.logger.WithField("path", r.URL.Path).Warn("Rejected request with bad admin token")
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
