package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/ports"
	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store        ports.Store
	Transactions *services.TransactionService
	Views        *services.ViewService
	Auth         *services.AuthService
	Tokens       *auth.TokenIssuer
	Logger       *slog.Logger
}

type Options struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps     Deps
	logger   *applog.Logger
	detector *security.Detector
	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Call Shutdown to stop it and its background sweeps.
func NewServer(opts Options, deps Deps) *Server {
	logger := applog.Wrap(deps.Logger, applog.ComponentHTTP)
	detector := security.NewDetector()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		deps:     deps,
		logger:   logger,
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		started:  time.Now(),
	}
	s.Handler = s.routes(opts.AllowedOrigins)
	return s
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		security.CORS(allowedOrigins),
		s.detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.tracer.Middleware,
		applog.Middleware(s.logger),
		applog.RequestIDMiddleware(trace.GetRequestIDFromRequest),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	limit := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})
	authenticated := auth.Middleware(s.deps.Tokens, func(w http.ResponseWriter, r *http.Request, err error) {
		writeMessage(w, http.StatusUnauthorized, "Missing or invalid token")
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", s.handleRegister)
			r.With(limit).Post("/login", s.handleLogin)
			r.With(authenticated).Get("/me", s.handleMe)
			r.With(authenticated, limit).Delete("/delete-account", s.handleDeleteAccount)
		})

		r.Route("/finance", func(r chi.Router) {
			r.Use(authenticated)
			r.With(limit).Post("/add", s.handleAddTransaction)
			r.Get("/history", s.handleHistory)
			r.Get("/history/filtered", s.handleFilteredHistory)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.pdf", s.handleExportPDF)
			r.Get("/chart.png", s.handleChart)
			r.With(limit).Put("/{id}", s.handleUpdateTransaction)
			r.With(limit).Delete("/{id}", s.handleDeleteTransaction)
		})
	})
	return r
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
