package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-assistant/internal/backend"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/flows"
	"github.com/jonathan/job-assistant/internal/markdown"
	"github.com/jonathan/job-assistant/internal/observability"
	"github.com/jonathan/job-assistant/internal/rendering"
	"github.com/jonathan/job-assistant/internal/server/middleware"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
	"github.com/jonathan/job-assistant/internal/state"
)

// VisitorCookie is the name of the signed visitor cookie.
const VisitorCookie = "ja_visitor"

// BackendFactory creates the backend client for a new visitor.
type BackendFactory func(visitorID string) (flows.Backend, error)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpServer *http.Server
	mux        *http.ServeMux
	handler    http.Handler

	runner     *flows.Runner
	sessions   *state.Registry[*flows.Session]
	tokens     *JWTService
	limiter    *ratelimit.Limiter
	metrics    *observability.Metrics
	db         *db.DB
	newBackend BackendFactory
}

// Option configures a Server.
type Option func(*Server)

// WithBackendFactory replaces the default per-visitor backend client.
func WithBackendFactory(f BackendFactory) Option {
	return func(s *Server) { s.newBackend = f }
}

// WithMetrics uses m instead of a fresh metrics registry.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithDB records flow runs in database instead of connecting to
// Database.URL.
func WithDB(database *db.DB) Option {
	return func(s *Server) { s.db = database }
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		defaults := config.Defaults()
		cfg = &defaults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewMetrics()
	}
	if s.newBackend == nil {
		s.newBackend = s.defaultBackend
	}

	if s.db == nil && cfg.Database.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		s.db = database
	}

	tokenConfig, err := config.NewVisitorTokenConfig(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create visitor token config: %w", err)
	}
	if tokenConfig.Ephemeral {
		logger.Warn("JWT_SECRET not set, visitor cookies will not survive a restart")
	}
	s.tokens = NewJWTService(tokenConfig)

	renderer := rendering.New(markdown.New(markdown.Options{Sanitize: cfg.Markdown.Sanitize}))
	runnerOpts := []flows.RunnerOption{flows.WithObserver(s.metrics)}
	if s.db != nil {
		runnerOpts = append(runnerOpts, flows.WithRecorder(s.db))
	}
	s.runner = flows.NewRunner(flows.NewController(renderer), logger, runnerOpts...)

	s.sessions = state.NewRegistry(state.RegistryOptions[*flows.Session]{
		Create:          s.newSession,
		Release:         func(*flows.Session) { s.metrics.VisitorsActive.Dec() },
		IdleTTL:         cfg.Session.IdleTTL.Std(),
		CleanupInterval: cfg.Session.CleanupInterval.Std(),
	})

	s.limiter = ratelimit.NewLimiter(ratelimit.FromSettings(cfg.RateLimit))

	s.mux = http.NewServeMux()
	s.routes()

	handler := middleware.Visitor(s.tokens.AsTokenService(), middleware.CookieOptions{
		Name:   VisitorCookie,
		TTL:    tokenConfig.TTL,
		Secure: cfg.Session.CookieSecure,
	}, func(err error) {
		logger.Error("failed to issue visitor cookie", zap.Error(err))
	})(s.mux)

	if cfg.Auth.Enabled() {
		passwordConfig, err := config.NewPasswordConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create password config: %w", err)
		}
		handler = middleware.BasicAuth(middleware.BasicAuthOptions{
			Username:     cfg.Auth.Username,
			PasswordHash: cfg.Auth.PasswordHash,
			Verifier:     passwordConfig,
			Exempt:       []string{"/health", "/metrics"},
		})(handler)
	}

	s.handler = s.withLogging(s.withRateLimit(handler))

	s.httpServer = &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     s.handler,
		ReadTimeout: cfg.Server.ReadTimeout.Std(),
		// Flows wait on LLM-backed endpoints, so writes get no deadline
		// beyond the backend client's own timeout.
		IdleTimeout: 60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /ui/state", s.handleState)
	s.mux.HandleFunc("POST /ui/resume", s.handleUpload)
	s.mux.HandleFunc("POST /ui/resume/remove", s.handleRemoveResume)
	s.mux.HandleFunc("POST /ui/jobs/search", s.handleSearch)
	s.mux.HandleFunc("POST /ui/jobs/{index}/cover-letter", s.handleCoverLetter)
	s.mux.HandleFunc("POST /ui/jobs/{index}/research", s.handleResearchFromJob)
	s.mux.HandleFunc("POST /ui/modal/close", s.handleCloseModal)
	s.mux.HandleFunc("GET /ui/cover-letter/download", s.handleCoverLetterDownload)
	s.mux.HandleFunc("POST /ui/skills/analyze", s.handleSkillGap)
	s.mux.HandleFunc("POST /ui/skills/analyze/stream", s.handleSkillGapStream)
	s.mux.HandleFunc("POST /ui/courses", s.handleCourses)
	s.mux.HandleFunc("POST /ui/research", s.handleResearch)
	s.mux.HandleFunc("GET /ui/research/brief/download", s.handleBriefDownload)
	s.mux.HandleFunc("POST /ui/nav/{page}", s.handleNavigate)
	s.mux.HandleFunc("POST /ui/notices/{id}/dismiss", s.handleDismissNotice)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(rendering.Static())))
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns the server's handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			zap.String("addr", ln.Addr().String()),
			zap.String("backend", s.cfg.Backend.URL),
			zap.Bool("auth", s.cfg.Auth.Enabled()),
			zap.Bool("flow_log", s.db != nil))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout.Std())
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.Close()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// Close releases the server's background workers and database pool.
func (s *Server) Close() {
	s.sessions.Stop()
	s.limiter.Stop()
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Server) defaultBackend(string) (flows.Backend, error) {
	client, err := backend.NewClient(backend.Options{
		BaseURL:           s.cfg.Backend.URL,
		Timeout:           s.cfg.Backend.Timeout.Std(),
		Retries:           s.cfg.Backend.Retries,
		UserAgent:         s.cfg.Backend.UserAgent,
		ValidateResponses: s.cfg.Backend.ValidateResponses,
		OnCall:            s.metrics.BackendCall,
	}, s.logger.Named("backend"))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Server) newSession(visitorID string) *flows.Session {
	api, err := s.newBackend(visitorID)
	if err != nil {
		s.logger.Error("failed to create backend client", zap.String("visitor", visitorID), zap.Error(err))
		api = unavailableBackend{cause: err}
	}
	s.metrics.VisitorsActive.Inc()
	return flows.NewSession(visitorID, api)
}

// session returns the calling visitor's session.
func (s *Server) session(r *http.Request) (*flows.Session, error) {
	visitorID, err := middleware.GetVisitorID(r)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(visitorID.String()), nil
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging and request metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := s.route(r)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("elapsed", elapsed))
	})
}

// route returns the mux pattern serving r, so metrics stay bounded.
func (s *Server) route(r *http.Request) string {
	if _, pattern := s.mux.Handler(r); pattern != "" {
		return pattern
	}
	return "unmatched"
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.limiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.metrics.RateLimited.Inc()
			s.rateLimitResponse(w, clientID, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"visitors": s.sessions.Len(),
		"flow_log": s.db != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retryAfter := int(math.Ceil(info.RetryAfter.Seconds()))
		response["retry_after"] = retryAfter
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Time("reset", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
