// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/intake-backend/internal/models"
	"github.com/intake-backend/internal/service"
	"github.com/intake-backend/internal/storage"
)

// Service interfaces for dependency injection and testing

// SubmissionServiceInterface defines the submission operations the
// handlers depend on
type SubmissionServiceInterface interface {
	Create(ctx context.Context, data map[string]any) (*models.Submission, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	List(ctx context.Context, filter service.ListFilter) (*service.ListResult, error)
	ByStatus(ctx context.Context, status string, page, pageSize int) (*storage.Page[models.Submission], error)
	UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Submission, error)
	Delete(ctx context.Context, id int64) (*models.Submission, error)
	Search(ctx context.Context, term string, page, pageSize int) (*storage.Page[models.Submission], error)
	Stats(ctx context.Context) (*service.StatsResult, error)
	Recent(ctx context.Context, days, limit int) ([]models.Submission, error)
	PromoteToProject(ctx context.Context, id int64) (*models.Project, error)
}

// UserServiceInterface defines the user operations the handlers
// depend on
type UserServiceInterface interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter storage.UserFilter) ([]models.User, error)
	Search(ctx context.Context, email, name string) ([]models.User, error)
	Projects(ctx context.Context, userID int64) ([]models.Project, error)
	Submissions(ctx context.Context, userID int64) ([]models.UserSubmission, error)
}

// Pinger reports backing-store reachability for the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Addr            string
	Environment     string
	CORSOrigins     []string
	AdminPassword   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server represents the HTTP API server
type Server struct {
	router        *mux.Router
	httpServer    *http.Server
	submissions   SubmissionServiceInterface
	users         UserServiceInterface
	db            Pinger
	limiter       Limiter
	config        *ServerConfig
	development   bool
	adminPassword string
}

// NewServer creates a new API server instance. db may be nil in tests;
// the health endpoint then skips the reachability check.
func NewServer(
	config *ServerConfig,
	submissions SubmissionServiceInterface,
	users UserServiceInterface,
	db Pinger,
	limiter Limiter,
) *Server {
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 15 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 15 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 60 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		router:        mux.NewRouter(),
		submissions:   submissions,
		users:         users,
		db:            db,
		limiter:       limiter,
		config:        config,
		development:   config.Environment == "development",
		adminPassword: config.AdminPassword,
	}

	s.setupRouter()

	return s
}

// Router returns the configured handler, used directly in tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures the middleware chain and routes
func (s *Server) setupRouter() {
	// Middleware order matters: the request id must exist before the
	// request is logged.
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware)
	s.router.Use(s.RecoveryMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(CORSMiddleware(s.config.CORSOrigins))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes. Fixed-path submission routes
// are registered before the {id} pattern so mux never captures
// "stats" or "search" as an id.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Preflight requests must match a route for the middleware chain to
	// run; the CORS middleware answers them before this handler.
	s.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	api := s.router.PathPrefix("/api").Subrouter()

	// Public intake endpoint, rate limited per client
	publicSubmit := api.PathPrefix("/submissions").Subrouter()
	if s.limiter != nil {
		publicSubmit.Use(s.RateLimitMiddleware(s.limiter))
	}
	publicSubmit.HandleFunc("", s.handleCreateSubmission).Methods(http.MethodPost)

	// Admin submission endpoints
	admin := api.PathPrefix("/submissions").Subrouter()
	admin.Use(s.adminAuth)
	admin.HandleFunc("", s.handleListSubmissions).Methods(http.MethodGet)
	admin.HandleFunc("/stats", s.handleSubmissionStats).Methods(http.MethodGet)
	admin.HandleFunc("/search", s.handleSearchSubmissions).Methods(http.MethodGet)
	admin.HandleFunc("/recent", s.handleRecentSubmissions).Methods(http.MethodGet)
	admin.HandleFunc("/status/{status}", s.handleSubmissionsByStatus).Methods(http.MethodGet)
	admin.HandleFunc("/{id}", s.handleGetSubmission).Methods(http.MethodGet)
	admin.HandleFunc("/{id}/status", s.handleUpdateSubmissionStatus).Methods(http.MethodPut)
	admin.HandleFunc("/{id}/promote", s.handlePromoteSubmission).Methods(http.MethodPost)
	admin.HandleFunc("/{id}", s.handleDeleteSubmission).Methods(http.MethodDelete)

	// Admin user endpoints
	users := api.PathPrefix("/users").Subrouter()
	users.Use(s.adminAuth)
	users.HandleFunc("", s.handleListUsers).Methods(http.MethodGet)
	users.HandleFunc("/search", s.handleSearchUsers).Methods(http.MethodGet)
	users.HandleFunc("/{id}", s.handleGetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id}/projects", s.handleUserProjects).Methods(http.MethodGet)
	users.HandleFunc("/{id}/submissions", s.handleUserSubmissions).Methods(http.MethodGet)
}

// handleHealth reports service and database health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	database := "ok"
	code := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			status = "degraded"
			database = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, code, map[string]string{
		"status":      status,
		"database":    database,
		"environment": s.config.Environment,
		"service":     "intake-backend",
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
