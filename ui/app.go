package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"oohdesk/app"
	"oohdesk/internal"
	"oohdesk/ports"
)

// App represents the HTTP application
type App struct {
	router  *chi.Mux
	imports *app.ImportService
	runner  *app.GeocodeRunner
	layers  ports.LayerRepository
	logger  *internal.Logger
	runs    *runRegistry

	maxUploadBytes int64
}

// Config holds HTTP application configuration
type Config struct {
	MaxUploadBytes int64
}

// NewApp creates a new HTTP application
func NewApp(config Config, imports *app.ImportService, runner *app.GeocodeRunner, layers ports.LayerRepository, logger *internal.Logger) *App {
	a := &App{
		router:         chi.NewRouter(),
		imports:        imports,
		runner:         runner,
		layers:         layers,
		logger:         logger,
		runs:           newRunRegistry(),
		maxUploadBytes: config.MaxUploadBytes,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Post("/api/import/validate-codes", a.handleValidateCodes)

	a.router.Route("/api/import/sessions", func(r chi.Router) {
		r.Post("/", a.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", a.handleGetSession)
			r.Delete("/", a.handleCloseSession)
			r.Put("/mapping/{column}", a.handleAssignColumn)
			r.Put("/cells/{row}/{column}", a.handleEditCell)
			r.Get("/summary", a.handleSummary)
			r.Post("/validate-codes", a.handlePreflightCodes)
			r.Post("/commit", a.handleCommit)
		})
	})

	a.router.Route("/api/layers/{layerID}/geocode", func(r chi.Router) {
		r.Post("/", a.handleStartGeocode)
		r.Get("/", a.handleGeocodeProgress)
		r.Delete("/", a.handleCancelGeocode)
	})

	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Router returns the configured handler for mounting on a server.
func (a *App) Router() http.Handler {
	return a.router
}
