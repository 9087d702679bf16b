// Package handler implements the HTTP handlers for the ELD trip planner.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, plan.go, review.go, ...) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/hos"
	"github.com/pkordes/eldplan/internal/mapview"
	"github.com/pkordes/eldplan/internal/service"
	"github.com/pkordes/eldplan/spec"
	"github.com/pkordes/eldplan/web"
)

// Planner defines the trip-planning operations the plan handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without running autocomplete timers or a map surface.
type Planner interface {
	SetText(role domain.Role, text string) error
	Suggestions(role domain.Role) (geocode.InputState, error)
	SelectSuggestion(role domain.Role, i int) (domain.Location, error)
	SetLocation(loc domain.Location) error
	Click(ctx context.Context, role domain.Role, at domain.Coordinates) (domain.Location, error)
	SetCycleHours(v float64) hos.Status
	MoveCamera(v mapview.Viewport)
	Clear() error
	View() service.PlanView
	Submit(ctx context.Context) (service.SubmitResult, error)
}

// PlannerSource returns the planner of a session.
type PlannerSource func(session uuid.UUID) (Planner, error)

// ReviewServicer defines the log-review operations the review handlers depend on.
type ReviewServicer interface {
	Open(ctx context.Context, session uuid.UUID) (service.Review, error)
	Print(ctx context.Context) (service.Ack, error)
	Share(ctx context.Context) service.Ack
}

// PageConfig is handed to the page scripts.
type PageConfig struct {
	MapStyle      string        `json:"mapStyle"`
	MapAPIKey     string        `json:"mapApiKey"`
	Debounce      time.Duration `json:"-"`
	RedirectDelay time.Duration `json:"-"`
}

// Deps bundles everything Server needs.
type Deps struct {
	Geocoder geocode.Geocoder
	Planners PlannerSource
	Review   ReviewServicer
	Page     PageConfig
	Logger   *slog.Logger
}

// Server serves the JSON API and the two pages.
type Server struct {
	geo      geocode.Geocoder
	planners PlannerSource
	review   ReviewServicer
	page     PageConfig
	log      *slog.Logger
	tmpl     *template.Template
}

// NewServer constructs the Server with all its dependencies.
// The page templates are parsed once here; a parse failure is a build defect
// and panics.
func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		geo:      d.Geocoder,
		planners: d.Planners,
		review:   d.Review,
		page:     d.Page,
		log:      log,
		tmpl:     template.Must(template.New("pages").Funcs(pageFuncs).ParseFS(web.Templates, "templates/*.html")),
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Deps{})
}

// Routes registers every endpoint on r.
// Session middleware must run before these handlers.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Get("/", s.PlanPage)
	r.Get("/review", s.ReviewPage)
	r.Handle("/static/*", http.FileServer(http.FS(web.Static)))

	r.Route("/api", func(r chi.Router) {
		r.Get("/geocode/search", s.SearchGeocode)
		r.Get("/geocode/reverse", s.ReverseGeocode)

		r.Route("/plan", func(r chi.Router) {
			r.Get("/", s.GetPlan)
			r.Delete("/", s.ClearPlan)
			r.Put("/inputs/{role}", s.SetInputText)
			r.Get("/inputs/{role}/suggestions", s.GetSuggestions)
			r.Post("/inputs/{role}/select", s.SelectSuggestion)
			r.Put("/locations/{role}", s.SetLocation)
			r.Post("/map/click", s.ClickMap)
			r.Put("/map/camera", s.MoveCamera)
			r.Get("/map", s.GetMap)
			r.Put("/cycle-hours", s.SetCycleHours)
			r.Post("/submit", s.SubmitPlan)
		})

		r.Get("/review", s.GetReview)
		r.Post("/review/print", s.PrintReview)
		r.Post("/review/share", s.ShareReview)
	})
}

// Handler returns a chi router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
