package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/service"
)

// NoticeNoTrip is the ?notice= value set when /review has nothing to show.
const NoticeNoTrip = "no-trip"

var notices = map[string]string{
	NoticeNoTrip: "No trip data found. Please plan a trip first.",
}

var pageFuncs = template.FuncMap{
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
	"hours": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"add":   func(a, b int) int { return a + b },
}

type planPageData struct {
	Notice string
	View   service.PlanView
	Config pageScriptConfig
}

type reviewPageData struct {
	Review  service.Review
	Current domain.DailyLog
	Pager   PagerResponse
	Config  pageScriptConfig
}

type pageScriptConfig struct {
	PageConfig
	DebounceMs      int64 `json:"debounceMs"`
	RedirectDelayMs int64 `json:"redirectDelayMs"`
}

// PlanPage handles GET /, the trip-planning page.
func (s *Server) PlanPage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	s.render(w, r, "plan.html", planPageData{
		Notice: notices[r.URL.Query().Get("notice")],
		View:   p.View(),
		Config: s.scriptConfig(),
	})
}

// ReviewPage handles GET /review?day=. Without a submitted trip it redirects
// to the planning page with a notice and generates nothing.
func (s *Server) ReviewPage(w http.ResponseWriter, r *http.Request) {
	day := 1
	if err := runtime.BindQueryParameter("form", true, false, "day", r.URL.Query(), &day); err != nil {
		day = 1
	}
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	rv, err := s.review.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			q := url.Values{"notice": {NoticeNoTrip}}
			http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	resp := reviewToResponse(rv, day)
	s.render(w, r, "review.html", reviewPageData{
		Review:  rv,
		Current: resp.Current,
		Pager:   resp.Pager,
		Config:  s.scriptConfig(),
	})
}

func (s *Server) scriptConfig() pageScriptConfig {
	return pageScriptConfig{
		PageConfig:      s.page,
		DebounceMs:      s.page.Debounce.Milliseconds(),
		RedirectDelayMs: s.page.RedirectDelay.Milliseconds(),
	}
}

// render executes a page template into a buffer so a template error never
// produces a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.ErrorContext(r.Context(), "render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
