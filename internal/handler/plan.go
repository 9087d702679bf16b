package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/mapview"
)

// SetTextRequest is the body of PUT /api/plan/inputs/{role}.
type SetTextRequest struct {
	Text string `json:"text"`
}

// SelectRequest is the body of POST /api/plan/inputs/{role}/select.
type SelectRequest struct {
	Index *int `json:"index"`
}

// LocationRequest is the body of PUT /api/plan/locations/{role}.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

// ClickRequest is the body of POST /api/plan/map/click.
type ClickRequest struct {
	Role      string   `json:"role"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CycleHoursRequest is the body of PUT /api/plan/cycle-hours.
type CycleHoursRequest struct {
	Hours *float64 `json:"hours"`
}

// SubmitResponse is the body of a successful POST /api/plan/submit.
type SubmitResponse struct {
	Trip            domain.TripRecord `json:"trip"`
	RedirectTo      string            `json:"redirectTo"`
	RedirectAfterMs int64             `json:"redirectAfterMs"`
}

// GetPlan handles GET /api/plan.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// ClearPlan handles DELETE /api/plan. The persisted trip is left in place.
func (s *Server) ClearPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	if err := p.Clear(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetInputText handles PUT /api/plan/inputs/{role}.
func (s *Server) SetInputText(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	var body SetTextRequest
	if !decodeBody(w, r, &body) {
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	if err := p.SetText(role, body.Text); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	st, err := p.Suggestions(role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetSuggestions handles GET /api/plan/inputs/{role}/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	st, err := p.Suggestions(role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SelectSuggestion handles POST /api/plan/inputs/{role}/select.
func (s *Server) SelectSuggestion(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	var body SelectRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Index == nil {
		requestBody(w, "index is required")
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	loc, err := p.SelectSuggestion(role, *body.Index)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// SetLocation handles PUT /api/plan/locations/{role}.
func (s *Server) SetLocation(w http.ResponseWriter, r *http.Request) {
	role, ok := roleParam(w, r)
	if !ok {
		return
	}
	var body LocationRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Latitude == nil || body.Longitude == nil {
		requestBody(w, "latitude and longitude are required")
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	at := domain.Coordinates{Latitude: *body.Latitude, Longitude: *body.Longitude}
	if err := p.SetLocation(domain.NewLocation(role, at, body.Address)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p.View())
}

// ClickMap handles POST /api/plan/map/click.
func (s *Server) ClickMap(w http.ResponseWriter, r *http.Request) {
	var body ClickRequest
	if !decodeBody(w, r, &body) {
		return
	}
	role, err := domain.ParseRole(body.Role)
	if err != nil {
		requestBody(w, unwrapMessage(err, domain.ErrValidation))
		return
	}
	if body.Latitude == nil || body.Longitude == nil {
		requestBody(w, "latitude and longitude are required")
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	loc, err := p.Click(r.Context(), role, domain.Coordinates{Latitude: *body.Latitude, Longitude: *body.Longitude})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// MoveCamera handles PUT /api/plan/map/camera.
func (s *Server) MoveCamera(w http.ResponseWriter, r *http.Request) {
	var body mapview.Viewport
	if !decodeBody(w, r, &body) {
		return
	}
	if !body.Center.Valid() || body.Zoom < 0 {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "camera out of range")
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	p.MoveCamera(body)
	w.WriteHeader(http.StatusNoContent)
}

// GetMap handles GET /api/plan/map.
func (s *Server) GetMap(w http.ResponseWriter, r *http.Request) {
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.View().Map)
}

// SetCycleHours handles PUT /api/plan/cycle-hours.
// Out-of-range values are clamped, not rejected.
func (s *Server) SetCycleHours(w http.ResponseWriter, r *http.Request) {
	var body CycleHoursRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Hours == nil {
		requestBody(w, "hours is required")
		return
	}
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.SetCycleHours(*body.Hours))
}

// SubmitPlan handles POST /api/plan/submit. It blocks for the simulated
// calculation delay.
func (s *Server) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.planner(w, r)
	if !ok {
		return
	}
	res, err := p.Submit(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmitResponse{
		Trip:            res.Trip,
		RedirectTo:      res.RedirectTo,
		RedirectAfterMs: res.RedirectAfter.Milliseconds(),
	})
}

// --- request helpers --------------------------------------------------------

// planner resolves the request's session to its planner, writing the error
// response itself when that fails.
func (s *Server) planner(w http.ResponseWriter, r *http.Request) (Planner, bool) {
	id, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	p, err := s.planners(id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return nil, false
	}
	return p, true
}

// roleParam binds the {role} path parameter.
func roleParam(w http.ResponseWriter, r *http.Request) (domain.Role, bool) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", "role", chi.URLParam(r, "role"), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		requestBody(w, fmt.Sprintf("invalid format for parameter role: %s", err))
		return "", false
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		requestBody(w, unwrapMessage(err, domain.ErrValidation))
		return "", false
	}
	return role, true
}

// decodeBody decodes the JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		requestBody(w, "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBadRequest, "request body too large")
			return false
		}
		requestBody(w, "malformed JSON body")
		return false
	}
	return true
}
