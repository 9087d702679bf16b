package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/hos"
	"github.com/pkordes/eldplan/internal/mapview"
	"github.com/pkordes/eldplan/internal/middleware"
	"github.com/pkordes/eldplan/internal/service"
)

// PagerResponse describes the day currently shown.
type PagerResponse struct {
	Day     int  `json:"day"`
	Total   int  `json:"total"`
	HasPrev bool `json:"hasPrev"`
	HasNext bool `json:"hasNext"`
}

// ReviewResponse is the body of GET /api/review.
type ReviewResponse struct {
	Trip    domain.TripRecord   `json:"trip"`
	Summary service.TripSummary `json:"summary"`
	Cycle   hos.Status          `json:"cycle"`
	Recap   mapview.Snapshot    `json:"recap"`
	Days    []domain.DailyLog   `json:"days"`
	Current domain.DailyLog     `json:"current"`
	Pager   PagerResponse       `json:"pager"`
}

// GetReview handles GET /api/review?day=.
// day is 1-based and clamped to the generated range.
func (s *Server) GetReview(w http.ResponseWriter, r *http.Request) {
	day := 1
	if err := runtime.BindQueryParameter("form", true, false, "day", r.URL.Query(), &day); err != nil {
		requestBody(w, err.Error())
		return
	}
	id, ok := s.session(w, r)
	if !ok {
		return
	}
	rv, err := s.review.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, codeNoTrip, "no trip has been planned yet")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewToResponse(rv, day))
}

// PrintReview handles POST /api/review/print. It blocks for the simulated
// document generation delay.
func (s *Server) PrintReview(w http.ResponseWriter, r *http.Request) {
	ack, err := s.review.Print(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// ShareReview handles POST /api/review/share.
func (s *Server) ShareReview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.review.Share(r.Context()))
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.SessionID(r.Context())
	if !ok {
		s.writeServiceError(w, r, errors.New("handler: request has no session"))
		return uuid.Nil, false
	}
	return id, true
}

// reviewToResponse picks the requested day out of the review.
func reviewToResponse(rv service.Review, day int) ReviewResponse {
	pager := service.NewPager(day-1, len(rv.Days))
	resp := ReviewResponse{
		Trip:    rv.Trip,
		Summary: rv.Summary,
		Cycle:   rv.Cycle,
		Recap:   rv.Recap,
		Days:    rv.Days,
		Pager: PagerResponse{
			Day:     pager.Index + 1,
			Total:   pager.Total,
			HasPrev: pager.HasPrev(),
			HasNext: pager.HasNext(),
		},
	}
	if pager.Total > 0 {
		resp.Current = rv.Days[pager.Index]
	}
	return resp
}
