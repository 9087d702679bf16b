package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/eldlog"
	"github.com/pkordes/eldplan/internal/hos"
	"github.com/pkordes/eldplan/internal/mapview"
	"github.com/pkordes/eldplan/internal/repo"
)

// DefaultPrintDelay is the simulated PDF generation time.
const DefaultPrintDelay = 2 * time.Second

// Review actions.
const (
	ActionPrint = "print"
	ActionShare = "share"
)

// TripSummary is the static summary card of a submitted trip.
type TripSummary struct {
	CurrentLocation string  `json:"currentLocation"`
	PickupLocation  string  `json:"pickupLocation"`
	DropoffLocation string  `json:"dropoffLocation"`
	CycleHours      float64 `json:"cycleHours"`
}

// Review is everything the review page renders.
type Review struct {
	Trip    domain.TripRecord `json:"trip"`
	Days    []domain.DailyLog `json:"days"`
	Cycle   hos.Status        `json:"cycle"`
	Summary TripSummary       `json:"summary"`
	Recap   mapview.Snapshot  `json:"recap"`
}

// Ack is the acknowledgement of a simulated review action.
type Ack struct {
	Action  string    `json:"action"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ReviewConfig carries the ReviewService collaborators.
type ReviewConfig struct {
	Slots      repo.TripSlotRepo
	Map        mapview.MountConfig
	PrintDelay time.Duration
	Clock      func() time.Time
	Sleep      func(ctx context.Context, d time.Duration) error
	Logger     *slog.Logger
}

// ReviewService reads the persisted trip and turns it into a reviewable log.
type ReviewService struct {
	slots      repo.TripSlotRepo
	mapCfg     mapview.MountConfig
	printDelay time.Duration
	clock      func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	log        *slog.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(cfg ReviewConfig) *ReviewService {
	s := &ReviewService{
		slots:      cfg.Slots,
		mapCfg:     cfg.Map,
		printDelay: cfg.PrintDelay,
		clock:      cfg.Clock,
		sleep:      cfg.Sleep,
		log:        cfg.Logger,
	}
	if s.printDelay <= 0 {
		s.printDelay = DefaultPrintDelay
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.sleep == nil {
		s.sleep = sleepCtx
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.mapCfg.Container == "" {
		s.mapCfg.Container = "review-map"
	}
	return s
}

// Open loads session's trip and generates its logs.
// Returns domain.ErrNotFound when nothing has been submitted; no logs are
// generated in that case.
func (s *ReviewService) Open(ctx context.Context, session uuid.UUID) (Review, error) {
	trip, err := s.slots.Load(ctx, session)
	if err != nil {
		return Review{}, fmt.Errorf("service.ReviewService.Open: %w", err)
	}

	recap, err := s.recap(trip.Locations)
	if err != nil {
		return Review{}, fmt.Errorf("service.ReviewService.Open: %w", err)
	}

	return Review{
		Trip:  trip,
		Days:  eldlog.Generate(trip),
		Cycle: hos.Classify(trip.CycleHours, domain.MaxCycleHours),
		Summary: TripSummary{
			CurrentLocation: trip.CurrentLocation,
			PickupLocation:  trip.PickupLocation,
			DropoffLocation: trip.DropoffLocation,
			CycleHours:      trip.CycleHours,
		},
		Recap: recap,
	}, nil
}

// Print simulates PDF generation. No document is produced.
func (s *ReviewService) Print(ctx context.Context) (Ack, error) {
	if err := s.sleep(ctx, s.printDelay); err != nil {
		return Ack{}, fmt.Errorf("service.ReviewService.Print: %w", err)
	}
	s.log.InfoContext(ctx, "log print simulated")
	return Ack{Action: ActionPrint, Message: "Your ELD logs are ready to print.", At: s.clock().UTC()}, nil
}

// Share acknowledges a share request without contacting anything.
func (s *ReviewService) Share(ctx context.Context) Ack {
	s.log.InfoContext(ctx, "log share simulated")
	return Ack{Action: ActionShare, Message: "Share link copied.", At: s.clock().UTC()}
}

// recap draws the trip's locations on a fresh read-only surface.
func (s *ReviewService) recap(locs []domain.Location) (mapview.Snapshot, error) {
	canvas := mapview.NewCanvas()
	mapc := mapview.NewController(canvas, nil, s.log)
	if err := mapc.Init(s.mapCfg); err != nil {
		return mapview.Snapshot{}, err
	}
	if err := mapc.Sync(locs); err != nil {
		return mapview.Snapshot{}, err
	}
	return canvas.Snapshot(), nil
}

// Pager walks the generated days, bounded at the first and last.
type Pager struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// NewPager returns a pager at index clamped into [0, total).
func NewPager(index, total int) Pager {
	return Pager{Index: index, Total: total}.Clamp()
}

// Clamp bounds Index to the valid range. An empty pager stays at 0.
func (p Pager) Clamp() Pager {
	switch {
	case p.Total <= 0:
		p.Index, p.Total = 0, 0
	case p.Index < 0:
		p.Index = 0
	case p.Index >= p.Total:
		p.Index = p.Total - 1
	}
	return p
}

// Next moves one day forward, staying on the last day.
func (p Pager) Next() Pager {
	p.Index++
	return p.Clamp()
}

// Prev moves one day back, staying on the first day.
func (p Pager) Prev() Pager {
	p.Index--
	return p.Clamp()
}

// HasNext reports whether Next would move.
func (p Pager) HasNext() bool { return p.Index < p.Total-1 }

// HasPrev reports whether Prev would move.
func (p Pager) HasPrev() bool { return p.Index > 0 }
