// Package service contains the business logic for the ELD trip planner.
// Planner is the trip-planning surface, ReviewService the log-review surface.
// No SQL or HTTP lives here; services depend on repo and collaborator
// interfaces only.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/hos"
	"github.com/pkordes/eldplan/internal/mapview"
	"github.com/pkordes/eldplan/internal/repo"
)

// PlanState is the planning surface's position in its state machine.
type PlanState string

const (
	StateEmpty      PlanState = "empty"
	StatePartial    PlanState = "partial"
	StateReady      PlanState = "ready"
	StateSubmitting PlanState = "submitting"
	StateSubmitted  PlanState = "submitted"
)

// ReviewPath is where a submitted trip is reviewed.
const ReviewPath = "/review"

// Defaults for PlannerConfig fields left at zero.
const (
	DefaultSubmitDelay   = 2 * time.Second
	DefaultRedirectDelay = 1500 * time.Millisecond
	DefaultIdleTTL       = 30 * time.Minute
	DefaultMaxPlanners   = 1000
)

// PlannerConfig carries the collaborators and timings shared by every Planner.
type PlannerConfig struct {
	Geocoder geocode.Geocoder
	Slots    repo.TripSlotRepo

	// Input configures the three location inputs. OnChange and
	// OnSuggestions are owned by the Planner and are overwritten.
	Input geocode.Options

	// Map is the mount configuration of each planner's map surface.
	Map mapview.MountConfig

	// SubmitDelay simulates route calculation before the slot is written.
	SubmitDelay time.Duration
	// RedirectDelay is how long the page shows the success notice before
	// moving to the review page.
	RedirectDelay time.Duration

	// IdleTTL and MaxPlanners bound a PlannerRegistry. They do not affect a
	// standalone Planner.
	IdleTTL     time.Duration
	MaxPlanners int

	// OnSuggestions, when set, is told about every suggestion list change.
	OnSuggestions func(session uuid.UUID, role domain.Role, s []geocode.Candidate)

	Clock  func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	if c.SubmitDelay <= 0 {
		c.SubmitDelay = DefaultSubmitDelay
	}
	if c.RedirectDelay <= 0 {
		c.RedirectDelay = DefaultRedirectDelay
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = DefaultIdleTTL
	}
	if c.MaxPlanners <= 0 {
		c.MaxPlanners = DefaultMaxPlanners
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Sleep == nil {
		c.Sleep = sleepCtx
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// InputView is one location input as rendered by the page.
type InputView struct {
	Role  domain.Role `json:"role"`
	Label string      `json:"label"`
	geocode.InputState
}

// PlanView is a snapshot of the planning surface.
type PlanView struct {
	SessionID uuid.UUID         `json:"sessionId"`
	State     PlanState         `json:"state"`
	Inputs    []InputView       `json:"inputs"`
	Locations []domain.Location `json:"locations"`
	Cycle     hos.Status        `json:"cycle"`
	Presets   []float64         `json:"presets"`
	Map       mapview.Snapshot  `json:"map"`
	Camera    mapview.Viewport  `json:"camera"`
}

// SubmitResult is returned by a successful Submit.
type SubmitResult struct {
	Trip          domain.TripRecord `json:"trip"`
	RedirectTo    string            `json:"redirectTo"`
	RedirectAfter time.Duration     `json:"-"`
}

// Planner is one session's trip-planning surface. It composes three location
// inputs, the cycle-hours value and a map controller.
type Planner struct {
	session uuid.UUID
	cfg     PlannerConfig
	log     *slog.Logger
	inputs  map[domain.Role]*geocode.Autocompleter
	canvas  *mapview.Canvas
	mapc    *mapview.Controller

	mu         sync.Mutex
	texts      map[domain.Role]string
	locs       domain.LocationSet
	cycleHours float64
	// phase overrides the derived state while submitting and after a
	// successful submit; empty means "derive from the inputs".
	phase PlanState
}

// NewPlanner constructs the planning surface for session and mounts its map.
func NewPlanner(session uuid.UUID, cfg PlannerConfig) (*Planner, error) {
	cfg = cfg.withDefaults()
	p := &Planner{
		session: session,
		cfg:     cfg,
		log:     cfg.Logger.With("session_id", session.String()),
		inputs:  make(map[domain.Role]*geocode.Autocompleter, len(domain.Roles)),
		canvas:  mapview.NewCanvas(),
		texts:   make(map[domain.Role]string, len(domain.Roles)),
	}
	p.mapc = mapview.NewController(p.canvas, cfg.Geocoder, p.log)

	mount := cfg.Map
	if mount.Container == "" {
		mount.Container = "plan-map"
	}
	if err := p.mapc.Init(mount); err != nil {
		return nil, fmt.Errorf("service.NewPlanner: %w", err)
	}

	for _, role := range domain.Roles {
		role := role
		opts := cfg.Input
		opts.Logger = p.log.With("input", role.String())
		opts.OnChange = func(text string, c *domain.Coordinates) { p.onInput(role, text, c) }
		opts.OnSuggestions = nil
		if cfg.OnSuggestions != nil {
			opts.OnSuggestions = func(s []geocode.Candidate) { cfg.OnSuggestions(session, role, s) }
		}
		p.inputs[role] = geocode.NewAutocompleter(cfg.Geocoder, opts)
	}
	return p, nil
}

// SessionID returns the session this planner belongs to.
func (p *Planner) SessionID() uuid.UUID { return p.session }

// SetText records an edit of role's input field and schedules suggestions.
func (p *Planner) SetText(role domain.Role, text string) error {
	in, err := p.input(role)
	if err != nil {
		return fmt.Errorf("service.Planner.SetText: %w", err)
	}
	in.SetText(text)
	return nil
}

// Suggestions returns the state of role's input.
func (p *Planner) Suggestions(role domain.Role) (geocode.InputState, error) {
	in, err := p.input(role)
	if err != nil {
		return geocode.InputState{}, fmt.Errorf("service.Planner.Suggestions: %w", err)
	}
	return in.State(), nil
}

// SelectSuggestion picks suggestion i of role's input and places its marker.
func (p *Planner) SelectSuggestion(role domain.Role, i int) (domain.Location, error) {
	in, err := p.input(role)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.Planner.SelectSuggestion: %w", err)
	}
	if _, err := in.Select(i); err != nil {
		return domain.Location{}, fmt.Errorf("service.Planner.SelectSuggestion: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	loc, _ := p.locs.Get(role)
	return loc, nil
}

// SetLocation places loc directly, replacing any location with the same role.
// The role's input text becomes loc.Address.
func (p *Planner) SetLocation(loc domain.Location) error {
	in, err := p.input(loc.Role)
	if err != nil {
		return fmt.Errorf("service.Planner.SetLocation: %w", err)
	}
	if !loc.Coordinates().Valid() {
		return fmt.Errorf("service.Planner.SetLocation: %w: coordinates out of range", domain.ErrValidation)
	}
	if strings.TrimSpace(loc.Address) == "" {
		loc.Address = loc.Coordinates().String()
	}
	in.Fill(loc.Address)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[loc.Role] = loc.Address
	return p.placeLocked(loc)
}

// Click reverse-geocodes a map click into a location for role and places it.
func (p *Planner) Click(ctx context.Context, role domain.Role, at domain.Coordinates) (domain.Location, error) {
	if _, err := p.input(role); err != nil {
		return domain.Location{}, fmt.Errorf("service.Planner.Click: %w", err)
	}
	loc, err := p.mapc.Click(ctx, role, at)
	if err != nil {
		return domain.Location{}, fmt.Errorf("service.Planner.Click: %w", err)
	}
	if err := p.SetLocation(loc); err != nil {
		return domain.Location{}, err
	}
	return loc, nil
}

// SetCycleHours clamps v into [0, 70] and returns its display status.
func (p *Planner) SetCycleHours(v float64) hos.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cycleHours = hos.Clamp(v, domain.MaxCycleHours)
	p.editedLocked()
	return hos.Classify(p.cycleHours, domain.MaxCycleHours)
}

// MoveCamera records camera telemetry from the page.
func (p *Planner) MoveCamera(v mapview.Viewport) {
	p.mapc.MoveCamera(v)
}

// Clear resets every input, the locations, the cycle hours and the map.
// The persisted slot is left untouched.
func (p *Planner) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase == StateSubmitting {
		return fmt.Errorf("service.Planner.Clear: %w: a submission is in progress", domain.ErrConflict)
	}
	// Autocompleter.Clear never calls back into the planner, so it is safe
	// under p.mu.
	for _, in := range p.inputs {
		in.Clear()
	}
	p.texts = make(map[domain.Role]string, len(domain.Roles))
	p.locs.Clear()
	p.cycleHours = 0
	p.phase = ""
	if err := p.mapc.Sync(nil); err != nil {
		return fmt.Errorf("service.Planner.Clear: %w", err)
	}
	return nil
}

// State returns the current state of the planning surface.
func (p *Planner) State() PlanState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

// View returns a snapshot for rendering.
func (p *Planner) View() PlanView {
	inputs := make([]InputView, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		inputs = append(inputs, InputView{Role: role, Label: role.Label(), InputState: p.inputs[role].State()})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return PlanView{
		SessionID: p.session,
		State:     p.stateLocked(),
		Inputs:    inputs,
		Locations: p.locs.Ordered(),
		Cycle:     hos.Classify(p.cycleHours, domain.MaxCycleHours),
		Presets:   hos.Presets,
		Map:       p.canvas.Snapshot(),
		Camera:    p.mapc.Camera(),
	}
}

// Submit validates the form, waits out the simulated calculation, writes the
// TripRecord to the session's slot and moves to submitted.
// Only a ready form submits. Returns domain.ErrValidation when an address
// field is blank and domain.ErrConflict when a submission is running or the
// unchanged form was already submitted.
func (p *Planner) Submit(ctx context.Context) (SubmitResult, error) {
	p.mu.Lock()
	switch p.phase {
	case StateSubmitting:
		p.mu.Unlock()
		return SubmitResult{}, fmt.Errorf("service.Planner.Submit: %w: a submission is already in progress", domain.ErrConflict)
	case StateSubmitted:
		p.mu.Unlock()
		return SubmitResult{}, fmt.Errorf("service.Planner.Submit: %w: trip already submitted; edit the form to submit again", domain.ErrConflict)
	}
	rec := p.recordLocked()
	if err := rec.Validate(); err != nil {
		p.mu.Unlock()
		return SubmitResult{}, fmt.Errorf("service.Planner.Submit: %w", err)
	}
	p.phase = StateSubmitting
	p.mu.Unlock()

	p.log.InfoContext(ctx, "trip submission started", "cycle_hours", rec.CycleHours, "locations", len(rec.Locations))

	if err := p.cfg.Sleep(ctx, p.cfg.SubmitDelay); err != nil {
		p.abortSubmit()
		return SubmitResult{}, fmt.Errorf("service.Planner.Submit: %w", err)
	}

	rec.PlannedAt = p.cfg.Clock().UTC()
	if err := p.cfg.Slots.Save(ctx, p.session, rec); err != nil {
		p.abortSubmit()
		return SubmitResult{}, fmt.Errorf("service.Planner.Submit: %w", err)
	}

	p.mu.Lock()
	p.phase = StateSubmitted
	p.mu.Unlock()

	p.log.InfoContext(ctx, "trip submitted", "planned_at", rec.PlannedAt)
	return SubmitResult{Trip: rec, RedirectTo: ReviewPath, RedirectAfter: p.cfg.RedirectDelay}, nil
}

// Close stops the inputs' timers and in-flight queries.
func (p *Planner) Close() {
	for _, in := range p.inputs {
		in.Close()
	}
}

func (p *Planner) input(role domain.Role) (*geocode.Autocompleter, error) {
	in, ok := p.inputs[role]
	if !ok {
		return nil, fmt.Errorf("%w: unknown location role %q", domain.ErrValidation, role)
	}
	return in, nil
}

// onInput receives every change from a location input.
func (p *Planner) onInput(role domain.Role, text string, c *domain.Coordinates) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[role] = text
	p.editedLocked()
	if c == nil {
		return
	}
	if err := p.placeLocked(domain.NewLocation(role, *c, text)); err != nil {
		p.log.Error("failed to place selected location", "role", role, "error", err)
	}
}

// placeLocked stores loc and redraws the map from the full location set.
func (p *Planner) placeLocked(loc domain.Location) error {
	replaced, err := p.locs.Put(loc)
	if err != nil {
		return err
	}
	p.editedLocked()
	p.log.Debug("location placed", "role", loc.Role, "replaced", replaced)
	if err := p.mapc.Sync(p.locs.Ordered()); err != nil {
		return fmt.Errorf("service.Planner: sync map: %w", err)
	}
	return nil
}

// editedLocked drops the submitted marker once the form changes again.
func (p *Planner) editedLocked() {
	if p.phase == StateSubmitted {
		p.phase = ""
	}
}

func (p *Planner) stateLocked() PlanState {
	if p.phase != "" {
		return p.phase
	}
	filled := 0
	for _, role := range domain.Roles {
		if strings.TrimSpace(p.texts[role]) != "" {
			filled++
		}
	}
	switch {
	case filled == len(domain.Roles):
		return StateReady
	case filled == 0 && p.locs.Len() == 0:
		return StateEmpty
	default:
		return StatePartial
	}
}

func (p *Planner) recordLocked() domain.TripRecord {
	return domain.TripRecord{
		CurrentLocation: p.texts[domain.RoleCurrent],
		PickupLocation:  p.texts[domain.RolePickup],
		DropoffLocation: p.texts[domain.RoleDropoff],
		CycleHours:      p.cycleHours,
		Locations:       p.locs.Ordered(),
	}
}

func (p *Planner) abortSubmit() {
	p.mu.Lock()
	p.phase = ""
	p.mu.Unlock()
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
