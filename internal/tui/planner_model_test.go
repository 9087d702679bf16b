package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/hos"
	"github.com/pkordes/eldplan/internal/service"
)

// fakePlanner records calls and returns canned results.
type fakePlanner struct {
	texts    map[domain.Role]string
	selected []int
	cycle    float64
	cleared  bool
	submit   func(ctx context.Context) (service.SubmitResult, error)
}

func newFakePlanner() *fakePlanner {
	return &fakePlanner{texts: make(map[domain.Role]string)}
}

func (f *fakePlanner) SetText(role domain.Role, text string) error {
	f.texts[role] = text
	return nil
}
func (f *fakePlanner) SelectSuggestion(role domain.Role, i int) (domain.Location, error) {
	f.selected = append(f.selected, i)
	return domain.Location{Role: role, Address: fmt.Sprintf("choice %d", i)}, nil
}
func (f *fakePlanner) SetCycleHours(v float64) hos.Status {
	f.cycle = v
	return hos.Classify(v, domain.MaxCycleHours)
}
func (f *fakePlanner) Clear() error {
	f.cleared = true
	return nil
}
func (f *fakePlanner) State() service.PlanState { return service.StateEmpty }
func (f *fakePlanner) Submit(ctx context.Context) (service.SubmitResult, error) {
	return f.submit(ctx)
}

var _ Planner = (*fakePlanner)(nil)

func send(t *testing.T, m PlannerModel, msgs ...tea.Msg) PlannerModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(PlannerModel)
		require.True(t, ok)
	}
	return m
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestPlannerModel_TypingForwardsText(t *testing.T) {
	p := newFakePlanner()
	m := NewPlannerModel(context.Background(), p, nil)

	send(t, m, keys("D"), keys("a"), keys("l"))

	assert.Equal(t, "Dal", p.texts[domain.RoleCurrent])
}

func TestPlannerModel_TabMovesToNextInput(t *testing.T) {
	p := newFakePlanner()
	m := NewPlannerModel(context.Background(), p, nil)

	send(t, m, tea.KeyMsg{Type: tea.KeyTab}, keys("M"))

	assert.Equal(t, "M", p.texts[domain.RolePickup])
	assert.Empty(t, p.texts[domain.RoleCurrent])
}

func TestPlannerModel_SelectSuggestionWithArrowsAndEnter(t *testing.T) {
	p := newFakePlanner()
	m := NewPlannerModel(context.Background(), p, nil)

	m = send(t, m,
		SuggestionsMsg{Role: domain.RoleCurrent, Items: []geocode.Candidate{{Address: "a"}, {Address: "b"}}},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	require.Equal(t, []int{1}, p.selected)
	assert.Equal(t, "choice 1", m.inputs[fieldCurrent].Value())
	assert.False(t, m.hasSuggestions())
	assert.Equal(t, fieldCurrent, m.focus)
}

func TestPlannerModel_CycleHoursInput(t *testing.T) {
	p := newFakePlanner()
	m := NewPlannerModel(context.Background(), p, nil)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})

	m = send(t, m, keys("6"), keys("0"))

	assert.Equal(t, 60.0, p.cycle)
	assert.Equal(t, hos.SeverityWarning, m.cycle.Severity)

	m = send(t, m, keys("x"))
	assert.NotEmpty(t, m.errText)
	assert.Equal(t, 60.0, p.cycle)
}

func TestPlannerModel_PresetStepping(t *testing.T) {
	p := newFakePlanner()
	m := NewPlannerModel(context.Background(), p, nil)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyPgUp}, tea.KeyMsg{Type: tea.KeyPgUp})
	assert.Equal(t, 35.0, p.cycle)
	assert.Equal(t, "35", m.inputs[fieldCycle].Value())

	send(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, 20.0, p.cycle)
}

func TestPlannerModel_SubmitSuccessShowsLogs(t *testing.T) {
	trip := domain.TripRecord{
		CurrentLocation: "Dallas, TX, USA",
		PickupLocation:  "Memphis, TN, USA",
		DropoffLocation: "Atlanta, GA, USA",
		PlannedAt:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	p := newFakePlanner()
	p.submit = func(context.Context) (service.SubmitResult, error) {
		return service.SubmitResult{Trip: trip, RedirectTo: service.ReviewPath, RedirectAfter: time.Millisecond}, nil
	}
	m := NewPlannerModel(context.Background(), p, nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(PlannerModel)
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	res, err := p.Submit(context.Background())
	m = send(t, m, submittedMsg{result: res, err: err})
	assert.False(t, m.submitting)
	assert.Len(t, m.days, 3)
	assert.Contains(t, m.View(), "Trip planned successfully")

	m = send(t, m, reviewMsg{})
	assert.Contains(t, m.View(), "Day 1 of 3")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.pager.Index)
	assert.Contains(t, m.View(), "Day 3 of 3")
}

func TestPlannerModel_SubmitValidationErrorShown(t *testing.T) {
	p := newFakePlanner()
	p.submit = func(context.Context) (service.SubmitResult, error) {
		return service.SubmitResult{}, fmt.Errorf("%w: please fill in all location fields: pickup", domain.ErrValidation)
	}
	m := NewPlannerModel(context.Background(), p, nil)

	res, err := p.Submit(context.Background())
	m = send(t, m, submittedMsg{result: res, err: err})

	assert.Contains(t, m.View(), "please fill in all location fields")
	assert.Nil(t, m.days)
}

func TestPlannerModel_ClearResetsInputs(t *testing.T) {
	p := newFakePlanner()
	m := NewPlannerModel(context.Background(), p, nil)
	m = send(t, m, keys("Dallas"))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})

	assert.True(t, p.cleared)
	assert.Empty(t, m.inputs[fieldCurrent].Value())
}

func TestSuggestionFeed_PublishNeverBlocks(t *testing.T) {
	feed := make(SuggestionFeed, 1)

	feed.Publish(uuid.Nil, domain.RolePickup, []geocode.Candidate{{Address: "a"}})
	feed.Publish(uuid.Nil, domain.RolePickup, []geocode.Candidate{{Address: "b"}})

	got := <-feed
	assert.Equal(t, domain.RolePickup, got.Role)
	assert.Equal(t, "a", got.Items[0].Address)
}
