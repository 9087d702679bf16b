package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/eldlog"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/hos"
	"github.com/pkordes/eldplan/internal/service"
)

// Planner is the subset of service.Planner the terminal surface drives.
type Planner interface {
	SetText(role domain.Role, text string) error
	SelectSuggestion(role domain.Role, i int) (domain.Location, error)
	SetCycleHours(v float64) hos.Status
	Clear() error
	State() service.PlanState
	Submit(ctx context.Context) (service.SubmitResult, error)
}

var _ Planner = (*service.Planner)(nil)

type field int

const (
	fieldCurrent field = iota
	fieldPickup
	fieldDropoff
	fieldCycle
	fieldCount
)

func (f field) role() (domain.Role, bool) {
	if f < fieldCycle {
		return domain.Roles[f], true
	}
	return "", false
}

// SuggestionsMsg carries a replaced suggestion list into the program.
type SuggestionsMsg struct {
	Role  domain.Role
	Items []geocode.Candidate
}

// SuggestionFeed bridges Planner suggestion callbacks, which fire on
// geocoder goroutines, into the bubbletea event loop.
type SuggestionFeed chan SuggestionsMsg

// NewSuggestionFeed returns a buffered feed.
func NewSuggestionFeed() SuggestionFeed { return make(SuggestionFeed, 32) }

// Publish matches service.PlannerConfig.OnSuggestions. A full feed drops the
// update; a later edit of the same input publishes again.
func (f SuggestionFeed) Publish(_ uuid.UUID, role domain.Role, items []geocode.Candidate) {
	select {
	case f <- SuggestionsMsg{Role: role, Items: items}:
	default:
	}
}

type submittedMsg struct {
	result service.SubmitResult
	err    error
}

type reviewMsg struct{}

// PlannerModel is the terminal trip-planning surface. After a successful
// submit it switches to paging through the generated log sheets.
type PlannerModel struct {
	ctx     context.Context
	planner Planner
	feed    SuggestionFeed

	inputs      [fieldCount]textinput.Model
	focus       field
	suggestions map[domain.Role][]geocode.Candidate
	cursor      int
	cycle       hos.Status

	spinner    spinner.Model
	submitting bool
	notice     string
	errText    string

	trip   domain.TripRecord
	days   []domain.DailyLog
	pager  service.Pager
	review bool
}

// NewPlannerModel builds the model with the current-location input focused.
func NewPlannerModel(ctx context.Context, p Planner, feed SuggestionFeed) PlannerModel {
	m := PlannerModel{
		ctx:         ctx,
		planner:     p,
		feed:        feed,
		suggestions: make(map[domain.Role][]geocode.Candidate),
		cycle:       hos.Classify(0, domain.MaxCycleHours),
	}
	for f := fieldCurrent; f < fieldCount; f++ {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Width = 48
		ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccent))
		ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		if r, ok := f.role(); ok {
			ti.Placeholder = "Search " + strings.ToLower(r.Label())
			ti.CharLimit = 200
		} else {
			ti.Placeholder = "0"
			ti.CharLimit = 5
		}
		m.inputs[f] = ti
	}
	m.inputs[fieldCurrent].Focus()

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	return m
}

func (m PlannerModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSuggestions())
}

func (m PlannerModel) waitForSuggestions() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	feed := m.feed
	return func() tea.Msg {
		msg, ok := <-feed
		if !ok {
			return nil
		}
		return msg
	}
}

func (m PlannerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SuggestionsMsg:
		m.suggestions[msg.Role] = msg.Items
		if r, ok := m.focus.role(); ok && r == msg.Role {
			m.cursor = 0
		}
		return m, m.waitForSuggestions()

	case submittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.trip = msg.result.Trip
		m.days = eldlog.Generate(msg.result.Trip)
		m.pager = service.NewPager(0, len(m.days))
		m.notice = "Trip planned successfully! Opening logs..."
		return m, tea.Tick(msg.result.RedirectAfter, func(time.Time) tea.Msg { return reviewMsg{} })

	case reviewMsg:
		m.review = true
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.review {
			return m.updateReview(msg)
		}
		return m.updatePlanning(msg)
	}
	return m, nil
}

func (m PlannerModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	case "left", "h":
		m.pager = m.pager.Prev()
	case "right", "l":
		m.pager = m.pager.Next()
	}
	return m, nil
}

func (m PlannerModel) updatePlanning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		if msg.String() == "down" && m.hasSuggestions() {
			m.cursor = min(m.cursor+1, len(m.focusedSuggestions())-1)
			return m, nil
		}
		return m.moveFocus(1)
	case "shift+tab", "up":
		if msg.String() == "up" && m.hasSuggestions() {
			m.cursor = max(m.cursor-1, 0)
			return m, nil
		}
		return m.moveFocus(-1)
	case "pgup":
		if m.focus == fieldCycle {
			return m.stepPreset(1), nil
		}
	case "pgdown":
		if m.focus == fieldCycle {
			return m.stepPreset(-1), nil
		}
	case "ctrl+l":
		return m.clear(), nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.hasSuggestions() {
			return m.selectSuggestion(), nil
		}
		if m.focus == fieldCycle {
			return m.submit()
		}
		return m.moveFocus(1)
	}
	if m.submitting {
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if after := m.inputs[m.focus].Value(); after != before {
		m = m.edited(after)
	}
	return m, cmd
}

func (m PlannerModel) edited(text string) PlannerModel {
	m.errText = ""
	m.notice = ""
	if r, ok := m.focus.role(); ok {
		if err := m.planner.SetText(r, text); err != nil {
			m.errText = err.Error()
		}
		return m
	}
	v, err := parseHours(text)
	if err != nil {
		m.errText = "Cycle hours must be a number"
		return m
	}
	m.cycle = m.planner.SetCycleHours(v)
	return m
}

func (m PlannerModel) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = field((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))
	m.cursor = 0
	return m, m.inputs[m.focus].Focus()
}

func (m PlannerModel) stepPreset(dir int) PlannerModel {
	next := m.cycle.Hours
	if dir > 0 {
		for _, p := range hos.Presets {
			if p > m.cycle.Hours {
				next = p
				break
			}
		}
	} else {
		for i := len(hos.Presets) - 1; i >= 0; i-- {
			if hos.Presets[i] < m.cycle.Hours {
				next = hos.Presets[i]
				break
			}
		}
	}
	m.cycle = m.planner.SetCycleHours(next)
	m.inputs[fieldCycle].SetValue(strconv.FormatFloat(m.cycle.Hours, 'f', -1, 64))
	return m
}

func (m PlannerModel) selectSuggestion() PlannerModel {
	r, _ := m.focus.role()
	loc, err := m.planner.SelectSuggestion(r, m.cursor)
	if err != nil {
		m.errText = err.Error()
		return m
	}
	m.inputs[m.focus].SetValue(loc.Address)
	m.inputs[m.focus].CursorEnd()
	delete(m.suggestions, r)
	m.cursor = 0
	return m
}

func (m PlannerModel) clear() PlannerModel {
	if err := m.planner.Clear(); err != nil {
		m.errText = err.Error()
		return m
	}
	for f := range m.inputs {
		m.inputs[f].SetValue("")
	}
	m.suggestions = make(map[domain.Role][]geocode.Candidate)
	m.cycle = m.planner.SetCycleHours(0)
	m.errText, m.notice = "", ""
	return m
}

func (m PlannerModel) submit() (tea.Model, tea.Cmd) {
	if m.submitting || m.notice != "" {
		return m, nil
	}
	m.submitting = true
	m.errText = ""
	p, ctx := m.planner, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := p.Submit(ctx)
		return submittedMsg{result: res, err: err}
	})
}

func (m PlannerModel) focusedSuggestions() []geocode.Candidate {
	r, ok := m.focus.role()
	if !ok {
		return nil
	}
	return m.suggestions[r]
}

func (m PlannerModel) hasSuggestions() bool { return len(m.focusedSuggestions()) > 0 }

func (m PlannerModel) View() string {
	if m.review {
		return m.viewReview()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ELD Trip Planner"))
	b.WriteString("\n\n")

	for f := fieldCurrent; f < fieldCycle; f++ {
		r, _ := f.role()
		b.WriteString(labelStyle.Render(r.Label()))
		b.WriteString("\n")
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")
		if f == m.focus {
			for i, c := range m.suggestions[r] {
				line := "  " + c.Address
				if i == m.cursor {
					line = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Render("▶ " + c.Address)
				}
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Current cycle used (hours)"))
	b.WriteString("\n")
	b.WriteString(m.inputs[fieldCycle].View())
	b.WriteString("\n")
	b.WriteString(SeverityStyle(m.cycle).Render(fmt.Sprintf("%.1f / %.0f h used, %.1f h remaining",
		m.cycle.Hours, m.cycle.Max, m.cycle.Remaining)))
	if m.cycle.Advisory != "" {
		b.WriteString("\n")
		b.WriteString(SeverityStyle(m.cycle).Render(m.cycle.Advisory))
	}
	b.WriteString("\n\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View() + " Calculating route...")
	case m.notice != "":
		b.WriteString(successStyle.Render(m.notice))
	default:
		b.WriteString(labelStyle.Render("State: " + string(m.planner.State())))
	}
	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errText))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Tab/↓: Next | Shift+Tab/↑: Back | Enter: Select | PgUp/PgDn: Preset | Ctrl+S: Plan | Ctrl+L: Clear | Esc: Quit"))
	return b.String()
}

func (m PlannerModel) viewReview() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%s → %s → %s",
		m.trip.CurrentLocation, m.trip.PickupLocation, m.trip.DropoffLocation)))
	b.WriteString("\n")
	if len(m.days) > 0 {
		p := m.pager.Clamp()
		b.WriteString(RenderDay(m.days[p.Index], p.Index+1, p.Total))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←/→: Day | q: Quit"))
	return b.String()
}

func parseHours(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	return strconv.ParseFloat(text, 64)
}
