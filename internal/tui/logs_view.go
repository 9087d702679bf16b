package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/hos"
)

// hoursPerDay is the width of the duty grid, one cell per hour.
const hoursPerDay = 24

// RenderLogs draws the trip summary followed by every log sheet.
func RenderLogs(trip domain.TripRecord, days []domain.DailyLog) string {
	var b strings.Builder

	st := hos.Classify(trip.CycleHours, domain.MaxCycleHours)
	summary := []string{
		titleStyle.Render("Trip summary"),
		labelStyle.Render("Current:  ") + trip.CurrentLocation,
		labelStyle.Render("Pickup:   ") + trip.PickupLocation,
		labelStyle.Render("Drop-off: ") + trip.DropoffLocation,
		labelStyle.Render("Cycle:    ") + SeverityStyle(st).Render(fmt.Sprintf("%.1f / %.0f h", st.Hours, st.Max)),
	}
	if st.Advisory != "" {
		summary = append(summary, SeverityStyle(st).Render(st.Advisory))
	}
	b.WriteString(panelStyle.Render(strings.Join(summary, "\n")))
	b.WriteString("\n")

	for i, d := range days {
		b.WriteString(RenderDay(d, i+1, len(days)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDay draws one log sheet: header, hour grid, segment list and totals.
func RenderDay(d domain.DailyLog, n, total int) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Day %d of %d", n, total)) + "  " + labelStyle.Render(d.Date),
		renderGrid(HourGrid(d)),
		"",
	}
	for _, s := range d.Segments {
		lines = append(lines, fmt.Sprintf("%s-%s  %s  %5.1fh  %s",
			s.StartTime, s.EndTime,
			StatusStyle(s.Status).Render(fmt.Sprintf("%-22s", s.Status.Label())),
			s.DurationHours, s.Location))
	}
	lines = append(lines, "", labelStyle.Render(fmt.Sprintf(
		"Driving %.0fh  On duty %.0fh  Sleeper %.0fh  Off duty %.0fh",
		d.Totals.Driving, d.Totals.OnDuty, d.Totals.Sleeper, d.Totals.OffDuty)))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// HourGrid maps each hour of the day to the duty status covering its start.
// Segments that wrap midnight fill both the evening and the early morning.
// Hours no segment covers are off duty.
func HourGrid(d domain.DailyLog) [hoursPerDay]domain.DutyStatus {
	var grid [hoursPerDay]domain.DutyStatus
	for i := range grid {
		grid[i] = domain.StatusOffDuty
	}
	for _, s := range d.Segments {
		start, err1 := clockHour(s.StartTime)
		end, err2 := clockHour(s.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		for h := start; h != end; h = (h + 1) % hoursPerDay {
			grid[h] = s.Status
		}
	}
	return grid
}

func renderGrid(grid [hoursPerDay]domain.DutyStatus) string {
	var b strings.Builder
	for _, s := range grid {
		b.WriteString(StatusStyle(s).Render("█"))
	}
	return b.String() + "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).
		Render("0     6     12    18")
}

func clockHour(hhmm string) (int, error) {
	hh, _, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, fmt.Errorf("tui.clockHour: malformed time %q", hhmm)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h >= hoursPerDay {
		return 0, fmt.Errorf("tui.clockHour: malformed time %q", hhmm)
	}
	return h, nil
}
