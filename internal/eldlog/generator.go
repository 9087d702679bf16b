// Package eldlog fabricates the mock ELD log sheets shown on the review page.
// The schedule is a fixed template; only a few location fields are taken from
// the trip.
package eldlog

import (
	"fmt"

	"github.com/pkordes/eldplan/internal/domain"
)

// Days is the number of log sheets generated for every trip.
const Days = 3

// Placeholder locations for segments that carry no trip address.
const (
	placeTruckStop = "Truck stop"
	placeEnRoute   = "En route"
	placeRestArea  = "Rest area"
)

// template is one day's schedule. Locations are filled in by Generate.
var template = [...]domain.LogSegment{
	{StartTime: "06:00", EndTime: "07:00", Status: domain.StatusOnDuty, DurationHours: 1},
	{StartTime: "07:00", EndTime: "12:00", Status: domain.StatusDriving, DurationHours: 5},
	{StartTime: "12:00", EndTime: "13:00", Status: domain.StatusOffDuty, DurationHours: 1},
	{StartTime: "13:00", EndTime: "18:00", Status: domain.StatusDriving, DurationHours: 5},
	{StartTime: "18:00", EndTime: "06:00", Status: domain.StatusSleeper, DurationHours: 12},
}

// Indexes into template.
const (
	segStart        = 0
	segFirstDriving = 1
	segBreak        = 2
	segLastDriving  = 3
	segSleeper      = 4
)

// dayTotals are reported as-is on every sheet. They are not summed from the
// segments.
var dayTotals = domain.DutyTotals{Driving: 10, OnDuty: 1, Sleeper: 12, OffDuty: 1}

// Generate returns exactly Days log sheets for trip. It is a pure function:
// dates are derived from trip.PlannedAt (UTC calendar day + index) and never
// from the wall clock.
func Generate(trip domain.TripRecord) []domain.DailyLog {
	start := trip.PlannedAt.UTC()
	logs := make([]domain.DailyLog, Days)
	for day := range logs {
		segs := make([]domain.LogSegment, len(template))
		copy(segs, template[:])
		for i := range segs {
			segs[i].Location = placeholder(i)
		}

		switch day {
		case 0:
			segs[segStart].Location = trip.CurrentLocation
		case 1:
			segs[segFirstDriving].Location = trip.PickupLocation
		case 2:
			segs[segLastDriving].Location = trip.DropoffLocation
		}

		logs[day] = domain.DailyLog{
			ID:       fmt.Sprintf("day-%d", day+1),
			Date:     start.AddDate(0, 0, day).Format("2006-01-02"),
			Totals:   dayTotals,
			Segments: segs,
		}
	}
	return logs
}

func placeholder(seg int) string {
	switch seg {
	case segFirstDriving, segLastDriving:
		return placeEnRoute
	case segBreak:
		return placeRestArea
	default:
		return placeTruckStop
	}
}
