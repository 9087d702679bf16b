package domain

// DutyStatus is one of the four ELD duty statuses.
type DutyStatus string

const (
	StatusDriving DutyStatus = "driving"
	StatusOnDuty  DutyStatus = "onduty"
	StatusSleeper DutyStatus = "sleeper"
	StatusOffDuty DutyStatus = "offduty"
)

// Label returns the display name used on log sheets.
func (s DutyStatus) Label() string {
	switch s {
	case StatusDriving:
		return "Driving"
	case StatusOnDuty:
		return "On duty (not driving)"
	case StatusSleeper:
		return "Sleeper berth"
	case StatusOffDuty:
		return "Off duty"
	}
	return string(s)
}

// LogSegment is one contiguous stretch of a single duty status.
// StartTime and EndTime are wall-clock "HH:MM"; a segment may wrap midnight.
type LogSegment struct {
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	Status        DutyStatus `json:"status"`
	Location      string     `json:"location"`
	DurationHours float64    `json:"durationHours"`
}

// DutyTotals holds aggregated hours per duty status for one day.
type DutyTotals struct {
	Driving float64 `json:"driving"`
	OnDuty  float64 `json:"onDuty"`
	Sleeper float64 `json:"sleeper"`
	OffDuty float64 `json:"offDuty"`
}

// DailyLog is one generated log sheet.
// Totals are carried separately from Segments and are not recomputed from them.
type DailyLog struct {
	ID       string       `json:"id"`
	Date     string       `json:"date"` // "2006-01-02"
	Totals   DutyTotals   `json:"totals"`
	Segments []LogSegment `json:"segments"`
}

// SegmentHours sums the durations of every segment in the day.
func (d DailyLog) SegmentHours() float64 {
	var sum float64
	for _, s := range d.Segments {
		sum += s.DurationHours
	}
	return sum
}
