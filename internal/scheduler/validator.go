package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/sessionops/scheduler-api/internal/models"
)

// Validator re-derives every rule from a finished schedule by direct
// recomputation. It deliberately shares no state with the engines: the double
// implementation exists to catch search bugs, so the engines' transactional
// bookkeeping is never trusted here.
type Validator struct {
	set Settings
}

func NewValidator(set Settings) Validator {
	return Validator{set: set}
}

// Validate checks the gap rules, street parity, the street gap maximum and
// the daily street cap. Every violation contributes one readable issue; the
// schedule is valid iff no issues were found.
func (v Validator) Validate(schedule models.Schedule) models.ValidationReport {
	byDay := map[string][]models.ScheduledAppointment{}
	for _, appt := range schedule {
		byDay[dayKey(appt.Start)] = append(byDay[dayKey(appt.Start)], appt)
	}

	days := make([]string, 0, len(byDay))
	for key := range byDay {
		days = append(days, key)
	}
	sort.Strings(days)

	issues := []string{}
	for _, day := range days {
		appts := byDay[day]
		sort.Slice(appts, func(i, j int) bool { return appts[i].Start.Before(appts[j].Start) })
		issues = append(issues, v.checkGaps(day, appts)...)
		issues = append(issues, v.checkStreets(day, appts)...)
	}

	return models.ValidationReport{Valid: len(issues) == 0, Issues: issues}
}

func (v Validator) checkGaps(day string, appts []models.ScheduledAppointment) []string {
	var issues []string
	minGap := time.Duration(v.set.MinGapMinutes) * time.Minute
	buffer := time.Duration(v.set.TravelBufferMinutes) * time.Minute

	for i := 1; i < len(appts); i++ {
		prev, cur := appts[i-1], appts[i]
		gap := cur.Start.Sub(prev.End)
		if gap < 0 {
			issues = append(issues, fmt.Sprintf("%s: %s and %s overlap", day, prev.RequestID, cur.RequestID))
			continue
		}
		required := minGap
		crossModality := (prev.Type.IsStreetType() && cur.Type.IsZoomType()) ||
			(prev.Type.IsZoomType() && cur.Type.IsStreetType())
		if crossModality {
			required = buffer
		}
		if gap < required {
			issues = append(issues, fmt.Sprintf("%s: gap of %s between %s and %s is below the %s minimum",
				day, gap, prev.RequestID, cur.RequestID, required))
		}
	}
	return issues
}

func (v Validator) checkStreets(day string, appts []models.ScheduledAppointment) []string {
	var issues []string
	var streets []models.ScheduledAppointment
	parity := 0
	minutes := 0
	for _, appt := range appts {
		if !appt.Type.IsStreetType() {
			continue
		}
		streets = append(streets, appt)
		parity += appt.Type.ParityWeight()
		dur := int(appt.End.Sub(appt.Start).Minutes())
		minutes += streetCapMinutes(appt.Type, dur)
	}

	if parity > 0 && parity < v.set.MinStreetSessions {
		issues = append(issues, fmt.Sprintf("%s: isolated street session %s", day, streets[0].RequestID))
	}
	if minutes > v.set.MaxStreetMinutesPerDay {
		issues = append(issues, fmt.Sprintf("%s: street minutes %d exceed the %d cap",
			day, minutes, v.set.MaxStreetMinutesPerDay))
	}

	maxGap := time.Duration(v.set.StreetGapMaxMinutes) * time.Minute
	for i := 1; i < len(streets); i++ {
		gap := streets[i].Start.Sub(streets[i-1].End)
		if gap > maxGap {
			issues = append(issues, fmt.Sprintf("%s: street gap of %s between %s and %s exceeds the %s maximum",
				day, gap, streets[i-1].RequestID, streets[i].RequestID, maxGap))
		}
	}
	return issues
}
