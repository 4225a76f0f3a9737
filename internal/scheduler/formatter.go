package scheduler

import (
	"sort"
	"time"

	"github.com/sessionops/scheduler-api/internal/dto"
	"github.com/sessionops/scheduler-api/internal/models"
)

// Format converts an engine result and its validation report into the
// external contract. Placements with missing instants are demoted to the
// unfilled list instead of surfacing as errors.
func Format(requests []models.AppointmentRequest, result Result, report models.ValidationReport) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		FilledAppointments:   []dto.FilledAppointment{},
		UnfilledAppointments: []dto.UnfilledAppointment{},
		Validation: dto.ValidationResult{
			Valid:  report.Valid,
			Issues: report.Issues,
		},
		TypeBalance: map[string]dto.TypeBalanceEntry{},
	}
	if resp.Validation.Issues == nil {
		resp.Validation.Issues = []string{}
	}

	unfilled := append([]models.AppointmentRequest{}, result.Unscheduled...)
	filledTypes := map[string]models.SessionType{}

	for id, appt := range result.Placements {
		if appt.Start.IsZero() || appt.End.IsZero() {
			unfilled = append(unfilled, models.AppointmentRequest{ID: id, Type: appt.Type})
			continue
		}
		resp.FilledAppointments = append(resp.FilledAppointments, dto.FilledAppointment{
			ID:        id,
			Type:      string(appt.Type),
			StartTime: appt.Start.Format(time.RFC3339),
			EndTime:   appt.End.Format(time.RFC3339),
		})
		filledTypes[id] = appt.Type
	}
	sort.Slice(resp.FilledAppointments, func(i, j int) bool {
		a, b := resp.FilledAppointments[i], resp.FilledAppointments[j]
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})

	sort.Slice(unfilled, func(i, j int) bool { return unfilled[i].ID < unfilled[j].ID })
	for _, req := range unfilled {
		resp.UnfilledAppointments = append(resp.UnfilledAppointments, dto.UnfilledAppointment{
			ID:   req.ID,
			Type: string(req.Type),
		})
	}

	resp.TypeBalance = typeBalance(requests, filledTypes)
	return resp
}

// typeBalance tallies fill rate per modality family across every parsed
// request, trials included under their family.
func typeBalance(requests []models.AppointmentRequest, filled map[string]models.SessionType) map[string]dto.TypeBalanceEntry {
	balance := map[string]dto.TypeBalanceEntry{}
	family := func(t models.SessionType) string {
		if t.IsStreetType() {
			return "streets"
		}
		return "zoom"
	}
	for _, req := range requests {
		key := family(req.Type)
		entry := balance[key]
		entry.Total++
		if _, ok := filled[req.ID]; ok {
			entry.Scheduled++
		}
		balance[key] = entry
	}
	for key, entry := range balance {
		if entry.Total > 0 {
			entry.Rate = float64(entry.Scheduled) / float64(entry.Total)
		}
		balance[key] = entry
	}
	return balance
}
