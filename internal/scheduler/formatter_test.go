package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionops/scheduler-api/internal/models"
)

func TestFormatProducesContract(t *testing.T) {
	reqs := parseFixture(t,
		appt("s1", "High", "streets", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T16:00:00"))),
		appt("s2", "High", "streets", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T16:00:00"))),
		appt("z1", "Low", "zoom", 60, onDay("Monday", frame("2025-03-03T12:00:00", "2025-03-03T14:00:00"))),
	)
	result := Result{
		Placements: models.Schedule{
			"s1": scheduled(t, "s1", models.SessionStreets, "2025-03-02T12:00:00", "2025-03-02T13:00:00"),
			"s2": scheduled(t, "s2", models.SessionStreets, "2025-03-02T13:15:00", "2025-03-02T14:15:00"),
		},
		Unscheduled: []models.AppointmentRequest{reqs[2]},
		Complete:    true,
	}
	report := NewValidator(DefaultSettings()).Validate(result.Placements)

	resp := Format(reqs, result, report)

	require.Len(t, resp.FilledAppointments, 2)
	assert.Equal(t, "s1", resp.FilledAppointments[0].ID, "filled list is sorted by start time")
	assert.Equal(t, at(t, "2025-03-02T12:00:00").Format(time.RFC3339), resp.FilledAppointments[0].StartTime)

	require.Len(t, resp.UnfilledAppointments, 1)
	assert.Equal(t, "z1", resp.UnfilledAppointments[0].ID)

	assert.True(t, resp.Validation.Valid)
	assert.NotNil(t, resp.Validation.Issues)

	streets := resp.TypeBalance["streets"]
	assert.Equal(t, 2, streets.Scheduled)
	assert.Equal(t, 2, streets.Total)
	assert.InDelta(t, 1.0, streets.Rate, 1e-9)

	zoom := resp.TypeBalance["zoom"]
	assert.Equal(t, 0, zoom.Scheduled)
	assert.Equal(t, 1, zoom.Total)
	assert.InDelta(t, 0.0, zoom.Rate, 1e-9)
}

func TestFormatDemotesMalformedPlacements(t *testing.T) {
	reqs := parseFixture(t,
		appt("z1", "High", "zoom", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T14:00:00"))),
	)
	result := Result{
		Placements: models.Schedule{
			"z1": {RequestID: "z1", Type: models.SessionZoom},
		},
		Complete: true,
	}

	resp := Format(reqs, result, models.ValidationReport{Valid: true})

	assert.Empty(t, resp.FilledAppointments)
	require.Len(t, resp.UnfilledAppointments, 1)
	assert.Equal(t, "z1", resp.UnfilledAppointments[0].ID)
	assert.Equal(t, 0, resp.TypeBalance["zoom"].Scheduled)
}

func TestFormatCountsTrialsUnderTheirFamily(t *testing.T) {
	reqs := parseFixture(t,
		appt("t1", "High", "trial_streets", 0, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T15:00:00"))),
		appt("tz", "High", "trial_zoom", 0, onDay("Monday", frame("2025-03-03T12:00:00", "2025-03-03T15:00:00"))),
	)
	result := Result{
		Placements: models.Schedule{
			"t1": scheduled(t, "t1", models.SessionTrialStreets, "2025-03-02T12:00:00", "2025-03-02T14:00:00"),
		},
		Unscheduled: []models.AppointmentRequest{reqs[1]},
		Complete:    true,
	}

	resp := Format(reqs, result, models.ValidationReport{Valid: true})

	assert.Equal(t, 1, resp.TypeBalance["streets"].Scheduled)
	assert.Equal(t, 1, resp.TypeBalance["streets"].Total)
	assert.Equal(t, 0, resp.TypeBalance["zoom"].Scheduled)
	assert.Equal(t, 1, resp.TypeBalance["zoom"].Total)
}
