package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/models"
)

func runBacktracking(t *testing.T, appts ...models.AppointmentRequest) Result {
	t.Helper()
	engine := NewBacktracking(DefaultSettings(), zap.NewNop())
	result, err := engine.Schedule(context.Background(), appts)
	require.NoError(t, err)
	return result
}

func TestBacktrackingSchedulesStreetPair(t *testing.T) {
	reqs := parseFixture(t,
		appt("s1", "High", "streets", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T16:00:00"))),
		appt("s2", "High", "streets", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T16:00:00"))),
	)
	result := runBacktracking(t, reqs...)

	require.True(t, result.Complete)
	require.Len(t, result.Placements, 2)
	assert.Empty(t, result.Unscheduled)

	a, b := result.Placements["s1"], result.Placements["s2"]
	if a.Start.After(b.Start) {
		a, b = b, a
	}
	gap := b.Start.Sub(a.End)
	assert.GreaterOrEqual(t, gap, 15*time.Minute)
	assert.LessOrEqual(t, gap, 30*time.Minute)

	report := NewValidator(DefaultSettings()).Validate(result.Placements)
	assert.True(t, report.Valid, "issues: %v", report.Issues)
}

func TestBacktrackingLeavesLoneStreetUnscheduled(t *testing.T) {
	reqs := parseFixture(t,
		appt("lone", "Medium", "streets", 60, onDay("Sunday", frame("2025-03-02T16:00:00", "2025-03-02T20:00:00"))),
	)
	result := runBacktracking(t, reqs...)

	assert.True(t, result.Complete)
	assert.Empty(t, result.Placements)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "lone", result.Unscheduled[0].ID)
}

func TestBacktrackingHonoursStreetMinuteCap(t *testing.T) {
	var appts []models.AppointmentRequest
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		appts = append(appts, parseFixture(t,
			appt(id, "Medium", "streets", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T20:00:00"))),
		)...)
	}
	result := runBacktracking(t, appts...)

	// Four 60 minute sessions fill 240 of the 270 minute cap; a fifth would
	// cross it.
	assert.Len(t, result.Placements, 4)
	assert.Len(t, result.Unscheduled, 1)

	report := NewValidator(DefaultSettings()).Validate(result.Placements)
	assert.True(t, report.Valid, "issues: %v", report.Issues)
}

func TestBacktrackingEnforcesTravelBuffer(t *testing.T) {
	reqs := parseFixture(t,
		appt("z1", "High", "zoom", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T13:15:00"))),
		appt("t1", "Medium", "trial_streets", 120, onDay("Sunday", frame("2025-03-02T13:30:00", "2025-03-02T15:45:00"))),
	)
	result := runBacktracking(t, reqs...)

	require.True(t, result.Complete)
	require.Contains(t, result.Placements, "z1")
	assert.NotContains(t, result.Placements, "t1")
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "t1", result.Unscheduled[0].ID)
}

func TestBacktrackingSchedulesLoneTrialStreet(t *testing.T) {
	reqs := parseFixture(t,
		appt("t1", "High", "trial_streets", 0, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T15:00:00"))),
	)
	result := runBacktracking(t, reqs...)

	require.True(t, result.Complete)
	require.Contains(t, result.Placements, "t1")

	report := NewValidator(DefaultSettings()).Validate(result.Placements)
	assert.True(t, report.Valid, "issues: %v", report.Issues)
}

func TestBacktrackingFailsWhenHighInfeasible(t *testing.T) {
	reqs := parseFixture(t,
		appt("h1", "High", "zoom", 60, onDay("Saturday", frame("2025-03-08T12:00:00", "2025-03-08T14:00:00"))),
	)
	result := runBacktracking(t, reqs...)

	assert.False(t, result.Complete)
	assert.Empty(t, result.Placements)
}

func TestBacktrackingSchedulesAcrossDays(t *testing.T) {
	reqs := parseFixture(t,
		appt("z1", "High", "zoom", 60, onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T14:00:00"))),
		appt("z2", "High", "zoom", 60, onDay("Monday", frame("2025-03-03T12:00:00", "2025-03-03T14:00:00"))),
		appt("z3", "Low", "zoom", 60, onDay("Tuesday", frame("2025-03-04T12:00:00", "2025-03-04T14:00:00"))),
	)
	result := runBacktracking(t, reqs...)

	require.True(t, result.Complete)
	assert.Len(t, result.Placements, 3)
	report := NewValidator(DefaultSettings()).Validate(result.Placements)
	assert.True(t, report.Valid, "issues: %v", report.Issues)
}

func TestBacktrackingOnePlacementPerClientAcrossWeek(t *testing.T) {
	reqs := parseFixture(t,
		appt("z1", "High", "zoom", 60,
			onDay("Sunday", frame("2025-03-02T12:00:00", "2025-03-02T14:00:00")),
			onDay("Monday", frame("2025-03-03T12:00:00", "2025-03-03T14:00:00")),
		),
	)
	result := runBacktracking(t, reqs...)

	require.True(t, result.Complete)
	assert.Len(t, result.Placements, 1)
}
