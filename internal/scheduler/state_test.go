package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionops/scheduler-api/internal/models"
)

func streetsReq(id string, minutes int) models.AppointmentRequest {
	return models.AppointmentRequest{ID: id, Priority: models.PriorityHigh, Type: models.SessionStreets, DurationMinutes: minutes}
}

func zoomReq(id string, minutes int) models.AppointmentRequest {
	return models.AppointmentRequest{ID: id, Priority: models.PriorityHigh, Type: models.SessionZoom, DurationMinutes: minutes}
}

func trialStreetsReq(id string) models.AppointmentRequest {
	return models.AppointmentRequest{ID: id, Priority: models.PriorityHigh, Type: models.SessionTrialStreets, DurationMinutes: 120}
}

func TestPlaceUnplaceAreExactInverses(t *testing.T) {
	st := newSearchState(DefaultSettings())
	req := trialStreetsReq("t1")
	block := blockAt(t, "2025-03-02T12:00:00", 120)

	require.True(t, st.canPlace(req, block, false))
	st.place(req, block)

	ds := st.day("2025-03-02")
	assert.Len(t, ds.placements, 1)
	assert.NotEmpty(t, ds.slots)
	assert.Equal(t, 240, ds.streetMinutes)

	st.unplace(req)
	assert.Empty(t, ds.placements)
	assert.Empty(t, ds.slots)
	assert.Zero(t, ds.streetMinutes)
	assert.Empty(t, st.byRequest)
	assert.True(t, st.canPlace(req, block, false))
}

func TestCanPlaceRejectsSlotCollision(t *testing.T) {
	st := newSearchState(DefaultSettings())
	st.place(zoomReq("z1", 60), blockAt(t, "2025-03-02T12:00:00", 60))

	overlapping := blockAt(t, "2025-03-02T12:30:00", 60)
	assert.False(t, st.canPlace(zoomReq("z2", 60), overlapping, false))
}

func TestCanPlaceEnforcesMinimumGap(t *testing.T) {
	st := newSearchState(DefaultSettings())
	st.place(zoomReq("z1", 60), blockAt(t, "2025-03-02T12:00:00", 60))

	// Session ends 13:00; a start at 13:05 leaves only 5 minutes.
	tooClose := models.Block{Start: at(t, "2025-03-02T13:05:00"), End: at(t, "2025-03-02T14:20:00")}
	assert.False(t, st.canPlace(zoomReq("z2", 60), tooClose, false))

	assert.True(t, st.canPlace(zoomReq("z2", 60), blockAt(t, "2025-03-02T13:15:00", 60), false))
}

func TestCanPlaceEnforcesTravelBuffer(t *testing.T) {
	st := newSearchState(DefaultSettings())
	st.place(zoomReq("z1", 60), blockAt(t, "2025-03-02T12:00:00", 60))

	// 30 minutes after a zoom session is far short of the 75 minute buffer.
	assert.False(t, st.canPlace(trialStreetsReq("t1"), blockAt(t, "2025-03-02T13:30:00", 120), false))
	assert.True(t, st.canPlace(trialStreetsReq("t1"), blockAt(t, "2025-03-02T14:15:00", 120), false))
}

func TestCanPlaceEnforcesStreetMinuteCap(t *testing.T) {
	st := newSearchState(DefaultSettings())
	// A trial street session counts double: 240 of the 270 minute cap.
	st.place(trialStreetsReq("t1"), blockAt(t, "2025-03-02T12:00:00", 120))

	assert.False(t, st.canPlace(streetsReq("s1", 60), blockAt(t, "2025-03-02T14:30:00", 60), false))
}

func TestCanPlaceParityRequiresCompanion(t *testing.T) {
	st := newSearchState(DefaultSettings())
	lone := streetsReq("s1", 60)
	block := blockAt(t, "2025-03-02T12:00:00", 60)

	assert.False(t, st.canPlace(lone, block, false), "a lone street session is isolated")
	assert.True(t, st.canPlace(lone, block, true), "provisional mode defers the parity rule")
	assert.True(t, st.canPlace(trialStreetsReq("t1"), blockAt(t, "2025-03-02T12:00:00", 120), false),
		"a trial street session counts as its own pair")
}

func TestCanPlaceEnforcesStreetGapMaximum(t *testing.T) {
	st := newSearchState(DefaultSettings())
	st.place(streetsReq("s1", 60), blockAt(t, "2025-03-02T12:00:00", 60))

	// Session s1 ends 13:00. 13:45 leaves a 45 minute street gap.
	assert.False(t, st.canPlace(streetsReq("s2", 60), blockAt(t, "2025-03-02T13:45:00", 60), false))
	assert.True(t, st.canPlace(streetsReq("s2", 60), blockAt(t, "2025-03-02T13:15:00", 60), false))
}

func TestCanPlaceOnePlacementPerClient(t *testing.T) {
	st := newSearchState(DefaultSettings())
	req := zoomReq("z1", 60)
	st.place(req, blockAt(t, "2025-03-02T12:00:00", 60))

	// A second placement anywhere in the week is refused for the same client.
	assert.False(t, st.canPlace(req, blockAt(t, "2025-03-03T12:00:00", 60), false))
}
