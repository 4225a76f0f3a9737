package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/dto"
	"github.com/sessionops/scheduler-api/internal/models"
)

// The test week is anchored to Sunday 2025-03-02.
const testStartDate = "2025-03-02"

func frame(start, end string) dto.TimeFrame {
	return dto.TimeFrame{Start: start, End: end}
}

func onDay(name string, frames ...dto.TimeFrame) dto.DayRequest {
	return dto.DayRequest{Day: name, TimeFrames: frames}
}

func appt(id, priority, sessType string, minutes int, days ...dto.DayRequest) dto.AppointmentRequest {
	return dto.AppointmentRequest{ID: id, Priority: priority, Type: sessType, Time: minutes, Days: days}
}

func parseFixture(t *testing.T, appts ...dto.AppointmentRequest) []models.AppointmentRequest {
	t.Helper()
	reqs, err := ParseRequests(dto.ScheduleRequest{
		StartDate:    testStartDate,
		Appointments: appts,
	}, DefaultSettings(), zap.NewNop())
	require.NoError(t, err)
	return reqs
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04:05", value)
	require.NoError(t, err)
	return ts
}

// blockAt builds a placement block whose end includes the trailing gap.
func blockAt(t *testing.T, start string, minutes int) models.Block {
	t.Helper()
	s := at(t, start)
	return models.Block{
		Start: s,
		End:   s.Add(time.Duration(minutes+DefaultSettings().MinGapMinutes) * time.Minute),
	}
}
