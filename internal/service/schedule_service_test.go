package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/dto"
	"github.com/sessionops/scheduler-api/pkg/config"
	appErrors "github.com/sessionops/scheduler-api/pkg/errors"
)

func schedulerTestConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Strategy:               "backtracking",
		WeekdayStart:           "10:00",
		WeekdayEnd:             "23:00",
		FridayStart:            "12:30",
		FridayEnd:              "17:00",
		SlotIntervalMinutes:    15,
		MinGapMinutes:          15,
		TravelBufferMinutes:    75,
		MaxStreetMinutesPerDay: 270,
		StreetGapMaxMinutes:    30,
		MinStreetSessions:      2,
		TrialDurationMinutes:   120,
		RunTTL:                 time.Minute,
		OptimizerBudget:        2 * time.Second,
	}
}

func newScheduleServiceFixture(cache resultCache) *ScheduleService {
	return NewScheduleService(schedulerTestConfig(), config.CacheConfig{TTL: time.Minute}, cache, nil, zap.NewNop())
}

type fakeCache struct {
	entries map[string][]byte
	getErr  error
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	f.gets++
	if f.getErr != nil {
		return f.getErr
	}
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func schedulePayload() dto.ScheduleRequest {
	return dto.ScheduleRequest{
		StartDate: "2025-03-02",
		Appointments: []dto.AppointmentRequest{
			{
				ID:       "z1",
				Priority: "High",
				Type:     "zoom",
				Time:     60,
				Days: []dto.DayRequest{{
					Day: "Sunday",
					TimeFrames: []dto.TimeFrame{
						{Start: "2025-03-02T12:00:00", End: "2025-03-02T14:00:00"},
					},
				}},
			},
		},
	}
}

func TestScheduleServiceRunSuccess(t *testing.T) {
	svc := newScheduleServiceFixture(nil)

	resp, err := svc.Run(context.Background(), schedulePayload())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "backtracking", resp.Strategy)
	require.Len(t, resp.Result.FilledAppointments, 1)
	assert.Equal(t, "z1", resp.Result.FilledAppointments[0].ID)
	assert.True(t, resp.Result.Validation.Valid)
}

func TestScheduleServiceRunRejectsInvalidPayload(t *testing.T) {
	svc := newScheduleServiceFixture(nil)

	_, err := svc.Run(context.Background(), dto.ScheduleRequest{StartDate: "2025-03-02"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceRunStrategyOverride(t *testing.T) {
	svc := newScheduleServiceFixture(nil)

	req := schedulePayload()
	req.Strategy = "optimizer"
	resp, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "optimizer", resp.Strategy)
	assert.Len(t, resp.Result.FilledAppointments, 1)
}

func TestScheduleServiceRunUnschedulableHigh(t *testing.T) {
	svc := newScheduleServiceFixture(nil)

	req := schedulePayload()
	// Saturday is not a working day, so the High request has no blocks.
	req.Appointments[0].Days[0].Day = "Saturday"

	resp, err := svc.Run(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnschedulable))
	require.NotNil(t, resp, "partial result accompanies the error")
	assert.Empty(t, resp.Result.FilledAppointments)
}

func TestScheduleServiceRunUsesResultCache(t *testing.T) {
	cache := newFakeCache()
	svc := newScheduleServiceFixture(cache)

	first, err := svc.Run(context.Background(), schedulePayload())
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	second, err := svc.Run(context.Background(), schedulePayload())
	require.NoError(t, err)
	assert.Equal(t, first.RunID, second.RunID, "identical payloads replay the cached run")
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestScheduleServiceRunToleratesCacheFailure(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := newScheduleServiceFixture(cache)

	resp, err := svc.Run(context.Background(), schedulePayload())
	require.NoError(t, err)
	assert.Len(t, resp.Result.FilledAppointments, 1)
}

func TestScheduleServiceGetRun(t *testing.T) {
	svc := newScheduleServiceFixture(nil)

	resp, err := svc.Run(context.Background(), schedulePayload())
	require.NoError(t, err)

	replay, err := svc.GetRun(resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, resp.RunID, replay.RunID)

	_, err = svc.GetRun("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRunStoreExpiry(t *testing.T) {
	store := newRunStore(10 * time.Millisecond)
	store.Save(dto.ScheduleRunResponse{RunID: "r1"})

	_, ok := store.Get("r1")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = store.Get("r1")
	assert.False(t, ok)
}
