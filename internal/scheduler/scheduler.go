// Package scheduler builds weekly client-session schedules from availability
// requests. Two interchangeable engines produce placements for a six-day
// work week; an independent validator re-checks every rule afterwards.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/models"
)

// Strategy names accepted by NewEngine.
const (
	StrategyBacktracking = "backtracking"
	StrategyOptimizer    = "optimizer"
)

// Settings holds every scheduling parameter. All rule thresholds are
// configuration, never constants baked into the engines.
type Settings struct {
	WeekdayStart string
	WeekdayEnd   string
	FridayStart  string
	FridayEnd    string

	SlotIntervalMinutes    int
	MinGapMinutes          int
	TravelBufferMinutes    int
	MaxStreetMinutesPerDay int
	StreetGapMaxMinutes    int
	MinStreetSessions      int
	TrialDurationMinutes   int

	OptimizerBudget time.Duration
}

// DefaultSettings mirrors the production defaults.
func DefaultSettings() Settings {
	return Settings{
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
		OptimizerBudget:        60 * time.Second,
	}
}

// Result is the outcome of one engine run. Complete is false when a High
// priority request could not be placed, which callers treat as a hard
// scheduling failure rather than a partial success.
type Result struct {
	Placements  models.Schedule
	Unscheduled []models.AppointmentRequest
	Complete    bool
}

// Engine is the strategy-agnostic scheduling contract. Implementations own
// all search state internally; the validator and formatter only ever see the
// finished Result.
type Engine interface {
	Schedule(ctx context.Context, requests []models.AppointmentRequest) (Result, error)
}

// NewEngine returns the engine for a strategy name, falling back to
// backtracking for anything unrecognised.
func NewEngine(strategy string, set Settings, log *zap.Logger) Engine {
	if strategy == StrategyOptimizer {
		return NewOptimizer(set, log)
	}
	return NewBacktracking(set, log)
}
