package scheduler

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/dto"
	"github.com/sessionops/scheduler-api/internal/models"
	appErrors "github.com/sessionops/scheduler-api/pkg/errors"
)

// ParseRequests turns a raw payload into immutable appointment requests with
// pre-generated placement blocks. Exclude-priority entries are dropped
// outright. Malformed sub-entries (unknown weekday, bad timestamps, inverted
// frames) are logged and skipped without failing the whole payload.
func ParseRequests(req dto.ScheduleRequest, set Settings, log *zap.Logger) ([]models.AppointmentRequest, error) {
	if _, err := time.Parse("2006-01-02", req.StartDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_date must be YYYY-MM-DD")
	}

	parsed := make([]models.AppointmentRequest, 0, len(req.Appointments))
	for _, raw := range req.Appointments {
		priority, ok := models.ParsePriority(raw.Priority)
		if !ok {
			log.Warn("skipping appointment with unknown priority",
				zap.String("id", raw.ID), zap.String("priority", raw.Priority))
			continue
		}
		if priority == models.PriorityExclude {
			continue
		}
		sessType, ok := models.ParseSessionType(raw.Type)
		if !ok {
			log.Warn("skipping appointment with unknown session type",
				zap.String("id", raw.ID), zap.String("type", raw.Type))
			continue
		}
		duration := raw.Time
		if duration <= 0 {
			if !sessType.IsTrial() {
				log.Warn("skipping appointment without a duration",
					zap.String("id", raw.ID))
				continue
			}
			duration = set.TrialDurationMinutes
		}

		parsed = append(parsed, models.AppointmentRequest{
			ID:              raw.ID,
			Priority:        priority,
			Type:            sessType,
			DurationMinutes: duration,
			Days:            parseDays(raw, duration, set, log),
		})
	}
	return parsed, nil
}

func parseDays(raw dto.AppointmentRequest, duration int, set Settings, log *zap.Logger) []models.DayAvailability {
	days := make([]models.DayAvailability, 0, len(raw.Days))
	for _, day := range raw.Days {
		idx, ok := DayIndex(day.Day)
		if !ok {
			log.Warn("skipping unknown weekday",
				zap.String("id", raw.ID), zap.String("day", day.Day))
			continue
		}
		var blocks []models.Block
		for _, frame := range day.TimeFrames {
			start, err := parseInstant(frame.Start)
			if err != nil {
				log.Warn("skipping malformed time frame",
					zap.String("id", raw.ID), zap.String("start", frame.Start), zap.Error(err))
				continue
			}
			end, err := parseInstant(frame.End)
			if err != nil {
				log.Warn("skipping malformed time frame",
					zap.String("id", raw.ID), zap.String("end", frame.End), zap.Error(err))
				continue
			}
			if !end.After(start) {
				log.Warn("skipping inverted time frame",
					zap.String("id", raw.ID), zap.String("start", frame.Start), zap.String("end", frame.End))
				continue
			}
			blocks = append(blocks, generateBlocks(start, end, duration, set)...)
		}
		if len(blocks) == 0 {
			continue
		}
		sort.Slice(blocks, func(i, j int) bool { return blocks[i].Start.Before(blocks[j].Start) })
		days = append(days, models.DayAvailability{DayIndex: idx, Blocks: blocks})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayIndex < days[j].DayIndex })
	return days
}

// generateBlocks slides a duration+gap window across the frame at the slot
// interval, clipped to the working hours of the frame's calendar date. The
// returned block end includes the mandatory trailing gap.
func generateBlocks(frameStart, frameEnd time.Time, duration int, set Settings) []models.Block {
	open, closeAt, ok := set.workingWindow(frameStart)
	if !ok {
		return nil
	}
	start := frameStart
	if start.Before(open) {
		start = open
	}
	limit := frameEnd
	if limit.After(closeAt) {
		limit = closeAt
	}

	span := time.Duration(duration+set.MinGapMinutes) * time.Minute
	step := time.Duration(set.SlotIntervalMinutes) * time.Minute

	var blocks []models.Block
	for cursor := start; !cursor.Add(span).After(limit); cursor = cursor.Add(step) {
		blocks = append(blocks, models.Block{Start: cursor, End: cursor.Add(span)})
	}
	return blocks
}

func parseInstant(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
