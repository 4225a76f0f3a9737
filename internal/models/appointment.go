package models

import (
	"strings"
	"time"
)

// SessionType represents the modality of a client session.
type SessionType string

const (
	SessionStreets      SessionType = "streets"
	SessionTrialStreets SessionType = "trial_streets"
	SessionZoom         SessionType = "zoom"
	SessionTrialZoom    SessionType = "trial_zoom"
)

// legacy payloads still use "field" for in-person sessions.
const legacySessionField = "field"

// ParseSessionType normalises a raw type tag into a SessionType.
func ParseSessionType(raw string) (SessionType, bool) {
	switch SessionType(strings.ToLower(strings.TrimSpace(raw))) {
	case SessionStreets, SessionType(legacySessionField):
		return SessionStreets, true
	case SessionTrialStreets:
		return SessionTrialStreets, true
	case SessionZoom:
		return SessionZoom, true
	case SessionTrialZoom:
		return SessionTrialZoom, true
	}
	return "", false
}

// IsStreetType reports whether the session happens in person.
func (t SessionType) IsStreetType() bool {
	return t == SessionStreets || t == SessionTrialStreets
}

// IsZoomType reports whether the session happens remotely.
func (t SessionType) IsZoomType() bool {
	return t == SessionZoom || t == SessionTrialZoom
}

// IsTrial reports whether the session is a first-time trial variant.
func (t SessionType) IsTrial() bool {
	return t == SessionTrialStreets || t == SessionTrialZoom
}

// ParityWeight is the session count a placement contributes toward the
// street-parity rule: a trial street session stands in for two sessions.
func (t SessionType) ParityWeight() int {
	switch t {
	case SessionTrialStreets:
		return 2
	case SessionStreets:
		return 1
	default:
		return 0
	}
}

// Priority controls admission order and failure semantics.
type Priority string

const (
	PriorityHigh    Priority = "High"
	PriorityMedium  Priority = "Medium"
	PriorityLow     Priority = "Low"
	PriorityExclude Priority = "Exclude"
)

// ParsePriority normalises a raw priority tag.
func ParsePriority(raw string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	case "exclude":
		return PriorityExclude, true
	}
	return "", false
}

// Block is one candidate placement window derived from availability.
// End includes the mandatory gap that must trail the session.
type Block struct {
	Start time.Time
	End   time.Time
}

// DayAvailability groups the candidate blocks of one working day.
type DayAvailability struct {
	DayIndex int
	Blocks   []Block
}

// AppointmentRequest is an immutable, parsed scheduling request.
type AppointmentRequest struct {
	ID              string
	Priority        Priority
	Type            SessionType
	DurationMinutes int
	Days            []DayAvailability
}

// BlockCount returns the total number of candidate blocks across all days.
func (r AppointmentRequest) BlockCount() int {
	total := 0
	for _, day := range r.Days {
		total += len(day.Blocks)
	}
	return total
}

// ScheduledAppointment is a committed placement. Immutable once emitted.
type ScheduledAppointment struct {
	RequestID string
	Type      SessionType
	Start     time.Time
	End       time.Time
}

// Schedule maps request IDs to their final placements.
type Schedule map[string]ScheduledAppointment

// ValidationReport is the outcome of the rule re-check on a finished schedule.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// TypeBalance summarises fill rate per modality.
type TypeBalance struct {
	Scheduled int     `json:"scheduled"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}
