package dto

// TimeFrame is one availability window on a concrete calendar date.
type TimeFrame struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// DayRequest groups the availability windows of one weekday.
type DayRequest struct {
	Day        string      `json:"day" validate:"required"`
	TimeFrames []TimeFrame `json:"time_frames" validate:"omitempty,dive"`
}

// AppointmentRequest is one client request inside a schedule payload.
// Time is optional for trial types, which default to the configured
// trial duration.
type AppointmentRequest struct {
	ID       string       `json:"id" validate:"required"`
	Priority string       `json:"priority" validate:"required"`
	Type     string       `json:"type" validate:"required"`
	Time     int          `json:"time" validate:"omitempty,min=15"`
	Days     []DayRequest `json:"days" validate:"omitempty,dive"`
}

// ScheduleRequest is the weekly scheduling payload.
type ScheduleRequest struct {
	StartDate    string               `json:"start_date" validate:"required"`
	Appointments []AppointmentRequest `json:"appointments" validate:"required,min=1,dive"`
	Strategy     string               `json:"strategy" validate:"omitempty,oneof=backtracking optimizer"`
}

// FilledAppointment is one committed placement in the result.
type FilledAppointment struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// UnfilledAppointment identifies a request the engine could not place.
type UnfilledAppointment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// ValidationResult reports the independent rule re-check.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// TypeBalanceEntry summarises fill rate for one modality.
type TypeBalanceEntry struct {
	Scheduled int     `json:"scheduled"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// ScheduleResponse is the result contract for a scheduling run.
type ScheduleResponse struct {
	FilledAppointments   []FilledAppointment         `json:"filled_appointments"`
	UnfilledAppointments []UnfilledAppointment       `json:"unfilled_appointments"`
	Validation           ValidationResult            `json:"validation"`
	TypeBalance          map[string]TypeBalanceEntry `json:"type_balance"`
}

// ScheduleRunResponse wraps a result with its run identity.
type ScheduleRunResponse struct {
	RunID    string           `json:"run_id"`
	Strategy string           `json:"strategy"`
	Result   ScheduleResponse `json:"result"`
}
