// Command sample-gen emits a randomized scheduling payload for load tests
// and manual runs against the API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/sessionops/scheduler-api/internal/dto"
)

var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func main() {
	var (
		count     = flag.Int("count", 12, "number of appointment requests")
		startDate = flag.String("start", nextSunday().Format("2006-01-02"), "week anchor date (YYYY-MM-DD)")
		seed      = flag.Int64("seed", 0, "PRNG seed, 0 picks a random one")
		out       = flag.String("out", "", "output file, defaults to stdout")
	)
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	anchor, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("invalid start date: %v", err)
	}

	payload := dto.ScheduleRequest{
		StartDate:    anchor.Format("2006-01-02"),
		Appointments: make([]dto.AppointmentRequest, 0, *count),
	}
	for i := 0; i < *count; i++ {
		payload.Appointments = append(payload.Appointments, randomAppointment(anchor))
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}

	if *out == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %d appointments to %s", *count, *out)
}

func randomAppointment(anchor time.Time) dto.AppointmentRequest {
	sessType := gofakeit.RandomString([]string{"streets", "streets", "zoom", "zoom", "trial_streets", "trial_zoom"})
	appt := dto.AppointmentRequest{
		ID:       gofakeit.UUID(),
		Priority: gofakeit.RandomString([]string{"High", "Medium", "Medium", "Low", "Exclude"}),
		Type:     sessType,
	}
	if sessType == "streets" || sessType == "zoom" {
		appt.Time = gofakeit.RandomInt([]int{30, 45, 60, 60, 90})
	}

	dayCount := gofakeit.Number(1, 3)
	used := map[int]bool{}
	for len(appt.Days) < dayCount {
		idx := gofakeit.Number(0, len(weekdays)-1)
		if used[idx] {
			continue
		}
		used[idx] = true
		appt.Days = append(appt.Days, randomDay(anchor, idx))
	}
	return appt
}

func randomDay(anchor time.Time, idx int) dto.DayRequest {
	date := anchor.AddDate(0, 0, idx)

	openHour, closeHour := 10, 23
	if idx == 5 {
		openHour, closeHour = 13, 17
	}
	startHour := gofakeit.Number(openHour, closeHour-3)
	span := gofakeit.Number(2, closeHour-startHour)

	start := time.Date(date.Year(), date.Month(), date.Day(), startHour, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(span) * time.Hour)
	return dto.DayRequest{
		Day: weekdays[idx],
		TimeFrames: []dto.TimeFrame{
			{Start: start.Format("2006-01-02T15:04:05"), End: end.Format("2006-01-02T15:04:05")},
		},
	}
}

func nextSunday() time.Time {
	now := time.Now()
	offset := (7 - int(now.Weekday())) % 7
	return now.AddDate(0, 0, offset)
}
