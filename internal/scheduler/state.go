package scheduler

import (
	"sort"
	"time"

	"github.com/sessionops/scheduler-api/internal/models"
)

// placement is one committed session on a day. Start and End bound the
// session itself; the mandatory trailing gap is enforced by the checker,
// not stored in the interval.
type placement struct {
	requestID string
	sessType  models.SessionType
	start     time.Time
	end       time.Time
}

// dayState is the mutable working state of one calendar date during search.
type dayState struct {
	slots         map[int]string
	placements    []placement
	streetMinutes int
}

// searchState owns all per-day state plus the global one-placement-per-client
// index. Place and unplace are exact inverses so backtracking engines can
// explore and rewind freely.
type searchState struct {
	set       Settings
	days      map[string]*dayState
	byRequest map[string]placement
}

func newSearchState(set Settings) *searchState {
	return &searchState{
		set:       set,
		days:      make(map[string]*dayState),
		byRequest: make(map[string]placement),
	}
}

func (st *searchState) day(key string) *dayState {
	ds, ok := st.days[key]
	if !ok {
		ds = &dayState{slots: make(map[int]string)}
		st.days[key] = ds
	}
	return ds
}

// sessionInterval strips the trailing gap off a placement block.
func (st *searchState) sessionInterval(block models.Block) (time.Time, time.Time) {
	return block.Start, block.End.Add(-time.Duration(st.set.MinGapMinutes) * time.Minute)
}

// streetCapMinutes is the load a session adds to the daily street cap.
// A trial street session counts double its nominal duration.
func streetCapMinutes(sessType models.SessionType, minutes int) int {
	switch sessType {
	case models.SessionTrialStreets:
		return minutes * 2
	case models.SessionStreets:
		return minutes
	default:
		return 0
	}
}

func (st *searchState) slotRange(start, end time.Time) (int, int) {
	interval := st.set.SlotIntervalMinutes
	first := (start.Hour()*60 + start.Minute()) / interval
	lastMin := end.Hour()*60 + end.Minute()
	last := lastMin / interval
	if lastMin%interval != 0 {
		last++
	}
	return first, last
}

// canPlace evaluates rules one through seven, fail fast, for placing the
// request at the given block. Provisional mode skips the street-parity rule;
// it exists solely for the pairing pre-pass, which commits street sessions in
// pairs and re-checks parity once both members are in.
func (st *searchState) canPlace(req models.AppointmentRequest, block models.Block, provisional bool) bool {
	// One appointment per client across the whole horizon.
	if _, placed := st.byRequest[req.ID]; placed {
		return false
	}

	start, end := st.sessionInterval(block)
	ds := st.day(dayKey(start))

	// Rule 1: every slot the session occupies must be free.
	first, last := st.slotRange(start, end)
	for slot := first; slot < last; slot++ {
		if _, taken := ds.slots[slot]; taken {
			return false
		}
	}

	// Rule 2: daily street-minute cap.
	if ds.streetMinutes+streetCapMinutes(req.Type, req.DurationMinutes) > st.set.MaxStreetMinutesPerDay {
		return false
	}

	// Rules 3 and 4: minimum gap to every neighbour, widened to the travel
	// buffer when the pair crosses the street/zoom boundary.
	for _, p := range ds.placements {
		var gap time.Duration
		switch {
		case !p.end.After(start):
			gap = start.Sub(p.end)
		case !end.After(p.start):
			gap = p.start.Sub(end)
		default:
			return false
		}
		required := time.Duration(st.set.MinGapMinutes) * time.Minute
		crossModality := (req.Type.IsStreetType() && p.sessType.IsZoomType()) ||
			(req.Type.IsZoomType() && p.sessType.IsStreetType())
		if crossModality {
			required = time.Duration(st.set.TravelBufferMinutes) * time.Minute
		}
		if gap < required {
			return false
		}
	}

	if req.Type.IsStreetType() {
		// Rule 6: consecutive street sessions at most StreetGapMax apart.
		streets := ds.streetPlacements()
		streets = append(streets, placement{requestID: req.ID, sessType: req.Type, start: start, end: end})
		sort.Slice(streets, func(i, j int) bool { return streets[i].start.Before(streets[j].start) })
		maxGap := time.Duration(st.set.StreetGapMaxMinutes) * time.Minute
		for i := 1; i < len(streets); i++ {
			if streets[i].start.Sub(streets[i-1].end) > maxGap {
				return false
			}
		}

		// Rule 5: no isolated street session on the day.
		if !provisional {
			weight := req.Type.ParityWeight() + ds.streetParityWeight()
			if weight > 0 && weight < st.set.MinStreetSessions {
				return false
			}
		}
	}

	return true
}

func (ds *dayState) streetPlacements() []placement {
	var streets []placement
	for _, p := range ds.placements {
		if p.sessType.IsStreetType() {
			streets = append(streets, p)
		}
	}
	return streets
}

// streetParityWeight is the day's street-session count with trial sessions
// counting double.
func (ds *dayState) streetParityWeight() int {
	weight := 0
	for _, p := range ds.placements {
		weight += p.sessType.ParityWeight()
	}
	return weight
}

// place commits the request at the block. Callers must have checked canPlace.
func (st *searchState) place(req models.AppointmentRequest, block models.Block) {
	start, end := st.sessionInterval(block)
	key := dayKey(start)
	ds := st.day(key)

	first, last := st.slotRange(start, end)
	for slot := first; slot < last; slot++ {
		ds.slots[slot] = req.ID
	}

	p := placement{requestID: req.ID, sessType: req.Type, start: start, end: end}
	ds.placements = append(ds.placements, p)
	sort.Slice(ds.placements, func(i, j int) bool { return ds.placements[i].start.Before(ds.placements[j].start) })
	ds.streetMinutes += streetCapMinutes(req.Type, req.DurationMinutes)
	st.byRequest[req.ID] = p
}

// unplace reverses a prior place exactly: slot occupancy, minute counters and
// the ordered placement list all return to their previous values.
func (st *searchState) unplace(req models.AppointmentRequest) {
	p, ok := st.byRequest[req.ID]
	if !ok {
		return
	}
	delete(st.byRequest, req.ID)

	ds := st.day(dayKey(p.start))
	first, last := st.slotRange(p.start, p.end)
	for slot := first; slot < last; slot++ {
		delete(ds.slots, slot)
	}
	for i, cur := range ds.placements {
		if cur.requestID == req.ID {
			ds.placements = append(ds.placements[:i], ds.placements[i+1:]...)
			break
		}
	}
	ds.streetMinutes -= streetCapMinutes(req.Type, req.DurationMinutes)
}

// modalityCounts tallies committed placements per modality family.
func (st *searchState) modalityCounts() (streets, zooms int) {
	for _, p := range st.byRequest {
		if p.sessType.IsStreetType() {
			streets++
		} else {
			zooms++
		}
	}
	return streets, zooms
}

// schedule snapshots the committed placements as the immutable result map.
func (st *searchState) schedule() models.Schedule {
	out := make(models.Schedule, len(st.byRequest))
	for id, p := range st.byRequest {
		out[id] = models.ScheduledAppointment{
			RequestID: id,
			Type:      p.sessType,
			Start:     p.start,
			End:       p.end,
		}
	}
	return out
}
