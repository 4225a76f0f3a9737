package scheduler

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/models"
)

// Backtracking is the priority-ordered depth-first engine. It runs a street
// pairing pre-pass first, then walks the remaining requests most-constrained
// first, undoing placements exactly on dead ends.
type Backtracking struct {
	set Settings
	log *zap.Logger
}

func NewBacktracking(set Settings, log *zap.Logger) *Backtracking {
	return &Backtracking{set: set, log: log}
}

func (b *Backtracking) Schedule(ctx context.Context, requests []models.AppointmentRequest) (Result, error) {
	st := newSearchState(b.set)
	order := tierOrder(requests)

	paired := b.pairingPrePass(st, order)
	remaining := make([]models.AppointmentRequest, 0, len(order))
	for _, req := range order {
		if !paired[req.ID] {
			remaining = append(remaining, req)
		}
	}

	var unscheduled []models.AppointmentRequest
	solved := b.solve(ctx, st, remaining, 0, 0, &unscheduled)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !solved {
		b.log.Warn("backtracking exhausted all branches",
			zap.Int("requests", len(requests)))
		return Result{
			Placements:  st.schedule(),
			Unscheduled: remaining,
			Complete:    false,
		}, nil
	}

	unscheduled = b.dropIsolatedStreets(st, requests, unscheduled)

	complete := true
	for _, req := range unscheduled {
		if req.Priority == models.PriorityHigh {
			complete = false
			break
		}
	}
	return Result{
		Placements:  st.schedule(),
		Unscheduled: unscheduled,
		Complete:    complete,
	}, nil
}

// tierOrder partitions by priority and sorts each tier most-constrained
// first, so requests with the fewest feasible blocks are attempted before
// flexible ones.
func tierOrder(requests []models.AppointmentRequest) []models.AppointmentRequest {
	tiers := map[models.Priority][]models.AppointmentRequest{}
	for _, req := range requests {
		tiers[req.Priority] = append(tiers[req.Priority], req)
	}
	var order []models.AppointmentRequest
	for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		tier := tiers[p]
		sort.SliceStable(tier, func(i, j int) bool { return tier[i].BlockCount() < tier[j].BlockCount() })
		order = append(order, tier...)
	}
	return order
}

type prePassCandidate struct {
	req   models.AppointmentRequest
	block models.Block
}

// pairingPrePass seeds each day that has two or more street-type candidates
// with its tightest feasible pair. The provisional checker is used because
// the first member of a pair would otherwise fail the parity rule before its
// partner lands. Committed pairs are permanent; the general search never
// revisits them.
func (b *Backtracking) pairingPrePass(st *searchState, order []models.AppointmentRequest) map[string]bool {
	byDay := map[string][]prePassCandidate{}
	for _, req := range order {
		if !req.Type.IsStreetType() {
			continue
		}
		for _, day := range req.Days {
			for _, blk := range day.Blocks {
				key := dayKey(blk.Start)
				byDay[key] = append(byDay[key], prePassCandidate{req: req, block: blk})
			}
		}
	}

	days := make([]string, 0, len(byDay))
	for key := range byDay {
		days = append(days, key)
	}
	sort.Strings(days)

	paired := make(map[string]bool)
	for _, key := range days {
		cands := byDay[key]
		bestGap := time.Duration(math.MaxInt64)
		var bestA, bestB prePassCandidate
		found := false

		for i := 0; i < len(cands); i++ {
			a := cands[i]
			if paired[a.req.ID] {
				continue
			}
			for j := 0; j < len(cands); j++ {
				bcd := cands[j]
				if bcd.req.ID == a.req.ID || paired[bcd.req.ID] {
					continue
				}
				if !st.canPlace(a.req, a.block, true) {
					break
				}
				st.place(a.req, a.block)
				if st.canPlace(bcd.req, bcd.block, true) {
					gap := pairGap(st, a.block, bcd.block)
					if gap >= 0 && gap < bestGap {
						bestGap = gap
						bestA, bestB = a, bcd
						found = true
					}
				}
				st.unplace(a.req)
			}
		}

		if found {
			st.place(bestA.req, bestA.block)
			st.place(bestB.req, bestB.block)
			paired[bestA.req.ID] = true
			paired[bestB.req.ID] = true
			b.log.Debug("pairing pre-pass committed a street pair",
				zap.String("day", key),
				zap.String("first", bestA.req.ID),
				zap.String("second", bestB.req.ID),
				zap.Duration("gap", bestGap))
		}
	}
	return paired
}

func pairGap(st *searchState, a, b models.Block) time.Duration {
	aStart, aEnd := st.sessionInterval(a)
	bStart, bEnd := st.sessionInterval(b)
	if !aEnd.After(bStart) {
		return bStart.Sub(aEnd)
	}
	if !bEnd.After(aStart) {
		return aStart.Sub(bEnd)
	}
	return -1
}

// solve places order[idx:] given the current state. Failure semantics depend
// on priority: High aborts the branch, Medium gets one retry at the back of
// the queue before deferring, Low defers immediately. The unscheduled list is
// rewound alongside the placements on every failed branch.
func (b *Backtracking) solve(ctx context.Context, st *searchState, order []models.AppointmentRequest, idx, depth int, unscheduled *[]models.AppointmentRequest) bool {
	if idx >= len(order) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	req := order[idx]
	mark := len(*unscheduled)

	for _, cand := range b.candidates(st, req) {
		st.place(req, cand.block)
		if b.solve(ctx, st, order, idx+1, depth, unscheduled) {
			return true
		}
		st.unplace(req)
		*unscheduled = (*unscheduled)[:mark]
	}

	switch req.Priority {
	case models.PriorityHigh:
		return false
	case models.PriorityMedium:
		if depth == 0 {
			retry := append(append([]models.AppointmentRequest{}, order[idx+1:]...), req)
			if b.solve(ctx, st, retry, 0, depth+1, unscheduled) {
				return true
			}
			*unscheduled = (*unscheduled)[:mark]
		}
	}

	*unscheduled = append(*unscheduled, req)
	if b.solve(ctx, st, order, idx+1, depth, unscheduled) {
		return true
	}
	*unscheduled = (*unscheduled)[:mark]
	return false
}

type candidate struct {
	block models.Block
	score float64
}

func (b *Backtracking) candidates(st *searchState, req models.AppointmentRequest) []candidate {
	var out []candidate
	for _, day := range req.Days {
		for _, blk := range day.Blocks {
			if !st.canPlace(req, blk, false) {
				continue
			}
			out = append(out, candidate{block: blk, score: b.score(st, req, blk)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return out[i].block.Start.Before(out[j].block.Start)
	})
	return out
}

// score ranks a feasible candidate, lower is better. Street candidates that
// land snugly next to an existing street session (within the max street gap)
// are strongly preferred; an under-represented modality gets a small fairness
// boost so one type does not crowd out the other.
func (b *Backtracking) score(st *searchState, req models.AppointmentRequest, blk models.Block) float64 {
	start, end := st.sessionInterval(blk)
	ds := st.day(dayKey(start))
	score := 100.0

	if req.Type.IsStreetType() {
		nearest := math.MaxFloat64
		for _, p := range ds.streetPlacements() {
			var gap time.Duration
			if !p.end.After(start) {
				gap = start.Sub(p.end)
			} else {
				gap = p.start.Sub(end)
			}
			if m := gap.Minutes(); m < nearest {
				nearest = m
			}
		}
		if nearest != math.MaxFloat64 {
			if nearest <= float64(b.set.StreetGapMaxMinutes) {
				score -= 50
			} else {
				score += nearest
			}
		}
	}

	streets, zooms := st.modalityCounts()
	if req.Type.IsStreetType() && streets < zooms {
		score -= 20
	}
	if req.Type.IsZoomType() && zooms < streets {
		score -= 20
	}

	// Mild preference for earlier starts keeps results deterministic.
	score += float64(start.Hour()) / 10
	return score
}

// dropIsolatedStreets is the termination check: any day left with a lone
// non-trial street session has that session revoked and its request reported
// unscheduled. The pre-pass and the parity rule make this rare.
func (b *Backtracking) dropIsolatedStreets(st *searchState, requests []models.AppointmentRequest, unscheduled []models.AppointmentRequest) []models.AppointmentRequest {
	byID := make(map[string]models.AppointmentRequest, len(requests))
	for _, req := range requests {
		byID[req.ID] = req
	}
	for key, ds := range st.days {
		weight := ds.streetParityWeight()
		if weight == 0 || weight >= b.set.MinStreetSessions {
			continue
		}
		for _, p := range ds.streetPlacements() {
			req, ok := byID[p.requestID]
			if !ok {
				continue
			}
			b.log.Warn("revoking isolated street session",
				zap.String("day", key), zap.String("id", req.ID))
			st.unplace(req)
			unscheduled = append(unscheduled, req)
		}
	}
	return unscheduled
}
