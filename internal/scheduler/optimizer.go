package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/models"
)

// Optimizer is the declarative-objective engine. Instead of committing
// requests greedily it searches over schedule/skip decisions for every
// request, scoring complete assignments with a weighted objective, and keeps
// the best feasible assignment found within the wall-clock budget. Rules one
// through seven all hold for the returned schedule; non-placement is an
// optimization trade-off, never a branch abort.
type Optimizer struct {
	set Settings
	log *zap.Logger
}

func NewOptimizer(set Settings, log *zap.Logger) *Optimizer {
	return &Optimizer{set: set, log: log}
}

// Objective weights. Priorities dominate; day bonuses reward crossing the
// street-parity threshold and give diminishing returns for packing more
// street sessions into a day.
const (
	weightHigh   = 300
	weightMedium = 200
	weightLow    = 100

	bonusStreetPair   = 500
	bonusThirdStreet  = 300
	bonusFourthStreet = 200
)

func priorityWeight(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return weightHigh
	case models.PriorityMedium:
		return weightMedium
	default:
		return weightLow
	}
}

func dayStreetBonus(weight int) int {
	bonus := 0
	if weight >= 2 {
		bonus += bonusStreetPair
	}
	if weight >= 3 {
		bonus += bonusThirdStreet
	}
	if weight >= 4 {
		bonus += bonusFourthStreet
	}
	return bonus
}

func (o *Optimizer) Schedule(ctx context.Context, requests []models.AppointmentRequest) (result Result, err error) {
	// A failure inside the search degrades to an empty schedule for the
	// whole run, logged, never propagated.
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("optimizer search failed, returning empty schedule", zap.Any("panic", r))
			result = Result{
				Placements:  models.Schedule{},
				Unscheduled: requests,
				Complete:    false,
			}
			err = nil
		}
	}()

	deadline := time.Now().Add(o.set.OptimizerBudget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	order := tierOrder(requests)
	search := newBoundedSearch(o.set, order, deadline)
	search.explore(newSearchState(o.set), 0)
	if search.expired {
		o.log.Info("optimizer budget exhausted, keeping best feasible assignment",
			zap.Duration("budget", o.set.OptimizerBudget),
			zap.Int("score", search.bestScore))
	}

	final := newSearchState(o.set)
	var unscheduled []models.AppointmentRequest
	for _, req := range order {
		blk, ok := search.best[req.ID]
		if !ok || !final.canPlace(req, blk, true) {
			unscheduled = append(unscheduled, req)
			continue
		}
		final.place(req, blk)
	}

	complete := true
	for _, req := range unscheduled {
		if req.Priority == models.PriorityHigh {
			complete = false
			break
		}
	}
	return Result{
		Placements:  final.schedule(),
		Unscheduled: unscheduled,
		Complete:    complete,
	}, nil
}

type boundedSearch struct {
	set      Settings
	order    []models.AppointmentRequest
	deadline time.Time
	expired  bool

	current      []assignment
	currentScore int
	suffixScore  []int

	best      map[string]models.Block
	bestScore int
}

type assignment struct {
	req   models.AppointmentRequest
	block models.Block
}

func newBoundedSearch(set Settings, order []models.AppointmentRequest, deadline time.Time) *boundedSearch {
	// suffixScore[i] is the objective if every request from i on were placed,
	// the optimistic remainder used for pruning.
	suffix := make([]int, len(order)+1)
	for i := len(order) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + priorityWeight(order[i].Priority)
	}
	return &boundedSearch{
		set:         set,
		order:       order,
		deadline:    deadline,
		suffixScore: suffix,
		best:        make(map[string]models.Block),
		bestScore:   -1,
	}
}

// maxDayBonuses bounds the street bonuses attainable across the six-day week.
const maxDayBonuses = 6 * (bonusStreetPair + bonusThirdStreet + bonusFourthStreet)

func (s *boundedSearch) explore(st *searchState, idx int) {
	if s.expired {
		return
	}
	if time.Now().After(s.deadline) {
		s.expired = true
		s.evaluate(st)
		return
	}
	if idx == len(s.order) {
		s.evaluate(st)
		return
	}
	if s.currentScore+s.suffixScore[idx]+maxDayBonuses <= s.bestScore {
		return
	}

	req := s.order[idx]
	for _, day := range req.Days {
		for _, blk := range day.Blocks {
			// Parity is checked once the assignment is complete, so street
			// sessions go in provisionally here.
			if !st.canPlace(req, blk, true) {
				continue
			}
			st.place(req, blk)
			s.current = append(s.current, assignment{req: req, block: blk})
			s.currentScore += priorityWeight(req.Priority)

			s.explore(st, idx+1)

			s.currentScore -= priorityWeight(req.Priority)
			s.current = s.current[:len(s.current)-1]
			st.unplace(req)
			if s.expired {
				return
			}
		}
	}

	// Skip branch: leave the request unscheduled.
	s.explore(st, idx+1)
}

// evaluate treats the current assignment as a leaf. Street parity is a hard
// constraint: a day with a lone non-trial street session disqualifies the
// whole assignment.
func (s *boundedSearch) evaluate(st *searchState) {
	score := s.currentScore
	for _, ds := range st.days {
		weight := ds.streetParityWeight()
		if weight > 0 && weight < s.set.MinStreetSessions {
			return
		}
		score += dayStreetBonus(weight)
	}
	if score <= s.bestScore {
		return
	}
	s.bestScore = score
	s.best = make(map[string]models.Block, len(s.current))
	for _, a := range s.current {
		s.best[a.req.ID] = a.block
	}
}
