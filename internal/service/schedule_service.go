package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sessionops/scheduler-api/internal/dto"
	"github.com/sessionops/scheduler-api/internal/scheduler"
	"github.com/sessionops/scheduler-api/pkg/config"
	appErrors "github.com/sessionops/scheduler-api/pkg/errors"
)

// resultCache is the slice of the cache repository the service needs.
type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScheduleService orchestrates a scheduling run: payload validation, result
// cache lookup, engine selection, independent validation and formatting.
// Finished runs stay retrievable by id until their TTL lapses.
type ScheduleService struct {
	cfg      config.SchedulerConfig
	settings scheduler.Settings
	cache    resultCache
	cacheTTL time.Duration
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	runs     *runStore
}

func NewScheduleService(cfg config.SchedulerConfig, cacheCfg config.CacheConfig, cache resultCache, metrics *MetricsService, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{
		cfg:      cfg,
		settings: settingsFromConfig(cfg),
		cache:    cache,
		cacheTTL: cacheCfg.TTL,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger,
		runs:     newRunStore(cfg.RunTTL),
	}
}

func settingsFromConfig(cfg config.SchedulerConfig) scheduler.Settings {
	return scheduler.Settings{
		WeekdayStart:           cfg.WeekdayStart,
		WeekdayEnd:             cfg.WeekdayEnd,
		FridayStart:            cfg.FridayStart,
		FridayEnd:              cfg.FridayEnd,
		SlotIntervalMinutes:    cfg.SlotIntervalMinutes,
		MinGapMinutes:          cfg.MinGapMinutes,
		TravelBufferMinutes:    cfg.TravelBufferMinutes,
		MaxStreetMinutesPerDay: cfg.MaxStreetMinutesPerDay,
		StreetGapMaxMinutes:    cfg.StreetGapMaxMinutes,
		MinStreetSessions:      cfg.MinStreetSessions,
		TrialDurationMinutes:   cfg.TrialDurationMinutes,
		OptimizerBudget:        cfg.OptimizerBudget,
	}
}

// Run executes one scheduling run end to end. A High priority request the
// engine cannot place yields ErrUnschedulable alongside the formatted result
// so callers can still inspect the partial outcome.
func (s *ScheduleService) Run(ctx context.Context, req dto.ScheduleRequest) (*dto.ScheduleRunResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	strategy := s.cfg.Strategy
	if req.Strategy != "" {
		strategy = req.Strategy
	}

	if cached, ok := s.cachedResult(ctx, strategy, req); ok {
		return cached, nil
	}

	requests, err := scheduler.ParseRequests(req, s.settings, s.logger)
	if err != nil {
		return nil, err
	}

	engine := scheduler.NewEngine(strategy, s.settings, s.logger)
	started := time.Now()
	result, err := engine.Schedule(ctx, requests)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scheduling engine failed")
	}

	report := scheduler.NewValidator(s.settings).Validate(result.Placements)
	if !report.Valid {
		s.logger.Error("engine produced a schedule the validator rejects",
			zap.String("strategy", strategy),
			zap.Strings("issues", report.Issues))
	}

	resp := &dto.ScheduleRunResponse{
		RunID:    uuid.NewString(),
		Strategy: strategy,
		Result:   scheduler.Format(requests, result, report),
	}

	outcome := "complete"
	if !result.Complete {
		outcome = "incomplete"
	}
	s.metrics.ObserveSchedulingRun(strategy, outcome,
		len(resp.Result.FilledAppointments), len(requests), time.Since(started))
	s.logger.Info("scheduling run finished",
		zap.String("run_id", resp.RunID),
		zap.String("strategy", strategy),
		zap.String("outcome", outcome),
		zap.Int("filled", len(resp.Result.FilledAppointments)),
		zap.Int("unfilled", len(resp.Result.UnfilledAppointments)),
		zap.Duration("took", time.Since(started)))

	s.runs.Save(*resp)
	if !result.Complete {
		return resp, appErrors.ErrUnschedulable
	}
	s.storeResult(ctx, strategy, req, resp)
	return resp, nil
}

// GetRun replays a stored run until its TTL lapses.
func (s *ScheduleService) GetRun(id string) (*dto.ScheduleRunResponse, error) {
	run, ok := s.runs.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found or expired")
	}
	return &run, nil
}

// cacheKey digests the payload plus strategy, so identical requests hit the
// same entry and any change busts it.
func cacheKey(strategy string, req dto.ScheduleRequest) (string, bool) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(payload)
	return "schedule:" + strategy + ":" + hex.EncodeToString(sum[:]), true
}

func (s *ScheduleService) cachedResult(ctx context.Context, strategy string, req dto.ScheduleRequest) (*dto.ScheduleRunResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	key, ok := cacheKey(strategy, req)
	if !ok {
		return nil, false
	}

	started := time.Now()
	var cached dto.ScheduleRunResponse
	err := s.cache.Get(ctx, key, &cached)
	s.metrics.RecordCacheOperation(err == nil, time.Since(started))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("result cache lookup failed", zap.Error(err))
		}
		return nil, false
	}
	s.runs.Save(cached)
	return &cached, true
}

func (s *ScheduleService) storeResult(ctx context.Context, strategy string, req dto.ScheduleRequest, resp *dto.ScheduleRunResponse) {
	if s.cache == nil {
		return
	}
	key, ok := cacheKey(strategy, req)
	if !ok {
		return
	}
	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Warn("result cache write failed", zap.Error(err))
	}
}

// runStore keeps finished runs in memory with a TTL.
type runStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]storedRun
}

type storedRun struct {
	run     dto.ScheduleRunResponse
	savedAt time.Time
}

func newRunStore(ttl time.Duration) *runStore {
	return &runStore{
		ttl:   ttl,
		items: make(map[string]storedRun),
	}
}

func (s *runStore) Save(run dto.ScheduleRunResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[run.RunID] = storedRun{run: run, savedAt: time.Now()}
}

func (s *runStore) Get(id string) (dto.ScheduleRunResponse, bool) {
	s.mu.RLock()
	stored, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return dto.ScheduleRunResponse{}, false
	}
	if time.Since(stored.savedAt) > s.ttl {
		s.Delete(id)
		return dto.ScheduleRunResponse{}, false
	}
	return stored.run, true
}

func (s *runStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
