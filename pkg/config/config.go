package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig gates the optional bearer-token protection on the API group.
type AuthConfig struct {
	Enabled bool
	Secret  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig tunes the schedule result cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SchedulerConfig carries every rule parameter of the scheduling engine.
// All values are configuration, not constants; defaults mirror the
// production rule set.
type SchedulerConfig struct {
	// Strategy selects the engine: "backtracking" or "optimizer".
	Strategy string

	// Working-hour bounds. Sunday through Thursday share one window,
	// Friday has its own, Saturday is never a working day.
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

	// RunTTL bounds how long finished runs stay retrievable.
	RunTTL time.Duration
	// OptimizerBudget caps the optimizer strategy's wall-clock search time.
	OptimizerBudget time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled: v.GetBool("AUTH_ENABLED"),
		Secret:  v.GetString("AUTH_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_RESULT_CACHE"),
		TTL:     parseDuration(v.GetString("RESULT_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Scheduler = SchedulerConfig{
		Strategy:               v.GetString("SCHEDULER_STRATEGY"),
		WeekdayStart:           v.GetString("SCHEDULER_WEEKDAY_START"),
		WeekdayEnd:             v.GetString("SCHEDULER_WEEKDAY_END"),
		FridayStart:            v.GetString("SCHEDULER_FRIDAY_START"),
		FridayEnd:              v.GetString("SCHEDULER_FRIDAY_END"),
		SlotIntervalMinutes:    v.GetInt("SCHEDULER_SLOT_INTERVAL"),
		MinGapMinutes:          v.GetInt("SCHEDULER_MIN_GAP"),
		TravelBufferMinutes:    v.GetInt("SCHEDULER_TRAVEL_BUFFER"),
		MaxStreetMinutesPerDay: v.GetInt("SCHEDULER_MAX_STREET_MINUTES"),
		StreetGapMaxMinutes:    v.GetInt("SCHEDULER_STREET_GAP_MAX"),
		MinStreetSessions:      v.GetInt("SCHEDULER_MIN_STREET_SESSIONS"),
		TrialDurationMinutes:   v.GetInt("SCHEDULER_TRIAL_DURATION"),
		RunTTL:                 parseDuration(v.GetString("SCHEDULER_RUN_TTL"), 30*time.Minute),
		OptimizerBudget:        parseDuration(v.GetString("SCHEDULER_OPTIMIZER_BUDGET"), 60*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_RESULT_CACHE", false)
	v.SetDefault("RESULT_CACHE_TTL", "15m")

	v.SetDefault("SCHEDULER_STRATEGY", "backtracking")
	v.SetDefault("SCHEDULER_WEEKDAY_START", "10:00")
	v.SetDefault("SCHEDULER_WEEKDAY_END", "23:00")
	v.SetDefault("SCHEDULER_FRIDAY_START", "12:30")
	v.SetDefault("SCHEDULER_FRIDAY_END", "17:00")
	v.SetDefault("SCHEDULER_SLOT_INTERVAL", 15)
	v.SetDefault("SCHEDULER_MIN_GAP", 15)
	v.SetDefault("SCHEDULER_TRAVEL_BUFFER", 75)
	v.SetDefault("SCHEDULER_MAX_STREET_MINUTES", 270)
	v.SetDefault("SCHEDULER_STREET_GAP_MAX", 30)
	v.SetDefault("SCHEDULER_MIN_STREET_SESSIONS", 2)
	v.SetDefault("SCHEDULER_TRIAL_DURATION", 120)
	v.SetDefault("SCHEDULER_RUN_TTL", "30m")
	v.SetDefault("SCHEDULER_OPTIMIZER_BUDGET", "60s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
