package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable the planner needs, resolved once at startup.
// It is passed by value and never mutated after Load.
type Config struct {
	Port        string
	OSRMBaseURL string
	DatabaseURL string

	// Penalty model. MissPenalty is charged for every order left unserved in
	// a solve round; orders due d whole days out are aged down by
	// MissPenaltyReducer^d. Late deliveries cost LateDeliveryPenaltyPerSec
	// for each second past the expected time.
	MissPenalty               int
	MissPenaltyReducer        int
	LateDeliveryPenaltyPerSec int

	// Clock bounds, in seconds since midnight (durations for the trip cap).
	GlobalStartTime     int
	GlobalEndTime       int
	MaxTripTime         int
	WaitTimeAtWarehouse int

	// Solve budgets. DefaultTimeLimit bounds a whole start-day request when
	// the client sends no runtime; the two re-plan budgets bound the
	// per-rider trip splice and the upcoming-tours re-solve.
	DefaultTimeLimit    time.Duration
	TripSpliceTimeLimit time.Duration
	UpcomingTimeLimit   time.Duration
}

// Load resolves the configuration from the environment, applying the
// documented defaults for anything unset.
func Load() (Config, error) {
	cfg := Config{
		Port:                os.Getenv("PORT"),
		OSRMBaseURL:         os.Getenv("OSRM_BASE_URL"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		GlobalStartTime:     9 * 3600,
		GlobalEndTime:       21 * 3600,
		MaxTripTime:         5*3600 + 30*60,
		WaitTimeAtWarehouse: 0,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.OSRMBaseURL == "" {
		cfg.OSRMBaseURL = "http://router.project-osrm.org"
	}

	var err error
	if cfg.MissPenalty, err = intEnv("MISS_PENALTY", 2_000_000); err != nil {
		return Config{}, err
	}
	if cfg.MissPenaltyReducer, err = intEnv("MISS_PENALTY_REDUCER", 20); err != nil {
		return Config{}, err
	}
	if cfg.MissPenaltyReducer < 2 {
		return Config{}, fmt.Errorf("load config: MISS_PENALTY_REDUCER must be >= 2, got %d", cfg.MissPenaltyReducer)
	}
	if cfg.LateDeliveryPenaltyPerSec, err = intEnv("LATE_DELIVERY_PENALTY_PER_SEC", 10); err != nil {
		return Config{}, err
	}
	if cfg.GlobalStartTime, err = intEnv("GLOBAL_START_TIME", cfg.GlobalStartTime); err != nil {
		return Config{}, err
	}
	if cfg.GlobalEndTime, err = intEnv("GLOBAL_END_TIME", cfg.GlobalEndTime); err != nil {
		return Config{}, err
	}
	if cfg.MaxTripTime, err = intEnv("MAX_TRIP_TIME", cfg.MaxTripTime); err != nil {
		return Config{}, err
	}
	if cfg.WaitTimeAtWarehouse, err = intEnv("WAIT_TIME_AT_WAREHOUSE", 0); err != nil {
		return Config{}, err
	}

	defaultLimit, err := intEnv("DEFAULT_TIME_LIMIT", 300)
	if err != nil {
		return Config{}, err
	}
	cfg.DefaultTimeLimit = time.Duration(defaultLimit) * time.Second

	spliceLimit, err := intEnv("TRIP_SPLICE_TIME_LIMIT", 5)
	if err != nil {
		return Config{}, err
	}
	cfg.TripSpliceTimeLimit = time.Duration(spliceLimit) * time.Second

	upcomingLimit, err := intEnv("UPCOMING_TIME_LIMIT", 10)
	if err != nil {
		return Config{}, err
	}
	cfg.UpcomingTimeLimit = time.Duration(upcomingLimit) * time.Second

	if cfg.GlobalEndTime <= cfg.GlobalStartTime {
		return Config{}, fmt.Errorf(
			"load config: GLOBAL_END_TIME (%d) must be after GLOBAL_START_TIME (%d)",
			cfg.GlobalEndTime, cfg.GlobalStartTime,
		)
	}

	return cfg, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("load config: %s must be an integer, got %q", key, v)
	}
	return n, nil
}
