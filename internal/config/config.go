// Package config resolves the driver configuration from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over it.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/katalvlaran/agility/orienteer"
)

// Environment variable names.
const (
	EnvCourse       = "AGILITY_COURSE"
	EnvBound        = "AGILITY_BOUND"
	EnvForceNearest = "AGILITY_FORCE_NEAREST"
	EnvOpening      = "AGILITY_OPENING"
	EnvTimeLimit    = "AGILITY_TIME_LIMIT"
	EnvWorkers      = "AGILITY_WORKERS"
	EnvMetricsAddr  = "AGILITY_METRICS_ADDR"
)

// Config is the resolved driver configuration.
type Config struct {
	CoursePath   string // empty means the embedded example course
	Bound        float64
	ForceNearest bool
	Opening      orienteer.Opening
	TimeLimit    time.Duration
	Workers      int
	MetricsAddr  string // empty disables the /metrics endpoint
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Bound:     0.4,
		Opening:   orienteer.OpeningChecked,
		TimeLimit: 10 * time.Second,
		Workers:   1,
	}
}

// Load reads .env (if any) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting at Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	var err error
	if v, ok := get(EnvCourse); ok {
		cfg.CoursePath = v
	}
	if v, ok := get(EnvBound); ok {
		if cfg.Bound, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvBound, err)
		}
	}
	if v, ok := get(EnvForceNearest); ok {
		if cfg.ForceNearest, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvForceNearest, err)
		}
	}
	if v, ok := get(EnvOpening); ok {
		if cfg.Opening, err = ParseOpening(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvOpening, err)
		}
	}
	if v, ok := get(EnvTimeLimit); ok {
		if cfg.TimeLimit, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvTimeLimit, err)
		}
	}
	if v, ok := get(EnvWorkers); ok {
		if cfg.Workers, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvWorkers, err)
		}
	}
	if v, ok := get(EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}

	return cfg, cfg.Validate()
}

// ParseOpening maps "checked"/"unchecked" to the orienteer policy.
func ParseOpening(s string) (orienteer.Opening, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "checked":
		return orienteer.OpeningChecked, nil
	case "unchecked":
		return orienteer.OpeningUnchecked, nil
	default:
		return 0, fmt.Errorf("%w: opening must be checked or unchecked, got %q", orienteer.ErrInvalidParameter, s)
	}
}

// Validate applies the same ranges the search enforces so that a bad
// setting is reported at startup.
func (c Config) Validate() error {
	if !(c.Bound > 0 && c.Bound <= 1) {
		return fmt.Errorf("%w: bound must be in (0,1], got %v", orienteer.ErrInvalidParameter, c.Bound)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("%w: time limit must be non-negative, got %v", orienteer.ErrInvalidParameter, c.TimeLimit)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", orienteer.ErrInvalidParameter, c.Workers)
	}

	return nil
}

// SearchOptions converts the configuration into orienteer options.
func (c Config) SearchOptions() []orienteer.Option {
	opts := []orienteer.Option{
		orienteer.WithBound(c.Bound),
		orienteer.WithTimeLimit(c.TimeLimit),
		orienteer.WithWorkers(c.Workers),
	}
	if c.ForceNearest {
		opts = append(opts, orienteer.WithForceNearestFirst(c.Opening))
	}

	return opts
}
