package backoff

import (
	"fmt"
	"math"
	"time"
)

// Config defines the exponential backoff parameters.
type Config struct {
	InitialDelay time.Duration `yaml:"-"`
	MaxDelay     time.Duration `yaml:"-"`
	Multiplier   float64       `yaml:"multiplier"`
}

// UnmarshalYAML accepts durations in Go syntax ("200ms", "1m30s").
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		InitialDelay string  `yaml:"initial_delay"`
		MaxDelay     string  `yaml:"max_delay"`
		Multiplier   float64 `yaml:"multiplier"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	c.Multiplier = raw.Multiplier
	var err error
	if raw.InitialDelay != "" {
		if c.InitialDelay, err = time.ParseDuration(raw.InitialDelay); err != nil {
			return fmt.Errorf("invalid initial_delay: %w", err)
		}
	}
	if raw.MaxDelay != "" {
		if c.MaxDelay, err = time.ParseDuration(raw.MaxDelay); err != nil {
			return fmt.Errorf("invalid max_delay: %w", err)
		}
	}
	return nil
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	InitialDelay: 1 * time.Second,
	MaxDelay:     60 * time.Second,
	Multiplier:   2.0,
}

// Calculator yields the wait before an attempt, given how many attempts
// remain after the attempt has been committed. It must be pure.
type Calculator interface {
	// Delay returns the delay before the attempt that leaves attemptsLeft
	// attempts unconsumed. Fewer attempts left means an equal or larger delay.
	Delay(attemptsLeft int) time.Duration
}

// Exponential grows the delay as attempts are consumed: the first attempt
// waits InitialDelay, each following attempt multiplies by Multiplier,
// capped at MaxDelay.
type Exponential struct {
	cfg         Config
	maxAttempts int
}

// NewExponential creates a calculator for a sequence with the given attempt budget.
func NewExponential(cfg Config, maxAttempts int) *Exponential {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = DefaultConfig.Multiplier
	}
	return &Exponential{cfg: cfg, maxAttempts: maxAttempts}
}

// Delay calculates: InitialDelay * Multiplier^consumed, where consumed is the
// number of attempts already spent before this one.
func (e *Exponential) Delay(attemptsLeft int) time.Duration {
	consumed := e.maxAttempts - 1 - attemptsLeft
	if consumed < 0 {
		consumed = 0
	}
	delay := float64(e.cfg.InitialDelay) * math.Pow(e.cfg.Multiplier, float64(consumed))
	if delay > float64(e.cfg.MaxDelay) {
		return e.cfg.MaxDelay
	}
	return time.Duration(delay)
}
