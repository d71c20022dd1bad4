package scheduler

import (
	"time"

	"github.com/smallbiznis/eventory/internal/config"
)

// Config controls cron specs, batch sizes and job timeouts.
type Config struct {
	OverdueSpec  string
	RetrySpec    string
	RetryBatch   int
	JobTimeout   time.Duration
	LockTTL      time.Duration
	RunOnStartup bool
}

func DefaultConfig() Config {
	return Config{
		OverdueSpec:  "@hourly",
		RetrySpec:    "@every 5m",
		RetryBatch:   50,
		JobTimeout:   2 * time.Minute,
		LockTTL:      5 * time.Minute,
		RunOnStartup: true,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		OverdueSpec:  cfg.Scheduler.OverdueSpec,
		RetrySpec:    cfg.Scheduler.RetrySpec,
		RetryBatch:   cfg.Scheduler.RetryBatch,
		JobTimeout:   cfg.Scheduler.JobTimeout,
		LockTTL:      cfg.Scheduler.LockTTL,
		RunOnStartup: cfg.Scheduler.RunOnStartup,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.OverdueSpec == "" {
		c.OverdueSpec = defaults.OverdueSpec
	}
	if c.RetrySpec == "" {
		c.RetrySpec = defaults.RetrySpec
	}
	if c.RetryBatch <= 0 {
		c.RetryBatch = defaults.RetryBatch
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	// a lease shorter than the job would let a second replica start it
	if c.LockTTL < c.JobTimeout {
		c.LockTTL = c.JobTimeout
	}
	return c
}
