package retry

import (
	"context"
	"time"
)

type Config struct {
	Attempts  int
	BaseDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Attempts:  3,
		BaseDelay: 1 * time.Second,
	}
}

// Do invokes fn up to cfg.Attempts times, doubling the delay between
// attempts. It returns the last error once attempts are exhausted or the
// context is done, whichever comes first.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	delay := cfg.BaseDelay

	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
