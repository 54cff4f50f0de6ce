/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry retries provider calls that fail with transient errors.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config bounds how long a provider call may be retried.
type Config struct {
	// MaxRetries is the number of attempts after the first. 0 disables retries.
	MaxRetries int
	// BaseBackoff is the wait before the first retry; it doubles on each attempt.
	BaseBackoff time.Duration
	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration
	// MaxJitter is the upper bound of the random delay added to each backoff.
	MaxJitter time.Duration
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.MaxRetries < 0:
		return errors.New("max retries cannot be negative")
	case c.BaseBackoff < 0:
		return errors.New("base backoff cannot be negative")
	case c.MaxBackoff < 0:
		return errors.New("max backoff cannot be negative")
	case c.MaxJitter < 0:
		return errors.New("max jitter cannot be negative")
	}
	return nil
}

// Default returns the configuration used for tool generation calls. A clinician is
// waiting on the answer, so the budget is a few seconds rather than minutes.
func Default() Config {
	return Config{
		MaxRetries:  3,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  8 * time.Second,
		MaxJitter:   250 * time.Millisecond,
	}
}

// Backoff returns the wait before retry number attempt (zero based), without jitter.
func Backoff(c Config, attempt int) time.Duration {
	if attempt > 30 {
		return c.MaxBackoff
	}
	return min(c.BaseBackoff<<attempt, c.MaxBackoff)
}

func jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}

// Do calls fn until it succeeds, returns an error transient rejects, the retries run out,
// or ctx is done.
func Do[T any](ctx context.Context, c Config, operation string, transient func(error) bool, fn func() (T, error)) (T, error) {
	var (
		out     T
		lastErr error
	)
	for attempt := 0; ; attempt++ {
		out, lastErr = fn()
		if lastErr == nil {
			return out, nil
		}
		if !transient(lastErr) {
			return out, lastErr
		}
		if attempt >= c.MaxRetries {
			break
		}

		wait := Backoff(c, attempt) + jitter(c.MaxJitter)
		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", c.MaxRetries).
			With("backoff", wait).
			With("error", lastErr.Error()).
			Warn("Transient provider error, retrying")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return out, ctx.Err()
		case <-t.C:
		}
	}
	return out, fmt.Errorf("%s failed after %d retries: %w", operation, c.MaxRetries, lastErr)
}
