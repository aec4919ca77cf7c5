package sse

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy calculates the delay before a reconnect attempt.
// Implementations must be safe for concurrent use.
type BackoffStrategy interface {
	// NextInterval returns the delay for the given attempt number.
	// Attempt starts at 1 for the first retry.
	NextInterval(attempt int) time.Duration
}

// FixedBackoff retries with a constant delay. This reproduces the
// dashboard's historical behavior of retrying every 5 seconds forever.
type FixedBackoff struct {
	Interval time.Duration
}

// NextInterval always returns the same interval.
func (f FixedBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// ExponentialBackoff grows the delay exponentially with optional jitter.
// Jitter spreads retry times across clients so a backend restart does
// not get hit by every dashboard tab at once.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// NextInterval returns min(InitialInterval * Multiplier^(attempt-1) * (1 ± JitterFactor), MaxInterval).
func (e ExponentialBackoff) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = time.Second
	}
	maxIval := e.MaxInterval
	if maxIval == 0 {
		maxIval = 30 * time.Second
	}
	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))

	if e.JitterFactor > 0 {
		interval *= 1 + (rand.Float64()*2-1)*e.JitterFactor
	}

	if interval > float64(maxIval) {
		interval = float64(maxIval)
	}
	return time.Duration(interval)
}

// DefaultBackoffStrategy returns exponential backoff from 1s to 30s with
// 10% jitter, the recommended strategy for new deployments.
func DefaultBackoffStrategy() BackoffStrategy {
	return ExponentialBackoff{
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
		JitterFactor:    0.1,
	}
}
