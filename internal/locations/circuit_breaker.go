// Find My History - Location History Playback Widget
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/findmyhistory

package locations

import (
	"context"
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/findmyhistory/internal/config"
	"github.com/tomtom215/findmyhistory/internal/logging"
	"github.com/tomtom215/findmyhistory/internal/metrics"
	"github.com/tomtom215/findmyhistory/internal/models"
)

// BreakerName labels the upstream breaker in logs and metrics.
const BreakerName = "location-api"

// ErrCircuitOpen is returned while the breaker rejects requests.
var ErrCircuitOpen = errors.New("location API unavailable (circuit open)")

// CircuitBreakerFetcher wraps a Fetcher with a gobreaker circuit breaker so a
// failing upstream is not hammered by device switches and reloads.
//
// The breaker uses real time for its interval and open timeout.
type CircuitBreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[models.SampleSeries]
	name string
}

// NewCircuitBreakerFetcher wraps next using cfg thresholds.
func NewCircuitBreakerFetcher(next Fetcher, cfg config.BreakerConfig) *CircuitBreakerFetcher {
	name := BreakerName

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 1
	}

	cb := gobreaker.NewCircuitBreaker[models.SampleSeries](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMax,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,

		// Opens once enough requests were seen and the failure ratio is reached.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		// Client errors and caller cancellation say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerFetcher{next: next, cb: cb, name: name}
}

// Fetch runs the wrapped fetch through the breaker.
func (f *CircuitBreakerFetcher) Fetch(ctx context.Context, q Query) (models.SampleSeries, error) {
	series, err := f.cb.Execute(func() (models.SampleSeries, error) {
		return f.next.Fetch(ctx, q)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(f.name, "rejected").Inc()
			metrics.LocationFetchErrors.WithLabelValues("circuit_open").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("device", q.DeviceID).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, ErrCircuitOpen
		}
		metrics.CircuitBreakerRequests.WithLabelValues(f.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(f.name).Set(float64(f.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(f.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(f.name).Set(0)
	return series, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (f *CircuitBreakerFetcher) State() string {
	return stateToString(f.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
