package prediction

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Observer receives orchestration telemetry. telemetry.Metrics satisfies it.
type Observer interface {
	ObservePrediction(source string, latency time.Duration)
	ObserveScoringFailure(reason string)
	ObservePersistenceError()
}

type nopObserver struct{}

func (nopObserver) ObservePrediction(string, time.Duration) {}
func (nopObserver) ObserveScoringFailure(string)            {}
func (nopObserver) ObservePersistenceError()                {}

// Orchestrator races the external scorer against a fixed deadline and always
// resolves to exactly one outcome per request. The fallback model answers
// whenever the external scorer fails or overruns; a late external answer is
// discarded, never stored, never returned.
type Orchestrator struct {
	scorer   Scorer
	deadline time.Duration
	logger   zerolog.Logger
	observer Observer
	now      func() time.Time
}

func NewOrchestrator(scorer Scorer, deadline time.Duration, logger zerolog.Logger, observer Observer) *Orchestrator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Orchestrator{
		scorer:   scorer,
		deadline: deadline,
		logger:   logger,
		observer: observer,
		now:      time.Now,
	}
}

type scoreReply struct {
	result ScoreResult
	err    error
}

// Resolve produces the single ScoreOutcome for a validated input. The input
// must already have passed Validate; Resolve does not re-check it.
func (o *Orchestrator) Resolve(ctx context.Context, in ClinicalInput) ScoreOutcome {
	start := o.now()

	// resolved marks that the fallback already answered. The scoring
	// goroutine checks it only for logging; the channel buffer guarantees
	// its send never blocks.
	var resolved atomic.Bool
	replies := make(chan scoreReply, 1)

	scoreCtx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	go func() {
		result, err := o.scorer.Score(scoreCtx, in)
		replies <- scoreReply{result: result, err: err}
		if resolved.Load() && err == nil {
			o.logger.Warn().
				Dur("elapsed", time.Since(start)).
				Msg("late scoring result discarded")
		}
	}()

	timer := time.NewTimer(o.deadline)
	defer timer.Stop()

	select {
	case reply := <-replies:
		if reply.err == nil {
			latency := o.now().Sub(start)
			o.observer.ObservePrediction(SourceExternal, latency)
			return ScoreOutcome{
				Probability: clampProbability(reply.result.Probability),
				Source:      SourceExternal,
				RawLatency:  latency,
			}
		}
		o.logger.Warn().Err(reply.err).Msg("external scorer failed, using fallback")
		o.observer.ObserveScoringFailure("unavailable")
	case <-timer.C:
		o.logger.Warn().
			Dur("deadline", o.deadline).
			Msg("external scorer missed deadline, using fallback")
		o.observer.ObserveScoringFailure("timeout")
	case <-ctx.Done():
		o.logger.Warn().Err(ctx.Err()).Msg("request canceled before scoring resolved, using fallback")
		o.observer.ObserveScoringFailure("canceled")
	}

	resolved.Store(true)
	cancel()

	latency := o.now().Sub(start)
	o.observer.ObservePrediction(SourceFallback, latency)
	return ScoreOutcome{
		Probability: FallbackScore(in),
		Source:      SourceFallback,
		RawLatency:  latency,
	}
}

// IsUserError reports whether err should surface to the API caller as their
// fault rather than a server failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
