package prediction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingObserver struct {
	mu           sync.Mutex
	predictions  map[string]int
	failures     map[string]int
	persistences int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		predictions: make(map[string]int),
		failures:    make(map[string]int),
	}
}

func (o *recordingObserver) ObservePrediction(source string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.predictions[source]++
}

func (o *recordingObserver) ObserveScoringFailure(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[reason]++
}

func (o *recordingObserver) ObservePersistenceError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.persistences++
}

func stubScorer(p float64, delay time.Duration, err error) Scorer {
	return ScorerFunc(func(ctx context.Context, _ ClinicalInput) (ScoreResult, error) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ScoreResult{}, fmt.Errorf("%w: %v", ErrScoringUnavailable, ctx.Err())
			}
		}
		if err != nil {
			return ScoreResult{}, err
		}
		return ScoreResult{Probability: p, Prediction: 1, Confidence: "high"}, nil
	})
}

func TestResolveExternalWins(t *testing.T) {
	obs := newRecordingObserver()
	o := NewOrchestrator(stubScorer(0.82, 0, nil), time.Second, zerolog.Nop(), obs)

	out := o.Resolve(context.Background(), highRiskInput())
	if out.Source != SourceExternal {
		t.Fatalf("source = %s, want %s", out.Source, SourceExternal)
	}
	if out.Probability != 0.82 {
		t.Errorf("probability = %v, want 0.82", out.Probability)
	}
	if obs.predictions[SourceExternal] != 1 || obs.predictions[SourceFallback] != 0 {
		t.Errorf("prediction counts = %v", obs.predictions)
	}
}

func TestResolveClampsExternalProbability(t *testing.T) {
	o := NewOrchestrator(stubScorer(0.999, 0, nil), time.Second, zerolog.Nop(), nil)
	out := o.Resolve(context.Background(), highRiskInput())
	if out.Probability != probabilityCeiling {
		t.Errorf("probability = %v, want clamped %v", out.Probability, probabilityCeiling)
	}
}

func TestResolveScorerErrorFallsBack(t *testing.T) {
	obs := newRecordingObserver()
	o := NewOrchestrator(stubScorer(0, 0, ErrScoringUnavailable), time.Second, zerolog.Nop(), obs)

	in := highRiskInput()
	out := o.Resolve(context.Background(), in)
	if out.Source != SourceFallback {
		t.Fatalf("source = %s, want %s", out.Source, SourceFallback)
	}
	if out.Probability != FallbackScore(in) {
		t.Errorf("probability = %v, want fallback %v", out.Probability, FallbackScore(in))
	}
	if obs.failures["unavailable"] != 1 {
		t.Errorf("failure counts = %v", obs.failures)
	}
}

func TestResolveDeadlineFallsBack(t *testing.T) {
	obs := newRecordingObserver()
	o := NewOrchestrator(stubScorer(0.9, 5*time.Second, nil), 50*time.Millisecond, zerolog.Nop(), obs)

	in := healthyInput()
	start := time.Now()
	out := o.Resolve(context.Background(), in)
	elapsed := time.Since(start)

	if out.Source != SourceFallback {
		t.Fatalf("source = %s, want %s", out.Source, SourceFallback)
	}
	if out.Probability != FallbackScore(in) {
		t.Errorf("probability = %v, want fallback %v", out.Probability, FallbackScore(in))
	}
	if elapsed > time.Second {
		t.Errorf("resolve took %v, should return promptly after the deadline", elapsed)
	}
	if obs.failures["timeout"] != 1 {
		t.Errorf("failure counts = %v", obs.failures)
	}
}

func TestResolveLateResultDiscarded(t *testing.T) {
	released := make(chan struct{})
	scorer := ScorerFunc(func(ctx context.Context, _ ClinicalInput) (ScoreResult, error) {
		// Ignores cancellation on purpose and answers after the deadline.
		<-released
		return ScoreResult{Probability: 0.99}, nil
	})
	obs := newRecordingObserver()
	o := NewOrchestrator(scorer, 20*time.Millisecond, zerolog.Nop(), obs)

	in := healthyInput()
	out := o.Resolve(context.Background(), in)
	close(released)

	if out.Source != SourceFallback {
		t.Fatalf("source = %s, want %s", out.Source, SourceFallback)
	}
	if out.Probability == 0.99 {
		t.Error("late external result leaked into the outcome")
	}

	// The late answer must not produce a second observation.
	time.Sleep(20 * time.Millisecond)
	obs.mu.Lock()
	defer obs.mu.Unlock()
	if total := obs.predictions[SourceExternal] + obs.predictions[SourceFallback]; total != 1 {
		t.Errorf("observed %d predictions, want exactly 1", total)
	}
}

func TestResolveCancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs := newRecordingObserver()
	o := NewOrchestrator(stubScorer(0.9, time.Second, nil), time.Second, zerolog.Nop(), obs)
	out := o.Resolve(ctx, healthyInput())
	if out.Source != SourceFallback {
		t.Fatalf("source = %s, want %s", out.Source, SourceFallback)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.failures["canceled"] != 1 || obs.failures["timeout"] != 0 {
		t.Errorf("failure counts = %v, want one canceled and no timeout", obs.failures)
	}
}

func TestIsUserError(t *testing.T) {
	if !IsUserError(ErrInvalidInput) {
		t.Error("ErrInvalidInput should be a user error")
	}
	if IsUserError(ErrPersistenceFailed) || IsUserError(errors.New("boom")) {
		t.Error("server-side failures are not user errors")
	}
}
