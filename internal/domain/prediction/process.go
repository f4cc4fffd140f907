package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// ProcessScorer runs an external scoring program per request. The input is
// passed as a single JSON argument; the program prints a JSON object with a
// "probability" field to stdout and exits zero. Anything else, including a
// non-zero exit or unparseable output, counts as ErrScoringUnavailable.
type ProcessScorer struct {
	Command string
	Script  string
	Logger  zerolog.Logger
}

func NewProcessScorer(command, script string, logger zerolog.Logger) *ProcessScorer {
	return &ProcessScorer{Command: command, Script: script, Logger: logger}
}

func (s *ProcessScorer) Score(ctx context.Context, in ClinicalInput) (ScoreResult, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return ScoreResult{}, fmt.Errorf("%w: encode input: %v", ErrScoringUnavailable, err)
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Script, string(payload))
	// Without a wait delay, Run blocks past cancellation while any child of
	// the scorer still holds the stdout/stderr pipes open.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			s.Logger.Debug().
				Str("command", s.Command).
				Str("stderr", stderr.String()).
				Msg("scoring process failed")
		}
		return ScoreResult{}, fmt.Errorf("%w: run %s: %v", ErrScoringUnavailable, s.Command, err)
	}

	var raw struct {
		Probability *float64 `json:"probability"`
		Prediction  int      `json:"prediction"`
		Confidence  string   `json:"confidence"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &raw); err != nil {
		return ScoreResult{}, fmt.Errorf("%w: decode output: %v", ErrScoringUnavailable, err)
	}
	if raw.Probability == nil {
		return ScoreResult{}, fmt.Errorf("%w: output missing probability", ErrScoringUnavailable)
	}
	if *raw.Probability < 0 || *raw.Probability > 1 {
		return ScoreResult{}, fmt.Errorf("%w: probability %v outside [0, 1]",
			ErrScoringUnavailable, *raw.Probability)
	}
	return ScoreResult{
		Probability: *raw.Probability,
		Prediction:  raw.Prediction,
		Confidence:  raw.Confidence,
	}, nil
}
