package prediction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heartguard/heartguard/internal/domain/dietplan"
	"github.com/heartguard/heartguard/pkg/pagination"
)

const maxAnnotationLen = 4000

type Service struct {
	orch     *Orchestrator
	repo     Repository
	logger   zerolog.Logger
	observer Observer
}

func NewService(orch *Orchestrator, repo Repository, logger zerolog.Logger, observer Observer) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{orch: orch, repo: repo, logger: logger, observer: observer}
}

// Predict runs the full pipeline for one request: validation, scoring,
// classification, diet plan and a single persisted record. Invalid input
// never reaches a scorer; a computed result that cannot be stored is not
// returned.
func (s *Service) Predict(ctx context.Context, userID uuid.UUID, in ClinicalInput, sourceFile *SourceFile) (*Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	outcome := s.orch.Resolve(ctx, in)
	assessment := Classify(outcome.Probability)
	plan := dietplan.Generate(assessment.Tier, assessment.HasCondition)

	rec := &Record{
		UserID:       userID,
		Input:        in,
		Probability:  assessment.Probability,
		HasCondition: assessment.HasCondition,
		Tier:         assessment.Tier,
		Source:       outcome.Source,
		RawLatencyMS: outcome.RawLatency.Milliseconds(),
		DietPlan:     plan,
		SourceFile:   sourceFile,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.observer.ObservePersistenceError()
		s.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("source", outcome.Source).
			Msg("prediction computed but not stored")
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	s.logger.Info().
		Str("prediction_id", rec.ID.String()).
		Str("tier", rec.Tier).
		Str("source", rec.Source).
		Float64("probability", rec.Probability).
		Int64("raw_latency_ms", rec.RawLatencyMS).
		Msg("prediction stored")
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]*Record, int, error) {
	if filter.Tier != "" {
		switch filter.Tier {
		case TierLow, TierModerate, TierHigh:
		default:
			return nil, 0, fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, filter.Tier)
		}
	}
	return s.repo.List(ctx, filter, page)
}

// Annotate appends a clinician note to an existing record. Notes are
// append-only; there is no update or delete.
func (s *Service) Annotate(ctx context.Context, predictionID, authorID uuid.UUID, body string) (*Annotation, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: annotation body is required", ErrInvalidInput)
	}
	if len(body) > maxAnnotationLen {
		return nil, fmt.Errorf("%w: annotation exceeds %d characters", ErrInvalidInput, maxAnnotationLen)
	}
	a := &Annotation{
		PredictionID: predictionID,
		AuthorID:     authorID,
		Body:         body,
	}
	if err := s.repo.AddAnnotation(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Annotations(ctx context.Context, predictionID uuid.UUID) ([]*Annotation, error) {
	if _, err := s.repo.GetByID(ctx, predictionID); err != nil {
		return nil, err
	}
	return s.repo.Annotations(ctx, predictionID)
}
