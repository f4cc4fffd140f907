package prediction

import (
	"context"

	"github.com/google/uuid"

	"github.com/heartguard/heartguard/pkg/pagination"
)

// ListFilter narrows List results. Zero values mean no filtering.
type ListFilter struct {
	UserID uuid.UUID
	Tier   string
}

// Repository stores prediction records and their annotations. Records are
// write-once; only annotations accumulate afterwards.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]*Record, int, error)
	AddAnnotation(ctx context.Context, a *Annotation) error
	Annotations(ctx context.Context, predictionID uuid.UUID) ([]*Annotation, error)
}
