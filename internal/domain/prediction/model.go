package prediction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartguard/heartguard/internal/domain/dietplan"
)

// ClinicalInput is the fixed 13-field record consumed by both scoring models.
// JSON field names follow the UCI heart-disease attribute names, which is also
// the wire contract of the external scoring process.
type ClinicalInput struct {
	Age      int     `json:"age"`      // years, 1..120
	Sex      int     `json:"sex"`      // 0 female, 1 male
	CP       int     `json:"cp"`       // chest pain type, 0..3
	Trestbps int     `json:"trestbps"` // resting blood pressure mmHg, 50..250
	Chol     int     `json:"chol"`     // serum cholesterol mg/dl, 50..600
	FBS      int     `json:"fbs"`      // fasting blood sugar >120 mg/dl, 0..1
	RestECG  int     `json:"restecg"`  // resting ECG category, 0..2
	Thalach  int     `json:"thalach"`  // max heart rate achieved, 40..250
	Exang    int     `json:"exang"`    // exercise-induced angina, 0..1
	Oldpeak  float64 `json:"oldpeak"`  // ST depression, 0..10
	Slope    int     `json:"slope"`    // ST slope category, 0..2
	CA       int     `json:"ca"`       // major vessels colored, 0..4
	Thal     int     `json:"thal"`     // thalassemia category, 0..3
}

type fieldRange struct {
	name     string
	value    float64
	min, max float64
}

// Validate checks every field against its declared domain. An input passes
// only when all thirteen fields are in-domain; nothing downstream of this
// check re-validates.
func (in ClinicalInput) Validate() error {
	checks := []fieldRange{
		{"age", float64(in.Age), 1, 120},
		{"sex", float64(in.Sex), 0, 1},
		{"cp", float64(in.CP), 0, 3},
		{"trestbps", float64(in.Trestbps), 50, 250},
		{"chol", float64(in.Chol), 50, 600},
		{"fbs", float64(in.FBS), 0, 1},
		{"restecg", float64(in.RestECG), 0, 2},
		{"thalach", float64(in.Thalach), 40, 250},
		{"exang", float64(in.Exang), 0, 1},
		{"oldpeak", in.Oldpeak, 0, 10},
		{"slope", float64(in.Slope), 0, 2},
		{"ca", float64(in.CA), 0, 4},
		{"thal", float64(in.Thal), 0, 3},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s=%v outside [%v, %v]",
				ErrInvalidInput, c.name, c.value, c.min, c.max)
		}
	}
	return nil
}

// Score sources.
const (
	SourceExternal = "external"
	SourceFallback = "fallback"
)

// ScoreOutcome is the single resolved result of one orchestration.
type ScoreOutcome struct {
	Probability float64       `json:"probability"`
	Source      string        `json:"source"`
	RawLatency  time.Duration `json:"raw_latency"`
}

// Risk tiers.
const (
	TierLow      = "low"
	TierModerate = "moderate"
	TierHigh     = "high"
)

// RiskAssessment is derived deterministically from a ScoreOutcome and is
// immutable once created.
type RiskAssessment struct {
	HasCondition bool    `json:"has_condition"`
	Probability  float64 `json:"probability"`
	Tier         string  `json:"tier"`
}

// SourceFile carries metadata about an uploaded report the input was
// extracted from. Text extraction itself happens upstream.
type SourceFile struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Annotation is an append-only clinician note on a prediction record.
type Annotation struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PredictionID uuid.UUID `db:"prediction_id" json:"prediction_id"`
	AuthorID     uuid.UUID `db:"author_id" json:"author_id"`
	Body         string    `db:"body" json:"body"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Record maps to the prediction table. Everything except annotations is
// immutable after Create.
type Record struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	UserID       uuid.UUID     `db:"user_id" json:"user_id"`
	Input        ClinicalInput `db:"input" json:"input"`
	Probability  float64       `db:"probability" json:"probability"`
	HasCondition bool          `db:"has_condition" json:"has_condition"`
	Tier         string        `db:"tier" json:"tier"`
	Source       string        `db:"source" json:"source"`
	RawLatencyMS int64         `db:"raw_latency_ms" json:"raw_latency_ms"`
	DietPlan     dietplan.Plan `db:"diet_plan" json:"diet_plan"`
	SourceFile   *SourceFile   `db:"source_file" json:"source_file,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// Assessment reconstructs the RiskAssessment stored on the record.
func (r *Record) Assessment() RiskAssessment {
	return RiskAssessment{
		HasCondition: r.HasCondition,
		Probability:  r.Probability,
		Tier:         r.Tier,
	}
}
