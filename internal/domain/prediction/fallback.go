package prediction

import "math"

// Probability bounds. A resolved outcome never claims certainty in either
// direction, so every score is clamped away from 0 and 1.
const (
	probabilityFloor   = 0.05
	probabilityCeiling = 0.95
)

// FallbackScore computes a heart-disease probability from a small logistic
// model over the strongest clinical signals. It is deterministic, allocation
// free, and used whenever the external scorer cannot answer in time.
func FallbackScore(in ClinicalInput) float64 {
	linear := 0.04*float64(in.Age-45) +
		0.02*float64(in.Trestbps-120) +
		0.004*float64(in.Chol-200) +
		-0.02*float64(in.Thalach-150) +
		0.4*float64(in.Sex) +
		0.6*float64(in.Exang) +
		0.3*in.Oldpeak
	if in.CP > 1 {
		linear += 0.5
	}
	p := 1.0 / (1.0 + math.Exp(-linear))
	return clampProbability(p)
}

func clampProbability(p float64) float64 {
	if p < probabilityFloor {
		return probabilityFloor
	}
	if p > probabilityCeiling {
		return probabilityCeiling
	}
	return p
}
