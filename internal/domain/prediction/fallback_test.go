package prediction

import (
	"math"
	"testing"
)

func healthyInput() ClinicalInput {
	return ClinicalInput{
		Age: 28, Sex: 0, CP: 0, Trestbps: 110, Chol: 170,
		FBS: 0, RestECG: 0, Thalach: 185, Exang: 0,
		Oldpeak: 0, Slope: 0, CA: 0, Thal: 0,
	}
}

func highRiskInput() ClinicalInput {
	return ClinicalInput{
		Age: 68, Sex: 1, CP: 2, Trestbps: 160, Chol: 300,
		FBS: 1, RestECG: 1, Thalach: 110, Exang: 1,
		Oldpeak: 2.5, Slope: 2, CA: 2, Thal: 2,
	}
}

func TestFallbackScoreDeterministic(t *testing.T) {
	in := highRiskInput()
	first := FallbackScore(in)
	for i := 0; i < 100; i++ {
		if got := FallbackScore(in); got != first {
			t.Fatalf("run %d: got %v, want %v", i, got, first)
		}
	}
}

func TestFallbackScoreBounds(t *testing.T) {
	inputs := []ClinicalInput{
		healthyInput(),
		highRiskInput(),
		{Age: 1, Trestbps: 50, Chol: 50, Thalach: 250},
		{Age: 120, Sex: 1, CP: 3, Trestbps: 250, Chol: 600, Thalach: 40, Exang: 1, Oldpeak: 10},
	}
	for _, in := range inputs {
		p := FallbackScore(in)
		if p < probabilityFloor || p > probabilityCeiling {
			t.Errorf("FallbackScore(%+v) = %v outside [%v, %v]", in, p, probabilityFloor, probabilityCeiling)
		}
	}
}

func TestFallbackScoreSeparatesRiskProfiles(t *testing.T) {
	low := FallbackScore(healthyInput())
	high := FallbackScore(highRiskInput())
	if low >= 0.3 {
		t.Errorf("healthy profile scored %v, want < 0.3", low)
	}
	if high <= 0.7 {
		t.Errorf("high-risk profile scored %v, want > 0.7", high)
	}
}

func TestFallbackScoreClampsExtremes(t *testing.T) {
	floor := FallbackScore(ClinicalInput{Age: 1, Trestbps: 50, Chol: 50, Thalach: 250})
	if floor != probabilityFloor {
		t.Errorf("extreme low profile scored %v, want floor %v", floor, probabilityFloor)
	}
	ceiling := FallbackScore(ClinicalInput{
		Age: 120, Sex: 1, CP: 3, Trestbps: 250, Chol: 600,
		Thalach: 40, Exang: 1, Oldpeak: 10,
	})
	if ceiling != probabilityCeiling {
		t.Errorf("extreme high profile scored %v, want ceiling %v", ceiling, probabilityCeiling)
	}
}

func TestFallbackScoreRiskFactorsIncreaseProbability(t *testing.T) {
	base := healthyInput()
	baseline := FallbackScore(base)

	withAngina := base
	withAngina.Exang = 1
	if FallbackScore(withAngina) <= baseline {
		t.Error("exercise-induced angina should raise the score")
	}

	older := base
	older.Age = 70
	if FallbackScore(older) <= baseline {
		t.Error("greater age should raise the score")
	}
}

func TestClampProbability(t *testing.T) {
	if got := clampProbability(math.SmallestNonzeroFloat64); got != probabilityFloor {
		t.Errorf("clamp near zero = %v, want %v", got, probabilityFloor)
	}
	if got := clampProbability(0.999); got != probabilityCeiling {
		t.Errorf("clamp near one = %v, want %v", got, probabilityCeiling)
	}
	if got := clampProbability(0.42); got != 0.42 {
		t.Errorf("clamp in-range = %v, want 0.42", got)
	}
}
