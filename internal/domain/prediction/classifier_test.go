package prediction

import "testing"

func TestClassifyTierBoundaries(t *testing.T) {
	cases := []struct {
		probability float64
		wantTier    string
	}{
		{0.0, TierLow},
		{0.29, TierLow},
		{0.3, TierLow},
		{0.300001, TierModerate},
		{0.5, TierModerate},
		{0.7, TierModerate},
		{0.700001, TierHigh},
		{0.95, TierHigh},
		{1.0, TierHigh},
	}
	for _, tc := range cases {
		got := Classify(tc.probability)
		if got.Tier != tc.wantTier {
			t.Errorf("Classify(%v).Tier = %s, want %s", tc.probability, got.Tier, tc.wantTier)
		}
		if got.Probability != tc.probability {
			t.Errorf("Classify(%v) altered probability to %v", tc.probability, got.Probability)
		}
	}
}

func TestClassifyHasCondition(t *testing.T) {
	if Classify(0.5).HasCondition {
		t.Error("probability exactly 0.5 must not be a positive finding")
	}
	if !Classify(0.500001).HasCondition {
		t.Error("probability just above 0.5 must be a positive finding")
	}
	if Classify(0.1).HasCondition {
		t.Error("low probability must not be a positive finding")
	}
}
