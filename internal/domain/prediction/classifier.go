package prediction

// Classify derives the risk assessment from a resolved probability.
// Boundaries are exclusive on the low side of each tier: exactly 0.3 is low,
// exactly 0.7 is moderate, exactly 0.5 is not a positive finding.
func Classify(probability float64) RiskAssessment {
	tier := TierLow
	switch {
	case probability > 0.7:
		tier = TierHigh
	case probability > 0.3:
		tier = TierModerate
	}
	return RiskAssessment{
		HasCondition: probability > 0.5,
		Probability:  probability,
		Tier:         tier,
	}
}
