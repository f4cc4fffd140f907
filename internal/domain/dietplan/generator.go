// Package dietplan builds diet recommendations from a risk tier. Generation
// is a pure function so the same assessment always produces the same plan.
package dietplan

// Plan is the recommendation bundle attached to a prediction record.
type Plan struct {
	Summary          string   `json:"summary"`
	SpecificGuidance string   `json:"specific_guidance"`
	Include          []string `json:"include"`
	Avoid            []string `json:"avoid"`
	SampleMeals      []string `json:"sample_meals"`
}

// Baseline heart-healthy guidance shared by every tier. Higher tiers extend
// and tighten it rather than replacing it.
var (
	baselineInclude = []string{
		"Vegetables and leafy greens (spinach, kale, broccoli)",
		"Whole grains (oats, brown rice, whole-wheat bread)",
		"Fatty fish rich in omega-3 (salmon, mackerel, sardines)",
		"Legumes (lentils, chickpeas, black beans)",
		"Nuts and seeds in moderation (walnuts, flaxseed)",
		"Fresh fruit (berries, citrus, apples)",
	}
	baselineAvoid = []string{
		"Deep-fried foods",
		"Processed meats (sausage, bacon, salami)",
		"Sugar-sweetened drinks",
		"Trans fats and partially hydrogenated oils",
	}
	baselineMeals = []string{
		"Oatmeal with berries and a handful of walnuts",
		"Grilled salmon with quinoa and steamed broccoli",
		"Lentil soup with whole-grain bread and a side salad",
	}
)

// Generate maps a risk tier to a diet plan. It is deterministic and total:
// an unrecognized tier falls back to the low-risk baseline.
func Generate(tier string, hasCondition bool) Plan {
	plan := Plan{
		Include:     append([]string(nil), baselineInclude...),
		Avoid:       append([]string(nil), baselineAvoid...),
		SampleMeals: append([]string(nil), baselineMeals...),
	}

	switch tier {
	case "high":
		plan.Summary = "Strict heart-protective diet with close attention to sodium, saturated fat and cholesterol."
		plan.SpecificGuidance = "Keep sodium under 1500 mg/day and saturated fat under 6% of calories. " +
			"Replace red meat entirely with fish and legumes. Discuss this plan with your physician or a registered dietitian."
		plan.Include = append(plan.Include,
			"Plant sterol-fortified foods",
			"Skinless poultry or fish instead of any red meat",
		)
		plan.Avoid = append(plan.Avoid,
			"Red meat in any form",
			"Full-fat dairy (butter, cream, whole milk)",
			"Added salt at the table; canned soups and pickled foods",
			"Egg yolks beyond two per week",
			"Alcohol",
		)
		plan.SampleMeals = append(plan.SampleMeals,
			"Steamed vegetables with tofu and unsalted brown rice",
		)
	case "moderate":
		plan.Summary = "Heart-healthy diet with reduced sodium and saturated fat."
		plan.SpecificGuidance = "Keep sodium under 2000 mg/day. Limit red meat to one serving per week " +
			"and prefer low-fat dairy. Schedule a follow-up lipid panel within three months."
		plan.Avoid = append(plan.Avoid,
			"Full-fat dairy (butter, cream, whole milk)",
			"More than one serving of red meat per week",
			"Salty snacks (chips, salted nuts)",
		)
	default: // low
		plan.Summary = "General heart-healthy diet to maintain your current low risk."
		plan.SpecificGuidance = "Follow balanced portions, stay active for at least 150 minutes per week, " +
			"and keep an annual check-up schedule."
	}

	if hasCondition {
		plan.SpecificGuidance += " Because the screening indicates likely heart disease, dietary changes " +
			"supplement but do not replace clinical care."
	}

	return plan
}
