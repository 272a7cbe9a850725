package httpapi

import "jobshield-engine/internal/domain"

// explanationFor maps a classification to the human-readable summary
// returned alongside the flags. Owned by this layer, not the engine.
func explanationFor(c domain.Classification) string {
	switch c {
	case domain.Legitimate:
		return "This job offer appears to be legitimate based on our analysis. " +
			"However, always verify company details independently before proceeding."
	case domain.Suspicious:
		return "This job offer has several characteristics that require caution. " +
			"We recommend verifying company details, speaking with current employees, " +
			"and consulting your college placement cell before applying."
	case domain.Fake:
		return "This job offer shows multiple red flags consistent with fraudulent schemes. " +
			"We strongly recommend NOT proceeding with this opportunity. " +
			"Report this to your college authorities if received officially."
	default:
		return "Unable to classify this offer. Use your judgment."
	}
}
