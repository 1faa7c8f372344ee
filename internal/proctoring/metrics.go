package proctoring

import "saylo/internal/models"

// Posture, clarity and confidence are not instrumented. These constants are
// stubs reported in place of measurements.
const (
	PlaceholderPosture    = 8.5
	PlaceholderClarity    = 8.0
	PlaceholderConfidence = 7.5
)

// Aggregate derives the non-verbal metrics for an answer from the running
// counters. With no samples it reports full eye contact and no nervousness.
func Aggregate(c Counters) models.NonVerbalMetrics {
	samples := float64(max(c.SamplesCount, 1))

	lookAwayRatio := float64(c.LookingAwayCount) / samples
	avgHeadMove := c.TotalHeadDelta / samples

	return models.NonVerbalMetrics{
		EyeContact:  clamp(10-lookAwayRatio*20, 1, 10),
		Nervousness: clamp(avgHeadMove*50, 0, 10),
		Posture:     PlaceholderPosture,
		Clarity:     PlaceholderClarity,
		Confidence:  PlaceholderConfidence,
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
