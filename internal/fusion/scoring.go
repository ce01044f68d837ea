package fusion

import (
	"github.com/lifelens/lifelens/internal/core"
)

// Confidence scoring weights. Each present source contributes the base plus
// presence bonuses; the sum is capped below 1.0 to model irreducible
// uncertainty.
const (
	confidenceBase       = 0.3
	confidencePresence   = 0.1
	confidenceRichBonus  = 0.1
	confidenceCap        = 0.95
	richRecordThreshold  = 5
	timelinessWindowMS   = 24 * 60 * 60 * 1000
	consistencyPlacehold = 0.8
)

// SlotConfidence computes the corroboration score of one slot:
// 0.3 per distinct source present, +0.1 for a non-zero record count,
// +0.1 more when the count exceeds 5, hard-capped at 0.95.
func SlotConfidence(slot *core.TimeSlot) float64 {
	c := 0.0
	for _, agg := range slot.Sources {
		c += confidenceBase
		if agg.Count > 0 {
			c += confidencePresence
		}
		if agg.Count > richRecordThreshold {
			c += confidenceRichBonus
		}
	}
	if c > confidenceCap {
		c = confidenceCap
	}
	return c
}

// SlotQuality computes the quality triple of one slot given the set of
// sources expected to report and a reference clock in epoch milliseconds.
// Consistency is a fixed placeholder pending real cross-source conflict
// detection.
func SlotQuality(slot *core.TimeSlot, expectedSources []string, nowMS int64) core.QualityAssessment {
	q := core.QualityAssessment{Consistency: consistencyPlacehold}

	if len(expectedSources) > 0 {
		present := 0
		for _, src := range expectedSources {
			if _, ok := slot.Sources[src]; ok {
				present++
			}
		}
		q.Completeness = float64(present) / float64(len(expectedSources))
	} else {
		q.Completeness = 1.0
	}

	if nowMS-slot.Timestamp < timelinessWindowMS {
		q.Timeliness = 1.0
	} else {
		q.Timeliness = 0.5
	}

	return q
}

// ApplyConfidenceScoring layers confidence and quality onto every slot in
// place and returns the same map for chaining.
func ApplyConfidenceScoring(slots map[int64]*core.TimeSlot, expectedSources []string, nowMS int64) map[int64]*core.TimeSlot {
	for _, slot := range slots {
		slot.Confidence = SlotConfidence(slot)
		slot.Quality = SlotQuality(slot, expectedSources, nowMS)
	}
	return slots
}
