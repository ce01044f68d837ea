package correlation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lifelens/lifelens/internal/core"
)

// lowCompletenessThreshold triggers the data-quality insight.
const lowCompletenessThreshold = 0.7

// insightMeta is the fixed narrative triple attached to each rule.
type insightMeta struct {
	Category       string
	Severity       core.Severity
	Title          string
	Recommendation string
}

var insightCatalog = map[string]insightMeta{
	"workout_location": {
		Category:       "activity",
		Severity:       core.SeverityPositive,
		Title:          "Active transition after workout",
		Recommendation: "Pairing workouts with a change of scenery helps the habit stick.",
	},
	"morning_activation": {
		Category:       "routine",
		Severity:       core.SeverityInfo,
		Title:          "Steady start to the day",
		Recommendation: "Your step count rises before screen time; keep that order.",
	},
	"errand_hop": {
		Category:       "mobility",
		Severity:       core.SeverityInfo,
		Title:          "Multi-stop outing",
		Recommendation: "Batching errands into one trip saves transition time.",
	},
	"post_workout_social": {
		Category:       "social",
		Severity:       core.SeverityPositive,
		Title:          "Social follow-up to exercise",
		Recommendation: "Calls after workouts correlate with routine consistency.",
	},
	"evening_winddown": {
		Category:       "balance",
		Severity:       core.SeverityInfo,
		Title:          "Evening wind-down routine",
		Recommendation: "A consistent wind-down sequence supports sleep regularity.",
	},
}

// GenerateInsights maps each detected pattern to its fixed narrative triple
// and appends a data-quality insight when the day's coarse completeness proxy
// falls below 0.7. The proxy only checks whether any activity records exist;
// it is not the per-slot completeness metric.
func (e *Engine) GenerateInsights(patterns []core.DetectedPattern, data *core.DailyData) []core.Insight {
	insights := make([]core.Insight, 0, len(patterns)+1)
	now := e.now()

	for _, p := range patterns {
		meta, ok := insightCatalog[p.RuleID]
		if !ok {
			continue
		}
		insights = append(insights, core.Insight{
			ID:             uuid.New().String(),
			Category:       meta.Category,
			Severity:       meta.Severity,
			Title:          meta.Title,
			Description:    describePattern(p),
			Recommendation: meta.Recommendation,
			CreatedAt:      now,
		})
	}

	if completenessProxy(data) < lowCompletenessThreshold {
		insights = append(insights, core.Insight{
			ID:          uuid.New().String(),
			Category:    "data_quality",
			Severity:    core.SeverityWarning,
			Title:       "Limited data for this day",
			Description: "Few activity records were available, so summaries and patterns may understate the day.",
			CreatedAt:   now,
		})
	}

	return insights
}

// completenessProxy grades the day's coverage from activity volume alone.
func completenessProxy(data *core.DailyData) float64 {
	if data != nil && len(data.Activities) > 0 {
		return 0.8
	}
	return 0.3
}

func describePattern(p core.DetectedPattern) string {
	if len(p.Events) == 0 {
		return fmt.Sprintf("Pattern %s detected", p.RuleID)
	}
	first := p.Events[0].Timestamp
	last := p.Events[len(p.Events)-1].Timestamp
	return fmt.Sprintf("Detected %s: %d events over %d minutes (confidence %.2f)",
		p.NarrativeTag, len(p.Events), (last-first)/60000, p.Confidence)
}
