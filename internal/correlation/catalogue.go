// Package correlation detects multi-event behavioral patterns in a day's
// chronological event stream using a declarative rule catalogue.
package correlation

import "github.com/lifelens/lifelens/internal/core"

// WindowTiers are the rolling time windows available to rules, in
// milliseconds.
type WindowTiers struct {
	ImmediateMS int64 // default 5 minutes
	ShortMS     int64 // default 30 minutes
	MediumMS    int64 // default 2 hours
	LongMS      int64 // default 4 hours
}

// DefaultWindowTiers returns the built-in window tiers.
func DefaultWindowTiers() WindowTiers {
	return WindowTiers{
		ImmediateMS: 5 * 60 * 1000,
		ShortMS:     30 * 60 * 1000,
		MediumMS:    2 * 60 * 60 * 1000,
		LongMS:      4 * 60 * 60 * 1000,
	}
}

// Catalogue returns the five built-in rules. Rules carry no executable code;
// one generic matcher interprets them all, so the set stays data-driven and
// independently testable.
func Catalogue(tiers WindowTiers) []core.CorrelationRule {
	return []core.CorrelationRule{
		{
			ID:           "workout_location",
			Events:       []core.EventType{core.EventWorkoutStart, core.EventLocationChange},
			TimeWindow:   tiers.ImmediateMS,
			Confidence:   0.8,
			NarrativeTag: "post_workout_movement",
		},
		{
			ID:           "morning_activation",
			Events:       []core.EventType{core.EventStepIncrease, core.EventAppUsage},
			TimeWindow:   tiers.ShortMS,
			Confidence:   0.6,
			NarrativeTag: "morning_activation",
		},
		{
			ID:           "errand_hop",
			Events:       []core.EventType{core.EventLocationChange, core.EventLocationChange, core.EventLocationChange},
			TimeWindow:   tiers.MediumMS,
			Confidence:   0.5,
			NarrativeTag: "multi_stop_outing",
		},
		{
			ID:           "post_workout_social",
			Events:       []core.EventType{core.EventWorkoutStart, core.EventCallLogged},
			TimeWindow:   tiers.MediumMS,
			Confidence:   0.55,
			NarrativeTag: "post_workout_social",
		},
		{
			ID:           "evening_winddown",
			Events:       []core.EventType{core.EventCallLogged, core.EventAppUsage},
			TimeWindow:   tiers.LongMS,
			Confidence:   0.5,
			NarrativeTag: "evening_winddown",
		},
	}
}
