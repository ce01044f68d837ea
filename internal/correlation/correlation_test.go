package correlation

import (
	"testing"

	"github.com/lifelens/lifelens/internal/core"
)

func ev(typ core.EventType, ts int64) core.Event {
	return core.Event{Type: typ, Timestamp: ts}
}

// singleRuleEngine isolates one catalogue rule for focused matching tests.
func singleRuleEngine(t *testing.T, ruleID string) *Engine {
	t.Helper()
	for _, rule := range Catalogue(DefaultWindowTiers()) {
		if rule.ID == ruleID {
			return NewEngine([]core.CorrelationRule{rule})
		}
	}
	t.Fatalf("rule %q not in catalogue", ruleID)
	return nil
}

func TestCatalogueSpansWindowTiers(t *testing.T) {
	tiers := DefaultWindowTiers()
	rules := Catalogue(tiers)

	if len(rules) != 5 {
		t.Fatalf("catalogue has %d rules, want 5", len(rules))
	}

	seen := map[int64]bool{}
	for _, r := range rules {
		if len(r.Events) == 0 {
			t.Errorf("rule %s has no event sequence", r.ID)
		}
		if r.Confidence <= 0 || r.Confidence > 1 {
			t.Errorf("rule %s confidence %v out of range", r.ID, r.Confidence)
		}
		if r.NarrativeTag == "" {
			t.Errorf("rule %s missing narrative tag", r.ID)
		}
		seen[r.TimeWindow] = true
	}
	for _, window := range []int64{tiers.ImmediateMS, tiers.ShortMS, tiers.MediumMS, tiers.LongMS} {
		if !seen[window] {
			t.Errorf("no rule uses window %d", window)
		}
	}
}

func TestWorkoutLocationMatch(t *testing.T) {
	e := singleRuleEngine(t, "workout_location")

	events := []core.Event{
		ev(core.EventWorkoutStart, 0),
		ev(core.EventLocationChange, 120000),
	}
	patterns := e.DetectPatterns(events)
	if len(patterns) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(patterns))
	}
	p := patterns[0]
	if p.RuleID != "workout_location" || p.Confidence != 0.8 {
		t.Errorf("match = %+v", p)
	}
	if p.NarrativeTag != "post_workout_movement" {
		t.Errorf("narrative tag = %q", p.NarrativeTag)
	}
	if len(p.Events) != 2 || p.Events[1].Timestamp != 120000 {
		t.Errorf("matched events = %+v", p.Events)
	}
	if p.ID == "" {
		t.Error("pattern should carry a generated id")
	}
}

func TestWorkoutLocationOutsideWindow(t *testing.T) {
	e := singleRuleEngine(t, "workout_location")

	events := []core.Event{
		ev(core.EventWorkoutStart, 0),
		ev(core.EventLocationChange, 600000), // 10 min later, window is 5
	}
	if patterns := e.DetectPatterns(events); len(patterns) != 0 {
		t.Errorf("expected zero matches, got %d", len(patterns))
	}
}

func TestRollingWindowResetsPerMatchedEvent(t *testing.T) {
	// errand_hop needs three location changes within a rolling 2h window.
	// Each consecutive gap is 90 min, so the total span (3h) exceeds the
	// window but every hop is inside it: the rolling window must match.
	e := singleRuleEngine(t, "errand_hop")

	const gap = int64(90 * 60 * 1000)
	events := []core.Event{
		ev(core.EventLocationChange, 0),
		ev(core.EventLocationChange, gap),
		ev(core.EventLocationChange, 2*gap),
	}

	patterns := e.DetectPatterns(events)
	if len(patterns) != 1 {
		t.Fatalf("rolling window should allow span > window, got %d matches", len(patterns))
	}
}

func TestInterveningEventsDoNotBreakMatch(t *testing.T) {
	e := singleRuleEngine(t, "workout_location")

	// Intervening events of other types are skipped; only the gap
	// between accepted events counts against the window.
	events := []core.Event{
		ev(core.EventWorkoutStart, 0),
		ev(core.EventAppUsage, 60000),
		ev(core.EventLocationChange, 240000),
	}
	if patterns := e.DetectPatterns(events); len(patterns) != 1 {
		t.Fatalf("expected one match, got %d", len(patterns))
	}
}

func TestMultipleIndependentMatches(t *testing.T) {
	e := singleRuleEngine(t, "workout_location")

	events := []core.Event{
		ev(core.EventWorkoutStart, 0),
		ev(core.EventLocationChange, 60000),
		ev(core.EventWorkoutStart, 3_600_000),
		ev(core.EventLocationChange, 3_700_000),
	}

	patterns := e.DetectPatterns(events)
	if len(patterns) != 2 {
		t.Fatalf("each valid start index must report, got %d matches", len(patterns))
	}
}

func TestPartialMatchDiscarded(t *testing.T) {
	e := singleRuleEngine(t, "errand_hop")

	events := []core.Event{
		ev(core.EventLocationChange, 0),
		ev(core.EventLocationChange, 60000),
		// Third hop never happens.
	}
	if patterns := e.DetectPatterns(events); len(patterns) != 0 {
		t.Errorf("partial sequence must not match, got %d", len(patterns))
	}
}

func TestExtractEventsSortedStable(t *testing.T) {
	data := &core.DailyData{
		Date: "2026-08-29",
		Activities: []core.SourceRecord{
			{Source: "activity", Timestamp: 5_000, Fields: map[string]core.FieldValue{
				"type": core.Category("workout"),
			}},
		},
		Locations: []core.SourceRecord{
			{Source: "location", Timestamp: 1_000, Fields: map[string]core.FieldValue{
				"place_id": core.Category("home"),
			}},
			// Same timestamp as the workout: extraction order (activities
			// before locations) must be preserved by the stable sort.
			{Source: "location", Timestamp: 5_000, Fields: map[string]core.FieldValue{
				"place_id": core.Category("gym"),
			}},
		},
	}

	events := ExtractEvents(data)
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	if events[0].Type != core.EventLocationChange || events[0].Timestamp != 1_000 {
		t.Errorf("events not sorted ascending: %+v", events[0])
	}
	if events[1].Type != core.EventWorkoutStart || events[2].Type != core.EventLocationChange {
		t.Errorf("tie not broken by input order: %v then %v", events[1].Type, events[2].Type)
	}
	if events[2].Payload["place_id"] != "gym" {
		t.Errorf("payload lost: %+v", events[2].Payload)
	}
}

func TestExtractEventsStepIncrease(t *testing.T) {
	data := &core.DailyData{
		Activities: []core.SourceRecord{
			{Source: "activity", Timestamp: 1_000, Fields: map[string]core.FieldValue{
				"steps": core.Number(800),
			}},
			{Source: "activity", Timestamp: 2_000, Fields: map[string]core.FieldValue{
				"steps": core.Number(50), // below threshold
			}},
			{Source: "activity", Timestamp: 0, Fields: map[string]core.FieldValue{
				"steps": core.Number(900), // malformed timestamp
			}},
		},
	}

	events := ExtractEvents(data)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Type != core.EventStepIncrease || events[0].Payload["steps"] != "800" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestGenerateInsightsFromPatterns(t *testing.T) {
	e := NewEngine(nil)
	data := &core.DailyData{
		Activities: []core.SourceRecord{{Source: "activity", Timestamp: 1}},
	}
	patterns := []core.DetectedPattern{
		{
			ID:           "p1",
			RuleID:       "workout_location",
			Confidence:   0.8,
			NarrativeTag: "post_workout_movement",
			Events: []core.Event{
				ev(core.EventWorkoutStart, 0),
				ev(core.EventLocationChange, 120000),
			},
		},
	}

	insights := e.GenerateInsights(patterns, data)
	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	in := insights[0]
	if in.Category != "activity" || in.Severity != core.SeverityPositive {
		t.Errorf("insight meta = %+v", in)
	}
	if in.Recommendation == "" || in.ID == "" {
		t.Errorf("insight missing recommendation or id: %+v", in)
	}
}

func TestGenerateInsightsDataQuality(t *testing.T) {
	e := NewEngine(nil)

	// No activities: completeness proxy 0.3 < 0.7 triggers the warning.
	insights := e.GenerateInsights(nil, &core.DailyData{})
	if len(insights) != 1 {
		t.Fatalf("got %d insights, want data-quality warning only", len(insights))
	}
	if insights[0].Category != "data_quality" || insights[0].Severity != core.SeverityWarning {
		t.Errorf("insight = %+v", insights[0])
	}

	// With activities the proxy is 0.8 and no warning is produced.
	withData := &core.DailyData{
		Activities: []core.SourceRecord{{Source: "activity", Timestamp: 1}},
	}
	if got := e.GenerateInsights(nil, withData); len(got) != 0 {
		t.Errorf("unexpected insights: %+v", got)
	}
}

func TestDetectDaily(t *testing.T) {
	e := NewEngine(nil)
	data := &core.DailyData{
		Activities: []core.SourceRecord{
			{Source: "activity", Timestamp: 1_000, Fields: map[string]core.FieldValue{
				"type": core.Category("workout"),
			}},
		},
		Locations: []core.SourceRecord{
			{Source: "location", Timestamp: 121_000, Fields: map[string]core.FieldValue{
				"place_id": core.Category("park"),
			}},
		},
	}

	patterns := e.DetectDaily(data)
	found := false
	for _, p := range patterns {
		if p.RuleID == "workout_location" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected workout_location in %+v", patterns)
	}
}
