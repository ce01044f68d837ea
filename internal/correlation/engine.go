package correlation

import (
	"time"

	"github.com/google/uuid"

	"github.com/lifelens/lifelens/internal/core"
)

// Engine evaluates the rule catalogue against event streams. The catalogue is
// fixed at construction; rules share no state, so evaluation order never
// changes which matches are found.
type Engine struct {
	rules []core.CorrelationRule
	now   func() time.Time
}

// NewEngine creates an engine. A nil rule set selects the built-in catalogue
// with default window tiers.
func NewEngine(rules []core.CorrelationRule) *Engine {
	if rules == nil {
		rules = Catalogue(DefaultWindowTiers())
	}
	return &Engine{rules: rules, now: time.Now}
}

// Rules exposes the catalogue for inspection.
func (e *Engine) Rules() []core.CorrelationRule {
	return e.rules
}

// DetectPatterns runs every rule independently over the sorted event stream
// and reports all matches. Each valid starting index yields its own match;
// partial matches are discarded.
//
// The time window rolls: an event is accepted only when its timestamp falls
// within the rule's window of the previously accepted event in the same
// attempt, not of the sequence start.
func (e *Engine) DetectPatterns(events []core.Event) []core.DetectedPattern {
	var patterns []core.DetectedPattern

	for _, rule := range e.rules {
		if len(rule.Events) == 0 {
			continue
		}
		for i := range events {
			if events[i].Type != rule.Events[0] {
				continue
			}
			if matched := matchFrom(events, i, rule); matched != nil {
				patterns = append(patterns, core.DetectedPattern{
					ID:           uuid.New().String(),
					RuleID:       rule.ID,
					Confidence:   rule.Confidence,
					Events:       matched,
					NarrativeTag: rule.NarrativeTag,
				})
			}
		}
	}

	return patterns
}

// DetectDaily is the convenience path from raw daily data: extract, sort,
// match.
func (e *Engine) DetectDaily(data *core.DailyData) []core.DetectedPattern {
	return e.DetectPatterns(ExtractEvents(data))
}

// matchFrom advances a pointer through the rule's required sequence starting
// at events[start]. Events are sorted ascending, so once the gap to the last
// accepted event exceeds the window no later event can close it.
func matchFrom(events []core.Event, start int, rule core.CorrelationRule) []core.Event {
	matched := make([]core.Event, 1, len(rule.Events))
	matched[0] = events[start]
	need := 1
	last := events[start].Timestamp

	for j := start + 1; j < len(events) && need < len(rule.Events); j++ {
		if events[j].Timestamp-last > rule.TimeWindow {
			break
		}
		if events[j].Type == rule.Events[need] {
			matched = append(matched, events[j])
			last = events[j].Timestamp
			need++
		}
	}

	if need == len(rule.Events) {
		return matched
	}
	return nil
}
