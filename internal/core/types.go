// Package core defines the fundamental types for the LifeLens analysis
// engine. Everything the engine ingests or produces is declared here.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// -----------------------------------------------------------------------------
// SOURCE RECORDS - Raw input from collectors
// -----------------------------------------------------------------------------

// FieldKind distinguishes the two consumers of a field value:
// numeric aggregation and categorical set-collection.
type FieldKind int

const (
	FieldNumeric FieldKind = iota
	FieldCategorical
)

// FieldValue is a tagged value of a record field. Collectors produce loosely
// typed data; the tag makes the numeric/categorical split explicit instead of
// sniffing an open map at aggregation time.
type FieldValue struct {
	Kind FieldKind
	Num  float64
	Str  string
}

// Number builds a numeric field value.
func Number(v float64) FieldValue {
	return FieldValue{Kind: FieldNumeric, Num: v}
}

// Category builds a categorical field value.
func Category(s string) FieldValue {
	return FieldValue{Kind: FieldCategorical, Str: s}
}

// MarshalJSON encodes numeric fields as JSON numbers and categorical fields
// as JSON strings, so a record serializes the way the collectors emit it.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.Kind == FieldNumeric {
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts a JSON number or string. Anything else (nested
// objects, arrays) is preserved verbatim as a categorical value.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Number(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Category(s)
		return nil
	}
	*v = Category(string(data))
	return nil
}

// Well-known source identifiers. Collectors may introduce more; these are
// the ones the engine fuses by default.
const (
	SourceActivity = "activity"
	SourceLocation = "location"
	SourceCall     = "call"
	SourceAppUsage = "app_usage"
	SourceHealth   = "health"
)

// SourceRecord is one data point from one named source. Immutable once
// produced; no ordering is assumed across sources.
type SourceRecord struct {
	Source    string                `json:"source"`
	Timestamp int64                 `json:"timestamp"` // epoch milliseconds
	Fields    map[string]FieldValue `json:"fields"`
}

// -----------------------------------------------------------------------------
// TIME SLOTS - Harmonized multi-source windows
// -----------------------------------------------------------------------------

// NumericStats aggregates one numeric field within a slot.
// The average is always derived from Sum and Count, never stored.
type NumericStats struct {
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Avg returns Sum/Count, or 0 for an empty aggregate.
func (s *NumericStats) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// AggregatedSourceData holds one source's aggregate within one time slot.
// Categorical values are distinct and sorted; order of observation does not
// matter.
type AggregatedSourceData struct {
	Count       int                      `json:"count"`
	Numeric     map[string]*NumericStats `json:"numeric,omitempty"`
	Categorical map[string][]string      `json:"categorical,omitempty"`
}

// QualityAssessment describes data characteristics of a slot, independent of
// confidence. Consistency is a fixed placeholder pending a real cross-source
// conflict detector.
type QualityAssessment struct {
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
}

// TimeSlot is a fixed-width window [Timestamp, Timestamp+width) holding each
// source's aggregate plus derived confidence and quality.
type TimeSlot struct {
	Timestamp  int64                            `json:"timestamp"` // slot start, epoch ms
	Sources    map[string]*AggregatedSourceData `json:"sources"`
	Confidence float64                          `json:"confidence"`
	Quality    QualityAssessment                `json:"quality"`
}

// -----------------------------------------------------------------------------
// EVENTS & CORRELATION - Behavioral sequence detection
// -----------------------------------------------------------------------------

// EventType tags a projected behavioral event.
type EventType string

const (
	EventWorkoutStart   EventType = "workout_start"
	EventLocationChange EventType = "location_change"
	EventStepIncrease   EventType = "step_increase"
	EventAppUsage       EventType = "app_usage"
	EventCallLogged     EventType = "call_logged"
)

// Event is an ephemeral projection of a raw record onto the correlation
// timeline. Exists only for the duration of one correlation pass.
type Event struct {
	Type      EventType         `json:"type"`
	Timestamp int64             `json:"timestamp"` // epoch ms
	Payload   map[string]string `json:"payload,omitempty"`
}

// CorrelationRule is a declarative ordered-event pattern. Rules are read-only
// catalogue configuration, not derived data. TimeWindow is a rolling window:
// each event must fall within TimeWindow of the previously matched event, not
// of the sequence start.
type CorrelationRule struct {
	ID           string      `json:"id"`
	Events       []EventType `json:"events"`
	TimeWindow   int64       `json:"time_window"` // ms
	Confidence   float64     `json:"confidence"`
	NarrativeTag string      `json:"narrative_tag"`
}

// DetectedPattern is one rule match over a day's event stream. Never
// persisted; re-derived from raw inputs on each pass.
type DetectedPattern struct {
	ID           string  `json:"id"`
	RuleID       string  `json:"rule_id"`
	Confidence   float64 `json:"confidence"`
	Events       []Event `json:"events"`
	NarrativeTag string  `json:"narrative_tag"`
}

// -----------------------------------------------------------------------------
// INSIGHTS & SUMMARIES - Engine output
// -----------------------------------------------------------------------------

// Severity grades an insight.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityPositive Severity = "positive"
	SeverityWarning  Severity = "warning"
)

// Insight is a narrative-ready observation derived from detected patterns or
// data quality.
type Insight struct {
	ID             string    `json:"id"`
	Category       string    `json:"category"`
	Severity       Severity  `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Recommendation string    `json:"recommendation,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailyData is one day's raw material, as fetched from the collectors.
// A failed collector leaves its slice empty rather than failing the day.
type DailyData struct {
	Date          string             `json:"date"` // YYYY-MM-DD
	Activities    []SourceRecord     `json:"activities"`
	Locations     []SourceRecord     `json:"locations"`
	CallLogs      []SourceRecord     `json:"call_logs"`
	AppUsage      []SourceRecord     `json:"app_usage"`
	HealthContext map[string]float64 `json:"health_context,omitempty"`
}

// Overview is the headline numbers of a day.
type Overview struct {
	TotalSteps        int     `json:"total_steps"`
	ActiveMinutes     float64 `json:"active_minutes"`
	DistanceKM        float64 `json:"distance_km"`
	WorkoutCount      int     `json:"workout_count"`
	LocationsVisited  int     `json:"locations_visited"`
	CallCount         int     `json:"call_count"`
	CallMinutes       float64 `json:"call_minutes"`
	ScreenTimeMinutes float64 `json:"screen_time_minutes"`
}

// SummaryStats carries per-source counts and derived metrics for a day.
type SummaryStats struct {
	RecordCounts  map[string]int `json:"record_counts"`
	SlotCount     int            `json:"slot_count"`
	AvgConfidence float64        `json:"avg_confidence"`
	PatternCount  int            `json:"pattern_count"`
	VisitedPlaces []string       `json:"visited_places,omitempty"`
}

// SummaryOptions controls what a summary invocation produces. The serialized
// options participate in the cache key, so identical options always hit the
// same entry.
type SummaryOptions struct {
	IncludeNarrative bool `json:"include_narrative"`
	IncludeDetailed  bool `json:"include_detailed"`
}

// DailySummary is the top-level daily output. Narrative stays nil unless an
// external narrative collaborator produced text.
type DailySummary struct {
	Date        string              `json:"date"`
	Overview    Overview            `json:"overview"`
	Detailed    map[int64]*TimeSlot `json:"detailed,omitempty"`
	Narrative   *string             `json:"narrative"`
	Stats       SummaryStats        `json:"stats"`
	Insights    []Insight           `json:"insights"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// WeeklyTotals sums the counted daily metrics.
type WeeklyTotals struct {
	TotalSteps        int     `json:"total_steps"`
	ActiveMinutes     float64 `json:"active_minutes"`
	DistanceKM        float64 `json:"distance_km"`
	WorkoutCount      int     `json:"workout_count"`
	CallCount         int     `json:"call_count"`
	ScreenTimeMinutes float64 `json:"screen_time_minutes"`
}

// WeeklySummary folds the daily path over a calendar range.
type WeeklySummary struct {
	StartDate       string       `json:"start_date"`
	EndDate         string       `json:"end_date"`
	DayCount        int          `json:"day_count"`
	Totals          WeeklyTotals `json:"totals"`
	ActivityTrend   string       `json:"activity_trend"` // increasing | decreasing | stable
	UniqueLocations []string     `json:"unique_locations"`
	GeneratedAt     time.Time    `json:"generated_at"`
}

// -----------------------------------------------------------------------------
// DATE HELPERS
// -----------------------------------------------------------------------------

// DateLayout is the engine's civil date format.
const DateLayout = "2006-01-02"

// DayRange returns the [start, end) epoch-millisecond bounds of a UTC
// calendar day.
func DayRange(date string) (startMS, endMS int64, err error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	start := t.UTC()
	return start.UnixMilli(), start.Add(24 * time.Hour).UnixMilli(), nil
}

// NextDay returns the following calendar day.
func NextDay(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t.AddDate(0, 0, 1).Format(DateLayout), nil
}

// FormatMS renders an epoch-millisecond timestamp, for logs and payloads.
func FormatMS(ms int64) string {
	return strconv.FormatInt(ms, 10)
}
