package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lifelens/lifelens/internal/core"
)

// Field names the assembly layer reads from raw records. Collectors that use
// different names still fuse and correlate; they just do not contribute to
// the overview numbers.
const (
	fieldSteps      = "steps"
	fieldType       = "type"
	fieldDuration   = "duration_min"
	fieldDistanceKM = "distance_km"
	fieldPlaceID    = "place_id"
	fieldMinutes    = "minutes"
)

// buildOverview folds the raw day into the headline numbers.
func buildOverview(data *core.DailyData) core.Overview {
	var o core.Overview

	for _, r := range data.Activities {
		if v, ok := r.Fields[fieldSteps]; ok && v.Kind == core.FieldNumeric {
			o.TotalSteps += int(v.Num)
		}
		if v, ok := r.Fields[fieldDuration]; ok && v.Kind == core.FieldNumeric {
			o.ActiveMinutes += v.Num
		}
		if v, ok := r.Fields[fieldDistanceKM]; ok && v.Kind == core.FieldNumeric {
			o.DistanceKM += v.Num
		}
		if v, ok := r.Fields[fieldType]; ok && v.Kind == core.FieldCategorical && v.Str == "workout" {
			o.WorkoutCount++
		}
	}

	o.LocationsVisited = len(visitedPlaces(data.Locations))

	o.CallCount = len(data.CallLogs)
	for _, r := range data.CallLogs {
		if v, ok := r.Fields[fieldDuration]; ok && v.Kind == core.FieldNumeric {
			o.CallMinutes += v.Num
		}
	}

	for _, r := range data.AppUsage {
		if v, ok := r.Fields[fieldMinutes]; ok && v.Kind == core.FieldNumeric {
			o.ScreenTimeMinutes += v.Num
		}
	}

	return o
}

// buildStats derives the per-source counts and fused-grid metrics.
func buildStats(data *core.DailyData, slots map[int64]*core.TimeSlot, patterns []core.DetectedPattern) core.SummaryStats {
	stats := core.SummaryStats{
		RecordCounts: map[string]int{
			core.SourceActivity: len(data.Activities),
			core.SourceLocation: len(data.Locations),
			core.SourceCall:     len(data.CallLogs),
			core.SourceAppUsage: len(data.AppUsage),
		},
		SlotCount:     len(slots),
		PatternCount:  len(patterns),
		VisitedPlaces: visitedPlaces(data.Locations),
	}

	if len(slots) > 0 {
		var total float64
		for _, slot := range slots {
			total += slot.Confidence
		}
		stats.AvgConfidence = total / float64(len(slots))
	}

	return stats
}

// visitedPlaces returns the sorted distinct place ids of the day.
func visitedPlaces(locations []core.SourceRecord) []string {
	seen := map[string]bool{}
	for _, r := range locations {
		if v, ok := r.Fields[fieldPlaceID]; ok && v.Kind == core.FieldCategorical && v.Str != "" {
			seen[v.Str] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	places := make([]string, 0, len(seen))
	for p := range seen {
		places = append(places, p)
	}
	sort.Strings(places)
	return places
}

// narrativeContext renders a compact plain-text digest of the summary for the
// narrative collaborator. Kept deliberately terse; the collaborator does the
// prose.
func narrativeContext(s *core.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", s.Date)
	fmt.Fprintf(&b, "Steps: %d, active minutes: %.0f, distance: %.1f km, workouts: %d\n",
		s.Overview.TotalSteps, s.Overview.ActiveMinutes, s.Overview.DistanceKM, s.Overview.WorkoutCount)
	fmt.Fprintf(&b, "Places visited: %d, calls: %d (%.0f min), screen time: %.0f min\n",
		s.Overview.LocationsVisited, s.Overview.CallCount, s.Overview.CallMinutes, s.Overview.ScreenTimeMinutes)
	if len(s.Stats.VisitedPlaces) > 0 {
		fmt.Fprintf(&b, "Locations: %s\n", strings.Join(s.Stats.VisitedPlaces, ", "))
	}
	for _, in := range s.Insights {
		fmt.Fprintf(&b, "Insight (%s): %s\n", in.Severity, in.Title)
	}
	return b.String()
}
