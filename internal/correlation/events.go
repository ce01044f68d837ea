package correlation

import (
	"sort"
	"strconv"

	"github.com/lifelens/lifelens/internal/core"
)

// stepIncreaseThreshold is the per-record step count that registers as a
// step_increase event.
const stepIncreaseThreshold = 500

// ExtractEvents projects a day's raw activity, location, app-usage and call
// records into a chronologically sorted event stream. The sort is stable
// (ties keep input order), which the sequence matcher relies on. Records
// without a usable timestamp are skipped.
func ExtractEvents(data *core.DailyData) []core.Event {
	if data == nil {
		return nil
	}

	events := make([]core.Event, 0,
		len(data.Activities)+len(data.Locations)+len(data.AppUsage)+len(data.CallLogs))

	for _, rec := range data.Activities {
		if rec.Timestamp <= 0 {
			continue
		}
		if kind, ok := rec.Fields["type"]; ok && kind.Kind == core.FieldCategorical && kind.Str == "workout" {
			events = append(events, core.Event{
				Type:      core.EventWorkoutStart,
				Timestamp: rec.Timestamp,
				Payload:   map[string]string{"activity": kind.Str},
			})
			continue
		}
		if steps, ok := rec.Fields["steps"]; ok && steps.Kind == core.FieldNumeric && steps.Num > stepIncreaseThreshold {
			events = append(events, core.Event{
				Type:      core.EventStepIncrease,
				Timestamp: rec.Timestamp,
				Payload:   map[string]string{"steps": strconv.FormatFloat(steps.Num, 'f', -1, 64)},
			})
		}
	}

	for _, rec := range data.Locations {
		if rec.Timestamp <= 0 {
			continue
		}
		payload := map[string]string{}
		if place, ok := rec.Fields["place_id"]; ok && place.Kind == core.FieldCategorical {
			payload["place_id"] = place.Str
		}
		events = append(events, core.Event{
			Type:      core.EventLocationChange,
			Timestamp: rec.Timestamp,
			Payload:   payload,
		})
	}

	for _, rec := range data.AppUsage {
		if rec.Timestamp <= 0 {
			continue
		}
		payload := map[string]string{}
		if app, ok := rec.Fields["app"]; ok && app.Kind == core.FieldCategorical {
			payload["app"] = app.Str
		}
		events = append(events, core.Event{
			Type:      core.EventAppUsage,
			Timestamp: rec.Timestamp,
			Payload:   payload,
		})
	}

	for _, rec := range data.CallLogs {
		if rec.Timestamp <= 0 {
			continue
		}
		payload := map[string]string{}
		if dir, ok := rec.Fields["direction"]; ok && dir.Kind == core.FieldCategorical {
			payload["direction"] = dir.Str
		}
		events = append(events, core.Event{
			Type:      core.EventCallLogged,
			Timestamp: rec.Timestamp,
			Payload:   payload,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	return events
}
