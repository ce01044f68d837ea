// Package testutil provides shared mocks and fixtures for tests.
package testutil

import (
	"context"

	"github.com/lifelens/lifelens/internal/core"
)

// MockCollector implements the collector boundary with overridable function
// fields. A nil field returns empty data, so tests only set what they need.
type MockCollector struct {
	ActivitiesFunc    func(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error)
	VisitedPlacesFunc func(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error)
	CallAnalyticsFunc func(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error)
	AppUsageFunc      func(ctx context.Context, date string) ([]core.SourceRecord, error)
	HealthContextFunc func(ctx context.Context, date string) (map[string]float64, error)
}

func (m *MockCollector) GetActivitiesForDateRange(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error) {
	if m.ActivitiesFunc != nil {
		return m.ActivitiesFunc(ctx, startMS, endMS)
	}
	return nil, nil
}

func (m *MockCollector) GetVisitedPlaces(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error) {
	if m.VisitedPlacesFunc != nil {
		return m.VisitedPlacesFunc(ctx, startMS, endMS)
	}
	return nil, nil
}

func (m *MockCollector) GetCallAnalytics(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error) {
	if m.CallAnalyticsFunc != nil {
		return m.CallAnalyticsFunc(ctx, startMS, endMS)
	}
	return nil, nil
}

func (m *MockCollector) GetAppUsageForDate(ctx context.Context, date string) ([]core.SourceRecord, error) {
	if m.AppUsageFunc != nil {
		return m.AppUsageFunc(ctx, date)
	}
	return nil, nil
}

func (m *MockCollector) GetHealthContextForDate(ctx context.Context, date string) (map[string]float64, error) {
	if m.HealthContextFunc != nil {
		return m.HealthContextFunc(ctx, date)
	}
	return nil, nil
}

// MockNarrator implements the narrative boundary.
type MockNarrator struct {
	GenerateFunc func(ctx context.Context, promptContext string) (string, error)
}

func (m *MockNarrator) GenerateNarrativeText(ctx context.Context, promptContext string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, promptContext)
	}
	return "", nil
}

// ActivityRecord builds an activity record at ts with the given step count.
func ActivityRecord(ts int64, steps float64) core.SourceRecord {
	return core.SourceRecord{
		Source:    core.SourceActivity,
		Timestamp: ts,
		Fields: map[string]core.FieldValue{
			"steps": core.Number(steps),
		},
	}
}

// WorkoutRecord builds a workout activity record at ts.
func WorkoutRecord(ts int64, durationMin float64) core.SourceRecord {
	return core.SourceRecord{
		Source:    core.SourceActivity,
		Timestamp: ts,
		Fields: map[string]core.FieldValue{
			"type":         core.Category("workout"),
			"duration_min": core.Number(durationMin),
		},
	}
}

// LocationRecord builds a location record at ts for the given place.
func LocationRecord(ts int64, placeID string) core.SourceRecord {
	return core.SourceRecord{
		Source:    core.SourceLocation,
		Timestamp: ts,
		Fields: map[string]core.FieldValue{
			"place_id": core.Category(placeID),
		},
	}
}

// CallRecord builds a call-log record at ts.
func CallRecord(ts int64, direction string, durationMin float64) core.SourceRecord {
	return core.SourceRecord{
		Source:    core.SourceCall,
		Timestamp: ts,
		Fields: map[string]core.FieldValue{
			"direction":    core.Category(direction),
			"duration_min": core.Number(durationMin),
		},
	}
}

// AppUsageRecord builds an app-usage record at ts.
func AppUsageRecord(ts int64, app string, minutes float64) core.SourceRecord {
	return core.SourceRecord{
		Source:    core.SourceAppUsage,
		Timestamp: ts,
		Fields: map[string]core.FieldValue{
			"app":     core.Category(app),
			"minutes": core.Number(minutes),
		},
	}
}
