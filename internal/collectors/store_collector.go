// Package collectors adapts stored raw records to the data-acquisition
// boundary the summary pipeline consumes.
package collectors

import (
	"context"

	"github.com/lifelens/lifelens/internal/core"
)

// RecordSource is the slice of the record store the collector needs.
type RecordSource interface {
	QueryRange(ctx context.Context, source string, startMS, endMS int64) ([]core.SourceRecord, error)
}

// StoreCollector serves collector queries from persisted records. In a
// deployment with live device feeds it would sit behind the same interface
// as the feed adapters.
type StoreCollector struct {
	records RecordSource
}

// NewStoreCollector creates a collector over the given record source.
func NewStoreCollector(records RecordSource) *StoreCollector {
	return &StoreCollector{records: records}
}

// GetActivitiesForDateRange returns activity records within [startMS, endMS).
func (c *StoreCollector) GetActivitiesForDateRange(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error) {
	return c.records.QueryRange(ctx, core.SourceActivity, startMS, endMS)
}

// GetVisitedPlaces returns location records within [startMS, endMS).
func (c *StoreCollector) GetVisitedPlaces(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error) {
	return c.records.QueryRange(ctx, core.SourceLocation, startMS, endMS)
}

// GetCallAnalytics returns call-log records within [startMS, endMS).
func (c *StoreCollector) GetCallAnalytics(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error) {
	return c.records.QueryRange(ctx, core.SourceCall, startMS, endMS)
}

// GetAppUsageForDate returns the day's app-usage records.
func (c *StoreCollector) GetAppUsageForDate(ctx context.Context, date string) ([]core.SourceRecord, error) {
	startMS, endMS, err := core.DayRange(date)
	if err != nil {
		return nil, err
	}
	return c.records.QueryRange(ctx, core.SourceAppUsage, startMS, endMS)
}

// GetHealthContextForDate averages the day's numeric health fields into a
// flat metric map. Categorical health fields carry no aggregate and are
// skipped.
func (c *StoreCollector) GetHealthContextForDate(ctx context.Context, date string) (map[string]float64, error) {
	startMS, endMS, err := core.DayRange(date)
	if err != nil {
		return nil, err
	}
	records, err := c.records.QueryRange(ctx, core.SourceHealth, startMS, endMS)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		for name, v := range r.Fields {
			if v.Kind != core.FieldNumeric {
				continue
			}
			sums[name] += v.Num
			counts[name]++
		}
	}

	metrics := make(map[string]float64, len(sums))
	for name, sum := range sums {
		metrics[name] = sum / float64(counts[name])
	}
	return metrics, nil
}
