package fusion

import (
	"context"
	"fmt"
	"time"

	"github.com/lifelens/lifelens/internal/cache"
	"github.com/lifelens/lifelens/internal/core"
	"github.com/lifelens/lifelens/internal/logging"
)

// HealthSource supplies one day of records for a single health data source.
type HealthSource struct {
	Name  string
	Fetch func(ctx context.Context, date string) ([]core.SourceRecord, error)
}

// HealthMergeTTL bounds how long a fused health day stays cached.
const HealthMergeTTL = time.Hour

// HealthMerger fuses priority-ordered health sources (platform health API
// first, then fitness-tracker import, then manual entry) onto one slot grid.
// Priority decides which source a consumer should prefer when several report
// for the same slot; it never suppresses lower-priority data.
type HealthMerger struct {
	sources []HealthSource // highest priority first
	cache   *cache.Cache
	widthMS int64
	log     *logging.Logger
	now     func() time.Time
}

// NewHealthMerger creates a merger over the given priority-ordered sources.
func NewHealthMerger(sources []HealthSource, c *cache.Cache, widthMS int64, log *logging.Logger) *HealthMerger {
	if widthMS <= 0 {
		widthMS = DefaultSlotWidthMS
	}
	if log == nil {
		log = logging.Default()
	}
	return &HealthMerger{
		sources: sources,
		cache:   c,
		widthMS: widthMS,
		log:     log,
		now:     time.Now,
	}
}

// MergeHealthData collects every configured source for the date, harmonizes
// the records and layers confidence/quality scores. A failing source is
// logged and omitted; it never aborts the merge. Results are cached for one
// hour under a date-scoped key.
func (m *HealthMerger) MergeHealthData(ctx context.Context, date string) (map[int64]*core.TimeSlot, error) {
	if _, _, err := core.DayRange(date); err != nil {
		return nil, err
	}

	key := healthKey(date, m.widthMS)
	if m.cache != nil {
		if v, ok := m.cache.Get(key); ok {
			return v.(map[int64]*core.TimeSlot), nil
		}
	}

	collected := make(map[string][]core.SourceRecord, len(m.sources))
	expected := make([]string, 0, len(m.sources))
	for _, src := range m.sources {
		expected = append(expected, src.Name)
		records, err := src.Fetch(ctx, date)
		if err != nil {
			m.log.WithField("source", src.Name).Warn("health source failed, omitting: %v", err)
			continue
		}
		collected[src.Name] = records
	}

	slots := Harmonize(collected, m.widthMS)
	ApplyConfidenceScoring(slots, expected, m.now().UnixMilli())

	if m.cache != nil {
		m.cache.Set(key, slots, HealthMergeTTL)
	}
	return slots, nil
}

// PrimarySource returns the aggregate of the highest-priority source present
// in the slot, and its name.
func (m *HealthMerger) PrimarySource(slot *core.TimeSlot) (string, *core.AggregatedSourceData) {
	for _, src := range m.sources {
		if agg, ok := slot.Sources[src.Name]; ok {
			return src.Name, agg
		}
	}
	return "", nil
}

func healthKey(date string, widthMS int64) string {
	return fmt.Sprintf("health:%s:%d", date, widthMS)
}
