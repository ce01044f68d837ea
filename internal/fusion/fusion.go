// Package fusion harmonizes heterogeneous time-stamped records onto a common
// grid of fixed-width time slots and scores the result.
package fusion

import (
	"sort"

	"github.com/lifelens/lifelens/internal/core"
)

// DefaultSlotWidthMS is the default harmonization window: 5 minutes.
const DefaultSlotWidthMS int64 = 5 * 60 * 1000

// SlotStart maps a record timestamp onto its slot boundary.
func SlotStart(timestampMS, widthMS int64) int64 {
	return (timestampMS / widthMS) * widthMS
}

// Harmonize aligns records from multiple sources onto fixed-width slots and
// aggregates them per source. The slot grid is sparse: only slot starts that
// hold at least one record are materialized, so a consumer needing a dense
// grid must back-fill gaps itself.
//
// The result is deterministic for identical input: sources are visited in
// sorted-id order and each source's records in timestamp order (ties keep
// input order), which also pins down the first-observed-type-wins policy for
// fields whose type flips between records.
func Harmonize(sources map[string][]core.SourceRecord, widthMS int64) map[int64]*core.TimeSlot {
	if widthMS <= 0 {
		widthMS = DefaultSlotWidthMS
	}

	slots := make(map[int64]*core.TimeSlot)

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		records := make([]core.SourceRecord, len(sources[id]))
		copy(records, sources[id])
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Timestamp < records[j].Timestamp
		})

		for _, rec := range records {
			if rec.Timestamp <= 0 {
				// Malformed record: no usable timestamp.
				continue
			}
			start := SlotStart(rec.Timestamp, widthMS)
			slot, ok := slots[start]
			if !ok {
				slot = &core.TimeSlot{
					Timestamp: start,
					Sources:   make(map[string]*core.AggregatedSourceData),
				}
				slots[start] = slot
			}
			agg, ok := slot.Sources[id]
			if !ok {
				agg = &core.AggregatedSourceData{}
				slot.Sources[id] = agg
			}
			aggregate(agg, rec)
		}
	}

	return slots
}

// aggregate folds one record into a per-source slot aggregate. A field that
// has already been observed with the other kind in this slot is skipped:
// first-observed type wins.
func aggregate(agg *core.AggregatedSourceData, rec core.SourceRecord) {
	agg.Count++

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := rec.Fields[key]
		switch val.Kind {
		case core.FieldNumeric:
			if _, conflict := agg.Categorical[key]; conflict {
				continue
			}
			if agg.Numeric == nil {
				agg.Numeric = make(map[string]*core.NumericStats)
			}
			stats, ok := agg.Numeric[key]
			if !ok {
				stats = &core.NumericStats{Min: val.Num, Max: val.Num}
				agg.Numeric[key] = stats
			}
			stats.Sum += val.Num
			stats.Count++
			if val.Num < stats.Min {
				stats.Min = val.Num
			}
			if val.Num > stats.Max {
				stats.Max = val.Num
			}
		case core.FieldCategorical:
			if _, conflict := agg.Numeric[key]; conflict {
				continue
			}
			if agg.Categorical == nil {
				agg.Categorical = make(map[string][]string)
			}
			agg.Categorical[key] = insertDistinct(agg.Categorical[key], val.Str)
		}
	}
}

// insertDistinct keeps the value set sorted and free of duplicates.
func insertDistinct(set []string, v string) []string {
	i := sort.SearchStrings(set, v)
	if i < len(set) && set[i] == v {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = v
	return set
}
