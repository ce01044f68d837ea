package fusion

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/lifelens/lifelens/internal/cache"
	"github.com/lifelens/lifelens/internal/core"
)

const width = DefaultSlotWidthMS

func rec(source string, ts int64, fields map[string]core.FieldValue) core.SourceRecord {
	return core.SourceRecord{Source: source, Timestamp: ts, Fields: fields}
}

func TestSlotStart(t *testing.T) {
	tests := []struct {
		ts   int64
		want int64
	}{
		{0, 0},
		{1, 0},
		{299999, 0},
		{300000, 300000},
		{725000, 600000},
	}
	for _, tt := range tests {
		if got := SlotStart(tt.ts, width); got != tt.want {
			t.Errorf("SlotStart(%d) = %d, want %d", tt.ts, got, tt.want)
		}
	}
}

func TestHarmonizeSparseGrid(t *testing.T) {
	sources := map[string][]core.SourceRecord{
		"activity": {
			rec("activity", 10_000, map[string]core.FieldValue{"steps": core.Number(100)}),
			// Two slots away; the slot in between must not materialize.
			rec("activity", 10_000+2*width, map[string]core.FieldValue{"steps": core.Number(50)}),
		},
	}

	slots := Harmonize(sources, width)

	if len(slots) != 2 {
		t.Fatalf("expected 2 sparse slots, got %d", len(slots))
	}
	if _, ok := slots[0]; !ok {
		t.Error("missing slot at 0")
	}
	if _, ok := slots[width]; ok {
		t.Error("empty gap slot should not be materialized")
	}
	if _, ok := slots[2*width]; !ok {
		t.Error("missing slot at 2*width")
	}
}

func TestHarmonizeAggregation(t *testing.T) {
	sources := map[string][]core.SourceRecord{
		"activity": {
			rec("activity", 1_000, map[string]core.FieldValue{
				"steps": core.Number(100),
				"type":  core.Category("walk"),
			}),
			rec("activity", 2_000, map[string]core.FieldValue{
				"steps": core.Number(300),
				"type":  core.Category("workout"),
			}),
			rec("activity", 3_000, map[string]core.FieldValue{
				"steps": core.Number(200),
				"type":  core.Category("walk"),
			}),
		},
	}

	slots := Harmonize(sources, width)
	agg := slots[0].Sources["activity"]

	if agg.Count != 3 {
		t.Errorf("count = %d, want 3", agg.Count)
	}
	steps := agg.Numeric["steps"]
	if steps.Sum != 600 || steps.Min != 100 || steps.Max != 300 || steps.Count != 3 {
		t.Errorf("steps stats = %+v", steps)
	}
	if got := steps.Avg(); got != 200 {
		t.Errorf("avg = %v, want 200 (recomputed from sum/count)", got)
	}
	if want := []string{"walk", "workout"}; !reflect.DeepEqual(agg.Categorical["type"], want) {
		t.Errorf("type set = %v, want %v", agg.Categorical["type"], want)
	}
}

func TestHarmonizeDeterministic(t *testing.T) {
	build := func() map[string][]core.SourceRecord {
		return map[string][]core.SourceRecord{
			"b": {
				rec("b", 5_000, map[string]core.FieldValue{"v": core.Number(1)}),
				rec("b", 1_000, map[string]core.FieldValue{"v": core.Number(2)}),
			},
			"a": {
				rec("a", 2_000, map[string]core.FieldValue{"tag": core.Category("x")}),
			},
		}
	}

	first := Harmonize(build(), width)
	for i := 0; i < 10; i++ {
		if again := Harmonize(build(), width); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced different slots", i)
		}
	}
}

func TestHarmonizeSkipsMalformedTimestamp(t *testing.T) {
	sources := map[string][]core.SourceRecord{
		"activity": {
			rec("activity", 0, map[string]core.FieldValue{"steps": core.Number(999)}),
			rec("activity", -5, map[string]core.FieldValue{"steps": core.Number(999)}),
			rec("activity", 1_000, map[string]core.FieldValue{"steps": core.Number(10)}),
		},
	}

	slots := Harmonize(sources, width)

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if got := slots[0].Sources["activity"].Count; got != 1 {
		t.Errorf("malformed records should be skipped, count=%d", got)
	}
}

func TestHarmonizeFirstObservedTypeWins(t *testing.T) {
	sources := map[string][]core.SourceRecord{
		"activity": {
			rec("activity", 1_000, map[string]core.FieldValue{"pace": core.Number(5.5)}),
			// Same field switches to categorical within the slot: skipped.
			rec("activity", 2_000, map[string]core.FieldValue{"pace": core.Category("slow")}),
			rec("activity", 3_000, map[string]core.FieldValue{"pace": core.Number(6.5)}),
		},
	}

	agg := Harmonize(sources, width)[0].Sources["activity"]

	if agg.Count != 3 {
		t.Errorf("record count = %d; the record itself is not discarded", agg.Count)
	}
	if _, ok := agg.Categorical["pace"]; ok {
		t.Error("conflicting categorical observation should have been dropped")
	}
	pace := agg.Numeric["pace"]
	if pace.Count != 2 || pace.Sum != 12 {
		t.Errorf("numeric pace stats = %+v, want count=2 sum=12", pace)
	}
}

func TestConfidenceFormula(t *testing.T) {
	slot := &core.TimeSlot{
		Sources: map[string]*core.AggregatedSourceData{
			"activity": {Count: 3},
		},
	}
	if got := SlotConfidence(slot); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("single sparse source: confidence = %v, want 0.4", got)
	}

	slot.Sources["activity"].Count = 6
	if got := SlotConfidence(slot); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("rich source: confidence = %v, want 0.5", got)
	}

	slot.Sources["location"] = &core.AggregatedSourceData{Count: 1}
	slot.Sources["app_usage"] = &core.AggregatedSourceData{Count: 7}
	if got := SlotConfidence(slot); got != 0.95 {
		t.Errorf("confidence must cap at 0.95, got %v", got)
	}
}

func TestConfidenceBounds(t *testing.T) {
	sources := map[string][]core.SourceRecord{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		for i := int64(0); i < 8; i++ {
			sources[name] = append(sources[name], rec(name, 1_000+i, map[string]core.FieldValue{"v": core.Number(1)}))
		}
	}

	slots := ApplyConfidenceScoring(Harmonize(sources, width), nil, 0)
	for start, slot := range slots {
		if slot.Confidence < 0 || slot.Confidence > 0.95 {
			t.Errorf("slot %d confidence %v out of [0, 0.95]", start, slot.Confidence)
		}
	}
}

func TestQualityCompleteness(t *testing.T) {
	slot := &core.TimeSlot{
		Timestamp: 0,
		Sources: map[string]*core.AggregatedSourceData{
			"activity": {Count: 1},
		},
	}
	expected := []string{"activity", "location", "app_usage"}

	q := SlotQuality(slot, expected, 0)
	if math.Abs(q.Completeness-1.0/3.0) > 1e-9 {
		t.Errorf("completeness = %v, want ~0.33", q.Completeness)
	}
	if q.Consistency != 0.8 {
		t.Errorf("consistency placeholder = %v, want 0.8", q.Consistency)
	}
}

func TestQualityTimeliness(t *testing.T) {
	slot := &core.TimeSlot{Timestamp: 0}

	fresh := SlotQuality(slot, nil, timelinessWindowMS-1)
	if fresh.Timeliness != 1.0 {
		t.Errorf("slot younger than 24h: timeliness = %v", fresh.Timeliness)
	}

	stale := SlotQuality(slot, nil, timelinessWindowMS)
	if stale.Timeliness != 0.5 {
		t.Errorf("slot older than 24h: timeliness = %v", stale.Timeliness)
	}
}

func healthSource(name string, calls *int, records []core.SourceRecord, err error) HealthSource {
	return HealthSource{
		Name: name,
		Fetch: func(ctx context.Context, date string) ([]core.SourceRecord, error) {
			if calls != nil {
				*calls++
			}
			return records, err
		},
	}
}

func TestMergeHealthDataOmitsFailingSource(t *testing.T) {
	platform := []core.SourceRecord{
		rec("health_platform", 1_000, map[string]core.FieldValue{"heart_rate": core.Number(62)}),
	}
	m := NewHealthMerger([]HealthSource{
		healthSource("health_platform", nil, platform, nil),
		healthSource("health_fitness", nil, nil, errors.New("tracker offline")),
	}, nil, width, nil)

	slots, err := m.MergeHealthData(context.Background(), "2026-08-29")
	if err != nil {
		t.Fatalf("MergeHealthData: %v", err)
	}
	slot := slots[0]
	if slot == nil {
		t.Fatal("expected slot from surviving source")
	}
	if _, ok := slot.Sources["health_fitness"]; ok {
		t.Error("failing source must be omitted, not empty")
	}
	// Completeness reflects the missing expected source.
	if slot.Quality.Completeness != 0.5 {
		t.Errorf("completeness = %v, want 0.5", slot.Quality.Completeness)
	}

	name, agg := m.PrimarySource(slot)
	if name != "health_platform" || agg == nil {
		t.Errorf("PrimarySource = %q, want health_platform", name)
	}
}

func TestMergeHealthDataCaches(t *testing.T) {
	calls := 0
	m := NewHealthMerger([]HealthSource{
		healthSource("health_platform", &calls, []core.SourceRecord{
			rec("health_platform", 1_000, map[string]core.FieldValue{"heart_rate": core.Number(70)}),
		}, nil),
	}, cache.New(10), width, nil)

	ctx := context.Background()
	if _, err := m.MergeHealthData(ctx, "2026-08-29"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.MergeHealthData(ctx, "2026-08-29"); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("second merge should hit cache, fetch calls = %d", calls)
	}
}

func TestMergeHealthDataInvalidDate(t *testing.T) {
	m := NewHealthMerger(nil, nil, width, nil)
	if _, err := m.MergeHealthData(context.Background(), "29-08-2026"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}
