package collectors

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lifelens/lifelens/internal/core"
)

// fakeRecordSource serves canned records keyed by source name.
type fakeRecordSource struct {
	records map[string][]core.SourceRecord
	err     error

	lastSource  string
	lastStartMS int64
	lastEndMS   int64
}

func (f *fakeRecordSource) QueryRange(ctx context.Context, source string, startMS, endMS int64) ([]core.SourceRecord, error) {
	f.lastSource = source
	f.lastStartMS = startMS
	f.lastEndMS = endMS
	if f.err != nil {
		return nil, f.err
	}
	return f.records[source], nil
}

func TestStoreCollector_RangeQueriesMapToSources(t *testing.T) {
	src := &fakeRecordSource{records: map[string][]core.SourceRecord{
		core.SourceActivity: {{Source: core.SourceActivity, Timestamp: 5}},
		core.SourceLocation: {{Source: core.SourceLocation, Timestamp: 6}},
		core.SourceCall:     {{Source: core.SourceCall, Timestamp: 7}},
	}}
	c := NewStoreCollector(src)
	ctx := context.Background()

	if got, _ := c.GetActivitiesForDateRange(ctx, 0, 100); len(got) != 1 || src.lastSource != core.SourceActivity {
		t.Errorf("activities query hit source %q", src.lastSource)
	}
	if got, _ := c.GetVisitedPlaces(ctx, 0, 100); len(got) != 1 || src.lastSource != core.SourceLocation {
		t.Errorf("places query hit source %q", src.lastSource)
	}
	if got, _ := c.GetCallAnalytics(ctx, 0, 100); len(got) != 1 || src.lastSource != core.SourceCall {
		t.Errorf("calls query hit source %q", src.lastSource)
	}
}

func TestStoreCollector_AppUsageResolvesDayBounds(t *testing.T) {
	src := &fakeRecordSource{}
	c := NewStoreCollector(src)

	if _, err := c.GetAppUsageForDate(context.Background(), "2026-08-24"); err != nil {
		t.Fatal(err)
	}

	wantStart, wantEnd, _ := core.DayRange("2026-08-24")
	if src.lastStartMS != wantStart || src.lastEndMS != wantEnd {
		t.Errorf("bounds = [%d, %d), want [%d, %d)", src.lastStartMS, src.lastEndMS, wantStart, wantEnd)
	}
	if src.lastSource != core.SourceAppUsage {
		t.Errorf("source = %q", src.lastSource)
	}

	if _, err := c.GetAppUsageForDate(context.Background(), "not-a-date"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}

func TestStoreCollector_HealthContextAverages(t *testing.T) {
	src := &fakeRecordSource{records: map[string][]core.SourceRecord{
		core.SourceHealth: {
			{Source: core.SourceHealth, Timestamp: 1_000, Fields: map[string]core.FieldValue{
				"resting_hr": core.Number(60),
				"sleep_hrs":  core.Number(7),
				"mood":       core.Category("good"),
			}},
			{Source: core.SourceHealth, Timestamp: 2_000, Fields: map[string]core.FieldValue{
				"resting_hr": core.Number(64),
			}},
		},
	}}
	c := NewStoreCollector(src)

	metrics, err := c.GetHealthContextForDate(context.Background(), "2026-08-24")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(metrics["resting_hr"]-62) > 1e-9 {
		t.Errorf("resting_hr = %v, want 62", metrics["resting_hr"])
	}
	if metrics["sleep_hrs"] != 7 {
		t.Errorf("sleep_hrs = %v", metrics["sleep_hrs"])
	}
	if _, ok := metrics["mood"]; ok {
		t.Error("categorical field must not appear in health metrics")
	}
}

func TestStoreCollector_HealthContextEmpty(t *testing.T) {
	c := NewStoreCollector(&fakeRecordSource{})

	metrics, err := c.GetHealthContextForDate(context.Background(), "2026-08-24")
	if err != nil {
		t.Fatal(err)
	}
	if metrics != nil {
		t.Errorf("metrics = %v, want nil for empty day", metrics)
	}
}

func TestStoreCollector_PropagatesQueryError(t *testing.T) {
	boom := errors.New("disk gone")
	c := NewStoreCollector(&fakeRecordSource{err: boom})

	if _, err := c.GetActivitiesForDateRange(context.Background(), 0, 100); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
}
