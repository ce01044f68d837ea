// Package summary orchestrates the daily pipeline: fetch raw data from the
// collectors, fuse it onto time slots, run correlation, assemble the views
// and cache the result.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lifelens/lifelens/internal/cache"
	"github.com/lifelens/lifelens/internal/core"
	"github.com/lifelens/lifelens/internal/correlation"
	"github.com/lifelens/lifelens/internal/fusion"
	"github.com/lifelens/lifelens/internal/logging"
)

// Collector is the boundary to the data-acquisition collaborators. Every
// method may fail independently; the orchestrator isolates each failure to
// an empty result.
type Collector interface {
	GetActivitiesForDateRange(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error)
	GetVisitedPlaces(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error)
	GetCallAnalytics(ctx context.Context, startMS, endMS int64) ([]core.SourceRecord, error)
	GetAppUsageForDate(ctx context.Context, date string) ([]core.SourceRecord, error)
	GetHealthContextForDate(ctx context.Context, date string) (map[string]float64, error)
}

// Narrator is the optional external narrative collaborator.
type Narrator interface {
	GenerateNarrativeText(ctx context.Context, promptContext string) (string, error)
}

// Store optionally persists summaries beyond the cache TTL.
type Store interface {
	SaveDailySummary(ctx context.Context, s *core.DailySummary) error
}

// Config holds the orchestrator tunables.
type Config struct {
	SlotWidthMS     int64
	DailyTTL        time.Duration
	WeeklyTTL       time.Duration
	InsightsTTL     time.Duration
	ExpectedSources []string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SlotWidthMS:     fusion.DefaultSlotWidthMS,
		DailyTTL:        time.Hour,
		WeeklyTTL:       2 * time.Hour,
		InsightsTTL:     30 * time.Minute,
		ExpectedSources: []string{core.SourceActivity, core.SourceLocation, core.SourceAppUsage},
	}
}

// Service is the engine entry point. Stateless across invocations beyond the
// cache; safe for concurrent use.
type Service struct {
	collector Collector
	correl    *correlation.Engine
	cache     *cache.Cache
	narrator  Narrator // optional
	store     Store    // optional
	cfg       Config
	log       *logging.Logger
	now       func() time.Time
}

// NewService wires the orchestrator. narrator and store may be nil.
func NewService(collector Collector, correl *correlation.Engine, c *cache.Cache, narrator Narrator, store Store, cfg Config, log *logging.Logger) *Service {
	if correl == nil {
		correl = correlation.NewEngine(nil)
	}
	if c == nil {
		c = cache.New(cache.DefaultCapacity)
	}
	if cfg.SlotWidthMS <= 0 {
		cfg.SlotWidthMS = fusion.DefaultSlotWidthMS
	}
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		collector: collector,
		correl:    correl,
		cache:     c,
		narrator:  narrator,
		store:     store,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// GetDailyData fans out the five collector calls concurrently and joins the
// results, so latency is bounded by the slowest collector rather than their
// sum. A failing collector is logged and its slice left empty. Only when
// every collector fails is the day considered unavailable.
func (s *Service) GetDailyData(ctx context.Context, date string) (*core.DailyData, error) {
	startMS, endMS, err := core.DayRange(date)
	if err != nil {
		return nil, err
	}

	data := &core.DailyData{Date: date}
	var failures atomic.Int32

	recovered := func(source string, fetch func() error) func() error {
		return func() error {
			if err := fetch(); err != nil {
				s.log.WithField("source", source).Warn("collector failed, treating as empty: %v", err)
				failures.Add(1)
			}
			return nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered(core.SourceActivity, func() error {
		records, err := s.collector.GetActivitiesForDateRange(gctx, startMS, endMS)
		data.Activities = records
		return err
	}))
	g.Go(recovered(core.SourceLocation, func() error {
		records, err := s.collector.GetVisitedPlaces(gctx, startMS, endMS)
		data.Locations = records
		return err
	}))
	g.Go(recovered(core.SourceCall, func() error {
		records, err := s.collector.GetCallAnalytics(gctx, startMS, endMS)
		data.CallLogs = records
		return err
	}))
	g.Go(recovered(core.SourceAppUsage, func() error {
		records, err := s.collector.GetAppUsageForDate(gctx, date)
		data.AppUsage = records
		return err
	}))
	g.Go(recovered(core.SourceHealth, func() error {
		health, err := s.collector.GetHealthContextForDate(gctx, date)
		data.HealthContext = health
		return err
	}))
	g.Wait()

	if failures.Load() == 5 {
		s.log.WithField("date", date).Error("all collectors failed")
		return nil, core.ErrNoData
	}
	return data, nil
}

// GenerateDailySummary runs the full pipeline for one day. Identical
// (date, options) inputs hit the cache until the daily TTL expires, so
// repeated calls are idempotent and perform no collector work.
func (s *Service) GenerateDailySummary(ctx context.Context, date string, opts core.SummaryOptions) (*core.DailySummary, error) {
	key := summaryKey("daily", date, opts)
	if v, ok := s.cache.Get(key); ok {
		return v.(*core.DailySummary), nil
	}

	data, err := s.GetDailyData(ctx, date)
	if err != nil {
		return nil, err
	}

	slots := fusion.Harmonize(map[string][]core.SourceRecord{
		core.SourceActivity: data.Activities,
		core.SourceLocation: data.Locations,
		core.SourceCall:     data.CallLogs,
		core.SourceAppUsage: data.AppUsage,
	}, s.cfg.SlotWidthMS)
	fusion.ApplyConfidenceScoring(slots, s.cfg.ExpectedSources, s.now().UnixMilli())

	patterns := s.correl.DetectDaily(data)
	insights := s.correl.GenerateInsights(patterns, data)

	sum := &core.DailySummary{
		Date:        date,
		Overview:    buildOverview(data),
		Stats:       buildStats(data, slots, patterns),
		Insights:    insights,
		GeneratedAt: s.now(),
	}
	if opts.IncludeDetailed {
		sum.Detailed = slots
	}

	if opts.IncludeNarrative && s.narrator != nil {
		text, err := s.narrator.GenerateNarrativeText(ctx, narrativeContext(sum))
		if err != nil {
			// Narrative failure is never fatal; the summary ships without it.
			s.log.WithField("date", date).Warn("narrative generation failed: %v", err)
		} else if text != "" {
			sum.Narrative = &text
		}
	}

	s.cache.Set(key, sum, s.cfg.DailyTTL)

	if s.store != nil {
		if err := s.store.SaveDailySummary(ctx, sum); err != nil {
			s.log.WithField("date", date).Warn("persist summary: %v", err)
		}
	}

	return sum, nil
}

// GetInsights is the insights-only view, cached on its own shorter TTL.
func (s *Service) GetInsights(ctx context.Context, date string) ([]core.Insight, error) {
	key := "insights:" + date
	if v, ok := s.cache.Get(key); ok {
		return v.([]core.Insight), nil
	}

	data, err := s.GetDailyData(ctx, date)
	if err != nil {
		return nil, err
	}

	patterns := s.correl.DetectDaily(data)
	insights := s.correl.GenerateInsights(patterns, data)

	s.cache.Set(key, insights, s.cfg.InsightsTTL)
	return insights, nil
}

// summaryKey derives the deterministic cache key from the operation, date
// and serialized options.
func summaryKey(op, date string, opts core.SummaryOptions) string {
	encoded, _ := json.Marshal(opts)
	return fmt.Sprintf("%s:%s:%s", op, date, encoded)
}
