package summary

import (
	"context"
	"fmt"
	"sort"

	"github.com/lifelens/lifelens/internal/core"
)

// Trend classification thresholds: the second half of the range must move
// more than 10% against the first half to leave "stable".
const (
	trendIncreasing = "increasing"
	trendDecreasing = "decreasing"
	trendStable     = "stable"

	trendUpFactor   = 1.1
	trendDownFactor = 0.9
)

// GenerateWeeklySummary folds the daily pipeline over [startDate, endDate].
// Days whose daily summary fails contribute nothing and are logged; only
// when every day fails is the range unavailable. Daily results come through
// the daily cache, so a warm week costs no collector work. Narrative is
// never requested for the component days.
func (s *Service) GenerateWeeklySummary(ctx context.Context, startDate, endDate string) (*core.WeeklySummary, error) {
	if _, _, err := core.DayRange(startDate); err != nil {
		return nil, err
	}
	if _, _, err := core.DayRange(endDate); err != nil {
		return nil, err
	}
	if startDate > endDate {
		return nil, fmt.Errorf("%w: %s after %s", core.ErrInvalidRange, startDate, endDate)
	}

	key := fmt.Sprintf("weekly:%s:%s", startDate, endDate)
	if v, ok := s.cache.Get(key); ok {
		return v.(*core.WeeklySummary), nil
	}

	var (
		totals     core.WeeklyTotals
		dailySteps []int
		placeSet   = map[string]bool{}
		dayCount   int
	)

	// DateLayout strings compare lexicographically in calendar order.
	for date := startDate; date <= endDate; {
		day, err := s.GenerateDailySummary(ctx, date, core.SummaryOptions{})
		if err != nil {
			s.log.WithField("date", date).Warn("skipping day in weekly fold: %v", err)
		} else {
			dayCount++
			totals.TotalSteps += day.Overview.TotalSteps
			totals.ActiveMinutes += day.Overview.ActiveMinutes
			totals.DistanceKM += day.Overview.DistanceKM
			totals.WorkoutCount += day.Overview.WorkoutCount
			totals.CallCount += day.Overview.CallCount
			totals.ScreenTimeMinutes += day.Overview.ScreenTimeMinutes
			dailySteps = append(dailySteps, day.Overview.TotalSteps)
			for _, p := range day.Stats.VisitedPlaces {
				placeSet[p] = true
			}
		}
		next, err := core.NextDay(date)
		if err != nil {
			return nil, err
		}
		date = next
	}

	if dayCount == 0 {
		s.log.WithFields(map[string]any{"start": startDate, "end": endDate}).Error("no days available in range")
		return nil, core.ErrNoData
	}

	places := make([]string, 0, len(placeSet))
	for p := range placeSet {
		places = append(places, p)
	}
	sort.Strings(places)

	week := &core.WeeklySummary{
		StartDate:       startDate,
		EndDate:         endDate,
		DayCount:        dayCount,
		Totals:          totals,
		ActivityTrend:   classifyTrend(dailySteps),
		UniqueLocations: places,
		GeneratedAt:     s.now(),
	}

	s.cache.Set(key, week, s.cfg.WeeklyTTL)
	return week, nil
}

// classifyTrend splits the daily step series into two halves and compares
// their averages. With an odd number of days the middle day belongs to the
// second half.
func classifyTrend(dailySteps []int) string {
	if len(dailySteps) < 2 {
		return trendStable
	}

	half := len(dailySteps) / 2
	firstAvg := meanInt(dailySteps[:half])
	secondAvg := meanInt(dailySteps[half:])

	switch {
	case secondAvg > firstAvg*trendUpFactor:
		return trendIncreasing
	case secondAvg < firstAvg*trendDownFactor:
		return trendDecreasing
	default:
		return trendStable
	}
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum int
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
