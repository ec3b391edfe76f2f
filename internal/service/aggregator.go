package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"plc_alarm_monitor/internal/alarmdef"
	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/repository"
)

const (
	defaultLatestLimit = 10
	maxLatestLimit     = 500
	defaultTrendHours  = 24
	maxTrendHours      = 7 * 24
	summaryTopN        = 3
	lastHourOfDay      = 23
)

var (
	ErrInvalidPeriod = errors.New("invalid period: must be today or yesterday")
	ErrInvalidShift  = errors.New("invalid shift: type must be day or night, hours 0..23")
)

// AggregatorService runs range queries against the event store using the
// boundary calculator and folds results into operator-facing statistics.
type AggregatorService struct {
	alarms       repository.AlarmRepo
	codes        *alarmdef.CodeMap
	controllers  map[string]models.Controller
	clock        Clock
	boundaryHour int
	countMode    CountMode
}

func NewAggregatorService(alarms repository.AlarmRepo, codes *alarmdef.CodeMap, controllers map[string]models.Controller, clock Clock, boundaryHour int, countMode CountMode) *AggregatorService {
	if boundaryHour < 0 || boundaryHour > lastHourOfDay {
		boundaryHour = DefaultBoundaryHour
	}
	if countMode == "" {
		countMode = CountModeLatest
	}
	return &AggregatorService{
		alarms:       alarms,
		codes:        codes,
		controllers:  controllers,
		clock:        clock,
		boundaryHour: boundaryHour,
		countMode:    countMode,
	}
}

func (s *AggregatorService) windowFor(period Period) (Window, error) {
	now := s.clock.Now()
	switch period {
	case PeriodToday, "":
		return currentWindow(now, s.boundaryHour), nil
	case PeriodYesterday:
		return previousWindow(now, s.boundaryHour), nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

// ListWindow returns the window bounds for the period and all events inside
// it, newest first.
func (s *AggregatorService) ListWindow(ctx context.Context, period Period, plcID string) (Window, []models.AlarmEvent, error) {
	w, err := s.windowFor(period)
	if err != nil {
		return Window{}, nil, err
	}
	events, err := s.alarms.ListRange(ctx, w.Start, w.End, plcID)
	if err != nil {
		return Window{}, nil, err
	}
	return w, events, nil
}

// Summary aggregates the current and previous operational day. When plcID is
// empty, groups are per (alarm code, controller) and a per-controller breakdown
// is included; a filtered query groups by alarm code alone.
func (s *AggregatorService) Summary(ctx context.Context, plcID string) (models.SummaryReport, error) {
	now := s.clock.Now()
	today, err := s.summarizeWindow(ctx, currentWindow(now, s.boundaryHour), plcID)
	if err != nil {
		return models.SummaryReport{}, err
	}
	yesterday, err := s.summarizeWindow(ctx, previousWindow(now, s.boundaryHour), plcID)
	if err != nil {
		return models.SummaryReport{}, err
	}
	return models.SummaryReport{Today: today, Yesterday: yesterday}, nil
}

func (s *AggregatorService) summarizeWindow(ctx context.Context, w Window, plcID string) (models.WindowSummary, error) {
	events, err := s.alarms.ListRange(ctx, w.Start, w.End, plcID)
	if err != nil {
		return models.WindowSummary{}, err
	}

	type groupKey struct{ code, plc string }
	latest := make(map[groupKey]int) // events are newest first: first hit wins
	freq := make(map[groupKey]int)
	perPLC := make(map[string]models.PLCSummary)

	if plcID == "" {
		// Breakdown covers every configured controller even with zero events.
		for id, c := range s.controllers {
			perPLC[id] = models.PLCSummary{Name: c.Name}
		}
	}

	for _, e := range events {
		key := groupKey{code: e.AlarmCode}
		if plcID == "" {
			key.plc = e.PLCID
		}
		if _, seen := latest[key]; !seen {
			latest[key] = e.CountValue
		}
		freq[key]++

		if plcID == "" {
			p := perPLC[e.PLCID]
			if p.Name == "" {
				p.Name = e.PLCName
			}
			p.Count++
			perPLC[e.PLCID] = p
		}
	}

	groups := make([]models.AlarmCount, 0, len(freq))
	for key, n := range freq {
		count := n
		if s.countMode == CountModeLatest {
			count = latest[key]
		}
		groups = append(groups, models.AlarmCount{
			AlarmCode:   key.code,
			Description: s.codes.Describe(key.code),
			PLCID:       key.plc,
			Count:       count,
		})
	}
	sortCounts(groups)
	if len(groups) > summaryTopN {
		groups = groups[:summaryTopN]
	}

	out := models.WindowSummary{
		Start:     w.Start,
		End:       w.End,
		TopAlarms: groups,
		Total:     len(events),
	}
	if plcID == "" {
		out.PerPLC = perPLC
	}
	return out, nil
}

// ShiftSummary aggregates one shift. The count per alarm code is the maximum
// register value observed inside the shift, not the number of recorded rows;
// the total is the sum of those maxima.
func (s *AggregatorService) ShiftSummary(ctx context.Context, p ShiftParams) (models.ShiftReport, error) {
	day, err := s.windowFor(p.Period)
	if err != nil {
		return models.ShiftReport{}, err
	}

	var bounds Window
	switch {
	case p.StartHour != HourUnset && p.EndHour != HourUnset:
		if !validHour(p.StartHour) || !validHour(p.EndHour) {
			return models.ShiftReport{}, fmt.Errorf("%w: start=%d end=%d", ErrInvalidShift, p.StartHour, p.EndHour)
		}
		bounds = customShiftWindow(day, s.boundaryHour, p.StartHour, p.EndHour)
	case p.Type == ShiftDay, p.Type == ShiftNight, p.Type == "":
		st := p.Type
		if st == "" {
			st = ShiftDay
		}
		bounds = shiftWindow(day, st)
	default:
		return models.ShiftReport{}, fmt.Errorf("%w: %q", ErrInvalidShift, p.Type)
	}

	events, err := s.alarms.ListRange(ctx, bounds.Start, bounds.End, p.PLCID)
	if err != nil {
		return models.ShiftReport{}, err
	}

	maxByCode := make(map[string]int)
	for _, e := range events {
		if e.CountValue > maxByCode[e.AlarmCode] {
			maxByCode[e.AlarmCode] = e.CountValue
		}
	}

	total := 0
	groups := make([]models.AlarmCount, 0, len(maxByCode))
	for code, maxCount := range maxByCode {
		total += maxCount
		groups = append(groups, models.AlarmCount{
			AlarmCode:   code,
			Description: s.codes.Describe(code),
			Count:       maxCount,
		})
	}
	sortCounts(groups)

	return models.ShiftReport{
		ShiftStart: bounds.Start,
		ShiftEnd:   bounds.End,
		TopAlarms:  groups,
		TotalCount: total,
	}, nil
}

// Latest returns the most recent events, newest first. A non-positive limit
// falls back to the default of 10.
func (s *AggregatorService) Latest(ctx context.Context, limit int, plcID string) ([]models.AlarmEvent, error) {
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	if limit > maxLatestLimit {
		limit = maxLatestLimit
	}
	return s.alarms.Latest(ctx, limit, plcID)
}

// Trend partitions the lookback span ending now into contiguous 1-hour
// right-open buckets and counts events per bucket, oldest first.
func (s *AggregatorService) Trend(ctx context.Context, hours int, plcID string) ([]models.TrendBucket, error) {
	if hours <= 0 {
		hours = defaultTrendHours
	}
	if hours > maxTrendHours {
		hours = maxTrendHours
	}

	now := s.clock.Now()
	start := now.Add(-time.Duration(hours) * time.Hour)

	events, err := s.alarms.ListRange(ctx, start, now, plcID)
	if err != nil {
		return nil, err
	}

	buckets := make([]models.TrendBucket, hours)
	for i := range buckets {
		hourStart := start.Add(time.Duration(i) * time.Hour)
		buckets[i] = models.TrendBucket{
			Hour:      hourStart.Hour(),
			HourLabel: fmt.Sprintf("%02d:00", hourStart.Hour()),
			HourStart: hourStart,
		}
	}
	for _, e := range events {
		idx := int(e.Timestamp.Sub(start) / time.Hour)
		if idx >= 0 && idx < hours {
			buckets[idx].Count++
		}
	}
	return buckets, nil
}

// AlarmCodes returns the configured code -> description table.
func (s *AggregatorService) AlarmCodes() map[string]string {
	return s.codes.Descriptions()
}

// Controllers returns the configured controller table.
func (s *AggregatorService) Controllers() map[string]models.Controller {
	out := make(map[string]models.Controller, len(s.controllers))
	for id, c := range s.controllers {
		out[id] = c
	}
	return out
}

func validHour(h int) bool { return h >= 0 && h <= lastHourOfDay }

// sortCounts orders descending by count; ties break by ascending alarm code,
// then controller id, so equal counts render stably.
func sortCounts(cs []models.AlarmCount) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Count != cs[j].Count {
			return cs[i].Count > cs[j].Count
		}
		if cs[i].AlarmCode != cs[j].AlarmCode {
			return cs[i].AlarmCode < cs[j].AlarmCode
		}
		return cs[i].PLCID < cs[j].PLCID
	})
}
