package service

import (
	"context"
	"sort"
	"time"

	"plc_alarm_monitor/internal/logger"
	"plc_alarm_monitor/internal/metrics"
	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/plc"
)

// PollerService drives change detection at a fixed cadence for every configured
// controller. Controllers are polled sequentially, in a fixed order, so device
// sessions never overlap and event ordering within a cycle is deterministic.
type PollerService struct {
	source      plc.RegisterSource
	ingest      Ingestion
	controllers map[string]models.Controller
	order       []string
	readTimeout time.Duration
	log         *logger.Logger
}

func NewPollerService(source plc.RegisterSource, ingest Ingestion, controllers map[string]models.Controller, readTimeout time.Duration, log *logger.Logger) *PollerService {
	if readTimeout <= 0 {
		readTimeout = plc.DefaultTimeout
	}
	order := make([]string, 0, len(controllers))
	for id := range controllers {
		order = append(order, id)
	}
	sort.Strings(order)
	return &PollerService{
		source:      source,
		ingest:      ingest,
		controllers: controllers,
		order:       order,
		readTimeout: readTimeout,
		log:         log,
	}
}

// Run polls all controllers once immediately, then on every tick until ctx is
// canceled. No error stops the loop; a failing controller is logged and skipped
// until the next cycle.
func (s *PollerService) Run(ctx context.Context, interval time.Duration) {
	if s.log != nil {
		s.log.Infow("starting register polling", "controllers", len(s.order), "interval", interval)
	}

	s.pollCycle(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if s.log != nil {
				s.log.Infow("register polling stopped")
			}
			return
		case <-t.C:
			s.pollCycle(ctx)
		}
	}
}

// pollCycle reads and ingests every controller once. A failure on one
// controller never blocks the others in the same cycle.
func (s *PollerService) pollCycle(ctx context.Context) {
	for _, plcID := range s.order {
		if ctx.Err() != nil {
			return
		}
		s.pollOne(ctx, plcID)
	}
	metrics.PollCycles.Inc()
}

func (s *PollerService) pollOne(ctx context.Context, plcID string) {
	readCtx, cancel := context.WithTimeout(ctx, s.readTimeout)
	readings, err := s.source.Read(readCtx, plcID)
	cancel()
	if err != nil {
		metrics.PollErrors.WithLabelValues(plcID).Inc()
		if s.log != nil {
			s.log.Errorw("register read failed", "plc", plcID, "err", err)
		}
		return
	}

	recorded, err := s.ingest.RecordReadings(ctx, plcID, s.controllers[plcID].Name, readings)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("recording readings failed", "plc", plcID, "err", err)
		}
		return
	}
	if recorded > 0 {
		metrics.EventsRecorded.WithLabelValues(plcID).Add(float64(recorded))
	}
}
