package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"plc_alarm_monitor/internal/alarmdef"
	"plc_alarm_monitor/internal/logger"
	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/repository"
)

var (
	// ErrNoReadings is returned when an ingestion payload carries no registers.
	ErrNoReadings = errors.New("no readings to record")
	// ErrPersistence wraps event store insert failures.
	ErrPersistence = errors.New("failed to persist alarm events")
)

// IngestionService owns the change-detection logic: it compares fresh register
// reads against the snapshot and emits an alarm event for every transition to a
// new nonzero value.
type IngestionService struct {
	alarms    repository.AlarmRepo
	snapshots *SnapshotStore
	codes     *alarmdef.CodeMap
	clock     Clock
	log       *logger.Logger
}

func NewIngestionService(alarms repository.AlarmRepo, snapshots *SnapshotStore, codes *alarmdef.CodeMap, clock Clock, log *logger.Logger) *IngestionService {
	return &IngestionService{
		alarms:    alarms,
		snapshots: snapshots,
		codes:     codes,
		clock:     clock,
		log:       log,
	}
}

// RecordReadings processes one poll cycle for one controller and returns the
// number of alarm events recorded.
//
// A register produces an event only when its value is nonzero and differs from
// the last observed value. The snapshot is updated for every reading, event or
// not, so a value that drops to 0 and returns to the same nonzero level is
// reported again: the zero reset the stored last-value, which is how a
// momentarily-cleared alarm gets re-reported.
//
// Snapshot updates deliberately survive a failed insert; the last-seen values
// are tracked even when recording failed, to avoid re-emission storms on retry.
func (s *IngestionService) RecordReadings(ctx context.Context, plcID, plcName string, readings map[string]int) (int, error) {
	if len(readings) == 0 {
		return 0, ErrNoReadings
	}

	// Deterministic register order keeps event ordering within a cycle stable.
	regs := make([]string, 0, len(readings))
	for reg := range readings {
		regs = append(regs, reg)
	}
	sort.Strings(regs)

	ts := s.clock.Now().UTC()
	events := make([]models.AlarmEvent, 0, 4)

	for _, reg := range regs {
		value := readings[reg]
		lastValue := s.snapshots.Get(plcID, reg)

		if code, known := s.codes.CodeForCurrent(reg); known && value > 0 && value != lastValue {
			events = append(events, models.AlarmEvent{
				Timestamp:        ts,
				AlarmCode:        code,
				AlarmDescription: s.codes.Describe(code),
				PLCID:            plcID,
				PLCName:          plcName,
				CountValue:       value,
			})
		}

		s.snapshots.Set(plcID, reg, value)
	}

	if len(events) == 0 {
		return 0, nil
	}
	if err := s.alarms.InsertBatch(ctx, events); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.log != nil {
		s.log.Infow("alarm events recorded", "plc", plcID, "count", len(events))
	}
	return len(events), nil
}
