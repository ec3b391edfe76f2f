package service

import (
	"context"
	"sync"
	"time"

	"plc_alarm_monitor/internal/models"
)

// ---- Test doubles shared across service tests ----

// fixedClock always returns the same instant.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// fakeAlarmRepo is a scripted stand-in for repository.AlarmRepo.
type fakeAlarmRepo struct {
	mu sync.Mutex

	// captured inputs
	inserted    [][]models.AlarmEvent
	gotFrom     time.Time
	gotTo       time.Time
	gotPLC      string
	latestLimit int

	// configured outputs
	events    []models.AlarmEvent
	insertErr error
	listErr   error
}

func (f *fakeAlarmRepo) InsertBatch(ctx context.Context, events []models.AlarmEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, append([]models.AlarmEvent(nil), events...))
	return nil
}

func (f *fakeAlarmRepo) ListRange(ctx context.Context, from, to time.Time, plcID string) ([]models.AlarmEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotFrom, f.gotTo, f.gotPLC = from, to, plcID
	if f.listErr != nil {
		return nil, f.listErr
	}
	// Honor the window so aggregation tests can script one event set and query
	// different sub-ranges.
	out := make([]models.AlarmEvent, 0, len(f.events))
	for _, e := range f.events {
		if !e.Timestamp.Before(from) && e.Timestamp.Before(to) && (plcID == "" || e.PLCID == plcID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAlarmRepo) Latest(ctx context.Context, limit int, plcID string) ([]models.AlarmEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latestLimit = limit
	f.gotPLC = plcID
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.events) {
		limit = len(f.events)
	}
	return f.events[:limit], nil
}

// allInserted flattens every recorded batch.
func (f *fakeAlarmRepo) allInserted() []models.AlarmEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AlarmEvent
	for _, batch := range f.inserted {
		out = append(out, batch...)
	}
	return out
}
