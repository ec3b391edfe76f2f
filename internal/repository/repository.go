package repository

import (
	"context"
	"database/sql"
	"time"

	"plc_alarm_monitor/internal/models"
)

// AlarmRepo is the durable append-only alarm event log.
type AlarmRepo interface {
	// InsertBatch persists all events atomically; on error nothing is committed.
	InsertBatch(ctx context.Context, events []models.AlarmEvent) error
	// ListRange returns events with timestamp in [from, to), newest first.
	// plcID filters by controller when non-empty.
	ListRange(ctx context.Context, from, to time.Time, plcID string) ([]models.AlarmEvent, error)
	// Latest returns the most recent events, newest first.
	Latest(ctx context.Context, limit int, plcID string) ([]models.AlarmEvent, error)
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type Repository struct {
	Alarms AlarmRepo
	Auth   Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Alarms: NewAlarmSQLite(db),
		Auth:   NewUserRepository(db),
	}
}
