package service

import (
	"context"
	"time"

	"plc_alarm_monitor/internal/alarmdef"
	"plc_alarm_monitor/internal/logger"
	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/plc"
	"plc_alarm_monitor/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Ingestion turns one cycle of raw register readings into persisted alarm events.
type Ingestion interface {
	RecordReadings(ctx context.Context, plcID, plcName string, readings map[string]int) (int, error)
}

// Aggregation answers the operator-facing time-windowed queries.
type Aggregation interface {
	ListWindow(ctx context.Context, period Period, plcID string) (Window, []models.AlarmEvent, error)
	Summary(ctx context.Context, plcID string) (models.SummaryReport, error)
	ShiftSummary(ctx context.Context, p ShiftParams) (models.ShiftReport, error)
	Latest(ctx context.Context, limit int, plcID string) ([]models.AlarmEvent, error)
	Trend(ctx context.Context, hours int, plcID string) ([]models.TrendBucket, error)
	AlarmCodes() map[string]string
	Controllers() map[string]models.Controller
}

// Polling runs the background register collection loop. Stop via context
// cancellation in main() for graceful shutdown.
type Polling interface {
	Run(ctx context.Context, interval time.Duration)
}

type Service struct {
	Ingestion
	Aggregation
	Polling
	Authorization
}

// Deps carries everything the service layer is wired with.
type Deps struct {
	Repos        *repository.Repository
	Codes        *alarmdef.CodeMap
	Controllers  map[string]models.Controller
	Source       plc.RegisterSource
	Clock        Clock
	BoundaryHour int       // operational-day anchor hour, 0..23
	CountMode    CountMode // summary count semantics
	ReadTimeout  time.Duration
	SigningKey   string
	Log          *logger.Logger
}

// NewService wires the repository layer and collaborators into concrete services.
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	ingest := NewIngestionService(d.Repos.Alarms, NewSnapshotStore(), d.Codes, d.Clock, d.Log)
	return &Service{
		Ingestion:     ingest,
		Aggregation:   NewAggregatorService(d.Repos.Alarms, d.Codes, d.Controllers, d.Clock, d.BoundaryHour, d.CountMode),
		Polling:       NewPollerService(d.Source, ingest, d.Controllers, d.ReadTimeout, d.Log),
		Authorization: NewAuthService(d.Repos.Auth, d.SigningKey),
	}
}
