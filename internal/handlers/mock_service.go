package handlers

import (
	"context"
	"net/http"
	"time"

	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockIngest struct {
	recorded int
	err      error

	lastPLCID    string
	lastPLCName  string
	lastReadings map[string]int
	calls        int
}

func (m *mockIngest) RecordReadings(ctx context.Context, plcID, plcName string, readings map[string]int) (int, error) {
	m.calls++
	m.lastPLCID = plcID
	m.lastPLCName = plcName
	m.lastReadings = readings
	return m.recorded, m.err
}

type mockAggregation struct {
	window      service.Window
	events      []models.AlarmEvent
	summary     models.SummaryReport
	shift       models.ShiftReport
	buckets     []models.TrendBucket
	codes       map[string]string
	controllers map[string]models.Controller
	err         error

	lastPeriod service.Period
	lastPLC    string
	lastShift  service.ShiftParams
	lastLimit  int
	lastHours  int
}

func (m *mockAggregation) ListWindow(ctx context.Context, period service.Period, plcID string) (service.Window, []models.AlarmEvent, error) {
	m.lastPeriod = period
	m.lastPLC = plcID
	return m.window, m.events, m.err
}
func (m *mockAggregation) Summary(ctx context.Context, plcID string) (models.SummaryReport, error) {
	m.lastPLC = plcID
	return m.summary, m.err
}
func (m *mockAggregation) ShiftSummary(ctx context.Context, p service.ShiftParams) (models.ShiftReport, error) {
	m.lastShift = p
	return m.shift, m.err
}
func (m *mockAggregation) Latest(ctx context.Context, limit int, plcID string) ([]models.AlarmEvent, error) {
	m.lastLimit = limit
	m.lastPLC = plcID
	return m.events, m.err
}
func (m *mockAggregation) Trend(ctx context.Context, hours int, plcID string) ([]models.TrendBucket, error) {
	m.lastHours = hours
	m.lastPLC = plcID
	return m.buckets, m.err
}
func (m *mockAggregation) AlarmCodes() map[string]string { return m.codes }

func (m *mockAggregation) Controllers() map[string]models.Controller { return m.controllers }

type mockPolling struct{}

func (mockPolling) Run(ctx context.Context, interval time.Duration) { <-ctx.Done() }

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
