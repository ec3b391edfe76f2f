package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plc_alarm_monitor/internal/models"
	"plc_alarm_monitor/internal/service"
)

func doRequest(r http.Handler, method, target string, body []byte, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIngestReadings(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	ingest := &mockIngest{recorded: 2}
	s := &service.Service{Authorization: auth, Ingestion: ingest}
	r := newTestRouter(s)

	// Requires auth
	w := doRequest(r, http.MethodPost, "/api/v1/alarms", []byte(`{}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	// Valid payload → 201 with recorded count
	body := []byte(`{"plc_id":"1A","plc_name":"Casting_1A","readings":{"D5000":3,"D5001":0}}`)
	w = doRequest(r, http.MethodPost, "/api/v1/alarms", body, authHeader("valid"))
	if w.Code != http.StatusCreated {
		t.Fatalf("ingest status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Recorded int `json:"recorded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Recorded != 2 {
		t.Fatalf("recorded: %d", resp.Recorded)
	}
	if ingest.lastPLCID != "1A" || ingest.lastPLCName != "Casting_1A" {
		t.Fatalf("controller not forwarded: %q %q", ingest.lastPLCID, ingest.lastPLCName)
	}
	if ingest.lastReadings["D5000"] != 3 {
		t.Fatalf("readings not forwarded: %v", ingest.lastReadings)
	}

	// Missing readings → 400 from binding
	w = doRequest(r, http.MethodPost, "/api/v1/alarms", []byte(`{"plc_id":"1A"}`), authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing readings status=%d", w.Code)
	}

	// Empty readings map → 400 from the service
	ingest.err = service.ErrNoReadings
	w = doRequest(r, http.MethodPost, "/api/v1/alarms", []byte(`{"plc_id":"1A","readings":{}}`), authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no-readings status=%d", w.Code)
	}

	// Store failure → 500
	ingest.err = service.ErrPersistence
	w = doRequest(r, http.MethodPost, "/api/v1/alarms", body, authHeader("valid"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("persistence failure status=%d", w.Code)
	}
}

func TestGetTodayAndYesterday(t *testing.T) {
	start := time.Date(2026, 3, 5, 7, 0, 0, 0, time.UTC)
	agg := &mockAggregation{
		window: service.Window{Start: start, End: start.Add(24 * time.Hour)},
		events: []models.AlarmEvent{
			{ID: 2, AlarmCode: "M801", PLCID: "1A", CountValue: 4},
			{ID: 1, AlarmCode: "M800", PLCID: "1B", CountValue: 1},
		},
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Aggregation: agg}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/alarms/today?plc=1A", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("today status=%d, body=%s", w.Code, w.Body.String())
	}
	if agg.lastPeriod != service.PeriodToday || agg.lastPLC != "1A" {
		t.Fatalf("query not forwarded: period=%q plc=%q", agg.lastPeriod, agg.lastPLC)
	}
	var resp struct {
		Window struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"window"`
		Count  int                 `json:"count"`
		Events []models.AlarmEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || len(resp.Events) != 2 {
		t.Fatalf("count=%d events=%d", resp.Count, len(resp.Events))
	}
	if !resp.Window.Start.Equal(start) {
		t.Fatalf("window start: %v", resp.Window.Start)
	}
	if resp.Events[0].AlarmCode != "M801" {
		t.Fatalf("event order lost: %+v", resp.Events)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/alarms/yesterday", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("yesterday status=%d", w.Code)
	}
	if agg.lastPeriod != service.PeriodYesterday {
		t.Fatalf("period: %q", agg.lastPeriod)
	}

	agg.err = errors.New("db down")
	w = doRequest(r, http.MethodGet, "/api/v1/alarms/today", nil, authHeader("valid"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("error status=%d", w.Code)
	}
}

func TestGetSummary(t *testing.T) {
	agg := &mockAggregation{
		summary: models.SummaryReport{
			Today: models.WindowSummary{
				TopAlarms: []models.AlarmCount{{AlarmCode: "M803", Description: "Alarm M803", Count: 9}},
				Total:     5,
				PerPLC:    map[string]models.PLCSummary{"1A": {Name: "Casting_1A", Count: 5}},
			},
		},
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Aggregation: agg}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/alarms/summary", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("summary status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp models.SummaryReport
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Today.TopAlarms) != 1 || resp.Today.TopAlarms[0].AlarmCode != "M803" {
		t.Fatalf("unexpected summary: %+v", resp.Today)
	}
	if resp.Today.PerPLC["1A"].Count != 5 {
		t.Fatalf("per-plc lost: %+v", resp.Today.PerPLC)
	}
}

func TestGetShift(t *testing.T) {
	agg := &mockAggregation{
		shift: models.ShiftReport{
			TopAlarms:  []models.AlarmCount{{AlarmCode: "M800", Count: 8}},
			TotalCount: 8,
		},
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Aggregation: agg}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/alarms/shift?period=yesterday&type=night&plc=1B", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("shift status=%d, body=%s", w.Code, w.Body.String())
	}
	p := agg.lastShift
	if p.Period != service.PeriodYesterday || p.Type != service.ShiftNight || p.PLCID != "1B" {
		t.Fatalf("params not forwarded: %+v", p)
	}
	if p.StartHour != service.HourUnset || p.EndHour != service.HourUnset {
		t.Fatalf("hours should be unset: %+v", p)
	}

	// Custom hour bounds pass through
	w = doRequest(r, http.MethodGet, "/api/v1/alarms/shift?start_hour=10&end_hour=14", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("custom shift status=%d", w.Code)
	}
	if agg.lastShift.StartHour != 10 || agg.lastShift.EndHour != 14 {
		t.Fatalf("custom hours not forwarded: %+v", agg.lastShift)
	}
	// Period defaults to today
	if agg.lastShift.Period != service.PeriodToday {
		t.Fatalf("default period: %q", agg.lastShift.Period)
	}

	// Service validation error → 400
	agg.err = service.ErrInvalidShift
	w = doRequest(r, http.MethodGet, "/api/v1/alarms/shift?start_hour=25&end_hour=3", nil, authHeader("valid"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid shift status=%d", w.Code)
	}
}

func TestGetLatestAndTrend(t *testing.T) {
	agg := &mockAggregation{
		events:  []models.AlarmEvent{{ID: 9, AlarmCode: "M805"}},
		buckets: make([]models.TrendBucket, 24),
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Aggregation: agg}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/alarms/latest?limit=5&plc=1A", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("latest status=%d", w.Code)
	}
	if agg.lastLimit != 5 || agg.lastPLC != "1A" {
		t.Fatalf("latest params: limit=%d plc=%q", agg.lastLimit, agg.lastPLC)
	}

	// Missing limit forwards zero; the service applies its default.
	w = doRequest(r, http.MethodGet, "/api/v1/alarms/latest", nil, authHeader("valid"))
	if w.Code != http.StatusOK || agg.lastLimit != 0 {
		t.Fatalf("latest default: status=%d limit=%d", w.Code, agg.lastLimit)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/alarms/trend?hours=48", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("trend status=%d", w.Code)
	}
	if agg.lastHours != 48 {
		t.Fatalf("trend hours: %d", agg.lastHours)
	}
	var trendResp struct {
		Hours   int                  `json:"hours"`
		Buckets []models.TrendBucket `json:"buckets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &trendResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if trendResp.Hours != 24 || len(trendResp.Buckets) != 24 {
		t.Fatalf("trend response: %+v", trendResp.Hours)
	}
}

func TestGetCodesAndControllers(t *testing.T) {
	agg := &mockAggregation{
		codes:       map[string]string{"M800": "Alarm M800"},
		controllers: map[string]models.Controller{"1A": {Name: "Casting_1A", Address: "192.168.150.22"}},
	}
	s := &service.Service{Authorization: &mockAuth{parseID: 7}, Aggregation: agg}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/alarms/codes", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("codes status=%d", w.Code)
	}
	var codes map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &codes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if codes["M800"] != "Alarm M800" {
		t.Fatalf("codes: %v", codes)
	}

	w = doRequest(r, http.MethodGet, "/api/v1/plcs", nil, authHeader("valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("plcs status=%d", w.Code)
	}
	var plcs map[string]models.Controller
	if err := json.Unmarshal(w.Body.Bytes(), &plcs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if plcs["1A"].Address != "192.168.150.22" {
		t.Fatalf("plcs: %v", plcs)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("request id header missing")
	}

	// An incoming id is echoed back.
	h := http.Header{}
	h.Set(requestIDHeader, "req-123")
	w = doRequest(r, http.MethodGet, "/health", nil, h)
	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
}
