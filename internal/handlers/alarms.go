package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"plc_alarm_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errListAlarms   = "failed to load alarms"
	errBuildSummary = "failed to build summary"
	errBuildShift   = "failed to build shift summary"
	errBuildTrend   = "failed to build trend"
	errStoreEvents  = "failed to store alarm events"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for pushing one cycle of register readings.
type readingsRequest struct {
	PLCID    string         `json:"plc_id" binding:"required"`
	PLCName  string         `json:"plc_name,omitempty"`
	Readings map[string]int `json:"readings" binding:"required"`
}

// IngestRequest is an exported model for Swagger docs of the ingest payload.
type IngestRequest struct {
	// Controller id, e.g. 1A
	PLCID string `json:"plc_id" example:"1A"`
	// Human-readable controller name
	PLCName string `json:"plc_name,omitempty" example:"Casting_1A"`
	// Register -> value map from one read cycle
	Readings map[string]int `json:"readings"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Ingest register readings
// @Description  Accepts one read cycle for a controller and records alarm events for changed registers.
// @Tags         alarms
// @Accept       json
// @Produce      json
// @Param        body  body   IngestRequest  true  "Readings payload"
// @Success      201   {object}  map[string]int  "recorded"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/alarms [post]
// @Security     BearerAuth
func (h *Handler) ingestReadings(c *gin.Context) {
	var req readingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	recorded, err := h.services.RecordReadings(c.Request.Context(), req.PLCID, req.PLCName, req.Readings)
	if err != nil {
		if errors.Is(err, service.ErrNoReadings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errStoreEvents, "alarm_ingest_failed", err, "plc", req.PLCID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"recorded": recorded})
}

// @Summary      Alarms for the current operational day
// @Tags         alarms
// @Produce      json
// @Param        plc  query   string  false  "Controller id filter"  example(1A)
// @Success      200  {object}  map[string]interface{}  "window, count, events"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms/today [get]
// @Security     BearerAuth
func (h *Handler) getToday(c *gin.Context) {
	h.listWindow(c, service.PeriodToday)
}

// @Summary      Alarms for the previous operational day
// @Tags         alarms
// @Produce      json
// @Param        plc  query   string  false  "Controller id filter"  example(1A)
// @Success      200  {object}  map[string]interface{}  "window, count, events"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms/yesterday [get]
// @Security     BearerAuth
func (h *Handler) getYesterday(c *gin.Context) {
	h.listWindow(c, service.PeriodYesterday)
}

func (h *Handler) listWindow(c *gin.Context, period service.Period) {
	w, events, err := h.services.ListWindow(c.Request.Context(), period, c.Query("plc"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListAlarms, "alarms_list_failed", err, "period", period)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window": gin.H{"start": w.Start, "end": w.End},
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Top alarms for today and yesterday
// @Tags         alarms
// @Produce      json
// @Param        plc  query   string  false  "Controller id filter"  example(1A)
// @Success      200  {object}  models.SummaryReport
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms/summary [get]
// @Security     BearerAuth
func (h *Handler) getSummary(c *gin.Context) {
	report, err := h.services.Summary(c.Request.Context(), c.Query("plc"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errBuildSummary, "alarms_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary      Shift alarm summary
// @Description  Aggregates one shift. Default is today's day shift; pass type=night, period=yesterday, or explicit start_hour/end_hour.
// @Tags         alarms
// @Produce      json
// @Param        period      query  string  false  "today or yesterday"  Enums(today,yesterday)
// @Param        type        query  string  false  "day or night"        Enums(day,night)
// @Param        start_hour  query  int     false  "Custom shift start hour, 0..23"
// @Param        end_hour    query  int     false  "Custom shift end hour, 0..23"
// @Param        plc         query  string  false  "Controller id filter"
// @Success      200  {object}  models.ShiftReport
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms/shift [get]
// @Security     BearerAuth
func (h *Handler) getShift(c *gin.Context) {
	params := service.ShiftParams{
		Period:    service.Period(strings.ToLower(c.DefaultQuery("period", string(service.PeriodToday)))),
		Type:      service.ShiftType(strings.ToLower(c.Query("type"))),
		StartHour: queryHour(c, "start_hour"),
		EndHour:   queryHour(c, "end_hour"),
		PLCID:     c.Query("plc"),
	}

	report, err := h.services.ShiftSummary(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) || errors.Is(err, service.ErrInvalidShift) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errBuildShift, "alarms_shift_failed", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary      Most recent alarm events
// @Tags         alarms
// @Produce      json
// @Param        limit  query   int     false  "Max events to return (default 10, cap 500)"
// @Param        plc    query   string  false  "Controller id filter"
// @Success      200  {object}  map[string]interface{}  "count, events"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms/latest [get]
// @Security     BearerAuth
func (h *Handler) getLatest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.services.Latest(c.Request.Context(), limit, c.Query("plc"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListAlarms, "alarms_latest_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// @Summary      Hourly alarm trend
// @Description  Event counts per hour for the lookback span ending now, oldest bucket first.
// @Tags         alarms
// @Produce      json
// @Param        hours  query   int     false  "Lookback hours (default 24, cap 168)"
// @Param        plc    query   string  false  "Controller id filter"
// @Success      200  {object}  map[string]interface{}  "hours, buckets"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/alarms/trend [get]
// @Security     BearerAuth
func (h *Handler) getTrend(c *gin.Context) {
	hours, _ := strconv.Atoi(c.Query("hours"))
	buckets, err := h.services.Trend(c.Request.Context(), hours, c.Query("plc"))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errBuildTrend, "alarms_trend_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hours":   len(buckets),
		"buckets": buckets,
	})
}

// @Summary      Alarm code table
// @Tags         alarms
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alarms/codes [get]
// @Security     BearerAuth
func (h *Handler) getCodes(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.AlarmCodes())
}

// @Summary      Configured controllers
// @Tags         plcs
// @Produce      json
// @Success      200  {object}  map[string]models.Controller
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/plcs [get]
// @Security     BearerAuth
func (h *Handler) getControllers(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Controllers())
}

// queryHour parses an optional hour-of-day query parameter. Absent or malformed
// values map to HourUnset; range checking happens in the service.
func queryHour(c *gin.Context, name string) int {
	s := c.Query(name)
	if s == "" {
		return service.HourUnset
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -2 // out of range, rejected by the service
	}
	return v
}
