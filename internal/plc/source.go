package plc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RegisterSource reads the current value of every monitored register of one
// controller. Implementations must honor ctx cancellation and deadlines.
type RegisterSource interface {
	Read(ctx context.Context, plcID string) (map[string]int, error)
}

// DefaultTimeout bounds one upstream register fetch.
const DefaultTimeout = 10 * time.Second

// MasterClient reads registers through the PLC monitor master REST API, which
// owns the vendor protocol session to the controllers.
type MasterClient struct {
	baseURL   string
	registers string // comma-joined register list, precomputed once
	httpc     *http.Client
}

// NewMasterClient builds a client for the master at baseURL requesting the
// given registers. A non-positive timeout falls back to DefaultTimeout.
func NewMasterClient(baseURL string, registers []string, timeout time.Duration) *MasterClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &MasterClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		registers: strings.Join(registers, ","),
		httpc:     &http.Client{Timeout: timeout},
	}
}

// Read fetches all monitored registers for one controller in a single call.
func (c *MasterClient) Read(ctx context.Context, plcID string) (map[string]int, error) {
	u := fmt.Sprintf("%s/api/plc/%s/registers?registers=%s",
		c.baseURL, url.PathEscape(plcID), url.QueryEscape(c.registers))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build master request for plc %s: %w", plcID, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch registers for plc %s: %w", plcID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch registers for plc %s: master returned %s", plcID, resp.Status)
	}

	var readings map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		return nil, fmt.Errorf("decode registers for plc %s: %w", plcID, err)
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("fetch registers for plc %s: empty response", plcID)
	}
	return readings, nil
}
