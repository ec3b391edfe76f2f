package alarmdef

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Default table layout: 100 sequential alarm codes M800..M899 mapped from the
// current-day register bank D5000..D5099 and the previous-day bank D5100..D5199.
const (
	defaultCount        = 100
	defaultCodeBase     = 800
	defaultCurrentBase  = 5000
	defaultPreviousBase = 5100

	// UnknownDescription is used when an alarm code has no configured description.
	UnknownDescription = "Unknown alarm"
)

// CodeMap holds the immutable alarm-code and register mappings for a run.
type CodeMap struct {
	descriptions map[string]string // alarm code -> description
	current      map[string]string // current-bank register id -> alarm code
	previous     map[string]string // previous-bank register id -> alarm code
}

// Load reads the tabular mapping file `code,description,current_register,previous_register`.
// A missing or unreadable file yields the built-in default table; invalid rows
// are skipped. The returned error is advisory only: the CodeMap is always usable.
func Load(path string) (*CodeMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return Defaults(), fmt.Errorf("open alarm definitions %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	m := &CodeMap{
		descriptions: make(map[string]string, defaultCount),
		current:      make(map[string]string, defaultCount),
		previous:     make(map[string]string, defaultCount),
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows validated manually below
	header := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Defaults(), fmt.Errorf("parse alarm definitions %q: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		code, desc, ok := parseRow(row)
		if !ok {
			continue
		}
		m.descriptions[code] = desc
		if len(row) >= 4 {
			if reg := strings.TrimSpace(row[2]); reg != "" {
				m.current[reg] = code
			}
			if reg := strings.TrimSpace(row[3]); reg != "" {
				m.previous[reg] = code
			}
		}
	}

	if len(m.descriptions) == 0 {
		return Defaults(), fmt.Errorf("alarm definitions %q: no valid rows", path)
	}
	// Files carrying only code/description columns rely on the fixed offset scheme.
	if len(m.current) == 0 {
		installDefaultRegisters(m)
	}
	return m, nil
}

// Defaults returns the generated fallback table.
func Defaults() *CodeMap {
	m := &CodeMap{
		descriptions: make(map[string]string, defaultCount),
		current:      make(map[string]string, defaultCount),
		previous:     make(map[string]string, defaultCount),
	}
	for i := 0; i < defaultCount; i++ {
		code := fmt.Sprintf("M%d", defaultCodeBase+i)
		m.descriptions[code] = "Alarm " + code
	}
	installDefaultRegisters(m)
	return m
}

// installDefaultRegisters applies the fixed offset scheme D5000+i -> M800+i
// (current bank) and D5100+i -> M800+i (previous bank).
func installDefaultRegisters(m *CodeMap) {
	for i := 0; i < defaultCount; i++ {
		code := fmt.Sprintf("M%d", defaultCodeBase+i)
		m.current[fmt.Sprintf("D%d", defaultCurrentBase+i)] = code
		m.previous[fmt.Sprintf("D%d", defaultPreviousBase+i)] = code
	}
}

func parseRow(row []string) (code, desc string, ok bool) {
	if len(row) < 2 {
		return "", "", false
	}
	code = strings.TrimSpace(row[0])
	desc = strings.TrimSpace(row[1])
	if code == "" || desc == "" {
		return "", "", false
	}
	return code, desc, true
}

// Describe returns the description for an alarm code, or a placeholder.
func (m *CodeMap) Describe(code string) string {
	if d, ok := m.descriptions[code]; ok {
		return d
	}
	return UnknownDescription
}

// CodeForCurrent maps a current-bank register id to its alarm code.
func (m *CodeMap) CodeForCurrent(registerID string) (string, bool) {
	code, ok := m.current[registerID]
	return code, ok
}

// CodeForPrevious maps a previous-bank register id to its alarm code.
func (m *CodeMap) CodeForPrevious(registerID string) (string, bool) {
	code, ok := m.previous[registerID]
	return code, ok
}

// Descriptions returns a copy of the code -> description table.
func (m *CodeMap) Descriptions() map[string]string {
	out := make(map[string]string, len(m.descriptions))
	for k, v := range m.descriptions {
		out[k] = v
	}
	return out
}

// CurrentRegisters lists the monitored current-bank register ids in stable order.
func (m *CodeMap) CurrentRegisters() []string {
	out := make([]string, 0, len(m.current))
	for reg := range m.current {
		out = append(out, reg)
	}
	sort.Strings(out)
	return out
}
