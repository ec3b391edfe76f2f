package plc

import (
	"context"
	"math/rand"
	"sync"
)

// Simulation tuning knobs.
const (
	simAlarmChance = 0.02 // per-register chance of raising/incrementing an alarm
	simClearChance = 0.10 // per-register chance of clearing an active alarm
	simMaxCount    = 50   // cap on a simulated register value
)

// Simulator is a RegisterSource for development deployments without reachable
// controllers. Registers mostly stay at zero; occasionally one raises an alarm
// count that later clears, so change detection sees realistic transitions.
type Simulator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	registers []string
	values    map[string]map[string]int // plcID -> register -> value
}

// NewSimulator creates a simulator over the given register set. The seed makes
// a run reproducible in tests.
func NewSimulator(registers []string, seed int64) *Simulator {
	return &Simulator{
		rng:       rand.New(rand.NewSource(seed)),
		registers: append([]string(nil), registers...),
		values:    make(map[string]map[string]int),
	}
}

// Read advances the simulation one step for the controller and returns a full
// register map, mirroring what the master API would return.
func (s *Simulator) Read(ctx context.Context, plcID string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.values[plcID]
	if !ok {
		state = make(map[string]int, len(s.registers))
		s.values[plcID] = state
	}

	out := make(map[string]int, len(s.registers))
	for _, reg := range s.registers {
		v := state[reg]
		switch {
		case v == 0 && s.rng.Float64() < simAlarmChance:
			v = 1 + s.rng.Intn(3)
		case v > 0 && s.rng.Float64() < simClearChance:
			v = 0
		case v > 0 && s.rng.Float64() < simAlarmChance && v < simMaxCount:
			v++ // alarm fired again, register counts up
		}
		state[reg] = v
		out[reg] = v
	}
	return out, nil
}
