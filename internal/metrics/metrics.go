package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alarm_monitor"

var (
	// PollCycles counts completed polling cycles (all controllers attempted once).
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_cycles_total",
		Help:      "Completed register polling cycles.",
	})

	// PollErrors counts failed register reads per controller.
	PollErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_errors_total",
		Help:      "Failed register reads, by controller.",
	}, []string{"plc"})

	// EventsRecorded counts persisted alarm events per controller.
	EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_recorded_total",
		Help:      "Alarm events persisted to the event store, by controller.",
	}, []string{"plc"})
)
