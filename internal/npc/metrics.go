package npc

import "github.com/prometheus/client_golang/prometheus"

// Retract paths, used as the "path" label.
const (
	retractDeferred   = "deferred"
	retractBatch      = "batch"
	retractLose       = "lose"
	retractAppearance = "appearance"
)

// Metrics exposes the NPC registry and protocol counters. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registered prometheus.Gauge
	created    prometheus.Counter
	announces  prometheus.Counter
	retracts   *prometheus.CounterVec
	switches   prometheus.Counter
	callbacks  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "npcsync",
			Name:      "npcs_registered",
			Help:      "NPCs currently present in the registry.",
		}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "npcsync",
			Name:      "npcs_created_total",
			Help:      "NPCs created since start.",
		}),
		announces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "npcsync",
			Name:      "announces_total",
			Help:      "Announce records sent to clients.",
		}),
		retracts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "npcsync",
			Name:      "retracts_total",
			Help:      "Retract records sent to clients, by path.",
		}, []string{"path"}),
		switches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "npcsync",
			Name:      "kind_switches_total",
			Help:      "Applied NPC kind switches.",
		}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "npcsync",
			Name:      "callbacks_total",
			Help:      "Attack and interact callbacks invoked.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.registered, m.created, m.announces, m.retracts, m.switches, m.callbacks)
	return m
}

func (m *Metrics) npcCreated(total int) {
	if m == nil {
		return
	}
	m.created.Inc()
	m.registered.Set(float64(total))
}

func (m *Metrics) npcRemoved(total int) {
	if m == nil {
		return
	}
	m.registered.Set(float64(total))
}

func (m *Metrics) announced() {
	if m == nil {
		return
	}
	m.announces.Inc()
}

func (m *Metrics) retracted(path string) {
	if m == nil {
		return
	}
	m.retracts.WithLabelValues(path).Inc()
}

func (m *Metrics) kindSwitched() {
	if m == nil {
		return
	}
	m.switches.Inc()
}

func (m *Metrics) callback(typ string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(typ).Inc()
}
