package metrics

import "github.com/prometheus/client_golang/prometheus"

// DispatchMetrics exposes counters for the reminder dispatch and inbound
// SMS flows.
type DispatchMetrics struct {
	remindersTotal  *prometheus.CounterVec
	skippedRuns     prometheus.Counter
	escalations     prometheus.Counter
	inboundCommands *prometheus.CounterVec
}

func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	m := &DispatchMetrics{
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imunisasi",
			Subsystem: "dispatch",
			Name:      "reminders_total",
			Help:      "Total reminder send attempts",
		}, []string{"status"}),
		skippedRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imunisasi",
			Subsystem: "dispatch",
			Name:      "skipped_runs_total",
			Help:      "Dispatch triggers skipped because a run was already active",
		}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imunisasi",
			Subsystem: "dispatch",
			Name:      "escalations_total",
			Help:      "Records escalated after exhausting the retry budget",
		}),
		inboundCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imunisasi",
			Subsystem: "inbound",
			Name:      "commands_total",
			Help:      "Inbound SMS commands by kind",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.remindersTotal, m.skippedRuns, m.escalations, m.inboundCommands)
	return m
}

func (m *DispatchMetrics) ObserveReminder(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "sent"
	}
	m.remindersTotal.WithLabelValues(status).Inc()
}

func (m *DispatchMetrics) ObserveSkippedRun() {
	if m == nil {
		return
	}
	m.skippedRuns.Inc()
}

func (m *DispatchMetrics) ObserveEscalation() {
	if m == nil {
		return
	}
	m.escalations.Inc()
}

func (m *DispatchMetrics) ObserveInbound(kind string) {
	if m == nil {
		return
	}
	m.inboundCommands.WithLabelValues(kind).Inc()
}
