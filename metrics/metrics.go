// Package metrics is the ambient metrics contract. Only the contract and
// a prometheus binding live here; scraping/exposition is a host concern
// left to the binary that wires this package in.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for guard decisions, flow budget charges,
// FROST consensus outcomes, and guardian recovery sessions. Within this
// module only effect.ProductionInterpreter records to it, adding to
// BudgetCharged on each ChargeBudget.
type Metrics struct {
	Registry prometheus.Registerer

	GuardDenied      *prometheus.CounterVec
	GuardAuthorized  *prometheus.CounterVec
	BudgetCharged    prometheus.Counter
	ConsensusCommits prometheus.Counter
	ConsensusAborts  *prometheus.CounterVec
	RecoverySessions *prometheus.CounterVec
}

// New registers and returns a Metrics instance bound to reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registry: reg,
		GuardDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "guard",
			Name:      "denied_total",
			Help:      "Guard chain decisions that resulted in denial, by guard stage.",
		}, []string{"stage"}),
		GuardAuthorized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "guard",
			Name:      "authorized_total",
			Help:      "Guard chain decisions that resulted in authorization, by request kind.",
		}, []string{"kind"}),
		BudgetCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "flow",
			Name:      "budget_charged_total",
			Help:      "Total flow budget units charged.",
		}),
		ConsensusCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "frost",
			Name:      "commits_total",
			Help:      "Total CommitFacts produced.",
		}),
		ConsensusAborts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "frost",
			Name:      "aborts_total",
			Help:      "Total consensus instances aborted, by reason.",
		}, []string{"reason"}),
		RecoverySessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aura",
			Subsystem: "recovery",
			Name:      "sessions_total",
			Help:      "Total recovery sessions, by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{
		m.GuardDenied, m.GuardAuthorized, m.BudgetCharged,
		m.ConsensusCommits, m.ConsensusAborts, m.RecoverySessions,
	} {
		_ = reg.Register(c)
	}
	return m
}

// Noop returns a Metrics instance registered against a fresh, discarded
// registry, for tests that do not care about metric values.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
