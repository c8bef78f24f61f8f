package metrics

import (
	"time"

	"trade-auditor/internal/types"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FillsTotal       prometheus.Counter
	UndatedFills     prometheus.Counter
	OrphanFills      prometheus.Counter
	Positions        *prometheus.GaugeVec   // labels: state=closed|open
	StrategiesTotal  *prometheus.CounterVec // labels: type
	RealizedPnL      prometheus.Gauge
	AuditDur         prometheus.Histogram
	RiskPositions    *prometheus.CounterVec // labels: status=priced|unavailable
	PortfolioDelta   prometheus.Gauge
	RiskDur          prometheus.Histogram
	FetchDur         prometheus.Histogram
	FetchErrorsTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FillsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditor_fills_total",
			Help: "Total fills processed by audit runs",
		}),
		UndatedFills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditor_undated_fills_total",
			Help: "Fills without a usable timestamp",
		}),
		OrphanFills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditor_orphan_fills_total",
			Help: "Zero-quantity fills with no open position to attach to",
		}),
		Positions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "auditor_positions",
			Help: "Positions produced by the last audit run, by state",
		}, []string{"state"}),
		StrategiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditor_strategies_total",
			Help: "Strategies identified, by classification label",
		}, []string{"type"}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auditor_realized_pnl",
			Help: "Realized P&L of the last audit run",
		}),
		AuditDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditor_audit_duration_seconds",
			Help:    "Audit pipeline latency",
			Buckets: prometheus.DefBuckets,
		}),
		RiskPositions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auditor_risk_positions_total",
			Help: "Risk positions evaluated, by pricing status",
		}, []string{"status"}),
		PortfolioDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auditor_portfolio_delta",
			Help: "Portfolio delta of the last risk run",
		}),
		RiskDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditor_risk_duration_seconds",
			Help:    "Risk pipeline latency",
			Buckets: prometheus.DefBuckets,
		}),
		FetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auditor_marketdata_fetch_duration_seconds",
			Help:    "Batched market data lookup latency",
			Buckets: prometheus.DefBuckets,
		}),
		FetchErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auditor_marketdata_fetch_errors_total",
			Help: "Market data lookups that returned an error",
		}),
	}

	m.registry.MustRegister(
		m.FillsTotal,
		m.UndatedFills,
		m.OrphanFills,
		m.Positions,
		m.StrategiesTotal,
		m.RealizedPnL,
		m.AuditDur,
		m.RiskPositions,
		m.PortfolioDelta,
		m.RiskDur,
		m.FetchDur,
		m.FetchErrorsTotal,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAudit(r *types.AuditReport, d time.Duration) {
	if m == nil || r == nil {
		return
	}
	s := r.Summary
	m.FillsTotal.Add(float64(s.FillCount))
	m.UndatedFills.Add(float64(s.UndatedFills))
	m.OrphanFills.Add(float64(s.OrphanFills))
	m.Positions.WithLabelValues("closed").Set(float64(len(r.Closed)))
	m.Positions.WithLabelValues("open").Set(float64(len(r.Open)))
	for _, st := range r.Strategies {
		m.StrategiesTotal.WithLabelValues(st.Type).Inc()
	}
	m.RealizedPnL.Set(s.RealizedPnL.InexactFloat64())
	m.AuditDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveRisk(r *types.RiskReport, d time.Duration) {
	if m == nil || r == nil {
		return
	}
	for _, p := range r.Positions {
		status := "priced"
		if !p.Available {
			status = "unavailable"
		}
		m.RiskPositions.WithLabelValues(status).Inc()
	}
	m.PortfolioDelta.Set(r.Totals.Delta)
	m.RiskDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDur.Observe(d.Seconds())
	if err != nil {
		m.FetchErrorsTotal.Inc()
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
