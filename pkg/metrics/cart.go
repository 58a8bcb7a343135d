package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics records reconciliation activity on cart reads.
type CartMetrics struct {
	corrections      *prometheus.CounterVec
	writeBackFailure prometheus.Counter
}

// NewCartMetrics registers the cart reconciliation metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	corrections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_reconcile_corrections_total",
		Help: "Cart lines whose quantity was corrected during reconciliation.",
	}, []string{"reason"})
	writeBackFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_reconcile_write_back_failures_total",
		Help: "Failed attempts to persist a reconciled cart quantity.",
	})
	reg.MustRegister(corrections, writeBackFailure)
	return &CartMetrics{
		corrections:      corrections,
		writeBackFailure: writeBackFailure,
	}
}

// IncCorrection increments the correction counter for the given reason.
func (c *CartMetrics) IncCorrection(reason string) {
	if c == nil || c.corrections == nil {
		return
	}
	c.corrections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncWriteBackFailure increments the write-back failure counter.
func (c *CartMetrics) IncWriteBackFailure() {
	if c == nil || c.writeBackFailure == nil {
		return
	}
	c.writeBackFailure.Inc()
}
