// Package observability exposes Prometheus metrics for engine runs and the
// HTTP surface.
package observability

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"installcost/costing"
)

const namespace = "installcost"

// ─── Engine ─────────────────────────────────────────────────────────────────

// BreakdownsTotal counts cost breakdowns by mode.
var BreakdownsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "engine",
	Name:      "breakdowns_total",
	Help:      "Total cost breakdowns computed, by mode.",
}, []string{"mode"})

// BreakdownDuration tracks how long a breakdown takes.
var BreakdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "engine",
	Name:      "breakdown_duration_seconds",
	Help:      "Time spent computing one cost breakdown.",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
})

// ApprovalsTotal counts approval evaluations by verdict.
var ApprovalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "approval",
	Name:      "evaluations_total",
	Help:      "Total auto-approval evaluations, by verdict.",
}, []string{"verdict"})

// ApprovalViolations counts failed approval rules.
var ApprovalViolations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "approval",
	Name:      "rule_violations_total",
	Help:      "Total approval rule violations, by rule.",
}, []string{"rule"})

// VariantRejections counts variant edits refused by the engine.
var VariantRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "variants",
	Name:      "rejections_total",
	Help:      "Total variant edits rejected, by reason.",
}, []string{"reason"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts handled requests by method and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests, by method and status.",
}, []string{"method", "status"})

// HTTPDuration tracks request latency by method.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method"})

// ObserveBreakdown records one breakdown that started at start.
func ObserveBreakdown(mode costing.Mode, start time.Time) {
	if mode == "" {
		mode = costing.ModeInitial
	}
	BreakdownsTotal.WithLabelValues(string(mode)).Inc()
	BreakdownDuration.Observe(time.Since(start).Seconds())
}

// ObserveApproval records the verdict and every violated rule.
func ObserveApproval(res costing.ApprovalResult) {
	verdict := "rejected"
	if res.Approved {
		verdict = "approved"
	}
	ApprovalsTotal.WithLabelValues(verdict).Inc()
	for _, rule := range res.Violations {
		ApprovalViolations.WithLabelValues(string(rule)).Inc()
	}
}

// ObserveVariantError records why a variant edit was rejected. A nil error
// records nothing.
func ObserveVariantError(err error) {
	if err == nil {
		return
	}
	VariantRejections.WithLabelValues(VariantErrorReason(err)).Inc()
}

// VariantErrorReason maps a variant error to its metric label.
func VariantErrorReason(err error) string {
	switch {
	case errors.Is(err, costing.ErrVariantCycle):
		return "cycle"
	case errors.Is(err, costing.ErrVariantNotFound):
		return "not_found"
	case errors.Is(err, costing.ErrInvalidItemRef), errors.Is(err, costing.ErrInvalidStatus):
		return "invalid"
	}
	return "other"
}

// ObserveRequest records one HTTP request.
func ObserveRequest(method string, status int, start time.Time) {
	if status == 0 {
		status = 200
	}
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
