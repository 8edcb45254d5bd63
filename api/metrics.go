/*
metrics.go - Prometheus instrumentation

Two counters cover the engine's write surface:
  cap_mutations_total{action,status}      single-action submissions
  cap_reconcile_ops_total{direction,status} batch reconciliation operations

Exposed on GET /metrics via promhttp (see server.go).
*/
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cap_mutations_total",
		Help: "Single roster-action submissions by action kind and outcome.",
	}, []string{"action", "status"})

	reconcileOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cap_reconcile_ops_total",
		Help: "Commissioner reconciliation operations by direction and outcome.",
	}, []string{"direction", "status"})
)
