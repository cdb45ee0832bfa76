package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RowsMigrated counts processed CSV rows by migration kind and outcome.
// HTTP-level metrics come from the gin prometheus middleware; this is the
// domain-side view operators actually watch during a run.
var RowsMigrated = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "temigrate",
	Subsystem: "rows",
	Name:      "migrated_total",
	Help:      "Number of CSV rows processed per migration kind and outcome",
}, []string{"kind", "outcome"})

// RunsStarted counts migration runs by kind.
var RunsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "temigrate",
	Subsystem: "runs",
	Name:      "started_total",
	Help:      "Number of migration runs started per kind",
}, []string{"kind"})

func init() {
	prometheus.MustRegister(RowsMigrated, RunsStarted)
}

// CountRow records one row outcome.
func CountRow(kind string, success bool) {
	outcome := "failed"
	if success {
		outcome = "success"
	}
	RowsMigrated.WithLabelValues(kind, outcome).Inc()
}
