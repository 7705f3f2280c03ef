package ingestion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capsule_ingest_runs_total",
		Help: "Snapshot ingestion runs by outcome.",
	}, []string{"status"})

	factsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capsule_ingest_facts_written_total",
		Help: "Spawn-chance fact rows written by ingestion.",
	})
)
