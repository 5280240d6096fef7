// Package metrics owns the Prometheus registry and the ingestion counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketwatch"

// Ingest counts what the ingestion coordinator sees.
type Ingest struct {
	FilesSeen          prometheus.Counter
	FilesSkipped       prometheus.Counter
	ReadFailures       prometheus.Counter
	EmptyDumps         prometheus.Counter
	RowsTotal          prometheus.Counter
	RowsParsed         prometheus.Counter
	SnapshotsPublished prometheus.Counter
	ArchiveFailures    prometheus.Counter
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewIngest creates the ingestion counters and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewIngest(reg prometheus.Registerer) *Ingest {
	m := &Ingest{
		FilesSeen:          counter("files_seen_total", "Dump files picked up by the watcher."),
		FilesSkipped:       counter("files_skipped_total", "Dump files skipped because another instance holds the lock."),
		ReadFailures:       counter("read_failures_total", "Dump files that could not be read after retries."),
		EmptyDumps:         counter("empty_dumps_total", "Dump files with no parsable rows."),
		RowsTotal:          counter("rows_total", "Rows read from dump files."),
		RowsParsed:         counter("rows_parsed_total", "Rows accepted by the record parser."),
		SnapshotsPublished: counter("snapshots_published_total", "Snapshots handed to the publishers."),
		ArchiveFailures:    counter("archive_failures_total", "Raw dumps that failed to archive."),
	}
	if reg != nil {
		reg.MustRegister(
			m.FilesSeen, m.FilesSkipped, m.ReadFailures, m.EmptyDumps,
			m.RowsTotal, m.RowsParsed, m.SnapshotsPublished, m.ArchiveFailures,
		)
	}
	return m
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      name,
		Help:      help,
	})
}

// Handler exposes reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
