// Package metrics exposes tripstat run counters as Prometheus metrics.
//
// # Overview
//
// A Collector owns a private registry, so several analyzers (or tests) can
// record side by side without clashing on the default registerer. After a
// run, WriteTextfile dumps the registry in the text exposition format, ready
// for the node_exporter textfile collector.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("tripstat")
//	timer := metrics.NewTimer()
//	err := a.IngestFile(path)
//	collector.ObserveIngest(a.Stats().Sub(before), timer.Stop(), err)
//	collector.SetTable(a.TableStats())
//	_ = collector.WriteTextfile("/var/lib/node_exporter/tripstat.prom")
//
// # Metric Types
//
// Counter: lines, bytes and inputs, labelled by outcome
// Gauge: zone table entries and buckets at the end of the run
// Histogram: per-input ingest duration
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/tripstat/pkg/analyzer"
	"github.com/ajitpratap0/tripstat/pkg/intern"
)

// Input outcomes recorded in the inputs_total status label.
const (
	StatusIngested  = "ingested"
	StatusNotOpened = "not_opened"
	StatusReadError = "read_error"
	StatusFailed    = "failed"
)

// Drop reasons recorded in the lines_dropped_total reason label.
const (
	ReasonColumnCount = "column_count"
	ReasonMissingZone = "missing_zone"
	ReasonMissingTime = "missing_time"
	ReasonBadHour     = "bad_hour"
)

// Collector records ingest outcomes for one process.
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	linesRead     prometheus.Counter
	linesAccepted prometheus.Counter
	headerLines   prometheus.Counter
	linesDropped  *prometheus.CounterVec
	bytesRead     prometheus.Counter
	inputs        *prometheus.CounterVec
	zones         prometheus.Gauge
	buckets       prometheus.Gauge
	tableGrows    prometheus.Gauge
	ingestSeconds prometheus.Histogram
}

// NewCollector creates a collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		namespace: namespace,
		registry:  reg,
		linesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Non-empty lines read, including headers",
		}),
		linesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_accepted_total",
			Help:      "Lines that produced an event",
		}),
		headerLines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "header_lines_total",
			Help:      "Header lines consumed",
		}),
		linesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_dropped_total",
				Help:      "Lines rejected by the tokenizer",
			},
			[]string{"reason"},
		),
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read_total",
			Help:      "Bytes delivered by input readers",
		}),
		inputs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inputs_total",
				Help:      "Inputs processed by outcome",
			},
			[]string{"status"},
		),
		zones: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zones",
			Help:      "Distinct zones interned",
		}),
		buckets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zone_table_buckets",
			Help:      "Current zone table capacity",
		}),
		tableGrows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zone_table_grows",
			Help:      "Zone table doublings so far",
		}),
		ingestSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Wall time spent ingesting one input",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveIngest records the counter delta produced by ingesting one input.
func (c *Collector) ObserveIngest(delta analyzer.Stats, d time.Duration, err error) {
	c.linesRead.Add(float64(delta.LinesRead))
	c.linesAccepted.Add(float64(delta.LinesAccepted))
	c.headerLines.Add(float64(delta.HeaderLines))
	c.bytesRead.Add(float64(delta.BytesRead))
	c.linesDropped.WithLabelValues(ReasonColumnCount).Add(float64(delta.DroppedColumnCount))
	c.linesDropped.WithLabelValues(ReasonMissingZone).Add(float64(delta.DroppedMissingZone))
	c.linesDropped.WithLabelValues(ReasonMissingTime).Add(float64(delta.DroppedMissingTime))
	c.linesDropped.WithLabelValues(ReasonBadHour).Add(float64(delta.DroppedBadHour))

	switch {
	case err != nil:
		c.inputs.WithLabelValues(StatusFailed).Inc()
	case delta.FilesNotOpened > 0:
		c.inputs.WithLabelValues(StatusNotOpened).Inc()
	case delta.ReadErrors > 0:
		c.inputs.WithLabelValues(StatusReadError).Inc()
	default:
		c.inputs.WithLabelValues(StatusIngested).Inc()
	}
	c.ingestSeconds.Observe(d.Seconds())
}

// ObserveSkipped records an input that never reached the analyzer, labelled
// StatusNotOpened when it could not be opened and StatusFailed otherwise.
func (c *Collector) ObserveSkipped(status string) {
	c.inputs.WithLabelValues(status).Inc()
}

// SetTable records the zone table shape.
func (c *Collector) SetTable(s intern.TableStats) {
	c.zones.Set(float64(s.Entries))
	c.buckets.Set(float64(s.Buckets))
	c.tableGrows.Set(float64(s.Grows))
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Timer measures the duration of one operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the time elapsed since NewTimer.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
