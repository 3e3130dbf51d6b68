// Package pipeline drives one tripstat run: it expands the configured
// inputs, feeds each one to a single TripAnalyzer in order, and records what
// happened to every input in logs, metrics and trace spans.
//
// # Architecture
//
// A run consists of:
//   - Source: local paths, globs and s3:// or gs:// objects
//   - Decoder: optional streaming decompression per input
//   - Analyzer: the shared zone table and counters
//   - Observers: metrics collector and tracer
//
// Inputs are processed sequentially; the analyzer is not safe for
// concurrent ingest and counts must not depend on scheduling.
//
// # Basic Usage
//
//	runner, err := pipeline.NewRunner(&pipeline.Config{
//	    Inputs: []string{"data/*.csv.gz"},
//	}, logger)
//	result, err := runner.Run(ctx)
//	report := runner.Report(10, true, true)
package pipeline

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tripstat/pkg/analyzer"
	"github.com/ajitpratap0/tripstat/pkg/compression"
	"github.com/ajitpratap0/tripstat/pkg/logger"
	"github.com/ajitpratap0/tripstat/pkg/metrics"
	"github.com/ajitpratap0/tripstat/pkg/observability"
	"github.com/ajitpratap0/tripstat/pkg/render"
	"github.com/ajitpratap0/tripstat/pkg/source"
	"github.com/ajitpratap0/tripstat/pkg/tripstaterrors"
)

// Config contains run parameters.
type Config struct {
	Inputs      []string              // Locations in processing order
	Compression compression.Algorithm // Auto detects per input
	Analyzer    *analyzer.Config      // nil selects analyzer defaults
	Opener      source.OpenerConfig   // Remote access settings
}

// Result summarises a finished run.
type Result struct {
	Inputs      int            // Locations after glob expansion
	Unavailable []string       // Inputs that could not be opened or decoded
	Stats       analyzer.Stats // Cumulative ingest counters
	Zones       int            // Distinct zones seen
	Duration    time.Duration
}

// Runner executes a run against one analyzer.
type Runner struct {
	config    *Config
	analyzer  *analyzer.TripAnalyzer
	opener    *source.Opener
	collector *metrics.Collector
	tracer    *observability.Tracer
	logger    *zap.Logger
}

// Option customises a Runner.
type Option func(*Runner)

// WithCollector records per-input metrics into c.
func WithCollector(c *metrics.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithTracer emits one span per input through t.
func WithTracer(t *observability.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// NewRunner creates a runner. The configured inputs are not touched until
// Run.
func NewRunner(config *Config, log *zap.Logger, opts ...Option) (*Runner, error) {
	if config == nil {
		return nil, tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "pipeline config is required")
	}
	if len(config.Inputs) == 0 {
		return nil, tripstaterrors.New(tripstaterrors.ErrorTypeValidation, "no inputs given")
	}
	if log == nil {
		log = zap.NewNop()
	}

	r := &Runner{
		config:   config,
		analyzer: analyzer.New(config.Analyzer),
		opener:   source.NewOpener(config.Opener, log),
		logger:   log,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.collector == nil {
		r.collector = metrics.NewCollector("tripstat")
	}
	if r.tracer == nil {
		tracer, err := observability.NewTracer(observability.DefaultTracingConfig())
		if err != nil {
			return nil, err
		}
		r.tracer = tracer
	}
	return r, nil
}

// Analyzer returns the analyzer the runner ingests into.
func (r *Runner) Analyzer() *analyzer.TripAnalyzer {
	return r.analyzer
}

// Collector returns the runner's metrics collector.
func (r *Runner) Collector() *metrics.Collector {
	return r.collector
}

// Close releases remote clients.
func (r *Runner) Close() error {
	return r.opener.Close()
}

// Run ingests every input in order. Missing or undecodable inputs are
// logged and skipped; the run fails only on invalid locations, a full zone
// table, or cancellation of ctx, which is checked between inputs and on
// every read from a remote or compressed input.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	locs, err := source.Expand(r.config.Inputs)
	if err != nil {
		return nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeValidation, "invalid input location")
	}

	log := logger.FromContext(ctx, r.logger)
	log.Info("starting run",
		zap.Int("inputs", len(locs)),
		zap.String("compression", string(r.config.Compression)))

	result := &Result{Inputs: len(locs)}
	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			return r.finish(result, start), err
		}
		ok, err := r.ingest(ctx, loc)
		if !ok {
			result.Unavailable = append(result.Unavailable, loc.String())
		}
		if err != nil {
			return r.finish(result, start), err
		}
	}

	r.finish(result, start)
	log.Info("run completed",
		zap.Int("inputs", result.Inputs),
		zap.Int("unavailable", len(result.Unavailable)),
		zap.Int("zones", result.Zones),
		zap.Int64("lines_accepted", result.Stats.LinesAccepted),
		zap.Int64("lines_dropped", result.Stats.Dropped()),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) finish(result *Result, start time.Time) *Result {
	result.Stats = r.analyzer.Stats()
	result.Zones = r.analyzer.NumZones()
	result.Duration = time.Since(start)
	r.collector.SetTable(r.analyzer.TableStats())
	return result
}

// ingest processes one location. ok is false when the input contributed
// nothing because it could not be opened or decoded.
func (r *Runner) ingest(ctx context.Context, loc source.Location) (ok bool, err error) {
	ctx = logger.ContextWithInput(ctx, loc.String())
	log := logger.FromContext(ctx, r.logger)
	alg := compression.Resolve(r.config.Compression, loc.String())

	ctx, span := r.tracer.StartIngest(ctx, loc.String())
	span.SetAttribute("tripstat.compression", string(alg))
	before := r.analyzer.Stats()
	timer := metrics.NewTimer()
	skipped := metrics.StatusNotOpened

	defer func() {
		delta := r.analyzer.Stats().Sub(before)
		if ok {
			r.collector.ObserveIngest(delta, timer.Stop(), err)
		} else {
			r.collector.ObserveSkipped(skipped)
		}
		span.RecordStats(delta, r.analyzer.NumZones())
		span.End(err)
	}()

	if !loc.IsRemote() && alg == compression.None {
		err = r.analyzer.IngestFile(loc.Path)
		delta := r.analyzer.Stats().Sub(before)
		if delta.FilesNotOpened > 0 {
			log.Warn("input not readable, skipping")
			return false, nil
		}
		r.logDelta(log, delta, err)
		return true, err
	}

	rc, openErr := r.opener.Open(ctx, loc)
	if openErr != nil {
		log.Warn("input not readable, skipping", zap.Error(openErr))
		return false, nil
	}
	defer rc.Close()

	dec, decErr := compression.NewReader(rc, alg)
	if decErr != nil {
		skipped = metrics.StatusFailed
		log.Warn("input not decodable, skipping", zap.Error(decErr))
		return false, nil
	}
	defer dec.Close()

	err = r.analyzer.IngestReader(&contextReader{ctx: ctx, r: dec})
	r.logDelta(log, r.analyzer.Stats().Sub(before), err)
	if err == nil {
		err = ctx.Err()
	}
	return true, err
}

func (r *Runner) logDelta(log *zap.Logger, delta analyzer.Stats, err error) {
	if err != nil {
		log.Error("ingest failed", zap.Error(err))
		return
	}
	if delta.ReadErrors > 0 {
		log.Warn("input ended early on read error",
			zap.Int64("lines_accepted", delta.LinesAccepted))
	}
	log.Debug("input ingested",
		zap.Int64("bytes", delta.BytesRead),
		zap.Int64("lines_read", delta.LinesRead),
		zap.Int64("lines_accepted", delta.LinesAccepted),
		zap.Int64("lines_dropped", delta.Dropped()))
}

// Report builds the selected reports from the analyzer's current counts.
func (r *Runner) Report(topK int, zones, slots bool) *render.Report {
	rep := &render.Report{}
	if zones {
		rep.Zones = r.analyzer.TopZones(topK)
	}
	if slots {
		rep.Slots = r.analyzer.TopBusySlots(topK)
	}
	return rep
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
