package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tripstat/internal/pipeline"
	"github.com/ajitpratap0/tripstat/pkg/compression"
	"github.com/ajitpratap0/tripstat/pkg/config"
	"github.com/ajitpratap0/tripstat/pkg/logger"
	"github.com/ajitpratap0/tripstat/pkg/metrics"
	"github.com/ajitpratap0/tripstat/pkg/observability"
	"github.com/ajitpratap0/tripstat/pkg/performance"
	"github.com/ajitpratap0/tripstat/pkg/render"
	"github.com/ajitpratap0/tripstat/pkg/source"
	"github.com/ajitpratap0/tripstat/pkg/tripstaterrors"
)

func newAnalyzeCommand() *cobra.Command {
	var configFile string
	var withStats bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Count trips and report the busiest zones and hours",
		Long: `Ingest every input in order into one set of counters and print the
busiest zones and (zone, hour) slots.

Inputs may be local paths, glob patterns, s3://bucket/key or gs://bucket/object.
Compressed inputs (.gz, .zst, .sz, .s2, .lz4) are decoded on the fly.
Every flag can also be set with a TRIPSTAT_ environment variable,
e.g. TRIPSTAT_TOP_K=20.

Example:
  tripstat analyze --top-k 5 data/yellow_2024-*.csv.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewDefault()
			if configFile != "" {
				if err := config.Load(configFile, cfg); err != nil {
					return err
				}
			}

			v := newViper()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			applyOverrides(v, cfg)
			if len(args) > 0 {
				cfg.Input.Paths = args
			}
			if len(cfg.Input.Paths) == 0 {
				return tripstaterrors.New(tripstaterrors.ErrorTypeValidation, "no inputs: pass paths or set input.paths")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			return runAnalyze(ctx, cfg, withStats, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	flags.BoolVar(&withStats, "stats", false, "Append ingest counters to the report")
	flags.DurationVar(&timeout, "timeout", 0, "Abort the run after this long (0 = no limit)")

	flags.IntP("top-k", "k", 0, "Rows per report; 0 or less lists every non-zero row")
	flags.StringP("format", "f", "", "Report format: table, json or csv")
	flags.StringP("output", "o", "", "Report file; a compression extension compresses it (default stdout)")
	flags.StringSlice("reports", nil, "Reports to print: zones, slots")
	flags.String("delimiter", "", "Single-byte column delimiter")
	flags.String("compression", "", "Input compression: auto, none, gzip, zstd, snappy, s2, lz4")
	flags.Int("buffer-size", 0, "Read chunk size in bytes")
	flags.Int("initial-buckets", 0, "Initial zone table buckets")
	flags.Int("max-buckets", 0, "Maximum zone table buckets")
	flags.String("s3-region", "", "AWS region for s3:// inputs")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log encoding: console or json")
	flags.String("metrics-file", "", "Write Prometheus text metrics to this file")
	flags.Bool("trace", false, "Export one trace span per input")
	flags.String("trace-file", "", "Trace output file (default stderr)")
	flags.Bool("resource-usage", false, "Log process resource usage after the run")

	return cmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRIPSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// applyOverrides copies every flag or TRIPSTAT_ variable that was set onto
// cfg. Values from the configuration file survive unless overridden.
func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet("top-k") {
		cfg.Analyzer.TopK = v.GetInt("top-k")
	}
	if v.IsSet("format") {
		cfg.Output.Format = v.GetString("format")
	}
	if v.IsSet("output") {
		cfg.Output.Path = v.GetString("output")
	}
	if v.IsSet("reports") {
		cfg.Output.Reports = v.GetStringSlice("reports")
	}
	if v.IsSet("delimiter") {
		cfg.Analyzer.Delimiter = v.GetString("delimiter")
	}
	if v.IsSet("compression") {
		cfg.Input.Compression = v.GetString("compression")
	}
	if v.IsSet("buffer-size") {
		cfg.Analyzer.BufferSize = v.GetInt("buffer-size")
	}
	if v.IsSet("initial-buckets") {
		cfg.Analyzer.InitialBuckets = v.GetInt("initial-buckets")
	}
	if v.IsSet("max-buckets") {
		cfg.Analyzer.MaxBuckets = v.GetInt("max-buckets")
	}
	if v.IsSet("s3-region") {
		cfg.Input.S3Region = v.GetString("s3-region")
	}
	if v.IsSet("log-level") {
		cfg.Observability.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-format") {
		cfg.Observability.LogFormat = v.GetString("log-format")
	}
	if v.IsSet("metrics-file") {
		cfg.Observability.MetricsFile = v.GetString("metrics-file")
	}
	if v.IsSet("trace") {
		cfg.Observability.EnableTracing = v.GetBool("trace")
	}
	if v.IsSet("trace-file") {
		cfg.Observability.TraceFile = v.GetString("trace-file")
	}
	if v.IsSet("resource-usage") {
		cfg.Observability.ResourceUsage = v.GetBool("resource-usage")
	}
}

func runAnalyze(ctx context.Context, cfg *config.Config, withStats bool, stdout io.Writer) error {
	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogFormat,
	}); err != nil {
		return tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConfig, "failed to initialize logger")
	}
	defer func() { _ = logger.Sync() }()

	ctx = logger.ContextWithRunID(ctx, uuid.NewString())
	log := logger.WithContext(ctx)
	monitor := performance.NewResourceMonitor()

	tracer, closeTraces, err := newTracer(cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
		closeTraces()
	}()

	collector := metrics.NewCollector("tripstat")
	alg, _ := compression.ParseAlgorithm(cfg.Input.Compression)
	runner, err := pipeline.NewRunner(&pipeline.Config{
		Inputs:      cfg.Input.Paths,
		Compression: alg,
		Analyzer:    cfg.AnalyzerOptions(),
		Opener: source.OpenerConfig{
			S3Region:           cfg.Input.S3Region,
			S3Concurrency:      cfg.Input.S3Concurrency,
			GCSCredentialsFile: cfg.Input.GCSCredentialsFile,
			TempDir:            cfg.Input.TempDir,
		},
	}, logger.Get(), pipeline.WithCollector(collector), pipeline.WithTracer(tracer))
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("failed to close remote clients", zap.Error(err))
		}
	}()

	result, runErr := runner.Run(ctx)

	if cfg.Observability.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.Observability.MetricsFile); err != nil {
			log.Warn("failed to write metrics file", zap.Error(err), zap.String("path", cfg.Observability.MetricsFile))
		}
	}
	if cfg.Observability.ResourceUsage {
		usage := monitor.Usage()
		fields := usage.Fields()
		if result != nil {
			linesPerSec, mbPerSec := usage.Throughput(result.Stats.LinesRead, result.Stats.BytesRead)
			fields = append(fields, zap.Float64("lines_per_second", linesPerSec), zap.Float64("mb_per_second", mbPerSec))
		}
		log.Info("resource usage", fields...)
	}
	if runErr != nil {
		return runErr
	}

	rep := runner.Report(cfg.Analyzer.TopK, cfg.WantsReport(config.ReportZones), cfg.WantsReport(config.ReportSlots))
	if withStats {
		stats := result.Stats
		rep.Stats = &stats
	}
	return writeReport(cfg.Output, rep, stdout)
}

func newTracer(obs config.ObservabilityConfig) (*observability.Tracer, func(), error) {
	tcfg := observability.DefaultTracingConfig()
	tcfg.Enabled = obs.EnableTracing
	tcfg.ServiceVersion = version
	closeFn := func() {}

	if obs.EnableTracing && obs.TraceFile != "" {
		f, err := os.Create(obs.TraceFile)
		if err != nil {
			return nil, nil, tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeFile, "failed to create trace file").
				WithDetail("path", obs.TraceFile)
		}
		tcfg.Writer = f
		closeFn = func() { _ = f.Close() }
	}

	tracer, err := observability.NewTracer(tcfg)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return tracer, closeFn, nil
}

func writeReport(out config.OutputConfig, rep *render.Report, stdout io.Writer) error {
	format, err := render.ParseFormat(out.Format)
	if err != nil {
		return err
	}
	if out.Path == "" {
		return render.Write(stdout, format, rep)
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeFile, "failed to create report file").
			WithDetail("path", out.Path)
	}
	if err := encodeReport(f, out.Path, format, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// encodeReport renders rep into dst, compressed according to path's
// extension. dst is left open.
func encodeReport(dst io.Writer, path string, format render.Format, rep *render.Report) error {
	w, err := compression.NewWriter(dst, compression.Detect(path))
	if err != nil {
		return err
	}
	if err := render.Write(w, format, rep); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
