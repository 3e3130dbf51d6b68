package config

import (
	"github.com/ajitpratap0/tripstat/pkg/analyzer"
	"github.com/ajitpratap0/tripstat/pkg/compression"
	"github.com/ajitpratap0/tripstat/pkg/intern"
	"github.com/ajitpratap0/tripstat/pkg/render"
	"github.com/ajitpratap0/tripstat/pkg/tripstaterrors"
)

// Report names accepted in OutputConfig.Reports.
const (
	ReportZones = "zones"
	ReportSlots = "slots"
)

// Config describes one analysis run.
type Config struct {
	// Input selects the files to ingest
	Input InputConfig `yaml:"input" json:"input"`

	// Analyzer tunes the ingest core
	Analyzer AnalyzerConfig `yaml:"analyzer" json:"analyzer"`

	// Output controls report rendering
	Output OutputConfig `yaml:"output" json:"output"`

	// Observability settings for logs, metrics and traces
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// InputConfig lists input locations.
type InputConfig struct {
	// Paths are local files, glob patterns, s3://bucket/key or gs://bucket/object
	Paths []string `yaml:"paths" json:"paths"`
	// Compression is auto (by extension), none, gzip, zstd, snappy, s2 or lz4
	Compression string `yaml:"compression" json:"compression"`
	// TempDir receives downloaded S3 objects ("" = system default)
	TempDir string `yaml:"temp_dir" json:"temp_dir"`
	// S3Region overrides the AWS default region chain
	S3Region string `yaml:"s3_region" json:"s3_region"`
	// S3Concurrency is the number of parallel part downloads per object
	S3Concurrency int `yaml:"s3_concurrency" json:"s3_concurrency"`
	// GCSCredentialsFile is a service account key file ("" = default credentials)
	GCSCredentialsFile string `yaml:"gcs_credentials_file" json:"gcs_credentials_file"`
}

// AnalyzerConfig tunes the ingest core.
type AnalyzerConfig struct {
	// TopK limits each report; 0 or less returns every non-zero row
	TopK int `yaml:"top_k" json:"top_k"`
	// BufferSize is the read chunk size in bytes
	BufferSize int `yaml:"buffer_size" json:"buffer_size"`
	// InitialBuckets is the starting zone table size
	InitialBuckets int `yaml:"initial_buckets" json:"initial_buckets"`
	// MaxBuckets caps zone table growth
	MaxBuckets int `yaml:"max_buckets" json:"max_buckets"`
	// Delimiter is the single-byte column separator
	Delimiter string `yaml:"delimiter" json:"delimiter"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	// Format is table, json or csv
	Format string `yaml:"format" json:"format"`
	// Path is the report file ("" = stdout)
	Path string `yaml:"path" json:"path"`
	// Reports selects zones and/or slots
	Reports []string `yaml:"reports" json:"reports"`
}

// ObservabilityConfig contains logging, metrics and tracing settings.
type ObservabilityConfig struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFormat is json or console
	LogFormat string `yaml:"log_format" json:"log_format"`
	// MetricsFile receives Prometheus text-format metrics after the run
	MetricsFile string `yaml:"metrics_file" json:"metrics_file"`
	// EnableTracing emits one span per input
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TraceFile receives exported spans ("" = stderr)
	TraceFile string `yaml:"trace_file" json:"trace_file"`
	// ResourceUsage logs process memory after the run
	ResourceUsage bool `yaml:"resource_usage" json:"resource_usage"`
}

// NewDefault returns a configuration with production defaults.
func NewDefault() *Config {
	return &Config{
		Input: InputConfig{
			Compression: string(compression.Auto),
		},
		Analyzer: AnalyzerConfig{
			TopK:           analyzer.DefaultTopK,
			BufferSize:     analyzer.DefaultBufferSize,
			InitialBuckets: intern.DefaultInitialBuckets,
			MaxBuckets:     intern.MaxBuckets,
			Delimiter:      string(rune(analyzer.DefaultDelimiter)),
		},
		Output: OutputConfig{
			Format:  string(render.FormatTable),
			Reports: []string{ReportZones, ReportSlots},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for values the run cannot use.
func (c *Config) Validate() error {
	if _, err := compression.ParseAlgorithm(c.Input.Compression); err != nil {
		return tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConfig, "invalid input.compression")
	}
	if c.Analyzer.BufferSize < 0 {
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "analyzer.buffer_size cannot be negative").
			WithDetail("buffer_size", c.Analyzer.BufferSize)
	}
	if c.Analyzer.InitialBuckets < 0 || c.Analyzer.MaxBuckets < 0 {
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "analyzer bucket counts cannot be negative")
	}
	if c.Analyzer.MaxBuckets > intern.MaxBuckets {
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "analyzer.max_buckets exceeds limit").
			WithDetail("max_buckets", c.Analyzer.MaxBuckets).
			WithDetail("limit", intern.MaxBuckets)
	}
	if len(c.Analyzer.Delimiter) != 1 {
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "analyzer.delimiter must be a single byte").
			WithDetail("delimiter", c.Analyzer.Delimiter)
	}
	switch d := c.Analyzer.Delimiter[0]; d {
	case '\n', '\r':
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "analyzer.delimiter cannot be a line terminator")
	case ' ', ':':
		// Space and colon mark the hour inside the time field.
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "analyzer.delimiter cannot be a space or colon").
			WithDetail("delimiter", c.Analyzer.Delimiter)
	}
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return tripstaterrors.Wrap(err, tripstaterrors.ErrorTypeConfig, "invalid output.format")
	}
	if len(c.Output.Reports) == 0 {
		return tripstaterrors.New(tripstaterrors.ErrorTypeConfig, "output.reports is empty")
	}
	for _, r := range c.Output.Reports {
		if r != ReportZones && r != ReportSlots {
			return tripstaterrors.Newf(tripstaterrors.ErrorTypeConfig, "unknown report %q", r).
				WithDetail("allowed", []string{ReportZones, ReportSlots})
		}
	}
	return nil
}

// AnalyzerOptions converts the analyzer section for analyzer.New.
func (c *Config) AnalyzerOptions() *analyzer.Config {
	var delim byte
	if len(c.Analyzer.Delimiter) == 1 {
		delim = c.Analyzer.Delimiter[0]
	}
	return &analyzer.Config{
		BufferSize:     c.Analyzer.BufferSize,
		InitialBuckets: c.Analyzer.InitialBuckets,
		MaxBuckets:     c.Analyzer.MaxBuckets,
		Delimiter:      delim,
	}
}

// WantsReport reports whether name is among the selected reports.
func (c *Config) WantsReport(name string) bool {
	for _, r := range c.Output.Reports {
		if r == name {
			return true
		}
	}
	return false
}
