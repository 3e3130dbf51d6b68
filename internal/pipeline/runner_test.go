package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tripstat/pkg/analyzer"
	"github.com/ajitpratap0/tripstat/pkg/compression"
	"github.com/ajitpratap0/tripstat/pkg/logger"
	"github.com/ajitpratap0/tripstat/pkg/metrics"
	"github.com/ajitpratap0/tripstat/pkg/observability"
	"github.com/ajitpratap0/tripstat/pkg/testutil"
	"github.com/ajitpratap0/tripstat/pkg/tripstaterrors"
)

const header = "trip_id,zone,pickup"

func writeIn(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func counterValue(t *testing.T, c *metrics.Collector, name string, label, value string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label == "" {
				return m.GetCounter().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRunMixedInputs(t *testing.T) {
	dir := t.TempDir()
	plain := writeIn(t, dir, "jan.csv", []byte(testutil.Lines(
		header,
		"1,A,2024-01-01 08:15:00",
		"2,B,2024-01-01 09:00:00",
		"3,A,2024-01-01 08:45:00",
	)))
	gz := writeIn(t, dir, "feb.csv.gz", testutil.Compress(t, compression.Gzip, testutil.Lines(
		header,
		"4,B,2024-02-01 09:10:00",
		"5,C,2024-02-01 23:59:00",
	)))
	zst := writeIn(t, dir, "mar.csv.zst", testutil.Compress(t, compression.Zstd, testutil.Lines(
		header,
		"6,B,2024-03-01 09:30:00",
		"bad line",
	)))
	missing := filepath.Join(dir, "apr.csv")

	collector := metrics.NewCollector("tripstat")
	runner, err := NewRunner(&Config{
		Inputs:      []string{plain, gz, missing, zst},
		Compression: compression.Auto,
	}, testutil.TestLogger(t), WithCollector(collector))
	require.NoError(t, err)
	defer runner.Close()

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Inputs)
	assert.Equal(t, []string{missing}, result.Unavailable)
	assert.Equal(t, 3, result.Zones)
	assert.Equal(t, int64(6), result.Stats.LinesAccepted)
	assert.Equal(t, int64(1), result.Stats.DroppedColumnCount)
	assert.Equal(t, int64(3), result.Stats.HeaderLines)

	rep := runner.Report(0, true, true)
	assert.Equal(t, []analyzer.ZoneCount{
		{Zone: "B", Count: 3},
		{Zone: "A", Count: 2},
		{Zone: "C", Count: 1},
	}, rep.Zones)
	assert.Equal(t, []analyzer.SlotCount{
		{Zone: "B", Hour: 9, Count: 3},
		{Zone: "A", Hour: 8, Count: 2},
		{Zone: "C", Hour: 23, Count: 1},
	}, rep.Slots)

	assert.Equal(t, 3.0, counterValue(t, collector, "tripstat_inputs_total", "status", metrics.StatusIngested))
	assert.Equal(t, 1.0, counterValue(t, collector, "tripstat_inputs_total", "status", metrics.StatusNotOpened))
	assert.Equal(t, 0.0, counterValue(t, collector, "tripstat_inputs_total", "status", metrics.StatusFailed))
	assert.Equal(t, 6.0, counterValue(t, collector, "tripstat_lines_accepted_total", "", ""))
}

func TestRunGlob(t *testing.T) {
	dir := t.TempDir()
	writeIn(t, dir, "b.csv", []byte(testutil.Lines(header, "1,Late,2024-01-01 10:00")))
	writeIn(t, dir, "a.csv", []byte(testutil.Lines(header, "1,Early,2024-01-01 10:00")))

	runner, err := NewRunner(&Config{Inputs: []string{filepath.Join(dir, "*.csv")}}, nil)
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inputs)
	assert.Empty(t, result.Unavailable)
	assert.Equal(t, []analyzer.ZoneCount{
		{Zone: "Early", Count: 1},
		{Zone: "Late", Count: 1},
	}, runner.Report(0, true, false).Zones)
}

func TestRunForcedCompression(t *testing.T) {
	dir := t.TempDir()
	path := writeIn(t, dir, "trips.dat", testutil.Compress(t, compression.LZ4, testutil.Lines(
		header, "1,A,2024-01-01 07:00",
	)))

	runner, err := NewRunner(&Config{Inputs: []string{path}, Compression: compression.LZ4}, nil)
	require.NoError(t, err)
	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Stats.LinesAccepted)
}

func TestRunUndecodableInputIsSkipped(t *testing.T) {
	dir := t.TempDir()
	fake := writeIn(t, dir, "fake.csv.gz", []byte(testutil.Lines(header, "1,A,2024-01-01 07:00")))
	good := writeIn(t, dir, "good.csv", []byte(testutil.Lines(header, "1,B,2024-01-01 07:00")))

	collector := metrics.NewCollector("tripstat")
	runner, err := NewRunner(&Config{Inputs: []string{fake, good}, Compression: compression.Auto}, nil,
		WithCollector(collector))
	require.NoError(t, err)
	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{fake}, result.Unavailable)
	assert.Equal(t, []analyzer.ZoneCount{{Zone: "B", Count: 1}}, runner.Report(10, true, false).Zones)
	assert.Equal(t, 1.0, counterValue(t, collector, "tripstat_inputs_total", "status", metrics.StatusFailed))
	assert.Equal(t, 0.0, counterValue(t, collector, "tripstat_inputs_total", "status", metrics.StatusNotOpened))
	assert.Equal(t, 1.0, counterValue(t, collector, "tripstat_inputs_total", "status", metrics.StatusIngested))
}

func TestRunLogsCarryRunAndInput(t *testing.T) {
	dir := t.TempDir()
	path := writeIn(t, dir, "a.csv", []byte(testutil.Lines(header, "1,A,2024-01-01 01:00")))
	missing := filepath.Join(dir, "b.csv")

	core, logs := observer.New(zap.InfoLevel)
	runner, err := NewRunner(&Config{Inputs: []string{path, missing}}, zap.New(core))
	require.NoError(t, err)

	ctx := logger.ContextWithRunID(context.Background(), "run-7")
	_, err = runner.Run(ctx)
	require.NoError(t, err)

	skipped := logs.FilterMessage("input not readable, skipping").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, missing, skipped[0].ContextMap()["input"])
	assert.Equal(t, "run-7", skipped[0].ContextMap()["run_id"])

	done := logs.FilterMessage("run completed").All()
	require.Len(t, done, 1)
	assert.Equal(t, "run-7", done[0].ContextMap()["run_id"])
	assert.NotContains(t, done[0].ContextMap(), "input")
}

func TestRunCapacityErrorStops(t *testing.T) {
	dir := t.TempDir()
	first := writeIn(t, dir, "a.csv", []byte(testutil.Lines(
		header,
		"1,A,2024-01-01 01:00",
		"2,B,2024-01-01 02:00",
		"3,C,2024-01-01 03:00",
	)))
	second := writeIn(t, dir, "b.csv", []byte(testutil.Lines(header, "1,A,2024-01-01 01:00")))

	runner, err := NewRunner(&Config{
		Inputs:   []string{first, second},
		Analyzer: &analyzer.Config{InitialBuckets: 2, MaxBuckets: 4},
	}, nil)
	require.NoError(t, err)

	result, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, tripstaterrors.IsType(err, tripstaterrors.ErrorTypeCapacity))
	require.NotNil(t, result)
	assert.Equal(t, int64(2), result.Stats.LinesAccepted)
	assert.Equal(t, int64(1), result.Stats.FilesIngested)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeIn(t, dir, "a.csv", []byte(testutil.Lines(header, "1,A,2024-01-01 01:00")))

	runner, err := NewRunner(&Config{Inputs: []string{path}}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), runner.Analyzer().Stats().FilesIngested)
}

func TestRunInvalidLocation(t *testing.T) {
	runner, err := NewRunner(&Config{Inputs: []string{"s3://bucket-only"}}, nil)
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.True(t, tripstaterrors.IsType(err, tripstaterrors.ErrorTypeValidation))
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(nil, nil)
	assert.True(t, tripstaterrors.IsType(err, tripstaterrors.ErrorTypeConfig))

	_, err = NewRunner(&Config{}, nil)
	assert.True(t, tripstaterrors.IsType(err, tripstaterrors.ErrorTypeValidation))
}

func TestRunEmitsSpans(t *testing.T) {
	dir := t.TempDir()
	path := writeIn(t, dir, "a.csv", []byte(testutil.Lines(header, "1,A,2024-01-01 01:00")))

	var traces bytes.Buffer
	cfg := observability.DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Writer = &traces
	tracer, err := observability.NewTracer(cfg)
	require.NoError(t, err)

	runner, err := NewRunner(&Config{Inputs: []string{path, path + ".missing"}}, nil, WithTracer(tracer))
	require.NoError(t, err)
	_, err = runner.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tracer.Shutdown(context.Background()))

	out := traces.String()
	assert.Equal(t, 2, bytes.Count(traces.Bytes(), []byte(`"Name":"tripstat.ingest"`)))
	assert.Contains(t, out, path+".missing")
	assert.Contains(t, out, "tripstat.lines_accepted")
}
