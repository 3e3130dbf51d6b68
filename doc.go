// Package tripstat counts ride events per pickup zone and per (zone, hour of
// day) across one or more delimited text files, and reports the busiest zones
// and time slots.
//
// # Architecture
//
// The core lives in pkg/analyzer and pkg/intern:
//
//  1. A streaming ingest loop reads each input in large chunks and splits it
//     into lines without copying them.
//
//  2. A single-pass tokenizer checks each line against the column count of
//     its file's header, hashes the zone field and extracts the hour.
//
//  3. An open-addressing table interns zone names to dense ids, which index
//     flat arrays of zone and (zone, hour) counters.
//
//  4. Reports rank non-zero counters by count, then zone name, then hour.
//
// Around the core, pkg/source and pkg/compression turn local paths, globs,
// s3:// and gs:// objects and compressed files into byte streams;
// internal/pipeline runs the inputs in order with logging (pkg/logger),
// Prometheus metrics (pkg/metrics) and OpenTelemetry spans
// (pkg/observability); pkg/render prints the reports as tables, JSON or CSV.
//
// # Quick Start
//
//	a := analyzer.New(nil)
//	for _, path := range paths {
//		if err := a.IngestFile(path); err != nil {
//			log.Fatal(err)
//		}
//	}
//	for _, z := range a.TopZones(10) {
//		fmt.Println(z.Zone, z.Count)
//	}
//
// Or from the command line:
//
//	tripstat analyze --top-k 5 data/trips-*.csv.gz
package tripstat
