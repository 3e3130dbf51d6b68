// Package config provides run configuration for tripstat.
//
// A single Config structure describes one analysis run and is organised into
// sections:
//   - Input: where ride-event files come from and how they are compressed
//   - Analyzer: report length, read buffer and zone table sizing, delimiter
//   - Output: report format, destination and which reports to emit
//   - Observability: logging, metrics export, tracing, resource reporting
//
// # Usage
//
// ## Loading a file
//
//	cfg := config.NewDefault()
//	if err := config.Load("tripstat.yaml", cfg); err != nil {
//		log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// Fields missing from the file keep the defaults set by NewDefault.
//
// ## Environment Variables
//
// Values may reference environment variables with ${VAR_NAME}; they are
// substituted before the YAML is parsed:
//
//	input:
//	  paths:
//	    - s3://${TRIPS_BUCKET}/2024/*.csv.zst
//
// ## Example File
//
//	input:
//	  paths: ["data/yellow_2024-01.csv", "data/yellow_2024-02.csv.gz"]
//	  compression: auto
//	analyzer:
//	  top_k: 10
//	  delimiter: ","
//	output:
//	  format: table
//	  reports: [zones, slots]
//	observability:
//	  log_level: info
//	  metrics_file: /var/lib/node_exporter/tripstat.prom
package config
