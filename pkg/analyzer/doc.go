// Package analyzer aggregates ride events from delimited text files into
// pickup-zone and (zone, hour) counts.
//
// # Input
//
// Each input is one header line followed by data lines, separated by '\n'
// with an optional '\r' before it. Columns are positional: the second column
// is the pickup zone and, somewhere after it, a date-time field holds the
// pickup hour as "... HH:". The header fixes the expected delimiter count for
// the rest of the input; lines that disagree with it, or whose zone or hour
// cannot be extracted, are dropped silently.
//
// # Usage
//
//	a := analyzer.New(nil)
//	for _, path := range paths {
//	    if err := a.IngestFile(path); err != nil {
//	        return err // only when the zone table is exhausted
//	    }
//	}
//	zones := a.TopZones(analyzer.DefaultTopK)
//	slots := a.TopBusySlots(analyzer.DefaultTopK)
//
// Counters accumulate across ingest calls on the same TripAnalyzer. Reports
// are pure reads and may be taken between ingests.
//
// # Memory
//
// Ingest reads through one reusable buffer and does not allocate per line.
// Zone names are copied into the zone table the first time they are seen.
//
// # Thread Safety
//
// A TripAnalyzer must be used from a single goroutine.
package analyzer
