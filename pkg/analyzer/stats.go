package analyzer

// Stats counts what ingest did with its input. It is cumulative across
// ingest calls and never affects report output.
type Stats struct {
	FilesIngested  int64 `json:"files_ingested"`
	FilesNotOpened int64 `json:"files_not_opened"`
	ReadErrors     int64 `json:"read_errors"`
	BytesRead      int64 `json:"bytes_read"`

	// LinesRead counts non-empty lines, headers included.
	LinesRead     int64 `json:"lines_read"`
	HeaderLines   int64 `json:"header_lines"`
	LinesAccepted int64 `json:"lines_accepted"`

	DroppedColumnCount int64 `json:"dropped_column_count"`
	DroppedMissingZone int64 `json:"dropped_missing_zone"`
	DroppedMissingTime int64 `json:"dropped_missing_time"`
	DroppedBadHour     int64 `json:"dropped_bad_hour"`
}

// Dropped returns the number of data lines that were discarded.
func (s Stats) Dropped() int64 {
	return s.DroppedColumnCount + s.DroppedMissingZone + s.DroppedMissingTime + s.DroppedBadHour
}

// Sub returns the per-field difference s - prev, for reporting a single
// ingest call.
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		FilesIngested:      s.FilesIngested - prev.FilesIngested,
		FilesNotOpened:     s.FilesNotOpened - prev.FilesNotOpened,
		ReadErrors:         s.ReadErrors - prev.ReadErrors,
		BytesRead:          s.BytesRead - prev.BytesRead,
		LinesRead:          s.LinesRead - prev.LinesRead,
		HeaderLines:        s.HeaderLines - prev.HeaderLines,
		LinesAccepted:      s.LinesAccepted - prev.LinesAccepted,
		DroppedColumnCount: s.DroppedColumnCount - prev.DroppedColumnCount,
		DroppedMissingZone: s.DroppedMissingZone - prev.DroppedMissingZone,
		DroppedMissingTime: s.DroppedMissingTime - prev.DroppedMissingTime,
		DroppedBadHour:     s.DroppedBadHour - prev.DroppedBadHour,
	}
}

// Stats returns a snapshot of the ingest counters.
func (a *TripAnalyzer) Stats() Stats {
	return a.stats
}

func (s *Stats) drop(reason dropReason) {
	switch reason {
	case dropColumnCount:
		s.DroppedColumnCount++
	case dropMissingZone:
		s.DroppedMissingZone++
	case dropMissingTime:
		s.DroppedMissingTime++
	case dropBadHour:
		s.DroppedBadHour++
	}
}
