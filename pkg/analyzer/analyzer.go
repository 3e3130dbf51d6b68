package analyzer

import (
	"github.com/ajitpratap0/tripstat/pkg/intern"
)

const (
	// HoursPerDay is the number of slot counters kept per zone.
	HoursPerDay = 24

	// DefaultTopK is the report length used when the caller has no preference.
	DefaultTopK = 10

	// DefaultBufferSize is the read chunk size.
	DefaultBufferSize = 4 << 20

	// DefaultDelimiter separates columns.
	DefaultDelimiter = ','

	// unsetColumns marks that no header has been seen since the last reset.
	unsetColumns = -1

	reserveZones = 50000
	reserveSlots = reserveZones * HoursPerDay
)

// Config tunes a TripAnalyzer. The zero value of any field selects its
// default.
type Config struct {
	// BufferSize is the read chunk size in bytes.
	BufferSize int
	// InitialBuckets is the starting zone table size.
	InitialBuckets int
	// MaxBuckets caps zone table growth.
	MaxBuckets int
	// Delimiter separates columns.
	Delimiter byte
}

// DefaultConfig returns the configuration used by New(nil).
func DefaultConfig() *Config {
	return &Config{
		BufferSize:     DefaultBufferSize,
		InitialBuckets: intern.DefaultInitialBuckets,
		MaxBuckets:     intern.MaxBuckets,
		Delimiter:      DefaultDelimiter,
	}
}

// TripAnalyzer owns the zone table and both count arrays.
type TripAnalyzer struct {
	zones *intern.Table

	// zoneCounts[id] is the total for a zone; slotCounts[id*24+hour] the
	// total for one of its hours. Both grow in lockstep with zones.
	zoneCounts []int64
	slotCounts []int64

	// expectedColumns is the delimiter count of the header of the input
	// currently being ingested, or unsetColumns before it has been read.
	expectedColumns int

	delimiter  byte
	bufferSize int
	buf        []byte

	stats Stats
}

// New creates a TripAnalyzer. A nil cfg uses DefaultConfig.
func New(cfg *Config) *TripAnalyzer {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = def.BufferSize
	}
	delimiter := cfg.Delimiter
	if delimiter == 0 {
		delimiter = def.Delimiter
	}

	return &TripAnalyzer{
		zones:           intern.NewTable(cfg.InitialBuckets, cfg.MaxBuckets),
		expectedColumns: unsetColumns,
		delimiter:       delimiter,
		bufferSize:      bufferSize,
	}
}

// NumZones returns the number of distinct zones seen so far.
func (a *TripAnalyzer) NumZones() int {
	return a.zones.Len()
}

// TableStats exposes the zone table counters.
func (a *TripAnalyzer) TableStats() intern.TableStats {
	return a.zones.Stats()
}
