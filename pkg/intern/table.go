package intern

import (
	"errors"
	"math/bits"
)

// ZoneID is a dense, zero-based id handed out in first-seen order.
type ZoneID = int32

const (
	// Empty marks an unused bucket.
	Empty ZoneID = -1

	// DefaultInitialBuckets is sized so that typical city-scale zone sets
	// never trigger a resize.
	DefaultInitialBuckets = 1 << 21

	// MaxBuckets is the largest bucket count a table grows to.
	MaxBuckets = 1 << 31

	minBuckets = 2
)

// ErrCapacityExceeded is returned by Intern when a new name would push a
// table that is already at its maximum bucket count past half load.
var ErrCapacityExceeded = errors.New("intern: zone table is at maximum capacity")

// record is stored once, on first occurrence, and never mutated.
type record struct {
	name string
	id   ZoneID
	hash uint64
}

// TableStats reports table occupancy and probe behaviour.
type TableStats struct {
	Entries int
	Buckets int
	Hits    int64 // lookups that found an existing name
	Misses  int64 // lookups that minted a new id
	Probes  int64 // occupied buckets skipped while probing
	Grows   int64
}

// Table interns byte strings into ZoneIDs.
type Table struct {
	buckets    []ZoneID
	mask       uint64
	threshold  int
	maxBuckets int

	records []record

	hits   int64
	misses int64
	probes int64
	grows  int64
}

// NewTable creates a table with initialBuckets buckets that may grow up to
// maxBuckets. Both are rounded up to a power of two; non-positive values
// select DefaultInitialBuckets and MaxBuckets.
func NewTable(initialBuckets, maxBuckets int) *Table {
	if maxBuckets <= 0 || maxBuckets > MaxBuckets {
		maxBuckets = MaxBuckets
	}
	maxBuckets = roundPow2(maxBuckets)
	if initialBuckets <= 0 {
		initialBuckets = DefaultInitialBuckets
	}
	initialBuckets = roundPow2(initialBuckets)
	if initialBuckets > maxBuckets {
		initialBuckets = maxBuckets
	}

	t := &Table{maxBuckets: maxBuckets}
	t.resize(initialBuckets)
	return t
}

// Intern returns the id of b, minting a new one if b has not been seen.
// hash must be Hash(b) or the equivalent streaming computation. The bytes are
// copied, so b may be reused by the caller as soon as Intern returns.
func (t *Table) Intern(b []byte, hash uint64) (ZoneID, error) {
	if len(t.records) >= t.threshold && len(t.buckets) < t.maxBuckets {
		t.resize(len(t.buckets) * 2)
	}

	idx := hash & t.mask
	for {
		id := t.buckets[idx]
		if id == Empty {
			break
		}
		r := &t.records[id]
		if r.hash == hash && len(r.name) == len(b) && r.name == string(b) {
			t.hits++
			return id, nil
		}
		t.probes++
		idx = (idx + 1) & t.mask
	}

	// At the cap the threshold could not be raised; refuse rather than let
	// the load factor climb.
	if len(t.records) >= t.threshold {
		return Empty, ErrCapacityExceeded
	}

	id := ZoneID(len(t.records))
	t.records = append(t.records, record{name: string(b), id: id, hash: hash})
	t.buckets[idx] = id
	t.misses++
	return id, nil
}

// Name returns the name interned under id. It panics if id was not issued by
// this table.
func (t *Table) Name(id ZoneID) string {
	return t.records[id].name
}

// Len returns the number of interned names.
func (t *Table) Len() int {
	return len(t.records)
}

// Capacity returns the current bucket count.
func (t *Table) Capacity() int {
	return len(t.buckets)
}

// Stats returns a snapshot of the table counters.
func (t *Table) Stats() TableStats {
	return TableStats{
		Entries: len(t.records),
		Buckets: len(t.buckets),
		Hits:    t.hits,
		Misses:  t.misses,
		Probes:  t.probes,
		Grows:   t.grows,
	}
}

// resize rebuilds the bucket array with n buckets from the cached hashes.
func (t *Table) resize(n int) {
	buckets := make([]ZoneID, n)
	for i := range buckets {
		buckets[i] = Empty
	}
	mask := uint64(n - 1)
	for i := range t.records {
		r := &t.records[i]
		idx := r.hash & mask
		for buckets[idx] != Empty {
			idx = (idx + 1) & mask
		}
		buckets[idx] = r.id
	}

	if t.buckets != nil {
		t.grows++
	}
	t.buckets = buckets
	t.mask = mask
	t.threshold = n / 2
}

func roundPow2(n int) int {
	if n < minBuckets {
		return minBuckets
	}
	return 1 << bits.Len(uint(n-1))
}
