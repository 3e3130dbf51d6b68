// Package intern assigns dense integer ids to zone names.
//
// A Table is an open-addressing hash set with linear probing. Every distinct
// byte string seen by Intern receives the next id in first-seen order, and the
// id stays valid for the lifetime of the table. Callers supply the hash of the
// key (normally computed while scanning the input, see Hash), so the key bytes
// are never scanned twice on the hot path.
//
// # Layout
//
// The bucket array holds ZoneIDs, or Empty for unused buckets. Its length is
// always a power of two and the load factor is kept at or below one half by
// doubling before an insert would cross the threshold. Growth re-inserts every
// record using its cached hash; ids are never renumbered.
//
// # Capacity
//
// The bucket count is capped at MaxBuckets. Once a table at its cap is half
// full, Intern keeps resolving names it already holds but refuses new ones
// with ErrCapacityExceeded instead of letting the load factor degrade.
//
// # Thread Safety
//
// A Table is not safe for concurrent use.
package intern
