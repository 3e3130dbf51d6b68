package intern

import (
	"fmt"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intern(t *testing.T, tbl *Table, s string) ZoneID {
	t.Helper()
	id, err := tbl.Intern([]byte(s), Hash([]byte(s)))
	require.NoError(t, err)
	return id
}

func TestHashMatchesFNV1a(t *testing.T) {
	for _, s := range []string{"", "a", "Midtown Center", "JFK Airport", "Upper East Side North"} {
		h := fnv.New64a()
		_, _ = h.Write([]byte(s))
		assert.Equal(t, h.Sum64(), Hash([]byte(s)), "hash of %q", s)
	}
}

func TestInternAssignsDenseIDsInFirstSeenOrder(t *testing.T) {
	tbl := NewTable(16, 0)

	assert.Equal(t, ZoneID(0), intern(t, tbl, "Astoria"))
	assert.Equal(t, ZoneID(1), intern(t, tbl, "Bronx Park"))
	assert.Equal(t, ZoneID(0), intern(t, tbl, "Astoria"))
	assert.Equal(t, ZoneID(2), intern(t, tbl, "Chelsea"))
	assert.Equal(t, ZoneID(1), intern(t, tbl, "Bronx Park"))

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "Astoria", tbl.Name(0))
	assert.Equal(t, "Bronx Park", tbl.Name(1))
	assert.Equal(t, "Chelsea", tbl.Name(2))

	st := tbl.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(3), st.Misses)
}

func TestInternCopiesKeyBytes(t *testing.T) {
	tbl := NewTable(16, 0)
	buf := []byte("Harlem")
	id, err := tbl.Intern(buf, Hash(buf))
	require.NoError(t, err)

	copy(buf, "XXXXXX")
	assert.Equal(t, "Harlem", tbl.Name(id))

	again, err := tbl.Intern([]byte("Harlem"), Hash([]byte("Harlem")))
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestInternDistinguishesCollidingHashes(t *testing.T) {
	tbl := NewTable(8, 0)
	const forced = uint64(42)

	names := []string{"a", "b", "ab", "ba", "abc"}
	ids := make(map[string]ZoneID)
	for _, n := range names {
		id, err := tbl.Intern([]byte(n), forced)
		require.NoError(t, err)
		ids[n] = id
	}
	require.Len(t, ids, len(names))

	seen := make(map[ZoneID]bool)
	for _, n := range names {
		id, err := tbl.Intern([]byte(n), forced)
		require.NoError(t, err)
		assert.Equal(t, ids[n], id, "re-intern %q", n)
		assert.Equal(t, n, tbl.Name(id))
		assert.False(t, seen[id], "id %d issued twice", id)
		seen[id] = true
	}
	assert.Positive(t, tbl.Stats().Probes)
}

func TestInternSameLengthDifferentBytesSameHash(t *testing.T) {
	tbl := NewTable(4, 0)
	a, err := tbl.Intern([]byte("xy"), 7)
	require.NoError(t, err)
	b, err := tbl.Intern([]byte("yx"), 7)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGrowthKeepsIDsResolvable(t *testing.T) {
	tbl := NewTable(2, 0)
	const n = 5000

	for i := 0; i < n; i++ {
		id := intern(t, tbl, fmt.Sprintf("zone-%d", i))
		require.Equal(t, ZoneID(i), id)
		require.LessOrEqual(t, tbl.Len(), tbl.Capacity()/2, "load factor above one half")
	}

	st := tbl.Stats()
	assert.Positive(t, st.Grows)
	assert.Equal(t, n, st.Entries)
	assert.Equal(t, 0, st.Buckets&(st.Buckets-1), "bucket count must be a power of two")

	for i := 0; i < n; i++ {
		name := fmt.Sprintf("zone-%d", i)
		assert.Equal(t, name, tbl.Name(ZoneID(i)))
		assert.Equal(t, ZoneID(i), intern(t, tbl, name))
	}
}

func TestGrowthTriggersAtHalfLoad(t *testing.T) {
	tbl := NewTable(8, 0)
	for i := 0; i < 4; i++ {
		intern(t, tbl, fmt.Sprintf("z%d", i))
	}
	assert.Equal(t, 8, tbl.Capacity())

	intern(t, tbl, "z4")
	assert.Equal(t, 16, tbl.Capacity())
}

func TestCapacityExceeded(t *testing.T) {
	tbl := NewTable(2, 4)

	a := intern(t, tbl, "a")
	b := intern(t, tbl, "b")
	assert.Equal(t, 4, tbl.Capacity())

	id, err := tbl.Intern([]byte("c"), Hash([]byte("c")))
	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, Empty, id)
	assert.Equal(t, 2, tbl.Len())

	// Names already held still resolve.
	assert.Equal(t, a, intern(t, tbl, "a"))
	assert.Equal(t, b, intern(t, tbl, "b"))
	assert.Equal(t, 4, tbl.Capacity())
}

func TestNewTableRoundsSizes(t *testing.T) {
	tests := []struct {
		initial, max int
		wantCap      int
	}{
		{initial: 0, max: 0, wantCap: DefaultInitialBuckets},
		{initial: 3, max: 0, wantCap: 4},
		{initial: 1, max: 0, wantCap: 2},
		{initial: 100, max: 64, wantCap: 64},
		{initial: 1000, max: 1000, wantCap: 1024},
	}
	for _, tt := range tests {
		tbl := NewTable(tt.initial, tt.max)
		assert.Equal(t, tt.wantCap, tbl.Capacity(), "NewTable(%d, %d)", tt.initial, tt.max)
	}
}

func BenchmarkInternHit(b *testing.B) {
	tbl := NewTable(0, 0)
	keys := make([][]byte, 256)
	hashes := make([]uint64, len(keys))
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("Zone Number %d", i))
		hashes[i] = Hash(keys[i])
		_, _ = tbl.Intern(keys[i], hashes[i])
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i & 255
		_, _ = tbl.Intern(keys[j], hashes[j])
	}
}
