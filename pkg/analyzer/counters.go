package analyzer

import (
	"github.com/ajitpratap0/tripstat/pkg/intern"
)

// recordEvent counts one event for zone id at hour. A zone seen for the first
// time gets its total and 24 hour slots appended before the increment.
func (a *TripAnalyzer) recordEvent(id intern.ZoneID, hour int) {
	for int(id) >= len(a.zoneCounts) {
		a.zoneCounts = append(a.zoneCounts, 0)
		a.slotCounts = append(a.slotCounts, make([]int64, HoursPerDay)...)
	}
	a.zoneCounts[id]++
	a.slotCounts[int(id)*HoursPerDay+hour]++
}

// reserve pre-sizes the count arrays the first time anything is ingested.
func (a *TripAnalyzer) reserve() {
	if a.zoneCounts != nil {
		return
	}
	a.zoneCounts = make([]int64, 0, reserveZones)
	a.slotCounts = make([]int64, 0, reserveSlots)
}
