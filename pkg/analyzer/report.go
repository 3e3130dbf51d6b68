package analyzer

import (
	"sort"

	"github.com/ajitpratap0/tripstat/pkg/intern"
)

// ZoneCount is one row of the busiest-zones report.
type ZoneCount struct {
	Zone  string `json:"zone"`
	Count int64  `json:"count"`
}

// SlotCount is one row of the busiest (zone, hour) report.
type SlotCount struct {
	Zone  string `json:"zone"`
	Hour  int    `json:"hour"`
	Count int64  `json:"count"`
}

// TopZones returns zones with a non-zero count, busiest first, ties broken by
// zone name. At most k rows are returned; k <= 0 returns all of them.
func (a *TripAnalyzer) TopZones(k int) []ZoneCount {
	results := make([]ZoneCount, 0, len(a.zoneCounts))
	for id, count := range a.zoneCounts {
		if count > 0 {
			results = append(results, ZoneCount{
				Zone:  a.zones.Name(intern.ZoneID(id)),
				Count: count,
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Zone < results[j].Zone
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// TopBusySlots returns (zone, hour) slots with a non-zero count, busiest
// first, ties broken by zone name then hour. At most k rows are returned;
// k <= 0 returns all of them.
func (a *TripAnalyzer) TopBusySlots(k int) []SlotCount {
	results := make([]SlotCount, 0)
	for id := range a.zoneCounts {
		slots := a.slotCounts[id*HoursPerDay : (id+1)*HoursPerDay]
		for hour, count := range slots {
			if count > 0 {
				results = append(results, SlotCount{
					Zone:  a.zones.Name(intern.ZoneID(id)),
					Hour:  hour,
					Count: count,
				})
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		if results[i].Zone != results[j].Zone {
			return results[i].Zone < results[j].Zone
		}
		return results[i].Hour < results[j].Hour
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}
