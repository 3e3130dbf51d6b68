package analyzer_test

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/tripstat/pkg/analyzer"
)

func Example() {
	a := analyzer.New(&analyzer.Config{InitialBuckets: 64})

	input := "id,zone,time\n1,A,08:15\n2,B,08:16\n3,A,09:00\n"
	if err := a.IngestReader(strings.NewReader(input)); err != nil {
		fmt.Println(err)
		return
	}

	for _, z := range a.TopZones(analyzer.DefaultTopK) {
		fmt.Printf("%s %d\n", z.Zone, z.Count)
	}
	for _, s := range a.TopBusySlots(analyzer.DefaultTopK) {
		fmt.Printf("%s %02d %d\n", s.Zone, s.Hour, s.Count)
	}

	// Output:
	// A 2
	// B 1
	// A 08 1
	// A 09 1
	// B 08 1
}
