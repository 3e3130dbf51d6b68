package render

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tripstat/pkg/analyzer"
)

func sampleReport() *Report {
	return &Report{
		Zones: []analyzer.ZoneCount{
			{Zone: "A", Count: 2},
			{Zone: "Upper East Side, North", Count: 1},
		},
		Slots: []analyzer.SlotCount{
			{Zone: "A", Hour: 8, Count: 2},
			{Zone: "Upper East Side, North", Hour: 23, Count: 1},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, " csv ": FormatCSV} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	rep := sampleReport()
	rep.Stats = &analyzer.Stats{LinesRead: 4, LinesAccepted: 3, DroppedBadHour: 1}
	require.NoError(t, Write(&buf, FormatTable, rep))

	out := buf.String()
	assert.Contains(t, out, "Top zones")
	assert.Contains(t, out, "Top busy slots")
	assert.Contains(t, out, "Upper East Side, North")
	assert.Contains(t, out, "08:00")
	assert.Contains(t, out, "23:00")
	assert.Contains(t, out, "dropped: bad hour")
	assert.Less(t, strings.Index(out, "Top zones"), strings.Index(out, "Top busy slots"))
}

func TestWriteTableSkipsNilSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, &Report{Zones: []analyzer.ZoneCount{{Zone: "A", Count: 1}}}))
	assert.Contains(t, buf.String(), "Top zones")
	assert.NotContains(t, buf.String(), "Top busy slots")
	assert.NotContains(t, buf.String(), "Ingest")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))

	var decoded struct {
		Zones []analyzer.ZoneCount `json:"top_zones"`
		Slots []analyzer.SlotCount `json:"top_busy_slots"`
		Stats *analyzer.Stats      `json:"stats"`
	}
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport().Zones, decoded.Zones)
	assert.Equal(t, sampleReport().Slots, decoded.Slots)
	assert.Nil(t, decoded.Stats)
	assert.Contains(t, buf.String(), `"hour": 8`)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"report", "rank", "zone", "hour", "count"},
		{"zones", "1", "A", "", "2"},
		{"zones", "2", "Upper East Side, North", "", "1"},
		{"slots", "1", "A", "8", "2"},
		{"slots", "2", "Upper East Side, North", "23", "1"},
	}, records)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), sampleReport()))
}
