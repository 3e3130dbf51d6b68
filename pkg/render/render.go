// Package render writes tripstat reports as text tables, JSON or CSV.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/ajitpratap0/tripstat/pkg/analyzer"
)

// Format selects the report encoding.
type Format string

const (
	// FormatTable renders aligned ASCII tables
	FormatTable Format = "table"
	// FormatJSON renders a single JSON document
	FormatJSON Format = "json"
	// FormatCSV renders one CSV stream with a report column
	FormatCSV Format = "csv"
)

// ParseFormat converts a configuration value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Report is the set of results produced by one run. Tables skip nil
// sections and print headers for empty ones; JSON omits both.
type Report struct {
	Zones []analyzer.ZoneCount `json:"top_zones,omitempty"`
	Slots []analyzer.SlotCount `json:"top_busy_slots,omitempty"`
	Stats *analyzer.Stats      `json:"stats,omitempty"`
}

// Write encodes rep to w in the given format.
func Write(w io.Writer, format Format, rep *Report) error {
	switch format {
	case FormatTable:
		return writeTable(w, rep)
	case FormatJSON:
		return writeJSON(w, rep)
	case FormatCSV:
		return writeCSV(w, rep)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeTable(w io.Writer, rep *Report) error {
	if rep.Zones != nil {
		if _, err := fmt.Fprintln(w, "Top zones"); err != nil {
			return err
		}
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Rank", "Zone", "Trips"})
		tbl.SetAutoFormatHeaders(false)
		for i, z := range rep.Zones {
			tbl.Append([]string{strconv.Itoa(i + 1), z.Zone, strconv.FormatInt(z.Count, 10)})
		}
		tbl.Render()
	}

	if rep.Slots != nil {
		if _, err := fmt.Fprintln(w, "Top busy slots"); err != nil {
			return err
		}
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Rank", "Zone", "Hour", "Trips"})
		tbl.SetAutoFormatHeaders(false)
		for i, s := range rep.Slots {
			tbl.Append([]string{
				strconv.Itoa(i + 1),
				s.Zone,
				fmt.Sprintf("%02d:00", s.Hour),
				strconv.FormatInt(s.Count, 10),
			})
		}
		tbl.Render()
	}

	if rep.Stats != nil {
		if _, err := fmt.Fprintln(w, "Ingest"); err != nil {
			return err
		}
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Counter", "Value"})
		tbl.SetAutoFormatHeaders(false)
		tbl.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
		for _, row := range statRows(rep.Stats) {
			tbl.Append([]string{row.name, strconv.FormatInt(row.value, 10)})
		}
		tbl.Render()
	}
	return nil
}

func writeJSON(w io.Writer, rep *Report) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"report", "rank", "zone", "hour", "count"}); err != nil {
		return err
	}
	for i, z := range rep.Zones {
		if err := cw.Write([]string{"zones", strconv.Itoa(i + 1), z.Zone, "", strconv.FormatInt(z.Count, 10)}); err != nil {
			return err
		}
	}
	for i, s := range rep.Slots {
		if err := cw.Write([]string{
			"slots", strconv.Itoa(i + 1), s.Zone, strconv.Itoa(s.Hour), strconv.FormatInt(s.Count, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type statRow struct {
	name  string
	value int64
}

func statRows(s *analyzer.Stats) []statRow {
	return []statRow{
		{"files ingested", s.FilesIngested},
		{"files not opened", s.FilesNotOpened},
		{"read errors", s.ReadErrors},
		{"bytes read", s.BytesRead},
		{"lines read", s.LinesRead},
		{"header lines", s.HeaderLines},
		{"lines accepted", s.LinesAccepted},
		{"dropped: column count", s.DroppedColumnCount},
		{"dropped: missing zone", s.DroppedMissingZone},
		{"dropped: missing time", s.DroppedMissingTime},
		{"dropped: bad hour", s.DroppedBadHour},
	}
}
