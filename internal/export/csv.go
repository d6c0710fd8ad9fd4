package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ekhagen/ettpass/internal/store"
)

// Semicolon-delimited dialect, the way Swedish Excel likes it. Header column
// names are part of the file format and stay localized.
const csvHeader = "datum;plan;station;vikt;set;reps"

// CSVFileName is the default export file name.
const CSVFileName = "ett-pass-till-historik.csv"

var csvColumns = strings.Split(csvHeader, ";")

// escapeCSV wraps a field in double quotes when it contains a quote, comma,
// semicolon or newline, doubling internal quotes.
func escapeCSV(s string) string {
	if strings.ContainsAny(s, "\",\n;") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// EncodeCSV renders the ledger as semicolon-delimited CSV, one row per
// history entry, most recent first.
func EncodeCSV(rows []store.HistoryRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, csvHeader)
	for _, r := range rows {
		cols := []string{r.Date, r.PlanName, r.StationName, r.Weight, r.Sets, r.Reps}
		for i, c := range cols {
			cols[i] = escapeCSV(c)
		}
		lines = append(lines, strings.Join(cols, ";"))
	}
	return strings.Join(lines, "\n")
}

// WriteCSV writes the ledger to path as UTF-8 CSV.
func WriteCSV(rows []store.HistoryRow, path string) error {
	if err := os.WriteFile(path, []byte(EncodeCSV(rows)), 0o644); err != nil {
		return fmt.Errorf("write csv file: %w", err)
	}
	return nil
}

// ParseCSV decodes a semicolon-delimited history export. The header is
// matched case-insensitively; datum, plan and station are required, the
// remaining columns default to "". Quoted fields may contain the delimiter
// and doubled quotes; quoted embedded newlines are not supported since input
// is split into lines first.
func ParseCSV(data []byte) ([]store.HistoryRow, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("file has fewer than 2 lines")
	}

	idx := make(map[string]int)
	for i, name := range splitCSVLine(lines[0]) {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, req := range []string{"datum", "plan", "station"} {
		if _, ok := idx[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}

	field := func(cols []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(cols) {
			return ""
		}
		return cols[i]
	}

	var rows []store.HistoryRow
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := splitCSVLine(line)
		date := field(cols, "datum")
		rows = append(rows, store.HistoryRow{
			TS:          parseDateMillis(date),
			Date:        date,
			PlanName:    field(cols, "plan"),
			StationName: field(cols, "station"),
			Weight:      field(cols, "vikt"),
			Sets:        field(cols, "set"),
			Reps:        field(cols, "reps"),
		})
	}
	return rows, nil
}

// splitCSVLine splits one line on semicolons, honoring double-quoted fields
// with doubled internal quotes. Stray quotes mid-field are kept literal.
func splitCSVLine(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					b.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				b.WriteByte(c)
			}
		case c == '"' && b.Len() == 0:
			inQuotes = true
		case c == ';':
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(fields, b.String())
}

// parseDateMillis recovers an epoch timestamp from an exported datum on a
// best effort basis; rows with unrecognized dates keep ts=0 and remain
// display-only snapshots.
func parseDateMillis(date string) int64 {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
