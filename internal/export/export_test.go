package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ekhagen/ettpass/internal/store"
)

func sampleRows() []store.HistoryRow {
	return []store.HistoryRow{
		{TS: 2000, Date: "2025-03-15 18:30:00", PlanName: "Pass B", StationName: "Knäböj", Weight: "80", Sets: "5", Reps: "5"},
		{TS: 1000, Date: "2025-03-14 18:00:00", PlanName: "Pass A", StationName: "Bänkpress", Weight: "60", Sets: "3", Reps: "10"},
	}
}

// ============================================================
// CSV encoding
// ============================================================

func TestEscapeCSV(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Bänkpress", "Bänkpress"},
		{"", ""},
		{"a;b", `"a;b"`},
		{"a,b", `"a,b"`},
		{"a\nb", "\"a\nb\""},
		{`sa "quote"`, `"sa ""quote"""`},
	}
	for _, c := range cases {
		if got := escapeCSV(c.in); got != c.want {
			t.Fatalf("escapeCSV(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	out := EncodeCSV(sampleRows())
	lines := strings.Split(out, "\n")
	if lines[0] != "datum;plan;station;vikt;set;reps" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "2025-03-15 18:30:00;Pass B;Knäböj;80;5;5" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestEncodeCSVEmptyLedger(t *testing.T) {
	out := EncodeCSV(nil)
	if out != csvHeader {
		t.Fatalf("empty ledger must encode to header only, got %q", out)
	}
}

// ============================================================
// CSV parsing
// ============================================================

func TestParseCSVRoundTrip(t *testing.T) {
	rows := []store.HistoryRow{
		{Date: "2025-03-14 18:00:00", PlanName: "Pass; A", StationName: `Bänk "press"`, Weight: "60", Sets: "3", Reps: "10"},
	}
	got, err := ParseCSV([]byte(EncodeCSV(rows)))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].PlanName != "Pass; A" {
		t.Fatalf("delimiter not survived: %q", got[0].PlanName)
	}
	if got[0].StationName != `Bänk "press"` {
		t.Fatalf("quotes not survived: %q", got[0].StationName)
	}
	if got[0].Weight != "60" || got[0].Sets != "3" || got[0].Reps != "10" {
		t.Fatalf("values not survived: %+v", got[0])
	}
}

func TestParseCSVHeaderCaseInsensitive(t *testing.T) {
	data := "DATUM;Plan;STATION;vikt;set;reps\n2025-03-14 18:00:00;Pass A;Bänkpress;60;3;10"
	rows, err := ParseCSV([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].StationName != "Bänkpress" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestParseCSVColumnOrderIrrelevant(t *testing.T) {
	data := "station;datum;plan\nBänkpress;2025-03-14 18:00:00;Pass A"
	rows, err := ParseCSV([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].StationName != "Bänkpress" || rows[0].PlanName != "Pass A" {
		t.Fatalf("columns mapped by position, not name: %+v", rows[0])
	}
	if rows[0].Weight != "" || rows[0].Sets != "" || rows[0].Reps != "" {
		t.Fatalf("missing optional columns must default empty: %+v", rows[0])
	}
}

func TestParseCSVMissingRequiredColumns(t *testing.T) {
	data := "datum;vikt\n2025-03-14;60"
	_, err := ParseCSV([]byte(data))
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "plan") || !strings.Contains(err.Error(), "station") {
		t.Fatalf("error must name missing columns: %v", err)
	}
}

func TestParseCSVTooShort(t *testing.T) {
	if _, err := ParseCSV([]byte("datum;plan;station")); err == nil {
		t.Fatal("expected error for header-only file")
	}
	if _, err := ParseCSV([]byte("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestParseCSVSkipsBlankLinesAndCRLF(t *testing.T) {
	data := "datum;plan;station\r\n2025-03-14 18:00:00;Pass A;Bänkpress\r\n\r\n   \r\n"
	rows, err := ParseCSV([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestParseCSVRecoversTimestamp(t *testing.T) {
	data := "datum;plan;station\n2025-03-14 18:00:00;Pass A;Bänkpress\nigår;Pass A;Knäböj"
	rows, err := ParseCSV([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 14, 18, 0, 0, 0, time.Local).UnixMilli()
	if rows[0].TS != want {
		t.Fatalf("expected ts %d, got %d", want, rows[0].TS)
	}
	if rows[1].TS != 0 {
		t.Fatalf("unparseable date must leave ts=0, got %d", rows[1].TS)
	}
}

func TestSplitCSVLine(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a;b;c", []string{"a", "b", "c"}},
		{`"a;b";c`, []string{"a;b", "c"}},
		{`"he said ""hi""";x`, []string{`he said "hi"`, "x"}},
		{"a;;c", []string{"a", "", "c"}},
		{";", []string{"", ""}},
	}
	for _, c := range cases {
		got := splitCSVLine(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("splitCSVLine(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("splitCSVLine(%q) = %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), CSVFileName)
	if err := WriteCSV(sampleRows(), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), csvHeader) {
		t.Fatalf("file does not start with header: %q", string(data)[:40])
	}
}

// ============================================================
// JSON backup
// ============================================================

func TestBackupRoundTrip(t *testing.T) {
	w := 60.0
	sets := 3
	stations := []store.Station{{ID: "s1", Name: "Bänkpress", DefaultWeight: &w, DefaultSets: &sets}}
	plans := []store.Plan{{ID: "p1", Name: "Pass A", Items: []store.PlanItem{{StationID: "s1", Weight: &w}}}}
	history := sampleRows()

	data, err := EncodeBackup(stations, plans, history)
	if err != nil {
		t.Fatal(err)
	}

	b, err := ParseBackup(data)
	if err != nil {
		t.Fatal(err)
	}
	if b.App != AppName {
		t.Fatalf("unexpected app tag %q", b.App)
	}
	if b.ExportedAt == "" {
		t.Fatal("exportedAt missing")
	}
	if len(b.Stations) != 1 || b.Stations[0].Name != "Bänkpress" {
		t.Fatalf("stations lost: %+v", b.Stations)
	}
	if b.Stations[0].DefaultWeight == nil || *b.Stations[0].DefaultWeight != 60 {
		t.Fatal("optional weight lost")
	}
	if b.Stations[0].DefaultReps != nil {
		t.Fatal("unset optional must stay nil")
	}
	if len(b.Plans) != 1 || len(b.Plans[0].Items) != 1 {
		t.Fatalf("plans lost: %+v", b.Plans)
	}
	if len(b.History) != 2 || b.History[0].TS != 2000 {
		t.Fatalf("history lost: %+v", b.History)
	}
}

func TestEncodeBackupNilCollections(t *testing.T) {
	data, err := EncodeBackup(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, "null") {
		t.Fatalf("nil collections must encode as empty arrays: %s", s)
	}
}

func TestParseBackupInvalidJSON(t *testing.T) {
	if _, err := ParseBackup([]byte("{broken")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseBackupCoercesBadFields(t *testing.T) {
	data := []byte(`{"app":"x","stations":"nope","plans":42,"history":[{"ts":1}]}`)
	b, err := ParseBackup(data)
	if err != nil {
		t.Fatal(err)
	}
	if b.Stations == nil || len(b.Stations) != 0 {
		t.Fatalf("non-array stations must coerce to empty, got %+v", b.Stations)
	}
	if b.Plans == nil || len(b.Plans) != 0 {
		t.Fatalf("non-array plans must coerce to empty, got %+v", b.Plans)
	}
	if len(b.History) != 1 || b.History[0].TS != 1 {
		t.Fatalf("valid history must survive: %+v", b.History)
	}
}

func TestParseBackupMissingFields(t *testing.T) {
	b, err := ParseBackup([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if b.Stations == nil || b.Plans == nil || b.History == nil {
		t.Fatal("missing fields must coerce to empty collections")
	}
}

func TestWriteBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := WriteBackup(nil, nil, sampleRows(), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseBackup(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.History) != 2 {
		t.Fatalf("unexpected history length %d", len(b.History))
	}
}
