package rebuild

import (
	"testing"

	"github.com/ekhagen/ettpass/internal/store"
)

func newTestRepo(t *testing.T) *store.Repository {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	r := store.NewRepository(s)
	r.Load()
	return r
}

func row(plan, station, weight, sets, reps string) store.HistoryRow {
	return store.HistoryRow{PlanName: plan, StationName: station, Weight: weight, Sets: sets, Reps: reps}
}

// ============================================================
// Derivation
// ============================================================

func TestRunFromBareHistory(t *testing.T) {
	r := newTestRepo(t)
	r.History = []store.HistoryRow{
		row("Pass A", "Bänkpress", "60", "3", "10"),
		row("Pass A", "Knäböj", "80", "", "5"),
		row("Pass B", "Bänkpress", "55", "3", "12"),
	}

	res, err := Run(r)
	if err != nil {
		t.Fatal(err)
	}
	if res.StationsAdded != 2 || res.PlansAdded != 2 || res.ItemsAdded != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(r.Stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(r.Stations))
	}
	for _, st := range r.Stations {
		if st.ID == "" {
			t.Fatal("minted station missing id")
		}
		if st.DefaultWeight != nil || st.DefaultSets != nil || st.DefaultReps != nil {
			t.Fatalf("minted station must have unset defaults: %+v", st)
		}
	}

	if len(r.Plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(r.Plans))
	}
	var passA *store.Plan
	for i := range r.Plans {
		if r.Plans[i].Name == "Pass A" {
			passA = &r.Plans[i]
		}
	}
	if passA == nil || len(passA.Items) != 2 {
		t.Fatalf("unexpected Pass A: %+v", passA)
	}
	// Item values come from the history row that created the item.
	it := passA.Items[0]
	if it.Weight == nil || *it.Weight != 60 || it.Sets == nil || *it.Sets != 3 || it.Reps == nil || *it.Reps != 10 {
		t.Fatalf("item not seeded from row: %+v", it)
	}
	if passA.Items[1].Sets != nil {
		t.Fatal("empty sets must stay unset")
	}
}

func TestRunIsIdempotentOnUntouchedState(t *testing.T) {
	r := newTestRepo(t)
	r.History = []store.HistoryRow{
		row("Pass A", "Bänkpress", "60", "3", "10"),
		row("Pass A", "Knäböj", "80", "5", "5"),
	}

	if _, err := Run(r); err != nil {
		t.Fatal(err)
	}
	res, err := Run(r)
	if err != nil {
		t.Fatal(err)
	}
	if res.StationsAdded != 0 || res.PlansAdded != 0 || res.ItemsAdded != 0 {
		t.Fatalf("second run must add nothing: %+v", res)
	}
}

func TestRunMostRecentRowWins(t *testing.T) {
	r := newTestRepo(t)
	// History is most-recent-first: the 60 kg row is newer than the 50 kg one.
	r.History = []store.HistoryRow{
		row("Pass A", "Bänkpress", "60", "3", "10"),
		row("Pass A", "Bänkpress", "50", "3", "10"),
	}

	res, err := Run(r)
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsAdded != 1 {
		t.Fatalf("expected single item for repeated station, got %d", res.ItemsAdded)
	}
	it := r.Plans[0].Items[0]
	if it.Weight == nil || *it.Weight != 60 {
		t.Fatalf("most recent value must win: %+v", it)
	}
}

func TestRunReusesExistingStationsByName(t *testing.T) {
	r := newTestRepo(t)
	st, _ := r.CreateStation("Bänkpress", nil, nil, nil)
	r.History = []store.HistoryRow{row("Pass A", "Bänkpress", "60", "3", "10")}

	res, err := Run(r)
	if err != nil {
		t.Fatal(err)
	}
	if res.StationsAdded != 0 {
		t.Fatalf("existing station must be reused, got %+v", res)
	}
	if r.Plans[0].Items[0].StationID != st.ID {
		t.Fatal("item must reference the pre-existing station")
	}
}

func TestRunDoesNotDuplicateExistingItems(t *testing.T) {
	r := newTestRepo(t)
	st, _ := r.CreateStation("Bänkpress", nil, nil, nil)
	p, _ := r.CreatePlan("Pass A")
	r.AddPlanItem(p.ID, st.ID)
	r.History = []store.HistoryRow{row("Pass A", "Bänkpress", "60", "3", "10")}

	res, err := Run(r)
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemsAdded != 0 {
		t.Fatalf("plan already has the item, got %+v", res)
	}
	if len(r.PlanByID(p.ID).Items) != 1 {
		t.Fatal("item duplicated")
	}
}

func TestRunSkipsBlankNames(t *testing.T) {
	r := newTestRepo(t)
	r.History = []store.HistoryRow{
		row("Pass A", "", "60", "3", "10"),  // no station: row skipped entirely
		row("", "Bänkpress", "60", "3", "10"), // no plan: station minted, no item
	}

	res, err := Run(r)
	if err != nil {
		t.Fatal(err)
	}
	if res.StationsAdded != 1 || res.PlansAdded != 0 || res.ItemsAdded != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunUnparseableNumbersStayUnset(t *testing.T) {
	r := newTestRepo(t)
	r.History = []store.HistoryRow{row("Pass A", "Bänkpress", "mycket", "tre", "x")}

	if _, err := Run(r); err != nil {
		t.Fatal(err)
	}
	it := r.Plans[0].Items[0]
	if it.Weight != nil || it.Sets != nil || it.Reps != nil {
		t.Fatalf("unparseable values must stay unset: %+v", it)
	}
}

func TestRunPersistsResult(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	r := store.NewRepository(s)
	r.Load()
	r.History = []store.HistoryRow{row("Pass A", "Bänkpress", "60", "3", "10")}

	if _, err := Run(r); err != nil {
		t.Fatal(err)
	}

	r2 := store.NewRepository(s)
	r2.Load()
	if len(r2.Stations) != 1 || len(r2.Plans) != 1 {
		t.Fatalf("rebuild not persisted: %d stations, %d plans", len(r2.Stations), len(r2.Plans))
	}
}
