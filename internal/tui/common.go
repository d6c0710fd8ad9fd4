package tui

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ekhagen/ettpass/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewWorkout viewState = iota
	viewStations
	viewPlans
	viewHistory
)

var viewNames = []string{"Workout", "Stations", "Plans", "History"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	text string
}

// dataChangedMsg tells sibling views their cursors may be stale.
type dataChangedMsg struct{}

// --- Helpers ---

// optStr renders an optional value, dash when unset.
func optStr(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func weightStr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intStr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// itemMeta renders "40 kg • 3 set • 10 reps" from whatever is set.
func itemMeta(weight *float64, sets, reps *int) string {
	var parts []string
	if weight != nil {
		parts = append(parts, weightStr(weight)+" kg")
	}
	if sets != nil {
		parts = append(parts, intStr(sets)+" set")
	}
	if reps != nil {
		parts = append(parts, intStr(reps)+" reps")
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " • ")
}

// sortedStations returns a name-sorted copy for display. Storage order is
// never touched.
func sortedStations(repo *store.Repository) []store.Station {
	out := make([]store.Station, len(repo.Stations))
	copy(out, repo.Stations)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// sortedPlans returns a name-sorted copy for display.
func sortedPlans(repo *store.Repository) []store.Plan {
	out := make([]store.Plan, len(repo.Plans))
	copy(out, repo.Plans)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// stationName resolves a plan item's station for display.
func stationName(repo *store.Repository, stationID string) string {
	if st := repo.StationByID(stationID); st != nil {
		return st.Name
	}
	return "(missing station)"
}

// parseOptFloat turns form input into an optional number; empty means unset.
func parseOptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
