package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Repository owns the three record collections. It loads them from the Store
// once at startup and writes the affected collection back synchronously after
// every mutation, so the Store never holds a state the caller has not seen.
//
// Single-threaded by construction: one UI goroutine mutates, nothing else
// reads or writes.
type Repository struct {
	store *Store

	Stations []Station
	Plans    []Plan
	History  []HistoryRow
}

func NewRepository(s *Store) *Repository {
	return &Repository{store: s}
}

// Load reads the three collections from the store. Missing or corrupt data
// falls back to an empty collection; parse failures are swallowed rather than
// surfaced so the app always starts in a usable state.
func (r *Repository) Load() {
	r.Stations = loadCollection[Station](r.store, KeyStations)
	r.Plans = loadCollection[Plan](r.store, KeyPlans)
	r.History = loadCollection[HistoryRow](r.store, KeyHistory)
}

func loadCollection[T any](s *Store, key string) []T {
	raw, err := s.Get(key)
	if err != nil || raw == "" {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func saveCollection[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

func (r *Repository) SaveStations() error {
	return saveCollection(r.store, KeyStations, r.Stations)
}

func (r *Repository) SavePlans() error {
	return saveCollection(r.store, KeyPlans, r.Plans)
}

func (r *Repository) SaveHistory() error {
	return saveCollection(r.store, KeyHistory, r.History)
}

// --- Stations ---

func (r *Repository) StationByID(id string) *Station {
	for i := range r.Stations {
		if r.Stations[i].ID == id {
			return &r.Stations[i]
		}
	}
	return nil
}

func (r *Repository) CreateStation(name string, weight *float64, sets, reps *int) (*Station, error) {
	st := Station{
		ID:            uuid.NewString(),
		Name:          name,
		DefaultWeight: weight,
		DefaultSets:   sets,
		DefaultReps:   reps,
	}
	r.Stations = append(r.Stations, st)
	if err := r.SaveStations(); err != nil {
		return nil, err
	}
	return &r.Stations[len(r.Stations)-1], nil
}

func (r *Repository) UpdateStation(id, name string, weight *float64, sets, reps *int) error {
	st := r.StationByID(id)
	if st == nil {
		return fmt.Errorf("station %s not found", id)
	}
	st.Name = name
	st.DefaultWeight = weight
	st.DefaultSets = sets
	st.DefaultReps = reps
	return r.SaveStations()
}

// DeleteStation removes the station and, for every plan, every item that
// references it. Both collections are written in the same call so no plan
// item is ever left dangling.
func (r *Repository) DeleteStation(id string) error {
	kept := r.Stations[:0]
	for _, st := range r.Stations {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	r.Stations = kept

	for i := range r.Plans {
		items := r.Plans[i].Items[:0]
		for _, it := range r.Plans[i].Items {
			if it.StationID != id {
				items = append(items, it)
			}
		}
		r.Plans[i].Items = items
	}

	if err := r.SaveStations(); err != nil {
		return err
	}
	return r.SavePlans()
}

// ClearAllStations empties the station collection and every plan's item list.
func (r *Repository) ClearAllStations() error {
	r.Stations = nil
	for i := range r.Plans {
		r.Plans[i].Items = nil
	}
	if err := r.SaveStations(); err != nil {
		return err
	}
	return r.SavePlans()
}

// --- Plans ---

func (r *Repository) PlanByID(id string) *Plan {
	for i := range r.Plans {
		if r.Plans[i].ID == id {
			return &r.Plans[i]
		}
	}
	return nil
}

func (r *Repository) CreatePlan(name string) (*Plan, error) {
	p := Plan{ID: uuid.NewString(), Name: name}
	r.Plans = append(r.Plans, p)
	if err := r.SavePlans(); err != nil {
		return nil, err
	}
	return &r.Plans[len(r.Plans)-1], nil
}

func (r *Repository) RenamePlan(id, name string) error {
	p := r.PlanByID(id)
	if p == nil {
		return fmt.Errorf("plan %s not found", id)
	}
	p.Name = name
	return r.SavePlans()
}

func (r *Repository) DeletePlan(id string) error {
	kept := r.Plans[:0]
	for _, p := range r.Plans {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.Plans = kept
	return r.SavePlans()
}

// AddPlanItem appends an item for stationID to the plan, seeded with the
// station's current defaults. The seed is a copy; editing the item later does
// not touch the station.
func (r *Repository) AddPlanItem(planID, stationID string) error {
	p := r.PlanByID(planID)
	if p == nil {
		return fmt.Errorf("plan %s not found", planID)
	}
	st := r.StationByID(stationID)
	if st == nil {
		return fmt.Errorf("station %s not found", stationID)
	}
	p.Items = append(p.Items, PlanItem{
		StationID: st.ID,
		Weight:    st.DefaultWeight,
		Sets:      st.DefaultSets,
		Reps:      st.DefaultReps,
	})
	return r.SavePlans()
}

func (r *Repository) UpdatePlanItem(planID string, idx int, weight *float64, sets, reps *int) error {
	p := r.PlanByID(planID)
	if p == nil {
		return fmt.Errorf("plan %s not found", planID)
	}
	if idx < 0 || idx >= len(p.Items) {
		return fmt.Errorf("item index %d out of range", idx)
	}
	p.Items[idx].Weight = weight
	p.Items[idx].Sets = sets
	p.Items[idx].Reps = reps
	return r.SavePlans()
}

func (r *Repository) RemovePlanItem(planID string, idx int) error {
	p := r.PlanByID(planID)
	if p == nil {
		return fmt.Errorf("plan %s not found", planID)
	}
	if idx < 0 || idx >= len(p.Items) {
		return fmt.Errorf("item index %d out of range", idx)
	}
	p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
	return r.SavePlans()
}

func (r *Repository) ClearPlanItems(planID string) error {
	p := r.PlanByID(planID)
	if p == nil {
		return fmt.Errorf("plan %s not found", planID)
	}
	p.Items = nil
	return r.SavePlans()
}

// --- History ---

// AppendHistory inserts rows at the head of the ledger, keeping it
// most-recent-first. Rows are otherwise immutable.
func (r *Repository) AppendHistory(rows []HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	r.History = append(append([]HistoryRow{}, rows...), r.History...)
	return r.SaveHistory()
}

func (r *Repository) ClearHistory() error {
	r.History = nil
	return r.SaveHistory()
}

// ReplaceAll overwrites all three collections wholesale. Used by the JSON
// backup import after the user has confirmed the overwrite.
func (r *Repository) ReplaceAll(stations []Station, plans []Plan, history []HistoryRow) error {
	r.Stations = stations
	r.Plans = plans
	r.History = history
	if err := r.SaveStations(); err != nil {
		return err
	}
	if err := r.SavePlans(); err != nil {
		return err
	}
	return r.SaveHistory()
}
