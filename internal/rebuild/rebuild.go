// Package rebuild derives stations and plans from the history ledger, for
// recovery when only history survived a data loss or partial import.
package rebuild

import (
	"github.com/google/uuid"

	"github.com/ekhagen/ettpass/internal/store"
)

// Result counts what a rebuild pass added.
type Result struct {
	StationsAdded int
	PlansAdded    int
	ItemsAdded    int
}

// Run scans the ledger in stored (most-recent-first) order and fills in
// missing stations and plans:
//
//  1. unseen station names mint stations with unset defaults;
//  2. rows with a plan name find-or-create that plan and, unless the plan
//     already holds an item for the row's station, append one seeded with the
//     row's values — so the most recent historical values win.
//
// Running twice against untouched state adds nothing. It is NOT idempotent
// against manual edits between runs: removing a rebuilt item by hand and
// re-running will reintroduce it, since item presence is the only check.
func Run(repo *store.Repository) (Result, error) {
	var res Result

	// Existing station names win; first seen keeps the id.
	stationIDs := make(map[string]string)
	for _, st := range repo.Stations {
		if _, ok := stationIDs[st.Name]; !ok {
			stationIDs[st.Name] = st.ID
		}
	}

	planIdx := make(map[string]int)
	for i, p := range repo.Plans {
		if _, ok := planIdx[p.Name]; !ok {
			planIdx[p.Name] = i
		}
	}

	for _, row := range repo.History {
		if row.StationName == "" {
			continue
		}
		if _, ok := stationIDs[row.StationName]; !ok {
			st := store.Station{ID: uuid.NewString(), Name: row.StationName}
			repo.Stations = append(repo.Stations, st)
			stationIDs[row.StationName] = st.ID
			res.StationsAdded++
		}

		if row.PlanName == "" {
			continue
		}
		stationID := stationIDs[row.StationName]

		i, ok := planIdx[row.PlanName]
		if !ok {
			repo.Plans = append(repo.Plans, store.Plan{ID: uuid.NewString(), Name: row.PlanName})
			i = len(repo.Plans) - 1
			planIdx[row.PlanName] = i
			res.PlansAdded++
		}

		p := &repo.Plans[i]
		if hasItemFor(p, stationID) {
			continue
		}
		p.Items = append(p.Items, store.PlanItem{
			StationID: stationID,
			Weight:    parseWeight(row.Weight),
			Sets:      parseInt(row.Sets),
			Reps:      parseInt(row.Reps),
		})
		res.ItemsAdded++
	}

	if err := repo.SaveStations(); err != nil {
		return res, err
	}
	if err := repo.SavePlans(); err != nil {
		return res, err
	}
	return res, nil
}

func hasItemFor(p *store.Plan, stationID string) bool {
	for _, it := range p.Items {
		if it.StationID == stationID {
			return true
		}
	}
	return false
}
