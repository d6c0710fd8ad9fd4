package store

// Station is a piece of equipment or an exercise with optional defaults.
// Nil means unset (shown as a dash), distinct from zero.
type Station struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	DefaultWeight *float64 `json:"defaultWeight"`
	DefaultSets   *int     `json:"defaultSets"`
	DefaultReps   *int     `json:"defaultReps"`
}

// PlanItem references a station with per-item values. Values are seeded from
// the station's defaults when the item is added and are independent after
// that; there is no live link back to the station.
type PlanItem struct {
	StationID string   `json:"stationId"`
	Weight    *float64 `json:"weight"`
	Sets      *int     `json:"sets"`
	Reps      *int     `json:"reps"`
}

// Plan is an ordered, named list of plan items. Item order is checklist order.
type Plan struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []PlanItem `json:"items"`
}

// HistoryRow is one station's numbers at the time a session finished.
// Deliberately denormalized: plan and station names are snapshots, so history
// survives renaming or deleting the records it came from. Unset numbers are
// recorded as the empty string.
type HistoryRow struct {
	TS          int64  `json:"ts"` // milliseconds since epoch
	Date        string `json:"date"`
	PlanName    string `json:"planName"`
	StationName string `json:"stationName"`
	Weight      string `json:"weight"`
	Sets        string `json:"sets"`
	Reps        string `json:"reps"`
}
