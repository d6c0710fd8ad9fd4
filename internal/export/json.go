package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ekhagen/ettpass/internal/store"
)

// AppName tags the backup envelope.
const AppName = "Ett Pass Till"

// Backup is the full, non-diffed snapshot of all three collections.
type Backup struct {
	App        string             `json:"app"`
	ExportedAt string             `json:"exportedAt"`
	Stations   []store.Station    `json:"stations"`
	Plans      []store.Plan       `json:"plans"`
	History    []store.HistoryRow `json:"history"`
}

// EncodeBackup serializes a pretty-printed backup envelope.
func EncodeBackup(stations []store.Station, plans []store.Plan, history []store.HistoryRow) ([]byte, error) {
	b := Backup{
		App:        AppName,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Stations:   orEmpty(stations),
		Plans:      orEmpty(plans),
		History:    orEmpty(history),
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal backup: %w", err)
	}
	return data, nil
}

// WriteBackup writes the backup envelope to path.
func WriteBackup(stations []store.Station, plans []store.Plan, history []store.HistoryRow, path string) error {
	data, err := EncodeBackup(stations, plans, history)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	return nil
}

// ParseBackup decodes a backup envelope. Unparseable JSON is an error; a
// collection field that is missing or not array-typed is coerced to an empty
// collection rather than rejected.
func ParseBackup(data []byte) (*Backup, error) {
	var raw struct {
		App        string          `json:"app"`
		ExportedAt string          `json:"exportedAt"`
		Stations   json.RawMessage `json:"stations"`
		Plans      json.RawMessage `json:"plans"`
		History    json.RawMessage `json:"history"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}

	b := &Backup{App: raw.App, ExportedAt: raw.ExportedAt}
	b.Stations = coerceArray[store.Station](raw.Stations)
	b.Plans = coerceArray[store.Plan](raw.Plans)
	b.History = coerceArray[store.HistoryRow](raw.History)
	return b, nil
}

func coerceArray[T any](raw json.RawMessage) []T {
	var out []T
	if len(raw) == 0 || json.Unmarshal(raw, &out) != nil {
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
