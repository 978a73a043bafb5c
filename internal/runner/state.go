package runner

import (
	"encoding/json"
	"os"
	"time"
)

// ledgerState is the on-disk form of the parser's timestamp ledger.
type ledgerState struct {
	Entries   map[string]int `json:"entries"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// LoadLedger reads a ledger snapshot from a JSON file. Returns an empty
// snapshot if the file doesn't exist.
func LoadLedger(filePath string) (map[string]int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state ledgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return state.Entries, nil
}

// SaveLedger writes a ledger snapshot to a JSON file.
func SaveLedger(filePath string, entries map[string]int) error {
	state := ledgerState{Entries: entries, UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
