package session

import (
	"encoding/json"
	"fmt"
)

// StorageKey is the fixed key the persisted state is stored under.
const StorageKey = "statsmd-storage"

// Persisted is the durable subset of State.
type Persisted struct {
	DarkMode bool
	Progress UserProgress
}

type snapshotEnvelope struct {
	State   snapshotState `json:"state"`
	Version int           `json:"version"`
}

type snapshotState struct {
	DarkMode     *bool         `json:"darkMode"`
	UserProgress *UserProgress `json:"userProgress"`
}

// EncodeSnapshot serializes p in the browser store format:
// {"state":{"darkMode":...,"userProgress":{...}},"version":0}.
func EncodeSnapshot(p Persisted) ([]byte, error) {
	progress := p.Progress.clone()
	env := snapshotEnvelope{
		State: snapshotState{DarkMode: &p.DarkMode, UserProgress: &progress},
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot written by EncodeSnapshot. Missing fields
// take their default values.
func DecodeSnapshot(data []byte) (Persisted, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Persisted{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	def := DefaultState()
	p := Persisted{DarkMode: def.DarkMode, Progress: def.Progress}
	if env.State.DarkMode != nil {
		p.DarkMode = *env.State.DarkMode
	}
	if env.State.UserProgress != nil {
		p.Progress = env.State.UserProgress.clone()
	}
	return p, nil
}
