package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FlagStore persists the single "was previously connected" boolean that
// survives process restarts. It only gates silent reconnection; nothing
// else is persisted.
type FlagStore interface {
	WasConnected() bool
	SetConnected(connected bool) error
}

// MemFlagStore keeps the flag in memory, for tests and embedders that
// do not want silent reconnection across restarts.
type MemFlagStore struct {
	mu        sync.Mutex
	connected bool
}

func (s *MemFlagStore) WasConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *MemFlagStore) SetConnected(connected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	return nil
}

// FileFlagStore persists the flag as a tiny JSON file under dir.
type FileFlagStore struct {
	path string
}

func NewFileFlagStore(dir string) *FileFlagStore {
	return &FileFlagStore{path: filepath.Join(dir, "session.json")}
}

type flagFile struct {
	WasConnected bool `json:"was_connected"`
}

func (s *FileFlagStore) WasConnected() bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	var f flagFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return false
	}
	return f.WasConnected
}

func (s *FileFlagStore) SetConnected(connected bool) error {
	if !connected {
		err := os.Remove(s.path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(flagFile{WasConnected: true})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
