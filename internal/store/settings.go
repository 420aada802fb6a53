package store

import (
	"path/filepath"
	"sync"
)

const settingsFile = "settings.json"

// Settings are the user-tunable knobs persisted between runs.
type Settings struct {
	Port       int    `json:"network_port"`
	PlayerName string `json:"player_name"`
	AutoSave   bool   `json:"auto_save"`
}

// DefaultSettings mirrors a first run.
func DefaultSettings() Settings {
	return Settings{Port: 5555, PlayerName: "Player", AutoSave: true}
}

// SettingsFileStore reads and writes the settings file.
type SettingsFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewSettingsFileStore(dir string) *SettingsFileStore {
	return &SettingsFileStore{dir: dir}
}

// Load returns the persisted settings, with defaults filling any gaps or a
// missing file.
func (s *SettingsFileStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := DefaultSettings()
	if err := readJSON(filepath.Join(s.dir, settingsFile), &out); err != nil {
		return DefaultSettings(), err
	}
	if out.Port == 0 {
		out.Port = DefaultSettings().Port
	}
	if out.PlayerName == "" {
		out.PlayerName = DefaultSettings().PlayerName
	}
	return out, nil
}

func (s *SettingsFileStore) Save(set Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.dir, settingsFile), set, 0o600)
}
