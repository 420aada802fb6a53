package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chesslink/internal/domain"
)

const gameFile = "game_state.enc"

// persistedStateVersion guards the decrypted JSON layout, separate from the
// envelope version.
const persistedStateVersion = 1

// GameFileStore persists the encrypted game snapshot. Saves are atomic
// (temp file, fsync, rename), which makes concurrent save/load safe without
// a separate lock file.
type GameFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewGameFileStore(dir string) *GameFileStore { return &GameFileStore{dir: dir} }

func (s *GameFileStore) SaveGame(passphrase string, st domain.PersistedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st.Version = persistedStateVersion
	st.SavedUTC = time.Now().Unix()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	sealed, err := encrypt(passphrase, raw)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, gameFile), sealed, 0o600)
}

func (s *GameFileStore) LoadGame(passphrase string) (domain.PersistedState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(s.dir, gameFile))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.PersistedState{}, domain.ErrNotFound
		}
		return domain.PersistedState{}, err
	}
	raw, err := decrypt(passphrase, sealed)
	if err != nil {
		return domain.PersistedState{}, err
	}
	var st domain.PersistedState
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.PersistedState{}, err
	}
	if st.Version > persistedStateVersion {
		return domain.PersistedState{}, errors.New("unsupported persisted state version")
	}
	return st, nil
}

func (s *GameFileStore) DeleteGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, gameFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ domain.GameStore = (*GameFileStore)(nil)
