package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"chesslink/internal/domain"
)

const identityFile = "identity.enc"

// IdentityFileStore keeps the long-term identity keys encrypted on disk.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: dir}
}

func (s *IdentityFileStore) SaveIdentity(passphrase string, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	sealed, err := encrypt(passphrase, raw)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, identityFile), sealed, 0o600)
}

func (s *IdentityFileStore) LoadIdentity(passphrase string) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(s.dir, identityFile))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Identity{}, domain.ErrNotFound
		}
		return domain.Identity{}, err
	}
	raw, err := decrypt(passphrase, sealed)
	if err != nil {
		return domain.Identity{}, err
	}
	var id domain.Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Compile-time assertion that the store satisfies the domain contract.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
