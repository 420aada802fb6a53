package store

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"chesslink/internal/domain"
)

const peersFile = "trusted_peers.json" // map[fingerprint]TrustedPeer

// TrustFileStore records peers whose fingerprints have been accepted.
// Fingerprints are public data, so the file is plain JSON.
type TrustFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewTrustFileStore(dir string) *TrustFileStore { return &TrustFileStore{dir: dir} }

func (s *TrustFileStore) SavePeer(p domain.TrustedPeer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.Fingerprint]domain.TrustedPeer)
	if err := readJSON(filepath.Join(s.dir, peersFile), &m); err != nil {
		return err
	}
	if existing, ok := m[p.Fingerprint]; ok && p.FirstSeen == 0 {
		p.FirstSeen = existing.FirstSeen
	}
	if p.FirstSeen == 0 {
		p.FirstSeen = time.Now().Unix()
	}
	m[p.Fingerprint] = p
	return writeJSON(filepath.Join(s.dir, peersFile), m, 0o600)
}

func (s *TrustFileStore) LoadPeer(fp domain.Fingerprint) (domain.TrustedPeer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.Fingerprint]domain.TrustedPeer)
	if err := readJSON(filepath.Join(s.dir, peersFile), &m); err != nil {
		return domain.TrustedPeer{}, false, err
	}
	p, ok := m[fp]
	return p, ok, nil
}

func (s *TrustFileStore) ListPeers() ([]domain.TrustedPeer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[domain.Fingerprint]domain.TrustedPeer)
	if err := readJSON(filepath.Join(s.dir, peersFile), &m); err != nil {
		return nil, err
	}
	out := make([]domain.TrustedPeer, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FirstSeen < out[j].FirstSeen })
	return out, nil
}

var _ domain.TrustStore = (*TrustFileStore)(nil)
